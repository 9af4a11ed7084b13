package models

import "encoding/json"

// Phase is the backend-reported lifecycle phase of a scrape job.
//
// starting, scrolling, and extracting are non-terminal; the backend
// alternates scrolling and extracting freely. completed and failed are
// terminal: once either is observed, no further progress fetch for the
// job is meaningful.
type Phase string

const (
	PhaseStarting   Phase = "starting"
	PhaseScrolling  Phase = "scrolling"
	PhaseExtracting Phase = "extracting"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)

// Terminal reports whether the phase ends the job's lifecycle.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// ProgressSnapshot is one poll's view of a running scrape job, as
// returned by GET /api/scrape/{id}/progress. It is replaced wholesale
// on every successful poll; the gateway never derives phase or percent
// on its own — both are backend-authoritative.
type ProgressSnapshot struct {
	ScrapeID        string        `json:"scrape_id"`
	Status          Phase         `json:"status"`
	ProgressPercent int           `json:"progress_percent"`
	Phase           string        `json:"phase"` // human-readable current step, e.g. "Scrolling for cards..."
	Stats           ProgressStats `json:"stats"`

	// Preview is the first few extracted results, used as the fallback
	// result set when the final results fetch fails after completion.
	Preview      []json.RawMessage `json:"preview,omitempty"`
	SampleResult json.RawMessage   `json:"sample_result,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
}

// ProgressStats carries the backend's live counters for a scrape job.
type ProgressStats struct {
	CardsFound       int    `json:"cards_found"`
	CardsExtracted   int    `json:"cards_extracted"`
	UniqueResults    int    `json:"unique_results"`
	ScrollsDone      int    `json:"scrolls_done"`
	MaxScrolls       int    `json:"max_scrolls"`
	TargetCount      int    `json:"target_count"`
	ExtractionErrors int    `json:"extraction_errors"`
	TimeElapsed      string `json:"time_elapsed"`
	ETA              string `json:"eta"`
}

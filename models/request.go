package models

// LaunchRequest is the payload for POST /api/v1/jobs. The same shape is
// forwarded to the backend's POST /api/scrape-async.
type LaunchRequest struct {
	// SearchQuery is the free-text search, e.g. "dentists in Amritsar". Required.
	SearchQuery string `json:"search_query" binding:"required"`

	// TargetCount is how many results the scrape should collect.
	// Default: 50.
	TargetCount int `json:"target_count,omitempty" binding:"omitempty,min=1,max=500"`

	// MaxScrolls caps the backend's scroll attempts. Default: 50.
	MaxScrolls int `json:"max_scrolls,omitempty" binding:"omitempty,min=1,max=200"`

	// Headless controls whether the backend runs its browser headless.
	// Default: true.
	Headless *bool `json:"headless,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *LaunchRequest) Defaults() {
	if r.TargetCount == 0 {
		r.TargetCount = 50
	}
	if r.MaxScrolls == 0 {
		r.MaxScrolls = 50
	}
	if r.Headless == nil {
		t := true
		r.Headless = &t
	}
}

package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/TDHINGRA16/Scrappy/config"
	"github.com/TDHINGRA16/Scrappy/models"
)

// Fallback messages for terminal failures the backend did not describe.
const (
	msgJobFailed     = "Scrape failed"
	msgUnreachable   = "Backend unreachable - no progress updates received"
	msgPollingCeased = "Scrape timed out - polling ceiling reached"
)

// Handlers receives the terminal notification for one job. Exactly one
// of the two fires, exactly once. snap is the last stored snapshot and
// may be nil when the job never produced one (e.g. the backend became
// unreachable before the first successful poll).
type Handlers struct {
	OnComplete func(snap *models.ProgressSnapshot, results []json.RawMessage)
	OnFail     func(snap *models.ProgressSnapshot, message string)
}

// Session polls one job's progress on a fixed interval until a
// terminal phase is observed.
//
// Ticks are independent: a fetch still in flight when the next timer
// fires does not block it, so two fetches may race. The active flag is
// the arbiter — it is flipped false synchronously by the first
// goroutine to observe a terminal phase, before that goroutine's
// follow-up results fetch, and every other observation checks it and
// discards itself. Handler registration is replaced atomically and
// read at fire time, so a consumer can swap callbacks mid-flight
// without a stale one winning.
type Session struct {
	jobID  string
	token  string
	client *Client
	cfg    config.PollerConfig
	log    *slog.Logger

	active   atomic.Bool
	snap     atomic.Pointer[models.ProgressSnapshot]
	handlers atomic.Pointer[Handlers]
	failures atomic.Int64

	started  time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newSession(client *Client, cfg config.PollerConfig, token, jobID string, h Handlers) *Session {
	s := &Session{
		jobID:   jobID,
		token:   token,
		client:  client,
		cfg:     cfg,
		started: time.Now(),
		stopCh:  make(chan struct{}),
		log: slog.Default().With(
			"job_id", jobID,
			"poll_session", uuid.NewString()[:8],
		),
	}
	s.active.Store(true)
	s.handlers.Store(&h)
	return s
}

// JobID returns the job identifier this session tracks.
func (s *Session) JobID() string { return s.jobID }

// Active reports whether the session is still polling.
func (s *Session) Active() bool { return s.active.Load() }

// Snapshot returns the latest progress snapshot, or nil before the
// first successful poll. nil is the caller-visible "no snapshot yet"
// state; it is not the same as the backend's "starting" phase.
func (s *Session) Snapshot() *models.ProgressSnapshot {
	return s.snap.Load()
}

// SetHandlers atomically replaces the terminal callbacks. The poll
// loop always fires the registration current at delivery time.
func (s *Session) SetHandlers(h Handlers) {
	s.handlers.Store(&h)
}

// Stop tears the session down without a terminal notification.
// In-flight fetches are not aborted; their results are discarded
// because the active flag has flipped.
func (s *Session) Stop() {
	s.active.Store(false)
	s.halt()
}

func (s *Session) halt() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// run drives the ticker. Each tick's fetch gets its own goroutine so a
// stuck backend call delays only its own tick, never the schedule.
func (s *Session) run() {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if !s.active.Load() {
				return
			}
			if s.cfg.MaxPollDuration > 0 && time.Since(s.started) > s.cfg.MaxPollDuration {
				s.finishFail(msgPollingCeased)
				return
			}
			go s.tick()
		}
	}
}

// tick performs one progress fetch and routes the outcome through the
// arbiter.
func (s *Session) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Interval*20)
	defer cancel()

	snap, err := s.client.Progress(ctx, s.token, s.jobID)
	if err != nil {
		if !s.active.Load() {
			return
		}
		// A single failed tick is transient: the snapshot stays as it
		// was and the next interval retries. Only an unbroken run of
		// failures is treated as the backend being gone.
		n := s.failures.Add(1)
		s.log.Debug("transient poll failure", "consecutive", n, "error", err)
		if s.cfg.MaxConsecutiveFailures > 0 && n >= int64(s.cfg.MaxConsecutiveFailures) {
			s.finishFail(msgUnreachable)
		}
		return
	}
	s.failures.Store(0)

	if !s.active.Load() {
		// Late arrival after another tick already reached a terminal
		// state, or after an explicit stop. Discard.
		return
	}
	s.snap.Store(snap)

	switch snap.Status {
	case models.PhaseCompleted:
		// Flip the flag before the async follow-up so a racing tick
		// that also sees "completed" is ignored.
		if !s.active.CompareAndSwap(true, false) {
			return
		}
		s.halt()
		s.deliverComplete(snap)
	case models.PhaseFailed:
		if !s.active.CompareAndSwap(true, false) {
			return
		}
		s.halt()
		msg := snap.ErrorMessage
		if msg == "" {
			msg = msgJobFailed
		}
		s.log.Info("job failed", "message", msg)
		if h := s.handlers.Load(); h != nil && h.OnFail != nil {
			h.OnFail(snap, msg)
		}
	}
}

// deliverComplete fetches final results exactly once and fires the
// completion handler. If the results fetch fails, the job still
// genuinely succeeded, so the last-known preview stands in for the
// full set instead of surfacing an error.
func (s *Session) deliverComplete(snap *models.ProgressSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Interval*20)
	defer cancel()

	results, err := s.client.Results(ctx, s.token, s.jobID)
	if err != nil {
		s.log.Warn("results fetch failed, falling back to preview", "error", err)
		results = snap.Preview
	}
	s.log.Info("job completed", "results", len(results))
	if h := s.handlers.Load(); h != nil && h.OnComplete != nil {
		h.OnComplete(snap, results)
	}
}

// finishFail routes ceiling breaches through the same exactly-once
// gate as a backend-reported failure.
func (s *Session) finishFail(message string) {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	s.halt()
	s.log.Warn("polling gave up", "message", message)
	if h := s.handlers.Load(); h != nil && h.OnFail != nil {
		h.OnFail(s.snap.Load(), message)
	}
}

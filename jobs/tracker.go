package jobs

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/TDHINGRA16/Scrappy/config"
	"github.com/TDHINGRA16/Scrappy/models"
)

// Tracker owns all live polling sessions, keyed by job identifier, and
// indexes them by owner so that a user launching a new job tears down
// their previous session first — at most one interval per job, and no
// orphaned tickers left behind a re-submission.
type Tracker struct {
	client *Client
	cfg    config.PollerConfig

	mu       sync.Mutex
	sessions map[string]*Session // job id → session
	byOwner  map[string]string   // owner key → job id
}

// NewTracker creates a Tracker using the given backend client.
func NewTracker(client *Client, cfg config.PollerConfig) *Tracker {
	return &Tracker{
		client:   client,
		cfg:      cfg,
		sessions: make(map[string]*Session),
		byOwner:  make(map[string]string),
	}
}

// Watch starts a polling session for jobID on behalf of owner. Any
// prior session for the same owner or the same job id is stopped
// first. The supplied handlers are wrapped so the tracker can drop the
// session from its tables after the terminal delivery.
func (t *Tracker) Watch(owner, token, jobID string, h Handlers) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prevID, ok := t.byOwner[owner]; ok {
		if prev, ok := t.sessions[prevID]; ok {
			prev.Stop()
			delete(t.sessions, prevID)
			slog.Info("replaced active polling session", "old_job_id", prevID, "new_job_id", jobID)
		}
	}
	if prev, ok := t.sessions[jobID]; ok {
		prev.Stop()
	}

	s := newSession(t.client, t.cfg, token, jobID, t.wrap(owner, jobID, h))
	t.sessions[jobID] = s
	t.byOwner[owner] = jobID
	go s.run()
	return s
}

// SetHandlers atomically replaces the callbacks for a tracked job so
// late registrations win over whatever the session started with.
// Returns whether a live session existed.
func (t *Tracker) SetHandlers(jobID string, h Handlers) bool {
	t.mu.Lock()
	s, ok := t.sessions[jobID]
	var owner string
	for o, id := range t.byOwner {
		if id == jobID {
			owner = o
		}
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	s.SetHandlers(t.wrap(owner, jobID, h))
	return true
}

// wrap layers table cleanup under the caller's handlers: whichever
// terminal callback fires, the session is dropped from the tracker
// before the caller sees the notification.
func (t *Tracker) wrap(owner, jobID string, user Handlers) Handlers {
	return Handlers{
		OnComplete: func(snap *models.ProgressSnapshot, results []json.RawMessage) {
			t.release(owner, jobID)
			if user.OnComplete != nil {
				user.OnComplete(snap, results)
			}
		},
		OnFail: func(snap *models.ProgressSnapshot, message string) {
			t.release(owner, jobID)
			if user.OnFail != nil {
				user.OnFail(snap, message)
			}
		},
	}
}

// Session returns the live session for a job id, if any.
func (t *Tracker) Session(jobID string) (*Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[jobID]
	return s, ok
}

// Stop tears down the session for a job id. Returns whether one existed.
func (t *Tracker) Stop(jobID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[jobID]
	if !ok {
		return false
	}
	s.Stop()
	delete(t.sessions, jobID)
	for owner, id := range t.byOwner {
		if id == jobID {
			delete(t.byOwner, owner)
		}
	}
	return true
}

// StopAll tears down every live session. Used at shutdown.
func (t *Tracker) StopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, s := range t.sessions {
		s.Stop()
		delete(t.sessions, id)
	}
	clear(t.byOwner)
}

// Active returns the number of live sessions.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// release drops a finished session from the tables. The owner index is
// only cleared when it still points at this job, so a replacement
// session registered in the meantime is not disturbed.
func (t *Tracker) release(owner, jobID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, jobID)
	if t.byOwner[owner] == jobID {
		delete(t.byOwner, owner)
	}
}

package jobs

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/TDHINGRA16/Scrappy/models"
)

// Record is the retained outcome of a finished job. The dashboard can
// re-read a completed job from here without another backend round-trip;
// the backend results fetch itself stays exactly-once.
type Record struct {
	JobID        string
	Status       models.Phase // completed or failed
	Query        string
	Results      []json.RawMessage
	ErrorMessage string
	Snapshot     *models.ProgressSnapshot
	FinishedAt   time.Time
}

// Store keeps finished jobs in memory. It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	records    map[string]*Record
	maxEntries int
}

// NewStore creates a Store with the given capacity. A background
// goroutine runs every 5 minutes to evict records older than 1 hour.
func NewStore(maxEntries int) *Store {
	s := &Store{
		records:    make(map[string]*Record),
		maxEntries: maxEntries,
	}
	go s.cleanupLoop()
	return s
}

// Get retrieves a finished job's record.
func (s *Store) Get(jobID string) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[jobID]
	return r, ok
}

// Put stores a finished job. If the store is at capacity, a random
// record is evicted to make room (map iteration is random in Go).
func (s *Store) Put(r *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) >= s.maxEntries {
		for k := range s.records {
			delete(s.records, k)
			break
		}
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	s.records[r.JobID] = r
}

// Len returns the number of retained records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// cleanupLoop evicts records older than 1 hour every 5 minutes.
func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-1 * time.Hour)
		s.mu.Lock()
		for k, r := range s.records {
			if r.FinishedAt.Before(cutoff) {
				delete(s.records, k)
			}
		}
		s.mu.Unlock()
	}
}

package jobs

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/TDHINGRA16/Scrappy/models"
)

func TestStore_PutGet(t *testing.T) {
	s := NewStore(10)

	s.Put(&Record{
		JobID:   "abc123",
		Status:  models.PhaseCompleted,
		Query:   "dentists in Amritsar",
		Results: []json.RawMessage{json.RawMessage(`{"name":"a"}`)},
	})

	r, ok := s.Get("abc123")
	if !ok {
		t.Fatal("record not found")
	}
	if r.Status != models.PhaseCompleted || len(r.Results) != 1 {
		t.Errorf("record mangled: %+v", r)
	}
	if r.FinishedAt.IsZero() {
		t.Error("FinishedAt should default to now")
	}

	if _, ok := s.Get("unknown"); ok {
		t.Error("unknown id should miss")
	}
}

func TestStore_CapacityEviction(t *testing.T) {
	s := NewStore(5)
	for i := 0; i < 8; i++ {
		s.Put(&Record{JobID: fmt.Sprintf("job-%d", i), Status: models.PhaseFailed})
	}
	if s.Len() > 5 {
		t.Errorf("store exceeded capacity: %d", s.Len())
	}
}

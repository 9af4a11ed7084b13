package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/TDHINGRA16/Scrappy/models"
)

func launchReq(query string) *models.LaunchRequest {
	r := &models.LaunchRequest{SearchQuery: query}
	r.Defaults()
	return r
}

func TestLaunch_Success(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scrape-async" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.LaunchResponse{
			ScrapeID:    "abc123",
			Status:      "started",
			Query:       "dentists in Amritsar",
			TargetCount: 50,
			Message:     "Scrape started. Poll /api/scrape/abc123/progress for updates.",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	handle, err := c.Launch(context.Background(), "tok", launchReq("dentists in Amritsar"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if handle.ScrapeID != "abc123" {
		t.Errorf("expected scrape_id abc123, got %q", handle.ScrapeID)
	}
	if handle.Query != "dentists in Amritsar" || handle.TargetCount != 50 {
		t.Errorf("handle not filled from request: %+v", handle)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("unexpected auth header: %q", gotAuth)
	}
	if gotBody["search_query"] != "dentists in Amritsar" {
		t.Errorf("search_query not forwarded: %v", gotBody)
	}
	if gotBody["headless"] != true {
		t.Errorf("headless default not applied: %v", gotBody)
	}
}

func TestLaunch_ErrorMessageExtraction(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"nested detail", `{"detail":{"error":"browser pool exhausted"}}`, "browser pool exhausted"},
		{"string detail", `{"detail":"quota exceeded"}`, "quota exceeded"},
		{"plain error field", `{"error":"bad query"}`, "bad query"},
		{"nothing usable", `{"status":500}`, "Failed to start scrape"},
		{"empty body", ``, "Failed to start scrape"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(500)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, 5*time.Second)
			_, err := c.Launch(context.Background(), "tok", launchReq("x"))
			if err == nil {
				t.Fatal("expected error")
			}
			var gerr *models.GatewayError
			if !errors.As(err, &gerr) {
				t.Fatalf("expected GatewayError, got %T", err)
			}
			if gerr.Code != models.ErrCodeBackendError {
				t.Errorf("expected BACKEND_ERROR, got %s", gerr.Code)
			}
			if gerr.Message != tc.want {
				t.Errorf("expected message %q, got %q", tc.want, gerr.Message)
			}
		})
	}
}

func TestLaunch_MissingScrapeID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"started"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Launch(context.Background(), "tok", launchReq("x"))
	var gerr *models.GatewayError
	if !errors.As(err, &gerr) || gerr.Code != models.ErrCodeMalformedResponse {
		t.Errorf("expected MALFORMED_BACKEND_RESPONSE, got %v", err)
	}
}

func TestLaunch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := NewClient(base, time.Second)
	_, err := c.Launch(context.Background(), "tok", launchReq("x"))
	var gerr *models.GatewayError
	if !errors.As(err, &gerr) || gerr.Code != models.ErrCodeBackendUnreachable {
		t.Errorf("expected BACKEND_UNREACHABLE, got %v", err)
	}
}

func TestProgress_ParsesSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scrape/abc123/progress" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"scrape_id": "abc123",
			"status": "extracting",
			"progress_percent": 60,
			"phase": "Extracting business cards...",
			"stats": {
				"cards_found": 40, "cards_extracted": 25, "unique_results": 22,
				"scrolls_done": 8, "max_scrolls": 50, "target_count": 50,
				"extraction_errors": 1, "time_elapsed": "45s", "eta": "30s"
			},
			"preview": [{"name": "Dr. Smith"}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	snap, err := c.Progress(context.Background(), "tok", "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Status != models.PhaseExtracting || snap.ProgressPercent != 60 {
		t.Errorf("snapshot not parsed: %+v", snap)
	}
	if snap.Stats.CardsExtracted != 25 || snap.Stats.ETA != "30s" {
		t.Errorf("stats not parsed: %+v", snap.Stats)
	}
	if len(snap.Preview) != 1 {
		t.Errorf("preview not parsed: %+v", snap.Preview)
	}
	if snap.Status.Terminal() {
		t.Error("extracting must not be terminal")
	}
}

func TestResults_ReturnsRawItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scrape/abc123/results" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"name":"a"},{"name":"b"},{"name":"c"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	results, err := c.Results(context.Background(), "tok", "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

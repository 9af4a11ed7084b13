// Package jobs launches scrape jobs on the backend and tracks their
// progress until a terminal phase, delivering each job's completion or
// failure exactly once.
package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/TDHINGRA16/Scrappy/models"
)

// Client is the typed HTTP client for the backend's scrape-job API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a Client for the given backend base URL.
func NewClient(base string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Launch starts an async scrape via POST /api/scrape-async and returns
// the handle for the new job.
//
// There is no internal retry: the backend job is stateful, so a
// re-submission creates a new job rather than resuming one. Retrying
// is a deliberate caller decision.
func (c *Client) Launch(ctx context.Context, token string, req *models.LaunchRequest) (*models.JobHandle, error) {
	payload, err := json.Marshal(map[string]any{
		"search_query": req.SearchQuery,
		"target_count": req.TargetCount,
		"max_scrolls":  req.MaxScrolls,
		"headless":     req.Headless,
	})
	if err != nil {
		return nil, models.NewGatewayError(models.ErrCodeInternal, "failed to encode launch request", err)
	}

	body, status, err := c.do(ctx, token, http.MethodPost, "/api/scrape-async", payload)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		msg := backendMessage(body, "Failed to start scrape")
		return nil, models.NewGatewayError(models.ErrCodeBackendError, msg, nil)
	}

	var launch models.LaunchResponse
	if err := json.Unmarshal(body, &launch); err != nil || launch.ScrapeID == "" {
		return nil, models.NewGatewayError(models.ErrCodeMalformedResponse, "backend returned no scrape_id", err)
	}

	return &models.JobHandle{
		ScrapeID:    launch.ScrapeID,
		Query:       req.SearchQuery,
		TargetCount: req.TargetCount,
		CreatedAt:   time.Now(),
	}, nil
}

// Progress fetches the current snapshot for a job.
func (c *Client) Progress(ctx context.Context, token, scrapeID string) (*models.ProgressSnapshot, error) {
	body, status, err := c.do(ctx, token, http.MethodGet, "/api/scrape/"+scrapeID+"/progress", nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		msg := backendMessage(body, fmt.Sprintf("progress fetch returned %d", status))
		return nil, models.NewGatewayError(models.ErrCodeBackendError, msg, nil)
	}

	var snap models.ProgressSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, models.NewGatewayError(models.ErrCodeMalformedResponse, "undecodable progress body", err)
	}
	return &snap, nil
}

// Results fetches the final result set for a completed job. It is
// called at most once per job, and only after a completed snapshot has
// been observed.
func (c *Client) Results(ctx context.Context, token, scrapeID string) ([]json.RawMessage, error) {
	body, status, err := c.do(ctx, token, http.MethodGet, "/api/scrape/"+scrapeID+"/results", nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		msg := backendMessage(body, fmt.Sprintf("results fetch returned %d", status))
		return nil, models.NewGatewayError(models.ErrCodeBackendError, msg, nil)
	}

	var results models.ResultsResponse
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, models.NewGatewayError(models.ErrCodeMalformedResponse, "undecodable results body", err)
	}
	return results.Results, nil
}

// do issues one backend call and reads the whole body. Transport
// failures come back as BackendUnreachable; any HTTP response, success
// or not, is returned for the caller to classify.
func (c *Client) do(ctx context.Context, token, method, path string, payload []byte) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, 0, models.NewGatewayError(models.ErrCodeInternal, "failed to build backend request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, models.NewGatewayError(models.ErrCodeBackendUnreachable, "Backend unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		body = nil
	}
	return body, resp.StatusCode, nil
}

// backendMessage extracts the most specific human-readable message
// from a backend error body. FastAPI-style bodies nest the real text
// under "detail", sometimes as an object; a generic "error" field is
// the last structured resort before the static fallback. Whatever is
// found is surfaced verbatim.
func backendMessage(body []byte, fallback string) string {
	for _, path := range []string{"detail.error", "detail", "error", "message"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return fallback
}

package models

import (
	"encoding/json"
	"time"
)

// JobHandle identifies a scrape job started on the backend.
// Created from the backend's scrape-async response; the identifier is
// cleared when the job reaches a terminal state or the caller resets.
type JobHandle struct {
	ScrapeID    string    `json:"scrape_id"`
	Query       string    `json:"query"`
	TargetCount int       `json:"target_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// LaunchResponse mirrors the backend's POST /api/scrape-async success body.
type LaunchResponse struct {
	ScrapeID    string `json:"scrape_id"`
	Status      string `json:"status"`
	Query       string `json:"query"`
	TargetCount int    `json:"target_count"`
	Message     string `json:"message"`
}

// ResultsResponse mirrors the backend's GET /api/scrape/{id}/results body.
// Individual results stay opaque: the gateway never interprets the
// scraped records, it only ferries them.
type ResultsResponse struct {
	Results []json.RawMessage `json:"results"`
}

// JobStartedResponse is the response for POST /api/v1/jobs.
type JobStartedResponse struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	Query       string `json:"query"`
	TargetCount int    `json:"target_count"`
	Message     string `json:"message"`
}

// JobStatusResponse is the response for GET /api/v1/jobs/:id.
//
// While the job is being tracked, Progress holds the latest snapshot
// (nil before the first successful poll, reported as status "pending").
// After a terminal state, Results or ErrorMessage come from the
// completed-job store.
type JobStatusResponse struct {
	JobID        string            `json:"job_id"`
	Status       string            `json:"status"`
	Progress     *ProgressSnapshot `json:"progress,omitempty"`
	Results      []json.RawMessage `json:"results,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	FinishedAt   *time.Time        `json:"finished_at,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status     string `json:"status"` // "healthy"
	Uptime     string `json:"uptime"`
	ActiveJobs int    `json:"active_jobs"`
	Version    string `json:"version"`
}

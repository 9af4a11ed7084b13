package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TDHINGRA16/Scrappy/config"
	"github.com/TDHINGRA16/Scrappy/jobs"
	"github.com/TDHINGRA16/Scrappy/models"
	"github.com/TDHINGRA16/Scrappy/session"
	"github.com/TDHINGRA16/Scrappy/webhook"
)

// PostJob returns a handler for POST /api/v1/jobs.
//
// It launches a scrape on the backend and registers a polling session
// for it. A user re-submitting while their previous job is still
// polling replaces that session — the backend job itself is not
// resumed; re-submission always creates a new job.
func PostJob(client *jobs.Client, tracker *jobs.Tracker, store *jobs.Store, hooks config.WebhookConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := session.FromRequest(c.Request)
		if err != nil {
			unauthorized(c, err)
			return
		}

		var req models.LaunchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		handle, err := client.Launch(c.Request.Context(), token, &req)
		if err != nil {
			respondError(c, err)
			return
		}

		slog.Info("scrape job launched",
			"job_id", handle.ScrapeID,
			"query", handle.Query,
			"target_count", handle.TargetCount,
		)

		tracker.Watch(token, token, handle.ScrapeID, terminalHandlers(handle, store, hooks))

		c.JSON(http.StatusAccepted, models.JobStartedResponse{
			JobID:       handle.ScrapeID,
			Status:      "started",
			Query:       handle.Query,
			TargetCount: handle.TargetCount,
			Message:     "Scrape started. Poll /api/v1/jobs/" + handle.ScrapeID + " for updates.",
		})
	}
}

// terminalHandlers persists the outcome and pushes it downstream.
func terminalHandlers(handle *models.JobHandle, store *jobs.Store, hooks config.WebhookConfig) jobs.Handlers {
	return jobs.Handlers{
		OnComplete: func(snap *models.ProgressSnapshot, results []json.RawMessage) {
			store.Put(&jobs.Record{
				JobID:    handle.ScrapeID,
				Status:   models.PhaseCompleted,
				Query:    handle.Query,
				Results:  results,
				Snapshot: snap,
			})
			if hooks.URL != "" {
				webhook.DeliverAsync(hooks.URL, hooks.Secret, &webhook.Event{
					Type:      "job.completed",
					JobID:     handle.ScrapeID,
					Timestamp: time.Now().Unix(),
					Data: webhook.CompletedData{
						Query:       handle.Query,
						ResultCount: len(results),
						Results:     results,
					},
				})
			}
		},
		OnFail: func(snap *models.ProgressSnapshot, message string) {
			store.Put(&jobs.Record{
				JobID:        handle.ScrapeID,
				Status:       models.PhaseFailed,
				Query:        handle.Query,
				ErrorMessage: message,
				Snapshot:     snap,
			})
			if hooks.URL != "" {
				webhook.DeliverAsync(hooks.URL, hooks.Secret, &webhook.Event{
					Type:      "job.failed",
					JobID:     handle.ScrapeID,
					Timestamp: time.Now().Unix(),
					Data: webhook.FailedData{
						Query: handle.Query,
						Error: message,
					},
				})
			}
		},
	}
}

// GetJob returns a handler for GET /api/v1/jobs/:id.
func GetJob(tracker *jobs.Tracker, store *jobs.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := session.FromRequest(c.Request); err != nil {
			unauthorized(c, err)
			return
		}
		jobID := c.Param("id")

		if s, ok := tracker.Session(jobID); ok {
			snap := s.Snapshot()
			if snap == nil {
				// Tracked but no successful poll yet; distinct from the
				// backend's own "starting" phase.
				c.JSON(http.StatusOK, models.JobStatusResponse{JobID: jobID, Status: "pending"})
				return
			}
			c.JSON(http.StatusOK, models.JobStatusResponse{
				JobID:    jobID,
				Status:   string(snap.Status),
				Progress: snap,
			})
			return
		}

		if rec, ok := store.Get(jobID); ok {
			c.JSON(http.StatusOK, models.JobStatusResponse{
				JobID:        jobID,
				Status:       string(rec.Status),
				Progress:     rec.Snapshot,
				Results:      rec.Results,
				ErrorMessage: rec.ErrorMessage,
				FinishedAt:   &rec.FinishedAt,
			})
			return
		}

		c.JSON(http.StatusNotFound, gin.H{
			"error": models.ErrorDetail{
				Code:    models.ErrCodeInvalidInput,
				Message: "job not found",
			},
		})
	}
}

// DeleteJob returns a handler for DELETE /api/v1/jobs/:id. It stops
// the polling session; the backend job keeps running unmanaged.
func DeleteJob(tracker *jobs.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := session.FromRequest(c.Request); err != nil {
			unauthorized(c, err)
			return
		}
		jobID := c.Param("id")
		if !tracker.Stop(jobID) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "no active polling session for job",
				},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"job_id": jobID, "status": "stopped"})
	}
}

// respondError maps a GatewayError to the correct HTTP status code and
// writes a structured JSON error response.
func respondError(c *gin.Context, err error) {
	var gerr *models.GatewayError
	if !errors.As(err, &gerr) {
		gerr = models.NewGatewayError(models.ErrCodeInternal, err.Error(), err)
	}
	c.JSON(mapErrorToStatus(gerr), gin.H{"error": gerr.ToDetail()})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.GatewayError) int {
	switch e.Code {
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeBackendUnreachable:
		return http.StatusBadGateway // 502
	case models.ErrCodeBackendError:
		return http.StatusBadGateway // 502
	case models.ErrCodeMalformedResponse:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	default:
		return http.StatusInternalServerError // 500
	}
}

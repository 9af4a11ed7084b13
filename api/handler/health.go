package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TDHINGRA16/Scrappy/jobs"
	"github.com/TDHINGRA16/Scrappy/models"
)

// Health returns a handler for GET /api/v1/health.
func Health(tracker *jobs.Tracker, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:     "healthy",
			Uptime:     time.Since(startTime).Round(time.Second).String(),
			ActiveJobs: tracker.Active(),
			Version:    "2.0.0",
		})
	}
}

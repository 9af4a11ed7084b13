package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TDHINGRA16/Scrappy/api/handler"
	"github.com/TDHINGRA16/Scrappy/api/middleware"
	"github.com/TDHINGRA16/Scrappy/config"
	"github.com/TDHINGRA16/Scrappy/jobs"
	"github.com/TDHINGRA16/Scrappy/proxy"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	Proxy + jobs: RateLimit
//
// Health endpoint is intentionally outside the rate limit so
// monitoring probes always work. Authentication is resolved inside the
// handlers: every protected route reads the session cookie fresh.
func NewRouter(fwd *proxy.Forwarder, client *jobs.Client, tracker *jobs.Tracker, store *jobs.Store, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	limited := middleware.RateLimit(cfg.RateLimit)

	// Authenticated passthrough for every verb the dashboard uses.
	r.Any("/proxy/*path", limited, handler.Forward(fwd))

	v1 := r.Group("/api/v1")

	// Health — no rate limit.
	v1.GET("/health", handler.Health(tracker, startTime))

	// Managed scrape jobs.
	jobsGroup := v1.Group("/jobs")
	jobsGroup.Use(limited)
	jobsGroup.POST("", handler.PostJob(client, tracker, store, cfg.Webhook))
	jobsGroup.GET("/:id", handler.GetJob(tracker, store))
	jobsGroup.DELETE("/:id", handler.DeleteJob(tracker))

	return r
}

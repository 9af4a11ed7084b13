package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TDHINGRA16/Scrappy/models"
	"github.com/TDHINGRA16/Scrappy/proxy"
	"github.com/TDHINGRA16/Scrappy/session"
)

// Forward returns the handler behind every verb of /proxy/*path.
//
// Flow per request:
//  1. Resolve the session cookie into a bearer credential — failure
//     short-circuits with 401 before any backend traffic.
//  2. Read the inbound body at most once (stream semantics; a read
//     failure degrades to "no body").
//  3. Forward method, path, query, and body with the injected bearer.
//  4. Normalize whatever came back and mirror the backend's status.
//
// The handler keeps no cross-request state.
func Forward(fwd *proxy.Forwarder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := session.FromRequest(c.Request)
		if err != nil {
			unauthorized(c, err)
			return
		}

		var body []byte
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			if c.Request.Body != nil {
				b, readErr := io.ReadAll(c.Request.Body)
				if readErr != nil {
					slog.Warn("proxy body read failed, forwarding without body", "error", readErr)
					b = nil
				}
				body = b
			}
		}

		resp, err := fwd.Forward(
			c.Request.Context(),
			token,
			c.Request.Method,
			c.Param("path"),
			c.Request.URL.RawQuery,
			body,
		)
		if err != nil {
			// Internal detail stays in the log; the browser gets a
			// fixed gateway-style answer.
			slog.Error("proxy forward failed", "path", c.Param("path"), "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Backend unreachable"})
			return
		}

		env := proxy.Normalize(resp)
		c.Data(env.Status, "application/json", env.Body)
	}
}

// unauthorized writes the resolver's own message, e.g.
// {"error": "Unauthorized - No session token"}.
func unauthorized(c *gin.Context, err error) {
	msg := "Unauthorized"
	if gerr, ok := err.(*models.GatewayError); ok {
		msg = gerr.Message
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

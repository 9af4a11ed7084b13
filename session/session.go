// Package session extracts the bearer credential from the dashboard's
// session cookie. The cookie is issued by the auth system at login and
// its value is structured as {token}.{signature}; only the token part
// is ever forwarded to the backend. No cryptographic verification
// happens here — the backend validates the token against its session
// table; this layer's only contract is syntactic extraction.
package session

import (
	"net/http"
	"strings"

	"github.com/TDHINGRA16/Scrappy/models"
)

// CookieName is the fixed session cookie name shared with the
// credential-issuing auth system.
const CookieName = "better-auth.session_token"

// User-facing messages for the two ways credential resolution fails.
const (
	MsgNoSession        = "Unauthorized - No session token"
	MsgMalformedSession = "Unauthorized - Malformed session token"
)

// Token extracts the bearer credential from a raw cookie value.
// It is a pure function: the value is read fresh on every request and
// never cached across requests.
func Token(raw string) (string, error) {
	if raw == "" {
		return "", models.NewGatewayError(models.ErrCodeUnauthorized, MsgNoSession, nil)
	}
	// Split on the first dot: everything before it is the token,
	// everything after is the signature, which must never leave this
	// process.
	i := strings.Index(raw, ".")
	if i <= 0 {
		return "", models.NewGatewayError(models.ErrCodeUnauthorized, MsgMalformedSession, nil)
	}
	return raw[:i], nil
}

// FromRequest resolves the bearer credential from an inbound request's
// session cookie. A missing cookie fails with the no-session message.
func FromRequest(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", models.NewGatewayError(models.ErrCodeUnauthorized, MsgNoSession, nil)
	}
	return Token(c.Value)
}

// Package proxy forwards authenticated dashboard requests to the
// scraping backend and normalizes whatever comes back into a uniform
// JSON envelope.
package proxy

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/TDHINGRA16/Scrappy/models"
)

// Forwarder issues outbound calls to the backend on behalf of the
// browser. It copies method, path, and query string verbatim and
// injects exactly two headers: the JSON content type and the bearer
// credential. Inbound headers are never forwarded, so a client cannot
// smuggle its own Authorization or conflicting Content-Type through.
type Forwarder struct {
	base   string
	client *http.Client
}

// NewForwarder creates a Forwarder for the given backend base URL.
func NewForwarder(base string, timeout time.Duration) *Forwarder {
	return &Forwarder{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// Forward builds and issues the outbound request.
//
// rawQuery is attached verbatim, preserving parameter order and
// repeated keys. body may be nil for bodyless requests; a nil body and
// an empty body are distinct. A transport-level failure is wrapped as
// BackendUnreachable; a backend that responded — with any status — is
// not an error at this layer.
func (f *Forwarder) Forward(ctx context.Context, token, method, path, rawQuery string, body []byte) (*http.Response, error) {
	target := f.base + "/" + strings.TrimLeft(path, "/")
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, models.NewGatewayError(models.ErrCodeInternal, "failed to build backend request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, models.NewGatewayError(models.ErrCodeBackendUnreachable, "Backend unreachable", err)
	}
	return resp, nil
}

package proxy

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Envelope is the uniform response shape delivered to the browser.
// Status mirrors the backend's status code; Body is always a
// well-formed JSON structure, never raw text.
type Envelope struct {
	Status int
	Body   []byte
}

const fallbackParseError = "Invalid JSON response from backend"

// Normalize converts a raw backend response into an Envelope.
//
// The decode is two-stage: first directed by the declared content
// type, then best-effort. A backend that mislabels JSON as text/plain
// still gets its payload parsed; a backend that labels garbage as JSON
// gets wrapped in an error object instead of crashing the proxy. Every
// path returns a well-formed envelope.
func Normalize(resp *http.Response) Envelope {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		raw = nil
	}
	status := resp.StatusCode
	contentType := resp.Header.Get("Content-Type")

	if strings.Contains(contentType, "application/json") {
		if structured(raw) {
			return Envelope{Status: status, Body: raw}
		}
		// Declared JSON but undecodable: wrap whatever text we got.
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = fallbackParseError
		}
		return Envelope{Status: status, Body: wrap("error", msg)}
	}

	text := strings.TrimSpace(string(raw))
	if status >= 400 {
		if text == "" {
			text = fmt.Sprintf("Backend error: %d", status)
		}
		return Envelope{Status: status, Body: wrap("error", text)}
	}

	// Success with a non-JSON content type: some backends mislabel, so
	// try to parse anyway before falling back to a message wrapper.
	if structured(raw) {
		return Envelope{Status: status, Body: raw}
	}
	return Envelope{Status: status, Body: wrap("message", text)}
}

// structured reports whether raw is valid JSON with an object or array
// at the top level. Scalars are rejected: the envelope contract is
// that callers always receive a decodable structure, never a bare
// string smuggled through.
func structured(raw []byte) bool {
	if !gjson.ValidBytes(raw) {
		return false
	}
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{', '[':
			return true
		default:
			return false
		}
	}
	return false
}

// wrap builds {"<key>": <text>} without hand-escaping the text.
func wrap(key, text string) []byte {
	out, err := sjson.SetBytes([]byte(`{}`), key, text)
	if err != nil {
		// Setting a string on an empty object cannot fail; keep a
		// literal fallback anyway so the envelope stays well-formed.
		return []byte(`{"error":"` + fallbackParseError + `"}`)
	}
	return out
}

package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strings"
	"testing"
)

func backendResponse(status int, contentType, body string) *http.Response {
	h := http.Header{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func decode(t *testing.T, env Envelope) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(env.Body, &out); err != nil {
		t.Fatalf("envelope body is not a JSON object: %v (body: %s)", err, env.Body)
	}
	return out
}

func TestNormalize_ValidJSON(t *testing.T) {
	env := Normalize(backendResponse(200, "application/json", `{"scrape_id":"abc123","status":"started"}`))

	if env.Status != 200 {
		t.Errorf("expected status 200, got %d", env.Status)
	}
	out := decode(t, env)
	if out["scrape_id"] != "abc123" {
		t.Errorf("payload not passed through: %v", out)
	}
}

func TestNormalize_DeclaredJSONButInvalid(t *testing.T) {
	env := Normalize(backendResponse(200, "application/json", `{"broken": `))

	if env.Status != 200 {
		t.Errorf("expected status passthrough 200, got %d", env.Status)
	}
	out := decode(t, env)
	if out["error"] == nil || out["error"] == "" {
		t.Errorf("expected error field for invalid JSON, got %v", out)
	}
}

func TestNormalize_DeclaredJSONEmptyBody(t *testing.T) {
	env := Normalize(backendResponse(204, "application/json", ""))

	out := decode(t, env)
	if out["error"] != "Invalid JSON response from backend" {
		t.Errorf("expected default parse-error message, got %v", out["error"])
	}
}

func TestNormalize_TextErrorStatus(t *testing.T) {
	env := Normalize(backendResponse(503, "text/plain", "service unavailable"))

	if env.Status != 503 {
		t.Errorf("expected status 503, got %d", env.Status)
	}
	out := decode(t, env)
	if out["error"] != "service unavailable" {
		t.Errorf("expected error text passthrough, got %v", out["error"])
	}
}

func TestNormalize_EmptyErrorBody(t *testing.T) {
	env := Normalize(backendResponse(500, "text/plain", ""))

	out := decode(t, env)
	if out["error"] != "Backend error: 500" {
		t.Errorf("expected status-based error message, got %v", out["error"])
	}
}

func TestNormalize_MislabeledJSON(t *testing.T) {
	// A 2xx body that is valid JSON despite a text content type must
	// round-trip as the structured object.
	original := map[string]any{"results": []any{map[string]any{"name": "Dr. Smith"}}}
	raw, _ := json.Marshal(original)

	env := Normalize(backendResponse(200, "text/plain", string(raw)))

	out := decode(t, env)
	if !reflect.DeepEqual(out, original) {
		t.Errorf("mislabeled JSON not round-tripped: got %v, want %v", out, original)
	}
}

func TestNormalize_PlainTextSuccess(t *testing.T) {
	env := Normalize(backendResponse(200, "text/plain", "pong"))

	out := decode(t, env)
	if out["message"] != "pong" {
		t.Errorf("expected message wrapper, got %v", out)
	}
}

func TestNormalize_TopLevelScalarNotSmuggled(t *testing.T) {
	// `"ok"` is valid JSON but not a structure; the envelope contract
	// forbids a bare string payload.
	env := Normalize(backendResponse(200, "text/plain", `"ok"`))

	out := decode(t, env)
	if _, isObject := out["message"]; !isObject {
		t.Errorf("expected scalar wrapped in message object, got %s", env.Body)
	}
}

func TestNormalize_JSONArray(t *testing.T) {
	env := Normalize(backendResponse(200, "application/json", `[1,2,3]`))

	var arr []int
	if err := json.Unmarshal(env.Body, &arr); err != nil {
		t.Fatalf("array payload not passed through: %v", err)
	}
	if len(arr) != 3 {
		t.Errorf("expected 3 elements, got %d", len(arr))
	}
}

func TestNormalize_NeverPanics(t *testing.T) {
	bodies := []string{"", "null", "true", "12", `{"a":}`, "\x00\x01", strings.Repeat("x", 1<<16)}
	types := []string{"", "application/json", "text/html", "application/json; charset=utf-8"}
	statuses := []int{200, 201, 400, 404, 500, 502}

	for _, b := range bodies {
		for _, ct := range types {
			for _, st := range statuses {
				env := Normalize(backendResponse(st, ct, b))
				if env.Status != st {
					t.Fatalf("status not mirrored: got %d want %d", env.Status, st)
				}
				if !json.Valid(env.Body) {
					t.Fatalf("invalid envelope body for input %q/%q/%d: %s", b, ct, st, env.Body)
				}
			}
		}
	}
}

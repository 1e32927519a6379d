// Package testutil holds HTTP helpers shared by handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// NewRequest creates a request whose body is body encoded as JSON. A string
// body is sent verbatim so tests can post malformed payloads.
func NewRequest(method, path string, body any) *http.Request {
	var r *http.Request
	switch b := body.(type) {
	case nil:
		r = httptest.NewRequest(method, path, nil)
	case string:
		r = httptest.NewRequest(method, path, bytes.NewBufferString(b))
		r.Header.Set("Content-Type", "application/json")
	default:
		raw, _ := json.Marshal(b)
		r = httptest.NewRequest(method, path, bytes.NewReader(raw))
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

// RecordResponse is a decoded response.
type RecordResponse struct {
	Code   int
	Header http.Header
	Raw    []byte
	Body   map[string]any
}

// RecordHTTPResponse reads the recorder and decodes an object body if present.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	raw, _ := io.ReadAll(result.Body)

	var body map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}
	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Raw:    raw,
		Body:   body,
	}
}

// DecodeBody unmarshals the recorded body into dst or fails the test.
func DecodeBody(t testing.TB, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response body %q: %v", w.Body.String(), err)
	}
}

// ErrorMessage returns the "error" field of an error response.
func ErrorMessage(t testing.TB, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	DecodeBody(t, w, &body)
	return body.Error
}

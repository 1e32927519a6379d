package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error     string        `json:"error"`
	Details   []ErrorDetail `json:"details,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONOK writes v with 200.
func JSONOK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// JSONCreated writes v with 201.
func JSONCreated(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// JSONError writes {"error": message} plus optional field details and the
// request id when one is known.
func JSONError(w http.ResponseWriter, r *http.Request, statusCode int, message string, details []ErrorDetail) {
	resp := ErrorResponse{Error: message, Details: details}
	if r != nil {
		resp.RequestID = RequestIDFrom(r)
	}
	JSON(w, statusCode, resp)
}

// InternalError writes a generic 500 without leaking the cause.
func InternalError(w http.ResponseWriter, r *http.Request) {
	JSONError(w, r, http.StatusInternalServerError, "internal server error", nil)
}

// DecodeJSON reads a single JSON value from the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body must not be larger than %d bytes", maxErr.Limit)
		default:
			return fmt.Errorf("request body contains malformed JSON: %w", err)
		}
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

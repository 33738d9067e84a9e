package views

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// Envelope wraps every JSON API response.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the machine-readable error of a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes used by the API.
const (
	CodeBadRequest   = "bad_request"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeRateLimited  = "rate_limited"
	CodeUnauthorized = "unauthorized"
	CodeCSRF         = "csrf_failed"
	CodeInternal     = "internal_error"
)

// JSON renders data inside a success envelope with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Success: true, Data: data})
}

// Error renders a failure envelope.
func Error(w http.ResponseWriter, status int, code, message string) {
	write(w, status, Envelope{Success: false, Error: &ErrorBody{Code: code, Message: message}})
}

func write(w http.ResponseWriter, status int, env Envelope) {
	// Render to buffer first to catch errors
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(env); err != nil {
		http.Error(w, `{"success":false,"error":{"code":"internal_error","message":"failed to encode response"}}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

package controllers

import (
	"net/http"

	"github.com/rahul4469/propmate/internal/views"
)

// HealthCheck returns a simple health status for monitoring.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// NotFound answers unknown API routes with the JSON error envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	views.Error(w, http.StatusNotFound, views.CodeNotFound, "Route not found: "+r.URL.Path)
}

// MethodNotAllowed answers known routes called with the wrong verb.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	views.Error(w, http.StatusMethodNotAllowed, views.CodeBadRequest, "Method "+r.Method+" not allowed on "+r.URL.Path)
}

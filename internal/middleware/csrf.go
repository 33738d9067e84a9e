package middleware

import (
	"net/http"

	"github.com/gorilla/csrf"
)

// CSRFHeader carries the token to and from the UI.
const CSRFHeader = "X-CSRF-Token"

// ExposeCSRFToken puts the masked CSRF token on every response so the UI can
// echo it back on mutating requests. Must run after csrf.Protect.
func ExposeCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(CSRFHeader, csrf.Token(r))
		next.ServeHTTP(w, r)
	})
}

// PlaintextHTTP marks requests as served over plain HTTP so csrf.Protect
// skips its HTTPS-only referer checks. Development only.
func PlaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

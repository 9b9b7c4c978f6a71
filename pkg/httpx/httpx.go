// Package httpx carries the small HTTP plumbing shared by every handler:
// middleware chaining, JSON responses and rate limiting.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first listed runs outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Detail is the API's uniform error body.
type Detail struct {
	Detail string `json:"detail"`
}

// WriteDetail writes the {"detail": ...} error shape every denial and failure
// response uses.
func WriteDetail(w http.ResponseWriter, code int, detail string) {
	WriteJSON(w, code, Detail{Detail: detail})
}

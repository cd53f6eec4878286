package server

import (
	"context"
	"net/http"
	"strings"
)

type contextKey int

const identityKey contextKey = iota

// withCORS allows browser clients from any origin. The API is meant to sit
// behind a frontend served elsewhere.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withIdentity extracts a bearer token into the request context. The
// identity is trusted for logging and attribution only; no pipeline
// decision depends on it, and requests without one are still served.
func withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token != "" {
			r = r.WithContext(context.WithValue(r.Context(), identityKey, token))
		}
		next.ServeHTTP(w, r)
	})
}

// identityFrom returns the caller identity recorded by withIdentity, or
// "anonymous".
func identityFrom(r *http.Request) string {
	if id, ok := r.Context().Value(identityKey).(string); ok {
		return id
	}
	return "anonymous"
}

package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
)

// ContextKey is a type for context keys
type ContextKey string

// ContextKeyAPIKey is the context key for the authenticated API key
const ContextKeyAPIKey ContextKey = "api_key"

// APIKeyAuth returns middleware that validates the X-API-Key header
// against the configured shared key. A missing or wrong key gets 401;
// the request body is never read.
func APIKeyAuth(expected string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip auth for OPTIONS requests (CORS preflight)
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-Key")
			if key == "" || expected == "" ||
				subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":"invalid API key"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAPIKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAPIKey returns the API key from context
func GetAPIKey(ctx context.Context) string {
	if key, ok := ctx.Value(ContextKeyAPIKey).(string); ok {
		return key
	}
	return ""
}

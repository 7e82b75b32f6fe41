package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIKeyAuth(t *testing.T) {
	var gotKey string
	handler := APIKeyAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = GetAPIKey(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid key passes and lands in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/honeypot", nil)
		req.Header.Set("X-API-Key", "secret")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "secret", gotKey)
	})

	t.Run("wrong key is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/honeypot", nil)
		req.Header.Set("X-API-Key", "guess")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid API key")
	})

	t.Run("missing key is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/honeypot", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("preflight skips auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/honeypot", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("empty configured key rejects everything", func(t *testing.T) {
		open := APIKeyAuth("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		req := httptest.NewRequest(http.MethodPost, "/honeypot", nil)
		req.Header.Set("X-API-Key", "anything")
		rec := httptest.NewRecorder()

		open.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

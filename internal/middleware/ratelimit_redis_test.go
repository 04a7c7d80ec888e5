package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisRateLimitMiddleware(t *testing.T) {
	t.Run("passes through requests without an account", func(t *testing.T) {
		// No account in context means nothing to key the limit on; the
		// middleware must not touch redis at all, so a nil client is safe.
		mw := NewRedisRateLimitMiddleware(nil)

		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		mw.Handler(next).ServeHTTP(rec, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAllowWithinQuota(t *testing.T) {
	t.Parallel()

	l := New(5, time.Minute)
	for i := 0; i < 5; i++ {
		ok, _ := l.Allow("10.0.0.1")
		require.True(t, ok, "attempt %d should pass", i+1)
	}

	ok, retryAfter := l.Allow("10.0.0.1")
	require.False(t, ok)
	require.Greater(t, retryAfter, time.Duration(0))

	// Other clients are unaffected.
	ok, _ = l.Allow("10.0.0.2")
	require.True(t, ok)
}

func TestWindowResets(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	l := New(2, time.Minute)
	l.now = func() time.Time { return now }

	ok, _ := l.Allow("k")
	require.True(t, ok)
	ok, _ = l.Allow("k")
	require.True(t, ok)
	ok, _ = l.Allow("k")
	require.False(t, ok)

	now = now.Add(time.Minute)
	ok, _ = l.Allow("k")
	require.True(t, ok)
}

func TestMiddlewareThrottles(t *testing.T) {
	t.Parallel()

	l := New(1, time.Minute)
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Contains(t, rec.Body.String(), "too many attempts")
}

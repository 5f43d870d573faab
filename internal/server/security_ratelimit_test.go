package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityLoggingMiddleware_RateLimiting(t *testing.T) {
	const limit = 20
	detector := NewSuspiciousActivityDetector(limit, time.Hour)
	h := SecurityLoggingMiddleware(nil, detector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	gate := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shop/gate", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < limit; i++ {
		require.Equal(t, http.StatusOK, gate("192.168.1.100:1234"), "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, gate("192.168.1.100:1234"))
	assert.Equal(t, http.StatusOK, gate("192.168.1.101:1234"), "other clients keep their own budget")

	detector.mu.Lock()
	count := detector.requestCountByIP["192.168.1.100"]
	detector.mu.Unlock()
	assert.Equal(t, limit+1, count)
}

func TestSecurityLoggingMiddleware_ForwardedByTrustedProxy(t *testing.T) {
	detector := NewSuspiciousActivityDetector(1, time.Hour)
	h := SecurityLoggingMiddleware([]string{"10.0.0.1"}, detector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/shop/purchase", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set(HeaderForwardedFor, forwardedFor)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	// Each chat bot behind the proxy is limited separately
	assert.Equal(t, http.StatusOK, send("203.0.113.7"))
	assert.Equal(t, http.StatusOK, send("203.0.113.8"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.7"))
}

func TestNewSuspiciousActivityDetector_Defaults(t *testing.T) {
	detector := NewSuspiciousActivityDetector(0, 0)
	assert.Equal(t, DefaultRequestLimit, detector.requestLimit)
	assert.Equal(t, DefaultRateWindow, detector.window)
}

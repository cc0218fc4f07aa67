package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/cache"
	"github.com/quetrea/youtube-clone/internal/config"
	"github.com/quetrea/youtube-clone/internal/contextutils"
)

func newTestLimiter(t *testing.T, requests int) *RateLimiter {
	t.Helper()
	c, err := cache.New(&config.CacheConfig{Provider: "memory"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return NewRateLimiter(c, &config.SecurityConfig{
		RateLimitRequests: requests,
		RateLimitWindow:   time.Minute,
	}, zap.NewNop())
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLimitBlocksOverQuota(t *testing.T) {
	limiter := newTestLimiter(t, 2)
	handler := limiter.Limit(okHandler())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

// The limiter mounts behind auth, so a resolved user is counted by id: the
// same account cannot dodge the quota by rotating addresses, and users
// sharing a NAT do not eat each other's budget.
func TestLimitCountsPerAuthenticatedUser(t *testing.T) {
	limiter := newTestLimiter(t, 1)
	handler := limiter.Limit(okHandler())

	userA := uuid.New()
	userB := uuid.New()

	sendAs := func(userID uuid.UUID) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "203.0.113.9:4412"
		r = r.WithContext(contextutils.WithUserID(r.Context(), userID))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, sendAs(userA))
	assert.Equal(t, http.StatusOK, sendAs(userB), "users behind one address have separate quotas")
	assert.Equal(t, http.StatusTooManyRequests, sendAs(userA))
}

func TestLimitFallsBackToRemoteAddress(t *testing.T) {
	limiter := newTestLimiter(t, 1)
	handler := limiter.Limit(okHandler())

	send := func(addr string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.7:1001"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.7:1002"), "ports do not split the quota")
	assert.Equal(t, http.StatusOK, send("198.51.100.8:1001"))
}

func TestLimitDisabledWhenQuotaIsZero(t *testing.T) {
	limiter := newTestLimiter(t, 0)
	handler := limiter.Limit(okHandler())

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

// Concurrent requests must each claim their own slot in the window; a read
// followed by a write would let several of them observe the same count.
func TestLimitCountsConcurrentRequestsExactly(t *testing.T) {
	const quota = 10
	const total = 25

	limiter := newTestLimiter(t, quota)
	handler := limiter.Limit(okHandler())

	var wg sync.WaitGroup
	codes := make([]int, total)
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = "192.0.2.1:9000"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	allowed := 0
	for _, code := range codes {
		if code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, quota, allowed)
}

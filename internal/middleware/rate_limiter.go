package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/quetrea/youtube-clone/internal/cache"
	"github.com/quetrea/youtube-clone/internal/config"
	"github.com/quetrea/youtube-clone/internal/contextutils"
	"github.com/quetrea/youtube-clone/internal/response"
	"github.com/quetrea/youtube-clone/internal/services"
)

// RateLimiter enforces a fixed-window request quota per client, counting in
// the shared cache so all instances see the same window.
type RateLimiter struct {
	cache  cache.Cache
	config *config.SecurityConfig
	logger *zap.Logger
}

// NewRateLimiter creates the rate limiting middleware.
func NewRateLimiter(cacheClient cache.Cache, cfg *config.SecurityConfig, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{cache: cacheClient, config: cfg, logger: logger}
}

// Limit rejects clients that exceed the configured window quota. The counter
// increments atomically in the cache so concurrent requests cannot share a
// slot.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.config.RateLimitRequests <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := cache.Key("ratelimit", rl.clientKey(r), rl.windowBucket())

		count, err := rl.cache.Increment(r.Context(), key, rl.config.RateLimitWindow)
		if err != nil {
			// A broken cache must not take the API down with it.
			rl.logger.Warn("Rate limit cache write failed", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(rl.config.RateLimitRequests) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.config.RateLimitWindow.Seconds())))
			response.QuickError(w, r, services.NewRateLimitError("rate limit exceeded", map[string]interface{}{
				"limit":  rl.config.RateLimitRequests,
				"window": rl.config.RateLimitWindow.String(),
			}))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey prefers the authenticated user, falling back to the remote IP.
// The limiter must therefore mount after the auth middleware of its route
// group.
func (rl *RateLimiter) clientKey(r *http.Request) string {
	if userID, ok := contextutils.GetUserID(r.Context()); ok {
		return "user:" + userID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// windowBucket identifies the current fixed window.
func (rl *RateLimiter) windowBucket() string {
	window := int64(rl.config.RateLimitWindow.Seconds())
	if window <= 0 {
		window = 60
	}
	return strconv.FormatInt(time.Now().Unix()/window, 10)
}

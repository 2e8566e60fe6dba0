package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dsagrinders/dsagrinders/config"
)

// RateLimiter is a fixed-window per-client request limiter for the public
// leaderboard endpoint.
type RateLimiter struct {
	requests int
	window   time.Duration

	mu      sync.Mutex
	clients map[string]*clientWindow

	// now is swapped out in tests.
	now func() time.Time
}

type clientWindow struct {
	windowStart time.Time
	count       int
}

// NewRateLimiter creates a rate limiter from the configuration.
func NewRateLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		requests: cfg.Requests,
		window:   cfg.WindowDuration(),
		clients:  make(map[string]*clientWindow),
		now:      time.Now,
	}
}

// Middleware returns the gin handler enforcing the limit per client IP.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := r.allow(c.ClientIP())
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (r *RateLimiter) allow(client string) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	w, ok := r.clients[client]
	if !ok || now.Sub(w.windowStart) >= r.window {
		// Stale windows for other clients are dropped opportunistically
		// so the map doesn't grow without bound.
		for key, cw := range r.clients {
			if now.Sub(cw.windowStart) >= r.window {
				delete(r.clients, key)
			}
		}
		r.clients[client] = &clientWindow{windowStart: now, count: 1}
		return true, 0
	}

	if w.count >= r.requests {
		return false, r.window - now.Sub(w.windowStart)
	}
	w.count++
	return true, 0
}

package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/platinummonkey/vortex-bridge/pkg/httputil"
)

// RateLimitConfig defines the per-client token bucket
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate
	RequestsPerSecond float64
	// Burst is the maximum number of requests allowed at once
	Burst int
	// IdleTimeout drops a client's bucket after this long without requests
	IdleTimeout time.Duration
}

// DefaultLoginRateLimitConfig returns the login throttle defaults
func DefaultLoginRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             5,
		IdleTimeout:       10 * time.Minute,
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client address
type RateLimiter struct {
	config  RateLimitConfig
	clients map[string]*clientLimiter
	mu      sync.Mutex
	now     func() time.Time
}

// NewRateLimiter creates a new per-client rate limiter
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultLoginRateLimitConfig().IdleTimeout
	}
	return &RateLimiter{
		config:  config,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// Allow reports whether a request from key may proceed now
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	cl, ok := rl.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst)}
		rl.clients[key] = cl
	}
	cl.lastSeen = now
	rl.mu.Unlock()

	return cl.limiter.AllowN(now, 1)
}

// Cleanup removes buckets idle for longer than the idle timeout
func (rl *RateLimiter) Cleanup() int {
	cutoff := rl.now().Add(-rl.config.IdleTimeout)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, cl := range rl.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup periodically until ctx is done
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(rl.config.IdleTimeout)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Handler wraps an HTTP handler with the per-client limit
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			retryAfter := 1
			if rl.config.RequestsPerSecond > 0 {
				retryAfter = int(1/rl.config.RequestsPerSecond) + 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			httputil.WriteTooManyRequests(w, "too many login attempts")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the remote host without its port.
// Forwarding headers are ignored since clients can forge them.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

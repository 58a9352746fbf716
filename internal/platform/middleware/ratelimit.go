package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig bounds how fast a single client may call the search API.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate granted to each client IP.
	RequestsPerSecond float64
	// Burst is how many requests a client may fire back-to-back from a
	// full allowance.
	Burst int
}

// DefaultRateLimitConfig suits a small read-only directory API: enough for
// a client hydrating a page of search results, not for bulk-scraping the
// register.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 25,
		Burst:             50,
	}
}

// clientBucket tracks one client's remaining request allowance. Tokens
// refill continuously at the configured rate up to the burst ceiling.
type clientBucket struct {
	tokens float64
	last   time.Time
}

type rateLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	clients map[string]*clientBucket
}

// take spends one token for the client. When the allowance is exhausted it
// reports how many whole seconds until the next token becomes available.
func (l *rateLimiter) take(client string, now time.Time) (allowed bool, retryAfter int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.clients[client]
	if !ok {
		b = &clientBucket{tokens: float64(l.cfg.Burst), last: now}
		l.clients[client] = b
	}

	b.tokens += now.Sub(b.last).Seconds() * l.cfg.RequestsPerSecond
	if ceiling := float64(l.cfg.Burst); b.tokens > ceiling {
		b.tokens = ceiling
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if l.cfg.RequestsPerSecond <= 0 {
		return false, 1
	}
	return false, int((1-b.tokens)/l.cfg.RequestsPerSecond) + 1
}

// RateLimit limits each client IP to cfg, answering 429 with a Retry-After
// hint once the allowance runs out. State lives in process; in a
// multi-instance deployment every instance enforces the limit separately.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	limiter := &rateLimiter{cfg: cfg, clients: make(map[string]*clientBucket)}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, retryAfter := limiter.take(c.RealIP(), time.Now())

			c.Response().Header().Set("X-RateLimit-Limit",
				strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64))
			if !allowed {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

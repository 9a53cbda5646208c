package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"loantrack/internal/infrastructure/metrics"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the limiter map; it is reset when exceeded.
const maxTrackedClients = 10000

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[key]
	if !ok {
		if len(rl.limiters) >= maxTrackedClients {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.limiter(c.RealIP()).Allow() {
				metrics.RateLimited.WithLabelValues(c.Path()).Inc()
				c.Response().Header().Set("Retry-After", retryAfter(rl.rate))
				return c.JSON(http.StatusTooManyRequests, errorBody("too many requests", "RATE_LIMITED"))
			}
			return next(c)
		}
	}
}

func retryAfter(r rate.Limit) string {
	if r <= 0 {
		return "60"
	}
	secs := int(time.Duration(float64(time.Second) / float64(r)).Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "bugscape/internal/errors"
	"bugscape/internal/logging"
)

// MsgTooManyLogins is returned once a client exceeds the login limit.
const MsgTooManyLogins = "Too many login attempts from this IP, please try again after 1 minute."

// Counter counts hits in a fixed window. *cache.Client satisfies it with
// redis; MemoryCounter serves a single instance.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	Limit     int
	Window    time.Duration
	KeyPrefix string
	Message   string
}

// RateLimit allows Limit requests per client IP per Window. Counter errors
// let the request through.
func RateLimit(counter Counter, cfg RateLimitConfig, logger logging.Logger) echo.MiddlewareFunc {
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Message == "" {
		cfg.Message = http.StatusText(http.StatusTooManyRequests)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := req.Context()
			ip := c.RealIP()

			n, err := counter.Incr(ctx, cfg.KeyPrefix+ip, cfg.Window)
			if err != nil {
				logger.Warn(ctx, "rate limit counter unavailable", "error", err)
				return next(c)
			}

			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("RateLimit-Limit", strconv.Itoa(cfg.Limit))
			h.Set("RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(cfg.Limit) {
				h.Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
				logger.Warn(ctx, "too many requests",
					"message", cfg.Message,
					"ip", ip,
					"method", req.Method,
					"url", req.URL.String(),
					"origin", req.Header.Get("Origin"),
				)
				return apperrors.NewHTTPError(http.StatusTooManyRequests, cfg.Message, nil)
			}
			return next(c)
		}
	}
}

// MemoryCounter is an in-process fixed-window Counter.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	count int64
	reset time.Time
}

var _ Counter = (*MemoryCounter)(nil)

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{windows: make(map[string]*window), now: time.Now}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, d time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.reset) {
		m.prune(now)
		w = &window{reset: now.Add(d)}
		m.windows[key] = w
	}
	w.count++
	return w.count, nil
}

// prune drops expired windows. Called with mu held.
func (m *MemoryCounter) prune(now time.Time) {
	for k, w := range m.windows {
		if !now.Before(w.reset) {
			delete(m.windows, k)
		}
	}
}

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitStore defines the persistence operations required by the
// sliding-window limiter.
type RateLimitStore interface {
	TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error
	CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error)
	RecordAttempt(ctx context.Context, identifier string, at time.Time) error
	OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error)
}

// RateLimiter enforces a sliding-window attempt limit per client IP.
// A store failure fails open: throttling is a hardening layer, not a
// correctness gate for login.
type RateLimiter struct {
	store  RateLimitStore
	limit  int
	window time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewRateLimiter builds a limiter middleware helper.
func NewRateLimiter(store RateLimitStore, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		store:  store,
		limit:  limit,
		window: window,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// Handler returns the Gin middleware enforcing the limit.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.store == nil || rl.limit <= 0 || rl.window <= 0 {
			c.Next()
			return
		}

		identifier := c.ClientIP()
		if identifier == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		now := rl.now()

		if err := rl.store.TrimWindow(ctx, identifier, rl.window, now); err != nil {
			rl.logger.Warn("rate limit trim failed", zap.Error(err))
			c.Next()
			return
		}

		count, err := rl.store.CountAttempts(ctx, identifier, rl.window, now)
		if err != nil {
			rl.logger.Warn("rate limit count failed", zap.Error(err))
			c.Next()
			return
		}

		if count >= rl.limit {
			retryAfter := rl.window
			if oldest, ok, err := rl.store.OldestAttempt(ctx, identifier, rl.window, now); err == nil && ok {
				retryAfter = oldest.Add(rl.window).Sub(now)
				if retryAfter < 0 {
					retryAfter = 0
				}
			}

			seconds := int(retryAfter.Round(time.Second).Seconds())
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.String(http.StatusTooManyRequests, "Too many attempts. Try again later.")
			c.Abort()
			return
		}

		if err := rl.store.RecordAttempt(ctx, identifier, now); err != nil {
			rl.logger.Warn("rate limit record failed", zap.Error(err))
		}

		c.Next()
	}
}

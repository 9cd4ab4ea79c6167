package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/connexa-app/connexa/auth/authctx"
	apperrors "github.com/connexa-app/connexa/errors"
)

// slidingWindow is an approximate per-key sliding-window counter: a map
// from key to the ordered timestamps of accepted requests. Entries older
// than the window are pruned on access; rejected requests are not
// recorded. Memory grows with distinct keys seen, bounded per key by the
// window itself.
type slidingWindow struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

func newSlidingWindow(max int, window time.Duration) *slidingWindow {
	return &slidingWindow{
		requests: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// allow prunes, checks and records in one critical section.
func (w *slidingWindow) allow(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	cutoff := now.Add(-w.window)

	valid := pruneBefore(w.requests[key], cutoff)
	if len(valid) >= w.max {
		w.requests[key] = valid
		return false
	}
	w.requests[key] = append(valid, now)
	return true
}

// cleanup drops keys whose entries have all aged out.
func (w *slidingWindow) cleanup() {
	w.mu.Lock()
	defer w.mu.Unlock()
	cutoff := w.now().Add(-w.window)
	for key, times := range w.requests {
		valid := pruneBefore(times, cutoff)
		if len(valid) == 0 {
			delete(w.requests, key)
		} else {
			w.requests[key] = valid
		}
	}
}

func pruneBefore(times []time.Time, cutoff time.Time) []time.Time {
	var valid []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	return valid
}

// IdentityRateLimiter bounds request volume per authenticated identity
// within a sliding window. Distinct instances keep independent state, so
// the profile-read, profile-write and account-delete mounts do not share
// budgets.
type IdentityRateLimiter struct {
	window *slidingWindow
}

// NewIdentityRateLimiter creates a limiter allowing maxRequests per
// identity within the trailing window.
func NewIdentityRateLimiter(maxRequests int, window time.Duration) *IdentityRateLimiter {
	if maxRequests <= 0 {
		maxRequests = 100
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &IdentityRateLimiter{window: newSlidingWindow(maxRequests, window)}
}

// Allow records and admits a request for the identity, or rejects it
// without recording.
func (l *IdentityRateLimiter) Allow(identityID int64) bool {
	return l.window.allow(strconv.FormatInt(identityID, 10))
}

// Middleware returns the rate-limiting stage. It must be mounted after
// authentication; a request with no identity is rejected as unauthenticated.
func (l *IdentityRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := authctx.Get(c.Request.Context())
		if !ok {
			abortWithError(c, apperrors.Unauthorized(apperrors.CodeAuthRequired,
				"Authentication required", "Please login to access this resource"))
			return
		}
		if !l.Allow(identity.ID) {
			abortWithError(c, apperrors.RateLimited(apperrors.CodeUserRateLimit,
				fmt.Sprintf("Rate limit exceeded. Max %d requests per %d seconds",
					l.window.max, int(l.window.window.Seconds()))))
			return
		}
		c.Next()
	}
}

// StartCleanup periodically drops idle identities until ctx is cancelled.
func (l *IdentityRateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	startCleanup(ctx, interval, l.window)
}

// IPRateLimit returns a stage limiting requests per client IP. Used on the
// unauthenticated endpoints (login, register) where no identity exists yet.
func IPRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	w := newSlidingWindow(maxRequests, window)
	return func(c *gin.Context) {
		if !w.allow(c.ClientIP()) {
			abortWithError(c, apperrors.RateLimited(apperrors.CodeTooManyRequests,
				"Please try again later"))
			return
		}
		c.Next()
	}
}

func startCleanup(ctx context.Context, interval time.Duration, w *slidingWindow) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.cleanup()
			}
		}
	}()
}

package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"msgagent/utils"
)

const (
	sweepInterval = 5 * time.Minute
	idleTimeout   = 10 * time.Minute
)

// unlimitedPaths are never throttled so health probes keep working under load
var unlimitedPaths = map[string]bool{
	"/health": true,
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client IP.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	every    rate.Limit
	burst    int
}

// NewLimiter allows requests per window for each client.
func NewLimiter(requests int, window time.Duration) *Limiter {
	if requests <= 0 {
		requests = 1
	}
	return &Limiter{
		visitors: make(map[string]*visitor),
		every:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
	}
}

func (l *Limiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Sweep drops clients idle for longer than idle.
func (l *Limiter) Sweep(idle time.Duration) {
	cutoff := time.Now().Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
		}
	}
}

// Run sweeps idle clients until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep(idleTimeout)
		}
	}
}

// Handler throttles requests and reports the remaining budget in
// X-RateLimit-* headers.
func (l *Limiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if unlimitedPaths[c.Path()] {
			return c.Next()
		}

		now := time.Now()
		limiter := l.get(c.IP(), now)
		allowed := limiter.AllowN(now, 1)

		remaining := int(math.Max(0, math.Floor(limiter.TokensAt(now))))
		c.Set("X-RateLimit-Limit", strconv.Itoa(l.burst))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			wait := time.Duration(float64(time.Second) / float64(l.every))
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			utils.Log.Warn("Rate limit exceeded for %s", c.IP())
			return utils.TooManyRequestsError("Rate limit exceeded. Please try again later.")
		}
		return c.Next()
	}
}

// RateLimiter builds a Limiter, sweeps it while ctx lives and returns its
// handler.
func RateLimiter(ctx context.Context, requests int, window time.Duration) fiber.Handler {
	l := NewLimiter(requests, window)
	go l.Run(ctx)
	return l.Handler()
}

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

type clientInfo struct {
	start  time.Time
	window time.Duration
	count  int
}

// RateLimiter is a fixed-window limiter keyed by client IP. It counts in
// Redis (INCR/EXPIRE) when a client is configured and in process memory
// otherwise. Redis errors fail open.
type RateLimiter struct {
	client *redis.Client

	mu        sync.Mutex
	clients   map[string]*clientInfo
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{
		client:  client,
		clients: make(map[string]*clientInfo),
		now:     time.Now,
	}
}

// Limit allows maxRequests per window for each client IP within scope.
// key format: rl:<scope>:<window_seconds>:<ip>
func (l *RateLimiter) Limit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rl:" + scope + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()

		count, ok := l.incr(c.Request.Context(), key, window)
		if !ok {
			// on Redis error, fail-open (allow) but set header
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if count > int64(maxRequests) {
			RLBlocked.WithLabelValues(scope).Inc()
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.HTML(http.StatusTooManyRequests, "error.html", gin.H{
				"Status":  http.StatusTooManyRequests,
				"Message": "Too many attempts. Please try again later.",
			})
			c.Abort()
			return
		}

		RLRequests.WithLabelValues(scope).Inc()
		c.Next()
	}
}

func (l *RateLimiter) incr(ctx context.Context, key string, window time.Duration) (int64, bool) {
	if l.client == nil {
		return l.incrLocal(key, window), true
	}

	val, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	if val == 1 {
		// first increment, set expiry; a key without TTL would block the IP for good
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			l.client.Del(ctx, key)
			return 0, false
		}
	}
	return val, true
}

func (l *RateLimiter) incrLocal(key string, window time.Duration) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > window {
		l.sweep(now)
	}

	ci, ok := l.clients[key]
	if !ok || now.Sub(ci.start) > window {
		l.clients[key] = &clientInfo{start: now, window: window, count: 1}
		return 1
	}
	ci.count++
	return int64(ci.count)
}

// sweep drops entries whose window has passed. Callers hold l.mu.
func (l *RateLimiter) sweep(now time.Time) {
	for key, ci := range l.clients {
		if now.Sub(ci.start) > ci.window {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

type visitor struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	last    time.Time
}

// NewHTTPRateLimitPerIP limits requests per client IP. Idle IPs are dropped after ttl
// until ctx is done; the LRU bounds memory in between.
func NewHTTPRateLimitPerIP(
	ctx context.Context,
	limit, burst, cacheSize int,
	ttl time.Duration,
) gin.HandlerFunc {

	visitors, _ := lru.New[string, *visitor](cacheSize)

	go func() {
		ticker := time.NewTicker(ttl)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			for _, key := range visitors.Keys() {
				if v, ok := visitors.Peek(key); ok && v.idleFor() > ttl {
					visitors.Remove(key)
				}
			}
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		v, ok := visitors.Get(ip)
		if !ok {
			v = &visitor{
				limiter: rate.NewLimiter(rate.Limit(limit), burst),
			}
			visitors.Add(ip, v)
		}

		if !v.allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (v *visitor) allow() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.last = time.Now()
	return v.limiter.Allow()
}

func (v *visitor) idleFor() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return time.Since(v.last)
}

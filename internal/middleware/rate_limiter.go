package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/listen-stream/music-svc/pkg/errors"
	"github.com/listen-stream/music-svc/pkg/httputil"
)

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按客户端IP限流
type RateLimiter struct {
	limiters map[string]*ipEntry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int

	idleTTL         time.Duration
	cleanupInterval time.Duration
	lastCleanup     time.Time
}

// NewRateLimiter 创建限流器
func NewRateLimiter(perSecond, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:        make(map[string]*ipEntry),
		rate:            rate.Limit(perSecond),
		burst:           burst,
		idleTTL:         10 * time.Minute,
		cleanupInterval: time.Minute,
		lastCleanup:     time.Now(),
	}
}

// allow 获取或创建IP限流器并消耗一个令牌
func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastCleanup) >= rl.cleanupInterval {
		for key, entry := range rl.limiters {
			if now.Sub(entry.lastSeen) > rl.idleTTL {
				delete(rl.limiters, key)
			}
		}
		rl.lastCleanup = now
	}

	entry, exists := rl.limiters[ip]
	if !exists {
		entry = &ipEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Limit 限流中间件
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP(), time.Now()) {
			httputil.ErrorResponse(c, apperrors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

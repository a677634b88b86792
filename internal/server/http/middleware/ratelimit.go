package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Rate limit tiers. Auth endpoints get the strict tier, everything else the
// general one.
const (
	limitStrict  = rate.Limit(2)
	burstStrict  = 5
	limitGeneral = rate.Limit(10)
	burstGeneral = 20
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter tracks per-client token buckets. Buckets are keyed by client IP
// and tier so strict and general quotas stay independent.
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
}

// NewRateLimiter constructs the limiter and starts its cleanup routine.
func NewRateLimiter() *RateLimiter {
	l := &RateLimiter{visitors: make(map[string]*visitor)}
	go l.cleanup()
	return l
}

// Strict limits auth and payment endpoints.
func (l *RateLimiter) Strict() gin.HandlerFunc {
	return l.middleware("strict", limitStrict, burstStrict)
}

// General limits everything else.
func (l *RateLimiter) General() gin.HandlerFunc {
	return l.middleware("general", limitGeneral, burstGeneral)
}

func (l *RateLimiter) middleware(tier string, limit rate.Limit, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := clientIP(c) + ":" + tier
		if !l.get(key, limit, burst).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) get(key string, limit rate.Limit, burst int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(limit, burst)
		l.visitors[key] = &visitor{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// cleanup removes idle entries so the visitor map does not grow unbounded.
func (l *RateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)

		l.mu.Lock()
		for key, v := range l.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(l.visitors, key)
			}
		}
		l.mu.Unlock()
	}
}

func clientIP(c *gin.Context) string {
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}

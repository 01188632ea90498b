package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"warehouse-picking-backend/internal/shared/response"
)

// LoginRateLimiter throttles login attempts per client IP. Stale limiters are
// dropped after an hour of inactivity.
type LoginRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	rate     rate.Limit
	burst    int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLoginRateLimiter(perMinute int, burst int) *LoginRateLimiter {
	l := &LoginRateLimiter{
		limiters: make(map[string]*clientLimiter),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}
	go l.cleanupLoop()
	return l
}

func (l *LoginRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

func (l *LoginRateLimiter) cleanupLoop() {
	for range time.Tick(10 * time.Minute) {
		l.mu.Lock()
		for ip, cl := range l.limiters {
			if time.Since(cl.lastSeen) > time.Hour {
				delete(l.limiters, ip)
			}
		}
		l.mu.Unlock()
	}
}

// Middleware rejects requests over the per-IP budget with 429.
func (l *LoginRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.get(c.ClientIP()).Allow() {
			response.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many login attempts, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}

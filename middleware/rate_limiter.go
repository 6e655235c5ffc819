package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/models"
	"golang.org/x/time/rate"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

// RateLimiter keeps a token bucket per client IP. A client that empties its
// bucket is blocked for blockDuration.
type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             sync.Mutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
	skipPrefixes   []string
}

func NewRateLimiter() *RateLimiter {
	r := &RateLimiter{
		ips:           make(map[string]*rate.Limiter),
		blockedIPs:    make(map[string]time.Time),
		defaultLimit:  rate.Every(100 * time.Millisecond),
		defaultBurst:  40,
		blockDuration: 5 * time.Minute,
		endpointLimits: map[string]endpointLimit{
			// credential endpoints
			"/api/v1/auth/admin/login":          {rate.Every(2 * time.Second), 5},
			"/api/v1/auth/user/login":           {rate.Every(2 * time.Second), 5},
			"/api/v1/auth/user/send-otp":        {rate.Every(10 * time.Second), 3},
			"/api/v1/auth/user/forgotpassword":  {rate.Every(10 * time.Second), 3},
			"/api/v1/auth/admin/forgotpassword": {rate.Every(10 * time.Second), 3},
			"/api/v1/auth/user/register":        {rate.Every(500 * time.Millisecond), 5},
			// uploads are large and slow
			"/api/v1/videos/upload": {rate.Every(5 * time.Second), 3},
		},
		skipPrefixes: []string{"/uploads/", "/metrics", "/health"},
	}
	return r
}

// Limit overrides the bucket of one route path.
func (r *RateLimiter) Limit(path string, limit rate.Limit, burst int) {
	r.mu.Lock()
	r.endpointLimits[path] = endpointLimit{limit: limit, burst: burst}
	r.mu.Unlock()
}

// Run removes expired blocks every interval until ctx is done.
func (r *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.mu.Lock()
			for ip, blockUntil := range r.blockedIPs {
				if now.After(blockUntil) {
					delete(r.blockedIPs, ip)
					r.resetIP(ip)
				}
			}
			r.mu.Unlock()
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, prefix := range r.skipPrefixes {
				if strings.HasPrefix(path, prefix) {
					return next(c)
				}
			}

			ip := c.RealIP()
			now := time.Now()

			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[ip]; blocked {
				if now.Before(blockUntil) {
					r.mu.Unlock()
					return tooManyRequests(c, blockUntil)
				}
				delete(r.blockedIPs, ip)
				r.resetIP(ip)
			}
			limit, burst := r.defaultLimit, r.defaultBurst
			if l, ok := r.endpointLimits[c.Path()]; ok {
				limit, burst = l.limit, l.burst
			}
			key := ip + "|" + c.Path()
			limiter, ok := r.ips[key]
			if !ok {
				limiter = rate.NewLimiter(limit, burst)
				r.ips[key] = limiter
			}
			allowed := limiter.Allow()
			if !allowed {
				r.blockedIPs[ip] = now.Add(r.blockDuration)
			}
			r.mu.Unlock()

			if !allowed {
				return tooManyRequests(c, now.Add(r.blockDuration))
			}
			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context, retryAfter time.Time) error {
	c.Response().Header().Set("Retry-After", retryAfter.UTC().Format(http.TimeFormat))
	return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
		Success: false,
		Error:   "Too many requests, please try again later",
	})
}

// resetIP drops every bucket held for ip. Callers hold r.mu.
func (r *RateLimiter) resetIP(ip string) {
	prefix := ip + "|"
	for key := range r.ips {
		if strings.HasPrefix(key, prefix) {
			delete(r.ips, key)
		}
	}
}

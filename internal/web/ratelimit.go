package web

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	uploadBurst  = 3
	limiterIdle  = 10 * time.Minute
	limiterSweep = 5 * time.Minute
)

// ipRateLimiter throttles requests per client address.
type ipRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterInfo
	perSecond rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type limiterInfo struct {
	limiter      *rate.Limiter
	lastAccessed time.Time
}

func newIPRateLimiter(perSecond float64, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters:  make(map[string]*limiterInfo),
		perSecond: rate.Limit(perSecond),
		burst:     burst,
		now:       time.Now,
	}
}

func (i *ipRateLimiter) allow(ip string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if now.Sub(i.lastSweep) > limiterSweep {
		for key, info := range i.limiters {
			if now.Sub(info.lastAccessed) > limiterIdle {
				delete(i.limiters, key)
			}
		}
		i.lastSweep = now
	}

	info, ok := i.limiters[ip]
	if !ok {
		info = &limiterInfo{limiter: rate.NewLimiter(i.perSecond, i.burst)}
		i.limiters[ip] = info
	}
	info.lastAccessed = now

	return info.limiter.AllowN(now, 1)
}

func (i *ipRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !i.allow(clientIP(r)) {
			writeAPIError(w, http.StatusTooManyRequests, "too many uploads, please wait a moment")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

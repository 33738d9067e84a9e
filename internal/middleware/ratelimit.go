package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rahul4469/propmate/internal/views"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// staleLimiterAge is how long an idle client's bucket is kept.
const staleLimiterAge = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per client IP. It protects the provider
// quotas behind the analysis, offer and chat routes.
type RateLimiter struct {
	limit  rate.Limit
	burst  int
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

func NewRateLimiter(perMinute, burst int, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		limit:   rate.Every(time.Minute / time.Duration(max(perMinute, 1))),
		burst:   max(burst, 1),
		logger:  logger,
		now:     time.Now,
		clients: make(map[string]*clientLimiter),
	}
}

// Limit rejects requests over the client's budget with 429.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.allow(ip) {
			l.logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
			w.Header().Set("Retry-After", "60")
			views.Error(w, http.StatusTooManyRequests, views.CodeRateLimited, "Too many requests. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > time.Minute {
		for key, c := range l.clients {
			if now.Sub(c.lastSeen) > staleLimiterAge {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// clientIP uses RemoteAddr, which chi's RealIP middleware has already
// rewritten from proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

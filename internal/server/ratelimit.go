package server

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/promoforge/promoforge/internal/logging"
)

const (
	// defaultRateLimit is the sustained request rate per client IP.
	defaultRateLimit = 10
	// defaultRateBurst is the maximum instantaneous burst per client IP.
	defaultRateBurst = 20

	// limiterIdleCutoff is how long an IP must be idle before its limiter
	// is evicted.
	limiterIdleCutoff = 5 * time.Minute
	// evictInterval is how often stale limiters are scanned for eviction.
	evictInterval = time.Minute
)

// ipLimiter pairs a token bucket with the time it was last used.
type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter enforces a per-IP token bucket across all protected routes.
type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	rps      rate.Limit
	burst    int
	log      *slog.Logger
}

// newRateLimiter returns a limiter and a stop function that terminates the
// background eviction goroutine.
func newRateLimiter(rps float64, burst int, log *slog.Logger) (*rateLimiter, func()) {
	rl := &rateLimiter{
		limiters: make(map[string]*ipLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		log:      log,
	}

	done := make(chan struct{})
	go rl.evictLoop(done)

	var once sync.Once
	stop := func() { once.Do(func() { close(done) }) }
	return rl, stop
}

// evictLoop periodically removes limiters for IPs that have gone idle so the
// map does not grow without bound.
func (rl *rateLimiter) evictLoop(done <-chan struct{}) {
	ticker := time.NewTicker(evictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-limiterIdleCutoff)
			rl.mu.Lock()
			for ip, l := range rl.limiters {
				if l.lastSeen.Before(cutoff) {
					delete(rl.limiters, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// get returns the token bucket for ip, creating it on first sight.
func (rl *rateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[ip] = l
	}
	l.lastSeen = time.Now()
	return l.limiter
}

// middleware rejects requests that exceed the per-IP rate with 429.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.get(ip).Allow() {
			log := logging.FromContext(r.Context())
			log.Warn("rate limit exceeded", slog.String("ip", ip))
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client address from the request, stripping the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package web

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the RateLimit middleware.
type RateLimitConfig struct {
	Rate    float64                      // requests per second
	Burst   int                          // max burst
	KeyFunc func(r *http.Request) string // default: remote IP
	MaxIdle time.Duration                // forget clients idle longer than this (default: 5m)
}

// RateLimit returns middleware that applies per-client token bucket limits.
// Limited requests get a 429 problem document with a Retry-After header.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = remoteHost
	}
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = 5 * time.Minute
	}
	retryAfter := "1"
	if cfg.Rate > 0 && cfg.Rate < 1 {
		retryAfter = strconv.FormatFloat(1/cfg.Rate, 'f', 0, 64)
	}

	set := &limiterSet{
		limit:    rate.Limit(cfg.Rate),
		burst:    cfg.Burst,
		maxIdle:  cfg.MaxIdle,
		limiters: make(map[string]*limiterEntry),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !set.get(cfg.KeyFunc(r), time.Now()).Allow() {
				w.Header().Set("Retry-After", retryAfter)
				writeErrorResponse(w, Error(http.StatusTooManyRequests, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet holds one limiter per client key. Idle entries are pruned
// lazily, at most once per maxIdle.
type limiterSet struct {
	limit   rate.Limit
	burst   int
	maxIdle time.Duration

	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	lastPrune time.Time
}

func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastPrune) >= s.maxIdle {
		for k, e := range s.limiters {
			if now.Sub(e.lastSeen) > s.maxIdle {
				delete(s.limiters, k)
			}
		}
		s.lastPrune = now
	}

	e, ok := s.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

package chi

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// limiterIdleTTL evicts buckets of callers idle this long.
	limiterIdleTTL = 10 * time.Minute
	// maxLimiters bounds the bucket map.
	maxLimiters = 10_000
)

// RateLimitMiddleware limits requests per authenticated API key, falling
// back to the client address. It must run after BearerAuthMiddleware.
// rps <= 0 disables limiting.
func RateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiters := newLimiterSet(rate.Limit(rps), burst, time.Now)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			l := limiters.get(clientKey(r))
			if !l.Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter(rps)))
				writeError(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	max       int
	now       func() time.Time
	lastSweep time.Time
	entries   map[string]*limiterEntry
}

func newLimiterSet(limit rate.Limit, burst int, now func() time.Time) *limiterSet {
	return &limiterSet{
		limit:     limit,
		burst:     burst,
		idle:      limiterIdleTTL,
		max:       maxLimiters,
		now:       now,
		lastSweep: now(),
		entries:   make(map[string]*limiterEntry),
	}
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= s.idle {
		s.sweep(now)
	}
	e, ok := s.entries[key]
	if !ok {
		if len(s.entries) >= s.max {
			s.sweep(now)
			if len(s.entries) >= s.max {
				s.evictOldest()
			}
		}
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// sweep drops buckets idle for longer than s.idle. Caller holds s.mu.
func (s *limiterSet) sweep(now time.Time) {
	for k, e := range s.entries {
		if now.Sub(e.lastSeen) >= s.idle {
			delete(s.entries, k)
		}
	}
	s.lastSweep = now
}

// evictOldest drops the least recently seen bucket. Caller holds s.mu.
func (s *limiterSet) evictOldest() {
	var (
		oldest string
		at     time.Time
	)
	for k, e := range s.entries {
		if oldest == "" || e.lastSeen.Before(at) {
			oldest, at = k, e.lastSeen
		}
	}
	delete(s.entries, oldest)
}

func (s *limiterSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// clientKey trusts only keys BearerAuthMiddleware verified; an unverified
// Authorization header cannot buy a fresh bucket.
func clientKey(r *http.Request) string {
	if key := authenticatedKey(r.Context()); key != "" {
		return "key:" + key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}

func retryAfter(rps float64) int {
	if rps >= 1 {
		return 1
	}
	return int(1/rps + 0.5)
}

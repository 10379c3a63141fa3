package middleware

import (
	"log/slog"
	"net/http"
	"net/netip"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig describes a per-client token bucket. A zero PerMinute
// disables limiting.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
	// Idle is how long an untouched client bucket is kept. Defaults to 10m.
	Idle time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterStore struct {
	mu        sync.Mutex
	buckets   map[netip.Addr]*bucket
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterStore(cfg RateLimitConfig) *limiterStore {
	idle := cfg.Idle
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &limiterStore{
		buckets: make(map[netip.Addr]*bucket),
		limit:   rate.Every(time.Minute / time.Duration(cfg.PerMinute)),
		burst:   burst,
		idle:    idle,
		now:     time.Now,
	}
}

// allow takes a token from addr's bucket. Idle buckets are swept at most
// once per idle period, on the request path.
func (s *limiterStore) allow(addr netip.Addr) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.idle {
		for a, b := range s.buckets {
			if now.Sub(b.lastSeen) >= s.idle {
				delete(s.buckets, a)
			}
		}
		s.lastSweep = now
	}

	b, ok := s.buckets[addr]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.buckets[addr] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// RateLimit answers 429 once a client address has spent its bucket. Every
// route wrapped by the same returned middleware shares one bucket per
// client. Requests whose RemoteAddr cannot be parsed are let through.
func RateLimit(cfg RateLimitConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if cfg.PerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return rateLimit(newLimiterStore(cfg), logger)
}

func rateLimit(store *limiterStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr, ok := remoteIP(r.RemoteAddr)
			if ok && !store.allow(addr) {
				logger.WarnContext(r.Context(), "rate limit exceeded",
					slog.String("client", addr.String()),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Too many attempts. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/codegrant/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	// Requests allowed per Window. Zero or less disables limiting.
	Requests int
	Window   time.Duration
	// Burst allows temporary spikes above the steady rate.
	Burst int
}

// Enabled reports whether the config actually limits anything.
func (c RateLimitConfig) Enabled() bool {
	return c.Requests > 0 && c.Window > 0
}

// Default profiles.
var (
	// StrictLimit guards credential checks such as the token exchange.
	StrictLimit = RateLimitConfig{Requests: 10, Window: time.Minute, Burst: 10}

	// LenientLimit guards browser facing redirects.
	LenientLimit = RateLimitConfig{Requests: 100, Window: time.Minute, Burst: 100}
)

// KeyExtractor picks the bucket a request is counted against.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor keys on the client IP, trusting X-Forwarded-For and then
// X-Real-IP when present.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// HeaderKeyExtractor keys on a request header, e.g. client_id on the token endpoint.
func HeaderKeyExtractor(name string) KeyExtractor {
	return func(r *http.Request) string {
		return strings.TrimSpace(r.Header.Get(name))
	}
}

// QueryKeyExtractor keys on a query parameter.
func QueryKeyExtractor(name string) KeyExtractor {
	return func(r *http.Request) string {
		return r.URL.Query().Get(name)
	}
}

// CompositeKeyExtractor joins the non-empty keys of every extractor with sep.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// limiterSet hands out one token bucket per key and forgets idle ones.
type limiterSet struct {
	limiters sync.Map // map[string]*rate.Limiter
	limit    rate.Limit
	burst    int

	mu        sync.Mutex
	lastSweep time.Time
}

func (s *limiterSet) get(key string) *rate.Limiter {
	if l, ok := s.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}

	actual, _ := s.limiters.LoadOrStore(key, rate.NewLimiter(s.limit, s.burst))
	s.sweep()

	return actual.(*rate.Limiter)
}

// sweep drops buckets that have refilled completely, at most every 5 minutes.
func (s *limiterSet) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.lastSweep) < 5*time.Minute {
		return
	}
	s.lastSweep = time.Now()

	s.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(s.burst) {
			s.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitMiddleware limits requests per key. Rejected requests get a 429
// StatusBody with Retry-After set. Requests with no key pass through.
func RateLimitMiddleware(cfg RateLimitConfig, keyOf KeyExtractor) Middleware {
	if !cfg.Enabled() {
		return func(next http.Handler) http.Handler { return next }
	}

	burst := max(cfg.Burst, 1)
	set := &limiterSet{
		limit:     rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		burst:     burst,
		lastSweep: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := keyOf(r)
			if key == "" {
				log.Warn("rate limit: no key for request, allowing")
				next.ServeHTTP(w, r)
				return
			}

			limiter := set.get(key)
			if !limiter.Allow() {
				res := limiter.Reserve()
				delay := res.Delay()
				res.Cancel()

				retryAfter := max(int(delay.Seconds()), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
				w.Header().Set("X-RateLimit-Window", cfg.Window.String())

				log.Warn("rate limit exceeded",
					"key", key,
					"path", r.URL.Path,
					"retry_after", retryAfter,
				)

				WriteStatus(w, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP limits by client IP only.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, IPKeyExtractor)
}

// RateLimitByIPAndHeader limits by client IP plus the value of a header, so a
// single address probing many client ids is throttled per client id.
func RateLimitByIPAndHeader(cfg RateLimitConfig, header string) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":",
		IPKeyExtractor,
		HeaderKeyExtractor(header),
	))
}

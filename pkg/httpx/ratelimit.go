package httpx

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines a token-bucket profile.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

var (
	// StrictLimit guards credential endpoints against brute force.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit covers authenticated mutations.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}

	// LenientLimit covers ordinary authenticated reads.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterTable struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	cfg     RateLimitConfig
}

func newLimiterTable(cfg RateLimitConfig) *limiterTable {
	t := &limiterTable{
		entries: make(map[string]*limiterEntry),
		cfg:     cfg,
	}
	go t.evictLoop()
	return t
}

func (t *limiterTable) allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		limit := rate.Limit(float64(t.cfg.RequestsPerWindow) / t.cfg.Window.Seconds())
		e = &limiterEntry{limiter: rate.NewLimiter(limit, t.cfg.Burst)}
		t.entries[key] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Allow()
}

// evictLoop drops idle entries so the table doesn't grow with every client
// ever seen.
func (t *limiterTable) evictLoop() {
	const idle = 10 * time.Minute
	for range time.Tick(idle) {
		t.mu.Lock()
		for key, e := range t.entries {
			if time.Since(e.lastSeen) > idle {
				delete(t.entries, key)
			}
		}
		t.mu.Unlock()
	}
}

// RateLimitByIP limits requests per client IP using the given profile.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	table := newLimiterTable(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !table.allow(clientIP(r)) {
				w.Header().Set("Retry-After", "60")
				WriteDetail(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

type window struct {
	count int
	until time.Time
}

// FixedWindow counts hits per key and refuses them past limit until the window rolls over.
type FixedWindow struct {
	limit int
	per   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	windows map[string]*window
	sweepAt time.Time
}

func NewFixedWindow(limit int, per time.Duration) *FixedWindow {
	return &FixedWindow{limit: limit, per: per, now: time.Now, windows: make(map[string]*window)}
}

// Allow records a hit for key. A non-positive limit disables the check.
func (f *FixedWindow) Allow(key string) bool {
	if f == nil || f.limit <= 0 {
		return true
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if now.After(f.sweepAt) {
		for k, w := range f.windows {
			if now.After(w.until) {
				delete(f.windows, k)
			}
		}
		f.sweepAt = now.Add(f.per)
	}
	w, ok := f.windows[key]
	if !ok || now.After(w.until) {
		w = &window{until: now.Add(f.per)}
		f.windows[key] = w
	}
	if w.count >= f.limit {
		return false
	}
	w.count++
	return true
}

func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	limiter := NewFixedWindow(limit, per)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientIPForRateLimit(r)) {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			if ip := strings.TrimSpace(part); net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}

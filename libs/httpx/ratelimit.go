package httpx

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Quota is the outcome of counting one request against a client's window.
type Quota struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// Limiter counts a request for key and reports whether it fits the window.
type Limiter interface {
	Take(ctx context.Context, key string) (Quota, error)
}

// RateLimit rejects clients over their quota with 429 and advertises the
// quota in X-RateLimit-* headers. With failOpen, limiter errors let the request through.
func RateLimit(l Limiter, logger *slog.Logger, failOpen bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q, err := l.Take(r.Context(), ClientKey(r))
			if err != nil {
				logger.Warn("rate limiter error", "err", err, "request_id", RequestIDFromContext(r.Context()))
				if failOpen {
					next.ServeHTTP(w, r)
					return
				}
				WriteError(w, http.StatusServiceUnavailable, "rate limiter unavailable")
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(q.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(q.Remaining))
			if !q.Allowed {
				secs := int(q.ResetIn.Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				h.Set("Retry-After", strconv.Itoa(secs))
				WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MemoryLimiter is a per-client fixed-window limiter for a single replica.
type MemoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]fixedWindow
	swept   time.Time
}

type fixedWindow struct {
	count int
	ends  time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	limit, window = limiterDefaults(limit, window)
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		windows: map[string]fixedWindow{},
	}
}

func (m *MemoryLimiter) Take(_ context.Context, key string) (Quota, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	fw, ok := m.windows[key]
	if !ok || !now.Before(fw.ends) {
		fw = fixedWindow{ends: now.Add(m.window)}
	}
	fw.count++
	m.windows[key] = fw
	return quotaFor(m.limit, fw.count, fw.ends.Sub(now)), nil
}

// sweep drops finished windows at most once per window length. Caller holds m.mu.
func (m *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(m.swept) < m.window {
		return
	}
	for k, fw := range m.windows {
		if !now.Before(fw.ends) {
			delete(m.windows, k)
		}
	}
	m.swept = now
}

func quotaFor(limit, count int, resetIn time.Duration) Quota {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Quota{Allowed: count <= limit, Limit: limit, Remaining: remaining, ResetIn: resetIn}
}

func limiterDefaults(limit int, window time.Duration) (int, time.Duration) {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return limit, window
}

// ClientKey identifies the caller: first X-Forwarded-For hop, else the remote host.
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

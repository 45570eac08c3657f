package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// visitor tracks the token bucket for a single client IP.
type visitor struct {
	tokens   float64
	lastSeen time.Time
}

// Limiter applies a token-bucket limit per client IP. Buckets refill at
// rate tokens per second up to burst. Stale buckets are swept lazily so
// the limiter needs no background goroutine.
type Limiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rate      float64
	burst     float64
	lastSweep time.Time
}

const visitorTTL = 10 * time.Minute

// NewLimiter creates a per-IP limiter allowing rate requests per second
// with the given burst.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		visitors:  make(map[string]*visitor),
		rate:      rate,
		burst:     float64(burst),
		lastSweep: time.Now(),
	}
}

// Allow reports whether a request from ip may proceed, consuming one
// token if so.
func (l *Limiter) Allow(ip string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > visitorTTL {
		l.sweepLocked(now)
	}

	v, ok := l.visitors[ip]
	if !ok {
		l.visitors[ip] = &visitor{tokens: l.burst - 1, lastSeen: now}
		return true
	}

	v.tokens += now.Sub(v.lastSeen).Seconds() * l.rate
	if v.tokens > l.burst {
		v.tokens = l.burst
	}
	v.lastSeen = now

	if v.tokens < 1 {
		return false
	}
	v.tokens--
	return true
}

// sweepLocked drops buckets idle longer than visitorTTL. Caller holds mu.
func (l *Limiter) sweepLocked(now time.Time) {
	cutoff := now.Add(-visitorTTL)
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
		}
	}
	l.lastSweep = now
}

// RateLimit rejects requests over the configured per-IP rate with
// 429 Too Many Requests and a Retry-After hint.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewLimiter(rate, burst)
	retryAfter := strconv.Itoa(int(1/rate) + 1)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// chi's RealIP middleware rewrites RemoteAddr from
			// X-Real-Ip / X-Forwarded-For before we get here.
			if !limiter.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

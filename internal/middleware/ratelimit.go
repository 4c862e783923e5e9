package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"archedit/internal/domain"
	"archedit/internal/i18n"
)

// KeyFunc picks the bucket a request is counted against. An empty key is not
// limited.
type KeyFunc func(r *http.Request) string

type bucket struct {
	count int
	until time.Time
}

type limiter struct {
	mu      sync.Mutex
	limit   int
	per     time.Duration
	buckets map[string]*bucket
	swept   time.Time
	now     func() time.Time
}

// allow counts one request for key and reports the wait until the window
// reopens when the limit is reached.
func (l *limiter) allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.swept) > l.per {
		for k, b := range l.buckets {
			if now.After(b.until) {
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}
	b, ok := l.buckets[key]
	if !ok || now.After(b.until) {
		b = &bucket{until: now.Add(l.per)}
		l.buckets[key] = b
	}
	if b.count >= l.limit {
		return false, b.until.Sub(now)
	}
	b.count++
	return true, 0
}

// RateLimit allows limit requests per client IP in each fixed window of per.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	return RateLimitBy(limit, per, ClientKey)
}

// RateLimitBy is RateLimit with a custom bucket key. Rejected requests get a
// localised JSON error and a Retry-After header.
func RateLimitBy(limit int, per time.Duration, key KeyFunc) func(http.Handler) http.Handler {
	l := &limiter{limit: limit, per: per, buckets: make(map[string]*bucket), now: time.Now}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}
			ok, wait := l.allow(k)
			if !ok {
				tooManyRequests(w, r, wait)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tooManyRequests(w http.ResponseWriter, r *http.Request, wait time.Duration) {
	locale := LocaleFromContext(r.Context())
	w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {
			"code":    domain.CodeRateLimited,
			"message": i18n.MessageFor(locale, domain.CodeRateLimited, "too many requests"),
		},
	})
}

// ClientKey buckets requests by client IP.
func ClientKey(r *http.Request) string {
	return clientIPForRateLimit(r)
}

// SessionKey buckets requests by the editing session named in the route, so
// one session cannot use up the generation quota of another.
func SessionKey(r *http.Request) string {
	if id := chi.URLParam(r, "id"); id != "" {
		return "session:" + id
	}
	return ""
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}

// Package middleware provides the HTTP middleware stack for the storefront API.
package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Aleksandergreg/storefront/pkg/response"
)

// bucket tracks a sliding-window request count for one caller.
type bucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

func (b *bucket) allow(max int, window time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if now.After(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(window)
	}

	b.count++
	return b.count <= max
}

var (
	bucketsMu sync.Mutex
	buckets   = map[string]*bucket{}
)

func init() {
	// Background goroutine: evict buckets whose window has expired.
	// Runs every minute; prevents unbounded memory growth on long-running servers.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()
			bucketsMu.Lock()
			for key, b := range buckets {
				b.mu.Lock()
				expired := now.After(b.resetAt)
				b.mu.Unlock()
				if expired {
					delete(buckets, key)
				}
			}
			bucketsMu.Unlock()
		}
	}()
}

func getBucket(key string) *bucket {
	bucketsMu.Lock()
	defer bucketsMu.Unlock()

	if b, ok := buckets[key]; ok {
		return b
	}

	b := &bucket{resetAt: time.Now().Add(time.Minute)}
	buckets[key] = b
	return b
}

// rateKey identifies the caller for rate limiting. Mobile clients sit behind
// carrier NAT, so a plain IP key would throttle whole networks at once: the
// device id (or bearer token) is preferred and IP is the fallback for
// requests carrying neither.
func rateKey(r *http.Request) string {
	if device := strings.TrimSpace(r.Header.Get(DeviceHeader)); device != "" {
		return "device:" + device
	}
	if tok := bearerToken(r); tok != "" {
		return "token:" + tok
	}

	ip := r.RemoteAddr
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip = fwd
	}
	return "ip:" + ip
}

// RateLimit returns a middleware that limits each caller to max requests per
// window. Example: middleware.RateLimit(300, time.Minute)
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !getBucket(rateKey(r)).allow(max, window) {
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package ratelimit

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// KeyFunc extracts the client identifier of a request.
type KeyFunc func(r *http.Request) string

// Middleware enforces the limiter per client. Every response carries the
// quota headers:
//
//	X-RateLimit-Limit     requests allowed per window
//	X-RateLimit-Remaining tokens left
//	X-RateLimit-Reset     Unix time at which the bucket is full again
//
// A client over its quota gets 429 with a JSON error body and onReject, when
// non-nil, is called.
func Middleware(limiter *Limiter, key KeyFunc, onReject func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)

			limit, remaining, resetAt := limiter.Status(k)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !limiter.Allow(k) {
				if onReject != nil {
					onReject()
				}
				w.Header().Set("Retry-After", strconv.FormatInt(int64(limiter.window.Seconds())/int64(max(limiter.rate, 1))+1, 10))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{
						"code":    "rate_limited",
						"message": "Rate limit exceeded. Try again later.",
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

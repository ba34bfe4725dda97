package cache

import (
	"bytes"
	"net/http"
	"strings"
	"time"
)

// Header reports whether a response came from the cache.
const Header = "X-Cache"

// Key returns the cache key for a request: its exact path and raw query.
func Key(r *http.Request) string {
	return r.URL.RequestURI()
}

// Middleware serves GET requests from c and stores successful JSON
// responses for ttl. Requests for which bypass returns true are neither
// served from nor written to the cache.
func Middleware(c Cache, ttl time.Duration, bypass func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c == nil || r.Method != http.MethodGet || (bypass != nil && bypass(r)) {
				next.ServeHTTP(w, r)
				return
			}

			key := Key(r)
			if body, ok := c.Get(r.Context(), key); ok {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(Header, "HIT")
				w.WriteHeader(http.StatusOK)
				w.Write(body)
				return
			}

			w.Header().Set(Header, "MISS")
			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status == http.StatusOK && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
				c.Set(r.Context(), key, rec.body.Bytes(), ttl)
			}
		})
	}
}

// recorder tees the response body so it can be cached after the handler ran.
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

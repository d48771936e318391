package middleware

import (
	"net/http"
	"sync/atomic"
)

// Counters holds the process-lifetime request counters the metrics
// endpoint reports. The zero value is ready to use.
type Counters struct {
	Requests atomic.Int64
	Errors   atomic.Int64
}

// CountRequests records every request in c. Responses with a 4xx or
// 5xx status also increment the error counter.
func CountRequests(c *Counters) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Requests.Add(1)

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			if rw.statusCode >= 400 {
				c.Errors.Add(1)
			}
		})
	}
}

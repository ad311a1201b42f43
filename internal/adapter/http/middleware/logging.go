package middleware

import (
	"net/http"
	"time"

	wrap "github.com/Temutjin2k/auth-service/pkg/logger/wrapper"
)

// Logging logs the start and end of every request with its request ID.
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := wrap.WithAction(r.Context(), "http_request")

		rw := &responseWriter{ResponseWriter: w}

		m.log.Debug(
			ctx,
			"started",
			"method", r.Method,
			"URL", r.URL.Path,
			"request-host", r.Host,
		)

		next.ServeHTTP(rw, r)

		m.log.Info(
			ctx,
			"completed",
			"method", r.Method,
			"URL", r.URL.Path,
			"status", rw.Status(),
			"duration", time.Since(start).String(),
		)
	})
}

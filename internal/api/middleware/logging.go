package middleware

import (
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RequestLogger logs every request once it has been served. 4xx responses
// are logged at warn, 5xx at error.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			event := log.Info()
			if status >= 400 {
				event = log.Warn()
			}
			if status >= 500 {
				event = log.Error()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("ip", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Str("request_id", chiMiddleware.GetReqID(r.Context())).
				Int("body_size", ww.BytesWritten()).
				Msg("request")
		}
		return http.HandlerFunc(fn)
	}
}

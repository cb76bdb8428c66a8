package httputil

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"meeting-scheduler-api/internal/metrics"
)

// Logging logs one line per request and records it in m when m is non-nil.
// Metrics are labelled by chi route pattern to keep cardinality bounded.
func Logging(log *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &logResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			if lrw.status == 0 {
				lrw.status = http.StatusOK
			}
			dur := time.Since(start)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			if m != nil {
				m.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(lrw.status)).Inc()
				m.HTTPDuration.WithLabelValues(route, r.Method).Observe(dur.Seconds())
			}

			reqID, _ := FromContext(r.Context())
			level := slog.LevelInfo
			if lrw.status >= 500 {
				level = slog.LevelError
			}
			log.Log(r.Context(), level, "http request",
				"req_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", lrw.status,
				"bytes", lrw.bytes,
				"duration_ms", dur.Milliseconds(),
			)
		})
	}
}

type logResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *logResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *logResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

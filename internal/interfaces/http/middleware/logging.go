package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
)

// HTTPMetrics records per-request counters and latency.  The prometheus
// collector implements it.
type HTTPMetrics interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// RequestLogger logs one line per request and feeds the HTTP metrics.
// Routes are recorded as chi patterns, not raw paths, to keep metric
// cardinality bounded.
func RequestLogger(logger logging.Logger, metrics HTTPMetrics) func(http.Handler) http.Handler {
	logger = logger.Named("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			if metrics != nil {
				metrics.RecordHTTPRequest(r.Method, route, ww.Status(), duration)
			}
			logger.Info("request served",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.String("route", route),
				logging.Int("status", ww.Status()),
				logging.Int("bytes", ww.BytesWritten()),
				logging.Duration("duration", duration),
				logging.String("remote", r.RemoteAddr))
		})
	}
}

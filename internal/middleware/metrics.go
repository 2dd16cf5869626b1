package middleware

import (
	"net/http"
	"time"

	"WardrobeAI/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// WithMetrics учитывает каждый завершённый запрос в коллекторе.
// Маршрут берётся из шаблона chi, чтобы не плодить лейблы на каждый id.
func WithMetrics(collector *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rd := &responseData{status: http.StatusOK}
			lw := &loggingResponseWriter{ResponseWriter: w, responseData: rd}

			next.ServeHTTP(lw, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			collector.RecordRequest(r.Method, route, rd.status, time.Since(start))
		})
	}
}

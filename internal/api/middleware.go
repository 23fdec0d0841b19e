package api

import (
	"context"
	"net/http"
	"time"

	"issue-analysis/internal/common/metrics"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "requestId"

// RequestID returns the request identifier attached by the middleware,
// or an empty string.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// statusWriter captures the response status for logging and metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		s.log.Info("Request handled", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  RequestID(r.Context()),
		})
	})
}

func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("Handler panicked", map[string]interface{}{
					"path":      r.URL.Path,
					"panic":     rec,
					"requestId": RequestID(r.Context()),
				})
				writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
					"success": false,
					"message": "Internal error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// instrument records request count, failures and duration per operation.
func (s *Server) instrument(operation string, handler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.AnalysisRequests.WithLabelValues(operation).Inc()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		handler(sw, r)

		if sw.status >= http.StatusBadRequest {
			metrics.AnalysisFailures.WithLabelValues(operation, http.StatusText(sw.status)).Inc()
		}
		metrics.AnalysisDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	})
}

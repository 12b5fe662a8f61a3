package http

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxLoggedBody caps how much of a request or error body is logged
const maxLoggedBody = 1024

// LoggingMiddleware logs requests and responses at debug level
type LoggingMiddleware struct {
	log *slog.Logger
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(log *slog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		log: log,
	}
}

// loggingResponseWriter wraps http.ResponseWriter to capture response details
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if remaining := maxLoggedBody - lrw.body.Len(); remaining > 0 {
		lrw.body.Write(b[:min(len(b), remaining)])
	}
	return lrw.ResponseWriter.Write(b)
}

// Middleware returns the HTTP logging middleware function
func (l *LoggingMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		attrs := []any{"method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr}

		if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut) {
			bodyBytes, err := io.ReadAll(r.Body)
			if err != nil {
				l.log.Debug("error reading request body", "error", err)
			} else {
				// Replace the body for the handler
				r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
				if len(bodyBytes) > 0 {
					attrs = append(attrs, "body", truncate(bodyBytes))
				}
			}
		}
		l.log.Debug("http request", attrs...)

		lrw := &loggingResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(lrw, r)

		respAttrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", lrw.statusCode,
			"duration", time.Since(start),
		}
		if lrw.statusCode >= 400 && lrw.body.Len() > 0 {
			respAttrs = append(respAttrs, "error_body", lrw.body.String())
		}
		l.log.Debug("http response", respAttrs...)
	})
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "..."
	}
	return string(b)
}

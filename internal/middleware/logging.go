// file: internal/middleware/logging.go
package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/contextutils"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/response"
)

// SlowRequestThreshold marks requests worth a warning. A try-earn call fans
// out to three collaborators, so anything above this usually means one of
// them is degraded.
const SlowRequestThreshold = 2 * time.Second

// responseWriter captures status and size for logging and metrics
type responseWriter struct {
	http.ResponseWriter
	status       int
	bytesWritten int
	wroteHeader  bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(data)
	rw.bytesWritten += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logging logs one line per completed request. Server errors log at error
// level, client errors and slow requests at warn.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start, ok := contextutils.GetRequestStart(r.Context())
			if !ok {
				start = time.Now()
			}

			rw := wrapResponseWriter(w)
			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			requestLogger := contextutils.GetLogger(r.Context(), logger)
			fields := []zap.Field{
				zap.Int("status", rw.status),
				zap.Duration("duration", duration),
				zap.Int("response_size", rw.bytesWritten),
			}

			switch {
			case response.IsServerError(rw.status):
				requestLogger.Error("Request completed", fields...)
			case rw.status >= http.StatusBadRequest:
				requestLogger.Warn("Request completed", fields...)
			case duration > SlowRequestThreshold:
				requestLogger.Warn("Slow request", fields...)
			default:
				requestLogger.Info("Request completed", fields...)
			}
		})
	}
}

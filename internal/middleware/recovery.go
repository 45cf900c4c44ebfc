// File: internal/middleware/recovery.go
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/contextutils"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/response"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/services"
)

// Recovery turns a handler panic into a masked 500 envelope
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				contextutils.GetLogger(r.Context(), logger).Error("Panic recovered",
					zap.String("event", "panic_recovered"),
					zap.Any("panic_error", rec),
					zap.String("panic_type", fmt.Sprintf("%T", rec)),
					zap.ByteString("stack", debug.Stack()),
				)

				err := services.NewInternalError(fmt.Sprintf("panic: %v", rec))
				if builder := response.GetBuilder(r.Context()); builder != nil {
					builder.WriteError(w, r, err)
					return
				}
				sendFallbackPanicResponse(w, r)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// sendFallbackPanicResponse is used when the response builder middleware did not run
func sendFallbackPanicResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(w, `{"success":false,"error":{"type":%q,"message":"An internal error occurred"},"request_id":%q}`,
		services.ErrTypeInternal, contextutils.GetRequestID(r.Context()))
}

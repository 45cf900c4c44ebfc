// File: internal/response/status.go
package response

import (
	"net/http"
	"strings"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/services"
)

// ===============================
// STATUS HELPERS
// ===============================

// IsServerError checks if status code indicates server error (5xx)
func IsServerError(code int) bool {
	return code >= 500 && code < 600
}

// ===============================
// ROUTER FALLBACKS
// ===============================

// WriteNotFound writes the envelope for an unknown route
func (b *Builder) WriteNotFound(w http.ResponseWriter, r *http.Request) {
	b.WriteError(w, r, services.NewNotFoundError("resource not found"))
}

// WriteMethodNotAllowed writes a method not allowed response (405)
func (b *Builder) WriteMethodNotAllowed(w http.ResponseWriter, r *http.Request, allowedMethods []string) {
	if len(allowedMethods) > 0 {
		w.Header().Set("Allow", strings.Join(allowedMethods, ", "))
	}
	b.WriteJSON(w, r, b.Error(r.Context(), &services.ServiceError{
		Type:       "METHOD_NOT_ALLOWED",
		Message:    "method not allowed",
		StatusCode: http.StatusMethodNotAllowed,
	}), http.StatusMethodNotAllowed)
}

// ===============================
// HEALTH CHECK RESPONSES
// ===============================

// WriteHealthCheck writes a health report. Only an unhealthy report is a 503;
// a degraded cache still lets the service answer.
func (b *Builder) WriteHealthCheck(w http.ResponseWriter, r *http.Request, health *services.ServiceHealth) {
	code := http.StatusOK
	if health.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	b.WriteJSON(w, r, b.Success(r.Context(), health), code)
}

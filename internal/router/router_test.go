package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/cache"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/config"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/middleware"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/response"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/services"
)

func newTestHandler(t *testing.T, swagger bool) http.Handler {
	t.Helper()
	memory := cache.NewMemoryCache(cache.DefaultConfig(), zap.NewNop())
	t.Cleanup(func() { _ = memory.Close() })

	cfg := &config.Config{Server: config.ServerConfig{CORSOrigin: "*", EnableSwagger: swagger}}
	collection := &services.ServiceCollection{Cache: memory, Logger: zap.NewNop()}
	return SetupRouter(collection, response.NewBuilder(nil, zap.NewNop()), cfg, zap.NewNop())
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(newTestHandler(t, false), http.MethodGet, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderXRequestID))

	var body struct {
		Success bool                   `json:"success"`
		Data    services.ServiceHealth `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Contains(t, body.Data.Dependencies, "cache")
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	rec := serve(newTestHandler(t, false), http.MethodGet, "/api/v1/nothing-here")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body response.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, services.ErrTypeNotFound, body.Error.Type)
}

func TestMethodNotAllowedListsMethods(t *testing.T) {
	rec := serve(newTestHandler(t, false), http.MethodDelete, "/api/v1/achievements/conditions")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	allow := rec.Header().Get("Allow")
	assert.Contains(t, allow, http.MethodGet)
	assert.Contains(t, allow, http.MethodPost)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t, false)
	serve(h, http.MethodGet, "/health")

	rec := serve(h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "condor_http_requests_total"))
}

func TestSwaggerToggle(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, serve(newTestHandler(t, false), http.MethodGet, "/swagger/doc.json").Code)

	rec := serve(newTestHandler(t, true), http.MethodGet, "/swagger/doc.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/achievements/attempt/{userId}")
}

func TestPreflight(t *testing.T) {
	rec := serve(newTestHandler(t, false), http.MethodOptions, "/api/v1/achievements")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

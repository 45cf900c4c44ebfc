package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	_ "github.com/logicaltomy/CONDOR-BACK-TS/docs" // registers the OpenAPI document

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/config"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/handlers/api/v1/achievements"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/middleware"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/response"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/services"
)

// healthCheckTimeout bounds the dependency checks behind /health
const healthCheckTimeout = 5 * time.Second

// SetupRouter configures all HTTP routes and returns the main handler with
// the middleware chain applied
func SetupRouter(
	serviceCollection *services.ServiceCollection,
	responseBuilder *response.Builder,
	cfg *config.Config,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(responseBuilder.WriteNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		responseBuilder.WriteMethodNotAllowed(w, req, allowedMethods(r, req))
	})

	// Metrics needs the matched route, so it runs inside the router
	r.Use(middleware.Metrics)

	// System endpoints
	r.HandleFunc("/health", healthHandler(serviceCollection, responseBuilder)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if cfg.Server.EnableSwagger {
		r.PathPrefix("/swagger/").Handler(middleware.SwaggerHandler(nil))
	}

	AddAPIv1Routes(r, serviceCollection, responseBuilder, logger)

	return chain(r,
		middleware.RequestID(logger),
		middleware.Recovery(logger),
		response.Middleware(responseBuilder),
		middleware.Logging(logger),
		middleware.SecureHeaders,
		middleware.CORS(cfg.Server.CORSOrigin),
	)
}

// AddAPIv1Routes mounts the versioned JSON API
func AddAPIv1Routes(
	r *mux.Router,
	serviceCollection *services.ServiceCollection,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) {
	api := r.PathPrefix("/api/v1").Subrouter()

	achievementController := achievements.NewAchievementController(serviceCollection, logger, responseBuilder)
	achievementController.RegisterRoutes(api.PathPrefix("/achievements").Subrouter())
}

func healthHandler(serviceCollection *services.ServiceCollection, responseBuilder *response.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		responseBuilder.WriteHealthCheck(w, r, serviceCollection.HealthCheck(ctx))
	}
}

// allowedMethods lists the methods registered for the request path
func allowedMethods(r *mux.Router, req *http.Request) []string {
	var allowed []string
	_ = r.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}
		match := &mux.RouteMatch{}
		for _, method := range methods {
			clone := req.Clone(req.Context())
			clone.Method = method
			if route.Match(clone, match) && match.MatchErr == nil {
				allowed = append(allowed, method)
			}
			match = &mux.RouteMatch{}
		}
		return nil
	})
	return allowed
}

// chain applies middleware so the first argument is the outermost
func chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

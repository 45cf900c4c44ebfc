// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/cache"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/clients"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/config"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/database"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/repositories"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/utils/appinfo"
)

// ServiceCollection holds every service with its dependencies wired
type ServiceCollection struct {
	// Evaluation engine
	Aggregator MetricsAggregator
	Catalog    ConditionCatalog
	Ledger     AwardLedger
	Evaluator  AchievementEvaluator

	// Administration
	Conditions   ConditionService
	Achievements AchievementService
	Awards       AwardService

	Repositories *repositories.Collection
	Cache        cache.Cache
	Logger       *zap.Logger

	db        *database.Manager
	startTime time.Time
}

// Collaborators groups the sibling service clients
type Collaborators struct {
	Profiles ProfileSource
	Sessions SessionSource
	Routes   RegionSource
	Statuses StatusSource
}

// NewCollaborators builds HTTP clients from configuration. Route lookups go
// through the region cache when one is given.
func NewCollaborators(cfg *config.CollaboratorsConfig, regionCache cache.Cache, logger *zap.Logger) *Collaborators {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConnsPerHost: cfg.MaxConcurrentLookups,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	routeCatalog := clients.NewRouteCatalogClient(cfg.RoutesURL, cfg.RequestTimeout, httpClient, logger)

	var routes RegionSource = routeCatalog
	if regionCache != nil {
		routes = clients.NewCachedRouteCatalog(routeCatalog, regionCache, cfg.RegionCacheTTL, logger)
	}

	return &Collaborators{
		Profiles: clients.NewProfileClient(cfg.UsersURL, cfg.RequestTimeout, httpClient, logger),
		Sessions: clients.NewSessionLogClient(cfg.SessionsURL, cfg.RequestTimeout, httpClient, logger),
		Routes:   routes,
		Statuses: clients.NewStatusClient(cfg.StatusesURL, cfg.RequestTimeout, httpClient, logger),
	}
}

// NewServiceCollection wires services in dependency order
func NewServiceCollection(
	db *database.Manager,
	repos *repositories.Collection,
	collaborators *Collaborators,
	appCache cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if repos == nil {
		return nil, fmt.Errorf("repository collection is required")
	}
	if collaborators == nil {
		return nil, fmt.Errorf("collaborators are required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	sc := &ServiceCollection{
		Repositories: repos,
		Cache:        appCache,
		Logger:       logger,
		db:           db,
		startTime:    time.Now(),
	}

	sc.Aggregator = NewMetricsAggregator(
		collaborators.Profiles,
		collaborators.Sessions,
		collaborators.Routes,
		cfg.Collaborators.MaxConcurrentLookups,
		logger.Named("aggregator"),
	)
	sc.Catalog = NewConditionCatalog(repos.Achievement, repos.Condition)
	sc.Ledger = NewAwardLedger(repos.Award, logger.Named("ledger"))
	sc.Evaluator = NewAchievementEvaluator(sc.Aggregator, sc.Catalog, sc.Ledger, logger.Named("evaluator"))

	sc.Conditions = NewConditionService(repos.ConditionType, repos.Condition, logger)
	sc.Achievements = NewAchievementService(repos.Achievement, repos.Condition, collaborators.Statuses, logger)
	sc.Awards = NewAwardService(repos.Award, sc.Achievements)

	logger.Info("Service collection initialized successfully")
	return sc, nil
}

// ServiceHealth represents the health of the service and its dependencies
type ServiceHealth struct {
	Status       string                   `json:"status"`
	Version      string                   `json:"version"`
	Timestamp    time.Time                `json:"timestamp"`
	Uptime       string                   `json:"uptime"`
	Dependencies map[string]ServiceStatus `json:"dependencies"`
	Issues       []string                 `json:"issues,omitempty"`
}

// ServiceStatus represents the status of one dependency
type ServiceStatus struct {
	Name         string        `json:"name"`
	Status       string        `json:"status"`
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
}

// HealthCheck reports database and cache health
func (sc *ServiceCollection) HealthCheck(ctx context.Context) *ServiceHealth {
	health := &ServiceHealth{
		Status:       database.StatusHealthy,
		Version:      appinfo.GetVersion(),
		Timestamp:    time.Now(),
		Uptime:       time.Since(sc.startTime).Round(time.Second).String(),
		Dependencies: make(map[string]ServiceStatus),
	}

	if sc.db != nil {
		dbHealth := sc.db.Health(ctx)
		status := ServiceStatus{
			Name:         "database",
			Status:       dbHealth.Status,
			ResponseTime: dbHealth.ResponseTime,
		}
		if len(dbHealth.Errors) > 0 {
			status.Error = dbHealth.Errors[0]
		}
		health.Dependencies["database"] = status
		if dbHealth.Status != database.StatusHealthy {
			health.Status = database.StatusUnhealthy
			health.Issues = append(health.Issues, fmt.Sprintf("database: %s", dbHealth.Status))
		}
	}

	if sc.Cache != nil {
		start := time.Now()
		status := ServiceStatus{Name: "cache", Status: database.StatusHealthy}
		if err := sc.Cache.Health(ctx); err != nil {
			status.Status = database.StatusDegraded
			status.Error = err.Error()
			if health.Status == database.StatusHealthy {
				health.Status = database.StatusDegraded
			}
			health.Issues = append(health.Issues, fmt.Sprintf("cache: %v", err))
		}
		status.ResponseTime = time.Since(start)
		health.Dependencies["cache"] = status
	}

	return health
}

// Shutdown releases resources owned by the collection
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("Shutting down service collection")
	if sc.Cache != nil {
		if err := sc.Cache.Close(); err != nil {
			return fmt.Errorf("failed to close cache: %w", err)
		}
	}
	return nil
}

// @title           Condor Achievements API
// @version         1.0.0
// @description     Achievement catalog administration and condition evaluation for Condor cyclists.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:9000
// @BasePath  /api/v1

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/cache"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/config"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/database"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/repositories"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/response"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/router"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/services"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/utils/appinfo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting achievements service",
		zap.String("environment", cfg.Server.Environment),
		zap.String("version", appinfo.GetVersion()),
	)

	// Initialize database
	if err := database.InitDB(cfg, logger); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	dbManager := database.GetDB()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("Failed to close database connections", zap.Error(err))
		}
	}()

	repos, err := repositories.NewCollection(dbManager, logger)
	if err != nil {
		logger.Fatal("Failed to initialize repositories", zap.Error(err))
	}

	// Cache backing route region lookups
	cacheConfig := cache.DefaultConfig()
	cacheConfig.Provider = cfg.Cache.Provider
	cacheConfig.RedisURL = cfg.Cache.RedisURL
	cacheConfig.TTL = cfg.Cache.DefaultTTL
	cacheConfig.KeyPrefix = cfg.Cache.KeyPrefix
	cacheInstance, err := cache.NewCache(cacheConfig, logger)
	if err != nil {
		logger.Fatal("Failed to create cache", zap.Error(err))
	}

	collaborators := services.NewCollaborators(&cfg.Collaborators, cacheInstance, logger.Named("collaborators"))
	serviceCollection, err := services.NewServiceCollection(dbManager, repos, collaborators, cacheInstance, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	responseConfig := response.DefaultConfig()
	responseConfig.PrettyJSON = !cfg.IsProduction()
	responseConfig.MaskInternalErrors = cfg.IsProduction()
	responseBuilder := response.NewBuilder(responseConfig, logger)

	handler := router.SetupRouter(serviceCollection, responseBuilder, cfg, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown setup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("address", server.Addr),
			zap.Bool("swagger", cfg.Server.EnableSwagger),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Shutting down application...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		logger.Info("Server shutdown completed")
	}

	if err := serviceCollection.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down services", zap.Error(err))
	}

	final := dbManager.Metrics()
	logger.Info("Final database metrics",
		zap.Int64("total_queries", final.QueryCount),
		zap.Int64("total_errors", final.ErrorCount),
		zap.Int64("slow_queries", final.SlowQueryCount),
	)

	logger.Info("Application shutdown completed")
}


func initLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	switch cfg.Server.Environment {
	case "production", "staging":
		zapConfig = zap.NewProductionConfig()
	default:
		zapConfig = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.Logging.Level, err)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.Encoding = cfg.Logging.Format

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger.With(zap.String("service", cfg.Server.ServerName)), nil
}

package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/config"
)

// DB is the process wide database manager
var DB *Manager

var initMutex sync.Mutex

// InitDB opens the database, applies migrations and waits until the
// achievement tables are reachable.
func InitDB(cfg *config.Config, logger *zap.Logger) error {
	initMutex.Lock()
	defer initMutex.Unlock()

	if DB != nil {
		logger.Info("Database manager already initialized")
		return nil
	}

	logger.Info("Starting database initialization",
		zap.String("environment", cfg.Server.Environment))

	manager, err := NewManager(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	migrationsPath := determineMigrationsPath(cfg.Database.MigrationsPath)
	if err := runMigrationsWithRetry(manager, migrationsPath, cfg.Database.MaxRetryAttempts, logger); err != nil {
		manager.Close()
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.HealthTimeout)
	defer cancel()

	if err := waitForHealth(ctx, manager, logger); err != nil {
		manager.Close()
		return fmt.Errorf("database failed to become healthy: %w", err)
	}

	manager.health.StartMonitoring()
	DB = manager

	stats := manager.Stats()
	logger.Info("Database initialized",
		zap.String("migrations_path", migrationsPath),
		zap.Int("open_connections", stats.OpenConnections),
	)

	return nil
}

func runMigrationsWithRetry(manager *Manager, migrationsPath string, maxRetries int, logger *zap.Logger) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	attempt := 0
	operation := func() error {
		attempt++
		logger.Info("Running database migrations",
			zap.String("path", migrationsPath),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries))
		return manager.Migrate(migrationsPath)
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), uint64(maxRetries-1))
	notify := func(err error, next time.Duration) {
		logger.Warn("Migration attempt failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", next))
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return fmt.Errorf("migrations failed after %d attempts: %w", attempt, err)
	}
	return nil
}

// waitForHealth polls the health check with exponential backoff until it
// reports healthy or ctx expires.
func waitForHealth(ctx context.Context, manager *Manager, logger *zap.Logger) error {
	logger.Info("Waiting for database to become healthy")

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = 0

	operation := func() error {
		status := manager.Health(ctx)
		if status.Status == StatusHealthy || status.Status == StatusDegraded {
			return nil
		}
		return fmt.Errorf("database status %s: %v", status.Status, status.Errors)
	}
	notify := func(err error, next time.Duration) {
		logger.Debug("Database not healthy yet", zap.Error(err), zap.Duration("retry_in", next))
	}

	return backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify)
}

func determineMigrationsPath(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	paths := []string{
		"./internal/database/migrations",
		"./migrations",
		filepath.Join("..", "..", "internal", "database", "migrations"),
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "./internal/database/migrations"
}

// GetDB returns the process wide manager, nil before InitDB
func GetDB() *Manager {
	return DB
}

// Close closes the process wide manager
func Close() error {
	if DB == nil {
		return nil
	}
	err := DB.Close()
	DB = nil
	return err
}

// Health reports the health of the process wide manager
func Health(ctx context.Context) *HealthStatus {
	if DB == nil {
		return &HealthStatus{
			Status:    StatusUnhealthy,
			Timestamp: time.Now(),
			Errors:    []string{"database not initialized"},
			Details:   map[string]interface{}{},
		}
	}
	return DB.Health(ctx)
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Health check statuses
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusShutdown  = "shutdown"
)

// HealthStatus represents the current health status of the database
type HealthStatus struct {
	Status       string                 `json:"status"`
	Timestamp    time.Time              `json:"timestamp"`
	ResponseTime time.Duration          `json:"response_time"`
	Errors       []string               `json:"errors,omitempty"`
	Details      map[string]interface{} `json:"details"`
}

// HealthChecker pings the database and verifies access to the achievement tables
type HealthChecker struct {
	manager *Manager
	logger  *zap.Logger

	mu         sync.RWMutex
	last       *HealthStatus
	isShutdown int32
	started    int32

	checkInterval  time.Duration
	timeout        time.Duration
	criticalTables []string

	stopOnce sync.Once
	stopCh   chan struct{}
	stopped  chan struct{}
}

// NewHealthChecker creates a health checker; background checks start with StartMonitoring
func NewHealthChecker(manager *Manager, interval time.Duration, logger *zap.Logger) *HealthChecker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HealthChecker{
		manager:        manager,
		logger:         logger,
		checkInterval:  interval,
		timeout:        5 * time.Second,
		criticalTables: []string{"condition_types", "conditions", "achievements", "awards"},
		stopCh:         make(chan struct{}),
		stopped:        make(chan struct{}),
	}
}

// Check runs connectivity and table access checks
func (hc *HealthChecker) Check(ctx context.Context) *HealthStatus {
	if atomic.LoadInt32(&hc.isShutdown) == 1 {
		return &HealthStatus{
			Status:    StatusShutdown,
			Timestamp: time.Now(),
			Errors:    []string{"health checker is shut down"},
			Details:   map[string]interface{}{},
		}
	}

	start := time.Now()
	status := &HealthStatus{
		Timestamp: start,
		Details:   make(map[string]interface{}),
	}

	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	if err := hc.checkConnectivity(ctx, status); err != nil {
		status.Errors = append(status.Errors, err.Error())
	} else if err := hc.checkTableAccess(ctx, status); err != nil {
		status.Errors = append(status.Errors, err.Error())
	}

	stats := hc.manager.DB().Stats()
	status.Details["open_connections"] = stats.OpenConnections
	status.Details["in_use"] = stats.InUse
	status.Details["idle"] = stats.Idle

	status.ResponseTime = time.Since(start)
	switch {
	case len(status.Errors) > 0:
		status.Status = StatusUnhealthy
	case status.ResponseTime > time.Second:
		status.Status = StatusDegraded
	default:
		status.Status = StatusHealthy
	}

	hc.mu.Lock()
	hc.last = status
	hc.mu.Unlock()

	return status
}

func (hc *HealthChecker) checkConnectivity(ctx context.Context, status *HealthStatus) error {
	db := hc.manager.DB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	start := time.Now()
	err := db.PingContext(ctx)
	status.Details["ping_duration"] = time.Since(start).String()
	status.Details["ping_success"] = err == nil

	if err != nil {
		hc.logger.Error("Database ping failed", zap.Error(err))
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

func (hc *HealthChecker) checkTableAccess(ctx context.Context, status *HealthStatus) error {
	tables := make(map[string]bool, len(hc.criticalTables))
	defer func() { status.Details["table_access"] = tables }()

	for _, table := range hc.criticalTables {
		var one int
		query := fmt.Sprintf("SELECT 1 FROM %s LIMIT 1", table)
		err := hc.manager.DB().QueryRowContext(ctx, query).Scan(&one)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			tables[table] = false
			hc.logger.Error("Failed to access critical table",
				zap.String("table", table),
				zap.Error(err))
			return fmt.Errorf("cannot access table %s: %w", table, err)
		}
		tables[table] = true
	}
	return nil
}

// StartMonitoring begins periodic health checks. Call once the database is ready.
func (hc *HealthChecker) StartMonitoring() {
	if !atomic.CompareAndSwapInt32(&hc.started, 0, 1) {
		return
	}
	go hc.run()
	hc.logger.Info("Background health monitoring started", zap.Duration("interval", hc.checkInterval))
}

func (hc *HealthChecker) run() {
	defer close(hc.stopped)

	ticker := time.NewTicker(hc.checkInterval)
	defer ticker.Stop()

	previous := ""
	for {
		select {
		case <-ticker.C:
			status := hc.Check(context.Background())
			if previous != "" && status.Status != previous {
				hc.logger.Info("Database health status changed",
					zap.String("from", previous),
					zap.String("to", status.Status),
					zap.Duration("response_time", status.ResponseTime),
				)
			}
			previous = status.Status
		case <-hc.stopCh:
			return
		}
	}
}

// Stop halts background checks
func (hc *HealthChecker) Stop() {
	hc.stopOnce.Do(func() {
		atomic.StoreInt32(&hc.isShutdown, 1)
		close(hc.stopCh)
		if atomic.LoadInt32(&hc.started) == 0 {
			return
		}
		select {
		case <-hc.stopped:
		case <-time.After(5 * time.Second):
			hc.logger.Warn("Health checker stop timeout")
		}
	})
}

// LastStatus returns the most recent check result, or nil
func (hc *HealthChecker) LastStatus() *HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.last
}

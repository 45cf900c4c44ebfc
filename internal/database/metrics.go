package database

import (
	"database/sql"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// queryDuration measures statement latency by query type.
	// Labels: type (exec, query, query_row, begin_tx), status (ok, error)
	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "condor",
		Subsystem: "db",
		Name:      "query_duration_seconds",
		Help:      "Database statement latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"type", "status"})

	slowQueries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "condor",
		Subsystem: "db",
		Name:      "slow_queries_total",
		Help:      "Statements slower than the configured threshold",
	})
)

// Metrics collects database performance counters
type Metrics struct {
	queryCount     int64
	queryDuration  int64 // nanoseconds
	errorCount     int64
	slowQueryCount int64

	slowQueryThreshold time.Duration
}

// MetricsSnapshot provides a point-in-time view of metrics
type MetricsSnapshot struct {
	QueryCount       int64         `json:"query_count"`
	ErrorCount       int64         `json:"error_count"`
	SlowQueryCount   int64         `json:"slow_query_count"`
	AvgQueryDuration time.Duration `json:"avg_query_duration"`
	OpenConnections  int           `json:"open_connections"`
	InUse            int           `json:"in_use"`
	Idle             int           `json:"idle"`
	WaitCount        int64         `json:"wait_count"`
	Timestamp        time.Time     `json:"timestamp"`
}

// NewMetrics creates a metrics collector
func NewMetrics(slowQueryThreshold time.Duration) *Metrics {
	if slowQueryThreshold <= 0 {
		slowQueryThreshold = 100 * time.Millisecond
	}
	return &Metrics{slowQueryThreshold: slowQueryThreshold}
}

// RecordQuery records metrics for a database statement
func (m *Metrics) RecordQuery(queryType string, duration time.Duration, err error) {
	atomic.AddInt64(&m.queryCount, 1)
	atomic.AddInt64(&m.queryDuration, int64(duration))

	status := "ok"
	if err != nil {
		status = "error"
		atomic.AddInt64(&m.errorCount, 1)
	}
	queryDuration.WithLabelValues(queryType, status).Observe(duration.Seconds())

	if duration > m.slowQueryThreshold {
		atomic.AddInt64(&m.slowQueryCount, 1)
		slowQueries.Inc()
	}
}

// SlowQueryThreshold returns the latency above which a statement is logged
func (m *Metrics) SlowQueryThreshold() time.Duration {
	return m.slowQueryThreshold
}

// Snapshot returns current metrics combined with pool statistics
func (m *Metrics) Snapshot(stats sql.DBStats) *MetricsSnapshot {
	queryCount := atomic.LoadInt64(&m.queryCount)
	totalDuration := atomic.LoadInt64(&m.queryDuration)

	var avg time.Duration
	if queryCount > 0 {
		avg = time.Duration(totalDuration / queryCount)
	}

	return &MetricsSnapshot{
		QueryCount:       queryCount,
		ErrorCount:       atomic.LoadInt64(&m.errorCount),
		SlowQueryCount:   atomic.LoadInt64(&m.slowQueryCount),
		AvgQueryDuration: avg,
		OpenConnections:  stats.OpenConnections,
		InUse:            stats.InUse,
		Idle:             stats.Idle,
		WaitCount:        stats.WaitCount,
		Timestamp:        time.Now(),
	}
}

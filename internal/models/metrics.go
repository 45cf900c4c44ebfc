// file: internal/models/metrics.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserMetrics holds the signals a condition is evaluated against.
// Computed per evaluation, never persisted.
type UserMetrics struct {
	TotalDistanceKm     decimal.Decimal `json:"total_distance_km"`
	DistinctRegionCount int             `json:"distinct_region_count"`
	CompletedRouteCount int             `json:"completed_route_count"`
}

// Value returns the metric compared by a condition of type t.
// The second result is false for an unknown type.
func (m UserMetrics) Value(t ConditionType) (decimal.Decimal, bool) {
	switch t {
	case ConditionDistanceKm:
		return m.TotalDistanceKm, true
	case ConditionDistinctRegions:
		return decimal.NewFromInt(int64(m.DistinctRegionCount)), true
	case ConditionRouteCount:
		return decimal.NewFromInt(int64(m.CompletedRouteCount)), true
	}
	return decimal.Zero, false
}

// RouteSession is one entry of a user's session log
type RouteSession struct {
	RouteID     int64      `json:"route_id"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Completed reports whether the session carries a completion timestamp
func (s RouteSession) Completed() bool {
	return s.CompletedAt != nil
}

// Status is an entry of the shared status catalog owned by the users service
type Status struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ===============================
// EVALUATION RESULT
// ===============================

// EarnOutcome is the business outcome of an earn attempt
type EarnOutcome string

const (
	OutcomeGranted      EarnOutcome = "granted"
	OutcomeNotQualified EarnOutcome = "not_qualified"
)

// EarnResult is returned by an earn attempt. Achievement and Award are set
// only when Outcome is OutcomeGranted.
type EarnResult struct {
	Outcome     EarnOutcome  `json:"outcome"`
	Achievement *Achievement `json:"achievement,omitempty"`
	Award       *Award       `json:"award,omitempty"`
	Metrics     UserMetrics  `json:"metrics"`
}

// Granted reports whether the attempt produced a new award
func (r *EarnResult) Granted() bool {
	return r != nil && r.Outcome == OutcomeGranted
}

// file: internal/models/achievement.go
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ===============================
// CONDITION TYPES
// ===============================

// ConditionType identifies which user metric a condition compares against.
// Values match the rows seeded into condition_types.
type ConditionType int64

const (
	ConditionDistanceKm      ConditionType = 1
	ConditionDistinctRegions ConditionType = 2
	ConditionRouteCount      ConditionType = 3
)

// Valid reports whether t is one of the known condition types
func (t ConditionType) Valid() bool {
	switch t {
	case ConditionDistanceKm, ConditionDistinctRegions, ConditionRouteCount:
		return true
	}
	return false
}

func (t ConditionType) String() string {
	switch t {
	case ConditionDistanceKm:
		return "DistanceKm"
	case ConditionDistinctRegions:
		return "DistinctRegions"
	case ConditionRouteCount:
		return "RouteCount"
	}
	return fmt.Sprintf("ConditionType(%d)", int64(t))
}

// ConditionTypeInfo is a row of the condition type catalog
type ConditionTypeInfo struct {
	ID   ConditionType `json:"id" db:"id"`
	Name string        `json:"name" db:"name"`
}

// ===============================
// CORE ENTITIES
// ===============================

// Condition is a typed threshold rule. Description is derived from
// (Type, Threshold) and must be regenerated whenever either changes.
type Condition struct {
	ID          int64           `json:"id" db:"id"`
	Type        ConditionType   `json:"type" db:"condition_type_id"`
	Threshold   decimal.Decimal `json:"threshold" db:"threshold"`
	Description string          `json:"description" db:"description"`
}

// DescribeCondition renders the human readable description of a condition.
func DescribeCondition(t ConditionType, threshold decimal.Decimal) string {
	switch t {
	case ConditionDistanceKm:
		return fmt.Sprintf("Travel %s km", threshold.StringFixed(2))
	case ConditionDistinctRegions:
		return fmt.Sprintf("Complete %s routes in different regions", threshold.String())
	case ConditionRouteCount:
		return fmt.Sprintf("Complete %s routes", threshold.String())
	}
	return ""
}

// Achievement is a named award definition tied to exactly one condition
type Achievement struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Icon        []byte    `json:"icon,omitempty" db:"icon"`
	StatusID    int64     `json:"status_id" db:"status_id"`
	ConditionID int64     `json:"condition_id" db:"condition_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Award is a grant of one achievement to one user. Never updated.
type Award struct {
	ID            int64     `json:"id" db:"id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	AchievementID int64     `json:"achievement_id" db:"achievement_id"`
	GrantedAt     time.Time `json:"granted_at" db:"granted_at"`
}

// AwardCount is the number of users holding an achievement
type AwardCount struct {
	AchievementID int64 `json:"achievement_id"`
	Count         int64 `json:"count"`
}

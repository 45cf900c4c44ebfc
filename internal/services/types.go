// file: internal/services/types.go
package services

import (
	"github.com/shopspring/decimal"
)

// ===============================
// CONDITION REQUESTS
// ===============================

// CreateConditionRequest creates a condition; the description is derived
type CreateConditionRequest struct {
	Type      int64           `json:"type" validate:"required,oneof=1 2 3"`
	Threshold decimal.Decimal `json:"threshold" validate:"gte=0,lt=100000000,decimals=2"`
}

// UpdateThresholdRequest changes a condition's threshold
type UpdateThresholdRequest struct {
	ConditionID int64           `json:"-" validate:"gt=0"`
	Threshold   decimal.Decimal `json:"threshold" validate:"gte=0,lt=100000000,decimals=2"`
}

// UpdateConditionTypeRequest changes which metric a condition compares
type UpdateConditionTypeRequest struct {
	ConditionID int64 `json:"-" validate:"gt=0"`
	Type        int64 `json:"type" validate:"required,oneof=1 2 3"`
}

// ===============================
// ACHIEVEMENT REQUESTS
// ===============================

// CreateAchievementRequest creates an achievement bound to an existing condition
type CreateAchievementRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Icon        []byte `json:"icon,omitempty"`
	StatusID    int64  `json:"status_id" validate:"gt=0"`
	ConditionID int64  `json:"condition_id" validate:"gt=0"`
}

type UpdateNameRequest struct {
	AchievementID int64  `json:"-" validate:"gt=0"`
	Name          string `json:"name" validate:"required,max=100"`
}

type UpdateDescriptionRequest struct {
	AchievementID int64  `json:"-" validate:"gt=0"`
	Description   string `json:"description" validate:"max=500"`
}

type UpdateStatusRequest struct {
	AchievementID int64 `json:"-" validate:"gt=0"`
	StatusID      int64 `json:"status_id" validate:"gt=0"`
}

// UpdateIconRequest replaces the icon; JSON carries it base64 encoded
type UpdateIconRequest struct {
	AchievementID int64  `json:"-" validate:"gt=0"`
	Icon          []byte `json:"icon" validate:"required"`
}

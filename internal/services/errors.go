package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/validation"
)

// ===============================
// ERROR TYPES
// ===============================

// Error type identifiers
const (
	ErrTypeValidation              = "VALIDATION_ERROR"
	ErrTypeBusiness                = "BUSINESS_ERROR"
	ErrTypeNotFound                = "NOT_FOUND"
	ErrTypeForbidden               = "FORBIDDEN"
	ErrTypeConflict                = "CONFLICT"
	ErrTypeInternal                = "INTERNAL_ERROR"
	ErrTypeServiceUnavailable      = "SERVICE_UNAVAILABLE"
	ErrTypeCollaboratorUnavailable = "COLLABORATOR_UNAVAILABLE"
	ErrTypeCatalogInconsistency    = "CATALOG_INCONSISTENCY"
)

// CodeNotQualified marks an earn attempt that granted nothing
const CodeNotQualified = "NOT_QUALIFIED"

// ServiceError represents a structured service error
type ServiceError struct {
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// ===============================
// ERROR CONSTRUCTORS
// ===============================

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewBusinessError creates a business logic error
func NewBusinessError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeBusiness,
		Message:    message,
		Code:       code,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeForbidden,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeConflict,
		Message:    message,
		Code:       code,
		StatusCode: http.StatusConflict,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewServiceUnavailableError creates a service unavailable error
func NewServiceUnavailableError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeServiceUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}

// NewCollaboratorUnavailableError reports a failed or timed out call to a
// sibling service. Callers may retry.
func NewCollaboratorUnavailableError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeCollaboratorUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// NewCatalogInconsistencyError reports an achievement whose condition cannot
// be resolved or evaluated.
func NewCatalogInconsistencyError(achievementID, conditionID int64, cause error) *ServiceError {
	return (&ServiceError{
		Type:       ErrTypeCatalogInconsistency,
		Message:    fmt.Sprintf("achievement %d references an unusable condition", achievementID),
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}).WithContext(&ErrorContext{
		Resource: "achievement",
		Metadata: map[string]interface{}{
			"achievement_id": achievementID,
			"condition_id":   conditionID,
		},
	})
}

// NewNotQualifiedError renders the not qualified outcome at the HTTP boundary.
// The evaluator itself returns it as a result, never as an error.
func NewNotQualifiedError(userID int64) *ServiceError {
	err := NewForbiddenError("user does not qualify for any new achievement")
	err.Code = CodeNotQualified
	return err.WithContext(&ErrorContext{UserID: &userID})
}

// ===============================
// SPECIALIZED ERRORS
// ===============================

// ValidationError represents detailed validation errors
type ValidationError struct {
	*ServiceError
	Fields []FieldError `json:"fields,omitempty"`
}

// FieldError represents a single field validation error
type FieldError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
}

// NewDetailedValidationError creates a validation error with field details
func NewDetailedValidationError(message string, fields []FieldError) *ValidationError {
	details := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		details[f.Field] = f.Message
	}
	return &ValidationError{
		ServiceError: &ServiceError{
			Type:       ErrTypeValidation,
			Message:    message,
			Details:    details,
			StatusCode: http.StatusBadRequest,
		},
		Fields: fields,
	}
}

// validateRequest runs struct validation and converts failures into a
// detailed validation error
func validateRequest(req interface{}) error {
	err := validation.ValidateStruct(req)
	if err == nil {
		return nil
	}

	var verr *validation.Errors
	if !errors.As(err, &verr) {
		return NewValidationError("invalid request", err)
	}

	fields := make([]FieldError, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, FieldError{
			Field:   f.Field,
			Value:   f.Value,
			Message: f.Message(),
			Code:    f.Tag,
		})
	}
	return NewDetailedValidationError("request validation failed", fields)
}

// ===============================
// ERROR UTILITIES
// ===============================

// GetServiceError extracts a ServiceError from an error chain, or creates a
// generic internal one
func GetServiceError(err error) *ServiceError {
	if err == nil {
		return nil
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.ServiceError
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}

	internal := NewInternalError(err.Error())
	internal.Cause = err
	return internal
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType string) bool {
	if serviceErr := GetServiceError(err); serviceErr != nil {
		return serviceErr.Type == errorType
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return IsErrorType(err, ErrTypeNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return IsErrorType(err, ErrTypeValidation)
}

// IsCollaboratorUnavailable checks if an error came from a sibling service failure
func IsCollaboratorUnavailable(err error) bool {
	return IsErrorType(err, ErrTypeCollaboratorUnavailable)
}

// IsCatalogInconsistency checks if an error reports a corrupt catalog
func IsCatalogInconsistency(err error) bool {
	return IsErrorType(err, ErrTypeCatalogInconsistency)
}

// ===============================
// ERROR CONTEXT
// ===============================

// ErrorContext provides additional context for errors
type ErrorContext struct {
	UserID    *int64                 `json:"user_id,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Operation string                 `json:"operation,omitempty"`
	Resource  string                 `json:"resource,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// WithContext adds context to a service error
func (e *ServiceError) WithContext(ctx *ErrorContext) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}

	if ctx.UserID != nil {
		e.Details["user_id"] = *ctx.UserID
	}
	if ctx.RequestID != "" {
		e.Details["request_id"] = ctx.RequestID
	}
	if ctx.Operation != "" {
		e.Details["operation"] = ctx.Operation
	}
	if ctx.Resource != "" {
		e.Details["resource"] = ctx.Resource
	}
	for k, v := range ctx.Metadata {
		e.Details[k] = v
	}

	return e
}

// ===============================
// COMMON ERROR PATTERNS
// ===============================

// EntityNotFoundError creates a standard entity not found error
func EntityNotFoundError(entityType string, id interface{}) *ServiceError {
	return NewNotFoundError(fmt.Sprintf("%s not found", entityType)).WithContext(&ErrorContext{
		Resource: entityType,
		Metadata: map[string]interface{}{
			"id": id,
		},
	})
}

// InvalidInputError creates a standard invalid input error
func InvalidInputError(field, reason string) *ServiceError {
	return NewValidationError(fmt.Sprintf("Invalid input for field '%s': %s", field, reason), nil).WithContext(&ErrorContext{
		Metadata: map[string]interface{}{
			"field":  field,
			"reason": reason,
		},
	})
}

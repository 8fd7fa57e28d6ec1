package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/exambank-service/internal/validator"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrExamBookNotFound = errors.New("exam book not found")
	ErrUserNotFound     = errors.New("user not found")
)

// PermissionError: the actor lacks rights for the requested action. Always
// raised before any mutation is applied.
type PermissionError struct {
	UserID   string
	EntityID string
	Entity   string
	Action   string
	Reason   string
}

func NewPermissionError(userID, entityID, entity, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		EntityID: entityID,
		Entity:   entity,
		Action:   action,
		Reason:   reason,
	}
}

func (e *PermissionError) Error() string {
	if e.EntityID == "" {
		return fmt.Sprintf("permission denied: user %s cannot %s %s: %s", e.UserID, e.Action, e.Entity, e.Reason)
	}
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s: %s", e.UserID, e.Action, e.Entity, e.EntityID, e.Reason)
}

// StateError: the requested transition is illegal from the entity's
// current status. The entity is left unchanged.
type StateError struct {
	Entity   string
	EntityID string
	Status   string
	Action   string
}

func NewStateError(entity, entityID, status, action string) *StateError {
	return &StateError{Entity: entity, EntityID: entityID, Status: status, Action: action}
}

func (e *StateError) Error() string {
	return fmt.Sprintf("invalid state: cannot %s %s %s while status is %s", e.Action, e.Entity, e.EntityID, e.Status)
}

// IsPermissionError reports whether err is (or wraps) a PermissionError.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsStateError reports whether err is (or wraps) a StateError.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

// IsValidationError reports whether err carries accumulated field
// violations.
func IsValidationError(err error) bool {
	var ve validator.ValidationErrors
	return errors.As(err, &ve)
}

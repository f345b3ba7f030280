package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/domain/project"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
	cause        error
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	mapped := mapKnown(err)
	if mapped != nil {
		mapped.cause = err
	}
	return mapped
}

func mapKnown(err error) *APIError {
	switch {
	case errors.Is(err, logitem.ErrInvalidDate):
		return &APIError{Code: "INVALID_DATE", Message: "date must be YYYY-MM-DD"}
	case errors.Is(err, logitem.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: "invalid log input", RecoveryHint: "Item ids must be unique within a day"}
	case errors.Is(err, logitem.ErrItemNotFound), errors.Is(err, project.ErrItemNotFound):
		return &APIError{Code: "ITEM_NOT_FOUND", Message: "item not found", RecoveryHint: "Check the item_id with get_log"}
	case errors.Is(err, project.ErrParentNotFound):
		return &APIError{Code: "PARENT_NOT_FOUND", Message: "target parent not found", RecoveryHint: "Use project_tree to list milestones"}
	case errors.Is(err, project.ErrInvalidRelation):
		return &APIError{Code: "INVALID_RELATION", Message: "relation must be inherit or evolve"}
	case errors.Is(err, project.ErrHasChildren):
		return &APIError{Code: "HAS_CHILDREN", Message: "item still has children", RecoveryHint: "Reparent children with update_relation first"}
	case errors.Is(err, project.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: "invalid project input"}
	case errors.Is(err, habit.ErrHabitNotFound):
		return &APIError{Code: "HABIT_NOT_FOUND", Message: "habit not found", RecoveryHint: "Use list_habits for valid ids"}
	case errors.Is(err, habit.ErrInvalidStatus):
		return &APIError{Code: "INVALID_STATUS", Message: "status must be 0 or 1"}
	case errors.Is(err, habit.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: "invalid habit input"}
	default:
		return nil
	}
}

// toolError returns the mapped error when one exists, otherwise err.
func toolError(err error) error {
	if mapped := MapError(err); mapped != nil {
		return mapped
	}
	return err
}

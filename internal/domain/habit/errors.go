package habit

import "errors"

var (
	// ErrHabitNotFound indicates the habit doesn't exist.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrInvalidInput indicates invalid input for habit operations.
	ErrInvalidInput = errors.New("invalid habit input")
	// ErrInvalidStatus indicates a toggle to a status other than 0 or 1.
	ErrInvalidStatus = errors.New("habit status must be 0 or 1")
)

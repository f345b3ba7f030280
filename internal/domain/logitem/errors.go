package logitem

import "errors"

var (
	// ErrInvalidDate indicates a date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid log date")
	// ErrInvalidInput indicates invalid input for log operations.
	ErrInvalidInput = errors.New("invalid log input")
	// ErrItemNotFound indicates the item doesn't exist.
	ErrItemNotFound = errors.New("log item not found")
)

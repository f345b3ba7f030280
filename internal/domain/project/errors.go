package project

import "errors"

var (
	// ErrItemNotFound indicates the item doesn't exist.
	ErrItemNotFound = errors.New("project item not found")
	// ErrParentNotFound indicates the requested parent doesn't exist.
	ErrParentNotFound = errors.New("target parent not found")
	// ErrInvalidRelation indicates a relation type other than inherit or evolve.
	ErrInvalidRelation = errors.New("relation type must be inherit or evolve")
	// ErrHasChildren indicates items still name this item as their parent.
	ErrHasChildren = errors.New("item still has children")
	// ErrInvalidInput indicates invalid input for project operations.
	ErrInvalidInput = errors.New("invalid project input")
)

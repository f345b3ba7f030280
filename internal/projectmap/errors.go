package projectmap

import (
	"errors"
	"fmt"
)

var (
	ErrNoOrigin          = errors.New("item is not linked to a project")
	ErrNotOpen           = errors.New("no project map is open")
	ErrUnknownItem       = errors.New("item is not on the map")
	ErrUnknownMilestone  = errors.New("milestone is not on the map")
	ErrRootMilestone     = errors.New("the root milestone cannot be removed")
	ErrNotConfirmed      = errors.New("milestone removal was not confirmed")
	ErrMilestoneNotSaved = errors.New("backend did not return a milestone id")
	ErrRootMissing       = errors.New("the project's root item was deleted; tasks cannot be moved to it")
)

// LoadError reports that the lineage list could not be fetched. The map
// shows an inline error state; nothing is retried.
type LoadError struct {
	OriginID string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load project %s: %v", e.OriginID, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// WriteError reports a structural change the backend did not confirm.
// The map has already been re-fetched when it is returned.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

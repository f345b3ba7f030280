package session

import (
	"errors"
	"fmt"
)

var (
	ErrBusy           = errors.New("a day is still loading")
	ErrClosed         = errors.New("session is closed")
	ErrInvalidDate    = errors.New("date must be YYYY-MM-DD")
	ErrNotLoaded      = errors.New("the day failed to load")
	ErrUnknownCard    = errors.New("card not found")
	ErrNotConfirmed   = errors.New("deletion was not confirmed")
	ErrMilestoneCard  = errors.New("milestones are removed from the project map")
	ErrMapClosed      = errors.New("no project map is open")
	ErrSettingsClosed = errors.New("habit settings are not open")
)

// Alert is a write failure the user must acknowledge. The view has
// already been resynchronized when one is returned.
type Alert struct {
	Title string
	Err   error
}

func (a *Alert) Error() string {
	return fmt.Sprintf("%s: %v", a.Title, a.Err)
}

func (a *Alert) Unwrap() error {
	return a.Err
}

func alert(title string, err error) error {
	if err == nil {
		return nil
	}
	return &Alert{Title: title, Err: err}
}

// AsAlert reports whether err carries an Alert.
func AsAlert(err error) (*Alert, bool) {
	var a *Alert
	if errors.As(err, &a) {
		return a, true
	}
	return nil, false
}

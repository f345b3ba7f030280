// Package clock abstracts time and id generation so controllers are
// deterministic in tests.
package clock

import (
	"time"

	"github.com/google/uuid"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock tells time and schedules callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Real uses the system clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Today formats c's current local date as YYYY-MM-DD.
func Today(c Clock) string {
	return c.Now().Format("2006-01-02")
}

// IDGenerator produces unique ids.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.NewString() }

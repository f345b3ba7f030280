package habit

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultColor is assigned to habits created without one.
const DefaultColor = "#3B82F6"

// Status is a habit's recorded state for one date.
type Status int

const (
	StatusUnset  Status = -1
	StatusFailed Status = 0
	StatusDone   Status = 1
)

// MarshalJSON writes null for unset, otherwise 0 or 1.
func (s Status) MarshalJSON() ([]byte, error) {
	if s == StatusUnset {
		return []byte("null"), nil
	}
	return json.Marshal(int(s))
}

// UnmarshalJSON reads null, 0 or 1.
func (s *Status) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = StatusUnset
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding habit status: %w", err)
	}
	switch Status(n) {
	case StatusFailed, StatusDone:
		*s = Status(n)
		return nil
	}
	return fmt.Errorf("habit status must be 0 or 1, got %d", n)
}

// Habit is a definition plus its status on the requested date.
type Habit struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Color      string    `json:"color"`
	GroupID    int64     `json:"group_id"`
	SortOrder  int       `json:"sort_order"`
	IsArchived bool      `json:"is_archived"`
	CreatedAt  time.Time `json:"created_at"`
	Status     Status    `json:"status"`
}

// Chained reports whether the habit belongs to a chain.
func (h Habit) Chained() bool {
	return h.GroupID != 0
}

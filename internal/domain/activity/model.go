package activity

import "time"

// Type represents the kind of structural write recorded.
type Type string

const (
	TypeLogSaved         Type = "log_saved"
	TypeMilestoneCreated Type = "milestone_created"
	TypeRelationUpdated  Type = "relation_updated"
	TypeItemDeleted      Type = "item_deleted"
	TypeHabitDeleted     Type = "habit_deleted"
)

// Entry represents an event in the activity log.
type Entry struct {
	ID        int64     `json:"id"`
	ItemID    *string   `json:"item_id,omitempty"`
	Type      Type      `json:"type"`
	Summary   string    `json:"summary"`
	Details   string    `json:"details,omitempty"` // JSON string
	CreatedAt time.Time `json:"created_at"`
}

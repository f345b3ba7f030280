package habit

import (
	"context"

	"github.com/rpggio/dailylog/internal/domain/activity"
)

// Repository provides persistence for habits and their daily status.
type Repository interface {
	List(ctx context.Context, date string) ([]Habit, error)
	Create(ctx context.Context, h *Habit) error
	Update(ctx context.Context, id int64, patch Patch) error
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, date string, id int64, status Status) error
	MarkAllDone(ctx context.Context, date string) (int, error)
}

// ActivityRepository logs structural writes.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.Entry) error
}

// Patch lists the fields to change. Nil fields are left alone.
type Patch struct {
	Title      *string
	Color      *string
	GroupID    *int64
	IsArchived *bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Color == nil && p.GroupID == nil && p.IsArchived == nil
}

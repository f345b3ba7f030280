package logitem

import (
	"context"

	"github.com/rpggio/dailylog/internal/domain/activity"
)

// Repository provides persistence for day logs.
type Repository interface {
	GetDay(ctx context.Context, date string) ([]Item, error)
	SaveDay(ctx context.Context, date string, items []Item) error
	ListDays(ctx context.Context) ([]DayLog, error)
	ListMonth(ctx context.Context, month string) ([]DayLog, error)
	History(ctx context.Context, title, tagFilter string) ([]HistoryEntry, error)
}

// ActivityRepository logs structural writes.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.Entry) error
}

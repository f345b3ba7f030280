package project

import (
	"context"

	"github.com/rpggio/dailylog/internal/domain/activity"
	"github.com/rpggio/dailylog/internal/domain/logitem"
)

// Repository provides lineage queries and structural writes.
type Repository interface {
	Tree(ctx context.Context, originID string) ([]logitem.Item, error)
	GetItem(ctx context.Context, id string) (*logitem.Item, error)
	CreateMilestone(ctx context.Context, item *logitem.Item) error
	UpdateRelation(ctx context.Context, itemID string, parentID *string, rel logitem.RelationType) error
	CountChildren(ctx context.Context, parentID string) (int, error)
	DeleteItem(ctx context.Context, id string) error
}

// ActivityRepository logs structural writes.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.Entry) error
}

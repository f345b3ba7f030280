package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/rpggio/dailylog/internal/domain/activity"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/repository"
)

// DefaultMilestoneTitle names milestones created by dropping onto the ghost target.
const DefaultMilestoneTitle = "Evolution Node"

// Service handles project lineage operations.
type Service struct {
	repo       Repository
	activities ActivityRepository
	logger     *slog.Logger
}

// NewService creates a new project service. activities may be nil.
func NewService(repo Repository, activities ActivityRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, activities: activities, logger: logger}
}

// MilestoneRequest defines milestone creation inputs.
type MilestoneRequest struct {
	OriginID string
	Title    string
	Date     string
}

// RelationRequest moves an item under a new parent.
type RelationRequest struct {
	ItemID         string
	TargetParentID *string
	RelationType   logitem.RelationType
}

// Tree returns the origin item and all of its descendants ordered by date.
// Items carrying no relation are reported as roots.
func (s *Service) Tree(ctx context.Context, originID string) ([]logitem.Item, error) {
	if strings.TrimSpace(originID) == "" {
		return nil, ErrInvalidInput
	}
	items, err := s.repo.Tree(ctx, originID)
	if err != nil {
		return nil, fmt.Errorf("loading tree: %w", err)
	}
	for i := range items {
		if items[i].RelationType == "" {
			items[i].RelationType = logitem.RelationRoot
		}
	}
	if items == nil {
		items = []logitem.Item{}
	}
	return items, nil
}

// AddMilestone creates an evolve item under the origin on the given date.
func (s *Service) AddMilestone(ctx context.Context, req MilestoneRequest) (*logitem.Item, error) {
	if strings.TrimSpace(req.OriginID) == "" {
		return nil, ErrInvalidInput
	}
	if !logitem.ValidDate(req.Date) {
		return nil, logitem.ErrInvalidDate
	}
	if _, err := s.getItem(ctx, req.OriginID, ErrItemNotFound); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultMilestoneTitle
	}
	origin := req.OriginID
	item := &logitem.Item{
		ID:           uuid.NewString(),
		Title:        title,
		OriginID:     &origin,
		ParentID:     &origin,
		RelationType: logitem.RelationEvolve,
		Date:         req.Date,
	}
	if err := s.repo.CreateMilestone(ctx, item); err != nil {
		return nil, fmt.Errorf("creating milestone: %w", err)
	}

	s.logActivity(ctx, item.ID, activity.TypeMilestoneCreated, fmt.Sprintf("created milestone %s under %s", item.ID, origin))
	return item, nil
}

// UpdateRelation reparents an item. Only lineage fields change.
func (s *Service) UpdateRelation(ctx context.Context, req RelationRequest) error {
	if strings.TrimSpace(req.ItemID) == "" {
		return ErrInvalidInput
	}
	if req.RelationType != logitem.RelationInherit && req.RelationType != logitem.RelationEvolve {
		return ErrInvalidRelation
	}
	if req.TargetParentID != nil && *req.TargetParentID == req.ItemID {
		return fmt.Errorf("%w: item cannot be its own parent", ErrInvalidInput)
	}
	if _, err := s.getItem(ctx, req.ItemID, ErrItemNotFound); err != nil {
		return err
	}
	if req.TargetParentID != nil {
		if _, err := s.getItem(ctx, *req.TargetParentID, ErrParentNotFound); err != nil {
			return err
		}
	}

	if err := s.repo.UpdateRelation(ctx, req.ItemID, req.TargetParentID, req.RelationType); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("updating relation: %w", err)
	}

	target := "none"
	if req.TargetParentID != nil {
		target = *req.TargetParentID
	}
	s.logActivity(ctx, req.ItemID, activity.TypeRelationUpdated, fmt.Sprintf("moved %s to %s as %s", req.ItemID, target, req.RelationType))
	return nil
}

// DeleteItem hard-deletes an item. Items that still parent others are refused
// so that children are merged away first.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	if _, err := s.getItem(ctx, id, ErrItemNotFound); err != nil {
		return err
	}
	n, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("counting children: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %d remaining", ErrHasChildren, n)
	}
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("deleting item: %w", err)
	}
	s.logActivity(ctx, id, activity.TypeItemDeleted, fmt.Sprintf("deleted item %s", id))
	return nil
}

func (s *Service) getItem(ctx context.Context, id string, notFound error) (*logitem.Item, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound
		}
		return nil, fmt.Errorf("loading item: %w", err)
	}
	return item, nil
}

func (s *Service) logActivity(ctx context.Context, itemID string, typ activity.Type, summary string) {
	if s.activities == nil {
		return
	}
	id := itemID
	if err := s.activities.Log(ctx, &activity.Entry{ItemID: &id, Type: typ, Summary: summary}); err != nil {
		s.logger.Warn("failed to record activity", "type", typ, "item_id", itemID, "error", err)
	}
}

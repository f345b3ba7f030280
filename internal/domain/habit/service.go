package habit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/dailylog/internal/domain/activity"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/repository"
)

// Service handles habit operations.
type Service struct {
	repo       Repository
	activities ActivityRepository
	logger     *slog.Logger
}

// NewService creates a new habit service. activities may be nil.
func NewService(repo Repository, activities ActivityRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, activities: activities, logger: logger}
}

// CreateRequest defines habit creation inputs.
type CreateRequest struct {
	Title   string
	Color   string
	GroupID int64
}

// List returns non-archived habits with their status on date.
func (s *Service) List(ctx context.Context, date string) ([]Habit, error) {
	if !logitem.ValidDate(date) {
		return nil, logitem.ErrInvalidDate
	}
	habits, err := s.repo.List(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("listing habits: %w", err)
	}
	if habits == nil {
		habits = []Habit{}
	}
	return habits, nil
}

// Create adds a habit definition.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Habit, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if req.GroupID < 0 {
		return nil, fmt.Errorf("%w: negative group id", ErrInvalidInput)
	}
	color := req.Color
	if color == "" {
		color = DefaultColor
	}
	h := &Habit{
		Title:     title,
		Color:     color,
		GroupID:   req.GroupID,
		CreatedAt: time.Now().UTC(),
		Status:    StatusUnset,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("creating habit: %w", err)
	}
	return h, nil
}

// Update applies a partial change to a habit definition.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	if patch.Empty() {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return fmt.Errorf("%w: title cannot be blank", ErrInvalidInput)
	}
	if patch.GroupID != nil && *patch.GroupID < 0 {
		return fmt.Errorf("%w: negative group id", ErrInvalidInput)
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrHabitNotFound
		}
		return fmt.Errorf("updating habit: %w", err)
	}
	return nil
}

// Delete removes a habit and its history.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrHabitNotFound
		}
		return fmt.Errorf("deleting habit: %w", err)
	}
	if s.activities != nil {
		if err := s.activities.Log(ctx, &activity.Entry{
			Type:    activity.TypeHabitDeleted,
			Summary: fmt.Sprintf("deleted habit %d", id),
		}); err != nil {
			s.logger.Warn("failed to record activity", "habit_id", id, "error", err)
		}
	}
	return nil
}

// Toggle records a status for one habit on date.
func (s *Service) Toggle(ctx context.Context, date string, id int64, status Status) error {
	if !logitem.ValidDate(date) {
		return logitem.ErrInvalidDate
	}
	if id <= 0 {
		return ErrInvalidInput
	}
	if status != StatusDone && status != StatusFailed {
		return ErrInvalidStatus
	}
	if err := s.repo.SetStatus(ctx, date, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrForeignKeyViolation) {
			return ErrHabitNotFound
		}
		return fmt.Errorf("toggling habit: %w", err)
	}
	return nil
}

// MarkAllDone sets every non-archived habit to done on date.
func (s *Service) MarkAllDone(ctx context.Context, date string) (int, error) {
	if !logitem.ValidDate(date) {
		return 0, logitem.ErrInvalidDate
	}
	n, err := s.repo.MarkAllDone(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("marking habits done: %w", err)
	}
	return n, nil
}

package logitem

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rpggio/dailylog/internal/domain/activity"
)

// Service handles day log business logic.
type Service struct {
	repo       Repository
	activities ActivityRepository
	exportDir  string
	logger     *slog.Logger
}

// NewService creates a new log service. activities may be nil.
func NewService(repo Repository, activities ActivityRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, activities: activities, logger: logger}
}

// WithExportDir enables the month archive, rewritten after every save.
func (s *Service) WithExportDir(dir string) *Service {
	s.exportDir = dir
	return s
}

// GetDay returns the items of a date in display order. An unknown date
// yields an empty log.
func (s *Service) GetDay(ctx context.Context, date string) (*DayLog, error) {
	if !ValidDate(date) {
		return nil, ErrInvalidDate
	}
	items, err := s.repo.GetDay(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("loading day %s: %w", date, err)
	}
	if items == nil {
		items = []Item{}
	}
	return &DayLog{Date: date, Items: items}, nil
}

// SaveDay replaces the contents of a day with the given items. Items
// without an id are assigned one; items whose title is blank are dropped.
func (s *Service) SaveDay(ctx context.Context, log DayLog) (*DayLog, error) {
	if !ValidDate(log.Date) {
		return nil, ErrInvalidDate
	}

	items := make([]Item, 0, len(log.Items))
	seen := make(map[string]bool, len(log.Items))
	for _, item := range log.Items {
		item.Title = strings.TrimSpace(item.Title)
		item.Content = strings.TrimSpace(item.Content)
		if item.Title == "" {
			continue
		}
		if !item.RelationType.Valid() {
			return nil, fmt.Errorf("%w: relation type %q", ErrInvalidInput, item.RelationType)
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("%w: duplicate item id %s", ErrInvalidInput, item.ID)
		}
		seen[item.ID] = true
		item.Date = log.Date
		items = append(items, item)
	}

	if err := s.repo.SaveDay(ctx, log.Date, items); err != nil {
		return nil, fmt.Errorf("saving day %s: %w", log.Date, err)
	}

	if s.activities != nil {
		if err := s.activities.Log(ctx, &activity.Entry{
			Type:    activity.TypeLogSaved,
			Summary: fmt.Sprintf("saved %d items for %s", len(items), log.Date),
		}); err != nil {
			s.logger.Warn("failed to record activity", "date", log.Date, "error", err)
		}
	}

	if s.exportDir != "" {
		if err := s.ExportMonthFile(ctx, log.Date); err != nil {
			s.logger.Warn("month export failed", "date", log.Date, "error", err)
		}
	}

	return &DayLog{Date: log.Date, Items: items}, nil
}

// ListDays returns every day log, newest first.
func (s *Service) ListDays(ctx context.Context) ([]DayLog, error) {
	days, err := s.repo.ListDays(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing days: %w", err)
	}
	return days, nil
}

// History returns every occurrence of a project title, oldest first.
// tagFilter narrows to entries whose tags contain it.
func (s *Service) History(ctx context.Context, title, tagFilter string) (*History, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	entries, err := s.repo.History(ctx, title, strings.TrimSpace(tagFilter))
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	days := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		days[e.Date] = struct{}{}
	}
	return &History{TotalDays: len(days), Entries: entries}, nil
}

// ExportMonth writes the archive for the month containing date.
func (s *Service) ExportMonth(ctx context.Context, date string, w io.Writer) error {
	if !ValidDate(date) {
		return ErrInvalidDate
	}
	days, err := s.repo.ListMonth(ctx, date[:7])
	if err != nil {
		return fmt.Errorf("loading month: %w", err)
	}
	return WriteMonth(w, days)
}

// ExportMonthFile rewrites <exportDir>/YYYYMM.txt for the month of date.
func (s *Service) ExportMonthFile(ctx context.Context, date string) error {
	var buf bytes.Buffer
	if err := s.ExportMonth(ctx, date, &buf); err != nil {
		return err
	}
	if buf.Len() == 0 {
		return nil
	}
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	path := filepath.Join(s.exportDir, MonthKey(date)+".txt")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

package mocks

import (
	"context"

	"github.com/rpggio/dailylog/internal/domain/activity"
	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/stretchr/testify/mock"
)

// LogRepository is a mock for logitem.Repository.
type LogRepository struct {
	mock.Mock
}

func (m *LogRepository) GetDay(ctx context.Context, date string) ([]logitem.Item, error) {
	args := m.Called(ctx, date)
	if items, ok := args.Get(0).([]logitem.Item); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LogRepository) SaveDay(ctx context.Context, date string, items []logitem.Item) error {
	args := m.Called(ctx, date, items)
	return args.Error(0)
}

func (m *LogRepository) ListDays(ctx context.Context) ([]logitem.DayLog, error) {
	args := m.Called(ctx)
	if days, ok := args.Get(0).([]logitem.DayLog); ok {
		return days, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LogRepository) ListMonth(ctx context.Context, month string) ([]logitem.DayLog, error) {
	args := m.Called(ctx, month)
	if days, ok := args.Get(0).([]logitem.DayLog); ok {
		return days, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LogRepository) History(ctx context.Context, title, tagFilter string) ([]logitem.HistoryEntry, error) {
	args := m.Called(ctx, title, tagFilter)
	if entries, ok := args.Get(0).([]logitem.HistoryEntry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Tree(ctx context.Context, originID string) ([]logitem.Item, error) {
	args := m.Called(ctx, originID)
	if items, ok := args.Get(0).([]logitem.Item); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) GetItem(ctx context.Context, id string) (*logitem.Item, error) {
	args := m.Called(ctx, id)
	if item, ok := args.Get(0).(*logitem.Item); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) CreateMilestone(ctx context.Context, item *logitem.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *ProjectRepository) UpdateRelation(ctx context.Context, itemID string, parentID *string, rel logitem.RelationType) error {
	args := m.Called(ctx, itemID, parentID, rel)
	return args.Error(0)
}

func (m *ProjectRepository) CountChildren(ctx context.Context, parentID string) (int, error) {
	args := m.Called(ctx, parentID)
	return args.Int(0), args.Error(1)
}

func (m *ProjectRepository) DeleteItem(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// HabitRepository is a mock for habit.Repository.
type HabitRepository struct {
	mock.Mock
}

func (m *HabitRepository) List(ctx context.Context, date string) ([]habit.Habit, error) {
	args := m.Called(ctx, date)
	if list, ok := args.Get(0).([]habit.Habit); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *HabitRepository) Create(ctx context.Context, h *habit.Habit) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *HabitRepository) Update(ctx context.Context, id int64, patch habit.Patch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *HabitRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *HabitRepository) SetStatus(ctx context.Context, date string, id int64, status habit.Status) error {
	args := m.Called(ctx, date, id, status)
	return args.Error(0)
}

func (m *HabitRepository) MarkAllDone(ctx context.Context, date string) (int, error) {
	args := m.Called(ctx, date)
	return args.Int(0), args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Package habitbar holds the client-side habit bar and its chain settings.
// Every write is followed by a reload; nothing is updated optimistically.
package habitbar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rpggio/dailylog/internal/api"
	"github.com/rpggio/dailylog/internal/domain/habit"
)

var (
	ErrNotLoaded    = errors.New("habits are not loaded")
	ErrUnknownHabit = errors.New("habit is not on the bar")
	ErrEmptyTitle   = errors.New("habit title is required")
	ErrNotConfirmed = errors.New("habit deletion was not confirmed")
)

// API is the slice of the backend the habit bar needs.
type API interface {
	Habits(ctx context.Context, date string) ([]habit.Habit, error)
	AddHabit(ctx context.Context, req api.AddHabitRequest) (int64, error)
	UpdateHabit(ctx context.Context, req api.UpdateHabitRequest) error
	DeleteHabit(ctx context.Context, id int64) error
	ToggleHabit(ctx context.Context, date string, id int64, status habit.Status) error
	MarkAllDone(ctx context.Context, date string) error
}

// NextStatus is the status a toggle records. Unset and failed go to done,
// done goes to failed; unset is never re-entered.
func NextStatus(s habit.Status) habit.Status {
	if s == habit.StatusDone {
		return habit.StatusFailed
	}
	return habit.StatusDone
}

// Slot is one position on the bar: a single habit, or a chain of habits
// sharing a group id.
type Slot struct {
	GroupID int64
	Habits  []habit.Habit
}

// Chain reports whether the slot groups habits.
func (s Slot) Chain() bool {
	return s.GroupID != 0
}

// Layout orders singles and chains by first appearance.
func Layout(habits []habit.Habit) []Slot {
	var slots []Slot
	chains := make(map[int64]int)
	for _, h := range habits {
		if !h.Chained() {
			slots = append(slots, Slot{Habits: []habit.Habit{h}})
			continue
		}
		i, ok := chains[h.GroupID]
		if !ok {
			i = len(slots)
			chains[h.GroupID] = i
			slots = append(slots, Slot{GroupID: h.GroupID})
		}
		slots[i].Habits = append(slots[i].Habits, h)
	}
	return slots
}

// Bar is the habit list for the active date.
type Bar struct {
	api    API
	logger *slog.Logger

	// opMu serializes loads and writes.
	opMu    sync.Mutex
	mu      sync.Mutex
	date    string
	habits  []habit.Habit
	loaded  bool
	loadErr error
}

// NewBar creates an empty bar.
func NewBar(a API, logger *slog.Logger) *Bar {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bar{api: a, logger: logger}
}

// Load fetches habits and their status for date.
func (b *Bar) Load(ctx context.Context, date string) ([]habit.Habit, error) {
	b.opMu.Lock()
	defer b.opMu.Unlock()
	return b.reload(ctx, date)
}

// Date is the date the bar was last loaded for.
func (b *Bar) Date() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.date
}

// Habits returns a copy of the loaded habits.
func (b *Bar) Habits() []habit.Habit {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]habit.Habit(nil), b.habits...)
}

// Slots lays out the loaded habits.
func (b *Bar) Slots() []Slot {
	return Layout(b.Habits())
}

// LoadErr is the error of the last failed load, shown inline.
func (b *Bar) LoadErr() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadErr
}

// Toggle records the next status for habit id and reloads.
func (b *Bar) Toggle(ctx context.Context, id int64) error {
	b.opMu.Lock()
	defer b.opMu.Unlock()

	date, h, err := b.find(id)
	if err != nil {
		return err
	}
	next := NextStatus(h.Status)
	if err := b.api.ToggleHabit(ctx, date, id, next); err != nil {
		return b.writeFailed(ctx, "toggle habit", err)
	}
	b.logger.Debug("habit toggled", "habit_id", id, "date", date, "status", int(next))
	_, err = b.reload(ctx, date)
	return err
}

// MarkAllDone marks every habit done for the active date and reloads.
func (b *Bar) MarkAllDone(ctx context.Context) error {
	b.opMu.Lock()
	defer b.opMu.Unlock()

	date, err := b.activeDate()
	if err != nil {
		return err
	}
	if err := b.api.MarkAllDone(ctx, date); err != nil {
		return b.writeFailed(ctx, "mark all habits done", err)
	}
	_, err = b.reload(ctx, date)
	return err
}

func (b *Bar) reload(ctx context.Context, date string) ([]habit.Habit, error) {
	habits, err := b.api.Habits(ctx, date)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.loadErr = fmt.Errorf("load habits: %w", err)
		b.logger.Warn("habit load failed", "date", date, "error", err)
		return nil, b.loadErr
	}
	b.date = date
	b.habits = habits
	b.loaded = true
	b.loadErr = nil
	return append([]habit.Habit(nil), habits...), nil
}

// writeFailed reloads so the bar shows server truth, then reports err.
func (b *Bar) writeFailed(ctx context.Context, op string, err error) error {
	b.logger.Warn("habit write failed", "op", op, "error", err)
	if date, derr := b.activeDate(); derr == nil {
		_, _ = b.reload(ctx, date)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (b *Bar) activeDate() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		return "", ErrNotLoaded
	}
	return b.date, nil
}

func (b *Bar) find(id int64) (string, habit.Habit, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		return "", habit.Habit{}, ErrNotLoaded
	}
	for _, h := range b.habits {
		if h.ID == id {
			return b.date, h, nil
		}
	}
	return "", habit.Habit{}, ErrUnknownHabit
}

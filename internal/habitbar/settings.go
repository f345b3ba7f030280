package habitbar

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rpggio/dailylog/internal/api"
	"github.com/rpggio/dailylog/internal/clock"
	"github.com/rpggio/dailylog/internal/domain/habit"
)

// Chain is a group container in the settings view. Pending chains have
// been added but hold no habit yet; they exist only client-side.
type Chain struct {
	ID      int64
	Habits  []habit.Habit
	Pending bool
}

// Settings edits habit definitions and chain membership for a bar.
// Close must be called when the view is dismissed.
type Settings struct {
	bar   *Bar
	clock clock.Clock

	pending []int64
}

// Settings opens the settings view over b. New chain ids come from c.
func (b *Bar) Settings(c clock.Clock) *Settings {
	if c == nil {
		c = clock.Real{}
	}
	return &Settings{bar: b, clock: c}
}

// Chains lists pending chains first, then chains with members in bar order.
func (s *Settings) Chains() []Chain {
	s.bar.mu.Lock()
	defer s.bar.mu.Unlock()
	s.prunePendingLocked()

	var chains []Chain
	for _, id := range s.pending {
		chains = append(chains, Chain{ID: id, Pending: true})
	}
	for _, slot := range Layout(s.bar.habits) {
		if slot.Chain() {
			chains = append(chains, Chain{ID: slot.GroupID, Habits: slot.Habits})
		}
	}
	return chains
}

// Singles lists habits outside any chain.
func (s *Settings) Singles() []habit.Habit {
	var out []habit.Habit
	for _, h := range s.bar.Habits() {
		if !h.Chained() {
			out = append(out, h)
		}
	}
	return out
}

// Add creates an ungrouped habit. An empty color takes the server default.
func (s *Settings) Add(ctx context.Context, title, color string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	return s.write(ctx, "add habit", func() error {
		_, err := s.bar.api.AddHabit(ctx, api.AddHabitRequest{Title: title, Color: color})
		return err
	})
}

// Edit renames a habit. An empty color leaves it unchanged.
func (s *Settings) Edit(ctx context.Context, id int64, title, color string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if _, _, err := s.bar.find(id); err != nil {
		return err
	}
	req := api.UpdateHabitRequest{HabitID: id, Title: &title}
	if color != "" {
		req.Color = &color
	}
	return s.write(ctx, "edit habit", func() error {
		return s.bar.api.UpdateHabit(ctx, req)
	})
}

// Delete removes a habit and its history.
func (s *Settings) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if _, _, err := s.bar.find(id); err != nil {
		return err
	}
	return s.write(ctx, "delete habit", func() error {
		return s.bar.api.DeleteHabit(ctx, id)
	})
}

// Move puts a habit into chain groupID, or ungroups it when groupID is 0.
func (s *Settings) Move(ctx context.Context, id, groupID int64) error {
	if _, _, err := s.bar.find(id); err != nil {
		return err
	}
	return s.write(ctx, "move habit", func() error {
		return s.bar.api.UpdateHabit(ctx, api.UpdateHabitRequest{HabitID: id, GroupID: &groupID})
	})
}

// AddChain adds an empty chain and returns its id. Only one empty chain
// exists at a time; asking again returns it.
func (s *Settings) AddChain() int64 {
	s.bar.mu.Lock()
	defer s.bar.mu.Unlock()
	s.prunePendingLocked()
	if len(s.pending) > 0 {
		return s.pending[0]
	}
	id := s.clock.Now().UnixMilli()
	s.pending = append([]int64{id}, s.pending...)
	return id
}

// DeleteChain ungroups every member of the chain.
func (s *Settings) DeleteChain(ctx context.Context, groupID int64) error {
	s.bar.mu.Lock()
	var members []int64
	for _, h := range s.bar.habits {
		if h.GroupID == groupID {
			members = append(members, h.ID)
		}
	}
	s.dropPendingLocked(groupID)
	s.bar.mu.Unlock()

	if len(members) == 0 {
		return nil
	}
	return s.write(ctx, "delete chain", func() error {
		return s.ungroup(ctx, members)
	})
}

// Close dissolves chains left with fewer than two members and reloads
// when anything changed.
func (s *Settings) Close(ctx context.Context) error {
	s.bar.mu.Lock()
	counts := make(map[int64][]int64)
	for _, h := range s.bar.habits {
		if h.Chained() {
			counts[h.GroupID] = append(counts[h.GroupID], h.ID)
		}
	}
	s.pending = nil
	s.bar.mu.Unlock()

	var lonely []int64
	for _, members := range counts {
		if len(members) < 2 {
			lonely = append(lonely, members...)
		}
	}
	if len(lonely) == 0 {
		return nil
	}
	return s.write(ctx, "dissolve chains", func() error {
		return s.ungroup(ctx, lonely)
	})
}

func (s *Settings) ungroup(ctx context.Context, ids []int64) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error {
			var zero int64
			return s.bar.api.UpdateHabit(gctx, api.UpdateHabitRequest{HabitID: id, GroupID: &zero})
		})
	}
	return g.Wait()
}

// write runs fn then reloads the bar, serialized with other bar writes.
func (s *Settings) write(ctx context.Context, op string, fn func() error) error {
	s.bar.opMu.Lock()
	defer s.bar.opMu.Unlock()

	date, err := s.bar.activeDate()
	if err != nil {
		return err
	}
	if err := fn(); err != nil {
		return s.bar.writeFailed(ctx, op, err)
	}
	if _, err := s.bar.reload(ctx, date); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Settings) prunePendingLocked() {
	used := make(map[int64]bool)
	for _, h := range s.bar.habits {
		used[h.GroupID] = true
	}
	kept := s.pending[:0]
	for _, id := range s.pending {
		if !used[id] {
			kept = append(kept, id)
		}
	}
	s.pending = kept
}

func (s *Settings) dropPendingLocked(groupID int64) {
	kept := s.pending[:0]
	for _, id := range s.pending {
		if id != groupID {
			kept = append(kept, id)
		}
	}
	s.pending = kept
}

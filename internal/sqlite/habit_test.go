package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/repository"
	"github.com/stretchr/testify/require"
)

func createHabit(t *testing.T, repo *HabitRepository, title string, group int64) *habit.Habit {
	t.Helper()
	h := &habit.Habit{Title: title, Color: habit.DefaultColor, GroupID: group}
	require.NoError(t, repo.Create(context.Background(), h))
	require.NotZero(t, h.ID)
	return h
}

func TestHabitRepository_ListWithStatus(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewHabitRepository(db)

	read := createHabit(t, repo, "Read", 0)
	run := createHabit(t, repo, "Run", 2)
	createHabit(t, repo, "Stretch", 2)

	require.NoError(t, repo.SetStatus(ctx, "2024-05-01", read.ID, habit.StatusDone))
	require.NoError(t, repo.SetStatus(ctx, "2024-05-01", run.ID, habit.StatusFailed))
	require.NoError(t, repo.SetStatus(ctx, "2024-05-01", run.ID, habit.StatusDone))

	list, err := repo.List(ctx, "2024-05-01")
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "Read", list[0].Title)
	require.Equal(t, habit.StatusDone, list[0].Status)
	require.Equal(t, habit.StatusDone, list[1].Status)
	require.Equal(t, habit.StatusUnset, list[2].Status)
	require.Equal(t, int64(2), list[2].GroupID)

	other, err := repo.List(ctx, "2024-05-02")
	require.NoError(t, err)
	require.Equal(t, habit.StatusUnset, other[0].Status)
}

func TestHabitRepository_SetStatusUnknownHabit(t *testing.T) {
	repo := NewHabitRepository(NewTestDB(t))
	err := repo.SetStatus(context.Background(), "2024-05-01", 42, habit.StatusDone)
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)
}

func TestHabitRepository_UpdateArchiveAndDelete(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewHabitRepository(db)

	a := createHabit(t, repo, "A", 1)
	b := createHabit(t, repo, "B", 1)

	zero := int64(0)
	title := "A2"
	require.NoError(t, repo.Update(ctx, a.ID, habit.Patch{Title: &title, GroupID: &zero}))
	archived := true
	require.NoError(t, repo.Update(ctx, b.ID, habit.Patch{IsArchived: &archived}))
	require.ErrorIs(t, repo.Update(ctx, 999, habit.Patch{Title: &title}), repository.ErrNotFound)

	list, err := repo.List(ctx, "2024-05-01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "A2", list[0].Title)
	require.Equal(t, int64(0), list[0].GroupID)

	require.NoError(t, repo.SetStatus(ctx, "2024-05-01", a.ID, habit.StatusDone))
	require.NoError(t, repo.Delete(ctx, a.ID))
	require.ErrorIs(t, repo.Delete(ctx, a.ID), repository.ErrNotFound)

	var logs int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM habit_logs`).Scan(&logs))
	require.Zero(t, logs)
}

func TestHabitRepository_MarkAllDone(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewHabitRepository(db)

	a := createHabit(t, repo, "A", 0)
	createHabit(t, repo, "B", 0)
	c := createHabit(t, repo, "C", 0)
	archived := true
	require.NoError(t, repo.Update(ctx, c.ID, habit.Patch{IsArchived: &archived}))
	require.NoError(t, repo.SetStatus(ctx, "2024-05-01", a.ID, habit.StatusFailed))

	n, err := repo.MarkAllDone(ctx, "2024-05-01")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	list, err := repo.List(ctx, "2024-05-01")
	require.NoError(t, err)
	for _, h := range list {
		require.Equal(t, habit.StatusDone, h.Status, h.Title)
	}
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/repository"
)

// HabitRepository implements habit.Repository for SQLite
type HabitRepository struct {
	db *DB
}

// NewHabitRepository creates a new HabitRepository
func NewHabitRepository(db *DB) *HabitRepository {
	return &HabitRepository{db: db}
}

// List returns non-archived habits with their status on date
func (r *HabitRepository) List(ctx context.Context, date string) ([]habit.Habit, error) {
	query := `
		SELECT h.id, h.title, h.color, h.group_id, h.sort_order, h.is_archived, h.created_at, hl.status
		FROM habit_definitions h
		LEFT JOIN habit_logs hl ON hl.habit_id = h.id AND hl.log_date = ?
		WHERE h.is_archived = 0
		ORDER BY h.sort_order ASC, h.created_at ASC, h.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	var habits []habit.Habit
	for rows.Next() {
		var h habit.Habit
		var status sql.NullInt64
		if err := rows.Scan(
			&h.ID,
			&h.Title,
			&h.Color,
			&h.GroupID,
			&h.SortOrder,
			&h.IsArchived,
			&h.CreatedAt,
			&status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		h.Status = habit.StatusUnset
		if status.Valid {
			h.Status = habit.Status(status.Int64)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating habit rows: %w", err)
	}
	return habits, nil
}

// Create inserts a habit at the end of the sort order
func (r *HabitRepository) Create(ctx context.Context, h *habit.Habit) error {
	createdAt := h.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	query := `
		INSERT INTO habit_definitions (title, color, group_id, sort_order, is_archived, created_at)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM habit_definitions), 0, ?)
	`
	result, err := r.db.ExecContext(ctx, query, h.Title, h.Color, h.GroupID, createdAt)
	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read habit id: %w", err)
	}
	h.ID = id
	h.CreatedAt = createdAt
	return nil
}

// Update applies the non-nil fields of patch
func (r *HabitRepository) Update(ctx context.Context, id int64, patch habit.Patch) error {
	var sets []string
	var args []any
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*patch.Title))
	}
	if patch.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *patch.Color)
	}
	if patch.GroupID != nil {
		sets = append(sets, "group_id = ?")
		args = append(args, *patch.GroupID)
	}
	if patch.IsArchived != nil {
		sets = append(sets, "is_archived = ?")
		args = append(args, *patch.IsArchived)
	}
	if len(sets) == 0 {
		return repository.ErrInvalidInput
	}
	args = append(args, id)

	query := `UPDATE habit_definitions SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	return expectOneRow(result)
}

// Delete removes a habit and its logs
func (r *HabitRepository) Delete(ctx context.Context, id int64) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM habit_logs WHERE habit_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete habit logs: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM habit_definitions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}
		return expectOneRow(result)
	})
}

// SetStatus upserts a habit's status for date
func (r *HabitRepository) SetStatus(ctx context.Context, date string, id int64, status habit.Status) error {
	query := `
		INSERT INTO habit_logs (log_date, habit_id, status) VALUES (?, ?, ?)
		ON CONFLICT(log_date, habit_id) DO UPDATE SET status = excluded.status
	`
	if _, err := r.db.ExecContext(ctx, query, date, id, int(status)); err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to set habit status: %w", err)
	}
	return nil
}

// MarkAllDone sets every non-archived habit to done for date
func (r *HabitRepository) MarkAllDone(ctx context.Context, date string) (int, error) {
	query := `
		INSERT INTO habit_logs (log_date, habit_id, status)
		SELECT ?, id, 1 FROM habit_definitions WHERE is_archived = 0
		ON CONFLICT(log_date, habit_id) DO UPDATE SET status = 1
	`
	result, err := r.db.ExecContext(ctx, query, date)
	if err != nil {
		return 0, fmt.Errorf("failed to mark habits done: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return int(n), nil
}

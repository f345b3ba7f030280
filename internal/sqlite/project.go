package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Tree returns the origin and every item carrying it as origin_id
func (r *ProjectRepository) Tree(ctx context.Context, originID string) ([]logitem.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM log_items li
		JOIN daily_logs dl ON dl.id = li.log_id
		WHERE li.origin_id = ? OR li.item_id = ?
		ORDER BY dl.log_date ASC, li.sort_order ASC, li.rowid ASC
	`
	return queryItems(ctx, r.db, query, originID, originID)
}

// GetItem retrieves an item by ID
func (r *ProjectRepository) GetItem(ctx context.Context, id string) (*logitem.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM log_items li
		JOIN daily_logs dl ON dl.id = li.log_id
		WHERE li.item_id = ?
	`
	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// CreateMilestone appends item to the end of its date's log
func (r *ProjectRepository) CreateMilestone(ctx context.Context, item *logitem.Item) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		logID, err := ensureDay(ctx, tx, item.Date)
		if err != nil {
			return err
		}
		rel := string(item.RelationType)
		query := `
			INSERT INTO log_items (
				item_id, log_id, title, content, is_done, sort_order, tags,
				origin_id, parent_id, relation_type
			) VALUES (?, ?, ?, ?, ?,
				(SELECT COALESCE(MAX(sort_order) + 1, 0) FROM log_items WHERE log_id = ?),
				?, ?, ?, ?)
		`
		_, err = tx.ExecContext(ctx, query,
			item.ID,
			logID,
			item.Title,
			item.Content,
			item.IsDone,
			logID,
			item.Tags.String(),
			nullString(item.OriginID),
			nullString(item.ParentID),
			nullString(&rel),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrDuplicate
			}
			return fmt.Errorf("failed to create milestone: %w", err)
		}
		return nil
	})
}

// UpdateRelation changes an item's parent and relation type
func (r *ProjectRepository) UpdateRelation(ctx context.Context, itemID string, parentID *string, rel logitem.RelationType) error {
	query := `UPDATE log_items SET parent_id = ?, relation_type = ? WHERE item_id = ?`
	result, err := r.db.ExecContext(ctx, query, nullString(parentID), string(rel), itemID)
	if err != nil {
		return fmt.Errorf("failed to update relation: %w", err)
	}
	return expectOneRow(result)
}

// CountChildren counts items naming parentID as their parent
func (r *ProjectRepository) CountChildren(ctx context.Context, parentID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM log_items WHERE parent_id = ? AND item_id != ?`,
		parentID, parentID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count children: %w", err)
	}
	return n, nil
}

// DeleteItem removes an item permanently
func (r *ProjectRepository) DeleteItem(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM log_items WHERE item_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return expectOneRow(result)
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

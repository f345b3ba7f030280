package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/tags"
)

// LogRepository implements logitem.Repository for SQLite
type LogRepository struct {
	db *DB
}

// NewLogRepository creates a new LogRepository
func NewLogRepository(db *DB) *LogRepository {
	return &LogRepository{db: db}
}

const itemColumns = `
	li.item_id, li.title, li.content, li.is_done, li.tags,
	li.origin_id, li.parent_id, li.relation_type, dl.log_date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (logitem.Item, error) {
	var item logitem.Item
	var tagStr string
	var originID, parentID, relation sql.NullString
	if err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Content,
		&item.IsDone,
		&tagStr,
		&originID,
		&parentID,
		&relation,
		&item.Date,
	); err != nil {
		return item, err
	}
	item.Tags = tags.Parse(tagStr)
	item.OriginID = ptrString(originID)
	item.ParentID = ptrString(parentID)
	item.RelationType = logitem.RelationType(relation.String)
	return item, nil
}

func queryItems(ctx context.Context, q interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}, query string, args ...any) ([]logitem.Item, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []logitem.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}
	return items, nil
}

// GetDay returns a date's items in sort order
func (r *LogRepository) GetDay(ctx context.Context, date string) ([]logitem.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM log_items li
		JOIN daily_logs dl ON dl.id = li.log_id
		WHERE dl.log_date = ?
		ORDER BY li.sort_order ASC, li.rowid ASC
	`
	return queryItems(ctx, r.db, query, date)
}

// SaveDay upserts the given items for date and removes the day's other
// items. Evolve milestones are kept: they are created from the project map
// and never travel in a day's save payload.
func (r *LogRepository) SaveDay(ctx context.Context, date string, items []logitem.Item) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		logID, err := ensureDay(ctx, tx, date)
		if err != nil {
			return err
		}

		keep := make([]any, 0, len(items)+1)
		keep = append(keep, logID)
		for _, item := range items {
			keep = append(keep, item.ID)
		}
		del := `DELETE FROM log_items WHERE log_id = ? AND (relation_type IS NULL OR relation_type != 'evolve')`
		if len(items) > 0 {
			del += ` AND item_id NOT IN (` + placeholders(len(items)) + `)`
		}
		if _, err := tx.ExecContext(ctx, del, keep...); err != nil {
			return fmt.Errorf("failed to delete removed items: %w", err)
		}

		upsert := `
			INSERT INTO log_items (
				item_id, log_id, title, content, is_done, sort_order, tags,
				origin_id, parent_id, relation_type
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(item_id) DO UPDATE SET
				log_id = excluded.log_id,
				title = excluded.title,
				content = excluded.content,
				is_done = excluded.is_done,
				sort_order = excluded.sort_order,
				tags = excluded.tags,
				origin_id = COALESCE(excluded.origin_id, log_items.origin_id),
				parent_id = COALESCE(excluded.parent_id, log_items.parent_id),
				relation_type = COALESCE(excluded.relation_type, log_items.relation_type)
		`
		for idx, item := range items {
			rel := string(item.RelationType)
			if _, err := tx.ExecContext(ctx, upsert,
				item.ID,
				logID,
				item.Title,
				item.Content,
				item.IsDone,
				idx,
				item.Tags.String(),
				nullString(item.OriginID),
				nullString(item.ParentID),
				nullString(&rel),
			); err != nil {
				return fmt.Errorf("failed to upsert item %s: %w", item.ID, err)
			}
		}
		return nil
	})
}

// ListDays returns all days with items, newest first
func (r *LogRepository) ListDays(ctx context.Context) ([]logitem.DayLog, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM log_items li
		JOIN daily_logs dl ON dl.id = li.log_id
		ORDER BY dl.log_date DESC, li.sort_order ASC, li.rowid ASC
	`
	items, err := queryItems(ctx, r.db, query)
	if err != nil {
		return nil, err
	}
	return groupByDate(items), nil
}

// ListMonth returns the days of a YYYY-MM month, newest first
func (r *LogRepository) ListMonth(ctx context.Context, month string) ([]logitem.DayLog, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM log_items li
		JOIN daily_logs dl ON dl.id = li.log_id
		WHERE dl.log_date LIKE ?
		ORDER BY dl.log_date DESC, li.sort_order ASC, li.rowid ASC
	`
	items, err := queryItems(ctx, r.db, query, month+"-%")
	if err != nil {
		return nil, err
	}
	return groupByDate(items), nil
}

// History returns every entry with the exact title whose tags contain tagFilter
func (r *LogRepository) History(ctx context.Context, title, tagFilter string) ([]logitem.HistoryEntry, error) {
	query := `
		SELECT dl.log_date, li.content, li.tags
		FROM log_items li
		JOIN daily_logs dl ON dl.id = li.log_id
		WHERE li.title = ? AND li.tags LIKE ?
		ORDER BY dl.log_date ASC, li.sort_order ASC
	`
	rows, err := r.db.QueryContext(ctx, query, title, "%"+tagFilter+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []logitem.HistoryEntry
	for rows.Next() {
		var e logitem.HistoryEntry
		var tagStr string
		if err := rows.Scan(&e.Date, &e.Content, &tagStr); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.Tags = tags.Parse(tagStr)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return entries, nil
}

func ensureDay(ctx context.Context, tx *sql.Tx, date string) (int64, error) {
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO daily_logs (log_date) VALUES (?)`, date); err != nil {
		return 0, fmt.Errorf("failed to create daily log: %w", err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM daily_logs WHERE log_date = ?`, date).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to load daily log: %w", err)
	}
	return id, nil
}

func groupByDate(items []logitem.Item) []logitem.DayLog {
	var days []logitem.DayLog
	for _, item := range items {
		if len(days) == 0 || days[len(days)-1].Date != item.Date {
			days = append(days, logitem.DayLog{Date: item.Date})
		}
		last := &days[len(days)-1]
		last.Items = append(last.Items, item)
	}
	return days
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

package logitem

import (
	"time"

	"github.com/rpggio/dailylog/internal/tags"
)

// DateLayout is the calendar-date format used for day logs.
const DateLayout = "2006-01-02"

// RelationType describes how an item relates to its lineage.
type RelationType string

const (
	RelationRoot    RelationType = "root"
	RelationEvolve  RelationType = "evolve"
	RelationInherit RelationType = "inherit"
)

// Valid reports whether r is a known relation type. Empty is valid.
func (r RelationType) Valid() bool {
	switch r {
	case "", RelationRoot, RelationEvolve, RelationInherit:
		return true
	}
	return false
}

// Item is one task card in a day's log.
type Item struct {
	ID           string       `json:"item_id"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	Tags         tags.List    `json:"tags"`
	IsDone       bool         `json:"isDone"`
	OriginID     *string      `json:"origin_id,omitempty"`
	ParentID     *string      `json:"parent_id,omitempty"`
	RelationType RelationType `json:"relation_type,omitempty"`
	Date         string       `json:"date,omitempty"`
}

// Lineage reports the project root this item belongs to: its origin, or
// itself when it has none.
func (i Item) Lineage() string {
	if i.OriginID != nil && *i.OriginID != "" {
		return *i.OriginID
	}
	return i.ID
}

// DayLog is the ordered set of items for one date.
type DayLog struct {
	Date  string `json:"date"`
	Items []Item `json:"items"`
}

// HistoryEntry is one past occurrence of a project.
type HistoryEntry struct {
	Date    string    `json:"date"`
	Content string    `json:"content"`
	Tags    tags.List `json:"tags"`
}

// History summarises every day a project title appeared.
type History struct {
	TotalDays int            `json:"total_days"`
	Entries   []HistoryEntry `json:"history"`
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Package api defines the JSON bodies exchanged between the log server and
// its clients. Every response carries a status field; anything other than
// "success" is a failure.
package api

import (
	"github.com/rpggio/dailylog/internal/domain/activity"
	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/domain/logitem"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the part of every response the client inspects first.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the envelope signals success.
func (e Envelope) OK() bool {
	return e.Status == StatusSuccess
}

// LogResponse answers get-log.
type LogResponse struct {
	Envelope
	Date  string         `json:"date"`
	Items []logitem.Item `json:"items"`
}

// SaveLogRequest is the save-log body.
type SaveLogRequest struct {
	Date  string         `json:"date"`
	Items []logitem.Item `json:"items"`
}

// AllLogsResponse answers get-all-logs.
type AllLogsResponse struct {
	Envelope
	Logs []logitem.DayLog `json:"logs"`
}

// HistoryResponse answers get-project-history.
type HistoryResponse struct {
	Envelope
	TotalDays int                    `json:"total_days"`
	History   []logitem.HistoryEntry `json:"history"`
}

// HabitsResponse answers get-habits.
type HabitsResponse struct {
	Envelope
	Habits []habit.Habit `json:"habits"`
}

// AddHabitRequest is the add-habit body.
type AddHabitRequest struct {
	Title   string `json:"title"`
	Color   string `json:"color,omitempty"`
	GroupID int64  `json:"group_id"`
}

// AddHabitResponse answers add-habit.
type AddHabitResponse struct {
	Envelope
	ID int64 `json:"id"`
}

// UpdateHabitRequest is the update-habit body. Absent fields are unchanged.
type UpdateHabitRequest struct {
	HabitID    int64   `json:"habit_id"`
	Title      *string `json:"title,omitempty"`
	Color      *string `json:"color,omitempty"`
	GroupID    *int64  `json:"group_id,omitempty"`
	IsArchived *bool   `json:"is_archived,omitempty"`
}

// Patch converts the request into a domain patch.
func (r UpdateHabitRequest) Patch() habit.Patch {
	return habit.Patch{Title: r.Title, Color: r.Color, GroupID: r.GroupID, IsArchived: r.IsArchived}
}

// ToggleHabitRequest is the toggle-habit body.
type ToggleHabitRequest struct {
	Date    string       `json:"date"`
	HabitID int64        `json:"habit_id"`
	Status  habit.Status `json:"status"`
}

// MarkAllDoneResponse answers mark-all-done.
type MarkAllDoneResponse struct {
	Envelope
	Updated int `json:"updated"`
}

// TreeResponse answers project/tree.
type TreeResponse struct {
	Envelope
	OriginID string         `json:"origin_id"`
	Tree     []logitem.Item `json:"tree"`
}

// AddMilestoneRequest is the project/add-milestone body.
type AddMilestoneRequest struct {
	OriginID string `json:"origin_id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
}

// AddMilestoneResponse answers project/add-milestone.
type AddMilestoneResponse struct {
	Envelope
	ItemID string `json:"item_id"`
}

// UpdateRelationRequest is the project/update-relation body.
type UpdateRelationRequest struct {
	ItemID         string               `json:"item_id"`
	TargetParentID *string              `json:"target_parent_id"`
	RelationType   logitem.RelationType `json:"relation_type"`
}

// ActivityResponse answers activity.
type ActivityResponse struct {
	Envelope
	Activity []activity.Entry `json:"activity"`
}

// Success is the bare success envelope.
func Success() Envelope {
	return Envelope{Status: StatusSuccess}
}

// Failure builds an error envelope.
func Failure(msg string) Envelope {
	return Envelope{Status: StatusError, Message: msg}
}

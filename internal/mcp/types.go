package mcp

import (
	"time"

	"github.com/rpggio/dailylog/internal/domain/activity"
	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/projectmap"
	"github.com/rpggio/dailylog/internal/tags"
)

type mcpItem struct {
	ID           string   `json:"item_id,omitempty" jsonschema:"stable item id; generated when omitted"`
	Title        string   `json:"title"`
	Content      string   `json:"content,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	IsDone       bool     `json:"is_done"`
	OriginID     string   `json:"origin_id,omitempty" jsonschema:"first item of the project lineage"`
	ParentID     string   `json:"parent_id,omitempty" jsonschema:"milestone or origin this item continues"`
	RelationType string   `json:"relation_type,omitempty" jsonschema:"root, evolve or inherit"`
	Date         string   `json:"date,omitempty"`
}

func toMCPItem(item logitem.Item) mcpItem {
	out := mcpItem{
		ID:           item.ID,
		Title:        item.Title,
		Content:      item.Content,
		Tags:         []string(item.Tags.Clone()),
		IsDone:       item.IsDone,
		RelationType: string(item.RelationType),
		Date:         item.Date,
	}
	if item.OriginID != nil {
		out.OriginID = *item.OriginID
	}
	if item.ParentID != nil {
		out.ParentID = *item.ParentID
	}
	return out
}

func toMCPItems(items []logitem.Item) []mcpItem {
	out := make([]mcpItem, 0, len(items))
	for _, item := range items {
		out = append(out, toMCPItem(item))
	}
	return out
}

func (i mcpItem) domain() logitem.Item {
	return logitem.Item{
		ID:           i.ID,
		Title:        i.Title,
		Content:      i.Content,
		Tags:         tags.List(i.Tags).Clone(),
		IsDone:       i.IsDone,
		OriginID:     logitem.StringPtr(i.OriginID),
		ParentID:     logitem.StringPtr(i.ParentID),
		RelationType: logitem.RelationType(i.RelationType),
	}
}

type habitView struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Color   string `json:"color"`
	GroupID int64  `json:"group_id,omitempty"`
	Status  *int   `json:"status" jsonschema:"1 done, 0 failed, null unset"`
}

func toHabitView(h habit.Habit) habitView {
	view := habitView{ID: h.ID, Title: h.Title, Color: h.Color, GroupID: h.GroupID}
	if h.Status != habit.StatusUnset {
		status := int(h.Status)
		view.Status = &status
	}
	return view
}

type activityView struct {
	ID        int64  `json:"id"`
	ItemID    string `json:"item_id,omitempty"`
	Type      string `json:"type"`
	Summary   string `json:"summary"`
	CreatedAt string `json:"created_at"`
}

func toActivityView(e activity.Entry) activityView {
	view := activityView{
		ID:        e.ID,
		Type:      string(e.Type),
		Summary:   e.Summary,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.ItemID != nil {
		view.ItemID = *e.ItemID
	}
	return view
}

type milestoneView struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Date       string    `json:"date,omitempty"`
	Rank       int       `json:"rank" jsonschema:"1-based rank; 0 for the origin"`
	IsRoot     bool      `json:"is_root"`
	HeaderDate string    `json:"header_date,omitempty"`
	Children   []mcpItem `json:"children"`
}

func toMilestoneViews(m projectmap.Map) []milestoneView {
	out := make([]milestoneView, 0, len(m.Milestones))
	for _, ms := range m.Milestones {
		out = append(out, milestoneView{
			ID:         ms.ID(),
			Title:      ms.Item.Title,
			Date:       ms.Item.Date,
			Rank:       ms.Rank,
			IsRoot:     ms.IsRoot,
			HeaderDate: ms.HeaderDate,
			Children:   toMCPItems(ms.Children),
		})
	}
	return out
}

type historyEntryView struct {
	Date    string   `json:"date"`
	Content string   `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Tool inputs and outputs.

type GetLogInput struct {
	Date string `json:"date,omitempty" jsonschema:"YYYY-MM-DD; today when omitted"`
}

type LogOutput struct {
	Date  string    `json:"date"`
	Items []mcpItem `json:"items"`
}

type SaveLogInput struct {
	Date  string    `json:"date" jsonschema:"YYYY-MM-DD"`
	Items []mcpItem `json:"items" jsonschema:"full ordered item list for the day"`
}

type ListLogsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"most recent days to return; all when omitted"`
}

type ListLogsOutput struct {
	Days []LogOutput `json:"days"`
}

type ProjectHistoryInput struct {
	Title string `json:"title" jsonschema:"exact project title"`
	Tag   string `json:"tag,omitempty" jsonschema:"only days whose item carries this tag"`
}

type ProjectHistoryOutput struct {
	TotalDays int                `json:"total_days"`
	History   []historyEntryView `json:"history"`
}

type ProjectTreeInput struct {
	OriginID string `json:"origin_id" jsonschema:"origin item id of the project"`
}

type ProjectTreeOutput struct {
	OriginID   string          `json:"origin_id"`
	Title      string          `json:"title"`
	TotalDays  int             `json:"total_days"`
	Milestones []milestoneView `json:"milestones"`
}

type AddMilestoneInput struct {
	OriginID string `json:"origin_id"`
	Title    string `json:"title,omitempty" jsonschema:"defaults to Evolution Node"`
	Date     string `json:"date,omitempty" jsonschema:"YYYY-MM-DD; today when omitted"`
}

type AddMilestoneOutput struct {
	ID string `json:"id"`
}

type UpdateRelationInput struct {
	ItemID         string `json:"item_id"`
	TargetParentID string `json:"target_parent_id,omitempty" jsonschema:"new parent; empty moves the item to the origin"`
	RelationType   string `json:"relation_type" jsonschema:"inherit or evolve"`
}

type DeleteItemInput struct {
	ItemID string `json:"item_id"`
}

type OKOutput struct {
	OK bool `json:"ok"`
}

type ListHabitsInput struct {
	Date string `json:"date,omitempty" jsonschema:"YYYY-MM-DD; today when omitted"`
}

type ListHabitsOutput struct {
	Date   string      `json:"date"`
	Habits []habitView `json:"habits"`
}

type ToggleHabitInput struct {
	ID     int64  `json:"id"`
	Date   string `json:"date,omitempty" jsonschema:"YYYY-MM-DD; today when omitted"`
	Status int    `json:"status" jsonschema:"1 done or 0 failed"`
}

type MarkAllHabitsDoneInput struct {
	Date string `json:"date,omitempty" jsonschema:"YYYY-MM-DD; today when omitted"`
}

type MarkAllHabitsDoneOutput struct {
	Updated int `json:"updated"`
}

type RecentActivityInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"defaults to 20"`
}

type RecentActivityOutput struct {
	Entries []activityView `json:"entries"`
}

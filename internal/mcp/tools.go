package mcp

import (
	"context"
	"sort"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/dailylog/internal/clock"
	"github.com/rpggio/dailylog/internal/domain/activity"
	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/domain/project"
	"github.com/rpggio/dailylog/internal/projectmap"
)

const defaultActivityLimit = 20

type toolset struct {
	svc   Services
	clock clock.Clock
}

func registerTools(server *sdkmcp.Server, svc Services, c clock.Clock) {
	ts := &toolset{svc: svc, clock: c}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_log",
		Description: "Get the ordered items of one day's log.",
	}, ts.getLog)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "save_log",
		Description: "Replace one day's items. Items missing from the list are removed; milestones are kept.",
	}, ts.saveLog)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_logs",
		Description: "List day logs, newest first.",
	}, ts.listLogs)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "project_history",
		Description: "List every day a project title appeared, oldest first.",
	}, ts.projectHistory)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "project_tree",
		Description: "Get a project's lineage grouped into ranked milestones.",
	}, ts.projectTree)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_milestone",
		Description: "Create a milestone under a project's origin.",
	}, ts.addMilestone)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_relation",
		Description: "Move an item under a new parent in its lineage.",
	}, ts.updateRelation)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_item",
		Description: "Delete an item that has no children.",
	}, ts.deleteItem)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_habits",
		Description: "List active habits with their status for a date.",
	}, ts.listHabits)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "toggle_habit",
		Description: "Set a habit's status for a date.",
	}, ts.toggleHabit)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "mark_all_habits_done",
		Description: "Mark every active habit done for a date.",
	}, ts.markAllHabitsDone)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "recent_activity",
		Description: "List recent structural writes, newest first.",
	}, ts.recentActivity)
}

func (ts *toolset) date(raw string) string {
	if d := strings.TrimSpace(raw); d != "" {
		return d
	}
	return clock.Today(ts.clock)
}

func (ts *toolset) getLog(ctx context.Context, _ *sdkmcp.CallToolRequest, input GetLogInput) (*sdkmcp.CallToolResult, LogOutput, error) {
	day, err := ts.svc.Logs.GetDay(ctx, ts.date(input.Date))
	if err != nil {
		return nil, LogOutput{}, toolError(err)
	}
	return nil, LogOutput{Date: day.Date, Items: toMCPItems(day.Items)}, nil
}

func (ts *toolset) saveLog(ctx context.Context, _ *sdkmcp.CallToolRequest, input SaveLogInput) (*sdkmcp.CallToolResult, LogOutput, error) {
	items := make([]logitem.Item, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, item.domain())
	}
	day, err := ts.svc.Logs.SaveDay(ctx, logitem.DayLog{Date: input.Date, Items: items})
	if err != nil {
		return nil, LogOutput{}, toolError(err)
	}
	return nil, LogOutput{Date: day.Date, Items: toMCPItems(day.Items)}, nil
}

func (ts *toolset) listLogs(ctx context.Context, _ *sdkmcp.CallToolRequest, input ListLogsInput) (*sdkmcp.CallToolResult, ListLogsOutput, error) {
	days, err := ts.svc.Logs.ListDays(ctx)
	if err != nil {
		return nil, ListLogsOutput{}, toolError(err)
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date > days[j].Date })
	if input.Limit > 0 && len(days) > input.Limit {
		days = days[:input.Limit]
	}
	out := ListLogsOutput{Days: make([]LogOutput, 0, len(days))}
	for _, day := range days {
		out.Days = append(out.Days, LogOutput{Date: day.Date, Items: toMCPItems(day.Items)})
	}
	return nil, out, nil
}

func (ts *toolset) projectHistory(ctx context.Context, _ *sdkmcp.CallToolRequest, input ProjectHistoryInput) (*sdkmcp.CallToolResult, ProjectHistoryOutput, error) {
	h, err := ts.svc.Logs.History(ctx, input.Title, input.Tag)
	if err != nil {
		return nil, ProjectHistoryOutput{}, toolError(err)
	}
	out := ProjectHistoryOutput{TotalDays: h.TotalDays, History: make([]historyEntryView, 0, len(h.Entries))}
	for _, e := range h.Entries {
		out.History = append(out.History, historyEntryView{Date: e.Date, Content: e.Content, Tags: []string(e.Tags.Clone())})
	}
	return nil, out, nil
}

func (ts *toolset) projectTree(ctx context.Context, _ *sdkmcp.CallToolRequest, input ProjectTreeInput) (*sdkmcp.CallToolResult, ProjectTreeOutput, error) {
	items, err := ts.svc.Projects.Tree(ctx, input.OriginID)
	if err != nil {
		return nil, ProjectTreeOutput{}, toolError(err)
	}
	m := projectmap.Build(items, input.OriginID)
	return nil, ProjectTreeOutput{
		OriginID:   m.OriginID,
		Title:      m.Title(),
		TotalDays:  m.TotalDays,
		Milestones: toMilestoneViews(m),
	}, nil
}

func (ts *toolset) addMilestone(ctx context.Context, _ *sdkmcp.CallToolRequest, input AddMilestoneInput) (*sdkmcp.CallToolResult, AddMilestoneOutput, error) {
	item, err := ts.svc.Projects.AddMilestone(ctx, project.MilestoneRequest{
		OriginID: input.OriginID,
		Title:    input.Title,
		Date:     ts.date(input.Date),
	})
	if err != nil {
		return nil, AddMilestoneOutput{}, toolError(err)
	}
	return nil, AddMilestoneOutput{ID: item.ID}, nil
}

func (ts *toolset) updateRelation(ctx context.Context, _ *sdkmcp.CallToolRequest, input UpdateRelationInput) (*sdkmcp.CallToolResult, OKOutput, error) {
	err := ts.svc.Projects.UpdateRelation(ctx, project.RelationRequest{
		ItemID:         input.ItemID,
		TargetParentID: logitem.StringPtr(input.TargetParentID),
		RelationType:   logitem.RelationType(input.RelationType),
	})
	if err != nil {
		return nil, OKOutput{}, toolError(err)
	}
	return nil, OKOutput{OK: true}, nil
}

func (ts *toolset) deleteItem(ctx context.Context, _ *sdkmcp.CallToolRequest, input DeleteItemInput) (*sdkmcp.CallToolResult, OKOutput, error) {
	if err := ts.svc.Projects.DeleteItem(ctx, input.ItemID); err != nil {
		return nil, OKOutput{}, toolError(err)
	}
	return nil, OKOutput{OK: true}, nil
}

func (ts *toolset) listHabits(ctx context.Context, _ *sdkmcp.CallToolRequest, input ListHabitsInput) (*sdkmcp.CallToolResult, ListHabitsOutput, error) {
	date := ts.date(input.Date)
	habits, err := ts.svc.Habits.List(ctx, date)
	if err != nil {
		return nil, ListHabitsOutput{}, toolError(err)
	}
	out := ListHabitsOutput{Date: date, Habits: make([]habitView, 0, len(habits))}
	for _, h := range habits {
		out.Habits = append(out.Habits, toHabitView(h))
	}
	return nil, out, nil
}

func (ts *toolset) toggleHabit(ctx context.Context, _ *sdkmcp.CallToolRequest, input ToggleHabitInput) (*sdkmcp.CallToolResult, OKOutput, error) {
	if err := ts.svc.Habits.Toggle(ctx, ts.date(input.Date), input.ID, habit.Status(input.Status)); err != nil {
		return nil, OKOutput{}, toolError(err)
	}
	return nil, OKOutput{OK: true}, nil
}

func (ts *toolset) markAllHabitsDone(ctx context.Context, _ *sdkmcp.CallToolRequest, input MarkAllHabitsDoneInput) (*sdkmcp.CallToolResult, MarkAllHabitsDoneOutput, error) {
	n, err := ts.svc.Habits.MarkAllDone(ctx, ts.date(input.Date))
	if err != nil {
		return nil, MarkAllHabitsDoneOutput{}, toolError(err)
	}
	return nil, MarkAllHabitsDoneOutput{Updated: n}, nil
}

func (ts *toolset) recentActivity(ctx context.Context, _ *sdkmcp.CallToolRequest, input RecentActivityInput) (*sdkmcp.CallToolResult, RecentActivityOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	entries, err := ts.svc.Activity.Recent(ctx, activity.ListOptions{Limit: limit})
	if err != nil {
		return nil, RecentActivityOutput{}, toolError(err)
	}
	out := RecentActivityOutput{Entries: make([]activityView, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, toActivityView(e))
	}
	return nil, out, nil
}

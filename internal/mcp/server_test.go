package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/dailylog/internal/domain/activity"
	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/domain/project"
	"github.com/rpggio/dailylog/internal/sqlite"
	"github.com/rpggio/dailylog/internal/testutil"
)

type harness struct {
	session *sdkmcp.ClientSession
	habits  *habit.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	activities := sqlite.NewActivityRepository(db)
	habits := habit.NewService(sqlite.NewHabitRepository(db), activities, logger)

	server := NewServer(Config{
		Services: Services{
			Logs:     logitem.NewService(sqlite.NewLogRepository(db), activities, logger),
			Projects: project.NewService(sqlite.NewProjectRepository(db), activities, logger),
			Habits:   habits,
			Activity: activity.NewService(activities, logger),
		},
		Logger: logger,
		Clock:  testutil.FixedClock(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })

	return &harness{session: cs, habits: habits}
}

func (h *harness) call(t *testing.T, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := h.session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s failed", name)
	return result
}

func (h *harness) callJSON(t *testing.T, name string, args map[string]any, out any) {
	t.Helper()
	result := h.call(t, name, args)
	require.False(t, result.IsError, "tool %s returned error: %s", name, resultText(result))
	require.NoError(t, json.Unmarshal([]byte(resultText(result)), out))
}

func resultText(result *sdkmcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := content.(*sdkmcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

func TestServerListsToolsAndDocs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tools, err := h.session.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{
		"get_log", "save_log", "list_logs", "project_history", "project_tree",
		"add_milestone", "update_relation", "delete_item",
		"list_habits", "toggle_habit", "mark_all_habits_done", "recent_activity",
	}, names)

	resources, err := h.session.ListResources(ctx, nil)
	require.NoError(t, err)
	require.Len(t, resources.Resources, len(docResources))

	read, err := h.session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "dailylog://docs/lineage"})
	require.NoError(t, err)
	require.Contains(t, read.Contents[0].Text, "Project lineage")
}

func TestGetLogDefaultsToToday(t *testing.T) {
	h := newHarness(t)

	var day LogOutput
	h.callJSON(t, "get_log", nil, &day)
	require.Equal(t, "2024-05-01", day.Date)
	require.Empty(t, day.Items)
}

func TestSaveAndReadLog(t *testing.T) {
	h := newHarness(t)

	var saved LogOutput
	h.callJSON(t, "save_log", map[string]any{
		"date": "2024-05-01",
		"items": []map[string]any{
			{"item_id": "a", "title": "Write report", "tags": []string{"work"}},
			{"item_id": "b", "title": "  ", "content": "dropped"},
		},
	}, &saved)
	require.Len(t, saved.Items, 1)

	var day LogOutput
	h.callJSON(t, "get_log", map[string]any{"date": "2024-05-01"}, &day)
	require.Len(t, day.Items, 1)
	require.Equal(t, "Write report", day.Items[0].Title)
	require.Equal(t, []string{"work"}, day.Items[0].Tags)

	var list ListLogsOutput
	h.callJSON(t, "list_logs", map[string]any{"limit": 5}, &list)
	require.Len(t, list.Days, 1)
}

func TestInvalidDateIsToolError(t *testing.T) {
	h := newHarness(t)

	result := h.call(t, "get_log", map[string]any{"date": "05/01/2024"})
	require.True(t, result.IsError)
	require.Contains(t, resultText(result), "INVALID_DATE")
}

func TestProjectTreeAndMilestones(t *testing.T) {
	h := newHarness(t)

	var saved LogOutput
	h.callJSON(t, "save_log", map[string]any{
		"date":  "2024-04-01",
		"items": []map[string]any{{"item_id": "o", "title": "Alpha"}},
	}, &saved)
	h.callJSON(t, "save_log", map[string]any{
		"date": "2024-04-02",
		"items": []map[string]any{{
			"item_id": "c", "title": "Alpha",
			"origin_id": "o", "parent_id": "o", "relation_type": "inherit",
		}},
	}, &saved)

	var milestone AddMilestoneOutput
	h.callJSON(t, "add_milestone", map[string]any{"origin_id": "o", "date": "2024-04-03"}, &milestone)
	require.NotEmpty(t, milestone.ID)

	var ok OKOutput
	h.callJSON(t, "update_relation", map[string]any{
		"item_id": "c", "target_parent_id": milestone.ID, "relation_type": "inherit",
	}, &ok)
	require.True(t, ok.OK)

	var tree ProjectTreeOutput
	h.callJSON(t, "project_tree", map[string]any{"origin_id": "o"}, &tree)
	require.Equal(t, "Alpha", tree.Title)
	require.Len(t, tree.Milestones, 2)
	require.True(t, tree.Milestones[0].IsRoot)
	require.Equal(t, 1, tree.Milestones[1].Rank)
	require.Equal(t, "Evolution Node", tree.Milestones[1].Title)
	require.Len(t, tree.Milestones[1].Children, 1)

	result := h.call(t, "delete_item", map[string]any{"item_id": milestone.ID})
	require.True(t, result.IsError)
	require.Contains(t, resultText(result), "HAS_CHILDREN")

	h.callJSON(t, "update_relation", map[string]any{"item_id": "c", "relation_type": "inherit"}, &ok)
	h.callJSON(t, "delete_item", map[string]any{"item_id": milestone.ID}, &ok)

	var history ProjectHistoryOutput
	h.callJSON(t, "project_history", map[string]any{"title": "Alpha"}, &history)
	require.Equal(t, 2, history.TotalDays)

	var recent RecentActivityOutput
	h.callJSON(t, "recent_activity", map[string]any{"limit": 3}, &recent)
	require.Len(t, recent.Entries, 3)
	require.Equal(t, string(activity.TypeItemDeleted), recent.Entries[0].Type)
}

func TestHabitTools(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	read, err := h.habits.Create(ctx, habit.CreateRequest{Title: "Read"})
	require.NoError(t, err)
	_, err = h.habits.Create(ctx, habit.CreateRequest{Title: "Run"})
	require.NoError(t, err)

	var list ListHabitsOutput
	h.callJSON(t, "list_habits", nil, &list)
	require.Len(t, list.Habits, 2)
	require.Nil(t, list.Habits[0].Status)

	var ok OKOutput
	h.callJSON(t, "toggle_habit", map[string]any{"id": read.ID, "status": 0}, &ok)
	h.callJSON(t, "list_habits", nil, &list)
	require.NotNil(t, list.Habits[0].Status)
	require.Equal(t, 0, *list.Habits[0].Status)

	result := h.call(t, "toggle_habit", map[string]any{"id": read.ID, "status": 2})
	require.True(t, result.IsError)
	require.Contains(t, resultText(result), "INVALID_STATUS")

	var marked MarkAllHabitsDoneOutput
	h.callJSON(t, "mark_all_habits_done", nil, &marked)
	require.Equal(t, 2, marked.Updated)
}

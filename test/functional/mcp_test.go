package functional_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/tags"
	"github.com/rpggio/dailylog/internal/testserver"
)

// connect opens an MCP session against the /mcp mount of a test server.
func connect(t *testing.T, ts *testserver.TestServer) *sdkmcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{Endpoint: ts.URL() + "/mcp"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

// callTool invokes a tool and returns its JSON text payload.
func callTool(t *testing.T, cs *sdkmcp.ClientSession, name string, args map[string]any) json.RawMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s failed", name)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "tool %s returned no text", name)
	require.False(t, result.IsError, "Tool error: %s", text.Text)
	return json.RawMessage(text.Text)
}

func TestFunctional_HealthAndInitialize(t *testing.T) {
	ts := testserver.New(t)

	resp, err := http.Get(ts.URL() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cs := connect(t, ts)
	init := cs.InitializeResult()
	require.NotNil(t, init)
	require.Equal(t, "dailylog", init.ServerInfo.Name)
}

func TestFunctional_RESTWritesVisibleOverMCP(t *testing.T) {
	ts := testserver.New(t)
	cs := connect(t, ts)

	c := ts.Client()
	require.NoError(t, c.SaveLog(context.Background(), "2024-05-01", []logitem.Item{
		{ID: "a", Title: "Write report", Tags: tags.List{"work"}},
	}))

	var day struct {
		Date  string `json:"date"`
		Items []struct {
			ID    string   `json:"item_id"`
			Title string   `json:"title"`
			Tags  []string `json:"tags"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(callTool(t, cs, "get_log", map[string]any{"date": "2024-05-01"}), &day))
	require.Equal(t, "2024-05-01", day.Date)
	require.Len(t, day.Items, 1)
	require.Equal(t, "a", day.Items[0].ID)
	require.Equal(t, []string{"work"}, day.Items[0].Tags)
}

func TestFunctional_MCPWritesVisibleOverREST(t *testing.T) {
	ts := testserver.New(t)
	cs := connect(t, ts)

	callTool(t, cs, "save_log", map[string]any{
		"date":  "2024-04-01",
		"items": []map[string]any{{"item_id": "o", "title": "Alpha"}},
	})
	var ms struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(callTool(t, cs, "add_milestone", map[string]any{
		"origin_id": "o", "title": "Beta", "date": "2024-04-03",
	}), &ms))
	require.NotEmpty(t, ms.ID)

	items, err := ts.Client().ProjectTree(context.Background(), "o")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "o", items[0].ID)
	require.Equal(t, ms.ID, items[1].ID)
	require.Equal(t, logitem.RelationEvolve, items[1].RelationType)
}

func TestFunctional_HabitTools(t *testing.T) {
	ts := testserver.New(t)
	cs := connect(t, ts)
	h, err := ts.Habits.Create(context.Background(), habit.CreateRequest{Title: "Read"})
	require.NoError(t, err)

	callTool(t, cs, "toggle_habit", map[string]any{"id": h.ID, "date": "2024-05-01", "status": 1})

	list, err := ts.Client().Habits(context.Background(), "2024-05-01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, habit.StatusDone, list[0].Status)
}

func TestFunctional_DocumentationResources(t *testing.T) {
	ts := testserver.New(t)
	cs := connect(t, ts)
	ctx := context.Background()

	res, err := cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "dailylog://docs/lineage"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Contents)
	require.Contains(t, res.Contents[0].Text, "# Project lineage")
}

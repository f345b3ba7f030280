package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rpggio/dailylog/internal/api"
	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/tags"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	body   string
}

func newServer(t *testing.T, status int, reply string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.body = string(data)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/"), rec
}

func TestSaveLogPayloadShape(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"status":"success"}`)

	err := c.SaveLog(context.Background(), "2024-05-01", []logitem.Item{
		{ID: "a", Title: "Write report", Tags: tags.List{"work"}, Content: "", IsDone: false, Date: "2024-05-01"},
	})
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, rec.method)
	require.Equal(t, "/save-log", rec.path)
	require.JSONEq(t, `{"date":"2024-05-01","items":[{"item_id":"a","title":"Write report","tags":"work","content":"","isDone":false}]}`, rec.body)
}

func TestGetLogDecodesItems(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"status":"success","date":"2024-05-01","items":[
		{"item_id":"a","title":"T","content":"c","tags":"x y","isDone":true,"origin_id":null,"parent_id":"p","relation_type":"inherit"}]}`)

	day, err := c.GetLog(context.Background(), "2024-05-01")
	require.NoError(t, err)
	require.Equal(t, "/get-log/2024-05-01", rec.path)
	require.Len(t, day.Items, 1)
	item := day.Items[0]
	require.Equal(t, tags.List{"x", "y"}, item.Tags)
	require.True(t, item.IsDone)
	require.Nil(t, item.OriginID)
	require.Equal(t, "p", *item.ParentID)
	require.Equal(t, logitem.RelationInherit, item.RelationType)
}

func TestGetLogEmptyItems(t *testing.T) {
	c, _ := newServer(t, http.StatusOK, `{"status":"success","date":"2024-05-01","items":[]}`)
	day, err := c.GetLog(context.Background(), "2024-05-01")
	require.NoError(t, err)
	require.NotNil(t, day.Items)
	require.Empty(t, day.Items)
}

func TestNonSuccessStatusIsBackendError(t *testing.T) {
	c, _ := newServer(t, http.StatusOK, `{"status":"error","message":"db locked"}`)
	err := c.SaveLog(context.Background(), "2024-05-01", nil)
	require.True(t, IsBackend(err))
	require.False(t, IsNetwork(err))
	require.Contains(t, err.Error(), "db locked")
}

func TestMissingStatusIsBackendError(t *testing.T) {
	c, _ := newServer(t, http.StatusOK, `{"items":[]}`)
	_, err := c.GetLog(context.Background(), "2024-05-01")
	require.True(t, IsBackend(err))
}

func TestMalformedBodyIsBackendError(t *testing.T) {
	c, _ := newServer(t, http.StatusOK, `<html>`)
	_, err := c.Habits(context.Background(), "2024-05-01")
	require.True(t, IsBackend(err))
}

func TestHTTPErrorStatus(t *testing.T) {
	c, _ := newServer(t, http.StatusNotFound, `{"status":"error","message":"project item not found"}`)
	err := c.UpdateRelation(context.Background(), api.UpdateRelationRequest{ItemID: "x", RelationType: logitem.RelationInherit})
	require.True(t, IsBackend(err))
	require.True(t, IsNotFound(err))
}

func TestUnreachableIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url)
	_, err := c.GetLog(context.Background(), "2024-05-01")
	require.True(t, IsNetwork(err))
	require.False(t, IsBackend(err))
}

func TestHabitCalls(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"status":"success","habits":[{"id":3,"title":"Read","color":"#3B82F6","group_id":2,"status":null}]}`)

	list, err := c.Habits(context.Background(), "2024-05-01")
	require.NoError(t, err)
	require.Equal(t, "date=2024-05-01", rec.query)
	require.Equal(t, habit.StatusUnset, list[0].Status)
	require.Equal(t, int64(2), list[0].GroupID)

	require.NoError(t, c.ToggleHabit(context.Background(), "2024-05-01", 3, habit.StatusDone))
	require.JSONEq(t, `{"date":"2024-05-01","habit_id":3,"status":1}`, rec.body)

	zero := int64(0)
	require.NoError(t, c.UpdateHabit(context.Background(), api.UpdateHabitRequest{HabitID: 3, GroupID: &zero}))
	require.JSONEq(t, `{"habit_id":3,"group_id":0}`, rec.body)

	require.NoError(t, c.MarkAllDone(context.Background(), "2024-05-01"))
	require.Equal(t, "/mark-all-done", rec.path)
	require.Equal(t, "date=2024-05-01", rec.query)
}

func TestProjectCalls(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"status":"success","item_id":"m9"}`)

	id, err := c.AddMilestone(context.Background(), api.AddMilestoneRequest{OriginID: "o1", Title: "Evolution Node", Date: "2024-05-03"})
	require.NoError(t, err)
	require.Equal(t, "m9", id)
	require.JSONEq(t, `{"origin_id":"o1","title":"Evolution Node","date":"2024-05-03"}`, rec.body)

	parent := "m9"
	require.NoError(t, c.UpdateRelation(context.Background(), api.UpdateRelationRequest{ItemID: "c1", TargetParentID: &parent, RelationType: logitem.RelationInherit}))
	require.Equal(t, http.MethodPatch, rec.method)
	require.JSONEq(t, `{"item_id":"c1","target_parent_id":"m9","relation_type":"inherit"}`, rec.body)

	require.NoError(t, c.DeleteItem(context.Background(), "m9"))
	require.Equal(t, http.MethodDelete, rec.method)
	require.Equal(t, "/project/item/m9", rec.path)
}

func TestAddMilestoneRequiresID(t *testing.T) {
	c, _ := newServer(t, http.StatusOK, `{"status":"success"}`)
	_, err := c.AddMilestone(context.Background(), api.AddMilestoneRequest{OriginID: "o1"})
	require.True(t, IsBackend(err))
}

func TestWithTimeoutLeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	c := New("http://localhost:1", WithHTTPClient(shared), WithTimeout(2*time.Second))

	require.Equal(t, time.Minute, shared.Timeout)
	require.Equal(t, 2*time.Second, c.http.Timeout)
	require.NotSame(t, shared, c.http)
}

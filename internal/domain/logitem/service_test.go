package logitem_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpggio/dailylog/internal/domain/activity"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/repository/mocks"
	"github.com/rpggio/dailylog/internal/tags"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLogService_GetDayUnknownDateIsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LogRepository{}
	repo.On("GetDay", ctx, "2024-05-01").Return(nil, nil)

	svc := logitem.NewService(repo, nil, nil)
	day, err := svc.GetDay(ctx, "2024-05-01")
	require.NoError(t, err)
	require.Equal(t, "2024-05-01", day.Date)
	require.NotNil(t, day.Items)
	require.Empty(t, day.Items)
}

func TestLogService_GetDayRejectsBadDate(t *testing.T) {
	svc := logitem.NewService(&mocks.LogRepository{}, nil, nil)
	_, err := svc.GetDay(context.Background(), "2024-13-01")
	require.ErrorIs(t, err, logitem.ErrInvalidDate)
}

func TestLogService_SaveDayAssignsIDsAndDropsBlankTitles(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LogRepository{}
	acts := &mocks.ActivityRepository{}
	repo.On("SaveDay", ctx, "2024-05-01", mock.MatchedBy(func(items []logitem.Item) bool {
		return len(items) == 2 &&
			items[0].ID == "a" && items[0].Title == "Write report" && items[0].Content == "draft" &&
			items[1].ID != "" && items[1].Date == "2024-05-01"
	})).Return(nil)
	acts.On("Log", ctx, mock.MatchedBy(func(e *activity.Entry) bool { return e.Type == activity.TypeLogSaved })).Return(nil)

	svc := logitem.NewService(repo, acts, nil)
	saved, err := svc.SaveDay(ctx, logitem.DayLog{Date: "2024-05-01", Items: []logitem.Item{
		{ID: "a", Title: " Write report ", Content: " draft "},
		{ID: "b", Title: "   "},
		{Title: "New"},
	}})
	require.NoError(t, err)
	require.Len(t, saved.Items, 2)
	repo.AssertExpectations(t)
}

func TestLogService_SaveDayRejectsDuplicatesAndBadRelations(t *testing.T) {
	svc := logitem.NewService(&mocks.LogRepository{}, nil, nil)
	_, err := svc.SaveDay(context.Background(), logitem.DayLog{Date: "2024-05-01", Items: []logitem.Item{
		{ID: "a", Title: "x"}, {ID: "a", Title: "y"},
	}})
	require.ErrorIs(t, err, logitem.ErrInvalidInput)

	_, err = svc.SaveDay(context.Background(), logitem.DayLog{Date: "2024-05-01", Items: []logitem.Item{
		{ID: "a", Title: "x", RelationType: "sibling"},
	}})
	require.ErrorIs(t, err, logitem.ErrInvalidInput)
}

func TestLogService_History(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.LogRepository{}
	repo.On("History", ctx, "Write report", "work").Return([]logitem.HistoryEntry{
		{Date: "2024-05-01", Content: "a"},
		{Date: "2024-05-01", Content: "b"},
		{Date: "2024-05-03", Content: "c"},
	}, nil)

	svc := logitem.NewService(repo, nil, nil)
	h, err := svc.History(ctx, "Write report", " work ")
	require.NoError(t, err)
	require.Equal(t, 2, h.TotalDays)
	require.Len(t, h.Entries, 3)

	_, err = svc.History(ctx, "", "")
	require.ErrorIs(t, err, logitem.ErrInvalidInput)
}

func TestWriteMonth(t *testing.T) {
	var buf bytes.Buffer
	err := logitem.WriteMonth(&buf, []logitem.DayLog{{
		Date: "2024-05-02",
		Items: []logitem.Item{
			{Title: "Ship", IsDone: true, Tags: tags.List{"work", "q2"}, Content: "done early"},
			{Title: "Plan"},
		},
	}})
	require.NoError(t, err)
	rule := "=================================================="
	require.Equal(t, rule+"\nDATE: 2024-05-02\n"+rule+"\n"+
		"1. [v] Ship (#work q2)\n   Note: done early\n"+
		"2. [ ] Plan\n\n", buf.String())
}

func TestLogService_SaveDayExportsMonth(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := &mocks.LogRepository{}
	repo.On("SaveDay", ctx, "2024-05-02", mock.Anything).Return(nil)
	repo.On("ListMonth", ctx, "2024-05").Return([]logitem.DayLog{{Date: "2024-05-02", Items: []logitem.Item{{Title: "Ship"}}}}, nil)

	svc := logitem.NewService(repo, nil, nil).WithExportDir(dir)
	_, err := svc.SaveDay(ctx, logitem.DayLog{Date: "2024-05-02", Items: []logitem.Item{{ID: "x", Title: "Ship"}}})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "202405.txt"))
	require.NoError(t, err)
	require.Contains(t, string(data), "1. [ ] Ship")
}

func TestItemLineage(t *testing.T) {
	origin := "o1"
	require.Equal(t, "o1", logitem.Item{ID: "c", OriginID: &origin}.Lineage())
	require.Equal(t, "c", logitem.Item{ID: "c"}.Lineage())
}

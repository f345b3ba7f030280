package projectmap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/dailylog/internal/domain/logitem"
)

func ptr(s string) *string { return &s }

func root(id, date string) logitem.Item {
	return logitem.Item{ID: id, Title: "Project " + id, Date: date, RelationType: logitem.RelationRoot}
}

func evolve(id, origin, date string) logitem.Item {
	return logitem.Item{ID: id, Title: MilestoneTitle, Date: date, OriginID: ptr(origin), ParentID: ptr(origin), RelationType: logitem.RelationEvolve}
}

func task(id, origin, parent, date string) logitem.Item {
	it := logitem.Item{ID: id, Title: "Task " + id, Date: date, OriginID: ptr(origin), RelationType: logitem.RelationInherit}
	if parent != "" {
		it.ParentID = ptr(parent)
	}
	return it
}

func ids(items []logitem.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestBuildOrdersMilestonesByDate(t *testing.T) {
	items := []logitem.Item{
		root("o", "2024-01-01"),
		evolve("m2", "o", "2024-03-01"),
		evolve("m1", "o", "2024-02-01"),
		evolve("m3", "o", "2024-04-01"),
	}
	m := Build(items, "o")

	require.Len(t, m.Milestones, 4)
	var got []string
	var ranks []int
	for _, ms := range m.Milestones {
		got = append(got, ms.ID())
		ranks = append(ranks, ms.Rank)
	}
	require.Equal(t, []string{"o", "m1", "m2", "m3"}, got)
	require.Equal(t, []int{0, 1, 2, 3}, ranks)
	require.NotNil(t, m.Root)
	require.True(t, m.Root.IsRoot)
	require.Equal(t, "o", m.Root.ID())
	require.Equal(t, GhostID, m.Ghost.ID)
	require.Equal(t, "Project o", m.Title())
	require.Equal(t, "2024-01-01", m.OriginDate())
}

func TestBuildAttachesOrphansToRoot(t *testing.T) {
	items := []logitem.Item{
		root("o", "2024-01-01"),
		evolve("m1", "o", "2024-02-01"),
		task("a", "o", "m1", "2024-02-03"),
		task("b", "o", "gone", "2024-01-05"),
		task("c", "o", "", "2024-01-02"),
	}
	m := Build(items, "o")

	require.Equal(t, []string{"c", "b"}, ids(m.Root.Children))
	ms, ok := m.Milestone("m1")
	require.True(t, ok)
	require.Equal(t, []string{"a"}, ids(ms.Children))

	total := 0
	for _, ms := range m.Milestones {
		total += len(ms.Children)
	}
	require.Equal(t, 3, total, "no task dropped")
}

func TestBuildMilestonesAreNotChildren(t *testing.T) {
	m := Build([]logitem.Item{root("o", "2024-01-01"), evolve("m1", "o", "2024-02-01")}, "o")
	require.Empty(t, m.Root.Children)
}

func TestBuildHeaderDate(t *testing.T) {
	items := []logitem.Item{
		root("o", "2024-01-01"),
		evolve("m1", "o", "2024-03-01"),
		task("late", "o", "m1", "2024-03-05"),
		task("early", "o", "m1", "2024-02-10"),
		task("r1", "o", "o", "2024-01-04"),
	}
	m := Build(items, "o")

	ms, _ := m.Milestone("m1")
	require.Equal(t, []string{"early", "late"}, ids(ms.Children))
	require.Equal(t, "2024-02-10", ms.HeaderDate)
	require.True(t, ms.DatePrecedes)

	require.Equal(t, "2024-01-01", m.Root.HeaderDate)
	require.False(t, m.Root.DatePrecedes)
}

func TestBuildOriginWithoutRootRelation(t *testing.T) {
	origin := logitem.Item{ID: "o", Title: "Plain task", Date: "2024-01-01"}
	m := Build([]logitem.Item{origin, task("a", "o", "o", "2024-01-02")}, "o")

	require.Len(t, m.Milestones, 1)
	require.Equal(t, "o", m.Root.ID())
	require.False(t, m.Root.Synthetic)
	require.Equal(t, []string{"a"}, ids(m.Root.Children))
}

func TestBuildSynthesizesMissingRoot(t *testing.T) {
	items := []logitem.Item{
		evolve("m1", "o", "2024-02-01"),
		task("a", "o", "nowhere", "2024-01-10"),
	}
	m := Build(items, "o")

	require.Len(t, m.Milestones, 2)
	require.True(t, m.Root.Synthetic)
	require.Equal(t, "o", m.Root.ID())
	require.Equal(t, "o", m.Milestones[0].ID(), "undated root sorts first")
	require.Equal(t, []string{"a"}, ids(m.Root.Children))
	require.Equal(t, "2024-01-10", m.Root.HeaderDate)
	require.False(t, m.Root.DatePrecedes)
}

func TestBuildCountsDistinctDays(t *testing.T) {
	items := []logitem.Item{
		root("o", "2024-01-01"),
		task("a", "o", "o", "2024-01-01"),
		task("b", "o", "o", "2024-01-02"),
	}
	require.Equal(t, 2, Build(items, "o").TotalDays)
}

func TestWithMoveLeavesOriginalUntouched(t *testing.T) {
	items := []logitem.Item{
		root("o", "2024-01-01"),
		evolve("m1", "o", "2024-03-01"),
		task("a", "o", "o", "2024-02-01"),
	}
	m := Build(items, "o")
	next := m.withMove("a", "m1")

	require.Equal(t, []string{"a"}, ids(m.Root.Children))
	require.Empty(t, next.Root.Children)
	ms, _ := next.Milestone("m1")
	require.Equal(t, []string{"a"}, ids(ms.Children))
	require.Equal(t, "m1", *ms.Children[0].ParentID)
	require.Equal(t, logitem.RelationInherit, ms.Children[0].RelationType)
	require.True(t, ms.DatePrecedes)
}

package projectmap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/dailylog/internal/api"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/testutil"
)

// fakeBackend keeps a lineage in memory and enforces the same delete
// guard as the server.
type fakeBackend struct {
	mu        sync.Mutex
	items     []logitem.Item
	nextID    int
	treeCalls int
	added     []api.AddMilestoneRequest
	relations []api.UpdateRelationRequest
	deleted   []string
	treeErr   error
	addErr    error
	relErr    map[string]error
	deleteErr error
}

func (f *fakeBackend) ProjectTree(_ context.Context, originID string) ([]logitem.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.treeCalls++
	if f.treeErr != nil {
		return nil, f.treeErr
	}
	var out []logitem.Item
	for _, it := range f.items {
		if it.ID == originID || (it.OriginID != nil && *it.OriginID == originID) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeBackend) AddMilestone(_ context.Context, req api.AddMilestoneRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return "", f.addErr
	}
	f.added = append(f.added, req)
	f.nextID++
	id := fmt.Sprintf("new-%d", f.nextID)
	f.items = append(f.items, logitem.Item{
		ID: id, Title: req.Title, Date: req.Date,
		OriginID: ptr(req.OriginID), ParentID: ptr(req.OriginID), RelationType: logitem.RelationEvolve,
	})
	return id, nil
}

func (f *fakeBackend) UpdateRelation(_ context.Context, req api.UpdateRelationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.relErr[req.ItemID]; err != nil {
		return err
	}
	f.relations = append(f.relations, req)
	for i := range f.items {
		if f.items[i].ID == req.ItemID {
			f.items[i].ParentID = req.TargetParentID
			f.items[i].RelationType = req.RelationType
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeBackend) DeleteItem(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for _, it := range f.items {
		if it.ParentID != nil && *it.ParentID == id {
			return errors.New("item still has children")
		}
	}
	f.deleted = append(f.deleted, id)
	for i, it := range f.items {
		if it.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	return nil
}

func newFixture(t *testing.T) (*Reconciler, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{
		relErr: map[string]error{},
		items: []logitem.Item{
			root("o", "2024-01-01"),
			evolve("m1", "o", "2024-02-01"),
			task("a", "o", "o", "2024-01-02"),
			task("b", "o", "m1", "2024-02-02"),
			task("c", "o", "m1", "2024-02-03"),
		},
	}
	r := NewReconciler(fb, testutil.FixedClock(), nil)
	_, err := r.Open(context.Background(), "o")
	require.NoError(t, err)
	return r, fb
}

func TestOpenRejectsMissingOrigin(t *testing.T) {
	r := NewReconciler(&fakeBackend{}, nil, nil)
	_, err := r.Open(context.Background(), "")
	require.ErrorIs(t, err, ErrNoOrigin)
	_, err = r.Open(context.Background(), "null")
	require.ErrorIs(t, err, ErrNoOrigin)
}

func TestOpenLoadError(t *testing.T) {
	fb := &fakeBackend{treeErr: errors.New("connection refused")}
	r := NewReconciler(fb, nil, nil)

	_, err := r.Open(context.Background(), "o")
	var lerr *LoadError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, "o", lerr.OriginID)

	_, ok := r.Current()
	require.False(t, ok)
	require.Error(t, r.LoadErr())
	require.Equal(t, 1, fb.treeCalls, "no retry")
}

func TestDropUnchangedIsNoop(t *testing.T) {
	r, fb := newFixture(t)
	_, err := r.Drop(context.Background(), Move{ItemID: "b", FromID: "m1", FromIndex: 0, ToID: "m1", ToIndex: 0})
	require.NoError(t, err)
	require.Empty(t, fb.relations)
	require.Equal(t, 1, fb.treeCalls)
}

func TestDropOnMilestoneReparents(t *testing.T) {
	r, fb := newFixture(t)

	m, err := r.Drop(context.Background(), Move{ItemID: "a", FromID: "o", ToID: "m1", ToIndex: 2})
	require.NoError(t, err)
	require.Len(t, fb.relations, 1)
	require.Equal(t, "a", fb.relations[0].ItemID)
	require.Equal(t, "m1", *fb.relations[0].TargetParentID)
	require.Equal(t, logitem.RelationInherit, fb.relations[0].RelationType)

	ms, _ := m.Milestone("m1")
	require.Equal(t, []string{"a", "b", "c"}, ids(ms.Children), "re-sorted by date")
	require.Equal(t, "2024-01-02", ms.HeaderDate)
	require.True(t, ms.DatePrecedes)
	require.Empty(t, m.Root.Children)

	cur, ok := r.Current()
	require.True(t, ok)
	require.Equal(t, m.Milestones, cur.Milestones)
}

func TestDropUnknownTarget(t *testing.T) {
	r, fb := newFixture(t)
	_, err := r.Drop(context.Background(), Move{ItemID: "a", FromID: "o", ToID: "zzz"})
	require.ErrorIs(t, err, ErrUnknownMilestone)
	_, err = r.Drop(context.Background(), Move{ItemID: "zzz", FromID: "o", ToID: "m1"})
	require.ErrorIs(t, err, ErrUnknownItem)
	require.Empty(t, fb.relations)
}

func TestDropOnGhostCreatesOneMilestone(t *testing.T) {
	r, fb := newFixture(t)

	m, err := r.Drop(context.Background(), Move{ItemID: "a", FromID: "o", ToID: GhostID})
	require.NoError(t, err)
	require.Len(t, fb.added, 1)
	require.Equal(t, api.AddMilestoneRequest{OriginID: "o", Title: MilestoneTitle, Date: "2024-05-01"}, fb.added[0])

	ms, ok := m.Milestone("new-1")
	require.True(t, ok)
	require.Equal(t, []string{"a"}, ids(ms.Children))
	require.Equal(t, 2, ms.Rank)
	require.Len(t, m.Milestones, 3)

	_, err = r.Drop(context.Background(), Move{ItemID: "b", FromID: "m1", ToID: "new-1"})
	require.NoError(t, err)
	require.Len(t, fb.added, 1, "plain drop does not create a milestone")
}

func TestDropOnGhostCreateFailure(t *testing.T) {
	r, fb := newFixture(t)
	fb.addErr = errors.New("boom")

	m, err := r.Drop(context.Background(), Move{ItemID: "a", FromID: "o", ToID: GhostID})
	var werr *WriteError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, "create milestone", werr.Op)
	require.Empty(t, fb.relations, "no reparent after failed creation")
	require.Equal(t, 2, fb.treeCalls, "re-fetched")
	require.Equal(t, []string{"a"}, ids(m.Root.Children))
}

func TestDropFailureResyncs(t *testing.T) {
	r, fb := newFixture(t)
	fb.relErr["a"] = errors.New("boom")

	m, err := r.Drop(context.Background(), Move{ItemID: "a", FromID: "o", ToID: "m1"})
	var werr *WriteError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, 2, fb.treeCalls)
	require.Equal(t, []string{"a"}, ids(m.Root.Children), "view reflects server truth")
}

func TestDeleteMilestoneRequiresConfirmation(t *testing.T) {
	r, fb := newFixture(t)
	_, err := r.DeleteMilestone(context.Background(), "m1", false)
	require.ErrorIs(t, err, ErrNotConfirmed)
	_, err = r.DeleteMilestone(context.Background(), "o", true)
	require.ErrorIs(t, err, ErrRootMilestone)
	require.Empty(t, fb.relations)
	require.Empty(t, fb.deleted)
}

func TestDeleteMilestoneMergesThenDeletes(t *testing.T) {
	r, fb := newFixture(t)

	m, err := r.DeleteMilestone(context.Background(), "m1", true)
	require.NoError(t, err)
	require.Len(t, fb.relations, 2)
	for _, rel := range fb.relations {
		require.Equal(t, "o", *rel.TargetParentID)
		require.Equal(t, logitem.RelationInherit, rel.RelationType)
	}
	require.Equal(t, []string{"m1"}, fb.deleted)

	_, ok := m.Milestone("m1")
	require.False(t, ok)
	require.Equal(t, []string{"a", "b", "c"}, ids(m.Root.Children))
	for _, it := range fb.items {
		if it.ParentID != nil {
			require.NotEqual(t, "m1", *it.ParentID)
		}
	}
}

func TestDeleteMilestoneAbortsWhenMergeFails(t *testing.T) {
	r, fb := newFixture(t)
	fb.relErr["c"] = errors.New("boom")

	m, err := r.DeleteMilestone(context.Background(), "m1", true)
	var werr *WriteError
	require.ErrorAs(t, err, &werr)
	require.Empty(t, fb.deleted)
	_, ok := m.Milestone("m1")
	require.True(t, ok)
}

func TestOperationsNeedOpenMap(t *testing.T) {
	r := NewReconciler(&fakeBackend{}, nil, nil)
	_, err := r.Drop(context.Background(), Move{ItemID: "a", ToID: "b"})
	require.ErrorIs(t, err, ErrNotOpen)

	r2, _ := newFixture(t)
	r2.Close()
	_, err = r2.DeleteMilestone(context.Background(), "m1", true)
	require.ErrorIs(t, err, ErrNotOpen)
	require.Empty(t, r2.OriginID())
}

func TestDeletedRootBlocksStructuralWrites(t *testing.T) {
	fb := &fakeBackend{
		relErr: map[string]error{},
		items: []logitem.Item{
			evolve("m1", "o", "2024-02-01"),
			task("a", "o", "o", "2024-01-02"),
			task("b", "o", "m1", "2024-02-02"),
		},
	}
	r := NewReconciler(fb, testutil.FixedClock(), nil)
	m, err := r.Open(context.Background(), "o")
	require.NoError(t, err)
	require.True(t, m.Root.Synthetic)
	ctx := context.Background()

	_, err = r.Drop(ctx, Move{ItemID: "a", FromID: "o", ToID: GhostID})
	require.ErrorIs(t, err, ErrRootMissing)
	_, err = r.Drop(ctx, Move{ItemID: "b", FromID: "m1", ToID: "o"})
	require.ErrorIs(t, err, ErrRootMissing)
	_, err = r.DeleteMilestone(ctx, "m1", true)
	require.ErrorIs(t, err, ErrRootMissing)

	require.Empty(t, fb.added)
	require.Empty(t, fb.relations)
	require.Empty(t, fb.deleted)

	next, err := r.Drop(ctx, Move{ItemID: "a", FromID: "o", ToID: "m1"})
	require.NoError(t, err)
	ms, _ := next.Milestone("m1")
	require.Len(t, ms.Children, 2)
}

package projectmap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rpggio/dailylog/internal/api"
	"github.com/rpggio/dailylog/internal/clock"
	"github.com/rpggio/dailylog/internal/domain/logitem"
)

// API is the slice of the backend the reconciler needs.
type API interface {
	ProjectTree(ctx context.Context, originID string) ([]logitem.Item, error)
	AddMilestone(ctx context.Context, req api.AddMilestoneRequest) (string, error)
	UpdateRelation(ctx context.Context, req api.UpdateRelationRequest) error
	DeleteItem(ctx context.Context, id string) error
}

// Move describes a drag from one milestone's task list to another.
type Move struct {
	ItemID    string
	FromID    string
	FromIndex int
	ToID      string
	ToIndex   int
}

// Unchanged reports whether the task was dropped back where it started.
func (m Move) Unchanged() bool {
	return m.FromID == m.ToID && m.FromIndex == m.ToIndex
}

// Reconciler owns the open map and applies drag and delete operations.
type Reconciler struct {
	api    API
	clock  clock.Clock
	logger *slog.Logger

	// opMu serializes operations; mu guards the fields below.
	opMu    sync.Mutex
	mu      sync.Mutex
	origin  string
	current *Map
	loadErr error
}

// NewReconciler creates a reconciler with no map open.
func NewReconciler(a API, c clock.Clock, logger *slog.Logger) *Reconciler {
	if c == nil {
		c = clock.Real{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reconciler{api: a, clock: c, logger: logger}
}

// Open fetches and builds the map for originID.
func (r *Reconciler) Open(ctx context.Context, originID string) (Map, error) {
	if originID == "" || originID == "null" {
		return Map{}, ErrNoOrigin
	}
	r.opMu.Lock()
	defer r.opMu.Unlock()

	r.mu.Lock()
	r.origin = originID
	r.current = nil
	r.loadErr = nil
	r.mu.Unlock()

	return r.load(ctx, originID)
}

// Close forgets the open map.
func (r *Reconciler) Close() {
	r.opMu.Lock()
	defer r.opMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.origin = ""
	r.current = nil
	r.loadErr = nil
}

// Current returns the last built map. ok is false while nothing is
// loaded; LoadErr then says why.
func (r *Reconciler) Current() (Map, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Map{}, false
	}
	return *r.current, true
}

// LoadErr returns the error of the last failed fetch.
func (r *Reconciler) LoadErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadErr
}

// OriginID returns the open project's origin, or "" when closed.
func (r *Reconciler) OriginID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.origin
}

// Drop applies a drag. Dropping on the ghost target creates a milestone
// first; any failed write re-fetches the map and returns a *WriteError.
func (r *Reconciler) Drop(ctx context.Context, mv Move) (Map, error) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	cur, origin, err := r.snapshot()
	if err != nil {
		return Map{}, err
	}
	if mv.Unchanged() {
		return cur, nil
	}
	if _, _, ok := cur.Locate(mv.ItemID); !ok {
		return cur, ErrUnknownItem
	}

	if mv.ToID == GhostID {
		if cur.Root != nil && cur.Root.Synthetic {
			return cur, ErrRootMissing
		}
		return r.evolve(ctx, origin, mv.ItemID)
	}
	target, ok := cur.Milestone(mv.ToID)
	if !ok {
		return cur, ErrUnknownMilestone
	}
	if target.Synthetic {
		return cur, ErrRootMissing
	}

	if err := r.reparent(ctx, mv.ItemID, mv.ToID); err != nil {
		return r.resync(ctx, origin, &WriteError{Op: "move task", Err: err})
	}
	next := cur.withMove(mv.ItemID, mv.ToID)
	r.store(&next)
	r.logger.Debug("task moved", "item_id", mv.ItemID, "to", mv.ToID)
	return next, nil
}

func (r *Reconciler) evolve(ctx context.Context, origin, itemID string) (Map, error) {
	id, err := r.api.AddMilestone(ctx, api.AddMilestoneRequest{
		OriginID: origin,
		Title:    MilestoneTitle,
		Date:     clock.Today(r.clock),
	})
	if err == nil && id == "" {
		err = ErrMilestoneNotSaved
	}
	if err != nil {
		return r.resync(ctx, origin, &WriteError{Op: "create milestone", Err: err})
	}
	if err := r.reparent(ctx, itemID, id); err != nil {
		return r.resync(ctx, origin, &WriteError{Op: "move task", Err: err})
	}
	r.logger.Info("milestone created", "origin_id", origin, "milestone_id", id, "item_id", itemID)
	return r.load(ctx, origin)
}

// DeleteMilestone merges the milestone's tasks back into the root, then
// deletes it. The delete is issued only after every reparent succeeded.
func (r *Reconciler) DeleteMilestone(ctx context.Context, id string, confirmed bool) (Map, error) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	cur, origin, err := r.snapshot()
	if err != nil {
		return Map{}, err
	}
	ms, ok := cur.Milestone(id)
	if !ok {
		return cur, ErrUnknownMilestone
	}
	if ms.IsRoot {
		return cur, ErrRootMilestone
	}
	if cur.Root != nil && cur.Root.Synthetic && len(ms.Children) > 0 {
		return cur, ErrRootMissing
	}
	if !confirmed {
		return cur, ErrNotConfirmed
	}

	rootID := cur.Root.ID()
	g, gctx := errgroup.WithContext(ctx)
	for _, child := range ms.Children {
		childID := child.ID
		g.Go(func() error {
			return r.reparent(gctx, childID, rootID)
		})
	}
	if err := g.Wait(); err != nil {
		return r.resync(ctx, origin, &WriteError{Op: "merge milestone tasks", Err: err})
	}
	if err := r.api.DeleteItem(ctx, id); err != nil {
		return r.resync(ctx, origin, &WriteError{Op: "delete milestone", Err: err})
	}
	r.logger.Info("milestone deleted", "origin_id", origin, "milestone_id", id, "merged", len(ms.Children))
	return r.load(ctx, origin)
}

func (r *Reconciler) reparent(ctx context.Context, itemID, parentID string) error {
	parent := parentID
	return r.api.UpdateRelation(ctx, api.UpdateRelationRequest{
		ItemID:         itemID,
		TargetParentID: &parent,
		RelationType:   logitem.RelationInherit,
	})
}

func (r *Reconciler) snapshot() (Map, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Map{}, r.origin, ErrNotOpen
	}
	return *r.current, r.origin, nil
}

func (r *Reconciler) store(m *Map) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = m
	r.loadErr = nil
}

func (r *Reconciler) load(ctx context.Context, origin string) (Map, error) {
	items, err := r.api.ProjectTree(ctx, origin)
	if err != nil {
		lerr := &LoadError{OriginID: origin, Err: err}
		r.mu.Lock()
		r.loadErr = lerr
		r.mu.Unlock()
		r.logger.Warn("project map load failed", "origin_id", origin, "error", err)
		return Map{}, lerr
	}
	m := Build(items, origin)
	r.store(&m)
	return m, nil
}

// resync re-fetches after a failed write. If the fetch also fails the
// previous map stays current.
func (r *Reconciler) resync(ctx context.Context, origin string, werr *WriteError) (Map, error) {
	r.logger.Warn("project map write failed", "origin_id", origin, "op", werr.Op, "error", werr.Err)
	m, err := r.load(ctx, origin)
	if err != nil {
		cur, _, _ := r.snapshot()
		return cur, fmt.Errorf("%w (resync failed: %v)", werr, err)
	}
	return m, werr
}

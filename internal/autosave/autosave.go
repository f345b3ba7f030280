// Package autosave debounces edits to a day log into save-log requests.
package autosave

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rpggio/dailylog/internal/clock"
	"github.com/rpggio/dailylog/internal/domain/logitem"
)

// Status is the user-visible save state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusEditing Status = "editing"
	StatusSaving  Status = "saving"
	StatusSaved   Status = "saved"
	StatusError   Status = "error"
)

const (
	DefaultDelay       = 1200 * time.Millisecond
	DefaultSavedWindow = 2 * time.Second
	defaultTimeout     = 10 * time.Second
)

// Saver persists a day's items.
type Saver interface {
	SaveLog(ctx context.Context, date string, items []logitem.Item) error
}

// Source supplies the current date and cards at flush time. An error
// means there is nothing safe to save and no request is sent.
type Source interface {
	Snapshot() (date string, items []logitem.Item, err error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (string, []logitem.Item, error)

func (f SourceFunc) Snapshot() (string, []logitem.Item, error) { return f() }

// Options configures a Controller. Zero values take defaults.
type Options struct {
	Delay       time.Duration
	SavedWindow time.Duration
	Timeout     time.Duration
	Clock       clock.Clock
	OnStatus    func(Status)
	// OnError receives failures of timer-driven flushes before the
	// error status is published.
	OnError func(error)
	Logger  *slog.Logger
}

// Controller owns the dirty flag, the debounce timer and the status.
type Controller struct {
	saver  Saver
	source Source
	opts   Options

	// flushMu serializes flushes so only one save is in flight.
	flushMu sync.Mutex

	mu         sync.Mutex
	status     Status
	dirty      bool
	edits      uint64
	timer      clock.Timer
	savedTimer clock.Timer
	lastErr    error
	stopped    bool
}

// New creates a controller in the idle state.
func New(saver Saver, source Source, opts Options) *Controller {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.SavedWindow <= 0 {
		opts.SavedWindow = DefaultSavedWindow
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{saver: saver, source: source, opts: opts, status: StatusIdle}
}

// Status returns the current save state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Dirty reports whether there are edits not yet acknowledged by the backend.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// LastError returns the error of the most recent failed flush.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// MarkDirty records an edit and restarts the debounce timer.
func (c *Controller) MarkDirty() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.dirty = true
	c.edits++
	if c.savedTimer != nil {
		c.savedTimer.Stop()
		c.savedTimer = nil
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.opts.Clock.AfterFunc(c.opts.Delay, c.onTimer)
	changed := c.setStatusLocked(StatusEditing)
	c.mu.Unlock()
	c.notify(changed, StatusEditing)
}

// Reset clears the dirty flag and timers after a fresh load.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.dirty = false
	c.lastErr = nil
	c.stopTimersLocked()
	changed := c.setStatusLocked(StatusIdle)
	c.mu.Unlock()
	c.notify(changed, StatusIdle)
}

// FlushIfDirty flushes only when edits are pending.
func (c *Controller) FlushIfDirty(ctx context.Context) error {
	if !c.Dirty() {
		return nil
	}
	return c.Flush(ctx)
}

// Flush sends the current snapshot to the backend. The dirty flag is
// cleared only if no edit arrived while the save was in flight.
func (c *Controller) Flush(ctx context.Context) error {
	return c.flush(ctx, nil)
}

func (c *Controller) flush(ctx context.Context, onErr func(error)) error {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	c.mu.Lock()
	seq := c.edits
	c.mu.Unlock()

	date, items, err := c.source.Snapshot()
	if err != nil {
		c.opts.Logger.Debug("autosave skipped", "error", err)
		return err
	}

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.savedTimer != nil {
		c.savedTimer.Stop()
		c.savedTimer = nil
	}
	changed := c.setStatusLocked(StatusSaving)
	c.mu.Unlock()
	c.notify(changed, StatusSaving)

	payload := Payload(items)
	err = c.saver.SaveLog(ctx, date, payload)

	c.mu.Lock()
	if err != nil {
		c.lastErr = err
		changed = c.setStatusLocked(StatusError)
		c.mu.Unlock()
		c.opts.Logger.Warn("autosave failed", "date", date, "error", err)
		if onErr != nil {
			onErr(err)
		}
		c.notify(changed, StatusError)
		return err
	}

	c.lastErr = nil
	next := StatusSaved
	if c.edits == seq {
		c.dirty = false
		if !c.stopped {
			c.savedTimer = c.opts.Clock.AfterFunc(c.opts.SavedWindow, c.fadeSaved)
		}
	} else {
		next = StatusEditing
	}
	changed = c.setStatusLocked(next)
	c.mu.Unlock()
	c.opts.Logger.Debug("autosave flushed", "date", date, "items", len(payload))
	c.notify(changed, next)
	return nil
}

// Stop cancels pending timers. Later edits are ignored; Flush still works.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.stopTimersLocked()
}

func (c *Controller) onTimer() {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.Timeout)
	defer cancel()
	_ = c.flush(ctx, c.opts.OnError)
}

func (c *Controller) fadeSaved() {
	c.mu.Lock()
	changed := false
	if c.status == StatusSaved && !c.dirty {
		changed = c.setStatusLocked(StatusIdle)
	}
	c.savedTimer = nil
	c.mu.Unlock()
	c.notify(changed, StatusIdle)
}

func (c *Controller) stopTimersLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.savedTimer != nil {
		c.savedTimer.Stop()
		c.savedTimer = nil
	}
}

func (c *Controller) setStatusLocked(s Status) bool {
	if c.status == s {
		return false
	}
	c.status = s
	return true
}

func (c *Controller) notify(changed bool, s Status) {
	if changed && c.opts.OnStatus != nil {
		c.opts.OnStatus(s)
	}
}

// Payload trims titles and notes and drops cards whose title is blank.
// Lineage fields travel only when set.
func Payload(items []logitem.Item) []logitem.Item {
	out := make([]logitem.Item, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		out = append(out, logitem.Item{
			ID:           item.ID,
			Title:        title,
			Content:      strings.TrimSpace(item.Content),
			Tags:         item.Tags.Clone(),
			IsDone:       item.IsDone,
			OriginID:     item.OriginID,
			ParentID:     item.ParentID,
			RelationType: item.RelationType,
		})
	}
	return out
}

// Package session ties one day's cards, the auto-save controller, the
// habit bar and the project map into one object driven by typed intents.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rpggio/dailylog/internal/autosave"
	"github.com/rpggio/dailylog/internal/clock"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/habitbar"
	"github.com/rpggio/dailylog/internal/projectmap"
)

// API is every backend call the session makes.
type API interface {
	GetLog(ctx context.Context, date string) (*logitem.DayLog, error)
	SaveLog(ctx context.Context, date string, items []logitem.Item) error
	AllLogs(ctx context.Context) ([]logitem.DayLog, error)
	ProjectHistory(ctx context.Context, title, tagFilter string) (*logitem.History, error)
	projectmap.API
	habitbar.API
}

// Options configures a session. Zero values take defaults.
type Options struct {
	Clock       clock.Clock
	IDs         clock.IDGenerator
	Logger      *slog.Logger
	SaveDelay   time.Duration
	SavedWindow time.Duration
	Timeout     time.Duration
	// OnStatus is called on every save status change, outside any lock.
	OnStatus func(autosave.Status)
}

// Session is the client state for one user at one terminal.
type Session struct {
	api    API
	clock  clock.Clock
	ids    clock.IDGenerator
	logger *slog.Logger

	saver    *autosave.Controller
	habits   *habitbar.Bar
	projects *projectmap.Reconciler

	mu         sync.Mutex
	date       string
	cards      []logitem.Item
	loaded     bool
	loadErr    error
	loading    bool
	gen        uint64
	closed     bool
	mapChanged bool
	saveAlert  *Alert
	settings   *habitbar.Settings
}

// New creates a session. Call Start before dispatching intents.
func New(a API, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.IDs == nil {
		opts.IDs = clock.UUIDGenerator{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Session{
		api:      a,
		clock:    opts.Clock,
		ids:      opts.IDs,
		logger:   opts.Logger,
		habits:   habitbar.NewBar(a, opts.Logger),
		projects: projectmap.NewReconciler(a, opts.Clock, opts.Logger),
	}
	s.saver = autosave.New(a, autosave.SourceFunc(s.snapshot), autosave.Options{
		Delay:       opts.SaveDelay,
		SavedWindow: opts.SavedWindow,
		Timeout:     opts.Timeout,
		Clock:       opts.Clock,
		OnStatus:    opts.OnStatus,
		OnError:     s.autosaveFailed,
		Logger:      opts.Logger,
	})
	return s
}

// Start loads date, or today when date is empty.
func (s *Session) Start(ctx context.Context, date string) error {
	if date == "" {
		date = clock.Today(s.clock)
	}
	gen, err := s.beginLoad(date)
	if err != nil {
		return err
	}
	return s.load(ctx, date, gen)
}

// ChangeDate flushes pending edits and then loads date. If the flush
// fails the session stays on the current date and an Alert is returned.
func (s *Session) ChangeDate(ctx context.Context, date string) error {
	gen, err := s.beginLoad(date)
	if err != nil {
		return err
	}
	if err := s.saver.FlushIfDirty(ctx); err != nil {
		s.endLoad(gen)
		return alert("save before leaving the day", err)
	}
	return s.load(ctx, date, gen)
}

// Close flushes pending edits and stops the save timers.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.gen++
	s.mu.Unlock()

	err := s.saver.FlushIfDirty(ctx)
	s.saver.Stop()
	s.projects.Close()
	if err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	return nil
}

func (s *Session) beginLoad(date string) (uint64, error) {
	if !logitem.ValidDate(date) {
		return 0, ErrInvalidDate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	if s.loading {
		return 0, ErrBusy
	}
	s.loading = true
	s.gen++
	return s.gen, nil
}

func (s *Session) endLoad(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.loading = false
	}
}

// load fetches the day and its habits together. A result whose
// generation was superseded is discarded.
func (s *Session) load(ctx context.Context, date string, gen uint64) error {
	var day *logitem.DayLog
	var dayErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		day, dayErr = s.api.GetLog(gctx, date)
		return nil
	})
	g.Go(func() error {
		// Habit failures show inline on the bar.
		_, _ = s.habits.Load(gctx, date)
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded load", "date", date)
		return nil
	}
	s.loading = false
	s.date = date
	if dayErr != nil {
		s.cards = nil
		s.loaded = false
		s.loadErr = dayErr
		s.mu.Unlock()
		s.saver.Reset()
		s.logger.Warn("day load failed", "date", date, "error", dayErr)
		return fmt.Errorf("load %s: %w", date, dayErr)
	}
	s.cards = day.Items
	if len(s.cards) == 0 {
		s.cards = []logitem.Item{s.blankCard()}
	}
	s.loaded = true
	s.loadErr = nil
	s.mu.Unlock()
	s.saver.Reset()
	s.logger.Debug("day loaded", "date", date, "items", len(day.Items))
	return nil
}

func (s *Session) blankCard() logitem.Item {
	return logitem.Item{ID: s.ids.New()}
}

// snapshot feeds the auto-save controller. A day that failed to load
// has no cards to save; sending an empty list would erase it.
func (s *Session) snapshot() (string, []logitem.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return "", nil, ErrNotLoaded
	}
	return s.date, cloneCards(s.cards), nil
}

func (s *Session) autosaveFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveAlert = &Alert{Title: "autosave", Err: err}
}

// TakeSaveAlert returns and clears the alert raised by the last failed
// background save.
func (s *Session) TakeSaveAlert() *Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.saveAlert
	s.saveAlert = nil
	return a
}

// Date is the active day.
func (s *Session) Date() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date
}

// Cards returns a copy of the active day's cards in display order.
func (s *Session) Cards() []logitem.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCards(s.cards)
}

// Card returns one card by id.
func (s *Session) Card(id string) (logitem.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return cloneCard(s.cards[i]), true
	}
	return logitem.Item{}, false
}

// Loading reports whether a day load is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LoadErr is the error of the last failed day load, shown inline.
func (s *Session) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// SaveStatus is the auto-save indicator state.
func (s *Session) SaveStatus() autosave.Status {
	return s.saver.Status()
}

// Dirty reports unsaved edits.
func (s *Session) Dirty() bool {
	return s.saver.Dirty()
}

// Flush saves now, regardless of the debounce timer.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if !loaded {
		return ErrNotLoaded
	}
	return alert("save", s.saver.Flush(ctx))
}

// Habits is the habit bar for the active day.
func (s *Session) Habits() *habitbar.Bar {
	return s.habits
}

// HabitSettings returns the open settings view.
func (s *Session) HabitSettings() (*habitbar.Settings, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, s.settings != nil
}

// Map returns the open project map.
func (s *Session) Map() (projectmap.Map, bool) {
	return s.projects.Current()
}

// MapErr is the error of the last failed map load, shown inline.
func (s *Session) MapErr() error {
	return s.projects.LoadErr()
}

func (s *Session) indexLocked(id string) int {
	for i := range s.cards {
		if s.cards[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneCard(c logitem.Item) logitem.Item {
	c.Tags = c.Tags.Clone()
	return c
}

func cloneCards(cards []logitem.Item) []logitem.Item {
	out := make([]logitem.Item, len(cards))
	for i, c := range cards {
		out[i] = cloneCard(c)
	}
	return out
}

package autosave

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/testutil"
	"github.com/stretchr/testify/require"
)

type call struct {
	date  string
	items []logitem.Item
}

type fakeSaver struct {
	mu     sync.Mutex
	calls  []call
	err    error
	during func()
}

func (s *fakeSaver) SaveLog(_ context.Context, date string, items []logitem.Item) error {
	s.mu.Lock()
	s.calls = append(s.calls, call{date: date, items: items})
	err := s.err
	during := s.during
	s.during = nil
	s.mu.Unlock()
	if during != nil {
		during()
	}
	return err
}

func (s *fakeSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeSaver) last() call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

type board struct {
	mu    sync.Mutex
	date  string
	items []logitem.Item
	err   error
}

func (b *board) Snapshot() (string, []logitem.Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return "", nil, b.err
	}
	out := make([]logitem.Item, len(b.items))
	copy(out, b.items)
	return b.date, out, nil
}

func (b *board) setTitle(i int, title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[i].Title = title
}

type statusLog struct {
	mu  sync.Mutex
	seq []Status
}

func (l *statusLog) record(s Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq = append(l.seq, s)
}

func (l *statusLog) all() []Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Status(nil), l.seq...)
}

func setup(t *testing.T) (*Controller, *fakeSaver, *board, *testutil.FakeClock, *statusLog) {
	t.Helper()
	clk := testutil.FixedClock()
	saver := &fakeSaver{}
	src := &board{date: "2024-05-01", items: []logitem.Item{{ID: "a", Title: "Write report"}}}
	log := &statusLog{}
	c := New(saver, src, Options{Clock: clk, OnStatus: log.record})
	return c, saver, src, clk, log
}

func TestDebounceCoalescesEdits(t *testing.T) {
	c, saver, src, clk, _ := setup(t)

	for i, title := range []string{"W", "Wr", "Write"} {
		src.setTitle(0, title)
		c.MarkDirty()
		if i < 2 {
			clk.Advance(time.Second)
		}
	}
	require.Zero(t, saver.count())

	clk.Advance(DefaultDelay)
	require.Equal(t, 1, saver.count())
	require.Equal(t, "Write", saver.last().items[0].Title)
	require.Equal(t, "2024-05-01", saver.last().date)
	require.False(t, c.Dirty())
}

func TestStatusLifecycle(t *testing.T) {
	c, _, _, clk, log := setup(t)
	require.Equal(t, StatusIdle, c.Status())

	c.MarkDirty()
	require.Equal(t, StatusEditing, c.Status())

	clk.Advance(DefaultDelay)
	require.Equal(t, StatusSaved, c.Status())

	clk.Advance(DefaultSavedWindow)
	require.Equal(t, StatusIdle, c.Status())
	require.Equal(t, []Status{StatusEditing, StatusSaving, StatusSaved, StatusIdle}, log.all())
}

func TestEditDuringSavedWindowKeepsEditing(t *testing.T) {
	c, _, _, clk, _ := setup(t)
	c.MarkDirty()
	clk.Advance(DefaultDelay)
	require.Equal(t, StatusSaved, c.Status())

	clk.Advance(time.Second)
	c.MarkDirty()
	clk.Advance(DefaultSavedWindow - time.Second)
	require.Equal(t, StatusEditing, c.Status())
}

func TestFailureKeepsDirtyAndRetries(t *testing.T) {
	c, saver, _, clk, _ := setup(t)
	saver.err = errors.New("connection refused")

	c.MarkDirty()
	clk.Advance(DefaultDelay)
	require.Equal(t, StatusError, c.Status())
	require.True(t, c.Dirty())
	require.EqualError(t, c.LastError(), "connection refused")

	saver.mu.Lock()
	saver.err = nil
	saver.mu.Unlock()
	c.MarkDirty()
	clk.Advance(DefaultDelay)
	require.Equal(t, 2, saver.count())
	require.Equal(t, StatusSaved, c.Status())
	require.False(t, c.Dirty())
	require.NoError(t, c.LastError())
}

func TestEditDuringFlightStaysDirty(t *testing.T) {
	c, saver, src, clk, _ := setup(t)
	saver.during = func() {
		src.setTitle(0, "Write report v2")
		c.MarkDirty()
	}

	c.MarkDirty()
	clk.Advance(DefaultDelay)
	require.Equal(t, 1, saver.count())
	require.True(t, c.Dirty())
	require.Equal(t, StatusEditing, c.Status())

	clk.Advance(DefaultDelay)
	require.Equal(t, 2, saver.count())
	require.Equal(t, "Write report v2", saver.last().items[0].Title)
	require.False(t, c.Dirty())
}

func TestFlushIfDirty(t *testing.T) {
	c, saver, _, clk, _ := setup(t)
	require.NoError(t, c.FlushIfDirty(context.Background()))
	require.Zero(t, saver.count())

	c.MarkDirty()
	require.NoError(t, c.FlushIfDirty(context.Background()))
	require.Equal(t, 1, saver.count())

	// The cancelled debounce timer does not save again.
	clk.Advance(DefaultDelay)
	require.Equal(t, 1, saver.count())
}

func TestPayloadDropsBlankTitles(t *testing.T) {
	c, saver, src, clk, _ := setup(t)
	src.items = []logitem.Item{
		{ID: "a", Title: "  Keep ", Content: " note "},
		{ID: "b", Title: "   "},
		{ID: "c", Title: ""},
	}
	c.MarkDirty()
	clk.Advance(DefaultDelay)

	items := saver.last().items
	require.Len(t, items, 1)
	require.Equal(t, "Keep", items[0].Title)
	require.Equal(t, "note", items[0].Content)
}

type slowSaver struct {
	inFlight atomic.Int32
	overlap  atomic.Bool
	calls    atomic.Int32
}

func (s *slowSaver) SaveLog(context.Context, string, []logitem.Item) error {
	if s.inFlight.Add(1) > 1 {
		s.overlap.Store(true)
	}
	time.Sleep(2 * time.Millisecond)
	s.inFlight.Add(-1)
	s.calls.Add(1)
	return nil
}

func TestConcurrentFlushesAreSerialized(t *testing.T) {
	saver := &slowSaver{}
	src := &board{date: "2024-05-01", items: []logitem.Item{{ID: "a", Title: "x"}}}
	c := New(saver, src, Options{Clock: testutil.FixedClock()})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Flush(context.Background())
		}()
	}
	wg.Wait()
	require.False(t, saver.overlap.Load())
	require.Equal(t, int32(5), saver.calls.Load())
}

func TestStopCancelsTimers(t *testing.T) {
	c, saver, _, clk, _ := setup(t)
	c.MarkDirty()
	c.Stop()
	clk.Advance(time.Minute)
	require.Zero(t, saver.count())
	require.Zero(t, clk.Pending())

	c.MarkDirty()
	require.Zero(t, clk.Pending())
	require.NoError(t, c.Flush(context.Background()))
	require.Equal(t, 1, saver.count())
}

func TestResetClearsDirty(t *testing.T) {
	c, saver, _, clk, _ := setup(t)
	c.MarkDirty()
	c.Reset()
	require.False(t, c.Dirty())
	require.Equal(t, StatusIdle, c.Status())
	clk.Advance(time.Minute)
	require.Zero(t, saver.count())
}

func TestTimerFailureReportsErrorBeforeStatus(t *testing.T) {
	clk := testutil.FixedClock()
	saver := &fakeSaver{err: errors.New("offline")}
	src := &board{date: "2024-05-01", items: []logitem.Item{{ID: "a", Title: "Write report"}}}

	var mu sync.Mutex
	var events []string
	c := New(saver, src, Options{
		Clock: clk,
		OnError: func(err error) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, "error: "+err.Error())
		},
		OnStatus: func(s Status) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, "status: "+string(s))
		},
	})

	c.MarkDirty()
	clk.Advance(DefaultDelay)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"status: editing", "status: saving", "error: offline", "status: error"}, events)
	require.True(t, c.Dirty())
}

func TestManualFlushDoesNotCallOnError(t *testing.T) {
	clk := testutil.FixedClock()
	saver := &fakeSaver{err: errors.New("offline")}
	src := &board{date: "2024-05-01", items: []logitem.Item{{ID: "a", Title: "Write report"}}}
	var reported atomic.Int32
	c := New(saver, src, Options{Clock: clk, OnError: func(error) { reported.Add(1) }})

	c.MarkDirty()
	require.Error(t, c.Flush(context.Background()))
	require.Zero(t, reported.Load())
}

func TestSourceErrorSendsNothing(t *testing.T) {
	c, saver, src, clk, log := setup(t)
	unavailable := errors.New("day not loaded")
	src.mu.Lock()
	src.err = unavailable
	src.mu.Unlock()

	require.ErrorIs(t, c.Flush(context.Background()), unavailable)
	c.MarkDirty()
	clk.Advance(DefaultDelay)

	require.Zero(t, saver.count())
	require.Equal(t, []Status{StatusEditing}, log.all())
}

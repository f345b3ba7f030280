// Package tui is the terminal front end. Key presses become session
// intents; rendering reads session state.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rpggio/dailylog/internal/autosave"
	"github.com/rpggio/dailylog/internal/clock"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/session"
	"github.com/rpggio/dailylog/internal/tags"
)

type viewMode int

const (
	modeDay viewMode = iota
	modeMap
	modeFeed
	modeHabits
)

type editField int

const (
	editNone editField = iota
	editTitle
	editContent
	editTag
	editFilter
	editHabitNew
	editHabitName
)

type modalKind int

const (
	modalAlert modalKind = iota
	modalConfirm
)

type modal struct {
	kind  modalKind
	title string
	body  string
	// onConfirm runs when a confirmation is accepted.
	onConfirm session.Intent
}

// carry is a map task picked up and not yet dropped.
type carry struct {
	itemID    string
	fromID    string
	fromIndex int
}

// Options configures the model.
type Options struct {
	// Date is the first day shown; today when empty.
	Date string
	// Status receives save status changes from the session.
	Status <-chan autosave.Status
	Clock  clock.Clock
}

type Model struct {
	ctx    context.Context
	sess   *session.Session
	clock  clock.Clock
	keys   KeyMap
	help   help.Model
	status <-chan autosave.Status

	mode     viewMode
	cursor   int
	editing  editField
	input    textinput.Model
	notes    textarea.Model
	modal    *modal
	tagEdit  *tags.Editor
	inline   string
	startAt  string
	quitting bool

	dashboard *session.Dashboard

	mapCursor int
	carrying  *carry

	feed       []logitem.DayLog
	feedCursor int
	feedFilter string

	habitCursor int
	habitEdit   int64
	// habitCarry is the id of a habit picked up in settings; 0 when none.
	habitCarry int64

	width  int
	height int
}

// New creates the model over a session that has not been started yet.
func New(ctx context.Context, sess *session.Session, opts Options) Model {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	input := textinput.New()
	input.CharLimit = 200
	notes := textarea.New()
	notes.SetHeight(5)

	return Model{
		ctx:     ctx,
		sess:    sess,
		clock:   opts.Clock,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		status:  opts.Status,
		input:   input,
		notes:   notes,
		startAt: opts.Date,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.start(), waitForStatus(m.status))
}

// Run starts the program on the alternate screen and blocks until the user
// quits. The session is flushed and closed on the way out.
func Run(ctx context.Context, sess *session.Session, opts Options) error {
	p := tea.NewProgram(New(ctx, sess, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if cerr := sess.Close(context.WithoutCancel(ctx)); err == nil {
		err = cerr
	}
	return err
}

func (m Model) today() string {
	return clock.Today(m.clock)
}

func (m Model) shiftDate(days int) string {
	d, err := time.ParseInLocation(logitem.DateLayout, m.sess.Date(), time.Local)
	if err != nil {
		return m.today()
	}
	return d.AddDate(0, 0, days).Format(logitem.DateLayout)
}

func (m Model) selectedCard() (logitem.Item, bool) {
	cards := m.sess.Cards()
	if m.cursor < 0 || m.cursor >= len(cards) {
		return logitem.Item{}, false
	}
	return cards[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.sess.Cards())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rpggio/dailylog/internal/autosave"
	"github.com/rpggio/dailylog/internal/domain/habit"
	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/habitbar"
	"github.com/rpggio/dailylog/internal/projectmap"
	"github.com/rpggio/dailylog/internal/session"
	"github.com/rpggio/dailylog/internal/tags"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.notes.SetWidth(min(max(msg.Width-4, 20), 100))
		return m, nil

	case statusMsg:
		if autosave.Status(msg) == autosave.StatusError {
			if a := m.sess.TakeSaveAlert(); a != nil {
				m.report(a)
			}
		}
		return m, waitForStatus(m.status)

	case loadedMsg:
		m.dashboard = nil
		m.report(msg.err)
		m.clampCursor()
		return m, nil

	case intentMsg:
		return m.afterIntent(msg)

	case feedMsg:
		if msg.err != nil {
			m.inline = fmt.Sprintf("could not load feed: %v", msg.err)
			return m, nil
		}
		m.inline = ""
		m.feed = msg.days
		m.feedCursor = min(m.feedCursor, max(len(feedEntries(m.feed))-1, 0))
		return m, nil

	case dashboardMsg:
		if msg.err != nil {
			m.inline = fmt.Sprintf("could not load history: %v", msg.err)
			return m, nil
		}
		m.dashboard = msg.d
		if msg.d == nil {
			m.inline = "no earlier days for this project"
		}
		return m, nil

	case savedMsg:
		m.report(msg.err)
		return m, nil

	case closedMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// report shows an Alert modally and any other error inline.
func (m *Model) report(err error) {
	if err == nil {
		m.inline = ""
		return
	}
	if a, ok := session.AsAlert(err); ok {
		m.modal = &modal{kind: modalAlert, title: a.Title, body: a.Err.Error()}
		return
	}
	m.inline = err.Error()
}

// apply runs a local card edit; these never touch the network.
func (m *Model) apply(in session.Intent) bool {
	err := m.sess.Dispatch(m.ctx, in)
	m.report(err)
	return err == nil
}

func (m Model) afterIntent(msg intentMsg) (tea.Model, tea.Cmd) {
	switch msg.intent.(type) {
	case session.OpenMap:
		var lerr *projectmap.LoadError
		if msg.err == nil || errors.As(msg.err, &lerr) {
			m.mode = modeMap
			m.mapCursor = 0
			m.carrying = nil
			m.inline = ""
			return m, nil
		}
	case session.CloseMap:
		m.mode = modeDay
		m.carrying = nil
		if errors.Is(msg.err, session.ErrMapClosed) {
			msg.err = nil
		}
		m.report(msg.err)
		m.clampCursor()
		return m, nil
	case session.CloseHabitSettings:
		m.mode = modeDay
		m.habitCarry = 0
		if errors.Is(msg.err, session.ErrSettingsClosed) {
			msg.err = nil
		}
		m.report(msg.err)
		return m, nil
	case session.AddHabit, session.RenameHabit, session.DeleteHabit, session.MoveHabit, session.DeleteChain:
		m.habitCarry = 0
		m.report(msg.err)
		if st, ok := m.sess.HabitSettings(); ok {
			m.habitCursor = max(min(m.habitCursor, len(settingsRows(st))-1), 0)
		}
		return m, nil
	case session.Reparent, session.DeleteMilestone:
		m.carrying = nil
		m.report(msg.err)
		if mp, ok := m.sess.Map(); ok {
			m.mapCursor = min(m.mapCursor, len(mapRows(mp))-1)
		}
		return m, nil
	}
	m.report(msg.err)
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		return m.handleModalKey(msg)
	}
	if m.editing != editNone {
		return m.handleEditKey(msg)
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.closeSession()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	switch m.mode {
	case modeMap:
		return m.handleMapKey(msg)
	case modeFeed:
		return m.handleFeedKey(msg)
	case modeHabits:
		return m.handleSettingsKey(msg)
	}
	return m.handleDayKey(msg)
}

func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	md := m.modal
	if md.kind == modalAlert {
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc || msg.Type == tea.KeySpace {
			m.modal = nil
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.modal = nil
		if _, local := md.onConfirm.(session.DeleteItem); local {
			m.apply(md.onConfirm)
			m.clampCursor()
			return m, nil
		}
		return m, m.dispatch(md.onConfirm)
	case key.Matches(msg, m.keys.Cancel):
		m.modal = nil
	}
	return m, nil
}

func (m Model) handleDayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	card, hasCard := m.selectedCard()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.dashboard = nil
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.sess.Cards())-1 {
			m.cursor++
			m.dashboard = nil
		}
	case key.Matches(msg, m.keys.MoveUp):
		if hasCard && m.cursor > 0 && m.apply(session.MoveItem{ID: card.ID, To: m.cursor - 1}) {
			m.cursor--
		}
	case key.Matches(msg, m.keys.MoveDown):
		if hasCard && m.cursor < len(m.sess.Cards())-1 && m.apply(session.MoveItem{ID: card.ID, To: m.cursor + 1}) {
			m.cursor++
		}
	case key.Matches(msg, m.keys.PrevDay):
		return m, m.changeDate(m.shiftDate(-1))
	case key.Matches(msg, m.keys.NextDay):
		return m, m.changeDate(m.shiftDate(1))
	case key.Matches(msg, m.keys.Today):
		return m, m.changeDate(m.today())
	case key.Matches(msg, m.keys.Add):
		if m.apply(session.AddItem{}) {
			m.cursor = len(m.sess.Cards()) - 1
			return m, m.beginEdit(editTitle, "")
		}
	case !hasCard:
		return m, m.dayCommand(msg)
	case key.Matches(msg, m.keys.EditTitle):
		return m, m.beginEdit(editTitle, card.Title)
	case key.Matches(msg, m.keys.EditContent):
		return m, m.beginEdit(editContent, card.Content)
	case key.Matches(msg, m.keys.AddTag):
		m.tagEdit = tags.NewEditor(card.Tags)
		m.editing = editTag
	case key.Matches(msg, m.keys.DropTag):
		m.apply(session.RemoveLastTag{ID: card.ID})
	case key.Matches(msg, m.keys.ToggleDone):
		m.apply(session.ToggleDone{ID: card.ID})
	case key.Matches(msg, m.keys.Delete):
		if card.RelationType == logitem.RelationEvolve {
			m.inline = session.ErrMilestoneCard.Error()
			return m, nil
		}
		m.modal = &modal{
			kind:      modalConfirm,
			title:     "Delete card",
			body:      fmt.Sprintf("Delete %q from %s?", displayTitle(card.Title), m.sess.Date()),
			onConfirm: session.DeleteItem{ID: card.ID, Confirmed: true},
		}
	case key.Matches(msg, m.keys.History):
		return m, m.loadDashboard(card.ID)
	case key.Matches(msg, m.keys.Map):
		if strings.TrimSpace(card.Title) == "" {
			m.inline = projectmap.ErrNoOrigin.Error()
			return m, nil
		}
		return m, m.dispatch(session.OpenMap{CardID: card.ID})
	default:
		return m, m.dayCommand(msg)
	}
	return m, nil
}

// dayCommand handles day keys that do not need a selected card.
func (m *Model) dayCommand(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Feed):
		m.mode = modeFeed
		m.dashboard = nil
		return m.loadFeed(m.feedFilter)
	case key.Matches(msg, m.keys.Habit):
		order := habitOrder(m.sess.Habits().Habits())
		i := int(msg.String()[0] - '1')
		if i < 0 || i >= len(order) {
			return nil
		}
		return m.dispatch(session.ToggleHabit{ID: order[i].ID})
	case key.Matches(msg, m.keys.AllHabits):
		return m.dispatch(session.MarkAllHabitsDone{})
	case key.Matches(msg, m.keys.Settings):
		if m.apply(session.OpenHabitSettings{}) {
			m.mode = modeHabits
			m.habitCursor = 0
			m.habitCarry = 0
			m.dashboard = nil
		}
		return nil
	case key.Matches(msg, m.keys.Save):
		return m.flush()
	}
	return nil
}

func (m *Model) beginEdit(field editField, value string) tea.Cmd {
	m.editing = field
	m.inline = ""
	switch field {
	case editContent:
		m.notes.SetValue(value)
		return m.notes.Focus()
	case editFilter:
		m.input.Placeholder = "filter by title, notes or tag"
	case editHabitNew, editHabitName:
		m.input.Placeholder = "habit name"
	default:
		m.input.Placeholder = "title"
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) endEdit() {
	m.editing = editNone
	m.tagEdit = nil
	m.input.Blur()
	m.notes.Blur()
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.editing {
	case editTag:
		return m.handleTagKey(msg)
	case editContent:
		if msg.Type == tea.KeyEsc {
			m.endEdit()
			return m, nil
		}
		before := m.notes.Value()
		var cmd tea.Cmd
		m.notes, cmd = m.notes.Update(msg)
		if card, ok := m.selectedCard(); ok && m.notes.Value() != before {
			m.apply(session.EditContent{ID: card.ID, Content: m.notes.Value()})
		}
		return m, cmd
	case editHabitNew, editHabitName:
		switch msg.Type {
		case tea.KeyEnter:
			var in session.Intent = session.AddHabit{Title: m.input.Value()}
			if m.editing == editHabitName {
				in = session.RenameHabit{ID: m.habitEdit, Title: m.input.Value()}
			}
			m.endEdit()
			return m, m.dispatch(in)
		case tea.KeyEsc:
			m.endEdit()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	case editFilter:
		switch msg.Type {
		case tea.KeyEnter:
			m.feedFilter = strings.TrimSpace(m.input.Value())
			m.feedCursor = 0
			m.endEdit()
			return m, m.loadFeed(m.feedFilter)
		case tea.KeyEsc:
			m.endEdit()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	// Title edits apply on every keystroke so the debounce sees them.
	if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
		m.endEdit()
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if card, ok := m.selectedCard(); ok && m.input.Value() != before {
		m.apply(session.EditTitle{ID: card.ID, Title: m.input.Value()})
	}
	return m, cmd
}

func (m Model) handleTagKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	card, ok := m.selectedCard()
	if !ok || m.tagEdit == nil {
		m.endEdit()
		return m, nil
	}
	switch msg.Type {
	case tea.KeyEnter:
		m.tagEdit.Press(tags.KeyEnter)
		m.syncTags(card)
		m.endEdit()
	case tea.KeyEsc:
		m.tagEdit.Blur()
		m.syncTags(card)
		m.endEdit()
	case tea.KeySpace:
		m.tagEdit.Press(tags.KeySpace)
		m.syncTags(card)
	case tea.KeyBackspace:
		m.tagEdit.Press(tags.KeyBackspace)
		m.syncTags(card)
	case tea.KeyRunes:
		m.tagEdit.Type(string(msg.Runes))
		m.syncTags(card)
	}
	return m, nil
}

// syncTags turns the capsule editor's committed tokens into tag intents.
func (m *Model) syncTags(card logitem.Item) {
	want := m.tagEdit.Tokens()
	for _, t := range card.Tags {
		if !want.Has(t) {
			m.apply(session.RemoveTag{ID: card.ID, Tag: t})
		}
	}
	for _, t := range want {
		if !card.Tags.Has(t) {
			m.apply(session.AddTag{ID: card.ID, Tag: t})
		}
	}
}

func (m Model) handleMapKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		if m.carrying != nil {
			m.carrying = nil
			return m, nil
		}
		return m, m.dispatch(session.CloseMap{})
	}
	mp, ok := m.sess.Map()
	if !ok {
		return m, nil
	}
	rows := mapRows(mp)
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.mapCursor > 0 {
			m.mapCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.mapCursor < len(rows)-1 {
			m.mapCursor++
		}
	case key.Matches(msg, m.keys.Pick):
		row := rows[m.mapCursor]
		if row.child < 0 || row.ms < 0 {
			return m, nil
		}
		ms := mp.Milestones[row.ms]
		m.carrying = &carry{itemID: ms.Children[row.child].ID, fromID: ms.ID(), fromIndex: row.child}
	case key.Matches(msg, m.keys.Enter):
		if m.carrying == nil {
			return m, nil
		}
		mv := projectmap.Move{ItemID: m.carrying.itemID, FromID: m.carrying.fromID, FromIndex: m.carrying.fromIndex}
		row := rows[m.mapCursor]
		switch {
		case row.ms < 0:
			mv.ToID = projectmap.GhostID
		case row.child < 0:
			mv.ToID = mp.Milestones[row.ms].ID()
			mv.ToIndex = len(mp.Milestones[row.ms].Children)
		default:
			mv.ToID = mp.Milestones[row.ms].ID()
			mv.ToIndex = row.child
		}
		return m, m.dispatch(session.Reparent{Move: mv})
	case key.Matches(msg, m.keys.Delete):
		row := rows[m.mapCursor]
		if row.ms < 0 || row.child >= 0 {
			return m, nil
		}
		ms := mp.Milestones[row.ms]
		if ms.IsRoot {
			m.inline = projectmap.ErrRootMilestone.Error()
			return m, nil
		}
		m.modal = &modal{
			kind:      modalConfirm,
			title:     "Remove milestone",
			body:      fmt.Sprintf("Remove %q? Its %d task(s) move to GENESIS.", displayTitle(ms.Item.Title), len(ms.Children)),
			onConfirm: session.DeleteMilestone{ID: ms.ID(), Confirmed: true},
		}
	}
	return m, nil
}

func (m Model) handleFeedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := feedEntries(m.feed)
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeDay
		m.inline = ""
	case key.Matches(msg, m.keys.Up):
		if m.feedCursor > 0 {
			m.feedCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.feedCursor < len(entries)-1 {
			m.feedCursor++
		}
	case key.Matches(msg, m.keys.Filter):
		return m, m.beginEdit(editFilter, m.feedFilter)
	case key.Matches(msg, m.keys.Enter):
		if m.feedCursor >= len(entries) {
			return m, nil
		}
		if m.apply(session.ContinueTask{Entry: entries[m.feedCursor].item}) {
			m.mode = modeDay
			m.cursor = len(m.sess.Cards()) - 1
		}
	}
	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		if m.habitCarry != 0 {
			m.habitCarry = 0
			return m, nil
		}
		return m, m.dispatch(session.CloseHabitSettings{})
	}
	st, ok := m.sess.HabitSettings()
	if !ok {
		return m, nil
	}
	rows := settingsRows(st)
	var row habitRow
	if m.habitCursor >= 0 && m.habitCursor < len(rows) {
		row = rows[m.habitCursor]
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.habitCursor > 0 {
			m.habitCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.habitCursor < len(rows)-1 {
			m.habitCursor++
		}
	case key.Matches(msg, m.keys.Add):
		return m, m.beginEdit(editHabitNew, "")
	case key.Matches(msg, m.keys.EditTitle):
		if row.habit == nil {
			return m, nil
		}
		m.habitEdit = row.habit.ID
		return m, m.beginEdit(editHabitName, row.habit.Title)
	case key.Matches(msg, m.keys.NewChain):
		m.apply(session.AddChain{})
	case key.Matches(msg, m.keys.Pick):
		if row.habit != nil {
			m.habitCarry = row.habit.ID
		}
	case key.Matches(msg, m.keys.Enter):
		if m.habitCarry == 0 || len(rows) == 0 {
			return m, nil
		}
		return m, m.dispatch(session.MoveHabit{ID: m.habitCarry, GroupID: row.groupID})
	case key.Matches(msg, m.keys.Delete):
		switch {
		case row.habit != nil:
			m.modal = &modal{
				kind:      modalConfirm,
				title:     "Delete habit",
				body:      fmt.Sprintf("Delete %q and all of its history?", row.habit.Title),
				onConfirm: session.DeleteHabit{ID: row.habit.ID, Confirmed: true},
			}
		case row.groupID != 0:
			return m, m.dispatch(session.DeleteChain{GroupID: row.groupID})
		}
	}
	return m, nil
}

// habitRow is one line of the settings view: a chain header, the
// ungrouped header (groupID 0), or a habit inside either.
type habitRow struct {
	groupID int64
	pending bool
	habit   *habit.Habit
}

func settingsRows(st *habitbar.Settings) []habitRow {
	var rows []habitRow
	for _, c := range st.Chains() {
		rows = append(rows, habitRow{groupID: c.ID, pending: c.Pending})
		for i := range c.Habits {
			rows = append(rows, habitRow{groupID: c.ID, habit: &c.Habits[i]})
		}
	}
	rows = append(rows, habitRow{})
	singles := st.Singles()
	for i := range singles {
		rows = append(rows, habitRow{habit: &singles[i]})
	}
	return rows
}

type mapRow struct {
	// ms is the milestone index; -1 for the ghost target.
	ms int
	// child is the task index within the milestone; -1 for the header.
	child int
}

func mapRows(mp projectmap.Map) []mapRow {
	var rows []mapRow
	for i, ms := range mp.Milestones {
		rows = append(rows, mapRow{ms: i, child: -1})
		for j := range ms.Children {
			rows = append(rows, mapRow{ms: i, child: j})
		}
	}
	return append(rows, mapRow{ms: -1, child: -1})
}

type feedEntry struct {
	date string
	item logitem.Item
}

func feedEntries(days []logitem.DayLog) []feedEntry {
	var out []feedEntry
	for _, d := range days {
		for _, it := range d.Items {
			out = append(out, feedEntry{date: d.Date, item: it})
		}
	}
	return out
}

// habitOrder is the on-screen order of the habit bar, which numbers habits 1-9.
func habitOrder(habits []habit.Habit) []habit.Habit {
	var out []habit.Habit
	for _, slot := range habitbar.Layout(habits) {
		out = append(out, slot.Habits...)
	}
	return out
}

func displayTitle(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return "untitled"
}

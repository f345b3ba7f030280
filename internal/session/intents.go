package session

import (
	"context"
	"errors"
	"strings"

	"github.com/rpggio/dailylog/internal/domain/logitem"
	"github.com/rpggio/dailylog/internal/habitbar"
	"github.com/rpggio/dailylog/internal/projectmap"
)

// Intent is a typed user action. Views produce intents; Dispatch applies them.
type Intent interface {
	intent()
}

// AddItem appends a new card.
type AddItem struct {
	Title string
}

// EditTitle replaces a card's title.
type EditTitle struct {
	ID    string
	Title string
}

// EditContent replaces a card's notes.
type EditContent struct {
	ID      string
	Content string
}

// AddTag adds a tag capsule. Duplicates are ignored.
type AddTag struct {
	ID  string
	Tag string
}

// RemoveLastTag drops the most recently added tag.
type RemoveLastTag struct {
	ID string
}

// RemoveTag drops one tag.
type RemoveTag struct {
	ID  string
	Tag string
}

// ToggleDone flips a card's done state. Done cards sink to the bottom,
// reopened cards rise to the top.
type ToggleDone struct {
	ID string
}

// DeleteItem removes a card after confirmation.
type DeleteItem struct {
	ID        string
	Confirmed bool
}

// MoveItem moves a card to index To.
type MoveItem struct {
	ID string
	To int
}

// ContinueTask starts a new card from a past entry, linked into its lineage.
type ContinueTask struct {
	Entry logitem.Item
}

// OpenMap opens the project map of a card's lineage.
type OpenMap struct {
	CardID string
}

// CloseMap dismisses the project map.
type CloseMap struct{}

// Reparent applies a drag on the project map.
type Reparent struct {
	Move projectmap.Move
}

// DeleteMilestone merges a milestone into the root and removes it.
type DeleteMilestone struct {
	ID        string
	Confirmed bool
}

// ToggleHabit advances a habit's status for the active day.
type ToggleHabit struct {
	ID int64
}

// MarkAllHabitsDone marks every habit done for the active day.
type MarkAllHabitsDone struct{}

// OpenHabitSettings opens the habit and chain settings view.
type OpenHabitSettings struct{}

// CloseHabitSettings dismisses the settings view, dissolving chains
// left with a single member.
type CloseHabitSettings struct{}

// AddHabit creates an ungrouped habit.
type AddHabit struct {
	Title string
	Color string
}

// RenameHabit changes a habit's title.
type RenameHabit struct {
	ID    int64
	Title string
}

// DeleteHabit removes a habit and its history after confirmation.
type DeleteHabit struct {
	ID        int64
	Confirmed bool
}

// MoveHabit puts a habit into a chain, or ungroups it when GroupID is 0.
type MoveHabit struct {
	ID      int64
	GroupID int64
}

// AddChain adds an empty chain container to the settings view.
type AddChain struct{}

// DeleteChain ungroups every member of a chain.
type DeleteChain struct {
	GroupID int64
}

func (AddItem) intent()            {}
func (EditTitle) intent()          {}
func (EditContent) intent()        {}
func (AddTag) intent()             {}
func (RemoveLastTag) intent()      {}
func (RemoveTag) intent()          {}
func (ToggleDone) intent()         {}
func (DeleteItem) intent()         {}
func (MoveItem) intent()           {}
func (ContinueTask) intent()       {}
func (OpenMap) intent()            {}
func (CloseMap) intent()           {}
func (Reparent) intent()           {}
func (DeleteMilestone) intent()    {}
func (ToggleHabit) intent()        {}
func (MarkAllHabitsDone) intent()  {}
func (OpenHabitSettings) intent()  {}
func (CloseHabitSettings) intent() {}
func (AddHabit) intent()           {}
func (RenameHabit) intent()        {}
func (DeleteHabit) intent()        {}
func (MoveHabit) intent()          {}
func (AddChain) intent()           {}
func (DeleteChain) intent()        {}

// Dispatch applies an intent. Card edits mark the day dirty; map and
// habit writes go to the backend at once and return an *Alert on failure.
func (s *Session) Dispatch(ctx context.Context, in Intent) error {
	switch in := in.(type) {
	case AddItem:
		return s.editCards(func() (bool, error) {
			card := s.blankCard()
			card.Title = in.Title
			s.cards = append(s.cards, card)
			return strings.TrimSpace(in.Title) != "", nil
		})
	case EditTitle:
		return s.editCard(in.ID, func(c *logitem.Item) bool {
			if c.Title == in.Title {
				return false
			}
			c.Title = in.Title
			return true
		})
	case EditContent:
		return s.editCard(in.ID, func(c *logitem.Item) bool {
			if c.Content == in.Content {
				return false
			}
			c.Content = in.Content
			return true
		})
	case AddTag:
		return s.editCard(in.ID, func(c *logitem.Item) bool {
			next := c.Tags.Clone().With(in.Tag)
			if len(next) == len(c.Tags) {
				return false
			}
			c.Tags = next
			return true
		})
	case RemoveLastTag:
		return s.editCard(in.ID, func(c *logitem.Item) bool {
			if len(c.Tags) == 0 {
				return false
			}
			c.Tags = c.Tags[:len(c.Tags)-1].Clone()
			return true
		})
	case RemoveTag:
		return s.editCard(in.ID, func(c *logitem.Item) bool {
			if !c.Tags.Has(in.Tag) {
				return false
			}
			c.Tags = c.Tags.Without(in.Tag)
			return true
		})
	case ToggleDone:
		return s.editCards(func() (bool, error) {
			i := s.indexLocked(in.ID)
			if i < 0 {
				return false, ErrUnknownCard
			}
			card := s.cards[i]
			card.IsDone = !card.IsDone
			rest := append(s.cards[:i:i], s.cards[i+1:]...)
			if card.IsDone {
				s.cards = append(rest, card)
			} else {
				s.cards = append([]logitem.Item{card}, rest...)
			}
			return true, nil
		})
	case DeleteItem:
		return s.editCards(func() (bool, error) {
			i := s.indexLocked(in.ID)
			if i < 0 {
				return false, ErrUnknownCard
			}
			if s.cards[i].RelationType == logitem.RelationEvolve {
				return false, ErrMilestoneCard
			}
			if !in.Confirmed {
				return false, ErrNotConfirmed
			}
			s.cards = append(s.cards[:i:i], s.cards[i+1:]...)
			return true, nil
		})
	case MoveItem:
		return s.editCards(func() (bool, error) {
			i := s.indexLocked(in.ID)
			if i < 0 {
				return false, ErrUnknownCard
			}
			to := min(max(in.To, 0), len(s.cards)-1)
			if to == i {
				return false, nil
			}
			card := s.cards[i]
			rest := append(s.cards[:i:i], s.cards[i+1:]...)
			s.cards = append(rest[:to:to], append([]logitem.Item{card}, rest[to:]...)...)
			return true, nil
		})
	case ContinueTask:
		return s.editCards(func() (bool, error) {
			s.cards = append(s.cards, s.continued(in.Entry))
			return true, nil
		})
	case OpenMap:
		return s.openMap(ctx, in.CardID)
	case CloseMap:
		return s.closeMap(ctx)
	case Reparent:
		_, err := s.projects.Drop(ctx, in.Move)
		return s.mapWrite("move task", err)
	case DeleteMilestone:
		_, err := s.projects.DeleteMilestone(ctx, in.ID, in.Confirmed)
		return s.mapWrite("remove milestone", err)
	case ToggleHabit:
		return habitWrite("toggle habit", s.habits.Toggle(ctx, in.ID))
	case MarkAllHabitsDone:
		return habitWrite("mark all habits done", s.habits.MarkAllDone(ctx))
	case OpenHabitSettings:
		return s.openSettings()
	case CloseHabitSettings:
		return s.closeSettings(ctx)
	case AddHabit:
		return s.settingsWrite("add habit", func(st *habitbar.Settings) error {
			return st.Add(ctx, in.Title, in.Color)
		})
	case RenameHabit:
		return s.settingsWrite("rename habit", func(st *habitbar.Settings) error {
			return st.Edit(ctx, in.ID, in.Title, "")
		})
	case DeleteHabit:
		return s.settingsWrite("delete habit", func(st *habitbar.Settings) error {
			return st.Delete(ctx, in.ID, in.Confirmed)
		})
	case MoveHabit:
		return s.settingsWrite("move habit", func(st *habitbar.Settings) error {
			return st.Move(ctx, in.ID, in.GroupID)
		})
	case AddChain:
		return s.settingsWrite("add chain", func(st *habitbar.Settings) error {
			st.AddChain()
			return nil
		})
	case DeleteChain:
		return s.settingsWrite("delete chain", func(st *habitbar.Settings) error {
			return st.DeleteChain(ctx, in.GroupID)
		})
	}
	return nil
}

func (s *Session) openSettings() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.settings == nil {
		s.settings = s.habits.Settings(s.clock)
	}
	return nil
}

func (s *Session) closeSettings(ctx context.Context) error {
	s.mu.Lock()
	st := s.settings
	s.settings = nil
	s.mu.Unlock()
	if st == nil {
		return ErrSettingsClosed
	}
	return habitWrite("dissolve chains", st.Close(ctx))
}

func (s *Session) settingsWrite(title string, fn func(*habitbar.Settings) error) error {
	st, ok := s.HabitSettings()
	if !ok {
		return ErrSettingsClosed
	}
	return habitWrite(title, fn(st))
}

// editCards runs fn on the card list under the lock, then marks the day
// dirty when fn reports a change.
func (s *Session) editCards(fn func() (bool, error)) error {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	changed, err := fn()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if changed {
		s.saver.MarkDirty()
	}
	return nil
}

func (s *Session) editCard(id string, fn func(*logitem.Item) bool) error {
	return s.editCards(func() (bool, error) {
		i := s.indexLocked(id)
		if i < 0 {
			return false, ErrUnknownCard
		}
		return fn(&s.cards[i]), nil
	})
}

func (s *Session) editableLocked() error {
	switch {
	case s.closed:
		return ErrClosed
	case s.loading:
		return ErrBusy
	case !s.loaded:
		return ErrNotLoaded
	}
	return nil
}

// continued builds a card that carries a past entry forward. The new card
// inherits from the entry's milestone, or from the entry itself when the
// entry is a milestone.
func (s *Session) continued(entry logitem.Item) logitem.Item {
	origin := entry.Lineage()
	parent := origin
	switch {
	case entry.RelationType == logitem.RelationEvolve:
		parent = entry.ID
	case entry.ParentID != nil && *entry.ParentID != "":
		parent = *entry.ParentID
	}
	return logitem.Item{
		ID:           s.ids.New(),
		Title:        strings.TrimSpace(entry.Title),
		Tags:         entry.Tags.Clone(),
		OriginID:     logitem.StringPtr(origin),
		ParentID:     logitem.StringPtr(parent),
		RelationType: logitem.RelationInherit,
	}
}

func (s *Session) openMap(ctx context.Context, cardID string) error {
	card, ok := s.Card(cardID)
	if !ok {
		return ErrUnknownCard
	}
	if strings.TrimSpace(card.Title) == "" {
		return projectmap.ErrNoOrigin
	}
	// The card must exist on the backend before its lineage is fetched.
	if err := s.saver.FlushIfDirty(ctx); err != nil {
		return alert("save before opening the map", err)
	}
	_, err := s.projects.Open(ctx, card.Lineage())
	return err
}

// closeMap dismisses the map and reloads the day when the map changed
// lineage data shown on its cards.
func (s *Session) closeMap(ctx context.Context) error {
	if s.projects.OriginID() == "" {
		return ErrMapClosed
	}
	s.projects.Close()

	s.mu.Lock()
	changed := s.mapChanged
	s.mapChanged = false
	date := s.date
	s.mu.Unlock()
	if !changed || s.saver.Dirty() {
		return nil
	}
	gen, err := s.beginLoad(date)
	if err != nil {
		return err
	}
	return s.load(ctx, date, gen)
}

func (s *Session) mapWrite(title string, err error) error {
	if errors.Is(err, projectmap.ErrNotOpen) {
		return ErrMapClosed
	}
	var werr *projectmap.WriteError
	isWrite := errors.As(err, &werr)
	if err == nil || isWrite {
		s.mu.Lock()
		s.mapChanged = true
		s.mu.Unlock()
	}
	if isWrite {
		return alert(title, err)
	}
	return err
}

func habitWrite(title string, err error) error {
	switch {
	case errors.Is(err, habitbar.ErrNotLoaded),
		errors.Is(err, habitbar.ErrUnknownHabit),
		errors.Is(err, habitbar.ErrEmptyTitle),
		errors.Is(err, habitbar.ErrNotConfirmed):
		return err
	}
	return alert(title, err)
}

package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	MoveUp      key.Binding
	MoveDown    key.Binding
	PrevDay     key.Binding
	NextDay     key.Binding
	Today       key.Binding
	Add         key.Binding
	EditTitle   key.Binding
	EditContent key.Binding
	AddTag      key.Binding
	DropTag     key.Binding
	ToggleDone  key.Binding
	Delete      key.Binding
	History     key.Binding
	Map         key.Binding
	Feed        key.Binding
	Filter      key.Binding
	Pick        key.Binding
	Enter       key.Binding
	Back        key.Binding
	Habit       key.Binding
	AllHabits   key.Binding
	Settings    key.Binding
	NewChain    key.Binding
	Save        key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.ToggleDone, k.Map, k.Feed, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.MoveUp, k.MoveDown, k.PrevDay, k.NextDay, k.Today},
		{k.Add, k.EditTitle, k.EditContent, k.AddTag, k.DropTag, k.ToggleDone, k.Delete},
		{k.History, k.Map, k.Feed, k.Filter, k.Pick, k.Enter, k.Back},
		{k.Habit, k.AllHabits, k.Settings, k.NewChain, k.Save, k.Help, k.Quit},
	}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move card up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move card down"),
		),
		PrevDay: key.NewBinding(
			key.WithKeys("[", "left"),
			key.WithHelp("[", "previous day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("]", "right"),
			key.WithHelp("]", "next day"),
		),
		Today: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "today"),
		),
		Add: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new card"),
		),
		EditTitle: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit title"),
		),
		EditContent: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "edit notes"),
		),
		AddTag: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "add tags"),
		),
		DropTag: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "remove last tag"),
		),
		ToggleDone: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "toggle done"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		History: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "project history"),
		),
		Map: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "project map"),
		),
		Feed: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "feed"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Pick: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pick up task"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "drop / continue"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Habit: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "toggle habit"),
		),
		AllHabits: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "all habits done"),
		),
		Settings: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "habit settings"),
		),
		NewChain: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "new chain"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save now"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	ViewMode key.Binding
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Today    key.Binding
	Earlier  key.Binding
	Later    key.Binding
	Edit     key.Binding
	New      key.Binding
	Delete   key.Binding
	MoveDeps key.Binding
	Workload key.Binding
	Calendar key.Binding
	Tab      key.Binding
	Export   key.Binding
	Help     key.Binding
	Enter    key.Binding
	Back     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	ViewMode: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7"),
		key.WithHelp("1-7", "view mode"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "scroll left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "scroll right"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Today: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "today"),
	),
	Earlier: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "extend before"),
	),
	Later: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "extend after"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	MoveDeps: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "move dependents"),
	),
	Workload: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "workload"),
	),
	Calendar: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "calendar"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	Export: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "export"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "details"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ViewMode, k.Edit, k.New, k.MoveDeps, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ViewMode, k.Left, k.Right, k.Today},
		{k.Earlier, k.Later, k.MoveDeps, k.Back},
		{k.Edit, k.New, k.Delete, k.Enter},
		{k.Workload, k.Calendar, k.Tab, k.Export},
		{k.Up, k.Down, k.Help, k.Quit},
	}
}

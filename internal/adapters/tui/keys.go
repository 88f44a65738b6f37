package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the poll dashboard.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	// Tab switching.
	TabAll   key.Binding
	TabMine  key.Binding
	TabVoted key.Binding

	Open    key.Binding // List: focus the options of the selected poll.
	Back    key.Binding
	Vote    key.Binding
	Results key.Binding // Toggle results mode on the open poll.

	Search  key.Binding
	Status  key.Binding // Cycle active, all, expired.
	Sort    key.Binding
	Refresh key.Binding

	NewPoll key.Binding
	Logout  key.Binding
	Dismiss key.Binding // Close the error banner.
	Help    key.Binding
	Quit    key.Binding

	// Authoring form.
	NextField    key.Binding
	PrevField    key.Binding
	AddOption    key.Binding
	RemoveOption key.Binding
	ToggleMulti  key.Binding
	Submit       key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	TabAll: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "all polls"),
	),
	TabMine: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "my polls"),
	),
	TabVoted: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "my votes"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Vote: key.NewBinding(
		key.WithKeys("v", " ", "enter"),
		key.WithHelp("v/space", "vote"),
	),
	Results: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "results"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Status: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "status"),
	),
	Sort: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "sort"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "refresh"),
	),
	NewPoll: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new poll"),
	),
	Logout: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "logout"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("esc", "enter"),
		key.WithHelp("esc", "dismiss"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("S-tab", "previous field"),
	),
	AddOption: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("C-n", "add option"),
	),
	RemoveOption: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("C-d", "remove option"),
	),
	ToggleMulti: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("C-t", "multiple votes"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "create"),
	),
}

// listKeys implements help.KeyMap for the feed list.
type listKeys KeyMap

func (k listKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Search, k.Status, k.Sort, k.NewPoll, k.Help, k.Quit}
}

func (k listKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Refresh},
		{k.TabAll, k.TabMine, k.TabVoted},
		{k.Search, k.Status, k.Sort},
		{k.NewPoll, k.Logout, k.Help, k.Quit},
	}
}

type detailKeys KeyMap

func (k detailKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Vote, k.Results, k.Back, k.Quit}
}

func (k detailKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Vote}, {k.Results, k.Refresh, k.Back, k.Quit}}
}

type formKeys KeyMap

func (k formKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.AddOption, k.RemoveOption, k.ToggleMulti, k.Submit, k.Back}
}

func (k formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

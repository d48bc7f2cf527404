package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left             key.Binding
	Right            key.Binding
	PageLeft         key.Binding
	PageRight        key.Binding
	Home             key.Binding
	End              key.Binding
	Up               key.Binding
	Down             key.Binding
	ZoomIn           key.Binding
	ZoomOut          key.Binding
	Play             key.Binding
	Jump             key.Binding
	ShowDps          key.Binding
	SortByProfession key.Binding
	ShowIcons        key.Binding
	Help             key.Binding
	Quit             key.Binding
}

var keys = keyMap{
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "scrub back"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "scrub forward"),
	),
	PageLeft: key.NewBinding(
		key.WithKeys("shift+left", "H"),
		key.WithHelp("H", "half a screen back"),
	),
	PageRight: key.NewBinding(
		key.WithKeys("shift+right", "L"),
		key.WithHelp("L", "half a screen forward"),
	),
	Home: key.NewBinding(
		key.WithKeys("home", "0"),
		key.WithHelp("0", "log start"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "$"),
		key.WithHelp("$", "log end"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("k/↑", "rows up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j/↓", "rows down"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "zoom out"),
	),
	Play: key.NewBinding(
		key.WithKeys(" ", "space"),
		key.WithHelp("space", "play/pause"),
	),
	Jump: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "go to m:ss"),
	),
	ShowDps: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "toggle damage graph"),
	),
	SortByProfession: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "sort by profession"),
	),
	ShowIcons: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "icons/names"),
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

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Play, k.Jump, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.PageLeft, k.PageRight, k.Home, k.End},
		{k.Up, k.Down, k.ZoomIn, k.ZoomOut, k.Play, k.Jump},
		{k.ShowDps, k.SortByProfession, k.ShowIcons, k.Help, k.Quit},
	}
}

package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/abelbrown/chainpulse/internal/feed"
)

type keyMap struct {
	Refresh  key.Binding
	Focus    key.Binding
	FocusRev key.Binding
	Click    key.Binding
	Blur     key.Binding
	Debug    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Focus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next coin")),
	FocusRev: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev coin")),
	Click:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "click")),
	Blur:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "unfocus")),
	Debug:    key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "debug")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// helpKeys joins the app bindings with the ones the news list pages by.
type helpKeys struct {
	keyMap
	page feed.KeyMap
}

// ShortHelp implements help.KeyMap.
func (k helpKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Focus, k.Click, k.page.Next, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k helpKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.Debug, k.Quit},
		{k.Focus, k.FocusRev, k.Click, k.Blur},
		{k.page.Prev, k.page.Next, k.Help},
	}
}

// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// PlaygroundKeyMap defines the keybindings of the query playground.
type PlaygroundKeyMap struct {
	// Entity selection
	NextEntity key.Binding
	PrevEntity key.Binding

	// Editing
	Clear key.Binding

	// General
	ToggleFields key.Binding
	Help         key.Binding
	Quit         key.Binding
}

// Playground holds the default playground keybindings.
var Playground = DefaultPlaygroundKeyMap()

// DefaultPlaygroundKeyMap returns the default playground keybindings.
// Printable keys are left to the query input.
func DefaultPlaygroundKeyMap() PlaygroundKeyMap {
	return PlaygroundKeyMap{
		NextEntity: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next entity"),
		),
		PrevEntity: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous entity"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear query"),
		),
		ToggleFields: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "fields"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k PlaygroundKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextEntity, k.ToggleFields, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k PlaygroundKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextEntity, k.PrevEntity}, // Entities
		{k.Clear},                    // Editing
		{k.ToggleFields, k.Help, k.Quit},
	}
}

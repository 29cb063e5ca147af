package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestPlayground_KeyAssignments(t *testing.T) {
	tests := []struct {
		name     string
		binding  key.Binding
		expected []string
	}{
		{name: "NextEntity uses tab", binding: Playground.NextEntity, expected: []string{"tab"}},
		{name: "PrevEntity uses shift+tab", binding: Playground.PrevEntity, expected: []string{"shift+tab"}},
		{name: "Clear uses ctrl+l", binding: Playground.Clear, expected: []string{"ctrl+l"}},
		{name: "ToggleFields uses ctrl+f", binding: Playground.ToggleFields, expected: []string{"ctrl+f"}},
		{name: "Quit uses esc and ctrl+c", binding: Playground.Quit, expected: []string{"esc", "ctrl+c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.binding.Keys())
			require.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestPlayground_NoPrintableKeys(t *testing.T) {
	// Every rune must reach the query input.
	for _, group := range Playground.FullHelp() {
		for _, b := range group {
			for _, r := range "abcxyz\"~ ?q" {
				msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
				require.False(t, key.Matches(msg, b), "%q is bound to %s", r, b.Help().Desc)
			}
		}
	}
}

func TestPlayground_Matches(t *testing.T) {
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyTab}, Playground.NextEntity))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyShiftTab}, Playground.PrevEntity))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEsc}, Playground.Quit))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlC}, Playground.Quit))
	require.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, Playground.Quit))
}

func TestPlayground_HelpGroups(t *testing.T) {
	require.Len(t, Playground.ShortHelp(), 4)
	require.Len(t, Playground.FullHelp(), 3)
}

package query

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func init() {
	// Force ANSI color output in tests (lipgloss disables colors when no TTY)
	lipgloss.SetColorProfile(termenv.ANSI256)
}

func TestHighlight_PreservesText(t *testing.T) {
	queries := []string{
		`"Status" is "Open"`,
		`"Status"   is  "Open" and not  (resolved or mentioned me)`,
		`~login~ order by "Priority" desc, "Number"`,
		`  "Tag" is not empty  `,
		`"A" is "unterminated`,
		`"A" = "b"`,
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			out := Highlight(q)
			assert.Equal(t, q, ansi.Strip(out))
		})
	}
}

func TestHighlight_AddsStyles(t *testing.T) {
	out := Highlight(`"Status" is "Open"`)
	assert.NotEqual(t, `"Status" is "Open"`, out)
	assert.Contains(t, out, FieldStyle.Render(`"Status"`))
	assert.Contains(t, out, OperatorStyle.Render("is"))
	assert.Contains(t, out, StringStyle.Render(`"Open"`))
}

func TestHighlight_OrderByFieldsAreFields(t *testing.T) {
	out := Highlight(`order by "Priority"`)
	assert.Contains(t, out, FieldStyle.Render(`"Priority"`))
}

func TestHighlight_Empty(t *testing.T) {
	assert.Equal(t, "", Highlight(""))
}

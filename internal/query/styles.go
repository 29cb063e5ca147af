package query

import "github.com/charmbracelet/lipgloss"

// Token highlight styles for query syntax highlighting.
var (
	// KeywordStyle for logical keywords: and, or, not, order by, asc, desc
	KeywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#C4B5FD"}).
			Bold(true)

	// OperatorStyle for criteria operator phrases: is, contains, mentioned me...
	OperatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#0369A1", Dark: "#7DD3FC"})

	// FieldStyle for quoted field names
	FieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FCD34D"})

	// StringStyle for quoted values
	StringStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#86EFAC"})

	// FuzzyStyle for ~fuzzy~ text
	FuzzyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#86EFAC"}).
			Italic(true)

	// ParenStyle for parentheses
	ParenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}).
			Bold(true)

	// CommaStyle for comma separators
	CommaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"})

	// ErrorStyle for illegal input
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FCA5A5"}).
			Underline(true)

	// DefaultStyle for unrecognized tokens
	DefaultStyle = lipgloss.NewStyle()
)

package query

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Highlight applies syntax highlighting to a query string.
// Returns the query with ANSI color codes applied based on token types.
// Empty strings return empty strings. Invalid or partial queries are
// highlighted up to the first illegal token; the remainder is rendered with
// ErrorStyle.
func Highlight(input string) string {
	if input == "" {
		return ""
	}

	lexer := NewLexer(input)
	var result strings.Builder
	lastPos := 0

	// Quoted text right after a field operator is a value, otherwise a field
	afterOperator := false

	for {
		tok := lexer.NextToken()
		if tok.Type == TokenEOF {
			break
		}

		// Preserve whitespace between tokens
		if tok.Pos > lastPos {
			result.WriteString(input[lastPos:tok.Pos])
		}

		if tok.Type == TokenIllegal {
			result.WriteString(ErrorStyle.Render(input[tok.Pos:]))
			return result.String()
		}

		style := tokenStyle(tok)
		if tok.Type == TokenQuoted && afterOperator {
			style = StringStyle
		}
		result.WriteString(style.Render(tok.Literal))

		afterOperator = tok.Type == TokenOperator &&
			(tok.Op.Shape() == ShapeField || tok.Op.Shape() == ShapeValue)
		lastPos = tok.End
	}

	// Append any trailing content (whitespace after last token)
	if lastPos < len(input) {
		result.WriteString(input[lastPos:])
	}

	return result.String()
}

// tokenStyle returns the appropriate style for a token.
func tokenStyle(tok Token) lipgloss.Style {
	switch tok.Type {
	// Keywords
	case TokenAnd, TokenOr, TokenNot, TokenOrderBy, TokenAsc, TokenDesc:
		return KeywordStyle

	// Criteria operators
	case TokenOperator:
		return OperatorStyle

	// Delimiters
	case TokenLParen, TokenRParen:
		return ParenStyle
	case TokenComma:
		return CommaStyle

	// Quoted text defaults to a field name
	case TokenQuoted:
		return FieldStyle
	case TokenFuzzy:
		return FuzzyStyle

	default:
		return DefaultStyle
	}
}

package query

import "fmt"

// SyntaxError reports the first token the parser could not accept.
type SyntaxError struct {
	Pos     int    // Byte offset of the offending token
	Literal string // Source text of the offending token, empty at end of input
	Msg     string
}

func (e *SyntaxError) Error() string {
	if e.Literal == "" {
		return fmt.Sprintf("syntax error at end of input: %s", e.Msg)
	}
	return fmt.Sprintf("syntax error at position %d near %q: %s", e.Pos, e.Literal, e.Msg)
}

func errorAt(tok Token, format string, args ...any) *SyntaxError {
	msg := fmt.Sprintf(format, args...)
	if tok.Type == TokenIllegal && tok.Err != "" {
		msg = tok.Err
	}
	return &SyntaxError{Pos: tok.Pos, Literal: tok.Literal, Msg: msg}
}

package query

import (
	"strings"
)

// Lexer tokenizes query input.
type Lexer struct {
	input   string
	pos     int  // offset of ch
	readPos int  // offset of the next character
	ch      byte // current character under examination
	done    bool // set after an illegal token
}

// NewLexer creates a new lexer for the input string.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// NextToken returns the next token from the input. Once the input is
// exhausted, or an illegal token was returned, every call yields EOF.
func (l *Lexer) NextToken() Token {
	if l.done {
		return Token{Type: TokenEOF, Pos: len(l.input), End: len(l.input)}
	}
	l.skipWhitespace()

	tok := Token{Pos: l.pos}

	switch l.ch {
	case '(':
		tok.Type = TokenLParen
		l.readChar()
	case ')':
		tok.Type = TokenRParen
		l.readChar()
	case ',':
		tok.Type = TokenComma
		l.readChar()
	case '"':
		l.readDelimited(&tok, '"', TokenQuoted, "unterminated quoted string")
	case '~':
		l.readDelimited(&tok, '~', TokenFuzzy, "unterminated fuzzy text")
	case 0:
		if l.pos >= len(l.input) {
			tok.Type = TokenEOF
			tok.End = l.pos
			return tok
		}
		l.illegal(&tok, "unexpected character")
	default:
		if isLetter(l.ch) {
			l.readPhrase(&tok)
		} else {
			l.illegal(&tok, "unexpected character")
		}
	}

	tok.End = l.pos
	tok.Literal = l.input[tok.Pos:tok.End]
	return tok
}

// Tokenize returns every token of input, ending with EOF or the first
// illegal token.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == TokenEOF || tok.Type == TokenIllegal {
			return toks
		}
	}
}

// readChar reads the next character and advances position.
func (l *Lexer) readChar() {
	l.pos = l.readPos
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input)
	} else {
		l.ch = l.input[l.readPos]
		l.readPos++
	}
}

// skipWhitespace advances past whitespace characters.
func (l *Lexer) skipWhitespace() {
	for isSpace(l.ch) {
		l.readChar()
	}
}

// illegal consumes the current character and marks tok illegal.
func (l *Lexer) illegal(tok *Token, reason string) {
	tok.Type = TokenIllegal
	tok.Err = reason
	l.readChar()
	l.stop()
}

// stop makes later calls return EOF.
func (l *Lexer) stop() {
	l.done = true
}

// readDelimited reads text enclosed in delim. A backslash escapes the
// following character.
func (l *Lexer) readDelimited(tok *Token, delim byte, typ TokenType, unterminated string) {
	var sb strings.Builder
	l.readChar() // skip opening delimiter
	for {
		switch {
		case l.pos >= len(l.input):
			tok.Type = TokenIllegal
			tok.Err = unterminated
			l.stop()
			return
		case l.ch == '\\':
			l.readChar()
			if l.pos >= len(l.input) {
				tok.Type = TokenIllegal
				tok.Err = unterminated
				l.stop()
				return
			}
			sb.WriteByte(l.ch)
		case l.ch == delim:
			l.readChar() // skip closing delimiter
			tok.Type = typ
			tok.Value = sb.String()
			return
		default:
			sb.WriteByte(l.ch)
		}
		l.readChar()
	}
}

// readPhrase reads the longest keyword phrase starting at the current
// word. Words of a phrase may be separated by any amount of whitespace
// and match case-insensitively.
func (l *Lexer) readPhrase(tok *Token) {
	type word struct {
		text string
		end  int
	}

	var words []word
	i := l.pos
	for len(words) < maxPhraseWords {
		j := i
		for j < len(l.input) && isSpace(l.input[j]) {
			j++
		}
		if len(words) > 0 && j == i {
			break
		}
		k := j
		for k < len(l.input) && isLetter(l.input[k]) {
			k++
		}
		if k == j {
			break
		}
		words = append(words, word{text: strings.ToLower(l.input[j:k]), end: k})
		i = k
	}

	for n := len(words); n > 0; n-- {
		parts := make([]string, n)
		for w := 0; w < n; w++ {
			parts[w] = words[w].text
		}
		match, ok := phrases[strings.Join(parts, " ")]
		if !ok {
			continue
		}
		tok.Type = match.Type
		tok.Op = match.Op
		l.advanceTo(words[n-1].end)
		return
	}

	tok.Type = TokenIllegal
	tok.Err = "unknown keyword"
	l.advanceTo(words[0].end)
	l.stop()
}

// advanceTo moves the lexer so that ch is the character at offset.
func (l *Lexer) advanceTo(offset int) {
	for l.pos < offset {
		l.readChar()
	}
}

// isLetter returns true if c is an ASCII letter.
func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isSpace returns true if c is a whitespace character.
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Package query implements the tokenizer and parser for the sieve query
// language.
package query

// TokenType represents the type of lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	// Literals
	TokenQuoted // "quoted" field or value
	TokenFuzzy  // ~fuzzy text~

	// Delimiters
	TokenLParen // (
	TokenRParen // )
	TokenComma  // ,

	// Logical operators (keywords)
	TokenAnd // and
	TokenOr  // or
	TokenNot // not

	// Order clause
	TokenOrderBy // order by
	TokenAsc     // asc
	TokenDesc    // desc

	// Criteria operator phrase, see Token.Op
	TokenOperator
)

// String returns the string representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "ILLEGAL"
	case TokenQuoted:
		return "QUOTED"
	case TokenFuzzy:
		return "FUZZY"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenComma:
		return ","
	case TokenAnd:
		return "AND"
	case TokenOr:
		return "OR"
	case TokenNot:
		return "NOT"
	case TokenOrderBy:
		return "ORDER BY"
	case TokenAsc:
		return "ASC"
	case TokenDesc:
		return "DESC"
	case TokenOperator:
		return "OPERATOR"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // Source text of the token, quotes and escapes included
	Value   string   // Unescaped text for quoted and fuzzy tokens
	Op      Operator // Set when Type is TokenOperator
	Err     string   // Reason for an illegal token
	Pos     int      // Byte offset of the first character
	End     int      // Byte offset just past the last character
}

// phrases maps normalized keyword phrases to their tokens. Multi-word
// phrases are stored with single spaces between words.
var phrases = map[string]Token{
	"and":      {Type: TokenAnd},
	"or":       {Type: TokenOr},
	"not":      {Type: TokenNot},
	"order by": {Type: TokenOrderBy},
	"asc":      {Type: TokenAsc},
	"desc":     {Type: TokenDesc},
}

// maxPhraseWords is the word count of the longest keyword phrase.
var maxPhraseWords = 1

func init() {
	for _, op := range operators {
		phrases[op.String()] = Token{Type: TokenOperator, Op: op}
	}
	for k := range phrases {
		n := 1
		for i := 0; i < len(k); i++ {
			if k[i] == ' ' {
				n++
			}
		}
		if n > maxPhraseWords {
			maxPhraseWords = n
		}
	}
}

// LookupPhrase returns the keyword token for a normalized phrase.
func LookupPhrase(phrase string) (Token, bool) {
	tok, ok := phrases[phrase]
	return tok, ok
}

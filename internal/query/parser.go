package query

// Parser parses query tokens into a parse tree.
type Parser struct {
	lexer   *Lexer
	current Token
	peek    Token
}

// NewParser creates a parser for the input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	// Prime the parser with two tokens
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses input into a Query. Errors are *SyntaxError.
func Parse(input string) (*Query, error) {
	return NewParser(input).Parse()
}

// Parse parses the input and returns the Query parse tree.
func (p *Parser) Parse() (*Query, error) {
	query := &Query{}

	// Criteria are optional; the query may be just an ORDER BY clause
	if p.current.Type != TokenOrderBy && p.current.Type != TokenEOF {
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		query.Criteria = expr
	}

	if p.current.Type == TokenOrderBy {
		p.nextToken() // consume ORDER BY
		items, err := p.parseOrderBy()
		if err != nil {
			return nil, err
		}
		query.OrderBy = items
	}

	// Should be at EOF now
	if p.current.Type != TokenEOF {
		return nil, errorAt(p.current, "unexpected %s", describe(p.current))
	}

	return query, nil
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.current = p.peek
	p.peek = p.lexer.NextToken()
}

// parseOr parses OR-separated terms.
// orTerm = andTerm { "or" andTerm }
func (p *Parser) parseOr() (Expr, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := []Expr{first}

	for p.current.Type == TokenOr {
		p.nextToken() // consume OR
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}

	if len(terms) == 1 {
		return first, nil
	}
	return &OrExpr{Terms: terms}, nil
}

// parseAnd parses AND-separated terms.
// andTerm = notTerm { "and" notTerm }
func (p *Parser) parseAnd() (Expr, error) {
	first, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	terms := []Expr{first}

	for p.current.Type == TokenAnd {
		p.nextToken() // consume AND
		next, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}

	if len(terms) == 1 {
		return first, nil
	}
	return &AndExpr{Terms: terms}, nil
}

// parseNot parses an optionally negated atom.
// notTerm = [ "not" ] atom
func (p *Parser) parseNot() (Expr, error) {
	if p.current.Type != TokenNot {
		return p.parseAtom()
	}
	p.nextToken() // consume NOT
	expr, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	return &NotExpr{Expr: expr}, nil
}

// parseAtom parses a parenthesized group, an operator, a field
// criteria or fuzzy text.
func (p *Parser) parseAtom() (Expr, error) {
	switch p.current.Type {
	case TokenLParen:
		p.nextToken() // consume (
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.current.Type != TokenRParen {
			return nil, errorAt(p.current, "expected ')', got %s", describe(p.current))
		}
		p.nextToken() // consume )
		return &ParenExpr{Expr: expr}, nil

	case TokenOperator:
		return p.parseOperator()

	case TokenQuoted:
		return p.parseField()

	case TokenFuzzy:
		expr := &FuzzyExpr{Text: p.current.Value, Pos: p.current.Pos}
		p.nextToken()
		return expr, nil

	default:
		return nil, errorAt(p.current, "expected criteria, got %s", describe(p.current))
	}
}

// parseOperator parses "resolved" or `mentioned "value"`.
func (p *Parser) parseOperator() (Expr, error) {
	tok := p.current
	switch tok.Op.Shape() {
	case ShapeUnary:
		p.nextToken()
		return &OperatorExpr{Op: tok.Op, Pos: tok.Pos}, nil
	case ShapeValue:
		p.nextToken()
		if p.current.Type != TokenQuoted {
			return nil, errorAt(p.current, "expected quoted value after %q, got %s", tok.Op.String(), describe(p.current))
		}
		expr := &OperatorExpr{Op: tok.Op, Value: p.current.Value, Pos: tok.Pos}
		p.nextToken()
		return expr, nil
	default:
		return nil, errorAt(tok, "operator %q requires a quoted field before it", tok.Op.String())
	}
}

// parseField parses `"field" op "value"` and `"field" is empty`.
func (p *Parser) parseField() (Expr, error) {
	field := p.current
	p.nextToken()

	if p.current.Type != TokenOperator || !p.current.Op.TakesField() {
		return nil, errorAt(p.current, "expected field operator after %q, got %s", field.Value, describe(p.current))
	}
	op := p.current.Op
	p.nextToken()

	expr := &FieldExpr{Field: field.Value, Op: op, Pos: field.Pos}
	if op.Shape() == ShapeFieldUnary {
		return expr, nil
	}

	if p.current.Type != TokenQuoted {
		return nil, errorAt(p.current, "expected quoted value after %q, got %s", op.String(), describe(p.current))
	}
	expr.Value = p.current.Value
	p.nextToken()
	return expr, nil
}

// parseOrderBy parses the ORDER BY item list.
// orderItem = quotedField [ "asc" | "desc" ]
func (p *Parser) parseOrderBy() ([]OrderItem, error) {
	var items []OrderItem
	for {
		if p.current.Type != TokenQuoted {
			return nil, errorAt(p.current, "expected quoted field in order by, got %s", describe(p.current))
		}
		item := OrderItem{Field: p.current.Value, Pos: p.current.Pos}
		p.nextToken()

		switch p.current.Type {
		case TokenAsc:
			p.nextToken()
		case TokenDesc:
			item.Desc = true
			p.nextToken()
		}
		items = append(items, item)

		if p.current.Type != TokenComma {
			return items, nil
		}
		p.nextToken() // consume comma
	}
}

// describe names a token for error messages.
func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of input"
	case TokenQuoted:
		return "quoted text " + tok.Literal
	case TokenOperator:
		return "operator \"" + tok.Op.String() + "\""
	default:
		return "\"" + tok.Literal + "\""
	}
}

package criteria

import (
	"strings"

	"github.com/zjrosen/sieve/internal/query"
)

// Format returns the canonical query text of c. Parsing and compiling the
// result yields a tree that renders the same text and matches the same
// records. An empty And renders as "", the empty query, which also matches
// everything. An empty Or has no query text; it renders as "()", which
// fails to parse rather than reading back as the empty query.
func Format[R any](c Criteria[R]) string {
	var sb strings.Builder
	c.writeString(&sb)
	return sb.String()
}

// writeChild renders child, parenthesized when it binds looser than min.
func writeChild[R any](sb *strings.Builder, child Criteria[R], min int) {
	if child.precedence() < min {
		sb.WriteByte('(')
		child.writeString(sb)
		sb.WriteByte(')')
		return
	}
	child.writeString(sb)
}

func (c *And[R]) writeString(sb *strings.Builder) {
	for i, child := range c.children {
		if i > 0 {
			sb.WriteString(" and ")
		}
		writeChild(sb, child, precAnd)
	}
}

func (c *Or[R]) writeString(sb *strings.Builder) {
	if len(c.children) == 0 {
		sb.WriteString("()")
		return
	}
	for i, child := range c.children {
		if i > 0 {
			sb.WriteString(" or ")
		}
		writeChild(sb, child, precOr)
	}
}

func (c *Not[R]) writeString(sb *strings.Builder) {
	sb.WriteString("not ")
	writeChild(sb, c.child, precAtom)
}

func (c *Parens[R]) writeString(sb *strings.Builder) {
	sb.WriteByte('(')
	c.child.writeString(sb)
	sb.WriteByte(')')
}

func (c *FieldCriteria[R]) writeString(sb *strings.Builder) {
	sb.WriteString(query.Quote(c.field.Name))
	sb.WriteByte(' ')
	sb.WriteString(c.op.String())
	if c.op.Shape() == query.ShapeField {
		sb.WriteByte(' ')
		sb.WriteString(query.Quote(c.literal))
	}
}

func (c *OperatorCriteria[R]) writeString(sb *strings.Builder) {
	sb.WriteString(c.rule.Operator.String())
	if c.rule.Operator.Shape() == query.ShapeValue {
		sb.WriteByte(' ')
		sb.WriteString(query.Quote(c.literal))
	}
}

func (c *FuzzyCriteria[R]) writeString(sb *strings.Builder) {
	sb.WriteString(query.QuoteFuzzy(c.text))
}

// String returns the canonical query text.
func (c *And[R]) String() string { return Format[R](c) }

// String returns the canonical query text.
func (c *Or[R]) String() string { return Format[R](c) }

// String returns the canonical query text.
func (c *Not[R]) String() string { return Format[R](c) }

// String returns the canonical query text.
func (c *Parens[R]) String() string { return Format[R](c) }

// String returns the canonical query text.
func (c *FieldCriteria[R]) String() string { return Format[R](c) }

// String returns the canonical query text.
func (c *OperatorCriteria[R]) String() string { return Format[R](c) }

// String returns the canonical query text.
func (c *FuzzyCriteria[R]) String() string { return Format[R](c) }

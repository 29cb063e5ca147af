package criteria

import (
	"strings"

	"github.com/zjrosen/sieve/internal/query"
)

// Criteria is a node of a compiled query tree over records of type R.
//
// The set of variants is closed: And, Or, Not, Parens, FieldCriteria,
// OperatorCriteria and FuzzyCriteria. Each implements the in-memory
// matcher (match.go), the SQL renderer (sql.go) and the canonical string
// renderer (string.go). Nodes are immutable.
type Criteria[R any] interface {
	// Matches reports whether r satisfies the criteria.
	Matches(r R) bool

	writeSQL(b *sqlBuilder)
	writeString(sb *strings.Builder)
	precedence() int
}

// Rendering precedence, lowest binds loosest.
const (
	precOr = iota + 1
	precAnd
	precNot
	precAtom
)

// And is the conjunction of its children. An empty And matches everything.
type And[R any] struct {
	children []Criteria[R]
}

// NewAnd returns the conjunction of children.
func NewAnd[R any](children ...Criteria[R]) *And[R] {
	return &And[R]{children: clone(children)}
}

// Children returns the conjuncts in order.
func (c *And[R]) Children() []Criteria[R] { return clone(c.children) }

// Or is the disjunction of its children. An empty Or matches nothing.
type Or[R any] struct {
	children []Criteria[R]
}

// NewOr returns the disjunction of children.
func NewOr[R any](children ...Criteria[R]) *Or[R] {
	return &Or[R]{children: clone(children)}
}

// Children returns the disjuncts in order.
func (c *Or[R]) Children() []Criteria[R] { return clone(c.children) }

// Not negates its child.
type Not[R any] struct {
	child Criteria[R]
}

// NewNot returns the negation of child.
func NewNot[R any](child Criteria[R]) *Not[R] {
	return &Not[R]{child: child}
}

// Child returns the negated criteria.
func (c *Not[R]) Child() Criteria[R] { return c.child }

// Parens records an explicit parenthesized group. It evaluates exactly
// like its child and only shows up in the canonical string.
type Parens[R any] struct {
	child Criteria[R]
}

// NewParens wraps child in a parenthesized group.
func NewParens[R any](child Criteria[R]) *Parens[R] {
	return &Parens[R]{child: child}
}

// Child returns the grouped criteria.
func (c *Parens[R]) Child() Criteria[R] { return c.child }

// FieldCriteria tests a field with a field operator, e.g.
// `"Priority" is greater than "2"` or `"Milestone" is empty`.
type FieldCriteria[R any] struct {
	field   *Field[R]
	op      query.Operator
	value   Value
	literal string
}

// NewFieldCriteria returns a field test. literal is the value text used in
// the canonical string; it is ignored for operators without a value.
func NewFieldCriteria[R any](field *Field[R], op query.Operator, value Value, literal string) *FieldCriteria[R] {
	return &FieldCriteria[R]{field: field, op: op, value: value, literal: literal}
}

// Field returns the tested field.
func (c *FieldCriteria[R]) Field() *Field[R] { return c.field }

// Operator returns the field operator.
func (c *FieldCriteria[R]) Operator() query.Operator { return c.op }

// Value returns the decoded operand.
func (c *FieldCriteria[R]) Value() Value { return c.value }

// Literal returns the operand as rendered in the canonical string.
func (c *FieldCriteria[R]) Literal() string { return c.literal }

// OperatorCriteria is an operator without a field, e.g. "resolved" or
// `mentioned "robin"`, evaluated as its rule's test against the rule's
// field. value is resolved at compile time, so "mentioned me" carries the
// id of the user the query was compiled for.
type OperatorCriteria[R any] struct {
	rule    *Rule
	field   *Field[R]
	value   Value
	literal string
}

// NewOperatorCriteria returns an operator criteria. field must be the
// rule's field. literal is the quoted operand for value operators.
func NewOperatorCriteria[R any](rule *Rule, field *Field[R], value Value, literal string) *OperatorCriteria[R] {
	return &OperatorCriteria[R]{rule: rule, field: field, value: value, literal: literal}
}

// Operator returns the operator.
func (c *OperatorCriteria[R]) Operator() query.Operator { return c.rule.Operator }

// Value returns the resolved operand.
func (c *OperatorCriteria[R]) Value() Value { return c.value }

// Literal returns the operand as rendered in the canonical string.
func (c *OperatorCriteria[R]) Literal() string { return c.literal }

// FuzzyCriteria matches records where any of the fuzzy fields contains the
// text, ignoring ASCII case.
type FuzzyCriteria[R any] struct {
	fields []*Field[R]
	text   string
}

// NewFuzzyCriteria returns a fuzzy criteria over fields.
func NewFuzzyCriteria[R any](fields []*Field[R], text string) *FuzzyCriteria[R] {
	return &FuzzyCriteria[R]{fields: clone(fields), text: text}
}

// Text returns the searched text.
func (c *FuzzyCriteria[R]) Text() string { return c.text }

func clone[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func (c *And[R]) precedence() int              { return precAnd }
func (c *Or[R]) precedence() int               { return precOr }
func (c *Not[R]) precedence() int              { return precNot }
func (c *Parens[R]) precedence() int           { return precAtom }
func (c *FieldCriteria[R]) precedence() int    { return precAtom }
func (c *OperatorCriteria[R]) precedence() int { return precAtom }
func (c *FuzzyCriteria[R]) precedence() int    { return precAtom }

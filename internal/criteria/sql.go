package criteria

import (
	"strings"

	"github.com/zjrosen/sieve/internal/query"
)

// Predicate is a SQLite WHERE fragment with its bound arguments.
type Predicate struct {
	SQL  string
	Args []any
}

// sqlBuilder accumulates a predicate. Every node writes a self-contained
// expression that evaluates to 0 or 1, never NULL, so that NOT agrees with
// in-memory negation on records with absent values.
type sqlBuilder struct {
	sb    strings.Builder
	args  []any
	alias string
	key   string
}

// Render renders c as a predicate over the schema's aliased table.
func Render[R any](s *Schema[R], c Criteria[R]) Predicate {
	b := &sqlBuilder{alias: s.alias, key: s.key}
	c.writeSQL(b)
	return Predicate{SQL: b.sb.String(), Args: b.args}
}

func (b *sqlBuilder) write(parts ...string) {
	for _, p := range parts {
		b.sb.WriteString(p)
	}
}

func (b *sqlBuilder) arg(v any) {
	b.sb.WriteByte('?')
	b.args = append(b.args, v)
}

func (c *And[R]) writeSQL(b *sqlBuilder) {
	writeJoined(b, c.children, " AND ", "1 = 1")
}

func (c *Or[R]) writeSQL(b *sqlBuilder) {
	writeJoined(b, c.children, " OR ", "1 = 0")
}

func writeJoined[R any](b *sqlBuilder, children []Criteria[R], sep, empty string) {
	b.write("(")
	if len(children) == 0 {
		b.write(empty)
	}
	for i, child := range children {
		if i > 0 {
			b.write(sep)
		}
		child.writeSQL(b)
	}
	b.write(")")
}

func (c *Not[R]) writeSQL(b *sqlBuilder) {
	b.write("(NOT ")
	c.child.writeSQL(b)
	b.write(")")
}

func (c *Parens[R]) writeSQL(b *sqlBuilder) {
	c.child.writeSQL(b)
}

func (c *FieldCriteria[R]) writeSQL(b *sqlBuilder) {
	writeFieldSQL(b, c.field, c.op, c.value)
}

func (c *OperatorCriteria[R]) writeSQL(b *sqlBuilder) {
	writeFieldSQL(b, c.field, c.rule.Test, c.value)
}

func (c *FuzzyCriteria[R]) writeSQL(b *sqlBuilder) {
	b.write("(")
	if len(c.fields) == 0 {
		b.write("1 = 0")
	}
	text := String(c.text)
	for i, f := range c.fields {
		if i > 0 {
			b.write(" OR ")
		}
		writeFieldSQL(b, f, query.OpContains, text)
	}
	b.write(")")
}

// writeFieldSQL renders the SQL counterpart of matchField.
func writeFieldSQL[R any](b *sqlBuilder, f *Field[R], op query.Operator, v Value) {
	if f.Collection() {
		l := f.Link
		col := l.Table + "." + l.Column
		exists := func(negate bool, cond func()) {
			if negate {
				b.write("NOT ")
			}
			b.write("EXISTS (SELECT 1 FROM ", l.Table, " WHERE ", l.Table, ".", l.Owner, " = ", b.alias, ".", b.key)
			if cond != nil {
				b.write(" AND ")
				cond()
			}
			b.write(")")
		}

		switch op {
		case query.OpIsEmpty:
			exists(true, nil)
		case query.OpIsNotEmpty:
			exists(false, nil)
		case query.OpIsNot:
			exists(true, func() { writeCompare(b, col, query.OpIs, v) })
		default:
			exists(false, func() { writeCompare(b, col, op, v) })
		}
		return
	}

	col := b.alias + "." + f.Column
	switch op {
	case query.OpIsEmpty:
		b.write("(", col, " IS NULL)")
	case query.OpIsNotEmpty:
		b.write("(", col, " IS NOT NULL)")
	case query.OpIsNot:
		b.write("(", col, " IS NULL OR ", col, " <> ")
		b.arg(v.Arg())
		b.write(")")
	default:
		b.write("(", col, " IS NOT NULL AND ")
		writeCompare(b, col, op, v)
		b.write(")")
	}
}

// writeCompare renders a binary comparison of a non-NULL column.
func writeCompare(b *sqlBuilder, col string, op query.Operator, v Value) {
	switch op {
	case query.OpIs:
		b.write(col, " = ")
	case query.OpIsNot:
		b.write(col, " <> ")
	case query.OpIsGreaterThan:
		b.write(col, " > ")
	case query.OpIsLessThan:
		b.write(col, " < ")
	case query.OpIsSince:
		b.write(col, " >= ")
	case query.OpIsUntil:
		b.write(col, " <= ")
	case query.OpContains:
		b.write("instr(lower(", col, "), ")
		b.arg(lowerASCII(v.Str))
		b.write(") > 0")
		return
	default:
		panic("criteria: operator " + op.String() + " is not a comparison")
	}
	b.arg(v.Arg())
}

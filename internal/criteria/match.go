package criteria

import (
	"github.com/zjrosen/sieve/internal/query"
)

func (c *And[R]) Matches(r R) bool {
	for _, child := range c.children {
		if !child.Matches(r) {
			return false
		}
	}
	return true
}

func (c *Or[R]) Matches(r R) bool {
	for _, child := range c.children {
		if child.Matches(r) {
			return true
		}
	}
	return false
}

func (c *Not[R]) Matches(r R) bool {
	return !c.child.Matches(r)
}

func (c *Parens[R]) Matches(r R) bool {
	return c.child.Matches(r)
}

func (c *FieldCriteria[R]) Matches(r R) bool {
	return matchField(c.field, c.op, c.value, r)
}

func (c *OperatorCriteria[R]) Matches(r R) bool {
	return matchField(c.field, c.rule.Test, c.value, r)
}

func (c *FuzzyCriteria[R]) Matches(r R) bool {
	text := String(c.text)
	for _, f := range c.fields {
		if matchField(f, query.OpContains, text, r) {
			return true
		}
	}
	return false
}

// matchField applies a field operator to the field value of r.
//
// A scalar field without a value fails every test except "is not" and
// "is empty". A collection passes "is" and the comparisons when any
// element does, and "is not" when no element equals v.
func matchField[R any](f *Field[R], op query.Operator, v Value, r R) bool {
	if f.Collection() {
		values := f.Each(r)
		switch op {
		case query.OpIsEmpty:
			return len(values) == 0
		case query.OpIsNotEmpty:
			return len(values) > 0
		case query.OpIsNot:
			for _, e := range values {
				if e.Compare(v) == 0 {
					return false
				}
			}
			return true
		default:
			for _, e := range values {
				if compare(op, e, v) {
					return true
				}
			}
			return false
		}
	}

	got, ok := f.Get(r)
	switch op {
	case query.OpIsEmpty:
		return !ok
	case query.OpIsNotEmpty:
		return ok
	case query.OpIsNot:
		return !ok || got.Compare(v) != 0
	}
	return ok && compare(op, got, v)
}

// compare applies a binary operator to a present value.
func compare(op query.Operator, got, v Value) bool {
	switch op {
	case query.OpIs:
		return got.Compare(v) == 0
	case query.OpIsNot:
		return got.Compare(v) != 0
	case query.OpIsGreaterThan:
		return got.Compare(v) > 0
	case query.OpIsLessThan:
		return got.Compare(v) < 0
	case query.OpIsSince:
		return got.Compare(v) >= 0
	case query.OpIsUntil:
		return got.Compare(v) <= 0
	case query.OpContains:
		return containsFold(got.Str, v.Str)
	}
	panic("criteria: operator " + op.String() + " is not a comparison")
}

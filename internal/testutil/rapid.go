package testutil

import (
	"strconv"
	"time"

	"pgregory.net/rapid"

	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/query"
)

// ValueGen draws operand values for a field.
type ValueGen[R any] func(f *criteria.Field[R]) *rapid.Generator[criteria.Value]

// CriteriaGen draws criteria trees over the visible fields, operator rules
// and fuzzy fields of schema, nested at most depth levels. And and Or
// nodes may have no children.
func CriteriaGen[R any](schema *criteria.Schema[R], values ValueGen[R], depth int) *rapid.Generator[criteria.Criteria[R]] {
	return rapid.Custom(func(t *rapid.T) criteria.Criteria[R] {
		return drawCriteria(t, schema, values, depth, 0, "c")
	})
}

// QueryCriteriaGen is CriteriaGen restricted to trees that have a textual
// form: every And and Or node has at least one child.
func QueryCriteriaGen[R any](schema *criteria.Schema[R], values ValueGen[R], depth int) *rapid.Generator[criteria.Criteria[R]] {
	return rapid.Custom(func(t *rapid.T) criteria.Criteria[R] {
		return drawCriteria(t, schema, values, depth, 1, "c")
	})
}

// Literal renders v the way a user would type it. Users render as
// "user-<id>" and durations in minutes.
func Literal(v criteria.Value) string {
	switch v.Kind {
	case criteria.KindString, criteria.KindEnum, criteria.KindCommit:
		return v.Str
	case criteria.KindInt:
		return strconv.FormatInt(v.Int, 10)
	case criteria.KindBool:
		return strconv.FormatBool(v.Int != 0)
	case criteria.KindDate:
		return v.Time().Format(time.RFC3339)
	case criteria.KindDuration:
		return strconv.FormatInt(v.Int, 10) + "m"
	case criteria.KindUser:
		return "user-" + strconv.FormatInt(v.Int, 10)
	}
	return ""
}

func drawCriteria[R any](t *rapid.T, schema *criteria.Schema[R], values ValueGen[R], depth, minChildren int, label string) criteria.Criteria[R] {
	kind := 0
	if depth > 0 {
		kind = rapid.IntRange(0, 4).Draw(t, label+".kind")
	}

	switch kind {
	case 1, 2:
		n := rapid.IntRange(minChildren, 3).Draw(t, label+".n")
		children := make([]criteria.Criteria[R], n)
		for i := range children {
			children[i] = drawCriteria(t, schema, values, depth-1, minChildren, label+"."+strconv.Itoa(i))
		}
		if kind == 1 {
			return criteria.NewAnd(children...)
		}
		return criteria.NewOr(children...)
	case 3:
		return criteria.NewNot(drawCriteria(t, schema, values, depth-1, minChildren, label+".not"))
	case 4:
		return criteria.NewParens(drawCriteria(t, schema, values, depth-1, minChildren, label+".paren"))
	}
	return drawLeaf(t, schema, values, label)
}

func drawLeaf[R any](t *rapid.T, schema *criteria.Schema[R], values ValueGen[R], label string) criteria.Criteria[R] {
	var fields []*criteria.Field[R]
	for _, info := range schema.Fields() {
		f, _ := schema.Field(info.Name)
		fields = append(fields, f)
	}
	ops := schema.Operators()
	fuzzy := schema.FuzzyFields()

	choices := []string{"field"}
	if len(ops) > 0 {
		choices = append(choices, "operator")
	}
	if len(fuzzy) > 0 {
		choices = append(choices, "fuzzy")
	}

	switch rapid.SampledFrom(choices).Draw(t, label+".leaf") {
	case "operator":
		op := rapid.SampledFrom(ops).Draw(t, label+".op")
		rule, f, _ := schema.Rule(op)
		v := rule.Value
		literal := ""
		if rule.Subject != criteria.SubjectNone {
			v = values(f).Draw(t, label+".value")
			literal = Literal(v)
		}
		return criteria.NewOperatorCriteria(rule, f, v, literal)
	case "fuzzy":
		text := rapid.StringOfN(rapid.RuneFrom([]rune("abAB ")), 0, 3, -1).Draw(t, label+".text")
		return criteria.NewFuzzyCriteria(fuzzy, text)
	}

	f := rapid.SampledFrom(fields).Draw(t, label+".field")
	op := rapid.SampledFrom(f.Operators).Draw(t, label+".op")
	var v criteria.Value
	if op.Shape() == query.ShapeField {
		v = values(f).Draw(t, label+".value")
	}
	return criteria.NewFieldCriteria(f, op, v, Literal(v))
}

package criteria

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/zjrosen/sieve/internal/query"
)

// EntitySort orders results by a field. The first sort of a query is the
// primary one.
type EntitySort struct {
	Field string
	Desc  bool
}

// String renders the sort as an ORDER BY item.
func (s EntitySort) String() string {
	if s.Desc {
		return query.Quote(s.Field) + " desc"
	}
	return query.Quote(s.Field) + " asc"
}

// EntityQuery is a compiled criteria tree plus its sort order. A nil
// criteria matches every record. EntityQuery is immutable and safe for
// concurrent use.
type EntityQuery[R any] struct {
	schema   *Schema[R]
	criteria Criteria[R]
	sorts    []EntitySort
	order    []*Field[R]
}

// NewEntityQuery returns a query over schema. Every sort field must be an
// order field of the schema.
func NewEntityQuery[R any](schema *Schema[R], c Criteria[R], sorts ...EntitySort) (*EntityQuery[R], error) {
	q := &EntityQuery[R]{schema: schema, criteria: c, sorts: slices.Clone(sorts)}
	for _, s := range sorts {
		f, ok := schema.OrderField(s.Field)
		if !ok {
			return nil, fmt.Errorf("can not order by field: %s", s.Field)
		}
		q.order = append(q.order, f)
	}
	return q, nil
}

// Schema returns the registry the query was compiled against.
func (q *EntityQuery[R]) Schema() *Schema[R] { return q.schema }

// Criteria returns the criteria root, nil when the query matches all.
func (q *EntityQuery[R]) Criteria() Criteria[R] { return q.criteria }

// Sorts returns the sort list.
func (q *EntityQuery[R]) Sorts() []EntitySort { return slices.Clone(q.sorts) }

// Matches reports whether r satisfies the query criteria.
func (q *EntityQuery[R]) Matches(r R) bool {
	if q.criteria == nil {
		return true
	}
	return q.criteria.Matches(r)
}

// Predicate renders the criteria as a WHERE fragment. The SQL is empty
// when the query matches all records.
func (q *EntityQuery[R]) Predicate() Predicate {
	if q.criteria == nil {
		return Predicate{}
	}
	return Render(q.schema, q.criteria)
}

// OrderBy renders the ORDER BY list, ending with the primary key so that
// ties have a stable order.
func (q *EntityQuery[R]) OrderBy() string {
	var parts []string
	for i, f := range q.order {
		dir := " ASC"
		if q.sorts[i].Desc {
			dir = " DESC"
		}
		parts = append(parts, q.schema.alias+"."+f.Column+dir)
	}
	parts = append(parts, q.schema.alias+"."+q.schema.key+" ASC")
	return strings.Join(parts, ", ")
}

// Sort orders records the way OrderBy orders rows: absent values first
// when ascending and last when descending, ties broken by ascending id.
func (q *EntityQuery[R]) Sort(records []R) {
	slices.SortStableFunc(records, func(a, b R) int {
		for i, f := range q.order {
			c := compareField(f, a, b)
			if q.sorts[i].Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(q.schema.ID(a), q.schema.ID(b))
	})
}

func compareField[R any](f *Field[R], a, b R) int {
	va, oka := f.Get(a)
	vb, okb := f.Get(b)
	switch {
	case !oka && !okb:
		return 0
	case !oka:
		return -1
	case !okb:
		return 1
	}
	return va.Compare(vb)
}

// String returns the canonical query text.
func (q *EntityQuery[R]) String() string {
	var sb strings.Builder
	if q.criteria != nil {
		q.criteria.writeString(&sb)
	}
	if len(q.sorts) > 0 {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString("order by ")
		for i, s := range q.sorts {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(s.String())
		}
	}
	return sb.String()
}

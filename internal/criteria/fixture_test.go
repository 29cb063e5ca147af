package criteria_test

import (
	"time"

	"pgregory.net/rapid"

	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/query"
)

type ticket struct {
	ID       int64
	Title    string
	Status   string
	Priority *int64
	Labels   []string
	Created  time.Time
	Closed   bool
	Owner    int64
}

func ptr[T any](v T) *T { return &v }

var ticketSchema = criteria.MustSchema(criteria.Definition[*ticket]{
	Entity: "ticket",
	Table:  "tickets",
	Alias:  "t",
	Key:    "id",
	ID:     func(t *ticket) int64 { return t.ID },
	Fields: []criteria.Field[*ticket]{
		{
			Name:      "Title",
			Kind:      criteria.KindString,
			Operators: []query.Operator{query.OpIs, query.OpIsNot, query.OpContains, query.OpIsEmpty},
			Column:    "title",
			Get: func(t *ticket) (criteria.Value, bool) {
				return criteria.String(t.Title), t.Title != ""
			},
		},
		{
			Name:      "Status",
			Kind:      criteria.KindEnum,
			Enum:      []string{"Open", "Closed"},
			Operators: []query.Operator{query.OpIs, query.OpIsNot},
			Column:    "status",
			Get: func(t *ticket) (criteria.Value, bool) {
				return criteria.Enum(t.Status), true
			},
		},
		{
			Name: "Priority",
			Kind: criteria.KindInt,
			Operators: []query.Operator{
				query.OpIs, query.OpIsNot, query.OpIsGreaterThan, query.OpIsLessThan,
				query.OpIsEmpty, query.OpIsNotEmpty,
			},
			Column: "priority",
			Get: func(t *ticket) (criteria.Value, bool) {
				if t.Priority == nil {
					return criteria.Value{}, false
				}
				return criteria.Int(*t.Priority), true
			},
		},
		{
			Name:      "Label",
			Kind:      criteria.KindString,
			Operators: []query.Operator{query.OpIs, query.OpIsNot, query.OpContains, query.OpIsEmpty, query.OpIsNotEmpty},
			Link:      &criteria.Link{Table: "ticket_labels", Owner: "ticket_id", Column: "name"},
			Each: func(t *ticket) []criteria.Value {
				out := make([]criteria.Value, len(t.Labels))
				for i, l := range t.Labels {
					out[i] = criteria.String(l)
				}
				return out
			},
		},
		{
			Name:      "Created",
			Kind:      criteria.KindDate,
			Operators: []query.Operator{query.OpIsSince, query.OpIsUntil},
			Column:    "created",
			Get: func(t *ticket) (criteria.Value, bool) {
				return criteria.Date(t.Created), true
			},
		},
		{
			Name:   "Closed",
			Kind:   criteria.KindBool,
			Hidden: true,
			Column: "closed",
			Get: func(t *ticket) (criteria.Value, bool) {
				return criteria.Bool(t.Closed), true
			},
		},
		{
			Name:   "Owner",
			Kind:   criteria.KindUser,
			Hidden: true,
			Column: "owner_id",
			Get: func(t *ticket) (criteria.Value, bool) {
				return criteria.User(t.Owner), t.Owner != 0
			},
		},
	},
	Rules: []criteria.Rule{
		{Operator: query.OpResolved, Field: "Closed", Test: query.OpIs, Value: criteria.Bool(true)},
		{Operator: query.OpUnresolved, Field: "Closed", Test: query.OpIs, Value: criteria.Bool(false)},
		{Operator: query.OpCreatedByMe, Field: "Owner", Test: query.OpIs, Subject: criteria.SubjectCurrentUser},
		{Operator: query.OpCreatedBy, Field: "Owner", Test: query.OpIs, Subject: criteria.SubjectUser},
	},
	Fuzzy: []string{"Title"},
	Order: []string{"Priority", "Created", "Title"},
})

func field(name string) *criteria.Field[*ticket] {
	f, ok := ticketSchema.Field(name)
	if !ok {
		panic("no field " + name)
	}
	return f
}

func is(name string, v criteria.Value) criteria.Criteria[*ticket] {
	return criteria.NewFieldCriteria(field(name), query.OpIs, v, v.Str)
}

func fieldOp(name string, op query.Operator, v criteria.Value) criteria.Criteria[*ticket] {
	return criteria.NewFieldCriteria(field(name), op, v, v.Str)
}

func operator(op query.Operator, v criteria.Value) criteria.Criteria[*ticket] {
	rule, f, ok := ticketSchema.Rule(op)
	if !ok {
		panic("no rule " + op.String())
	}
	if rule.Subject == criteria.SubjectNone {
		v = rule.Value
	}
	return criteria.NewOperatorCriteria(rule, f, v, "")
}

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func ticketValues(f *criteria.Field[*ticket]) *rapid.Generator[criteria.Value] {
	switch f.Name {
	case "Title", "Label":
		return rapid.Map(rapid.StringOfN(rapid.RuneFrom([]rune("abAB")), 0, 2, -1), criteria.String)
	case "Status":
		return rapid.Map(rapid.SampledFrom(f.Enum), criteria.Enum)
	case "Priority":
		return rapid.Map(rapid.Int64Range(0, 3), criteria.Int)
	case "Created":
		return rapid.Map(rapid.IntRange(0, 3), func(d int) criteria.Value {
			return criteria.Date(day0.AddDate(0, 0, d))
		})
	case "Owner":
		return rapid.Map(rapid.Int64Range(1, 3), criteria.User)
	}
	panic("no generator for " + f.Name)
}

func ticketGen() *rapid.Generator[*ticket] {
	return rapid.Custom(func(t *rapid.T) *ticket {
		tk := &ticket{
			ID:      rapid.Int64Range(1, 1000).Draw(t, "id"),
			Title:   rapid.StringOfN(rapid.RuneFrom([]rune("abAB ")), 0, 3, -1).Draw(t, "title"),
			Status:  rapid.SampledFrom([]string{"Open", "Closed"}).Draw(t, "status"),
			Labels:  rapid.SliceOfN(rapid.SampledFrom([]string{"a", "b", "ab"}), 0, 2).Draw(t, "labels"),
			Created: day0.AddDate(0, 0, rapid.IntRange(0, 3).Draw(t, "created")),
			Closed:  rapid.Bool().Draw(t, "closed"),
			Owner:   rapid.Int64Range(0, 3).Draw(t, "owner"),
		}
		if rapid.Bool().Draw(t, "hasPriority") {
			tk.Priority = ptr(rapid.Int64Range(0, 3).Draw(t, "priority"))
		}
		return tk
	})
}

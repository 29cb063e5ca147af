package criteria_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/query"
)

type row struct {
	ID   int64
	Name string
	Tags []string
}

func rowDef() criteria.Definition[*row] {
	return criteria.Definition[*row]{
		Entity: "row",
		Table:  "rows",
		Alias:  "r",
		Key:    "id",
		ID:     func(r *row) int64 { return r.ID },
		Fields: []criteria.Field[*row]{
			{
				Name:      "Name",
				Kind:      criteria.KindString,
				Operators: []query.Operator{query.OpIs, query.OpContains},
				Column:    "name",
				Get:       func(r *row) (criteria.Value, bool) { return criteria.String(r.Name), true },
			},
			{
				Name:      "Tag",
				Kind:      criteria.KindString,
				Operators: []query.Operator{query.OpIs},
				Link:      &criteria.Link{Table: "row_tags", Owner: "row_id", Column: "tag"},
				Each:      func(r *row) []criteria.Value { return nil },
			},
		},
	}
}

func TestNewSchema_Valid(t *testing.T) {
	_, err := criteria.NewSchema(rowDef())
	require.NoError(t, err)
}

func TestNewSchema_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *criteria.Definition[*row])
		errMsg string
	}{
		{
			name:   "missing table",
			mutate: func(d *criteria.Definition[*row]) { d.Table = "" },
			errMsg: "entity, table, alias and key are required",
		},
		{
			name:   "missing id",
			mutate: func(d *criteria.Definition[*row]) { d.ID = nil },
			errMsg: "ID accessor is required",
		},
		{
			name:   "scalar without column",
			mutate: func(d *criteria.Definition[*row]) { d.Fields[0].Column = "" },
			errMsg: `field "Name": scalar field without column`,
		},
		{
			name:   "collection without link",
			mutate: func(d *criteria.Definition[*row]) { d.Fields[1].Link = nil },
			errMsg: `field "Tag": collection field without link table`,
		},
		{
			name:   "no accessor",
			mutate: func(d *criteria.Definition[*row]) { d.Fields[0].Get = nil },
			errMsg: `field "Name": no accessor`,
		},
		{
			name: "operator invalid for kind",
			mutate: func(d *criteria.Definition[*row]) {
				d.Fields[0].Operators = []query.Operator{query.OpIsSince}
			},
			errMsg: `operator "is since" not valid for string values`,
		},
		{
			name: "rule operator takes a field",
			mutate: func(d *criteria.Definition[*row]) {
				d.Fields[0].Operators = []query.Operator{query.OpIsEmpty}
				d.Rules = []criteria.Rule{{Operator: query.OpIs, Field: "Name", Test: query.OpIs, Value: criteria.String("x")}}
			},
			errMsg: "operator takes a field",
		},
		{
			name: "duplicate field",
			mutate: func(d *criteria.Definition[*row]) {
				d.Fields = append(d.Fields, d.Fields[0])
			},
			errMsg: `duplicate field "Name"`,
		},
		{
			name: "rule on unknown field",
			mutate: func(d *criteria.Definition[*row]) {
				d.Rules = []criteria.Rule{{Operator: query.OpResolved, Field: "Done", Test: query.OpIs, Value: criteria.Bool(true)}}
			},
			errMsg: `unknown field "Done"`,
		},
		{
			name: "rule subject does not fit field",
			mutate: func(d *criteria.Definition[*row]) {
				d.Rules = []criteria.Rule{{Operator: query.OpMentionedMe, Field: "Name", Test: query.OpIs, Subject: criteria.SubjectCurrentUser}}
			},
			errMsg: `field "Name" holds string values, rule supplies user`,
		},
		{
			name: "fuzzy field must exist",
			mutate: func(d *criteria.Definition[*row]) {
				d.Fuzzy = []string{"Body"}
			},
			errMsg: `fuzzy field "Body" must be a string field`,
		},
		{
			name: "order by collection",
			mutate: func(d *criteria.Definition[*row]) {
				d.Order = []string{"Tag"}
			},
			errMsg: `order field "Tag" must be a visible scalar field`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := rowDef()
			tt.mutate(&def)

			_, err := criteria.NewSchema(def)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Panics(t, func() { criteria.MustSchema(def) })
		})
	}
}

func TestSchema_Info(t *testing.T) {
	fields := ticketSchema.Fields()
	var names []string
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Title", "Status", "Priority", "Label", "Created"}, names, "hidden fields are omitted")
	assert.True(t, fields[0].Fuzzy)
	assert.True(t, fields[2].Orderable)
	assert.False(t, fields[3].Orderable)
	assert.Equal(t, []string{"Open", "Closed"}, fields[1].Enum)

	assert.Equal(t, []query.Operator{query.OpResolved, query.OpUnresolved, query.OpCreatedByMe, query.OpCreatedBy}, ticketSchema.Operators())
	assert.Equal(t, []string{"Priority", "Created", "Title"}, ticketSchema.OrderFields())

	_, ok := ticketSchema.Field("Closed")
	assert.False(t, ok, "hidden fields are not addressable by name")
	_, ok = ticketSchema.Field("Nope")
	assert.False(t, ok)
}

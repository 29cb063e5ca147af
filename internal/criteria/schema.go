package criteria

import (
	"fmt"
	"slices"

	"github.com/zjrosen/sieve/internal/query"
)

// Field describes one queryable property of a record type R.
//
// A scalar field reads its value with Get and is stored in Column of the
// entity table. A collection field reads its values with Each and is
// stored as rows of Link, one row per value.
type Field[R any] struct {
	Name      string
	Kind      Kind
	Operators []query.Operator // Operators users may apply; empty for hidden fields
	Enum      []string         // Allowed values for KindEnum
	Hidden    bool             // Reachable only through operator rules

	Column string
	Get    func(R) (Value, bool)

	Link *Link
	Each func(R) []Value
}

// Link is the storage of a collection field.
type Link struct {
	Table  string // Link table name
	Owner  string // Column referencing the entity key
	Column string // Column holding the value
}

// Collection reports whether the field holds many values.
func (f *Field[R]) Collection() bool {
	return f.Each != nil
}

// Allows reports whether users may apply op to the field.
func (f *Field[R]) Allows(op query.Operator) bool {
	return slices.Contains(f.Operators, op)
}

// Subject is the operand an operator rule takes.
type Subject int

const (
	SubjectNone        Subject = iota // fixed Rule.Value
	SubjectCurrentUser                // id of the user running the query
	SubjectUser                       // user named by the quoted value
	SubjectCommit                     // commit named by the quoted value
)

// Rule defines an operator without a field, such as "resolved" or
// "mentioned me", as a test against a (usually hidden) field.
type Rule struct {
	Operator query.Operator
	Field    string
	Test     query.Operator
	Subject  Subject
	Value    Value // Used when Subject is SubjectNone
}

// Definition is the static description a Schema is built from.
type Definition[R any] struct {
	Entity string // Entity type name, e.g. "issue"
	Table  string // SQL table
	Alias  string // Table alias used in rendered predicates
	Key    string // Primary key column
	ID     func(R) int64

	Fields []Field[R]
	Rules  []Rule
	Fuzzy  []string // Fields searched by ~text~
	Order  []string // Fields allowed in ORDER BY
}

// Schema is the field registry of one entity type. It is immutable once
// built and safe for concurrent use.
type Schema[R any] struct {
	entity string
	table  string
	alias  string
	key    string
	id     func(R) int64

	fields []*Field[R]
	byName map[string]*Field[R]
	rules  map[query.Operator]*Rule
	ruleOp []query.Operator
	fuzzy  []*Field[R]
	orders []*Field[R]
}

// NewSchema validates def and builds its registry.
func NewSchema[R any](def Definition[R]) (*Schema[R], error) {
	if def.Entity == "" || def.Table == "" || def.Alias == "" || def.Key == "" {
		return nil, fmt.Errorf("schema %q: entity, table, alias and key are required", def.Entity)
	}
	if def.ID == nil {
		return nil, fmt.Errorf("schema %q: ID accessor is required", def.Entity)
	}

	s := &Schema[R]{
		entity: def.Entity,
		table:  def.Table,
		alias:  def.Alias,
		key:    def.Key,
		id:     def.ID,
		byName: make(map[string]*Field[R], len(def.Fields)),
		rules:  make(map[query.Operator]*Rule, len(def.Rules)),
	}

	for i := range def.Fields {
		f := def.Fields[i]
		if err := validateField(&f); err != nil {
			return nil, fmt.Errorf("schema %q: %w", def.Entity, err)
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, fmt.Errorf("schema %q: duplicate field %q", def.Entity, f.Name)
		}
		s.fields = append(s.fields, &f)
		s.byName[f.Name] = &f
	}

	for i := range def.Rules {
		r := def.Rules[i]
		if err := s.validateRule(&r); err != nil {
			return nil, fmt.Errorf("schema %q: rule %q: %w", def.Entity, r.Operator, err)
		}
		s.rules[r.Operator] = &r
		s.ruleOp = append(s.ruleOp, r.Operator)
	}

	for _, name := range def.Fuzzy {
		f, ok := s.byName[name]
		if !ok || f.Kind != KindString {
			return nil, fmt.Errorf("schema %q: fuzzy field %q must be a string field", def.Entity, name)
		}
		s.fuzzy = append(s.fuzzy, f)
	}

	for _, name := range def.Order {
		f, ok := s.byName[name]
		if !ok || f.Collection() || f.Hidden {
			return nil, fmt.Errorf("schema %q: order field %q must be a visible scalar field", def.Entity, name)
		}
		s.orders = append(s.orders, f)
	}

	return s, nil
}

// MustSchema is like NewSchema but panics on an invalid definition.
func MustSchema[R any](def Definition[R]) *Schema[R] {
	s, err := NewSchema(def)
	if err != nil {
		panic(err)
	}
	return s
}

func validateField[R any](f *Field[R]) error {
	if f.Name == "" {
		return fmt.Errorf("field without name")
	}
	if f.Kind < KindString || f.Kind > KindCommit {
		return fmt.Errorf("field %q: invalid kind", f.Name)
	}
	if f.Kind == KindEnum && len(f.Enum) == 0 {
		return fmt.Errorf("field %q: enum field without values", f.Name)
	}
	switch {
	case f.Get != nil && f.Each != nil:
		return fmt.Errorf("field %q: both Get and Each set", f.Name)
	case f.Get != nil:
		if f.Column == "" {
			return fmt.Errorf("field %q: scalar field without column", f.Name)
		}
	case f.Each != nil:
		if f.Link == nil || f.Link.Table == "" || f.Link.Owner == "" || f.Link.Column == "" {
			return fmt.Errorf("field %q: collection field without link table", f.Name)
		}
	default:
		return fmt.Errorf("field %q: no accessor", f.Name)
	}
	if !f.Hidden && len(f.Operators) == 0 {
		return fmt.Errorf("field %q: visible field without operators", f.Name)
	}
	for _, op := range f.Operators {
		if !KindAllows(f.Kind, op) {
			return fmt.Errorf("field %q: operator %q not valid for %s values", f.Name, op, f.Kind)
		}
	}
	return nil
}

func (s *Schema[R]) validateRule(r *Rule) error {
	shape := r.Operator.Shape()
	if shape != query.ShapeUnary && shape != query.ShapeValue {
		return fmt.Errorf("operator takes a field")
	}
	if _, dup := s.rules[r.Operator]; dup {
		return fmt.Errorf("duplicate rule")
	}
	f, ok := s.byName[r.Field]
	if !ok {
		return fmt.Errorf("unknown field %q", r.Field)
	}
	if !KindAllows(f.Kind, r.Test) {
		return fmt.Errorf("test %q not valid for %s field %q", r.Test, f.Kind, f.Name)
	}

	var want Kind
	switch r.Subject {
	case SubjectNone:
		want = r.Value.Kind
	case SubjectCurrentUser, SubjectUser:
		want = KindUser
	case SubjectCommit:
		want = KindCommit
	}
	if f.Kind != want {
		return fmt.Errorf("field %q holds %s values, rule supplies %s", f.Name, f.Kind, want)
	}

	takesValue := r.Subject == SubjectUser || r.Subject == SubjectCommit
	if takesValue != (shape == query.ShapeValue) {
		return fmt.Errorf("subject does not fit operator shape")
	}
	return nil
}

// KindAllows reports whether op is meaningful for values of kind k.
func KindAllows(k Kind, op query.Operator) bool {
	switch op {
	case query.OpIs, query.OpIsNot, query.OpIsEmpty, query.OpIsNotEmpty:
		return true
	case query.OpIsGreaterThan, query.OpIsLessThan:
		return k == KindInt || k == KindDate || k == KindDuration
	case query.OpIsSince, query.OpIsUntil:
		return k == KindDate
	case query.OpContains:
		return k == KindString
	}
	return false
}

// Entity returns the entity type name.
func (s *Schema[R]) Entity() string { return s.entity }

// Table returns the SQL table of the entity.
func (s *Schema[R]) Table() string { return s.table }

// Alias returns the table alias rendered predicates refer to.
func (s *Schema[R]) Alias() string { return s.alias }

// Key returns the primary key column.
func (s *Schema[R]) Key() string { return s.key }

// ID returns the primary key of r.
func (s *Schema[R]) ID(r R) int64 { return s.id(r) }

// Field looks up a visible field by name.
func (s *Schema[R]) Field(name string) (*Field[R], bool) {
	f, ok := s.byName[name]
	if !ok || f.Hidden {
		return nil, false
	}
	return f, true
}

// AllFields returns every field, hidden ones included, in definition order.
func (s *Schema[R]) AllFields() []*Field[R] {
	return slices.Clone(s.fields)
}

// Rule returns the rule of an operator that takes no field.
func (s *Schema[R]) Rule(op query.Operator) (*Rule, *Field[R], bool) {
	r, ok := s.rules[op]
	if !ok {
		return nil, nil, false
	}
	return r, s.byName[r.Field], true
}

// OrderField looks up a field allowed in ORDER BY.
func (s *Schema[R]) OrderField(name string) (*Field[R], bool) {
	for _, f := range s.orders {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// FuzzyFields returns the fields searched by fuzzy criteria.
func (s *Schema[R]) FuzzyFields() []*Field[R] {
	return slices.Clone(s.fuzzy)
}

// FieldInfo describes a visible field for autocompletion and help output.
type FieldInfo struct {
	Name      string
	Kind      Kind
	Operators []query.Operator
	Enum      []string
	Orderable bool
	Fuzzy     bool
}

// Fields returns the visible fields in definition order.
func (s *Schema[R]) Fields() []FieldInfo {
	var out []FieldInfo
	for _, f := range s.fields {
		if f.Hidden {
			continue
		}
		out = append(out, FieldInfo{
			Name:      f.Name,
			Kind:      f.Kind,
			Operators: slices.Clone(f.Operators),
			Enum:      slices.Clone(f.Enum),
			Orderable: slices.Contains(s.orders, f),
			Fuzzy:     slices.Contains(s.fuzzy, f),
		})
	}
	return out
}

// Operators returns the operators that take no field, in definition order.
func (s *Schema[R]) Operators() []query.Operator {
	return slices.Clone(s.ruleOp)
}

// OrderFields returns the names of the fields allowed in ORDER BY.
func (s *Schema[R]) OrderFields() []string {
	out := make([]string, len(s.orders))
	for i, f := range s.orders {
		out[i] = f.Name
	}
	return out
}

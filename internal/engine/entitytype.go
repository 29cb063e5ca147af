package engine

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/sieve/internal/compiler"
	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/log"
	"github.com/zjrosen/sieve/internal/notify"
	"github.com/zjrosen/sieve/internal/pubsub"
	"github.com/zjrosen/sieve/internal/query"
	"github.com/zjrosen/sieve/internal/store"
)

// entityType binds the registry of record type T to the engine.
type entityType[T any] struct {
	schema *criteria.Schema[*T]
}

func (t *entityType[T]) Name() string                 { return t.schema.Entity() }
func (t *entityType[T]) Fields() []criteria.FieldInfo { return t.schema.Fields() }
func (t *entityType[T]) Operators() []query.Operator  { return t.schema.Operators() }
func (t *entityType[T]) OrderFields() []string        { return t.schema.OrderFields() }

func (t *entityType[T]) Decode(data []byte) (any, error) {
	return t.decode(data)
}

func (t *entityType[T]) decode(data []byte) (*T, error) {
	rec := new(T)
	if err := yaml.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decoding %s record: %w", t.Name(), err)
	}
	return rec, nil
}

func (t *entityType[T]) compileQuery(ctx context.Context, e *Engine, input string) (*criteria.EntityQuery[*T], error) {
	if e.cache != nil {
		return compiler.CompileCached(ctx, e.cache, t.schema, input, e.qc)
	}
	return compiler.Compile(ctx, e.c, t.schema, input, e.qc)
}

func (t *entityType[T]) compile(ctx context.Context, e *Engine, input string) (Compiled, error) {
	q, err := t.compileQuery(ctx, e, input)
	if err != nil {
		return nil, err
	}
	return &compiled[T]{t: t, q: q}, nil
}

func (t *entityType[T]) search(ctx context.Context, e *Engine, input string, limit int) (*Result, error) {
	q, err := t.compileQuery(ctx, e, input)
	if err != nil {
		return nil, err
	}
	records, err := store.NewRepository(e.db, t.schema).Search(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	res := &Result{Query: &compiled[T]{t: t, q: q}, Records: make([]any, len(records))}
	for i, r := range records {
		res.Records[i] = r
	}
	return res, nil
}

func (t *entityType[T]) subscribe(ctx context.Context, e *Engine, filters []*store.SavedFilter, out pubsub.Publisher[notify.Notification]) (*subscription, error) {
	m := notify.NewMatcher(t.schema, out)
	compile := func(ctx context.Context, input string) (*criteria.EntityQuery[*T], error) {
		return t.compileQuery(ctx, e, input)
	}
	loadErr := m.Load(ctx, compile, filters)

	feed, err := notify.NewFeed[*T](ctx, t.Name(), store.NewRepository(e.db, t.schema), m)
	if err != nil {
		return nil, err
	}

	return &subscription{
		entity:  t.Name(),
		filters: m.Len(),
		poll: func(ctx context.Context) (int, error) {
			if err := m.Refresh(ctx); err != nil {
				log.Warn(log.CatMatch, "Saved filters kept their previous dates", "entity", t.Name(), "error", err)
			}
			return feed.Poll(ctx)
		},
		loadErr: loadErr,
	}, nil
}

// compiled adapts a typed query to Compiled.
type compiled[T any] struct {
	t *entityType[T]
	q *criteria.EntityQuery[*T]
}

func (c *compiled[T]) Entity() string                { return c.t.Name() }
func (c *compiled[T]) String() string                { return c.q.String() }
func (c *compiled[T]) Predicate() criteria.Predicate { return c.q.Predicate() }
func (c *compiled[T]) OrderBy() string               { return c.q.OrderBy() }

func (c *compiled[T]) MatchRecord(data []byte) (bool, error) {
	rec, err := c.t.decode(data)
	if err != nil {
		return false, err
	}
	return c.q.Matches(rec), nil
}

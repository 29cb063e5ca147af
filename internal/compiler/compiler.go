// Package compiler turns query text into criteria trees. It validates
// fields and operators against an entity's schema, decodes literals, and
// resolves user and commit references through injected resolvers.
package compiler

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/log"
	"github.com/zjrosen/sieve/internal/metrics"
	"github.com/zjrosen/sieve/internal/query"
	"github.com/zjrosen/sieve/internal/tracing"
)

// Compiler holds the collaborators shared by every compilation. It is
// immutable after New and safe for concurrent use.
type Compiler struct {
	users   UserResolver
	commits CommitResolver
	now     func() time.Time
	loc     *time.Location
	tracer  trace.Tracer
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithUserResolver sets the resolver for user names in value operators
// and user fields.
func WithUserResolver(r UserResolver) Option {
	return func(c *Compiler) { c.users = r }
}

// WithCommitResolver sets the resolver for commit revisions.
func WithCommitResolver(r CommitResolver) Option {
	return func(c *Compiler) { c.commits = r }
}

// WithClock sets the clock relative dates are resolved against.
func WithClock(now func() time.Time) Option {
	return func(c *Compiler) { c.now = now }
}

// WithLocation sets the time zone of dates without an explicit offset.
func WithLocation(loc *time.Location) Option {
	return func(c *Compiler) { c.loc = loc }
}

// WithTracer sets the tracer for compile spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Compiler) { c.tracer = t }
}

// New returns a Compiler. Without resolvers, user and commit references
// fail to compile.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		now:    time.Now,
		loc:    time.Local,
		tracer: tracing.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location returns the time zone used for dates.
func (c *Compiler) Location() *time.Location {
	return c.loc
}

// Compile parses input and builds a query over schema. Syntax errors are
// returned as *query.SyntaxError and semantic errors as *Error. Any other
// error comes from a resolver.
func Compile[R any](ctx context.Context, c *Compiler, schema *criteria.Schema[R], input string, qc QueryContext) (q *criteria.EntityQuery[R], err error) {
	ctx, span := c.tracer.Start(ctx, tracing.SpanCompile, trace.WithAttributes(
		attribute.String(tracing.AttrEntity, schema.Entity()),
		attribute.String(tracing.AttrQuery, input),
	))
	defer func() {
		if q != nil {
			span.SetAttributes(attribute.String(tracing.AttrCanonical, q.String()))
		} else {
			span.SetAttributes(attribute.String(tracing.AttrErrorKind, Kind(err)))
		}
		tracing.End(span, err)
		metrics.CompileTotal.WithLabelValues(schema.Entity(), outcome(err)).Inc()
	}()

	parsed, err := query.Parse(input)
	if err != nil {
		log.Debug(log.CatQuery, "Query rejected", "entity", schema.Entity(), "error", err)
		return nil, err
	}

	b := &builder[R]{ctx: ctx, c: c, schema: schema, qc: qc}
	var root criteria.Criteria[R]
	if parsed.Criteria != nil {
		root, err = b.build(parsed.Criteria)
		if err != nil {
			logCompileError(schema.Entity(), err)
			return nil, err
		}
	}

	sorts := make([]criteria.EntitySort, 0, len(parsed.OrderBy))
	for _, item := range parsed.OrderBy {
		if _, ok := schema.OrderField(item.Field); !ok {
			err = newError(ErrCannotOrderBy, "can not order by field: %s", item.Field)
			logCompileError(schema.Entity(), err)
			return nil, err
		}
		sorts = append(sorts, criteria.EntitySort{Field: item.Field, Desc: item.Desc})
	}

	q, err = criteria.NewEntityQuery(schema, root, sorts...)
	if err != nil {
		return nil, err
	}
	log.Debug(log.CatCompile, "Compiled query", "entity", schema.Entity(), "query", q.String())
	return q, nil
}

func logCompileError(entity string, err error) {
	var cerr *Error
	if errors.As(err, &cerr) {
		log.Debug(log.CatCompile, "Query rejected", "entity", entity, "error", err)
		return
	}
	log.ErrorErr(log.CatCompile, "Compile failed", err, "entity", entity)
}

func outcome(err error) string {
	var syntaxErr *query.SyntaxError
	var compileErr *Error
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &syntaxErr):
		return metrics.OutcomeSyntaxError
	case errors.As(err, &compileErr):
		return metrics.OutcomeCompileError
	}
	return metrics.OutcomeFailure
}

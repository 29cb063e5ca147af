// Package engine exposes the query engine by entity name. It binds the
// generic compiler and store to the registered entity types for the
// command line and the playground.
package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/sieve/internal/compiler"
	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/entity"
	"github.com/zjrosen/sieve/internal/notify"
	"github.com/zjrosen/sieve/internal/pubsub"
	"github.com/zjrosen/sieve/internal/query"
	"github.com/zjrosen/sieve/internal/store"
	"github.com/zjrosen/sieve/internal/tracing"
)

// ErrUnknownEntity is returned for an entity name with no registry.
var ErrUnknownEntity = errors.New("unknown entity")

// Options configures an Engine.
type Options struct {
	// Location is the time zone of dates, time.Local when nil.
	Location *time.Location
	// CacheTTL enables the compiled query and reference caches when
	// positive.
	CacheTTL time.Duration
	// CurrentUser is the login "me" refers to.
	CurrentUser string
	// WithCurrentUserCriteria allows criteria such as "mentioned me".
	WithCurrentUserCriteria bool
	// Now overrides the clock relative dates are resolved against.
	Now func() time.Time
	// Tracer receives compile spans.
	Tracer trace.Tracer
}

// Engine compiles and runs queries against a database.
type Engine struct {
	db    *store.DB
	c     *compiler.Compiler
	cache *compiler.Cache
	qc    compiler.QueryContext
}

// New returns an engine over db.
func New(db *store.DB, opts Options) *Engine {
	var users compiler.UserResolver = db.Users()
	var commits compiler.CommitResolver = db.Commits()
	if opts.CacheTTL > 0 {
		users = compiler.CachedUserResolver(users, opts.CacheTTL)
		commits = compiler.CachedCommitResolver(commits, opts.CacheTTL)
	}

	copts := []compiler.Option{
		compiler.WithUserResolver(users),
		compiler.WithCommitResolver(commits),
	}
	if opts.Location != nil {
		copts = append(copts, compiler.WithLocation(opts.Location))
	}
	if opts.Now != nil {
		copts = append(copts, compiler.WithClock(opts.Now))
	}
	if opts.Tracer != nil {
		copts = append(copts, compiler.WithTracer(opts.Tracer))
	} else {
		copts = append(copts, compiler.WithTracer(tracing.Noop()))
	}

	e := &Engine{
		db: db,
		c:  compiler.New(copts...),
		qc: compiler.QueryContext{
			CurrentUser:             &loginUser{users: db.Users(), login: opts.CurrentUser},
			WithCurrentUserCriteria: opts.WithCurrentUserCriteria,
		},
	}
	if opts.CacheTTL > 0 {
		e.cache = compiler.NewCache(e.c, opts.CacheTTL)
	}
	return e
}

// DB returns the database of the engine.
func (e *Engine) DB() *store.DB {
	return e.db
}

// Compiler returns the compiler used for every query.
func (e *Engine) Compiler() *compiler.Compiler {
	return e.c
}

// QueryContext returns the context queries are compiled in.
func (e *Engine) QueryContext() compiler.QueryContext {
	return e.qc
}

// Entity looks up an entity type by name.
func Entity(name string) (EntityType, error) {
	for _, t := range types {
		if t.Name() == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownEntity, name, strings.Join(entity.Names(), ", "))
}

// Entities returns every entity type in registration order.
func Entities() []EntityType {
	return slices.Clone(types)
}

// Compile compiles input for the named entity.
func (e *Engine) Compile(ctx context.Context, entityName, input string) (Compiled, error) {
	t, err := Entity(entityName)
	if err != nil {
		return nil, err
	}
	return t.compile(ctx, e, input)
}

// Validate reports the compile error of input, nil when it compiles.
func (e *Engine) Validate(ctx context.Context, entityName, input string) error {
	_, err := e.Compile(ctx, entityName, input)
	return err
}

// Search runs input against the stored records of the named entity.
func (e *Engine) Search(ctx context.Context, entityName, input string, limit int) (*Result, error) {
	t, err := Entity(entityName)
	if err != nil {
		return nil, err
	}
	return t.search(ctx, e, input, limit)
}

// Match decodes a YAML or JSON record of the named entity and evaluates
// input against it.
func (e *Engine) Match(ctx context.Context, entityName, input string, record []byte) (bool, Compiled, error) {
	t, err := Entity(entityName)
	if err != nil {
		return false, nil, err
	}
	q, err := t.compile(ctx, e, input)
	if err != nil {
		return false, nil, err
	}
	ok, err := q.MatchRecord(record)
	return ok, q, err
}

// SaveFilter compiles query and stores it under name in canonical form.
func (e *Engine) SaveFilter(ctx context.Context, entityName, name, input string, notify bool) (*store.SavedFilter, error) {
	q, err := e.Compile(ctx, entityName, input)
	if err != nil {
		return nil, err
	}
	f := &store.SavedFilter{Name: name, Entity: entityName, Query: q.String(), Notify: notify}
	if err := e.db.SavedFilters().Save(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Compiled is a compiled query with its record type erased.
type Compiled interface {
	// Entity returns the entity type name.
	Entity() string
	// String returns the canonical query text.
	String() string
	// Predicate returns the SQL WHERE fragment.
	Predicate() criteria.Predicate
	// OrderBy returns the SQL ORDER BY list.
	OrderBy() string
	// MatchRecord decodes a YAML or JSON record and evaluates the query.
	MatchRecord(data []byte) (bool, error)
}

// Result holds the records a search returned.
type Result struct {
	Query   Compiled
	Records []any
}

// EntityType describes a registered entity for help output and dispatch.
type EntityType interface {
	Name() string
	Fields() []criteria.FieldInfo
	Operators() []query.Operator
	OrderFields() []string
	// Decode parses a YAML or JSON record.
	Decode(data []byte) (any, error)

	compile(ctx context.Context, e *Engine, input string) (Compiled, error)
	search(ctx context.Context, e *Engine, input string, limit int) (*Result, error)
	subscribe(ctx context.Context, e *Engine, filters []*store.SavedFilter, out pubsub.Publisher[notify.Notification]) (*subscription, error)
}

var types = []EntityType{
	&entityType[entity.Issue]{schema: entity.IssueSchema},
	&entityType[entity.CodeComment]{schema: entity.CodeCommentSchema},
	&entityType[entity.Pack]{schema: entity.PackSchema},
	&entityType[entity.Build]{schema: entity.BuildSchema},
}

// loginUser provides the current user by login, looked up in the store.
type loginUser struct {
	users *store.UserRepository
	login string
}

func (u *loginUser) CurrentUser(ctx context.Context) (compiler.User, bool, error) {
	if u.login == "" {
		return compiler.User{}, false, nil
	}
	user, err := u.users.ResolveUser(ctx, u.login)
	if errors.Is(err, compiler.ErrNotFound) {
		return compiler.User{}, false, nil
	}
	if err != nil {
		return compiler.User{}, false, err
	}
	return user, true, nil
}

// Package notify evaluates saved filters against record events and
// publishes a notification for every match.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/sieve/internal/compiler"
	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/log"
	"github.com/zjrosen/sieve/internal/metrics"
	"github.com/zjrosen/sieve/internal/pubsub"
	"github.com/zjrosen/sieve/internal/store"
)

// Notification reports that a record satisfied a saved filter.
type Notification struct {
	ID         string
	FilterGUID string
	FilterName string
	Entity     string
	Query      string
	RecordID   int64
	Event      pubsub.EventType
	At         time.Time
}

// String renders the notification for terminal output.
func (n Notification) String() string {
	return fmt.Sprintf("%s %s #%d matched %q", n.At.Format(time.RFC3339), n.Entity, n.RecordID, n.FilterName)
}

// CompileFunc compiles the query text of a saved filter.
type CompileFunc[R any] func(ctx context.Context, input string) (*criteria.EntityQuery[R], error)

// CompileWith returns a CompileFunc compiling against schema with c.
func CompileWith[R any](c *compiler.Compiler, schema *criteria.Schema[R], qc compiler.QueryContext) CompileFunc[R] {
	return func(ctx context.Context, input string) (*criteria.EntityQuery[R], error) {
		return compiler.Compile(ctx, c, schema, input, qc)
	}
}

type filter[R any] struct {
	saved store.SavedFilter
	query *criteria.EntityQuery[R]
}

// Matcher holds the compiled saved filters of one entity. Events only run
// Matches; Refresh recompiles so relative dates follow the clock.
type Matcher[R any] struct {
	schema  *criteria.Schema[R]
	out     pubsub.Publisher[Notification]
	now     func() time.Time
	mu      sync.RWMutex
	compile CompileFunc[R]
	filters []filter[R]
}

var _ pubsub.Publisher[int] = (*Matcher[int])(nil)

// NewMatcher returns a matcher for schema publishing to out.
func NewMatcher[R any](schema *criteria.Schema[R], out pubsub.Publisher[Notification]) *Matcher[R] {
	return &Matcher[R]{schema: schema, out: out, now: time.Now}
}

// Load compiles the notifying filters of the matcher's entity with compile
// and adds them. Filters that fail to compile are skipped and reported
// together. Later Refresh calls reuse compile.
func (m *Matcher[R]) Load(ctx context.Context, compile CompileFunc[R], filters []*store.SavedFilter) error {
	m.mu.Lock()
	m.compile = compile
	m.mu.Unlock()

	var errs []error
	for _, f := range filters {
		if !f.Notify || f.Entity != m.schema.Entity() {
			continue
		}
		q, err := compile(ctx, f.Query)
		if err != nil {
			log.Warn(log.CatMatch, "Skipping saved filter", "name", f.Name, "error", err)
			errs = append(errs, fmt.Errorf("filter %q: %w", f.Name, err))
			continue
		}
		m.Add(*f, q)
	}
	return errors.Join(errs...)
}

// Add registers a compiled filter.
func (m *Matcher[R]) Add(f store.SavedFilter, q *criteria.EntityQuery[R]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, filter[R]{saved: f, query: q})
}

// Refresh recompiles every filter against the current clock. A filter
// that no longer compiles keeps its previous query.
func (m *Matcher[R]) Refresh(ctx context.Context) error {
	m.mu.RLock()
	compile := m.compile
	current := make([]filter[R], len(m.filters))
	copy(current, m.filters)
	m.mu.RUnlock()
	if compile == nil {
		return nil
	}

	var errs []error
	for i, f := range current {
		q, err := compile(ctx, f.saved.Query)
		if err != nil {
			errs = append(errs, fmt.Errorf("filter %q: %w", f.saved.Name, err))
			continue
		}
		current[i].query = q
	}

	m.mu.Lock()
	// Filters added meanwhile are kept as compiled.
	copy(m.filters, current)
	m.mu.Unlock()
	return errors.Join(errs...)
}

// Len returns the number of registered filters.
func (m *Matcher[R]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.filters)
}

// Match evaluates every filter against rec, publishes a notification per
// match and returns them.
func (m *Matcher[R]) Match(event pubsub.EventType, rec R) []Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entity := m.schema.Entity()
	id := m.schema.ID(rec)
	var out []Notification
	for _, f := range m.filters {
		matched := f.query.Matches(rec)
		metrics.MatchTotal.WithLabelValues(entity, strconv.FormatBool(matched)).Inc()
		if !matched {
			continue
		}
		n := Notification{
			ID:         uuid.NewString(),
			FilterGUID: f.saved.GUID,
			FilterName: f.saved.Name,
			Entity:     entity,
			Query:      f.query.String(),
			RecordID:   id,
			Event:      event,
			At:         m.now(),
		}
		m.out.Publish(pubsub.MatchedEvent, n)
		metrics.NotificationsTotal.WithLabelValues(entity).Inc()
		log.Debug(log.CatMatch, "Filter matched", "filter", n.FilterName, "entity", entity, "id", id)
		out = append(out, n)
	}
	return out
}

// Publish matches rec synchronously. Deleted records are ignored.
func (m *Matcher[R]) Publish(eventType pubsub.EventType, rec R) {
	if eventType == pubsub.DeletedEvent {
		return
	}
	m.Match(eventType, rec)
}

// Run matches every event from events until the channel closes or ctx is
// done.
func (m *Matcher[R]) Run(ctx context.Context, events <-chan pubsub.Event[R]) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.Publish(ev.Type, ev.Payload)
		}
	}
}

package engine

import (
	"context"
	"errors"
	"time"

	"github.com/zjrosen/sieve/internal/log"
	"github.com/zjrosen/sieve/internal/notify"
	"github.com/zjrosen/sieve/internal/pubsub"
	"github.com/zjrosen/sieve/internal/watcher"
)

type subscription struct {
	entity  string
	filters int
	poll    func(context.Context) (int, error)
	loadErr error
}

// Notifier matches newly saved records of every entity against the
// notifying saved filters.
type Notifier struct {
	subs []*subscription
}

// NewNotifier compiles the notifying saved filters and matches records
// saved from now on. Each Poll recompiles the filters, then publishes a
// notification to out for every match before it returns. Filters that no
// longer compile are logged and skipped.
func (e *Engine) NewNotifier(ctx context.Context, out pubsub.Publisher[notify.Notification]) (*Notifier, error) {
	filters, err := e.db.SavedFilters().List(ctx, "")
	if err != nil {
		return nil, err
	}

	n := &Notifier{}
	for _, t := range types {
		sub, err := t.subscribe(ctx, e, filters, out)
		if err != nil {
			return nil, err
		}
		if sub.loadErr != nil {
			log.Warn(log.CatMatch, "Some saved filters were skipped", "entity", sub.entity, "error", sub.loadErr)
		}
		n.subs = append(n.subs, sub)
	}
	return n, nil
}

// Filters returns the number of filters being matched.
func (n *Notifier) Filters() int {
	total := 0
	for _, s := range n.subs {
		total += s.filters
	}
	return total
}

// Poll matches the records saved since the previous poll and returns how
// many were read.
func (n *Notifier) Poll(ctx context.Context) (int, error) {
	total := 0
	var errs []error
	for _, s := range n.subs {
		count, err := s.poll(ctx)
		total += count
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

// Watch runs a notifier driven by writes to the database file until ctx
// is done.
func (e *Engine) Watch(ctx context.Context, out pubsub.Publisher[notify.Notification], debounce time.Duration) error {
	n, err := e.NewNotifier(ctx, out)
	if err != nil {
		return err
	}

	w, err := watcher.New(watcher.Config{DBPath: e.db.Path(), Debounce: debounce})
	if err != nil {
		return err
	}
	log.Info(log.CatWatcher, "Watching for matches", "filters", n.Filters(), "path", e.db.Path())
	return w.Run(ctx, func(ctx context.Context) error {
		_, err := n.Poll(ctx)
		return err
	})
}

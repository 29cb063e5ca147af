package notify

import (
	"context"

	"github.com/zjrosen/sieve/internal/entity"
	"github.com/zjrosen/sieve/internal/log"
	"github.com/zjrosen/sieve/internal/pubsub"
	"github.com/zjrosen/sieve/internal/store"
)

// Source is the part of a repository a Feed reads.
type Source[R any] interface {
	UpdatedSince(ctx context.Context, since int64) ([]R, int64, error)
	Revision(ctx context.Context) (int64, error)
}

var _ Source[*entity.Issue] = (*store.Repository[*entity.Issue])(nil)

// Feed turns saved records into events. Each Poll publishes the records
// written since the previous one. The publisher must not drop events: a
// Matcher or a PublisherFunc delivers synchronously, a Broker does not.
type Feed[R any] struct {
	entity string
	src    Source[R]
	out    pubsub.Publisher[R]
	rev    int64
}

// NewFeed returns a feed starting at the current revision of src, so
// records that already exist are not replayed.
func NewFeed[R any](ctx context.Context, entity string, src Source[R], out pubsub.Publisher[R]) (*Feed[R], error) {
	rev, err := src.Revision(ctx)
	if err != nil {
		return nil, err
	}
	return &Feed[R]{entity: entity, src: src, out: out, rev: rev}, nil
}

// Revision returns the last revision published.
func (f *Feed[R]) Revision() int64 {
	return f.rev
}

// Poll publishes an UpdatedEvent for every record saved since the last
// poll and returns how many were published. The revision only advances
// once every record was handed to the publisher; a poll cancelled midway
// is repeated in full by the next one.
func (f *Feed[R]) Poll(ctx context.Context) (int, error) {
	records, rev, err := f.src.UpdatedSince(ctx, f.rev)
	if err != nil {
		return 0, err
	}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		f.out.Publish(pubsub.UpdatedEvent, rec)
	}
	if len(records) > 0 {
		log.Debug(log.CatWatcher, "Published record events", "entity", f.entity, "count", len(records), "rev", rev)
	}
	f.rev = rev
	return len(records), nil
}

package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/sieve/internal/compiler"
	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/entity"
	"github.com/zjrosen/sieve/internal/notify"
	"github.com/zjrosen/sieve/internal/pubsub"
	"github.com/zjrosen/sieve/internal/store"
	"github.com/zjrosen/sieve/internal/testutil"
)

func savedFilters() []*store.SavedFilter {
	return []*store.SavedFilter{
		{GUID: "g-open", Name: "open", Entity: entity.IssueEntity, Query: `"Status" is "Open"`, Notify: true},
		{GUID: "g-bugs", Name: "bugs", Entity: entity.IssueEntity, Query: `"Label" is "bug"`, Notify: true},
		{GUID: "g-quiet", Name: "quiet", Entity: entity.IssueEntity, Query: `"Status" is "Closed"`},
		{GUID: "g-builds", Name: "failing", Entity: entity.BuildEntity, Query: `failed`, Notify: true},
	}
}

func compileIssues() notify.CompileFunc[*entity.Issue] {
	return notify.CompileWith(testutil.Resolvers(), entity.IssueSchema, compiler.QueryContext{})
}

// collect returns a publisher appending every notification to got.
func collect(got *[]notify.Notification) pubsub.Publisher[notify.Notification] {
	return pubsub.PublisherFunc[notify.Notification](func(_ pubsub.EventType, n notify.Notification) {
		*got = append(*got, n)
	})
}

func TestMatcher_Load(t *testing.T) {
	broker := pubsub.NewBroker[notify.Notification]()
	defer broker.Close()
	m := notify.NewMatcher(entity.IssueSchema, broker)

	filters := append(savedFilters(), &store.SavedFilter{
		Name: "broken", Entity: entity.IssueEntity, Query: `"Nope" is "x"`, Notify: true,
	})
	err := m.Load(context.Background(), compileIssues(), filters)
	require.ErrorIs(t, err, compiler.ErrFieldNotFound)
	require.Equal(t, 2, m.Len(), "only notifying issue filters that compile are kept")
}

func TestMatcher_Match(t *testing.T) {
	broker := pubsub.NewBroker[notify.Notification]()
	defer broker.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := broker.Subscribe(ctx)

	m := notify.NewMatcher(entity.IssueSchema, broker)
	require.NoError(t, m.Load(ctx, compileIssues(), savedFilters()))

	got := m.Match(pubsub.UpdatedEvent, testutil.NewIssue(7, testutil.Labels("bug")))
	require.Len(t, got, 2)
	require.Equal(t, "open", got[0].FilterName)
	require.Equal(t, "bugs", got[1].FilterName)
	require.Equal(t, int64(7), got[1].RecordID)
	require.Equal(t, `"Label" is "bug"`, got[1].Query)
	require.NotEqual(t, got[0].ID, got[1].ID)

	for range 2 {
		select {
		case ev := <-sub:
			require.Equal(t, pubsub.MatchedEvent, ev.Type)
			require.Equal(t, entity.IssueEntity, ev.Payload.Entity)
		case <-time.After(time.Second):
			t.Fatal("expected a notification")
		}
	}

	require.Empty(t, m.Match(pubsub.UpdatedEvent, testutil.NewIssue(8, testutil.Status(entity.StatusClosed))))
}

func TestMatcher_Run(t *testing.T) {
	out := pubsub.NewBroker[notify.Notification]()
	defer out.Close()
	records := pubsub.NewBroker[*entity.Issue]()
	defer records.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifications := out.Subscribe(ctx)

	m := notify.NewMatcher(entity.IssueSchema, out)
	require.NoError(t, m.Load(ctx, compileIssues(), savedFilters()[1:2]))

	done := make(chan struct{})
	events := records.Subscribe(ctx)
	go func() {
		m.Run(ctx, events)
		close(done)
	}()

	records.Publish(pubsub.DeletedEvent, testutil.NewIssue(1, testutil.Labels("bug")))
	records.Publish(pubsub.UpdatedEvent, testutil.NewIssue(2, testutil.Labels("bug")))

	select {
	case ev := <-notifications:
		require.Equal(t, int64(2), ev.Payload.RecordID)
	case <-time.After(time.Second):
		t.Fatal("expected a notification")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestFeed_Poll(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Issues().Save(ctx, testutil.NewIssue(1)))

	broker := pubsub.NewBroker[*entity.Issue]()
	defer broker.Close()
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := broker.Subscribe(subCtx)

	feed, err := notify.NewFeed(ctx, entity.IssueEntity, db.Issues(), broker)
	require.NoError(t, err)
	require.Equal(t, int64(1), feed.Revision())

	n, err := feed.Poll(ctx)
	require.NoError(t, err)
	require.Zero(t, n, "existing records are not replayed")

	require.NoError(t, db.Issues().Save(ctx, testutil.NewIssue(2), testutil.NewIssue(3)))
	n, err = feed.Poll(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, int64(2), feed.Revision())

	for _, want := range []int64{2, 3} {
		ev := <-events
		require.Equal(t, pubsub.UpdatedEvent, ev.Type)
		require.Equal(t, want, ev.Payload.ID)
	}
}

func TestMatcher_PublishIgnoresDeletes(t *testing.T) {
	var got []notify.Notification
	m := notify.NewMatcher(entity.IssueSchema, collect(&got))
	require.NoError(t, m.Load(context.Background(), compileIssues(), savedFilters()[1:2]))

	m.Publish(pubsub.DeletedEvent, testutil.NewIssue(1, testutil.Labels("bug")))
	require.Empty(t, got)
	m.Publish(pubsub.UpdatedEvent, testutil.NewIssue(2, testutil.Labels("bug")))
	require.Len(t, got, 1)
	require.Equal(t, pubsub.UpdatedEvent, got[0].Event)
}

func TestMatcher_RefreshFollowsClock(t *testing.T) {
	ctx := context.Background()
	now := testutil.Day0.Add(12 * time.Hour)
	c := compiler.New(compiler.WithClock(func() time.Time { return now }), compiler.WithLocation(time.UTC))

	var got []notify.Notification
	m := notify.NewMatcher(entity.IssueSchema, collect(&got))
	require.NoError(t, m.Load(ctx, notify.CompileWith(c, entity.IssueSchema, compiler.QueryContext{}), []*store.SavedFilter{
		{GUID: "g-today", Name: "today", Entity: entity.IssueEntity, Query: `"CreatedDate" is since "today"`, Notify: true},
	}))

	old := testutil.NewIssue(1, testutil.CreatedAt(testutil.Day0))
	require.Len(t, m.Match(pubsub.UpdatedEvent, old), 1)

	now = testutil.Day0.Add(72 * time.Hour)
	require.Len(t, m.Match(pubsub.UpdatedEvent, old), 1, "compiled filters keep their dates until refreshed")

	require.NoError(t, m.Refresh(ctx))
	require.Empty(t, m.Match(pubsub.UpdatedEvent, old))
	require.Empty(t, m.Match(pubsub.UpdatedEvent, testutil.NewIssue(2, testutil.CreatedAt(testutil.Day0.Add(24*time.Hour)))))
	require.Len(t, m.Match(pubsub.UpdatedEvent, testutil.NewIssue(3, testutil.CreatedAt(testutil.Day0.Add(73*time.Hour)))), 1)
}

func TestMatcher_RefreshKeepsQueryOnError(t *testing.T) {
	ctx := context.Background()
	calls := 0
	compile := func(ctx context.Context, input string) (*criteria.EntityQuery[*entity.Issue], error) {
		calls++
		if calls > 1 {
			return nil, compiler.ErrNotFound
		}
		return compileIssues()(ctx, input)
	}

	var got []notify.Notification
	m := notify.NewMatcher(entity.IssueSchema, collect(&got))
	require.NoError(t, m.Load(ctx, compile, savedFilters()[1:2]))

	require.ErrorIs(t, m.Refresh(ctx), compiler.ErrNotFound)
	require.Equal(t, 1, m.Len())
	require.Len(t, m.Match(pubsub.UpdatedEvent, testutil.NewIssue(1, testutil.Labels("bug"))), 1)
}

func TestFeed_PollDeliversLargeBatches(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	var got []notify.Notification
	m := notify.NewMatcher(entity.IssueSchema, collect(&got))
	require.NoError(t, m.Load(ctx, compileIssues(), savedFilters()[1:2]))
	feed, err := notify.NewFeed(ctx, entity.IssueEntity, db.Issues(), m)
	require.NoError(t, err)

	issues := make([]*entity.Issue, 500)
	for i := range issues {
		issues[i] = testutil.NewIssue(int64(i+1), testutil.Labels("bug"))
	}
	require.NoError(t, db.Issues().Save(ctx, issues...))

	n, err := feed.Poll(ctx)
	require.NoError(t, err)
	require.Equal(t, 500, n)
	require.Len(t, got, 500)
	require.Equal(t, int64(500), got[499].RecordID)
	require.Equal(t, int64(1), feed.Revision())
}

func TestFeed_PollAfterDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Issues().Save(ctx, testutil.NewIssue(1)))
	require.NoError(t, db.Issues().Save(ctx, testutil.NewIssue(2)))

	var got []int64
	out := pubsub.PublisherFunc[*entity.Issue](func(_ pubsub.EventType, issue *entity.Issue) {
		got = append(got, issue.ID)
	})
	feed, err := notify.NewFeed(ctx, entity.IssueEntity, db.Issues(), out)
	require.NoError(t, err)

	require.NoError(t, db.Issues().Delete(ctx, 2))
	require.NoError(t, db.Issues().Save(ctx, testutil.NewIssue(3)))

	n, err := feed.Poll(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []int64{3}, got)
}

func TestFeed_PollCancelledKeepsRevision(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	var got []int64
	out := pubsub.PublisherFunc[*entity.Issue](func(_ pubsub.EventType, issue *entity.Issue) {
		got = append(got, issue.ID)
	})
	feed, err := notify.NewFeed(ctx, entity.IssueEntity, db.Issues(), out)
	require.NoError(t, err)
	require.NoError(t, db.Issues().Save(ctx, testutil.NewIssue(1)))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = feed.Poll(cancelled)
	require.Error(t, err)
	require.Zero(t, feed.Revision())

	n, err := feed.Poll(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []int64{1}, got)
}

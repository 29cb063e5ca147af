package compiler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/sieve/internal/compiler"
	"github.com/zjrosen/sieve/internal/entity"
	"github.com/zjrosen/sieve/internal/testutil"
)

func TestCompileCached(t *testing.T) {
	ctx := context.Background()
	cache := compiler.NewCache(newCompiler(), time.Minute)

	q1, err := compiler.CompileCached(ctx, cache, entity.IssueSchema, `"Status" is "Open"`, asAlice())
	require.NoError(t, err)
	q2, err := compiler.CompileCached(ctx, cache, entity.IssueSchema, `"Status" is "Open"`, asAlice())
	require.NoError(t, err)
	require.Same(t, q1, q2)
	require.Equal(t, 1, cache.Len())

	// The same text against another entity is a different entry.
	_, err = compiler.CompileCached(ctx, cache, entity.BuildSchema, `"Status" is "Failed"`, asAlice())
	require.NoError(t, err)
	require.Equal(t, 2, cache.Len())

	require.NoError(t, cache.Flush(ctx))
	require.Zero(t, cache.Len())
}

func TestCompileCached_KeyedByCurrentUser(t *testing.T) {
	ctx := context.Background()
	cache := compiler.NewCache(newCompiler(), time.Minute)
	bob := compiler.User{ID: 2, Login: "bob"}
	asBob := compiler.QueryContext{CurrentUser: compiler.CurrentUserFor(&bob), WithCurrentUserCriteria: true}

	qa, err := compiler.CompileCached(ctx, cache, entity.IssueSchema, `submitted by me`, asAlice())
	require.NoError(t, err)
	qb, err := compiler.CompileCached(ctx, cache, entity.IssueSchema, `submitted by me`, asBob)
	require.NoError(t, err)

	require.NotSame(t, qa, qb)
	require.Equal(t, []any{alice.ID}, qa.Predicate().Args)
	require.Equal(t, []any{bob.ID}, qb.Predicate().Args)
}

func TestCompileCached_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	cache := compiler.NewCache(newCompiler(), time.Minute)

	_, err := compiler.CompileCached(ctx, cache, entity.IssueSchema, `"Nope" is "x"`, asAlice())
	require.ErrorIs(t, err, compiler.ErrFieldNotFound)
	require.Zero(t, cache.Len())
}

func TestCachedUserResolver(t *testing.T) {
	calls := 0
	r := compiler.CachedUserResolver(compiler.UserResolverFunc(func(ctx context.Context, name string) (compiler.User, error) {
		calls++
		if name == "alice" {
			return alice, nil
		}
		return compiler.User{}, compiler.ErrNotFound
	}), time.Minute)

	ctx := context.Background()
	for range 3 {
		u, err := r.ResolveUser(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, alice, u)
	}
	require.Equal(t, 1, calls)

	_, err := r.ResolveUser(ctx, "mallory")
	require.True(t, errors.Is(err, compiler.ErrNotFound))
	_, err = r.ResolveUser(ctx, "mallory")
	require.ErrorIs(t, err, compiler.ErrNotFound)
	require.Equal(t, 3, calls)
}

func TestCachedCommitResolver(t *testing.T) {
	calls := 0
	r := compiler.CachedCommitResolver(compiler.CommitResolverFunc(func(ctx context.Context, rev string) (string, error) {
		calls++
		return "abc123" + rev, nil
	}), time.Minute)

	ctx := context.Background()
	h1, err := r.ResolveCommit(ctx, "main")
	require.NoError(t, err)
	h2, err := r.ResolveCommit(ctx, "main")
	require.NoError(t, err)
	require.Equal(t, h1, h2)
	require.Equal(t, 1, calls)
}

func TestCompileCached_KeyedByClockHour(t *testing.T) {
	ctx := context.Background()
	now := testutil.Day0.Add(10 * time.Hour)
	c := compiler.New(compiler.WithClock(func() time.Time { return now }), compiler.WithLocation(time.UTC))
	cache := compiler.NewCache(c, 24*time.Hour)
	const input = `"CreatedDate" is since "today"`

	q1, err := compiler.CompileCached(ctx, cache, entity.IssueSchema, input, compiler.QueryContext{})
	require.NoError(t, err)
	now = now.Add(30 * time.Minute)
	q2, err := compiler.CompileCached(ctx, cache, entity.IssueSchema, input, compiler.QueryContext{})
	require.NoError(t, err)
	require.Same(t, q1, q2)

	now = testutil.Day0.Add(50 * time.Hour)
	q3, err := compiler.CompileCached(ctx, cache, entity.IssueSchema, input, compiler.QueryContext{})
	require.NoError(t, err)
	require.NotSame(t, q1, q3)

	since := testutil.Day0.Add(48 * time.Hour)
	require.False(t, q3.Matches(testutil.NewIssue(1, testutil.CreatedAt(testutil.Day0))))
	require.True(t, q3.Matches(testutil.NewIssue(2, testutil.CreatedAt(since))))
	require.True(t, q1.Matches(testutil.NewIssue(1, testutil.CreatedAt(testutil.Day0))))
}

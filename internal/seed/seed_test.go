package seed_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/sieve/internal/compiler"
	"github.com/zjrosen/sieve/internal/entity"
	"github.com/zjrosen/sieve/internal/seed"
	"github.com/zjrosen/sieve/internal/testutil"
)

var now = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestGenerate_Deterministic(t *testing.T) {
	a := seed.Generate(seed.DefaultOptions(now))
	b := seed.Generate(seed.DefaultOptions(now))
	require.Equal(t, a, b)

	opts := seed.DefaultOptions(now)
	opts.Seed = 2
	c := seed.Generate(opts)
	require.NotEqual(t, a.Issues, c.Issues)
}

func TestGenerate_Shape(t *testing.T) {
	opts := seed.DefaultOptions(now)
	d := seed.Generate(opts)

	require.Len(t, d.Issues, opts.Issues)
	require.Len(t, d.CodeComments, opts.CodeComments)
	require.Len(t, d.Packs, opts.Packs)
	require.Len(t, d.Builds, opts.Builds)
	require.Contains(t, d.Refs, "main")

	earliest := now.AddDate(0, 0, -28)
	for _, issue := range d.Issues {
		require.False(t, issue.CreatedAt.After(now), "issue %d", issue.ID)
		require.False(t, issue.CreatedAt.Before(earliest), "issue %d", issue.ID)
		if issue.Status == entity.StatusClosed {
			require.Len(t, issue.FixCommits, 1)
		}
	}
	for _, c := range d.CodeComments {
		require.Len(t, c.ReplierIDs, len(c.Replies))
		require.Len(t, c.CommitHash, 40)
	}
	for _, b := range d.Builds {
		require.True(t, (b.Branch == "") != (b.Tag == ""), "build %d has exactly one of branch and tag", b.ID)
	}
}

func TestPopulate(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	s, err := seed.Populate(ctx, db, seed.DefaultOptions(now))
	require.NoError(t, err)
	require.Equal(t, 50, s.Issues)
	require.Equal(t, "5 users, 12 commits, 50 issues, 30 code comments, 20 packs, 40 builds", s.String())

	// Seeding twice replaces rows instead of duplicating them.
	_, err = seed.Populate(ctx, db, seed.DefaultOptions(now))
	require.NoError(t, err)

	c := compiler.New(
		compiler.WithUserResolver(db.Users()),
		compiler.WithCommitResolver(db.Commits()),
		compiler.WithClock(testutil.Clock(now)),
		compiler.WithLocation(time.UTC),
	)
	q, err := compiler.Compile(ctx, c, entity.IssueSchema, `"Number" is greater than "0"`, compiler.QueryContext{})
	require.NoError(t, err)
	issues, err := db.Issues().Search(ctx, q, 0)
	require.NoError(t, err)
	require.Len(t, issues, 50)

	bq, err := compiler.Compile(ctx, c, entity.BuildSchema, `on commit "main" or not (on commit "main")`, compiler.QueryContext{})
	require.NoError(t, err)
	builds, err := db.Builds().Search(ctx, bq, 0)
	require.NoError(t, err)
	require.Len(t, builds, 40)
}

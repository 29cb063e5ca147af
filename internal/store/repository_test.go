package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/sieve/internal/compiler"
	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/entity"
	"github.com/zjrosen/sieve/internal/store"
	"github.com/zjrosen/sieve/internal/testutil"
)

func standardDB(t *testing.T) *store.DB {
	t.Helper()
	db := testutil.NewTestDB(t)
	testutil.NewBuilder(t, db).WithStandardTestData().Build()
	return db
}

func storeCompiler(db *store.DB) *compiler.Compiler {
	return compiler.New(
		compiler.WithUserResolver(db.Users()),
		compiler.WithCommitResolver(db.Commits()),
		compiler.WithClock(testutil.Clock(testutil.Day0.Add(12*time.Hour))),
		compiler.WithLocation(time.UTC),
	)
}

func issueIDs(issues []*entity.Issue) []int64 {
	ids := make([]int64, len(issues))
	for i, issue := range issues {
		ids[i] = issue.ID
	}
	return ids
}

func searchIssues(t *testing.T, db *store.DB, input string) []int64 {
	t.Helper()
	me := compiler.User{ID: testutil.Alice, Login: "alice"}
	qc := compiler.QueryContext{CurrentUser: compiler.CurrentUserFor(&me), WithCurrentUserCriteria: true}
	q, err := compiler.Compile(context.Background(), storeCompiler(db), entity.IssueSchema, input, qc)
	require.NoError(t, err, input)
	issues, err := db.Issues().Search(context.Background(), q, 0)
	require.NoError(t, err, input)
	return issueIDs(issues)
}

func TestRepository_GetRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	want := testutil.NewIssue(5,
		testutil.Title("Crash"), testutil.Priority(2), testutil.Labels("bug"),
		testutil.SubmittedBy(testutil.Bob), testutil.FixedIn(testutil.CommitA),
	)
	require.NoError(t, db.Issues().Save(ctx, want))

	got, err := db.Issues().Get(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = db.Issues().Get(ctx, 6)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRepository_SaveReplaces(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Issues().Save(ctx, testutil.NewIssue(1, testutil.Labels("bug", "ui"))))
	require.NoError(t, db.Issues().Save(ctx, testutil.NewIssue(1, testutil.Labels("docs"))))

	var labels int
	require.NoError(t, db.Connection().QueryRow(`SELECT COUNT(*) FROM issue_labels WHERE issue_id = 1`).Scan(&labels))
	require.Equal(t, 1, labels)
	require.Equal(t, []int64{1}, searchIssues(t, db, `"Label" is "docs"`))
	require.Empty(t, searchIssues(t, db, `"Label" is "bug"`))
}

func TestRepository_Delete(t *testing.T) {
	db := standardDB(t)
	ctx := context.Background()
	require.NoError(t, db.Issues().Delete(ctx, 1))
	require.NoError(t, db.Issues().Delete(ctx, 99))

	_, err := db.Issues().Get(ctx, 1)
	require.ErrorIs(t, err, store.ErrNotFound)

	var links int
	require.NoError(t, db.Connection().QueryRow(`SELECT COUNT(*) FROM issue_labels WHERE issue_id = 1`).Scan(&links))
	require.Zero(t, links)
}

func TestRepository_SearchIssues(t *testing.T) {
	db := standardDB(t)
	tests := []struct {
		input string
		want  []int64
	}{
		{`"Status" is "Open"`, []int64{1, 4}},
		{`"Status" is "Open" and "Priority" is greater than "2"`, []int64{1}},
		{`"Status" is "Open" or "Status" is "Closed" order by "Priority" desc`, []int64{1, 3, 4}},
		{`not ("Status" is "Open")`, []int64{2, 3}},
		{`"Priority" is empty`, []int64{4}},
		{`"Priority" is not "3"`, []int64{2, 3, 4}},
		{`"Milestone" is empty`, []int64{2, 4}},
		{`"Milestone" is not "1.0"`, []int64{2, 4}},
		{`"Label" is "auth"`, []int64{1, 3}},
		{`"Title" contains "FIX"`, []int64{1}},
		{`~auth~`, []int64{3}},
		{`"Spent Time" is greater than "1d"`, []int64{3}},
		{`"Estimated Time" is "1d"`, []int64{1}},
		{`"CreatedDate" is since "2024-01-01"`, []int64{2, 3, 4}},
		{`"CreatedDate" is less than "today"`, []int64{1}},
		{`"Last Activity Date" is not empty`, []int64{3}},
		{`"Vote Count" is greater than "0"`, []int64{2}},
		{`submitted by me`, []int64{1, 3}},
		{`mentioned me`, []int64{4}},
		{`mentioned "bob"`, []int64{1, 4}},
		{`mentioned "Bob Marley"`, []int64{1, 4}},
		{`fixed in commit "main"`, []int64{1}},
		{`fixed in commit "a1b2c3"`, []int64{1}},
		{`order by "CreatedDate" desc, "Number" asc`, []int64{3, 4, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.want, searchIssues(t, db, tt.input))
		})
	}
}

func TestRepository_SearchLimit(t *testing.T) {
	db := standardDB(t)
	q, err := compiler.Compile(context.Background(), storeCompiler(db), entity.IssueSchema, `order by "Number" desc`, compiler.QueryContext{})
	require.NoError(t, err)
	issues, err := db.Issues().Search(context.Background(), q, 2)
	require.NoError(t, err)
	require.Equal(t, []int64{4, 3}, issueIDs(issues))
}

func TestRepository_SearchCodeComments(t *testing.T) {
	db := standardDB(t)
	me := compiler.User{ID: testutil.Bob, Login: "bob"}
	qc := compiler.QueryContext{CurrentUser: compiler.CurrentUserFor(&me), WithCurrentUserCriteria: true}

	tests := []struct {
		input string
		want  []int64
	}{
		{`unresolved`, []int64{1, 3}},
		{`replied by me`, []int64{1, 3}},
		{`created by me`, []int64{2}},
		{`mentioned me`, []int64{1}},
		{`on commit "v1.0"`, []int64{2}},
		{`"Path" is "internal/store/db.go" and "Reply Count" is greater than "1"`, []int64{3}},
		{`"Reply" is empty`, []int64{2}},
		{`~ROOT~`, []int64{2}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q, err := compiler.Compile(context.Background(), storeCompiler(db), entity.CodeCommentSchema, tt.input, qc)
			require.NoError(t, err)
			comments, err := db.CodeComments().Search(context.Background(), q, 0)
			require.NoError(t, err)
			ids := make([]int64, len(comments))
			for i, c := range comments {
				ids[i] = c.ID
			}
			require.Equal(t, tt.want, ids)
		})
	}
}

func TestRepository_SearchPacksAndBuilds(t *testing.T) {
	db := standardDB(t)
	ctx := context.Background()
	c := storeCompiler(db)

	pq, err := compiler.Compile(ctx, c, entity.PackSchema, `"Type" is "npm" or published by "bob"`, compiler.QueryContext{})
	require.NoError(t, err)
	packs, err := db.Packs().Search(ctx, pq, 0)
	require.NoError(t, err)
	require.Len(t, packs, 2)

	bq, err := compiler.Compile(ctx, c, entity.BuildSchema, `failed and "Tag" is not empty`, compiler.QueryContext{})
	require.NoError(t, err)
	builds, err := db.Builds().Search(ctx, bq, 0)
	require.NoError(t, err)
	require.Len(t, builds, 1)
	require.Equal(t, "release", builds[0].Job)
}

func TestRepository_UpdatedSince(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := db.Issues()

	rev, err := repo.Revision(ctx)
	require.NoError(t, err)
	require.Zero(t, rev)

	require.NoError(t, repo.Save(ctx, testutil.NewIssue(1), testutil.NewIssue(2)))
	changed, rev1, err := repo.UpdatedSince(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, issueIDs(changed))
	require.Equal(t, int64(1), rev1)

	require.NoError(t, repo.Save(ctx, testutil.NewIssue(1, testutil.Title("edited"))))
	changed, rev2, err := repo.UpdatedSince(ctx, rev1)
	require.NoError(t, err)
	require.Equal(t, []int64{1}, issueIDs(changed))
	require.Equal(t, "edited", changed[0].Title)
	require.Equal(t, int64(2), rev2)

	changed, rev3, err := repo.UpdatedSince(ctx, rev2)
	require.NoError(t, err)
	require.Empty(t, changed)
	require.Equal(t, rev2, rev3)
}

func TestRepository_RevisionSurvivesDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := db.Issues()

	require.NoError(t, repo.Save(ctx, testutil.NewIssue(1)))
	require.NoError(t, repo.Save(ctx, testutil.NewIssue(2)))
	before, err := repo.Revision(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), before)

	require.NoError(t, repo.Delete(ctx, 2))
	rev, err := repo.Revision(ctx)
	require.NoError(t, err)
	require.Equal(t, before, rev)

	require.NoError(t, repo.Save(ctx, testutil.NewIssue(3)))
	changed, latest, err := repo.UpdatedSince(ctx, before)
	require.NoError(t, err)
	require.Equal(t, []int64{3}, issueIDs(changed))
	require.Equal(t, int64(3), latest)

	// Counters are per table.
	other, err := db.Packs().Revision(ctx)
	require.NoError(t, err)
	require.Zero(t, other)
}

// Every generated criteria tree selects a stored record exactly when the
// tree matches the record in memory.
func TestRepository_SearchAgreesWithMatches(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	t.Run("issues", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			issue := testutil.IssueGen().Draw(rt, "issue")
			issue.ID = 1
			c := testutil.CriteriaGen(entity.IssueSchema, testutil.Values[*entity.Issue], 3).Draw(rt, "criteria")
			checkAgreement(rt, ctx, db.Issues(), issue, c)
		})
	})

	t.Run("code comments", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			comment := testutil.CodeCommentGen().Draw(rt, "comment")
			comment.ID = 1
			c := testutil.CriteriaGen(entity.CodeCommentSchema, testutil.Values[*entity.CodeComment], 3).Draw(rt, "criteria")
			checkAgreement(rt, ctx, db.CodeComments(), comment, c)
		})
	})

	t.Run("packs", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			pack := testutil.PackGen().Draw(rt, "pack")
			pack.ID = 1
			c := testutil.CriteriaGen(entity.PackSchema, testutil.Values[*entity.Pack], 3).Draw(rt, "criteria")
			checkAgreement(rt, ctx, db.Packs(), pack, c)
		})
	})

	t.Run("builds", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			build := testutil.BuildGen().Draw(rt, "build")
			build.ID = 1
			c := testutil.CriteriaGen(entity.BuildSchema, testutil.Values[*entity.Build], 3).Draw(rt, "criteria")
			checkAgreement(rt, ctx, db.Builds(), build, c)
		})
	})
}

func checkAgreement[R any](t *rapid.T, ctx context.Context, repo *store.Repository[R], rec R, c criteria.Criteria[R]) {
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	q, err := criteria.NewEntityQuery(repo.Schema(), c)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	found, err := repo.Search(ctx, q, 0)
	if err != nil {
		t.Fatalf("search %s: %v", q.Predicate().SQL, err)
	}
	if want := q.Matches(rec); want != (len(found) == 1) {
		t.Fatalf("in-memory match %v, SQL returned %d rows for %s %v", want, len(found), q.Predicate().SQL, q.Predicate().Args)
	}
}

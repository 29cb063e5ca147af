package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/sieve/internal/compiler"
	"github.com/zjrosen/sieve/internal/store"
	"github.com/zjrosen/sieve/internal/testutil"
)

func TestUserRepository_ResolveUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.NewBuilder(t, db).WithStandardUsers().Build()
	users := db.Users()
	ctx := context.Background()

	tests := []struct {
		name string
		want int64
	}{
		{"alice", testutil.Alice},
		{"ALICE", testutil.Alice},
		{"Bob Marley", testutil.Bob},
		{"carol", testutil.Carol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := users.ResolveUser(ctx, tt.name)
			require.NoError(t, err)
			require.Equal(t, tt.want, u.ID)
		})
	}

	_, err := users.ResolveUser(ctx, "bob marley")
	require.ErrorIs(t, err, compiler.ErrNotFound)
	_, err = users.ResolveUser(ctx, "")
	require.ErrorIs(t, err, compiler.ErrNotFound)
}

func TestUserRepository_SaveUpserts(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	users := db.Users()

	require.NoError(t, users.Save(ctx, compiler.User{ID: 1, Login: "alice", Name: "Alice"}))
	require.NoError(t, users.Save(ctx, compiler.User{ID: 1, Login: "alice2", Name: "Alice B"}))

	u, err := users.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, compiler.User{ID: 1, Login: "alice2", Name: "Alice B"}, u)

	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = users.Get(ctx, 2)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCommitRepository_ResolveCommit(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.NewBuilder(t, db).
		WithCommit(testutil.CommitA, "main").
		WithCommit(testutil.CommitB, "v1.0").
		WithCommit("abcd000000000000000000000000000000000001").
		WithCommit("abcd000000000000000000000000000000000002").
		Build()
	commits := db.Commits()

	tests := []struct {
		revision string
		want     string
	}{
		{testutil.CommitA, testutil.CommitA},
		{"main", testutil.CommitA},
		{"v1.0", testutil.CommitB},
		{"a1b2", testutil.CommitA},
		{"B2C3D4", testutil.CommitB},
		{"abcd000000000000000000000000000000000001", "abcd000000000000000000000000000000000001"},
	}
	for _, tt := range tests {
		t.Run(tt.revision, func(t *testing.T) {
			hash, err := commits.ResolveCommit(ctx, tt.revision)
			require.NoError(t, err)
			require.Equal(t, tt.want, hash)
		})
	}

	_, err := commits.ResolveCommit(ctx, "abcd")
	require.ErrorIs(t, err, store.ErrAmbiguousRevision)

	_, err = commits.ResolveCommit(ctx, "a1b")
	require.ErrorIs(t, err, compiler.ErrNotFound, "prefixes shorter than four characters are not resolved")

	_, err = commits.ResolveCommit(ctx, "feature/x")
	require.ErrorIs(t, err, compiler.ErrNotFound)
}

func TestCommitRepository_RefMoves(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.NewBuilder(t, db).WithCommit(testutil.CommitA, "main").WithCommit(testutil.CommitB).Build()

	require.NoError(t, db.Commits().SetRef(ctx, "main", testutil.CommitB))
	hash, err := db.Commits().ResolveCommit(ctx, "main")
	require.NoError(t, err)
	require.Equal(t, testutil.CommitB, hash)
}

func TestSavedFilterRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	filters := db.SavedFilters()

	owner := testutil.Alice
	f := &store.SavedFilter{Name: "my open", Entity: "issue", Query: `"Status" is "Open"`, OwnerID: &owner, Notify: true}
	require.NoError(t, filters.Save(ctx, f))
	require.NotEmpty(t, f.GUID)
	guid := f.GUID

	got, err := filters.Get(ctx, "issue", "my open")
	require.NoError(t, err)
	require.Equal(t, guid, got.GUID)
	require.Equal(t, &owner, got.OwnerID)
	require.True(t, got.Notify)

	// Saving under the same name updates in place.
	update := &store.SavedFilter{Name: "my open", Entity: "issue", Query: `"Status" is "Closed"`}
	require.NoError(t, filters.Save(ctx, update))
	require.Equal(t, guid, update.GUID)

	got, err = filters.Get(ctx, "issue", "my open")
	require.NoError(t, err)
	require.Equal(t, `"Status" is "Closed"`, got.Query)
	require.Nil(t, got.OwnerID)

	require.NoError(t, filters.Save(ctx, &store.SavedFilter{Name: "failing", Entity: "build", Query: "failed"}))

	all, err := filters.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "build", all[0].Entity)

	issues, err := filters.List(ctx, "issue")
	require.NoError(t, err)
	require.Len(t, issues, 1)

	require.NoError(t, filters.Delete(ctx, guid))
	_, err = filters.Get(ctx, "issue", "my open")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, filters.Delete(ctx, guid), store.ErrNotFound)
}

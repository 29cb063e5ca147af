package testutil

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/sieve/internal/compiler"
	"github.com/zjrosen/sieve/internal/entity"
	"github.com/zjrosen/sieve/internal/store"
)

type refData struct {
	name string
	hash string
}

// Builder accumulates test data and inserts it in the correct order.
type Builder struct {
	t        testing.TB
	db       *store.DB
	users    []compiler.User
	commits  []store.Commit
	refs     []refData
	issues   []*entity.Issue
	comments []*entity.CodeComment
	packs    []*entity.Pack
	builds   []*entity.Build
}

// NewBuilder creates a builder for the given test database.
func NewBuilder(t testing.TB, db *store.DB) *Builder {
	t.Helper()
	return &Builder{t: t, db: db}
}

// WithUser adds a user account.
func (b *Builder) WithUser(id int64, login, name string) *Builder {
	b.users = append(b.users, compiler.User{ID: id, Login: login, Name: name})
	return b
}

// WithCommit adds a commit and the refs pointing at it.
func (b *Builder) WithCommit(hash string, refs ...string) *Builder {
	b.commits = append(b.commits, store.Commit{Hash: hash, CommittedAt: Day0})
	for _, name := range refs {
		b.refs = append(b.refs, refData{name: name, hash: hash})
	}
	return b
}

// WithIssue adds an issue with optional configuration.
func (b *Builder) WithIssue(id int64, opts ...IssueOption) *Builder {
	b.issues = append(b.issues, NewIssue(id, opts...))
	return b
}

// WithCodeComment adds a code comment with optional configuration.
func (b *Builder) WithCodeComment(id int64, opts ...CommentOption) *Builder {
	b.comments = append(b.comments, NewCodeComment(id, opts...))
	return b
}

// WithPack adds a package.
func (b *Builder) WithPack(p *entity.Pack) *Builder {
	b.packs = append(b.packs, p)
	return b
}

// WithBuild adds a build.
func (b *Builder) WithBuild(build *entity.Build) *Builder {
	b.builds = append(b.builds, build)
	return b
}

// Build inserts all accumulated data into the database.
func (b *Builder) Build() {
	b.t.Helper()
	ctx := context.Background()
	// Insert in dependency order: users → commits → refs → records
	require.NoError(b.t, b.db.Users().Save(ctx, b.users...))
	require.NoError(b.t, b.db.Commits().Save(ctx, b.commits...))
	for _, ref := range b.refs {
		require.NoError(b.t, b.db.Commits().SetRef(ctx, ref.name, ref.hash))
	}
	require.NoError(b.t, b.db.Issues().Save(ctx, b.issues...))
	require.NoError(b.t, b.db.CodeComments().Save(ctx, b.comments...))
	require.NoError(b.t, b.db.Packs().Save(ctx, b.packs...))
	require.NoError(b.t, b.db.Builds().Save(ctx, b.builds...))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

// Clock returns a fixed clock for the compiler.
func Clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

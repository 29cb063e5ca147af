package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/sieve/internal/store"
	"github.com/zjrosen/sieve/internal/testutil"
)

func TestNewDB_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "sieve.db")
	db, err := store.NewDB(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, info.IsDir())
	require.Equal(t, os.FileMode(0o700), info.Mode().Perm())
	require.Equal(t, path, db.Path())
}

func TestNewDB_Pragmas(t *testing.T) {
	db := testutil.NewTestDB(t)

	var journalMode string
	require.NoError(t, db.Connection().QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	require.Equal(t, "wal", journalMode)

	var foreignKeys int
	require.NoError(t, db.Connection().QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	require.Equal(t, 1, foreignKeys)

	var busyTimeout int
	require.NoError(t, db.Connection().QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	require.Equal(t, 5000, busyTimeout)
}

func TestNewDB_MigratesSchema(t *testing.T) {
	db := testutil.NewTestDB(t)

	for _, table := range []string{
		"issues", "issue_labels", "issue_milestones", "issue_mentions", "issue_fix_commits",
		"code_comments", "code_comment_replies", "packs", "pack_labels", "builds",
		"users", "commits", "refs", "saved_filters", "revisions", "schema_migrations",
	} {
		var name string
		err := db.Connection().QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		require.NoError(t, err, table)
	}

	var version int
	var dirty bool
	require.NoError(t, db.Connection().QueryRow("SELECT version, dirty FROM schema_migrations").Scan(&version, &dirty))
	require.Equal(t, 4, version)
	require.False(t, dirty)
}

func TestNewDB_ReopenKeepsDataAndBacksUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sieve.db")

	db, err := store.NewDB(path)
	require.NoError(t, err)
	testutil.NewBuilder(t, db).WithIssue(1, testutil.Title("kept")).Build()
	require.NoError(t, db.Close())

	_, err = os.Stat(path + ".bak")
	require.True(t, os.IsNotExist(err), "first open has nothing to back up")

	db, err = store.NewDB(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	issue, err := db.Issues().Get(t.Context(), 1)
	require.NoError(t, err)
	require.Equal(t, "kept", issue.Title)

	_, err = os.Stat(path + ".bak")
	require.NoError(t, err)
}

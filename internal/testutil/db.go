// Package testutil provides record builders, database setup and rapid
// generators for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/sieve/internal/store"
)

// NewTestDB opens a migrated database in a temporary directory. It is
// closed when the test finishes.
func NewTestDB(t testing.TB) *store.DB {
	t.Helper()
	db, err := store.NewDB(filepath.Join(t.TempDir(), "sieve.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

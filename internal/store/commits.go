package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zjrosen/sieve/internal/compiler"
)

// minPrefix is the shortest abbreviated hash accepted as a revision.
const minPrefix = 4

// ErrAmbiguousRevision is returned when an abbreviated hash matches more
// than one commit.
var ErrAmbiguousRevision = errors.New("ambiguous revision")

// Commit is a known commit.
type Commit struct {
	Hash        string    `json:"hash" yaml:"hash"`
	Message     string    `json:"message,omitempty" yaml:"message,omitempty"`
	CommittedAt time.Time `json:"committed_at" yaml:"committed_at"`
}

// CommitRepository stores commits and refs and resolves revisions.
type CommitRepository struct {
	db *sql.DB
}

var _ compiler.CommitResolver = (*CommitRepository)(nil)

// Save inserts or replaces commits.
func (r *CommitRepository) Save(ctx context.Context, commits ...Commit) error {
	for _, c := range commits {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO commits (hash, message, committed_at) VALUES (?, ?, ?)
			 ON CONFLICT(hash) DO UPDATE SET message = excluded.message, committed_at = excluded.committed_at`,
			strings.ToLower(c.Hash), c.Message, c.CommittedAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("failed to save commit %s: %w", c.Hash, err)
		}
	}
	return nil
}

// SetRef points the branch or tag name at hash.
func (r *CommitRepository) SetRef(ctx context.Context, name, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refs (name, commit_hash) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET commit_hash = excluded.commit_hash`,
		name, strings.ToLower(hash),
	)
	if err != nil {
		return fmt.Errorf("failed to set ref %s: %w", name, err)
	}
	return nil
}

// ResolveCommit resolves a full hash, a ref name or a unique abbreviated
// hash to a full hash. It returns compiler.ErrNotFound when nothing
// matches.
func (r *CommitRepository) ResolveCommit(ctx context.Context, revision string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx,
		`SELECT hash FROM commits WHERE hash = ?
		 UNION ALL
		 SELECT commit_hash FROM refs WHERE name = ?
		 LIMIT 1`,
		strings.ToLower(revision), revision,
	).Scan(&hash)
	if err == nil {
		return hash, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to resolve revision %q: %w", revision, err)
	}

	if len(revision) < minPrefix || !isHex(revision) {
		return "", fmt.Errorf("revision %q: %w", revision, compiler.ErrNotFound)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT hash FROM commits WHERE substr(hash, 1, ?) = ? LIMIT 2`,
		len(revision), strings.ToLower(revision),
	)
	if err != nil {
		return "", fmt.Errorf("failed to resolve revision %q: %w", revision, err)
	}
	defer func() { _ = rows.Close() }()

	var matches []string
	for rows.Next() {
		if err := rows.Scan(&hash); err != nil {
			return "", err
		}
		matches = append(matches, hash)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("revision %q: %w", revision, compiler.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("revision %q: %w", revision, ErrAmbiguousRevision)
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

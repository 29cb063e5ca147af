// Package store persists records in SQLite and executes compiled queries
// against them.
package store

import (
	"database/sql"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/sieve/internal/entity"
	"github.com/zjrosen/sieve/internal/log"
	"github.com/zjrosen/sieve/internal/tracing"
)

// DB is an open sieve database.
type DB struct {
	conn   *sql.DB
	path   string
	tracer trace.Tracer
}

// Option configures a DB.
type Option func(*DB)

// WithTracer sets the tracer for search spans.
func WithTracer(t trace.Tracer) Option {
	return func(db *DB) { db.tracer = t }
}

// NewDB opens the database at path, creating it and its parent directory
// when missing, and applies pending migrations. An existing file is copied
// to path.bak before migrating.
func NewDB(path string, opts ...Option) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	if err := backup(path); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := runMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn, path: path, tracer: tracing.Noop()}
	for _, opt := range opts {
		opt(db)
	}
	log.Info(log.CatDB, "Opened database", "path", path)
	return db, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(wal)")
	q.Set("_txlock", "immediate")
	return "file:" + filepath.ToSlash(path) + "?" + q.Encode()
}

// backup copies an existing database file to path.bak.
func backup(path string) error {
	src, err := os.Open(path) //nolint:gosec // G304: path is the configured database
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database for backup: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(path+".bak", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600) //nolint:gosec // G304: derived from the database path
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return dst.Close()
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Connection returns the underlying pool.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Issues returns the issue repository.
func (db *DB) Issues() *Repository[*entity.Issue] {
	return NewRepository(db, entity.IssueSchema)
}

// CodeComments returns the code comment repository.
func (db *DB) CodeComments() *Repository[*entity.CodeComment] {
	return NewRepository(db, entity.CodeCommentSchema)
}

// Packs returns the package repository.
func (db *DB) Packs() *Repository[*entity.Pack] {
	return NewRepository(db, entity.PackSchema)
}

// Builds returns the build repository.
func (db *DB) Builds() *Repository[*entity.Build] {
	return NewRepository(db, entity.BuildSchema)
}

// Users returns the user repository.
func (db *DB) Users() *UserRepository {
	return &UserRepository{db: db.conn}
}

// Commits returns the commit repository.
func (db *DB) Commits() *CommitRepository {
	return &CommitRepository{db: db.conn}
}

// SavedFilters returns the saved filter repository.
func (db *DB) SavedFilters() *SavedFilterRepository {
	return &SavedFilterRepository{db: db.conn}
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/log"
	"github.com/zjrosen/sieve/internal/metrics"
	"github.com/zjrosen/sieve/internal/tracing"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Repository stores the records of one entity type. Column values are
// written from the schema's own accessors, so a stored row always agrees
// with in-memory evaluation of the record it came from.
type Repository[R any] struct {
	conn    *sql.DB
	schema  *criteria.Schema[R]
	tracer  trace.Tracer
	scalars []*criteria.Field[R]
	links   []*criteria.Field[R]
}

// NewRepository returns the repository for schema.
func NewRepository[R any](db *DB, schema *criteria.Schema[R]) *Repository[R] {
	r := &Repository[R]{conn: db.conn, schema: schema, tracer: db.tracer}
	for _, f := range schema.AllFields() {
		if f.Collection() {
			r.links = append(r.links, f)
		} else {
			r.scalars = append(r.scalars, f)
		}
	}
	return r
}

// Schema returns the field registry of the repository.
func (r *Repository[R]) Schema() *criteria.Schema[R] {
	return r.schema
}

// Save inserts or replaces records. All records of one call share a
// revision number. Revisions only grow, also across deletes.
func (r *Repository[R]) Save(ctx context.Context, records ...R) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var rev int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO revisions (entity_table, rev) VALUES (?, 1)
		 ON CONFLICT(entity_table) DO UPDATE SET rev = revisions.rev + 1
		 RETURNING rev`,
		r.schema.Table(),
	).Scan(&rev)
	if err != nil {
		return fmt.Errorf("failed to bump revision: %w", err)
	}

	insert := r.insertSQL()
	for _, rec := range records {
		id := r.schema.ID(rec)
		if err := r.deleteTx(ctx, tx, id); err != nil {
			return err
		}

		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode %s %d: %w", r.schema.Entity(), id, err)
		}
		args := make([]any, 0, len(r.scalars)+3)
		args = append(args, id)
		for _, f := range r.scalars {
			if v, ok := f.Get(rec); ok {
				args = append(args, v.Arg())
			} else {
				args = append(args, nil)
			}
		}
		args = append(args, string(payload), rev)
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("failed to insert %s %d: %w", r.schema.Entity(), id, err)
		}

		for _, f := range r.links {
			l := f.Link
			stmt := `INSERT INTO ` + l.Table + ` (` + l.Owner + `, ` + l.Column + `) VALUES (?, ?)`
			for _, v := range f.Each(rec) {
				if _, err := tx.ExecContext(ctx, stmt, id, v.Arg()); err != nil {
					return fmt.Errorf("failed to insert %s of %s %d: %w", f.Name, r.schema.Entity(), id, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	log.Debug(log.CatDB, "Saved records", "entity", r.schema.Entity(), "count", len(records), "rev", rev)
	return nil
}

func (r *Repository[R]) insertSQL() string {
	cols := []string{r.schema.Key()}
	for _, f := range r.scalars {
		cols = append(cols, f.Column)
	}
	cols = append(cols, "payload", "rev")
	return `INSERT INTO ` + r.schema.Table() + ` (` + strings.Join(cols, ", ") + `) VALUES (?` +
		strings.Repeat(", ?", len(cols)-1) + `)`
}

func (r *Repository[R]) deleteTx(ctx context.Context, tx *sql.Tx, id int64) error {
	for _, f := range r.links {
		l := f.Link
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+l.Table+` WHERE `+l.Owner+` = ?`, id); err != nil {
			return fmt.Errorf("failed to clear %s: %w", f.Name, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+r.schema.Table()+` WHERE `+r.schema.Key()+` = ?`, id); err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", r.schema.Entity(), id, err)
	}
	return nil
}

// Delete removes the record with id. Deleting a missing record is not an
// error.
func (r *Repository[R]) Delete(ctx context.Context, id int64) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := r.deleteTx(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Get loads the record with id.
func (r *Repository[R]) Get(ctx context.Context, id int64) (R, error) {
	var zero R
	var payload string
	err := r.conn.QueryRowContext(ctx,
		`SELECT payload FROM `+r.schema.Table()+` WHERE `+r.schema.Key()+` = ?`, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%s %d: %w", r.schema.Entity(), id, ErrNotFound)
	}
	if err != nil {
		return zero, fmt.Errorf("failed to load %s %d: %w", r.schema.Entity(), id, err)
	}
	return r.decode(payload)
}

// Search returns the records matching q in query order. A limit of zero
// or less returns every match.
func (r *Repository[R]) Search(ctx context.Context, q *criteria.EntityQuery[R], limit int) (records []R, err error) {
	ctx, span := r.tracer.Start(ctx, tracing.SpanSearch, trace.WithAttributes(
		attribute.String(tracing.AttrEntity, r.schema.Entity()),
		attribute.String(tracing.AttrCanonical, q.String()),
	))
	start := time.Now()
	defer func() {
		span.SetAttributes(attribute.Int(tracing.AttrResultCount, len(records)))
		tracing.End(span, err)
		metrics.ObserveSearch(r.schema.Entity(), start)
	}()

	alias := r.schema.Alias()
	var sb strings.Builder
	sb.WriteString(`SELECT ` + alias + `.payload FROM ` + r.schema.Table() + ` ` + alias)
	pred := q.Predicate()
	args := pred.Args
	if pred.SQL != "" {
		sb.WriteString(` WHERE ` + pred.SQL)
	}
	sb.WriteString(` ORDER BY ` + q.OrderBy())
	if limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args[:len(args):len(args)], limit)
	}

	log.Debug(log.CatDB, "Search", "entity", r.schema.Entity(), "sql", sb.String())
	rows, err := r.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", r.schema.Entity(), err)
	}
	records, err = r.scan(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", r.schema.Entity(), err)
	}
	return records, nil
}

// UpdatedSince returns the records saved after revision since, oldest
// first, and the newest revision seen. The revision is since itself when
// nothing changed.
func (r *Repository[R]) UpdatedSince(ctx context.Context, since int64) ([]R, int64, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT payload, rev FROM `+r.schema.Table()+` WHERE rev > ? ORDER BY rev, `+r.schema.Key(), since)
	if err != nil {
		return nil, since, fmt.Errorf("failed to read %s changes: %w", r.schema.Entity(), err)
	}
	defer func() { _ = rows.Close() }()

	latest := since
	var records []R
	for rows.Next() {
		var payload string
		var rev int64
		if err := rows.Scan(&payload, &rev); err != nil {
			return nil, since, err
		}
		rec, err := r.decode(payload)
		if err != nil {
			return nil, since, err
		}
		records = append(records, rec)
		latest = max(latest, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, since, err
	}
	return records, latest, nil
}

// Revision returns the last revision handed out by Save, zero before the
// first save.
func (r *Repository[R]) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := r.conn.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(rev), 0) FROM revisions WHERE entity_table = ?`, r.schema.Table(),
	).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s revision: %w", r.schema.Entity(), err)
	}
	return rev, nil
}

func (r *Repository[R]) scan(rows *sql.Rows) ([]R, error) {
	defer func() { _ = rows.Close() }()
	var records []R
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		rec, err := r.decode(payload)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Repository[R]) decode(payload string) (R, error) {
	var rec R
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return rec, fmt.Errorf("failed to decode %s: %w", r.schema.Entity(), err)
	}
	return rec, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SavedFilter is a named query. Query holds the canonical query text.
type SavedFilter struct {
	GUID      string
	Name      string
	Entity    string
	Query     string
	OwnerID   *int64 // nil for shared filters
	Notify    bool   // evaluated against record events
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SavedFilterRepository persists saved filters.
type SavedFilterRepository struct {
	db *sql.DB
}

// Save inserts f, or updates the filter with the same entity and name.
// A GUID is assigned to new filters.
func (r *SavedFilterRepository) Save(ctx context.Context, f *SavedFilter) error {
	now := time.Now()
	if f.GUID == "" {
		f.GUID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now

	var created int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO saved_filters (guid, name, entity, query, owner_id, notify, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(entity, name) DO UPDATE SET
			query = excluded.query, owner_id = excluded.owner_id,
			notify = excluded.notify, updated_at = excluded.updated_at
		 RETURNING guid, created_at`,
		f.GUID, f.Name, f.Entity, f.Query, f.OwnerID, f.Notify, f.CreatedAt.UnixMilli(), f.UpdatedAt.UnixMilli(),
	).Scan(&f.GUID, &created)
	if err != nil {
		return fmt.Errorf("failed to save filter %q: %w", f.Name, err)
	}
	f.CreatedAt = time.UnixMilli(created)
	return nil
}

// Get loads the filter named name of entity.
func (r *SavedFilterRepository) Get(ctx context.Context, entity, name string) (*SavedFilter, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT guid, name, entity, query, owner_id, notify, created_at, updated_at
		 FROM saved_filters WHERE entity = ? AND name = ?`,
		entity, name,
	)
	f, err := scanSavedFilter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("filter %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load filter %q: %w", name, err)
	}
	return f, nil
}

// List returns the filters of entity, or of every entity when entity is
// empty, ordered by entity and name.
func (r *SavedFilterRepository) List(ctx context.Context, entity string) ([]*SavedFilter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT guid, name, entity, query, owner_id, notify, created_at, updated_at
		 FROM saved_filters WHERE ? = '' OR entity = ? ORDER BY entity, name`,
		entity, entity,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list filters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var filters []*SavedFilter
	for rows.Next() {
		f, err := scanSavedFilter(rows)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

// Delete removes the filter with guid.
func (r *SavedFilterRepository) Delete(ctx context.Context, guid string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saved_filters WHERE guid = ?`, guid)
	if err != nil {
		return fmt.Errorf("failed to delete filter %s: %w", guid, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("filter %s: %w", guid, ErrNotFound)
	}
	return nil
}

func scanSavedFilter(scanner interface{ Scan(...any) error }) (*SavedFilter, error) {
	var f SavedFilter
	var created, updated int64
	if err := scanner.Scan(&f.GUID, &f.Name, &f.Entity, &f.Query, &f.OwnerID, &f.Notify, &created, &updated); err != nil {
		return nil, err
	}
	f.CreatedAt = time.UnixMilli(created)
	f.UpdatedAt = time.UnixMilli(updated)
	return &f, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zjrosen/sieve/internal/compiler"
)

// UserRepository stores user accounts and resolves user references in
// queries.
type UserRepository struct {
	db *sql.DB
}

var _ compiler.UserResolver = (*UserRepository)(nil)

// Save inserts or replaces users.
func (r *UserRepository) Save(ctx context.Context, users ...compiler.User) error {
	for _, u := range users {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO users (id, login, name) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET login = excluded.login, name = excluded.name`,
			u.ID, u.Login, u.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to save user %q: %w", u.Login, err)
		}
	}
	return nil
}

// ResolveUser finds a user by login, ignoring case, or else by exact
// display name. It returns compiler.ErrNotFound when no user matches.
func (r *UserRepository) ResolveUser(ctx context.Context, name string) (compiler.User, error) {
	var u compiler.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, login, name FROM users WHERE login = ?
		 UNION ALL
		 SELECT id, login, name FROM users WHERE name = ? AND name <> ''
		 LIMIT 1`,
		name, name,
	).Scan(&u.ID, &u.Login, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return compiler.User{}, fmt.Errorf("user %q: %w", name, compiler.ErrNotFound)
	}
	if err != nil {
		return compiler.User{}, fmt.Errorf("failed to resolve user %q: %w", name, err)
	}
	return u, nil
}

// Get loads the user with id.
func (r *UserRepository) Get(ctx context.Context, id int64) (compiler.User, error) {
	u := compiler.User{ID: id}
	err := r.db.QueryRowContext(ctx, `SELECT login, name FROM users WHERE id = ?`, id).Scan(&u.Login, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return compiler.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return compiler.User{}, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	return u, nil
}

// List returns every user ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]compiler.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, login, name FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []compiler.User
	for rows.Next() {
		var u compiler.User
		if err := rows.Scan(&u.ID, &u.Login, &u.Name); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

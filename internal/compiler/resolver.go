package compiler

import (
	"context"
	"errors"
)

// ErrNotFound is returned by resolvers when a reference names nothing.
// Any other resolver error is treated as an infrastructure failure.
var ErrNotFound = errors.New("not found")

// User is a resolved user account.
type User struct {
	ID    int64  `json:"id" yaml:"id"`
	Login string `json:"login" yaml:"login"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
}

// UserResolver resolves a login or display name to a user.
type UserResolver interface {
	ResolveUser(ctx context.Context, name string) (User, error)
}

// CommitResolver resolves a revision (full or abbreviated hash, branch or
// tag) to a full commit hash.
type CommitResolver interface {
	ResolveCommit(ctx context.Context, revision string) (string, error)
}

// CurrentUserProvider returns the user running a query. ok is false for
// anonymous queries.
type CurrentUserProvider interface {
	CurrentUser(ctx context.Context) (user User, ok bool, err error)
}

// QueryContext carries per-query compile settings.
type QueryContext struct {
	// CurrentUser supplies the user for "me" operators. May be nil.
	CurrentUser CurrentUserProvider
	// WithCurrentUserCriteria permits operators such as "mentioned me".
	// Contexts evaluated for many users, such as saved filters shared by a
	// team, leave it off.
	WithCurrentUserCriteria bool
}

// UserResolverFunc adapts a function to UserResolver.
type UserResolverFunc func(ctx context.Context, name string) (User, error)

func (f UserResolverFunc) ResolveUser(ctx context.Context, name string) (User, error) {
	return f(ctx, name)
}

// CommitResolverFunc adapts a function to CommitResolver.
type CommitResolverFunc func(ctx context.Context, revision string) (string, error)

func (f CommitResolverFunc) ResolveCommit(ctx context.Context, revision string) (string, error) {
	return f(ctx, revision)
}

// StaticUser is a CurrentUserProvider for a fixed user. A nil *StaticUser
// is anonymous.
type StaticUser struct {
	User User
}

func (s *StaticUser) CurrentUser(ctx context.Context) (User, bool, error) {
	if s == nil {
		return User{}, false, nil
	}
	return s.User, true, nil
}

// CurrentUserFor returns a provider for u, or an anonymous provider when u
// is nil.
func CurrentUserFor(u *User) CurrentUserProvider {
	if u == nil {
		return (*StaticUser)(nil)
	}
	return &StaticUser{User: *u}
}

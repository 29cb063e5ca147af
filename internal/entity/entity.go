// Package entity defines the searchable record types and their field
// registries.
package entity

import (
	"time"

	"github.com/zjrosen/sieve/internal/criteria"
)

// Entity type names.
const (
	IssueEntity       = "issue"
	CodeCommentEntity = "codecomment"
	PackEntity        = "pack"
	BuildEntity       = "build"
)

// Names returns every entity type name.
func Names() []string {
	return []string{IssueEntity, CodeCommentEntity, PackEntity, BuildEntity}
}

// Field operator sets shared by the registries.
var (
	textOps       = ops(is, isNot, contains)
	equalityOps   = ops(is, isNot)
	numberOps     = ops(is, isNot, greater, less)
	optNumberOps  = ops(is, isNot, greater, less, isEmpty, isNotEmpty)
	dateOps       = ops(since, until, greater, less)
	optDateOps    = ops(since, until, greater, less, isEmpty, isNotEmpty)
	durationOps   = ops(is, greater, less)
	collectionOps = ops(is, isNot, isEmpty, isNotEmpty)
	optTextOps    = ops(is, isNot, contains, isEmpty, isNotEmpty)
)

func text(s string) (criteria.Value, bool) {
	return criteria.String(s), true
}

func optText(s string) (criteria.Value, bool) {
	if s == "" {
		return criteria.Value{}, false
	}
	return criteria.String(s), true
}

func integer(n int64) (criteria.Value, bool) {
	return criteria.Int(n), true
}

func optInteger(n *int64) (criteria.Value, bool) {
	if n == nil {
		return criteria.Value{}, false
	}
	return criteria.Int(*n), true
}

func date(t time.Time) (criteria.Value, bool) {
	if t.IsZero() {
		return criteria.Value{}, false
	}
	return criteria.Date(t), true
}

func optDate(t *time.Time) (criteria.Value, bool) {
	if t == nil {
		return criteria.Value{}, false
	}
	return date(*t)
}

func user(id int64) (criteria.Value, bool) {
	if id == 0 {
		return criteria.Value{}, false
	}
	return criteria.User(id), true
}

func commit(hash string) (criteria.Value, bool) {
	if hash == "" {
		return criteria.Value{}, false
	}
	return criteria.Commit(hash), true
}

func texts(ss []string) []criteria.Value {
	out := make([]criteria.Value, len(ss))
	for i, s := range ss {
		out[i] = criteria.String(s)
	}
	return out
}

func users(ids []int64) []criteria.Value {
	out := make([]criteria.Value, len(ids))
	for i, id := range ids {
		out[i] = criteria.User(id)
	}
	return out
}

func commits(hashes []string) []criteria.Value {
	out := make([]criteria.Value, len(hashes))
	for i, h := range hashes {
		out[i] = criteria.Commit(h)
	}
	return out
}

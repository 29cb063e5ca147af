package entity

import (
	"time"

	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/query"
)

// CodeComment is a review comment attached to a file of a commit.
type CodeComment struct {
	ID           int64      `json:"id" yaml:"id"`
	Content      string     `json:"content" yaml:"content"`
	Path         string     `json:"path" yaml:"path"`
	CommitHash   string     `json:"commit_hash" yaml:"commit_hash"`
	Replies      []string   `json:"replies,omitempty" yaml:"replies,omitempty"`
	Resolved     bool       `json:"resolved" yaml:"resolved"`
	CreatedAt    time.Time  `json:"created_at" yaml:"created_at"`
	LastActivity *time.Time `json:"last_activity,omitempty" yaml:"last_activity,omitempty"`
	CreatorID    int64      `json:"creator_id,omitempty" yaml:"creator_id,omitempty"`
	ReplierIDs   []int64    `json:"replier_ids,omitempty" yaml:"replier_ids,omitempty"`
	Mentions     []int64    `json:"mentions,omitempty" yaml:"mentions,omitempty"`
}

// CodeCommentSchema is the field registry of code comments.
var CodeCommentSchema = criteria.MustSchema(criteria.Definition[*CodeComment]{
	Entity: CodeCommentEntity,
	Table:  "code_comments",
	Alias:  "cc",
	Key:    "id",
	ID:     func(r *CodeComment) int64 { return r.ID },
	Fields: []criteria.Field[*CodeComment]{
		{
			Name: "Content", Kind: criteria.KindString, Operators: ops(contains), Column: "content",
			Get: func(r *CodeComment) (criteria.Value, bool) { return text(r.Content) },
		},
		{
			Name: "Reply", Kind: criteria.KindString, Operators: ops(contains, isEmpty, isNotEmpty),
			Link: &criteria.Link{Table: "code_comment_replies", Owner: "comment_id", Column: "content"},
			Each: func(r *CodeComment) []criteria.Value { return texts(r.Replies) },
		},
		{
			Name: "Path", Kind: criteria.KindString, Operators: equalityOps, Column: "path",
			Get: func(r *CodeComment) (criteria.Value, bool) { return text(r.Path) },
		},
		{
			Name: "Reply Count", Kind: criteria.KindInt, Operators: numberOps, Column: "reply_count",
			Get: func(r *CodeComment) (criteria.Value, bool) { return integer(int64(len(r.Replies))) },
		},
		{
			Name: "Create Date", Kind: criteria.KindDate, Operators: dateOps, Column: "created_at",
			Get: func(r *CodeComment) (criteria.Value, bool) { return date(r.CreatedAt) },
		},
		{
			Name: "Last Activity Date", Kind: criteria.KindDate, Operators: optDateOps, Column: "last_activity",
			Get: func(r *CodeComment) (criteria.Value, bool) { return optDate(r.LastActivity) },
		},
		{
			Name: "Resolved", Kind: criteria.KindBool, Hidden: true, Column: "resolved",
			Get: func(r *CodeComment) (criteria.Value, bool) { return criteria.Bool(r.Resolved), true },
		},
		{
			Name: "Commit", Kind: criteria.KindCommit, Hidden: true, Column: "commit_hash",
			Get: func(r *CodeComment) (criteria.Value, bool) { return commit(r.CommitHash) },
		},
		{
			Name: "Creator", Kind: criteria.KindUser, Hidden: true, Column: "creator_id",
			Get: func(r *CodeComment) (criteria.Value, bool) { return user(r.CreatorID) },
		},
		{
			Name: "Repliers", Kind: criteria.KindUser, Hidden: true,
			Link: &criteria.Link{Table: "code_comment_repliers", Owner: "comment_id", Column: "user_id"},
			Each: func(r *CodeComment) []criteria.Value { return users(r.ReplierIDs) },
		},
		{
			Name: "Mentions", Kind: criteria.KindUser, Hidden: true,
			Link: &criteria.Link{Table: "code_comment_mentions", Owner: "comment_id", Column: "user_id"},
			Each: func(r *CodeComment) []criteria.Value { return users(r.Mentions) },
		},
	},
	Rules: []criteria.Rule{
		{Operator: query.OpResolved, Field: "Resolved", Test: is, Value: criteria.Bool(true)},
		{Operator: query.OpUnresolved, Field: "Resolved", Test: is, Value: criteria.Bool(false)},
		{Operator: query.OpMentionedMe, Field: "Mentions", Test: is, Subject: criteria.SubjectCurrentUser},
		{Operator: query.OpCreatedByMe, Field: "Creator", Test: is, Subject: criteria.SubjectCurrentUser},
		{Operator: query.OpRepliedByMe, Field: "Repliers", Test: is, Subject: criteria.SubjectCurrentUser},
		{Operator: query.OpMentioned, Field: "Mentions", Test: is, Subject: criteria.SubjectUser},
		{Operator: query.OpCreatedBy, Field: "Creator", Test: is, Subject: criteria.SubjectUser},
		{Operator: query.OpRepliedBy, Field: "Repliers", Test: is, Subject: criteria.SubjectUser},
		{Operator: query.OpOnCommit, Field: "Commit", Test: is, Subject: criteria.SubjectCommit},
	},
	Fuzzy: []string{"Content", "Path"},
	Order: []string{"Create Date", "Last Activity Date", "Reply Count", "Path"},
})

package entity

import (
	"time"

	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/query"
)

// Issue states.
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusClosed     = "Closed"
)

// Issue is a tracked issue.
type Issue struct {
	ID            int64      `json:"id" yaml:"id"`
	Number        int64      `json:"number" yaml:"number"`
	Title         string     `json:"title" yaml:"title"`
	Description   string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status        string     `json:"status" yaml:"status"`
	Priority      *int64     `json:"priority,omitempty" yaml:"priority,omitempty"`
	Milestones    []string   `json:"milestones,omitempty" yaml:"milestones,omitempty"`
	Labels        []string   `json:"labels,omitempty" yaml:"labels,omitempty"`
	SpentTime     int64      `json:"spent_time" yaml:"spent_time"` // Working minutes
	EstimatedTime *int64     `json:"estimated_time,omitempty" yaml:"estimated_time,omitempty"`
	CreatedAt     time.Time  `json:"created_at" yaml:"created_at"`
	LastActivity  *time.Time `json:"last_activity,omitempty" yaml:"last_activity,omitempty"`
	VoteCount     int64      `json:"vote_count" yaml:"vote_count"`
	CommentCount  int64      `json:"comment_count" yaml:"comment_count"`
	SubmitterID   int64      `json:"submitter_id,omitempty" yaml:"submitter_id,omitempty"`
	Mentions      []int64    `json:"mentions,omitempty" yaml:"mentions,omitempty"`
	FixCommits    []string   `json:"fix_commits,omitempty" yaml:"fix_commits,omitempty"`
}

// IssueSchema is the field registry of issues.
var IssueSchema = criteria.MustSchema(criteria.Definition[*Issue]{
	Entity: IssueEntity,
	Table:  "issues",
	Alias:  "i",
	Key:    "id",
	ID:     func(r *Issue) int64 { return r.ID },
	Fields: []criteria.Field[*Issue]{
		{
			Name: "Number", Kind: criteria.KindInt, Operators: numberOps, Column: "number",
			Get: func(r *Issue) (criteria.Value, bool) { return integer(r.Number) },
		},
		{
			Name: "Title", Kind: criteria.KindString, Operators: textOps, Column: "title",
			Get: func(r *Issue) (criteria.Value, bool) { return text(r.Title) },
		},
		{
			Name: "Description", Kind: criteria.KindString, Operators: ops(contains, isEmpty, isNotEmpty), Column: "description",
			Get: func(r *Issue) (criteria.Value, bool) { return optText(r.Description) },
		},
		{
			Name: "Status", Kind: criteria.KindEnum, Operators: equalityOps, Column: "status",
			Enum: []string{StatusOpen, StatusInProgress, StatusClosed},
			Get:  func(r *Issue) (criteria.Value, bool) { return criteria.Enum(r.Status), true },
		},
		{
			Name: "Priority", Kind: criteria.KindInt, Operators: optNumberOps, Column: "priority",
			Get: func(r *Issue) (criteria.Value, bool) { return optInteger(r.Priority) },
		},
		{
			Name: "Milestone", Kind: criteria.KindString, Operators: collectionOps,
			Link: &criteria.Link{Table: "issue_milestones", Owner: "issue_id", Column: "name"},
			Each: func(r *Issue) []criteria.Value { return texts(r.Milestones) },
		},
		{
			Name: "Label", Kind: criteria.KindString, Operators: collectionOps,
			Link: &criteria.Link{Table: "issue_labels", Owner: "issue_id", Column: "name"},
			Each: func(r *Issue) []criteria.Value { return texts(r.Labels) },
		},
		{
			Name: "Spent Time", Kind: criteria.KindDuration, Operators: durationOps, Column: "spent_time",
			Get: func(r *Issue) (criteria.Value, bool) { return criteria.Duration(r.SpentTime), true },
		},
		{
			Name: "Estimated Time", Kind: criteria.KindDuration, Operators: ops(is, greater, less, isEmpty, isNotEmpty), Column: "estimated_time",
			Get: func(r *Issue) (criteria.Value, bool) {
				if r.EstimatedTime == nil {
					return criteria.Value{}, false
				}
				return criteria.Duration(*r.EstimatedTime), true
			},
		},
		{
			Name: "CreatedDate", Kind: criteria.KindDate, Operators: dateOps, Column: "created_at",
			Get: func(r *Issue) (criteria.Value, bool) { return date(r.CreatedAt) },
		},
		{
			Name: "Last Activity Date", Kind: criteria.KindDate, Operators: optDateOps, Column: "last_activity",
			Get: func(r *Issue) (criteria.Value, bool) { return optDate(r.LastActivity) },
		},
		{
			Name: "Vote Count", Kind: criteria.KindInt, Operators: numberOps, Column: "vote_count",
			Get: func(r *Issue) (criteria.Value, bool) { return integer(r.VoteCount) },
		},
		{
			Name: "Comment Count", Kind: criteria.KindInt, Operators: numberOps, Column: "comment_count",
			Get: func(r *Issue) (criteria.Value, bool) { return integer(r.CommentCount) },
		},
		{
			Name: "Submitter", Kind: criteria.KindUser, Hidden: true, Column: "submitter_id",
			Get: func(r *Issue) (criteria.Value, bool) { return user(r.SubmitterID) },
		},
		{
			Name: "Mentions", Kind: criteria.KindUser, Hidden: true,
			Link: &criteria.Link{Table: "issue_mentions", Owner: "issue_id", Column: "user_id"},
			Each: func(r *Issue) []criteria.Value { return users(r.Mentions) },
		},
		{
			Name: "Fix Commits", Kind: criteria.KindCommit, Hidden: true,
			Link: &criteria.Link{Table: "issue_fix_commits", Owner: "issue_id", Column: "commit_hash"},
			Each: func(r *Issue) []criteria.Value { return commits(r.FixCommits) },
		},
	},
	Rules: []criteria.Rule{
		{Operator: query.OpSubmittedByMe, Field: "Submitter", Test: is, Subject: criteria.SubjectCurrentUser},
		{Operator: query.OpMentionedMe, Field: "Mentions", Test: is, Subject: criteria.SubjectCurrentUser},
		{Operator: query.OpSubmittedBy, Field: "Submitter", Test: is, Subject: criteria.SubjectUser},
		{Operator: query.OpMentioned, Field: "Mentions", Test: is, Subject: criteria.SubjectUser},
		{Operator: query.OpFixedInCommit, Field: "Fix Commits", Test: is, Subject: criteria.SubjectCommit},
	},
	Fuzzy: []string{"Title"},
	Order: []string{
		"Number", "Title", "Status", "Priority", "Spent Time", "Estimated Time",
		"CreatedDate", "Last Activity Date", "Vote Count", "Comment Count",
	},
})

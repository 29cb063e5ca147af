package testutil

import (
	"time"

	"github.com/zjrosen/sieve/internal/entity"
)

// Day0 is the reference date of fixtures: 2024-01-01 00:00 UTC.
var Day0 = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// IssueOption configures an issue during builder setup.
type IssueOption func(*entity.Issue)

// NewIssue returns an open issue with sensible defaults.
func NewIssue(id int64, opts ...IssueOption) *entity.Issue {
	issue := &entity.Issue{
		ID:        id,
		Number:    id,
		Title:     "Issue " + itoa(id),
		Status:    entity.StatusOpen,
		CreatedAt: Day0,
	}
	for _, opt := range opts {
		opt(issue)
	}
	return issue
}

// Title sets the issue title.
func Title(s string) IssueOption {
	return func(i *entity.Issue) { i.Title = s }
}

// Description sets the issue description.
func Description(s string) IssueOption {
	return func(i *entity.Issue) { i.Description = s }
}

// Status sets the issue status.
func Status(s string) IssueOption {
	return func(i *entity.Issue) { i.Status = s }
}

// Priority sets the issue priority.
func Priority(p int64) IssueOption {
	return func(i *entity.Issue) { i.Priority = &p }
}

// Milestones sets the scheduled milestones.
func Milestones(names ...string) IssueOption {
	return func(i *entity.Issue) { i.Milestones = names }
}

// Labels sets the issue labels.
func Labels(names ...string) IssueOption {
	return func(i *entity.Issue) { i.Labels = names }
}

// SpentTime sets the logged working minutes.
func SpentTime(minutes int64) IssueOption {
	return func(i *entity.Issue) { i.SpentTime = minutes }
}

// EstimatedTime sets the estimate in working minutes.
func EstimatedTime(minutes int64) IssueOption {
	return func(i *entity.Issue) { i.EstimatedTime = &minutes }
}

// CreatedAt sets the creation time.
func CreatedAt(t time.Time) IssueOption {
	return func(i *entity.Issue) { i.CreatedAt = t }
}

// LastActivity sets the last activity time.
func LastActivity(t time.Time) IssueOption {
	return func(i *entity.Issue) { i.LastActivity = &t }
}

// Votes sets the vote count.
func Votes(n int64) IssueOption {
	return func(i *entity.Issue) { i.VoteCount = n }
}

// SubmittedBy sets the submitter.
func SubmittedBy(userID int64) IssueOption {
	return func(i *entity.Issue) { i.SubmitterID = userID }
}

// Mentioning sets the mentioned users.
func Mentioning(userIDs ...int64) IssueOption {
	return func(i *entity.Issue) { i.Mentions = userIDs }
}

// FixedIn sets the fixing commits.
func FixedIn(hashes ...string) IssueOption {
	return func(i *entity.Issue) { i.FixCommits = hashes }
}

// CommentOption configures a code comment during builder setup.
type CommentOption func(*entity.CodeComment)

// NewCodeComment returns an unresolved comment with sensible defaults.
func NewCodeComment(id int64, opts ...CommentOption) *entity.CodeComment {
	c := &entity.CodeComment{
		ID:        id,
		Content:   "Comment " + itoa(id),
		Path:      "main.go",
		CreatedAt: Day0,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Content sets the comment text.
func Content(s string) CommentOption {
	return func(c *entity.CodeComment) { c.Content = s }
}

// Path sets the commented file.
func Path(s string) CommentOption {
	return func(c *entity.CodeComment) { c.Path = s }
}

// OnCommit sets the commented commit.
func OnCommit(hash string) CommentOption {
	return func(c *entity.CodeComment) { c.CommitHash = hash }
}

// Reply appends a reply by userID.
func Reply(userID int64, text string) CommentOption {
	return func(c *entity.CodeComment) {
		c.Replies = append(c.Replies, text)
		c.ReplierIDs = append(c.ReplierIDs, userID)
	}
}

// Resolved marks the comment resolved.
func Resolved() CommentOption {
	return func(c *entity.CodeComment) { c.Resolved = true }
}

// CreatedBy sets the comment author.
func CreatedBy(userID int64) CommentOption {
	return func(c *entity.CodeComment) { c.CreatorID = userID }
}

// Mentions sets the mentioned users.
func Mentions(userIDs ...int64) CommentOption {
	return func(c *entity.CodeComment) { c.Mentions = userIDs }
}

// CommentedAt sets the creation time.
func CommentedAt(t time.Time) CommentOption {
	return func(c *entity.CodeComment) { c.CreatedAt = t }
}

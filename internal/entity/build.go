package entity

import (
	"time"

	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/query"
)

// Build results.
const (
	BuildWaiting    = "Waiting"
	BuildRunning    = "Running"
	BuildSuccessful = "Successful"
	BuildFailed     = "Failed"
	BuildCancelled  = "Cancelled"
	BuildTimedOut   = "Timed Out"
)

// Build is one run of a CI job.
type Build struct {
	ID          int64     `json:"id" yaml:"id"`
	Number      int64     `json:"number" yaml:"number"`
	Job         string    `json:"job" yaml:"job"`
	Status      string    `json:"status" yaml:"status"`
	Branch      string    `json:"branch,omitempty" yaml:"branch,omitempty"`
	Tag         string    `json:"tag,omitempty" yaml:"tag,omitempty"`
	CommitHash  string    `json:"commit_hash" yaml:"commit_hash"`
	SubmittedAt time.Time `json:"submitted_at" yaml:"submitted_at"`
	SubmitterID int64     `json:"submitter_id,omitempty" yaml:"submitter_id,omitempty"`
}

// BuildSchema is the field registry of builds.
var BuildSchema = criteria.MustSchema(criteria.Definition[*Build]{
	Entity: BuildEntity,
	Table:  "builds",
	Alias:  "b",
	Key:    "id",
	ID:     func(r *Build) int64 { return r.ID },
	Fields: []criteria.Field[*Build]{
		{
			Name: "Number", Kind: criteria.KindInt, Operators: numberOps, Column: "number",
			Get: func(r *Build) (criteria.Value, bool) { return integer(r.Number) },
		},
		{
			Name: "Job", Kind: criteria.KindString, Operators: textOps, Column: "job",
			Get: func(r *Build) (criteria.Value, bool) { return text(r.Job) },
		},
		{
			Name: "Status", Kind: criteria.KindEnum, Operators: equalityOps, Column: "status",
			Enum: []string{BuildWaiting, BuildRunning, BuildSuccessful, BuildFailed, BuildCancelled, BuildTimedOut},
			Get:  func(r *Build) (criteria.Value, bool) { return criteria.Enum(r.Status), true },
		},
		{
			Name: "Branch", Kind: criteria.KindString, Operators: optTextOps, Column: "branch",
			Get: func(r *Build) (criteria.Value, bool) { return optText(r.Branch) },
		},
		{
			Name: "Tag", Kind: criteria.KindString, Operators: optTextOps, Column: "tag",
			Get: func(r *Build) (criteria.Value, bool) { return optText(r.Tag) },
		},
		{
			Name: "Submit Date", Kind: criteria.KindDate, Operators: dateOps, Column: "submitted_at",
			Get: func(r *Build) (criteria.Value, bool) { return date(r.SubmittedAt) },
		},
		{
			Name: "Commit", Kind: criteria.KindCommit, Hidden: true, Column: "commit_hash",
			Get: func(r *Build) (criteria.Value, bool) { return commit(r.CommitHash) },
		},
		{
			Name: "Submitter", Kind: criteria.KindUser, Hidden: true, Column: "submitter_id",
			Get: func(r *Build) (criteria.Value, bool) { return user(r.SubmitterID) },
		},
	},
	Rules: []criteria.Rule{
		{Operator: query.OpSuccessful, Field: "Status", Test: is, Value: criteria.Enum(BuildSuccessful)},
		{Operator: query.OpFailed, Field: "Status", Test: is, Value: criteria.Enum(BuildFailed)},
		{Operator: query.OpCancelled, Field: "Status", Test: is, Value: criteria.Enum(BuildCancelled)},
		{Operator: query.OpTimedOut, Field: "Status", Test: is, Value: criteria.Enum(BuildTimedOut)},
		{Operator: query.OpOnCommit, Field: "Commit", Test: is, Subject: criteria.SubjectCommit},
		{Operator: query.OpSubmittedByMe, Field: "Submitter", Test: is, Subject: criteria.SubjectCurrentUser},
		{Operator: query.OpSubmittedBy, Field: "Submitter", Test: is, Subject: criteria.SubjectUser},
	},
	Fuzzy: []string{"Job"},
	Order: []string{"Number", "Job", "Status", "Submit Date"},
})

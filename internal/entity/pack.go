package entity

import (
	"time"

	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/query"
)

// Package types.
const (
	PackContainerImage = "Container Image"
	PackHelmChart      = "Helm Chart"
	PackMaven          = "Maven"
	PackNpm            = "npm"
	PackNuGet          = "NuGet"
	PackPyPI           = "PyPI"
)

// Pack is a published package version.
type Pack struct {
	ID          int64     `json:"id" yaml:"id"`
	Type        string    `json:"type" yaml:"type"`
	Name        string    `json:"name" yaml:"name"`
	Version     string    `json:"version" yaml:"version"`
	Labels      []string  `json:"labels,omitempty" yaml:"labels,omitempty"`
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`
	TotalSize   int64     `json:"total_size" yaml:"total_size"` // Bytes
	PublisherID int64     `json:"publisher_id,omitempty" yaml:"publisher_id,omitempty"`
}

// PackSchema is the field registry of packages.
var PackSchema = criteria.MustSchema(criteria.Definition[*Pack]{
	Entity: PackEntity,
	Table:  "packs",
	Alias:  "p",
	Key:    "id",
	ID:     func(r *Pack) int64 { return r.ID },
	Fields: []criteria.Field[*Pack]{
		{
			Name: "Type", Kind: criteria.KindEnum, Operators: equalityOps, Column: "type",
			Enum: []string{PackContainerImage, PackHelmChart, PackMaven, PackNpm, PackNuGet, PackPyPI},
			Get:  func(r *Pack) (criteria.Value, bool) { return criteria.Enum(r.Type), true },
		},
		{
			Name: "Name", Kind: criteria.KindString, Operators: textOps, Column: "name",
			Get: func(r *Pack) (criteria.Value, bool) { return text(r.Name) },
		},
		{
			Name: "Version", Kind: criteria.KindString, Operators: textOps, Column: "version",
			Get: func(r *Pack) (criteria.Value, bool) { return text(r.Version) },
		},
		{
			Name: "Label", Kind: criteria.KindString, Operators: collectionOps,
			Link: &criteria.Link{Table: "pack_labels", Owner: "pack_id", Column: "name"},
			Each: func(r *Pack) []criteria.Value { return texts(r.Labels) },
		},
		{
			Name: "Publish Date", Kind: criteria.KindDate, Operators: dateOps, Column: "published_at",
			Get: func(r *Pack) (criteria.Value, bool) { return date(r.PublishedAt) },
		},
		{
			Name: "Total Size", Kind: criteria.KindInt, Operators: ops(is, greater, less), Column: "total_size",
			Get: func(r *Pack) (criteria.Value, bool) { return integer(r.TotalSize) },
		},
		{
			Name: "Publisher", Kind: criteria.KindUser, Hidden: true, Column: "publisher_id",
			Get: func(r *Pack) (criteria.Value, bool) { return user(r.PublisherID) },
		},
	},
	Rules: []criteria.Rule{
		{Operator: query.OpPublishedByMe, Field: "Publisher", Test: is, Subject: criteria.SubjectCurrentUser},
		{Operator: query.OpPublishedBy, Field: "Publisher", Test: is, Subject: criteria.SubjectUser},
	},
	Fuzzy: []string{"Name", "Version"},
	Order: []string{"Type", "Name", "Version", "Publish Date", "Total Size"},
})

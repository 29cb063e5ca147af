// Package seed populates a database with a deterministic demo dataset for
// trying queries from the command line and the playground.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/zjrosen/sieve/internal/compiler"
	"github.com/zjrosen/sieve/internal/entity"
	"github.com/zjrosen/sieve/internal/log"
	"github.com/zjrosen/sieve/internal/store"
)

// Options controls the size and randomness of the dataset.
type Options struct {
	Seed         uint64
	Issues       int
	CodeComments int
	Packs        int
	Builds       int
	// Now anchors generated dates, which fall in the four weeks before it.
	Now time.Time
}

// DefaultOptions returns a small dataset anchored at now.
func DefaultOptions(now time.Time) Options {
	return Options{
		Seed:         1,
		Issues:       50,
		CodeComments: 30,
		Packs:        20,
		Builds:       40,
		Now:          now,
	}
}

// Summary counts the rows written.
type Summary struct {
	Users        int
	Commits      int
	Issues       int
	CodeComments int
	Packs        int
	Builds       int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d users, %d commits, %d issues, %d code comments, %d packs, %d builds",
		s.Users, s.Commits, s.Issues, s.CodeComments, s.Packs, s.Builds)
}

// Dataset is a generated set of records.
type Dataset struct {
	Users        []compiler.User
	Commits      []store.Commit
	Refs         map[string]string // ref name -> commit hash
	Issues       []*entity.Issue
	CodeComments []*entity.CodeComment
	Packs        []*entity.Pack
	Builds       []*entity.Build
}

// Summary counts the records of d.
func (d *Dataset) Summary() Summary {
	return Summary{
		Users:        len(d.Users),
		Commits:      len(d.Commits),
		Issues:       len(d.Issues),
		CodeComments: len(d.CodeComments),
		Packs:        len(d.Packs),
		Builds:       len(d.Builds),
	}
}

var (
	users = []compiler.User{
		{ID: 1, Login: "alice", Name: "Alice Liddell"},
		{ID: 2, Login: "bob", Name: "Bob Marley"},
		{ID: 3, Login: "carol", Name: "Carol Danvers"},
		{ID: 4, Login: "dave", Name: "Dave Lister"},
		{ID: 5, Login: "erin", Name: "Erin Brockovich"},
	}
	verbs      = []string{"Fix", "Add", "Remove", "Refactor", "Document", "Speed up", "Test"}
	subjects   = []string{"login", "search", "export", "settings page", "webhooks", "build cache", "query parser", "audit log"}
	labels     = []string{"bug", "feature", "docs", "perf", "security", "good first issue"}
	milestones = []string{"1.0", "1.1", "2.0"}
	paths      = []string{"cmd/root.go", "internal/store/db.go", "internal/query/parser.go", "web/app.ts", "README.md"}
	remarks    = []string{"Please handle the error here", "Nit: rename this", "Why is this exported?", "Can we add a test?", "This allocates on every call"}
	replies    = []string{"Done", "Agreed", "Fixed in the next commit", "Good catch", "Will do"}
	jobs       = []string{"ci", "lint", "release", "nightly"}
	branches   = []string{"main", "develop", "feature/x"}
	packNames  = []string{"sieve", "sieve-ui", "sieve-cli", "query-kit"}
)

// Generate builds a dataset. The same options always give the same data.
func Generate(opts Options) *Dataset {
	g := &generator{
		r:   rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		now: opts.Now,
	}
	d := &Dataset{Users: users, Refs: map[string]string{}}

	for i := range 12 {
		d.Commits = append(d.Commits, store.Commit{
			Hash:        g.hash(),
			Message:     g.pick(verbs) + " " + g.pick(subjects),
			CommittedAt: g.date().Add(time.Duration(i) * time.Minute),
		})
	}
	for i, name := range append(append([]string{}, branches...), "v1.0", "v1.1") {
		d.Refs[name] = d.Commits[len(d.Commits)-1-i].Hash
	}

	for id := int64(1); id <= int64(opts.Issues); id++ {
		d.Issues = append(d.Issues, g.issue(id, d.Commits))
	}
	for id := int64(1); id <= int64(opts.CodeComments); id++ {
		d.CodeComments = append(d.CodeComments, g.codeComment(id, d.Commits))
	}
	for id := int64(1); id <= int64(opts.Packs); id++ {
		d.Packs = append(d.Packs, g.pack(id))
	}
	for id := int64(1); id <= int64(opts.Builds); id++ {
		d.Builds = append(d.Builds, g.build(id, d.Commits))
	}
	return d
}

// Populate generates a dataset and writes it to db.
func Populate(ctx context.Context, db *store.DB, opts Options) (Summary, error) {
	d := Generate(opts)
	if err := Write(ctx, db, d); err != nil {
		return Summary{}, err
	}
	s := d.Summary()
	log.Info(log.CatDB, "Seeded database", "path", db.Path(), "summary", s.String())
	return s, nil
}

// Write stores d in db, replacing records with the same ids.
func Write(ctx context.Context, db *store.DB, d *Dataset) error {
	if err := db.Users().Save(ctx, d.Users...); err != nil {
		return err
	}
	if err := db.Commits().Save(ctx, d.Commits...); err != nil {
		return err
	}
	for name, hash := range d.Refs {
		if err := db.Commits().SetRef(ctx, name, hash); err != nil {
			return err
		}
	}
	if err := db.Issues().Save(ctx, d.Issues...); err != nil {
		return err
	}
	if err := db.CodeComments().Save(ctx, d.CodeComments...); err != nil {
		return err
	}
	if err := db.Packs().Save(ctx, d.Packs...); err != nil {
		return err
	}
	return db.Builds().Save(ctx, d.Builds...)
}

type generator struct {
	r   *rand.Rand
	now time.Time
}

func (g *generator) pick(items []string) string {
	return items[g.r.IntN(len(items))]
}

func (g *generator) some(items []string, limit int) []string {
	n := g.r.IntN(limit + 1)
	var out []string
	for _, i := range g.r.Perm(len(items))[:min(n, len(items))] {
		out = append(out, items[i])
	}
	return out
}

func (g *generator) user() int64 {
	return users[g.r.IntN(len(users))].ID
}

func (g *generator) someUsers(limit int) []int64 {
	n := g.r.IntN(limit + 1)
	var out []int64
	for _, i := range g.r.Perm(len(users))[:n] {
		out = append(out, users[i].ID)
	}
	return out
}

// date returns a time in the four weeks before now, truncated to minutes.
func (g *generator) date() time.Time {
	back := time.Duration(g.r.IntN(28*24*60)) * time.Minute
	return g.now.Add(-back).Truncate(time.Minute)
}

func (g *generator) hash() string {
	var sb strings.Builder
	for range 5 {
		fmt.Fprintf(&sb, "%08x", g.r.Uint32())
	}
	return sb.String()
}

func (g *generator) chance(p float64) bool {
	return g.r.Float64() < p
}

func (g *generator) issue(id int64, commits []store.Commit) *entity.Issue {
	created := g.date()
	issue := &entity.Issue{
		ID:           id,
		Number:       id,
		Title:        g.pick(verbs) + " " + g.pick(subjects),
		Status:       g.pick([]string{entity.StatusOpen, entity.StatusInProgress, entity.StatusClosed}),
		Milestones:   g.some(milestones, 1),
		Labels:       g.some(labels, 2),
		SpentTime:    int64(g.r.IntN(5)) * 90,
		CreatedAt:    created,
		VoteCount:    int64(g.r.IntN(10)),
		CommentCount: int64(g.r.IntN(6)),
		SubmitterID:  g.user(),
		Mentions:     g.someUsers(2),
	}
	if g.chance(0.5) {
		issue.Description = "Steps to reproduce: " + g.pick(subjects)
	}
	if g.chance(0.8) {
		p := int64(g.r.IntN(4))
		issue.Priority = &p
	}
	if g.chance(0.6) {
		e := int64(g.r.IntN(3)+1) * 480
		issue.EstimatedTime = &e
	}
	if g.chance(0.7) {
		a := created.Add(time.Duration(g.r.IntN(72)) * time.Hour)
		issue.LastActivity = &a
	}
	if issue.Status == entity.StatusClosed {
		issue.FixCommits = []string{commits[g.r.IntN(len(commits))].Hash}
	}
	return issue
}

func (g *generator) codeComment(id int64, commits []store.Commit) *entity.CodeComment {
	c := &entity.CodeComment{
		ID:         id,
		Content:    g.pick(remarks),
		Path:       g.pick(paths),
		CommitHash: commits[g.r.IntN(len(commits))].Hash,
		Resolved:   g.chance(0.4),
		CreatedAt:  g.date(),
		CreatorID:  g.user(),
		Mentions:   g.someUsers(1),
	}
	for range g.r.IntN(3) {
		c.Replies = append(c.Replies, g.pick(replies))
		c.ReplierIDs = append(c.ReplierIDs, g.user())
	}
	if len(c.Replies) > 0 {
		a := c.CreatedAt.Add(time.Duration(g.r.IntN(48)+1) * time.Hour)
		c.LastActivity = &a
	}
	return c
}

func (g *generator) pack(id int64) *entity.Pack {
	return &entity.Pack{
		ID:          id,
		Type:        g.pick([]string{entity.PackContainerImage, entity.PackHelmChart, entity.PackMaven, entity.PackNpm, entity.PackNuGet, entity.PackPyPI}),
		Name:        g.pick(packNames),
		Version:     fmt.Sprintf("%d.%d.%d", g.r.IntN(3), g.r.IntN(10), g.r.IntN(10)),
		Labels:      g.some([]string{"latest", "stable", "beta"}, 1),
		PublishedAt: g.date(),
		TotalSize:   int64(g.r.IntN(64<<20) + 1024),
		PublisherID: g.user(),
	}
}

func (g *generator) build(id int64, commits []store.Commit) *entity.Build {
	b := &entity.Build{
		ID:          id,
		Number:      id,
		Job:         g.pick(jobs),
		Status:      g.pick([]string{entity.BuildWaiting, entity.BuildRunning, entity.BuildSuccessful, entity.BuildSuccessful, entity.BuildFailed, entity.BuildCancelled, entity.BuildTimedOut}),
		CommitHash:  commits[g.r.IntN(len(commits))].Hash,
		SubmittedAt: g.date(),
		SubmitterID: g.user(),
	}
	if b.Job == "release" {
		b.Tag = g.pick([]string{"v1.0", "v1.1"})
	} else {
		b.Branch = g.pick(branches)
	}
	return b
}

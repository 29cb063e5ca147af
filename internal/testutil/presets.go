package testutil

import "github.com/zjrosen/sieve/internal/entity"

// Standard user ids.
const (
	Alice int64 = 1
	Bob   int64 = 2
	Carol int64 = 3
)

// Standard commits.
const (
	CommitA = "a1b2c3d4e5f60718293a4b5c6d7e8f9012345678"
	CommitB = "b2c3d4e5f60718293a4b5c6d7e8f901234567890"
)

// WithStandardUsers adds alice, bob and carol.
func (b *Builder) WithStandardUsers() *Builder {
	return b.
		WithUser(Alice, "alice", "Alice Liddell").
		WithUser(Bob, "bob", "Bob Marley").
		WithUser(Carol, "carol", "Carol Danvers")
}

// WithStandardTestData adds the standard test dataset.
func (b *Builder) WithStandardTestData() *Builder {
	lastWeek := Day0.AddDate(0, 0, -7)
	nextWeek := Day0.AddDate(0, 0, 7)

	return b.WithStandardUsers().
		WithCommit(CommitA, "main").
		WithCommit(CommitB, "v1.0").
		WithIssue(1,
			Title("Fix login bug"), Description("Login fails for users"),
			Status(entity.StatusOpen), Priority(3), Labels("bug", "auth"),
			Milestones("1.0"), SpentTime(90), EstimatedTime(480),
			CreatedAt(lastWeek), SubmittedBy(Alice), Mentioning(Bob), FixedIn(CommitA)).
		WithIssue(2,
			Title("Add search feature"), Status(entity.StatusInProgress), Priority(1),
			Labels("feature"), CreatedAt(Day0), SubmittedBy(Bob), Votes(4)).
		WithIssue(3,
			Title("Refactor auth"), Status(entity.StatusClosed), Priority(2),
			Labels("auth"), Milestones("1.0", "1.1"), SpentTime(2400),
			CreatedAt(nextWeek), LastActivity(nextWeek), SubmittedBy(Alice)).
		WithIssue(4,
			Title("Update docs"), Status(entity.StatusOpen),
			CreatedAt(nextWeek), SubmittedBy(Carol), Mentioning(Alice, Bob)).
		WithCodeComment(1,
			Content("Please handle the error here"), Path("internal/store/db.go"),
			OnCommit(CommitA), CreatedBy(Alice), Mentions(Bob), Reply(Bob, "Done")).
		WithCodeComment(2,
			Content("Nit: rename this"), Path("cmd/root.go"),
			OnCommit(CommitB), CreatedBy(Bob), Resolved()).
		WithCodeComment(3,
			Content("Why is this exported?"), Path("internal/store/db.go"),
			OnCommit(CommitA), CreatedBy(Carol), Reply(Alice, "For tests"), Reply(Bob, "Agreed")).
		WithPack(&entity.Pack{
			ID: 1, Type: entity.PackNpm, Name: "sieve-ui", Version: "1.2.0",
			Labels: []string{"latest"}, PublishedAt: Day0, TotalSize: 2048, PublisherID: Alice,
		}).
		WithPack(&entity.Pack{
			ID: 2, Type: entity.PackContainerImage, Name: "sieve", Version: "1.0.0",
			PublishedAt: lastWeek, TotalSize: 50 << 20, PublisherID: Bob,
		}).
		WithBuild(&entity.Build{
			ID: 1, Number: 1, Job: "ci", Status: entity.BuildSuccessful, Branch: "main",
			CommitHash: CommitA, SubmittedAt: lastWeek, SubmitterID: Alice,
		}).
		WithBuild(&entity.Build{
			ID: 2, Number: 2, Job: "release", Status: entity.BuildFailed, Tag: "v1.0",
			CommitHash: CommitB, SubmittedAt: Day0, SubmitterID: Bob,
		})
}

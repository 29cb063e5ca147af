package testutil

import (
	"context"
	"strconv"
	"strings"
	"time"

	"pgregory.net/rapid"

	"github.com/zjrosen/sieve/internal/compiler"
	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/entity"
)

// Small value domains so that generated criteria hit generated records.
var (
	genRunes   = []rune("abAB é")
	genNames   = []string{"a", "b", "ab", "1.0"}
	genCommits = []string{CommitA, CommitB}
)

func genText() *rapid.Generator[string] {
	return rapid.StringOfN(rapid.RuneFrom(genRunes), 0, 3, -1)
}

func genDay() *rapid.Generator[time.Time] {
	return rapid.Map(rapid.IntRange(-2, 2), func(d int) time.Time { return Day0.AddDate(0, 0, d) })
}

func genOptDay(t *rapid.T, label string) *time.Time {
	if !rapid.Bool().Draw(t, label+"?") {
		return nil
	}
	d := genDay().Draw(t, label)
	return &d
}

func genOptInt(t *rapid.T, label string, lo, hi int64) *int64 {
	if !rapid.Bool().Draw(t, label+"?") {
		return nil
	}
	n := rapid.Int64Range(lo, hi).Draw(t, label)
	return &n
}

func genUsers() *rapid.Generator[[]int64] {
	return rapid.SliceOfN(rapid.Int64Range(1, 3), 0, 2)
}

// IssueGen draws issues over small value domains.
func IssueGen() *rapid.Generator[*entity.Issue] {
	return rapid.Custom(func(t *rapid.T) *entity.Issue {
		return &entity.Issue{
			ID:            rapid.Int64Range(1, 1000).Draw(t, "id"),
			Number:        rapid.Int64Range(0, 3).Draw(t, "number"),
			Title:         genText().Draw(t, "title"),
			Description:   genText().Draw(t, "description"),
			Status:        rapid.SampledFrom([]string{entity.StatusOpen, entity.StatusInProgress, entity.StatusClosed}).Draw(t, "status"),
			Priority:      genOptInt(t, "priority", 0, 3),
			Milestones:    rapid.SliceOfN(rapid.SampledFrom(genNames), 0, 2).Draw(t, "milestones"),
			Labels:        rapid.SliceOfN(rapid.SampledFrom(genNames), 0, 2).Draw(t, "labels"),
			SpentTime:     rapid.SampledFrom([]int64{0, 30, 480, 2400}).Draw(t, "spent"),
			EstimatedTime: genOptInt(t, "estimate", 0, 960),
			CreatedAt:     genDay().Draw(t, "created"),
			LastActivity:  genOptDay(t, "activity"),
			VoteCount:     rapid.Int64Range(0, 3).Draw(t, "votes"),
			CommentCount:  rapid.Int64Range(0, 3).Draw(t, "comments"),
			SubmitterID:   rapid.Int64Range(0, 3).Draw(t, "submitter"),
			Mentions:      genUsers().Draw(t, "mentions"),
			FixCommits:    rapid.SliceOfN(rapid.SampledFrom(genCommits), 0, 2).Draw(t, "fixes"),
		}
	})
}

// CodeCommentGen draws code comments over small value domains.
func CodeCommentGen() *rapid.Generator[*entity.CodeComment] {
	return rapid.Custom(func(t *rapid.T) *entity.CodeComment {
		c := &entity.CodeComment{
			ID:           rapid.Int64Range(1, 1000).Draw(t, "id"),
			Content:      genText().Draw(t, "content"),
			Path:         rapid.SampledFrom([]string{"a.go", "b.go"}).Draw(t, "path"),
			CommitHash:   rapid.SampledFrom(append([]string{""}, genCommits...)).Draw(t, "commit"),
			Resolved:     rapid.Bool().Draw(t, "resolved"),
			CreatedAt:    genDay().Draw(t, "created"),
			LastActivity: genOptDay(t, "activity"),
			CreatorID:    rapid.Int64Range(0, 3).Draw(t, "creator"),
			Mentions:     genUsers().Draw(t, "mentions"),
		}
		n := rapid.IntRange(0, 2).Draw(t, "replies")
		for i := range n {
			c.Replies = append(c.Replies, genText().Draw(t, "reply"+strconv.Itoa(i)))
			c.ReplierIDs = append(c.ReplierIDs, rapid.Int64Range(1, 3).Draw(t, "replier"+strconv.Itoa(i)))
		}
		return c
	})
}

// PackGen draws packages over small value domains.
func PackGen() *rapid.Generator[*entity.Pack] {
	return rapid.Custom(func(t *rapid.T) *entity.Pack {
		return &entity.Pack{
			ID:          rapid.Int64Range(1, 1000).Draw(t, "id"),
			Type:        rapid.SampledFrom([]string{entity.PackNpm, entity.PackMaven, entity.PackContainerImage}).Draw(t, "type"),
			Name:        genText().Draw(t, "name"),
			Version:     rapid.SampledFrom(genNames).Draw(t, "version"),
			Labels:      rapid.SliceOfN(rapid.SampledFrom(genNames), 0, 2).Draw(t, "labels"),
			PublishedAt: genDay().Draw(t, "published"),
			TotalSize:   rapid.Int64Range(0, 3).Draw(t, "size"),
			PublisherID: rapid.Int64Range(0, 3).Draw(t, "publisher"),
		}
	})
}

// BuildGen draws builds over small value domains. Branch and Tag are
// often empty.
func BuildGen() *rapid.Generator[*entity.Build] {
	refs := append([]string{""}, genNames...)
	return rapid.Custom(func(t *rapid.T) *entity.Build {
		return &entity.Build{
			ID:          rapid.Int64Range(1, 1000).Draw(t, "id"),
			Number:      rapid.Int64Range(0, 3).Draw(t, "number"),
			Job:         genText().Draw(t, "job"),
			Status:      rapid.SampledFrom([]string{entity.BuildSuccessful, entity.BuildFailed, entity.BuildCancelled, entity.BuildTimedOut, entity.BuildRunning}).Draw(t, "status"),
			Branch:      rapid.SampledFrom(refs).Draw(t, "branch"),
			Tag:         rapid.SampledFrom(refs).Draw(t, "tag"),
			CommitHash:  rapid.SampledFrom(append([]string{""}, genCommits...)).Draw(t, "commit"),
			SubmittedAt: genDay().Draw(t, "submitted"),
			SubmitterID: rapid.Int64Range(0, 3).Draw(t, "submitter"),
		}
	})
}

// Values draws operands for any field over the same domains as the record
// generators.
func Values[R any](f *criteria.Field[R]) *rapid.Generator[criteria.Value] {
	switch f.Kind {
	case criteria.KindString:
		return rapid.Map(rapid.OneOf(genText(), rapid.SampledFrom(genNames)), criteria.String)
	case criteria.KindInt:
		return rapid.Map(rapid.Int64Range(0, 3), criteria.Int)
	case criteria.KindBool:
		return rapid.Map(rapid.Bool(), criteria.Bool)
	case criteria.KindDate:
		return rapid.Map(genDay(), criteria.Date)
	case criteria.KindDuration:
		return rapid.Map(rapid.SampledFrom([]int64{0, 30, 480, 960, 2400}), criteria.Duration)
	case criteria.KindEnum:
		return rapid.Map(rapid.SampledFrom(f.Enum), criteria.Enum)
	case criteria.KindUser:
		return rapid.Map(rapid.Int64Range(1, 3), criteria.User)
	case criteria.KindCommit:
		return rapid.Map(rapid.SampledFrom(genCommits), criteria.Commit)
	}
	panic("no generator for " + f.Name)
}

// Resolvers returns a compiler resolving the user and commit literals
// produced by Literal, with a fixed clock at Day0 in UTC.
func Resolvers() *compiler.Compiler {
	users := compiler.UserResolverFunc(func(ctx context.Context, name string) (compiler.User, error) {
		id, err := strconv.ParseInt(strings.TrimPrefix(name, "user-"), 10, 64)
		if err != nil || !strings.HasPrefix(name, "user-") {
			return compiler.User{}, compiler.ErrNotFound
		}
		return compiler.User{ID: id, Login: name}, nil
	})
	commits := compiler.CommitResolverFunc(func(ctx context.Context, rev string) (string, error) {
		for _, h := range genCommits {
			if h == rev {
				return h, nil
			}
		}
		return "", compiler.ErrNotFound
	})
	return compiler.New(
		compiler.WithUserResolver(users),
		compiler.WithCommitResolver(commits),
		compiler.WithClock(Clock(Day0)),
		compiler.WithLocation(time.UTC),
	)
}

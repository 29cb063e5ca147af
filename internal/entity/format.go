package entity

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

const shortHash = 7

func short(hash string) string {
	if len(hash) > shortHash {
		return hash[:shortHash]
	}
	return hash
}

// String returns a one-line summary such as "#12 Fix login bug [Open]".
func (i *Issue) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %s [%s]", i.Number, i.Title, i.Status)
	if i.Priority != nil {
		fmt.Fprintf(&sb, " P%d", *i.Priority)
	}
	if len(i.Labels) > 0 {
		fmt.Fprintf(&sb, " (%s)", strings.Join(i.Labels, ", "))
	}
	return sb.String()
}

// String returns a one-line summary such as "cmd/root.go@a1b2c3d: Nit".
func (c *CodeComment) String() string {
	s := fmt.Sprintf("%s@%s: %s", c.Path, short(c.CommitHash), c.Content)
	if n := len(c.Replies); n > 0 {
		s += fmt.Sprintf(" (%d %s)", n, plural(n, "reply", "replies"))
	}
	if c.Resolved {
		s += " [resolved]"
	}
	return s
}

// String returns a one-line summary such as "npm sieve-ui 1.2.0 (2.0 kB)".
func (p *Pack) String() string {
	return fmt.Sprintf("%s %s %s (%s)", p.Type, p.Name, p.Version, humanize.Bytes(uint64(max(p.TotalSize, 0))))
}

// String returns a one-line summary such as "ci #3 Failed main@a1b2c3d".
func (b *Build) String() string {
	ref := b.Branch
	if b.Tag != "" {
		ref = b.Tag
	}
	return fmt.Sprintf("%s #%d %s %s@%s", b.Job, b.Number, b.Status, ref, short(b.CommitHash))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

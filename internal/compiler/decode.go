package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/zjrosen/sieve/internal/criteria"
)

// Working period units. A working day is 8 hours and a working week is
// 5 days.
const (
	minutesPerHour = 60
	hoursPerDay    = 8
	daysPerWeek    = 5

	minutesPerDay  = minutesPerHour * hoursPerDay
	minutesPerWeek = minutesPerDay * daysPerWeek
)

// isoLayouts are tried before falling back to dateparse.
var isoLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// decodeValue converts the literal of a field criteria into a typed value.
// It returns the value and the literal to render in the canonical string.
func (b *builder[R]) decodeValue(f *criteria.Field[R], literal string) (criteria.Value, string, error) {
	switch f.Kind {
	case criteria.KindString:
		return criteria.String(literal), literal, nil

	case criteria.KindInt:
		n, err := strconv.ParseInt(strings.TrimSpace(literal), 10, 64)
		if err != nil {
			return criteria.Value{}, "", invalidValue(f.Name, "an integer", literal, err)
		}
		return criteria.Int(n), literal, nil

	case criteria.KindBool:
		v, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(literal)))
		if err != nil {
			return criteria.Value{}, "", invalidValue(f.Name, "a boolean (true or false)", literal, err)
		}
		return criteria.Bool(v), literal, nil

	case criteria.KindDate:
		t, err := b.c.parseDate(literal)
		if err != nil {
			return criteria.Value{}, "", invalidValue(f.Name, "a date (today, yesterday, -Nd, N days ago or ISO date)", literal, err)
		}
		return criteria.Date(t), literal, nil

	case criteria.KindDuration:
		minutes, err := ParseWorkingPeriod(literal)
		if err != nil {
			return criteria.Value{}, "", invalidValue(f.Name, "a working period such as 1w 2d 3h 30m", literal, err)
		}
		return criteria.Duration(minutes), FormatWorkingPeriod(minutes), nil

	case criteria.KindEnum:
		for _, e := range f.Enum {
			if strings.EqualFold(e, strings.TrimSpace(literal)) {
				return criteria.Enum(e), literal, nil
			}
		}
		return criteria.Value{}, "", &Error{
			Err: ErrInvalidValue,
			Msg: fmt.Sprintf("invalid value %q for field '%s' (valid: %s)", literal, f.Name, strings.Join(f.Enum, ", ")),
		}

	case criteria.KindUser:
		u, err := b.resolveUser(literal)
		if err != nil {
			return criteria.Value{}, "", err
		}
		return criteria.User(u.ID), literal, nil

	case criteria.KindCommit:
		hash, err := b.resolveCommit(literal)
		if err != nil {
			return criteria.Value{}, "", err
		}
		return criteria.Commit(hash), literal, nil
	}
	return criteria.Value{}, "", fmt.Errorf("field %q has unknown kind %d", f.Name, f.Kind)
}

func invalidValue(field, want, literal string, cause error) *Error {
	return &Error{
		Err:   ErrInvalidValue,
		Msg:   fmt.Sprintf("field '%s' requires %s, got %q", field, want, literal),
		Cause: cause,
	}
}

func (b *builder[R]) resolveUser(name string) (User, error) {
	if b.c.users == nil {
		return User{}, errors.New("no user resolver configured")
	}
	u, err := b.c.users.ResolveUser(b.ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, &Error{Err: ErrUnresolvedReference, Msg: fmt.Sprintf("unable to find user: %s", name), Cause: err}
		}
		return User{}, fmt.Errorf("resolving user %q: %w", name, err)
	}
	return u, nil
}

func (b *builder[R]) resolveCommit(revision string) (string, error) {
	if b.c.commits == nil {
		return "", errors.New("no commit resolver configured")
	}
	hash, err := b.c.commits.ResolveCommit(b.ctx, revision)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", &Error{Err: ErrUnresolvedReference, Msg: fmt.Sprintf("unable to find commit: %s", revision), Cause: err}
		}
		return "", fmt.Errorf("resolving commit %q: %w", revision, err)
	}
	return hash, nil
}

// currentUser returns the user running the query, looked up at most once
// per compilation.
func (b *builder[R]) currentUser(op string) (User, error) {
	if b.me != nil {
		return *b.me, nil
	}
	if !b.qc.WithCurrentUserCriteria || b.qc.CurrentUser == nil {
		return User{}, newError(ErrCurrentUserRequired, "criteria '%s' requires a current user", op)
	}
	u, ok, err := b.qc.CurrentUser.CurrentUser(b.ctx)
	if err != nil {
		return User{}, fmt.Errorf("loading current user: %w", err)
	}
	if !ok {
		return User{}, newError(ErrCurrentUserRequired, "criteria '%s' requires a current user", op)
	}
	b.me = &u
	return u, nil
}

// parseDate decodes absolute and relative dates. Relative dates are
// resolved against the compiler clock; day, week and month offsets count
// from the start of today.
func (c *Compiler) parseDate(s string) (time.Time, error) {
	now := c.now().In(c.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)

	raw := strings.TrimSpace(s)
	text := strings.ToLower(raw)
	switch text {
	case "":
		return time.Time{}, errors.New("empty date")
	case "now":
		return now, nil
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	if n, unit, ok := parseRelative(text); ok {
		switch unit {
		case 'h':
			return now.Add(-time.Duration(n) * time.Hour), nil
		case 'd':
			return today.AddDate(0, 0, -n), nil
		case 'w':
			return today.AddDate(0, 0, -7*n), nil
		case 'm':
			return today.AddDate(0, -n, 0), nil
		}
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, raw, c.loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return dateparse.ParseIn(raw, c.loc)
}

// parseRelative recognizes "-7d", "-24h", "-2w", "-3m" (months) and
// "7 days ago" style offsets.
func parseRelative(s string) (int, byte, bool) {
	if strings.HasPrefix(s, "-") && len(s) > 2 {
		unit := s[len(s)-1]
		n, err := strconv.Atoi(s[1 : len(s)-1])
		if err != nil || n < 0 {
			return 0, 0, false
		}
		switch unit {
		case 'h', 'd', 'w', 'm':
			return n, unit, true
		}
		return 0, 0, false
	}

	rest, ok := strings.CutSuffix(s, " ago")
	if !ok {
		return 0, 0, false
	}
	parts := strings.Fields(rest)
	if len(parts) != 2 {
		return 0, 0, false
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 0 {
		return 0, 0, false
	}
	switch strings.TrimSuffix(parts[1], "s") {
	case "hour":
		return n, 'h', true
	case "day":
		return n, 'd', true
	case "week":
		return n, 'w', true
	case "month":
		return n, 'm', true
	}
	return 0, 0, false
}

// ParseWorkingPeriod parses a working period such as "1w 2d 3h 30m" into
// minutes. Components may appear in any order, with or without spaces.
func ParseWorkingPeriod(s string) (int64, error) {
	var total int64
	seen := false
	i := 0
	for i < len(s) {
		if s[i] == ' ' || s[i] == '\t' {
			i++
			continue
		}
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if start == i {
			return 0, fmt.Errorf("expected a number at position %d", start)
		}
		if i-start > 9 {
			return 0, fmt.Errorf("number too large at position %d", start)
		}
		n, _ := strconv.ParseInt(s[start:i], 10, 64)
		if i == len(s) {
			return 0, fmt.Errorf("missing unit after %s", s[start:i])
		}
		switch s[i] {
		case 'w', 'W':
			total += n * minutesPerWeek
		case 'd', 'D':
			total += n * minutesPerDay
		case 'h', 'H':
			total += n * minutesPerHour
		case 'm', 'M':
			total += n
		default:
			return 0, fmt.Errorf("unknown unit %q", s[i])
		}
		i++
		seen = true
	}
	if !seen {
		return 0, errors.New("empty working period")
	}
	return total, nil
}

// FormatWorkingPeriod renders minutes in normalized working period form,
// largest unit first. Zero renders as "0m".
func FormatWorkingPeriod(minutes int64) string {
	if minutes == 0 {
		return "0m"
	}
	if minutes < 0 {
		return "-" + FormatWorkingPeriod(-minutes)
	}
	var parts []string
	for _, u := range []struct {
		size int64
		unit string
	}{{minutesPerWeek, "w"}, {minutesPerDay, "d"}, {minutesPerHour, "h"}, {1, "m"}} {
		if n := minutes / u.size; n > 0 {
			parts = append(parts, strconv.FormatInt(n, 10)+u.unit)
			minutes -= n * u.size
		}
	}
	return strings.Join(parts, " ")
}

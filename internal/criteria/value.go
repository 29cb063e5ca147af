// Package criteria holds compiled query trees and the field registries they
// are evaluated against. A tree is evaluated either in memory with Matches
// or rendered into a SQLite predicate; both give the same answer.
package criteria

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the type of a field value.
type Kind int

const (
	KindString   Kind = iota + 1
	KindInt           // integer
	KindBool          // stored as 0/1
	KindDate          // unix milliseconds
	KindDuration      // working minutes
	KindEnum          // one of Field.Enum
	KindUser          // user id
	KindCommit        // full commit hash
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindDuration:
		return "duration"
	case KindEnum:
		return "enum"
	case KindUser:
		return "user"
	case KindCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// textual reports whether values of the kind are held in Value.Str.
func (k Kind) textual() bool {
	return k == KindString || k == KindEnum || k == KindCommit
}

// Value is a typed field value. Textual kinds use Str, all others use Int.
type Value struct {
	Kind Kind
	Str  string
	Int  int64
}

// String returns a string value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Int returns an integer value.
func Int(n int64) Value { return Value{Kind: KindInt, Int: n} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{Kind: KindBool, Int: 1}
	}
	return Value{Kind: KindBool}
}

// Date returns a date value with millisecond precision.
func Date(t time.Time) Value { return Value{Kind: KindDate, Int: t.UnixMilli()} }

// Duration returns a working-period duration in minutes.
func Duration(minutes int64) Value { return Value{Kind: KindDuration, Int: minutes} }

// Enum returns an enum value.
func Enum(s string) Value { return Value{Kind: KindEnum, Str: s} }

// User returns a user reference.
func User(id int64) Value { return Value{Kind: KindUser, Int: id} }

// Commit returns a commit reference.
func Commit(hash string) Value { return Value{Kind: KindCommit, Str: hash} }

// Time returns the value of a date as a time in UTC.
func (v Value) Time() time.Time { return time.UnixMilli(v.Int).UTC() }

// Arg returns the value as a SQL argument.
func (v Value) Arg() any {
	if v.Kind.textual() {
		return v.Str
	}
	return v.Int
}

// Compare orders two values of the same kind. Text compares bytewise,
// which matches SQLite's BINARY collation.
func (v Value) Compare(o Value) int {
	if v.Kind.textual() {
		return strings.Compare(v.Str, o.Str)
	}
	switch {
	case v.Int < o.Int:
		return -1
	case v.Int > o.Int:
		return 1
	}
	return 0
}

// GoString renders the value for debugging.
func (v Value) GoString() string {
	switch {
	case v.Kind.textual():
		return v.Kind.String() + "(" + strconv.Quote(v.Str) + ")"
	case v.Kind == KindDate:
		return "date(" + v.Time().Format(time.RFC3339) + ")"
	default:
		return v.Kind.String() + "(" + strconv.FormatInt(v.Int, 10) + ")"
	}
}

// containsFold reports whether s contains sub, ignoring ASCII case. SQLite's
// lower() folds ASCII only, so neither side folds other characters.
func containsFold(s, sub string) bool {
	return strings.Contains(lowerASCII(s), lowerASCII(sub))
}

func lowerASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

package compiler

import (
	"errors"
	"fmt"

	"github.com/zjrosen/sieve/internal/query"
)

// Compile error kinds. Every *Error wraps exactly one of these.
var (
	ErrFieldNotFound         = errors.New("field not found")
	ErrOperatorNotApplicable = errors.New("operator not applicable")
	ErrOperatorNotSupported  = errors.New("operator not supported")
	ErrCannotOrderBy         = errors.New("can not order by field")
	ErrCurrentUserRequired   = errors.New("current user required")
	ErrUnresolvedReference   = errors.New("unresolved reference")
	ErrInvalidValue          = errors.New("invalid value")
)

// Error is a user-facing compile error. Msg is the message shown to the
// user; Cause, when set, is the underlying failure such as a decode error.
type Error struct {
	Err   error
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	return e.Msg
}

// Unwrap exposes both the error kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Err: kind, Msg: fmt.Sprintf(format, args...)}
}

// Kind returns a short label for the kind of err, used in metrics and
// span attributes.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFieldNotFound):
		return "field_not_found"
	case errors.Is(err, ErrOperatorNotApplicable):
		return "operator_not_applicable"
	case errors.Is(err, ErrOperatorNotSupported):
		return "operator_not_supported"
	case errors.Is(err, ErrCannotOrderBy):
		return "cannot_order_by"
	case errors.Is(err, ErrCurrentUserRequired):
		return "current_user_required"
	case errors.Is(err, ErrUnresolvedReference):
		return "unresolved_reference"
	case errors.Is(err, ErrInvalidValue):
		return "invalid_value"
	}
	var syntaxErr *query.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "syntax_error"
	}
	return "internal"
}

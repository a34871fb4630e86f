package domain

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the pricing core can produce. All kinds are
// recoverable per-request; none is fatal to the process.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConstraint Kind = "constraint"
	KindInternal   Kind = "internal"
)

// ErrCatalogUnavailable marks storage-level failures so callers can tell
// "catalog unreachable" apart from business-rule rejections.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Error is the single error type crossing the core's boundary. Field is set
// for validation failures so the UI can highlight the offending input.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	cause error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.cause }

func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Constraint(format string, args ...any) *Error {
	return &Error{Kind: KindConstraint, Msg: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure. The message shown to users is
// generic; cause is kept for logs only.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Msg: "internal pricing error", cause: cause}
}

// KindOf extracts the kind from any error, defaulting to KindInternal for
// errors that did not originate in the core.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, k Kind) bool { return err != nil && KindOf(err) == k }

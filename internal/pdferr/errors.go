// Package pdferr defines the domain-level error kinds surfaced to a
// Nursery session's boundary: tape bounds/IO failures, parse failures,
// xref and resolver failures, and the document-shape failures produced
// while attaching to a file.
package pdferr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies which class of failure occurred, independent of the
// message text wrapped around it.
type Kind int

const (
	// KindTapeBounds means a Seek targeted a position outside [0, size].
	// Get, Peek and Discard clamp to the available bytes instead.
	KindTapeBounds Kind = iota
	// KindTapeIO means the underlying byte source returned an I/O error.
	KindTapeIO
	// KindParseError means a lexer/parser rule failed to match the input.
	KindParseError
	// KindXRefNotFound means no startxref marker was found in the tail window.
	KindXRefNotFound
	// KindXRefMalformed means a startxref was found but the table or
	// trailer it points at does not parse as a classical xref.
	KindXRefMalformed
	// KindUnresolvedObject means a reference has no in-use xref entry.
	KindUnresolvedObject
	// KindResolverCycle means reference chasing exceeded the bound.
	KindResolverCycle
	// KindRootNotFound means the trailer's /Root did not resolve to a dictionary.
	KindRootNotFound
	// KindPagesNotFound means the catalog's /Pages did not resolve to a dictionary.
	KindPagesNotFound
	// KindInvalidDocument means Count/MediaBox were missing or malformed.
	KindInvalidDocument
)

func (k Kind) String() string {
	switch k {
	case KindTapeBounds:
		return "TapeBounds"
	case KindTapeIO:
		return "TapeIO"
	case KindParseError:
		return "ParseError"
	case KindXRefNotFound:
		return "XRefNotFound"
	case KindXRefMalformed:
		return "XRefMalformed"
	case KindUnresolvedObject:
		return "UnresolvedObject"
	case KindResolverCycle:
		return "ResolverCycle"
	case KindRootNotFound:
		return "RootNotFound"
	case KindPagesNotFound:
		return "PagesNotFound"
	case KindInvalidDocument:
		return "InvalidDocument"
	default:
		return "Unknown"
	}
}

// Error is a domain error: a Kind plus context, optionally wrapping a cause.
type Error struct {
	Kind    Kind
	Where   string // e.g. "header", "xref", "trailer", "5 0 R"
	Reason  string
	cause   error
}

func (e *Error) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s(%s): %s", e.Kind, e.Where, e.Reason)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error with no wrapped cause.
func New(kind Kind, where, reason string) *Error {
	return &Error{Kind: kind, Where: where, Reason: reason}
}

// Wrap builds a domain error that wraps cause, attaching a stack via
// github.com/pkg/errors so the CLI driver can print one on exit.
func Wrap(cause error, kind Kind, where, reason string) *Error {
	return &Error{Kind: kind, Where: where, Reason: reason, cause: errors.WithStack(cause)}
}

// KindOf reports the Kind of err if it is (or wraps) a *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err is (or wraps) a *Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

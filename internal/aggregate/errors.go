// Package aggregate holds the failure taxonomy shared by the household,
// ledger, shopping and chore aggregates.
//
// Every named failure is a sentinel *Error that carries its Kind, so callers
// can match a specific failure with errors.Is or a whole class with KindOf.
package aggregate

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why an aggregate operation was rejected.
type Kind string

const (
	KindInvalidArgument  Kind = "invalid_argument"
	KindNotFound         Kind = "not_found"
	KindForeignReference Kind = "foreign_reference"
	KindIllegalState     Kind = "illegal_state"
	KindCurrencyMismatch Kind = "currency_mismatch"

	// Raised by the command layer, never by an aggregate.
	KindUnauthenticated  Kind = "unauthenticated"
	KindPermissionDenied Kind = "permission_denied"
)

// Error is the canonical aggregate failure.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s", op, msg)
	case msg != "":
		return msg
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a sentinel failure of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Fail annotates sentinel with the failing operation and an optional detail.
// The result still matches sentinel with errors.Is.
func Fail(sentinel *Error, op, detail string) error {
	msg := sentinel.Message
	if detail = strings.TrimSpace(detail); detail != "" {
		msg = msg + ": " + detail
	}
	return &Error{Kind: sentinel.Kind, Op: op, Message: msg, Cause: sentinel}
}

// KindOf returns the kind of the outermost aggregate failure in err's chain,
// or "" if err carries none.
func KindOf(err error) Kind {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Kind
}

// IsKind reports whether err carries an aggregate failure of kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Package apperr is the error taxonomy shared by every usecase. Adapters map a
// Kind to a transport status; usecases only construct and classify.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindStorage      Kind = "storage"
	KindPersistence  Kind = "persistence"
	KindNotFound     Kind = "not_found"
	KindPrecondition Kind = "precondition_failed"
	KindConflict     Kind = "conflict"
	KindUpstream     Kind = "upstream"
)

// Error carries a Kind plus enough context for a caller to act on it.
// StoragePath is set on persistence failures that happen after an object was
// written, so a reconciliation job can find the orphan.
type Error struct {
	Kind        Kind
	Op          string
	Msg         string
	StoragePath string
	Fields      []string
	Err         error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if len(e.Fields) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Fields, ", "))
		b.WriteString("]")
	}
	if e.StoragePath != "" {
		fmt.Fprintf(&b, " (storage_path=%s)", e.StoragePath)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, apperr.ErrNotFound) match on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind-only sentinels for errors.Is.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrStorage      = &Error{Kind: KindStorage}
	ErrPersistence  = &Error{Kind: KindPersistence}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrPrecondition = &Error{Kind: KindPrecondition}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrUpstream     = &Error{Kind: KindUpstream}
)

func Validation(op, msg string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg, Fields: fields}
}

func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Op: op, Msg: "object storage failure", Err: err}
}

func Persistence(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Op: op, Msg: "database failure", Err: err}
}

// OrphanedObject is a persistence failure that left an object behind at path.
func OrphanedObject(op, path string, err error) *Error {
	return &Error{Kind: KindPersistence, Op: op, Msg: "stored object not linked", StoragePath: path, Err: err}
}

func NotFound(op, what string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: what + " not found"}
}

func Precondition(op, msg string) *Error {
	return &Error{Kind: KindPrecondition, Op: op, Msg: msg}
}

func Conflict(op, msg string) *Error {
	return &Error{Kind: KindConflict, Op: op, Msg: msg}
}

func Upstream(op string, err error) *Error {
	return &Error{Kind: KindUpstream, Op: op, Msg: "extraction gateway failure", Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether err carries kind anywhere in its chain.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }

// FromRepo classifies a repository error: record-not-found becomes NotFound
// for what, a unique violation becomes Conflict, an *Error passes through,
// anything else is a Persistence failure.
func FromRepo(op, what string, err error) error {
	var e *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &e):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(op, what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindConflict, Op: op, Msg: what + " already exists", Err: err}
	default:
		return Persistence(op, err)
	}
}

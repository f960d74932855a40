// Package kverrors defines the error taxonomy shared by every layer of
// bptreedb (RFS, tree engine, persister, registry, dispatcher), following
// the teacher's KVError idiom in pkg/store/types.go but expanded to carry
// a Kind so the dispatcher can map failures to HTTP statuses without
// string-matching error messages.
package kverrors

import (
	"errors"
	"fmt"
)

// Kind classifies an Error for the purposes of response-status mapping.
type Kind int

const (
	// NotFound covers an unknown dataset, an absent key, or a missing file.
	NotFound Kind = iota
	// AlreadyExists covers a dataset name collision on create.
	AlreadyExists
	// InvalidArgument covers T < 3, an empty name, lo > hi, malformed input.
	InvalidArgument
	// IOFailure covers an open/read/write/rename/unlink failure.
	IOFailure
	// Corruption covers malformed JSON, missing schema fields, or a child-count mismatch.
	Corruption
	// CapacityExceeded covers a full dataset table or an oversized request.
	CapacityExceeded
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case AlreadyExists:
		return "already_exists"
	case InvalidArgument:
		return "invalid_argument"
	case IOFailure:
		return "io_failure"
	case Corruption:
		return "corruption"
	case CapacityExceeded:
		return "capacity_exceeded"
	default:
		return "unknown"
	}
}

// Error is a kinded error with an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap lets errors.Is/errors.As see through to the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a bare kinded error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds a bare kinded error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a kinded error around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Is reports whether err is (or wraps) a kverrors.Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Unwrap returns err as a *Error if err is or wraps one, else nil.
func Unwrap(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// Sentinel errors for comparisons that don't need a custom message.
var (
	ErrNotFound         = New(NotFound, "not found")
	ErrAlreadyExists    = New(AlreadyExists, "already exists")
	ErrInvalidArgument  = New(InvalidArgument, "invalid argument")
	ErrCapacityExceeded = New(CapacityExceeded, "capacity exceeded")
)

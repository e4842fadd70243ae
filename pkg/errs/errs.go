// Package errs defines the error taxonomy shared by all agents. Every agent
// boundary converts internal failures into one of these kinds so that the
// coordinator can decide workflow outcomes without string matching.
package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation        Kind = "validation"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindParse             Kind = "parse"
	KindIndexing          Kind = "indexing"
	KindRetrieval         Kind = "retrieval"
	KindGeneration        Kind = "generation"
	KindRouting           Kind = "routing"
	KindCoordination      Kind = "coordination"
)

// Error carries a kind alongside a human-readable message and an optional
// wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the description without the kind prefix, suitable for
// user-facing error payloads.
func (e *Error) Message() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

func UnsupportedFormat(format string, args ...interface{}) *Error {
	return New(KindUnsupportedFormat, format, args...)
}

func Parse(err error, format string, args ...interface{}) *Error {
	return Wrap(KindParse, err, format, args...)
}

func Retrieval(format string, args ...interface{}) *Error {
	return New(KindRetrieval, format, args...)
}

func Generation(format string, args ...interface{}) *Error {
	return New(KindGeneration, format, args...)
}

func Routing(format string, args ...interface{}) *Error {
	return New(KindRouting, format, args...)
}

func Coordination(format string, args ...interface{}) *Error {
	return New(KindCoordination, format, args...)
}

// KindOf reports the kind of err, or KindCoordination for errors that do not
// originate from an agent boundary.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindCoordination
}

// MessageOf returns the user-facing description of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

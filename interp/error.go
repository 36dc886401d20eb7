package interp

import (
	"fmt"
	"log/slog"
	"strings"
)

// Kind tags the taxonomy of interpreter errors (spec §3). Break and Continue
// are control-flow tokens routed through the same machinery as true errors
// so loop forms can intercept them with the ordinary try/catch plumbing.
//
//go:generate go tool stringer -type Kind -output error_kind_string.go
type Kind uint8

const (
	Failure Kind = iota
	ParseError
	GenericExecution
	Overflow
	ZeroDivision
	InvalidCons
	InvalidArgument
	InvalidArgumentCount
	Assertion
	Break
	Continue
)

// symbolName is the canonical catch-target name for each Kind.
var symbolName = map[Kind]string{
	Failure:               "failure",
	ParseError:            "parse-error",
	GenericExecution:      "generic-execution-error",
	Overflow:              "overflow-error",
	ZeroDivision:          "zero-division-error",
	InvalidCons:           "invalid-cons-error",
	InvalidArgument:       "invalid-argument-error",
	InvalidArgumentCount:  "invalid-argument-count-error",
	Assertion:             "assertion-error",
	Break:                 "break-error",
	Continue:              "continue-error",
}

// Error is the interpreter's error type: a tagged kind, a human message, the
// canonical symbol name catch forms match against, and an optional cause
// chain. It implements error, fmt.Stringer, and slog.LogValuer so the same
// value prints for a human and logs structured for slog.
type Error struct {
	Kind       Kind
	Message    string
	SymbolName string
	CausedBy   *Error
}

// New creates an Error of kind with the canonical symbol name for that kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, SymbolName: symbolName[kind]}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Caused wraps cause as the direct cause of a new Error of kind.
func Caused(kind Kind, message string, cause *Error) *Error {
	e := New(kind, message)
	e.CausedBy = cause

	return e
}

// Causedf is Caused with fmt.Sprintf-style formatting.
func Causedf(kind Kind, cause *Error, format string, args ...any) *Error {
	return Caused(kind, fmt.Sprintf(format, args...), cause)
}

// WithSymbol overrides the catch-target symbol name (used by user-raised
// assertions that carry a custom tag).
func (e *Error) WithSymbol(name string) *Error {
	e2 := *e
	e2.SymbolName = name

	return &e2
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	return e.String()
}

// Unwrap enables errors.Is/errors.As against the cause chain.
func (e *Error) Unwrap() error {
	if e.CausedBy == nil {
		return nil
	}

	return e.CausedBy
}

// TotalCause returns the deepest link in the caused-by chain.
func (e *Error) TotalCause() *Error {
	if e.CausedBy == nil {
		return e
	}

	return e.CausedBy.TotalCause()
}

// IsFailure reports whether the total cause is an interpreter-internal
// inconsistency rather than a well-formed program error.
func (e *Error) IsFailure() bool {
	return e.TotalCause().Kind == Failure
}

// String renders the error as the printable form execute() surfaces for an
// uncaught error: "(symbol \"message\")" followed by its causal chain, one
// link per line.
func (e *Error) String() string {
	var b strings.Builder

	cur := e
	for cur != nil {
		fmt.Fprintf(&b, "(%s %q)", cur.SymbolName, cur.Message)

		if cur.CausedBy != nil {
			b.WriteString(" caused by:\n")
		}

		cur = cur.CausedBy
	}

	return b.String()
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", e.Kind.String()),
		slog.String("symbol", e.SymbolName),
		slog.String("message", e.Message),
	}

	if e.CausedBy != nil {
		attrs = append(attrs, slog.Any("caused_by", e.CausedBy))
	}

	return slog.GroupValue(attrs...)
}

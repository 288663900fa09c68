package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Class identifies the interpreter stage that produced an [Error].
type Class int

const (
	ClassNone   Class = iota // Error
	ClassSyntax              // SyntaxError
	ClassEval                // EvalError
)

func (c Class) String() string {
	switch c {
	case ClassSyntax:
		return "SyntaxError"
	case ClassEval:
		return "EvalError"
	default:
		return "Error"
	}
}

// Class sentinels. [errors.Is] reports true for any error of the same class.
var (
	ErrSyntax = newClassError(ClassSyntax, "syntax error")
	ErrEval   = newClassError(ClassEval, "evaluation error")
)

// Predefined errors (sentinel values).
var (
	ErrUnexpectedEOF   = NewError(ClassSyntax, "unexpected end of input")
	ErrUnexpectedClose = NewError(ClassSyntax, "unexpected ')'")
	ErrTrailingInput   = NewError(ClassSyntax, "unexpected trailing input")

	ErrUnbound          = NewError(ClassEval, "unbound symbol")
	ErrSetUnbound       = NewError(ClassEval, "cannot set unbound symbol")
	ErrArity            = NewError(ClassEval, "wrong number of arguments")
	ErrEmptyList        = NewError(ClassEval, "empty list")
	ErrNotProcedure     = NewError(ClassEval, "not a procedure")
	ErrMalformed        = NewError(ClassEval, "malformed special form")
	ErrType             = NewError(ClassEval, "wrong argument type")
	ErrDivideByZero     = NewError(ClassEval, "division by zero")
	ErrDomain           = NewError(ClassEval, "math domain error")
	ErrRange            = NewError(ClassEval, "math range error")
	ErrMaxDepthExceeded = NewError(ClassEval, "maximum recursion depth exceeded")
	ErrCancelled        = NewError(ClassEval, "evaluation cancelled")
	ErrWrite            = NewError(ClassEval, "write output")

	ErrReadInput   = NewError(ClassNone, "failed to read input")
	ErrTraceFilter = NewError(ClassNone, "invalid trace filter")
)

// Error represents an interpreter error with optional structured logging
// attributes. It implements both error and slog.LogValuer interfaces.
//
// Every Error derived from a sentinel (via [Error.Wrap], [Error.With] or
// [Error.Detail]) still matches that sentinel and its [Class] with
// [errors.Is].
type Error struct {
	base  *Error
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	class Class
	group bool
}

// NewError creates a new sentinel Error of the given class.
func NewError(class Class, msg string) *Error {
	e := &Error{class: class, msg: msg}
	e.base = e

	return e
}

func newClassError(class Class, msg string) *Error {
	e := NewError(class, msg)
	e.group = true

	return e
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from, or the class
// sentinel ([ErrSyntax], [ErrEval]) of e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}

	if t.group {
		return t.class == e.class
	}

	return t.base != nil && t.base == e.base
}

// Class returns the class of the error.
func (e *Error) Class() Class { return e.class }

// Reason returns the error message without any wrapped detail.
func (e *Error) Reason() string { return e.msg }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.class != ClassNone {
		attrs = append(attrs, slog.String("class", e.class.String()))
	}

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// Detail creates a new Error whose message is extended with the formatted
// text, as in "unbound symbol: zz".
func (e *Error) Detail(format string, args ...any) *Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

func (e *Error) clone() *Error {
	return &Error{
		base:  e.base,
		msg:   e.msg,
		err:   e.err,
		attrs: e.attrs,
		class: e.class,
	}
}

package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrParse              = NewError("parse error")
	ErrUnterminatedSplice = NewError("unterminated splice")
	ErrEmptySplice        = NewError("empty splice")
	ErrUnterminatedString = NewError("unterminated string literal")
	ErrRewrite            = NewError("rewrite error")
	ErrExprCompile        = NewError("expression compilation failed")
	ErrExprEvaluate       = NewError("expression evaluation failed")
	ErrUnresolvedImport   = NewError("unresolved import")
	ErrNotTemplate        = NewError("unit does not import template")
	ErrNotCallable        = NewError("value is not callable")
	ErrParamCountMismatch = NewError("parameter count mismatch")
	ErrNotIterable        = NewError("value is not iterable")
	ErrEntryPoint         = NewError("entry point failed")
	ErrReadInput          = NewError("failed to read input")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
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

// Is reports whether e derives from target via the sentinel message.
// Sentinels are compared by message so that derived errors built with
// With/Wrap/WithPosition still match errors.Is against the sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.msg == t.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

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
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// WithPosition adds line and column attributes to the error.
func (e *Error) WithPosition(pos Position) *Error {
	return e.With(
		slog.Int("line", pos.Line),
		slog.Int("column", pos.Column),
	)
}

// WithUnit adds the offending unit's name (and path, if resolved) to
// the error.
func (e *Error) WithUnit(u *Unit) *Error {
	if u == nil {
		return e
	}

	attrs := []slog.Attr{slog.String("unit", u.Name)}
	if u.Path != "" {
		attrs = append(attrs, slog.String("path", u.Path))
	}

	return e.With(attrs...)
}

// WithSnippet attaches a caret-style snippet of the offending source
// line to the error.
func (e *Error) WithSnippet(source string, pos Position) *Error {
	s := Snippet(source, pos)
	if s == "" {
		return e.WithPosition(pos)
	}

	return e.WithPosition(pos).With(slog.String("snippet", s))
}

// Snippet renders the source line containing pos with a caret marker
// under the offending column:
//
//	  3 | x = "a{{"
//	          ^
func Snippet(source string, pos Position) string {
	if pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	lineNum := strconv.Itoa(pos.Line)

	src.WriteString("  ")
	src.WriteString(lineNum)
	src.WriteString(" | ")
	src.WriteString(lines[pos.Line-1])
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(lineNum)+5)
	if pos.Column > 0 {
		padding += strings.Repeat(" ", pos.Column-1)
	}

	src.WriteString(padding + "^")

	return src.String()
}

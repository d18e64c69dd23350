package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which layer was parsing when the error occurred
type Phase string

const (
	PhasePack   Phase = "pack"   // pack block layout
	PhaseDecode Phase = "decode" // command stream
	PhaseRender Phase = "render" // format string resolution
)

// Kind categorizes the error
type Kind string

const (
	KindMalformed   Kind = "malformed"    // block violates the layout contract
	KindOverflow    Kind = "overflow"     // declared length exceeds the block
	KindTruncated   Kind = "truncated"    // block ends before a declared field
	KindUnsupported Kind = "unsupported"  // well-formed but unknown construct
	KindArgMismatch Kind = "arg_mismatch" // format specifiers disagree with arguments
)

// Error is the structured error type used on the decode side
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Offset int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Offset > 0 {
		fmt.Fprintf(&b, " at byte %d", e.Offset)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by phase and kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// New creates an error with the given phase and kind
func New(phase Phase, kind Kind, offset int, detail string) *Error {
	return &Error{Phase: phase, Kind: kind, Offset: offset, Detail: detail}
}

// Malformed creates a KindMalformed error at the given offset
func Malformed(phase Phase, offset int, detail string) *Error {
	return New(phase, KindMalformed, offset, detail)
}

// Truncated creates a KindTruncated error at the given offset
func Truncated(phase Phase, offset int, detail string) *Error {
	return New(phase, KindTruncated, offset, detail)
}

// Overflow creates a KindOverflow error at the given offset
func Overflow(phase Phase, offset int, detail string) *Error {
	return New(phase, KindOverflow, offset, detail)
}

// Wrap attaches a cause to the error and returns it
func (e *Error) Wrap(cause error) *Error {
	e.Cause = cause
	return e
}

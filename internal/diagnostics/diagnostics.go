// Package diagnostics defines the compiler diagnostics produced by the
// frame-allocation backend. Diagnostics are accumulated, never thrown:
// every stage appends to the pipeline context and the caller inspects the
// full list alongside a success flag.
package diagnostics

import (
	"fmt"

	"github.com/hachi-lang/hachi/internal/token"
)

// ErrorCode is a stable, machine-readable diagnostic code. Codes are part
// of the tool's external contract (editors and build drivers match on them),
// so they never change meaning between releases.
type ErrorCode string

const (
	// ErrRecursion: the call graph contains a cycle. Static frame
	// allocation gives every function exactly one frame, so recursion,
	// direct or indirect, can never be supported. Always fatal.
	ErrRecursion ErrorCode = "RECURSION"

	// ErrZPOverflow: a must-be-fast slot does not fit in the zero-page
	// pool. Fatal, but accumulated so every violation is reported in one
	// run.
	ErrZPOverflow ErrorCode = "ZP_OVERFLOW"

	// ErrFrameOverflow: the coalesced frame region exceeds the platform
	// budget. Reported once with total vs available bytes.
	ErrFrameOverflow ErrorCode = "FRAME_OVERFLOW"

	// ErrBadPlatform: the platform memory configuration is inconsistent
	// (inverted ranges, reservations outside the pool, empty regions).
	ErrBadPlatform ErrorCode = "BAD_PLATFORM"

	// ErrBadDump: the checked-program dump is malformed (unknown type
	// notation, duplicate function, malformed body entry).
	ErrBadDump ErrorCode = "BAD_DUMP"

	// WarnZPContention: scored zero-page candidates spilled to the frame
	// region because the pool filled up. Advisory only.
	WarnZPContention ErrorCode = "ZP_CONTENTION"
)

// Severity distinguishes fatal diagnostics from advisory ones. Warnings
// never block producing a frame map.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// messages maps each code to its format string. Formatting arguments come
// from NewError call sites.
var messages = map[ErrorCode]string{
	ErrRecursion:     "recursive call chain %s cannot be allocated a static frame",
	ErrZPOverflow:    "zero-page variable '%s' (%d bytes) does not fit in the zero-page pool",
	ErrFrameOverflow: "frame region overflow: %d bytes required, %d available",
	ErrBadPlatform:   "invalid platform configuration: %s",
	ErrBadDump:       "invalid program dump: %s",
	WarnZPContention: "%d zero-page candidate(s) totalling %d bytes spilled to the frame region",
}

// DiagnosticError is one diagnostic with a stable code and the source token
// it refers to. It implements error so infrastructure code can pass it
// through ordinary error returns.
type DiagnosticError struct {
	Code     ErrorCode
	Severity Severity
	Token    token.Token
	File     string
	Message  string
}

// NewError builds a fatal diagnostic for code, formatting the registered
// message with args.
func NewError(code ErrorCode, tok token.Token, args ...interface{}) *DiagnosticError {
	return newDiagnostic(code, SeverityError, tok, args...)
}

// NewWarning builds an advisory diagnostic for code.
func NewWarning(code ErrorCode, tok token.Token, args ...interface{}) *DiagnosticError {
	return newDiagnostic(code, SeverityWarning, tok, args...)
}

func newDiagnostic(code ErrorCode, sev Severity, tok token.Token, args ...interface{}) *DiagnosticError {
	format, ok := messages[code]
	var msg string
	if !ok {
		msg = fmt.Sprint(args...)
	} else {
		msg = fmt.Sprintf(format, args...)
	}
	return &DiagnosticError{
		Code:     code,
		Severity: sev,
		Token:    tok,
		File:     tok.File,
		Message:  msg,
	}
}

func (e *DiagnosticError) Error() string {
	if e.Token.Line > 0 {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Token.Pos(), e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// IsFatal reports whether this diagnostic blocks code generation.
func (e *DiagnosticError) IsFatal() bool {
	return e.Severity == SeverityError
}

// HasFatal reports whether any diagnostic in errs is fatal.
func HasFatal(errs []*DiagnosticError) bool {
	for _, e := range errs {
		if e.IsFatal() {
			return true
		}
	}
	return false
}

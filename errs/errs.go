// Package errs provides the typed error taxonomy for the explorer core.
// Construction errors and search-time handler violations are always an
// *errs.Error with one of the Codes below; DepthExceeded and NoMatch are
// not errors at all (they are simply an empty or partial result), and a
// TraceGap is reported as a field on trace.Result rather than as an error.
package errs

import "fmt"

// Code is a machine-readable classification for an Error.
type Code string

const (
	// CodeIllFormedInitial is returned by configuration.BuildInitial when a
	// starting envelope targets an address absent from the node list, or
	// when two nodes in the node list share an address.
	CodeIllFormedInitial Code = "ILL_FORMED_INITIAL"

	// CodeUnknownDestination is returned by configuration.SendSuccessor
	// when the injected envelope targets an address not present in the
	// configuration's node map.
	CodeUnknownDestination Code = "UNKNOWN_DESTINATION"

	// CodeHandlerViolation is returned when a NodeHandler's Receive returns
	// a node whose Address() differs from the address that received the
	// message. Detected where feasible, per spec — aliasing of the
	// handler's internal buffers is not detected.
	CodeHandlerViolation Code = "HANDLER_VIOLATION"
)

// Error is the explorer core's error type. All errors raised by
// configuration and explorer are *Error, except the plain context error
// explorer.Explore returns when its context is done.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// New constructs an Error with no cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap constructs an Error carrying cause as its underlying error.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap allows errors.Is/errors.As to see through to Cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Code, so that
// callers can write errors.Is(err, errs.New(errs.CodeIllFormedInitial, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Package fault defines the closed set of failure categories a one-shot
// call can end with, and the error type that carries them.
//
// An invocation either succeeds or fails with exactly one of three categories:
//
//	ProtocolFault    — the remote handler explicitly signalled an
//	                   application-level fault in its response
//	TransportFailure — the connection or framing layer broke underneath
//	                   the call (reset, unexpected frame, decode failure)
//	Timeout          — the call did not complete within the channel's
//	                   allotted deadline
//
// Any error that is not a *fault.Error falls outside the taxonomy and is
// never handled by the executor — it propagates to the caller unchanged.
package fault

import (
	"errors"
	"fmt"
)

// Category classifies why a call did not complete.
type Category int

const (
	ProtocolFault Category = iota
	TransportFailure
	Timeout
)

func (c Category) String() string {
	switch c {
	case ProtocolFault:
		return "ProtocolFault"
	case TransportFailure:
		return "TransportFailure"
	case Timeout:
		return "Timeout"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Error is a categorized call failure. Detail carries the original failure
// message; Cause, when non-nil, is the underlying error and is exposed
// through Unwrap so errors.Is / errors.As keep working across the wrap.
type Error struct {
	Category Category
	Detail   string
	Cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Protocol builds a ProtocolFault from the detail string the remote side
// sent back. There is no underlying local error to wrap.
func Protocol(detail string) *Error {
	return &Error{Category: ProtocolFault, Detail: detail}
}

// Transport wraps a connection-level error as a TransportFailure.
func Transport(cause error) *Error {
	return &Error{Category: TransportFailure, Detail: cause.Error(), Cause: cause}
}

// TimedOut wraps a deadline error as a Timeout failure.
func TimedOut(cause error) *Error {
	return &Error{Category: Timeout, Detail: cause.Error(), Cause: cause}
}

// CategoryOf reports the category of err, if it carries one.
// The second return is false for uncategorized errors.
func CategoryOf(err error) (Category, bool) {
	var ferr *Error
	if errors.As(err, &ferr) {
		return ferr.Category, true
	}
	return 0, false
}

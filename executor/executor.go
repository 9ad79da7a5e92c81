// Package executor implements the acquire → use → release-or-abort protocol
// for single-use call handles.
//
// Every invocation follows the same lifecycle:
//
//	factory() ──→ handle ──→ op(handle) ──→ ok?   ──→ Close / CloseWithTimeout
//	                                    └─→ fault ──→ Abort ──→ category hook
//
// A handle is created fresh for every invocation, used for exactly one call,
// and torn down before control returns: close on success, abort on any of the
// three fault categories. The teardown guarantee deliberately covers ONLY
// categorized failures — a factory error, an uncategorized operation error,
// or a close error propagates directly without touching the handle further.
package executor

import (
	"errors"
	"time"

	"oneshot-rpc/fault"
)

// Handle is the single-use capability the executor manages. A Handle is
// exclusively owned by one invocation and is never reused.
//
// Abort must be safe to call after a failed operation and must not itself
// fail — it discards in-flight state rather than attempting a graceful
// shutdown.
type Handle interface {
	Close() error
	CloseWithTimeout(timeout time.Duration) error
	Abort()
}

// Hook is invoked after abort when a call fails with its category.
// Returning the error propagates it to the caller; returning nil
// suppresses the failure.
type Hook func(ferr *fault.Error) error

// Reraise is the default hook for every category: it hands the original
// failure back to the caller verbatim.
func Reraise(ferr *fault.Error) error {
	return ferr
}

// Executor runs one operation per freshly constructed handle.
// The zero value is not usable; construct with New.
type Executor[H Handle] struct {
	factory      func() (H, error)
	closeTimeout time.Duration
	hooks        map[fault.Category]Hook
}

// New creates an executor that obtains handles from factory.
// All three category hooks default to Reraise.
func New[H Handle](factory func() (H, error)) *Executor[H] {
	return &Executor[H]{
		factory: factory,
		hooks:   make(map[fault.Category]Hook),
	}
}

// SetCloseTimeout bounds the success-path close. Zero (the default) means
// the handle's default close behavior is used instead.
func (e *Executor[H]) SetCloseTimeout(timeout time.Duration) {
	e.closeTimeout = timeout
}

// OnFault overrides the hook for one failure category. Passing nil restores
// the default Reraise hook.
func (e *Executor[H]) OnFault(c fault.Category, h Hook) {
	if h == nil {
		delete(e.hooks, c)
		return
	}
	e.hooks[c] = h
}

func (e *Executor[H]) hook(c fault.Category) Hook {
	if h, ok := e.hooks[c]; ok {
		return h
	}
	return Reraise
}

// run is the single core algorithm behind all four operation shapes.
// handled reports whether a categorized failure occurred (regardless of
// whether the hook suppressed it).
func run[H Handle](e *Executor[H], op func(H) error) (handled bool, err error) {
	// Construction is not guarded: a factory error propagates immediately,
	// before any handle exists to tear down.
	h, err := e.factory()
	if err != nil {
		return false, err
	}

	if opErr := op(h); opErr != nil {
		var ferr *fault.Error
		if !errors.As(opErr, &ferr) {
			// Outside the taxonomy: propagate as-is, bypassing abort.
			// The teardown guarantee covers only the three categories.
			return false, opErr
		}
		h.Abort()
		return true, e.hook(ferr.Category)(ferr)
	}

	if e.closeTimeout > 0 {
		return false, h.CloseWithTimeout(e.closeTimeout)
	}
	return false, h.Close()
}

// Execute runs op against a fresh handle and returns its result.
// On a categorized failure the handle is aborted and the category hook
// decides the outcome: by default the failure is returned; a suppressing
// hook makes Execute return the zero value with a nil error.
func Execute[H Handle, T any](e *Executor[H], op func(H) (T, error)) (T, error) {
	var result T
	_, err := run(e, func(h H) error {
		r, opErr := op(h)
		if opErr != nil {
			return opErr
		}
		result = r
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// ExecuteVoid is Execute for operations with no result value.
func ExecuteVoid[H Handle](e *Executor[H], op func(H) error) error {
	_, err := run(e, op)
	return err
}

// TryExecute runs op and additionally reports whether the call completed.
// ok is false whenever a categorized failure occurred, even if the hook
// suppressed it. The error return is non-nil only when a failure actually
// propagated — a construction or uncategorized error, or a hook that chose
// to re-raise.
func TryExecute[H Handle, T any](e *Executor[H], op func(H) (T, error)) (T, bool, error) {
	var result T
	handled, err := run(e, func(h H) error {
		r, opErr := op(h)
		if opErr != nil {
			return opErr
		}
		result = r
		return nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return result, !handled, nil
}

// TryExecuteVoid is TryExecute for operations with no result value.
func TryExecuteVoid[H Handle](e *Executor[H], op func(H) error) (bool, error) {
	handled, err := run(e, op)
	if err != nil {
		return false, err
	}
	return !handled, nil
}

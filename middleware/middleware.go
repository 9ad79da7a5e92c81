// Package middleware provides composable decorators for fault hooks.
//
// The executor exposes one hook per failure category; a Middleware wraps a
// hook the same way HTTP middleware wraps a handler, so logging, translation,
// and suppression stack without the hook itself knowing about any of them.
package middleware

import (
	"oneshot-rpc/executor"
)

type Middleware func(next executor.Hook) executor.Hook

// Chain combines several middlewares into one. Chain(A, B, C)(hook) wraps
// as A(B(C(hook))): A sees the fault first, the hook last.
func Chain(middlewares ...Middleware) Middleware {
	return func(next executor.Hook) executor.Hook {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

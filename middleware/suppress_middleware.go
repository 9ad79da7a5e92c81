package middleware

import (
	"oneshot-rpc/executor"
	"oneshot-rpc/fault"
)

// Suppress swallows faults of the listed categories: the caller sees a
// normal return (or ok=false from the Try variants) instead of the error.
// Other categories fall through to the inner hook.
func Suppress(categories ...fault.Category) Middleware {
	return func(next executor.Hook) executor.Hook {
		return func(ferr *fault.Error) error {
			for _, c := range categories {
				if c == ferr.Category {
					return nil
				}
			}
			return next(ferr)
		}
	}
}

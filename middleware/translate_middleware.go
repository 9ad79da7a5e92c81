package middleware

import (
	"oneshot-rpc/executor"
	"oneshot-rpc/fault"
)

// Translate maps a fault to a domain error before it reaches the caller.
// The inner hook is bypassed entirely: translation decides the outcome.
// Returning nil from the translation suppresses the fault.
func Translate(translate func(ferr *fault.Error) error) Middleware {
	return func(next executor.Hook) executor.Hook {
		return func(ferr *fault.Error) error {
			return translate(ferr)
		}
	}
}

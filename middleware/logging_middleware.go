package middleware

import (
	"go.uber.org/zap"

	"oneshot-rpc/executor"
	"oneshot-rpc/fault"
)

// Logging records every fault that reaches the hook, then passes it on
// unchanged. The decision to re-raise or suppress stays with the inner hook.
func Logging(logger *zap.Logger) Middleware {
	return func(next executor.Hook) executor.Hook {
		return func(ferr *fault.Error) error {
			logger.Warn("call failed",
				zap.Stringer("category", ferr.Category),
				zap.String("detail", ferr.Detail),
			)
			return next(ferr)
		}
	}
}

package graph

import (
	"context"
	"time"
)

// withTaskTimeout derives a context for one Task.Run call, honoring this
// precedence: (1) if ctx already carries a deadline, it is used as-is;
// (2) otherwise, if defaultTimeout is positive, a new deadline is
// applied; (3) otherwise, ctx is returned unbounded. The returned cancel
// func is always safe to call and should be deferred by the caller.
func withTaskTimeout(ctx context.Context, defaultTimeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	if defaultTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultTimeout)
}

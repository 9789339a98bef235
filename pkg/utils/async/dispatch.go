package async

import (
	"context"

	"github.com/yourtyme-app/yourtyme/pkg/utils/errutil"
	"github.com/yourtyme-app/yourtyme/pkg/utils/logging"
)

// Dispatch executes a handler function asynchronously in a new goroutine.
// It creates a background context (the caller's request context dies with the
// HTTP response, but Slack requires an ack within 3 seconds) and handles
// errors and panics so a failing handler never crashes the process.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			errutil.Handle(bgCtx, err, "async handler failed")
		}
	}()
}

package bridge

import (
	"context"
	"time"
)

// RetryDispatch invokes action until done approves the result or the
// attempt budget runs out, waiting interval between attempts. It settles
// with the last outcome either way; this is a bounded retry, never a poll.
func RetryDispatch(
	ctx context.Context,
	attempts int,
	interval time.Duration,
	action func(context.Context) (interface{}, error),
	done func(interface{}) bool,
) (interface{}, error) {
	var result interface{}
	var err error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(interval):
			}
		}

		result, err = action(ctx)
		if err == nil && done(result) {
			return result, nil
		}
	}

	return result, err
}

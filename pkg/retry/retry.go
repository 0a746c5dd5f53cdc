package retry

import (
	"context"
)

// Action is a function to be performed in a retriable manner.
type Action func() error

// Retry runs action until it succeeds or one of the strategies declines
// another attempt. It returns the number of attempts made along with the
// last error observed.
//
// Strategies are evaluated in order, so any that sleep belong at the end.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	return RetryWithContext(context.Background(), action, strategies...)
}

// RetryWithContext is Retry, but gives up with the context's error once ctx
// is done. The context is only checked between attempts.
func RetryWithContext(ctx context.Context, action Action, strategies ...Strategy) (uint, error) {
	for attempt := uint(1); ; attempt++ {
		err := action()
		if err == nil {
			return attempt, nil
		}

		if !shouldRetry(strategies, attempt, err) {
			return attempt, err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempt, ctxErr
		}
	}
}

func shouldRetry(strategies []Strategy, attempt uint, err error) bool {
	for _, s := range strategies {
		if !s(attempt, err) {
			return false
		}
	}
	return true
}

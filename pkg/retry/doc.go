// Package retry runs an operation a fixed number of times with a delay
// between failed attempts.
//
// Basic usage:
//
//	err := retry.Do(func(attempt int) error {
//		return fetch(ctx, url)
//	}, &retry.Config{
//		MaxAttempts: 3,
//		Backoff:     &retry.ConstantBackoff{Delay: 2 * time.Second},
//		RetryIf:     retry.DefaultRetryIf,
//		Context:     ctx,
//		Logger:      log,
//	})
//
// Only errors typed as network or validation failures (see pkg/errors) are
// retried. The delay is applied between attempts, never after the last one,
// and a cancelled context stops the loop immediately.
package retry

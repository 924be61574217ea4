package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "beforeafter/pkg/errors"
	"beforeafter/pkg/logger"
)

// Operation is a function that performs an operation that might need retrying.
// attempt is 1-based.
type Operation func(attempt int) error

// OperationWithResult is a function that returns a result and might need retrying
type OperationWithResult[T any] func(attempt int) (T, error)

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the total number of attempts, including the first
	MaxAttempts int
	Backoff     BackoffStrategy
	// RetryIf determines if an error should be retried
	RetryIf func(error) bool
	// OnRetry is called after a failed attempt that will be retried, before waiting
	OnRetry func(attempt int, err error, delay time.Duration)
	Context context.Context
	Logger  logger.Logger
}

// DefaultConfig returns three attempts two seconds apart
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 2 * time.Second},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewNopLogger(),
	}
}

// DefaultRetryIf retries typed errors the taxonomy marks retryable.
// A typed network error wrapping a per-request deadline is still retried;
// bare context errors are not.
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}

	var typed *errs.Error
	if errors.As(err, &typed) {
		return errs.IsRetryable(typed.Type)
	}
	return false
}

// ErrExhausted is wrapped around the last error once MaxAttempts is reached
var ErrExhausted = errors.New("max retry attempts exceeded")

func (c *Config) withDefaults() *Config {
	out := *c
	def := DefaultConfig()
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = def.MaxAttempts
	}
	if out.Backoff == nil {
		out.Backoff = def.Backoff
	}
	if out.RetryIf == nil {
		out.RetryIf = def.RetryIf
	}
	if out.Context == nil {
		out.Context = def.Context
	}
	if out.Logger == nil {
		out.Logger = def.Logger
	}
	return &out
}

// Do runs op until it succeeds, returns a non-retryable error, or
// MaxAttempts is reached. No wait happens after the final attempt.
func Do(op Operation, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.withDefaults()
	cfg.Backoff.Reset()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := cfg.Context.Err(); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}

		err := op(attempt)
		if err == nil {
			if attempt > 1 {
				cfg.Logger.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}
		lastErr = err

		if !cfg.RetryIf(err) {
			cfg.Logger.DebugWithFields("error is not retryable", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
			return err
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		delay := cfg.Backoff.NextDelay(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}

		if err := Wait(cfg.Context, delay); err != nil {
			cfg.Logger.WarnWithFields("retry cancelled", map[string]interface{}{
				"attempt": attempt,
				"reason":  err.Error(),
			})
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}

	cfg.Logger.ErrorWithFields("max retry attempts exceeded", map[string]interface{}{
		"attempts":   cfg.MaxAttempts,
		"last_error": lastErr.Error(),
	})
	return fmt.Errorf("%w (%d): %w", ErrExhausted, cfg.MaxAttempts, lastErr)
}

// DoWithResult executes an operation that returns a result with retry logic
func DoWithResult[T any](op OperationWithResult[T], cfg *Config) (T, error) {
	var result T

	err := Do(func(attempt int) error {
		var opErr error
		result, opErr = op(attempt)
		return opErr
	}, cfg)

	return result, err
}

// Retrier carries a retry configuration that can be specialised per call
type Retrier struct {
	config *Config
}

// NewRetrier creates a new retrier with the given configuration
func NewRetrier(cfg *Config) *Retrier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Retrier{config: cfg}
}

// Do executes an operation with retry logic
func (r *Retrier) Do(op Operation) error {
	return Do(op, r.config)
}

// DoWith runs op under r's configuration and returns its result
func DoWith[T any](r *Retrier, op OperationWithResult[T]) (T, error) {
	return DoWithResult(op, r.config)
}

// MaxAttempts reports the configured attempt budget
func (r *Retrier) MaxAttempts() int {
	return r.config.withDefaults().MaxAttempts
}

// WithContext returns a new retrier bound to ctx
func (r *Retrier) WithContext(ctx context.Context) *Retrier {
	newConfig := *r.config
	newConfig.Context = ctx
	return &Retrier{config: &newConfig}
}

// WithLogger returns a new retrier logging to l
func (r *Retrier) WithLogger(l logger.Logger) *Retrier {
	newConfig := *r.config
	newConfig.Logger = l
	return &Retrier{config: &newConfig}
}

// WithOnRetry returns a new retrier with the given retry callback
func (r *Retrier) WithOnRetry(fn func(attempt int, err error, delay time.Duration)) *Retrier {
	newConfig := *r.config
	newConfig.OnRetry = fn
	return &Retrier{config: &newConfig}
}

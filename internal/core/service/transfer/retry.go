package transfer

import (
	"context"
	"errors"
	"object-gateway/internal/core/domain"

	"github.com/cenkalti/backoff/v4"
)

// retryable reports whether err is worth another attempt
func retryable(err error) bool {
	return errors.Is(err, domain.ErrProviderUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

// retry runs op until it succeeds, fails permanently or the attempt budget is spent.
// Each attempt gets its own timeout so a stuck request only costs one attempt.
// onRetry is called before every new attempt with its 1-based number.
func (e *Executor) retry(ctx context.Context, op func(ctx context.Context, attempt int) error, onRetry func(attempt int)) error {
	attempt := 0

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.cfg.RetryInitialInterval
	policy.MaxInterval = e.cfg.RetryMaxInterval
	policy.MaxElapsedTime = 0

	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		attempt++
		if attempt > 1 && onRetry != nil {
			onRetry(attempt)
		}

		attemptCtx := ctx
		if e.cfg.PartTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, e.cfg.PartTimeout)
			defer cancel()
		}

		err := op(attemptCtx, attempt)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	budget := backoff.WithMaxRetries(policy, uint64(max(e.cfg.RetryAttempts, 1)-1))
	return backoff.Retry(operation, backoff.WithContext(budget, ctx))
}

package services

import (
	"context"
	"errors"
	"time"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/logger"
)

// RetryPolicy retries operations that fail with domain.ErrTransientIO.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// Backoff is the first delay; each retry doubles it.
	Backoff time.Duration
}

// NewRetryPolicy builds a policy from ingest settings.
func NewRetryPolicy(settings domain.IngestSettings) RetryPolicy {
	return RetryPolicy{MaxRetries: settings.MaxRetries, Backoff: settings.RetryBackoff}
}

// Do runs fn until it succeeds, fails with a non-transient error, the
// retries are used up or ctx is done.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	delay := p.Backoff
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil || !errors.Is(err, domain.ErrTransientIO) || attempt >= p.MaxRetries {
			return err
		}

		logger.Debug("%s failed (attempt %d/%d), retrying in %s: %v", op, attempt+1, p.MaxRetries+1, delay, err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
		delay *= 2
	}
}

// retryValue is Do for operations that return a value.
func retryValue[T any](ctx context.Context, p RetryPolicy, op string, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err == nil {
			out = v
		}
		return err
	})
	return out, err
}

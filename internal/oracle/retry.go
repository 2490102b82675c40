package oracle

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v5"
)

type retrying struct {
	next     Oracle
	maxTries uint
	policy   func() backoff.BackOff
}

// WithRetry retries failed generations with exponential backoff, up to
// maxTries attempts in total. maxTries <= 1 returns next unchanged.
// Context cancellation is never retried.
func WithRetry(next Oracle, maxTries int) Oracle {
	if maxTries <= 1 {
		return next
	}
	return &retrying{
		next:     next,
		maxTries: uint(maxTries),
		policy:   func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

func (r *retrying) Generate(ctx context.Context, prompt string) (string, error) {
	op := func() (string, error) {
		out, err := r.next.Generate(ctx, prompt)
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return "", backoff.Permanent(err)
		}
		return out, err
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(r.policy()),
		backoff.WithMaxTries(r.maxTries),
	)
}

// Unwrap returns the wrapped oracle.
func (r *retrying) Unwrap() Oracle { return r.next }

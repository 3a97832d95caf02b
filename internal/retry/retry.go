// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retry wraps fallible operations with bounded, classifier-gated
// retry. Backoff is linear: the wait before retry n is Delay * n. Failures
// classified as terminal propagate immediately; after the attempt budget is
// spent the last failure is returned unchanged so callers see the original
// error.
package retry

import (
	"context"
	"time"

	"github.com/pdiddy/hypothesis-engine/internal/apperr"
)

const (
	defaultMaxRetries = 3
	defaultDelay      = time.Second
)

// Policy configures one retry loop. The zero value uses the defaults
// (3 retries, 1 s base delay, no observation hook).
type Policy struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int

	// Delay is the base backoff duration, scaled by the attempt count.
	Delay time.Duration

	// OnRetry, when set, is invoked with the upcoming retry number
	// (1-based) and the error that caused it, before the backoff wait.
	OnRetry func(attempt int, err error)
}

// Do runs op up to p.MaxRetries+1 times. Success short-circuits; a success
// is never retried. Retries wait Delay * attempt, honoring ctx cancellation
// during the wait.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T

	maxRetries := p.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	delay := p.Delay
	if delay <= 0 {
		delay = defaultDelay
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !apperr.Retryable(err) {
			return zero, err
		}
		if attempt == maxRetries {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay * time.Duration(attempt+1)):
		}
	}

	return zero, lastErr
}

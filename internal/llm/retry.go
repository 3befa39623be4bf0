package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider is a decorator that retries transient errors with
// exponential backoff and jitter. A stream is only retried while it has
// produced nothing: once a chunk reaches the consumer, a later failure is
// passed through unchanged.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Stream(ctx context.Context, req Request) Stream {
	return func(yield func(Chunk, error) bool) {
		attempts := max(1, r.config.MaxAttempts)
		invalidRetried := false
		var lastErr error

		for attempt := range attempts {
			emitted := false
			var streamErr error
			for c, err := range r.inner.Stream(ctx, req) {
				if err != nil {
					streamErr = err
					break
				}
				emitted = true
				if !yield(c, nil) {
					return
				}
			}
			if streamErr == nil {
				return
			}
			if emitted || !r.shouldRetry(streamErr, &invalidRetried) {
				yield(Chunk{}, streamErr)
				return
			}
			lastErr = streamErr

			// Last attempt: don't sleep, just report the error.
			if attempt == attempts-1 {
				break
			}

			select {
			case <-ctx.Done():
				yield(Chunk{}, ctx.Err())
				return
			case <-time.After(r.backoff(attempt, streamErr)):
			}
		}

		yield(Chunk{}, lastErr)
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// shouldRetry allows transient failures and a single invalid response.
func (r *RetryProvider) shouldRetry(err error, invalidRetried *bool) bool {
	if !Transient(err) {
		return false
	}
	var invResp *ErrInvalidResponse
	if errors.As(err, &invResp) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
	}
	return true
}

// backoff computes the wait duration for the given attempt.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	// Respect RetryAfter for rate limits.
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

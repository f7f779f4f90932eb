package llm

import (
	"context"
	"math/rand"
	"time"
)

const (
	retryAttempts  = 4
	retryBaseDelay = time.Second
)

// RetryProvider wraps a Provider with bounded retries on rate-limit
// errors: up to 4 attempts total, base delay doubling each attempt
// plus a small random jitter. Other error classes fail immediately.
type RetryProvider struct {
	provider Provider
	attempts int
	base     time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	jitter   func(d time.Duration) time.Duration
}

// NewRetryProvider wraps the given provider with rate-limit retries.
func NewRetryProvider(provider Provider) *RetryProvider {
	return &RetryProvider{
		provider: provider,
		attempts: retryAttempts,
		base:     retryBaseDelay,
		sleep:    sleepCtx,
		jitter: func(d time.Duration) time.Duration {
			return time.Duration(rand.Int63n(int64(d)/4 + 1))
		},
	}
}

func (r *RetryProvider) Name() string {
	return r.provider.Name()
}

func (r *RetryProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var lastErr error
	delay := r.base
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, delay+r.jitter(delay)); err != nil {
				return nil, err
			}
			delay *= 2
		}
		resp, err := r.provider.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !IsRateLimit(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// Stream retries only the stream start; once deltas are flowing a
// failure belongs to the consumer, since text may already have been
// forwarded to the client.
func (r *RetryProvider) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error) {
	var lastErr error
	delay := r.base
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, delay+r.jitter(delay)); err != nil {
				return nil, err
			}
			delay *= 2
		}
		ch, err := r.provider.Stream(ctx, req)
		if err == nil {
			return ch, nil
		}
		if !IsRateLimit(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

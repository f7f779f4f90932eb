package llm

import (
	"context"
	"log"
)

// FallbackProvider tries the primary model first and retries once
// with the fallback model when the primary fails. An empty fallback
// model disables the second attempt.
type FallbackProvider struct {
	provider Provider
	primary  string
	fallback string
}

// NewFallbackProvider wraps the provider with a primary/fallback model pair.
func NewFallbackProvider(provider Provider, primary, fallback string) *FallbackProvider {
	return &FallbackProvider{
		provider: provider,
		primary:  primary,
		fallback: fallback,
	}
}

func (f *FallbackProvider) Name() string {
	return f.provider.Name()
}

func (f *FallbackProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if req.Model == "" {
		req.Model = f.primary
	}
	resp, err := f.provider.Complete(ctx, req)
	if err == nil || f.fallback == "" || req.Model == f.fallback {
		return resp, err
	}
	log.Printf("llm: model %s failed (%v), retrying with fallback %s", req.Model, err, f.fallback)
	req.Model = f.fallback
	return f.provider.Complete(ctx, req)
}

func (f *FallbackProvider) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error) {
	if req.Model == "" {
		req.Model = f.primary
	}
	ch, err := f.provider.Stream(ctx, req)
	if err == nil || f.fallback == "" || req.Model == f.fallback {
		return ch, err
	}
	log.Printf("llm: model %s stream failed (%v), retrying with fallback %s", req.Model, err, f.fallback)
	req.Model = f.fallback
	return f.provider.Stream(ctx, req)
}

// Package llm abstracts the completion service behind a provider
// interface with buffered and streaming modes.
package llm

import "context"

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Stream sends a completion request and delivers the response
	// incrementally. The returned error covers failures to start the
	// stream; failures mid-stream arrive as a StreamError event.
	Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error)
	// Name returns the name of this provider.
	Name() string
}

// withSystem prepends the system prompt as a system-role message.
func withSystem(req CompletionRequest) []Message {
	if req.System == "" {
		return req.Messages
	}
	msgs := make([]Message, 0, len(req.Messages)+1)
	msgs = append(msgs, Message{Role: RoleSystem, Content: req.System})
	return append(msgs, req.Messages...)
}

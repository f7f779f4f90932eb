package llm

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// MockProvider is a test provider that records calls and returns canned responses.
type MockProvider struct {
	mu       sync.Mutex
	Calls    []CompletionRequest
	Response *CompletionResponse
	Deltas   []string
	Errs     []error // consumed one per call; nil means success
	ProvName string
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		ProvName: name,
		Response: &CompletionResponse{
			Content:      "mock response",
			Model:        "mock-model",
			FinishReason: "stop",
		},
		Deltas: []string{"mock ", "response"},
	}
}

func (m *MockProvider) Name() string {
	return m.ProvName
}

func (m *MockProvider) nextErr() error {
	if len(m.Errs) == 0 {
		return nil
	}
	err := m.Errs[0]
	m.Errs = m.Errs[1:]
	return err
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if err := m.nextErr(); err != nil {
		return nil, err
	}
	return m.Response, nil
}

func (m *MockProvider) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if err := m.nextErr(); err != nil {
		return nil, err
	}
	ch := make(chan StreamEvent, len(m.Deltas)+1)
	for _, d := range m.Deltas {
		ch <- StreamEvent{Type: StreamDelta, Text: d}
	}
	ch <- StreamEvent{Type: StreamDone, StopReason: "stop"}
	close(ch)
	return ch, nil
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func rateLimitErr() error {
	return &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "rate limit"}
}

// --- Tests ---

func TestMockProviderStream(t *testing.T) {
	mock := NewMockProvider("test")
	ch, err := mock.Stream(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var text string
	var done bool
	for ev := range ch {
		switch ev.Type {
		case StreamDelta:
			text += ev.Text
		case StreamDone:
			done = true
		}
	}
	if text != "mock response" || !done {
		t.Errorf("stream: text=%q done=%v", text, done)
	}
}

func TestFactoryReturnsErrorForMissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewProvider("openai", "gpt-4o"); err == nil {
		t.Error("expected error for openai with missing API key")
	}
}

func TestFactoryReturnsErrorForUnknownProvider(t *testing.T) {
	if _, err := NewProvider("bedrock", "some-model"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryCreatesOllamaWithDefaultHost(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "")
	provider, err := NewProvider("ollama", "llama3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ollamaP, ok := provider.(*OllamaProvider)
	if !ok {
		t.Fatal("expected *OllamaProvider")
	}
	if ollamaP.baseURL != "http://localhost:11434" {
		t.Errorf("expected default host, got %q", ollamaP.baseURL)
	}
}

func TestFactoryCreatesOpenAIProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	provider, err := NewProvider("openai", "gpt-4o")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Name() != "openai" {
		t.Errorf("expected name 'openai', got %q", provider.Name())
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorClass
	}{
		{rateLimitErr(), ClassThrottling},
		{&openai.APIError{HTTPStatusCode: http.StatusBadRequest}, ClassValidation},
		{&openai.APIError{HTTPStatusCode: http.StatusInternalServerError}, ClassInternal},
		{errors.New("rate limit exceeded"), ClassThrottling},
		{errors.New("invalid model id"), ClassValidation},
		{errors.New("connection reset"), ClassInternal},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func newFastRetry(p Provider) *RetryProvider {
	r := NewRetryProvider(p)
	r.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	r.jitter = func(d time.Duration) time.Duration { return 0 }
	return r
}

func TestRetryOnRateLimit(t *testing.T) {
	mock := NewMockProvider("test")
	mock.Errs = []error{rateLimitErr(), rateLimitErr()}
	r := newFastRetry(mock)

	resp, err := r.Complete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if resp.Content != "mock response" {
		t.Errorf("content: %q", resp.Content)
	}
	if mock.CallCount() != 3 {
		t.Errorf("expected 3 attempts, got %d", mock.CallCount())
	}
}

func TestRetryGivesUpAfterFourAttempts(t *testing.T) {
	mock := NewMockProvider("test")
	mock.Errs = []error{rateLimitErr(), rateLimitErr(), rateLimitErr(), rateLimitErr(), rateLimitErr()}
	r := newFastRetry(mock)

	if _, err := r.Complete(context.Background(), CompletionRequest{}); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if mock.CallCount() != 4 {
		t.Errorf("expected 4 attempts, got %d", mock.CallCount())
	}
}

func TestRetryDoesNotRetryOtherErrors(t *testing.T) {
	mock := NewMockProvider("test")
	mock.Errs = []error{errors.New("boom")}
	r := newFastRetry(mock)

	if _, err := r.Complete(context.Background(), CompletionRequest{}); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected single attempt, got %d", mock.CallCount())
	}
}

func TestRetryStreamStart(t *testing.T) {
	mock := NewMockProvider("test")
	mock.Errs = []error{rateLimitErr()}
	r := newFastRetry(mock)

	ch, err := r.Stream(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("expected stream after retry, got %v", err)
	}
	if ch == nil {
		t.Fatal("nil channel")
	}
	if mock.CallCount() != 2 {
		t.Errorf("expected 2 attempts, got %d", mock.CallCount())
	}
}

func TestFallbackUsesPrimaryFirst(t *testing.T) {
	mock := NewMockProvider("test")
	f := NewFallbackProvider(mock, "primary-model", "fallback-model")

	if _, err := f.Complete(context.Background(), CompletionRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.Calls[0].Model != "primary-model" {
		t.Errorf("expected primary model, got %q", mock.Calls[0].Model)
	}
}

func TestFallbackRetriesWithFallbackModel(t *testing.T) {
	mock := NewMockProvider("test")
	mock.Errs = []error{errors.New("model gone")}
	f := NewFallbackProvider(mock, "primary-model", "fallback-model")

	if _, err := f.Complete(context.Background(), CompletionRequest{}); err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}
	if len(mock.Calls) != 2 || mock.Calls[1].Model != "fallback-model" {
		t.Errorf("expected second call with fallback model, calls: %+v", mock.Calls)
	}
}

func TestFallbackDisabledWithoutModel(t *testing.T) {
	mock := NewMockProvider("test")
	mock.Errs = []error{errors.New("model gone")}
	f := NewFallbackProvider(mock, "primary-model", "")

	if _, err := f.Complete(context.Background(), CompletionRequest{}); err == nil {
		t.Fatal("expected error without fallback model")
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected single call, got %d", mock.CallCount())
	}
}

func TestWithSystemPrependsSystemMessage(t *testing.T) {
	req := CompletionRequest{
		System:   "be brief",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}
	msgs := withSystem(req)
	if len(msgs) != 2 || msgs[0].Role != RoleSystem || msgs[0].Content != "be brief" {
		t.Errorf("unexpected messages: %+v", msgs)
	}
}

func TestRoles(t *testing.T) {
	if RoleSystem != "system" || RoleUser != "user" || RoleAssistant != "assistant" {
		t.Error("role constants changed")
	}
}

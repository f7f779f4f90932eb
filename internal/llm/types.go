package llm

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest contains the parameters for an LLM completion request.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	System      string
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// CompletionResponse contains the result of an LLM completion request.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

// StreamEventType discriminates events on a completion stream.
type StreamEventType string

const (
	// StreamDelta carries an incremental chunk of answer text.
	StreamDelta StreamEventType = "delta"
	// StreamDone terminates a successful stream, with a stop reason.
	StreamDone StreamEventType = "done"
	// StreamError terminates a failed stream.
	StreamError StreamEventType = "error"
)

// StreamEvent is one event on a completion stream. The channel is
// closed after a StreamDone or StreamError event.
type StreamEvent struct {
	Type       StreamEventType
	Text       string
	StopReason string
	Err        error
}

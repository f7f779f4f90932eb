// Package transport delivers structured response frames to a chat
// connection. Senders are best-effort: a client that disconnected
// mid-answer must not fail the request.
package transport

// Frame types.
const (
	TypeDelta   = "delta"
	TypeSources = "sources"
	TypeError   = "error"
	TypeEnd     = "end"
)

// SourceRef is the client-facing shape of one evidence source.
type SourceRef struct {
	URL   string  `json:"url"`
	Label string  `json:"label"`
	Page  int     `json:"page,omitempty"`
	Score float32 `json:"score,omitempty"`
}

// Frame is the discriminated union sent over the connection. Text is
// set for delta and error frames; delta frames also carry Format so
// clients know the text is markdown. Sources frames carry both the
// structured list and a pre-rendered markdown block in Text.
type Frame struct {
	Type       string      `json:"type"`
	StatusCode int         `json:"statusCode"`
	Text       string      `json:"text,omitempty"`
	Format     string      `json:"format,omitempty"`
	Sources    []SourceRef `json:"sources,omitempty"`
}

// Delta builds an incremental markdown text frame.
func Delta(text string) Frame {
	return Frame{Type: TypeDelta, StatusCode: 200, Text: text, Format: "markdown"}
}

// Sources builds the evidence-list frame. text is the rendered
// markdown block for clients that only display text.
func Sources(refs []SourceRef, text string) Frame {
	return Frame{Type: TypeSources, StatusCode: 200, Sources: refs, Text: text, Format: "markdown"}
}

// Error builds an error frame with a user-facing message.
func Error(statusCode int, text string) Frame {
	return Frame{Type: TypeError, StatusCode: statusCode, Text: text}
}

// End builds the terminating frame.
func End(statusCode int) Frame {
	return Frame{Type: TypeEnd, StatusCode: statusCode}
}

// Sender delivers frames to one connection.
type Sender interface {
	Send(frame Frame) error
}

// SendEnd terminates a successful response.
func SendEnd(s Sender) {
	_ = s.Send(End(200))
}

// SendErrorEnd sends a user-facing error followed by the terminating
// frame, so every failure path still closes the logical response.
func SendErrorEnd(s Sender, statusCode int, message string) {
	_ = s.Send(Error(statusCode, message))
	_ = s.Send(End(statusCode))
}

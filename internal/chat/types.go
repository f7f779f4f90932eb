// Package chat dispatches inbound connection messages: it validates
// the request, routes it through the intent classifier, and drives the
// matching response flow.
package chat

// Request is one inbound message from a chat connection.
type Request struct {
	ConnectionID string        `json:"connectionId"`
	Action       string        `json:"action,omitempty"`
	Prompt       string        `json:"prompt,omitempty"`
	History      []HistoryItem `json:"history,omitempty"`

	// Feedback fields, set when Action is "submitFeedback".
	Rating      string `json:"rating,omitempty"`
	UserMessage string `json:"userMessage,omitempty"`
	BotMessage  string `json:"botMessage,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// HistoryItem is one client-side transcript entry. Only TEXT entries
// sent by USER or BOT reach the model.
type HistoryItem struct {
	Type    string `json:"type"`
	SentBy  string `json:"sentBy"`
	Message string `json:"message"`
}

// ActionFeedback marks a feedback submission.
const ActionFeedback = "submitFeedback"

package chat

import (
	"strings"

	"github.com/i2i-labs/tobi-backend/internal/llm"
)

// NormalizeHistory turns the client transcript into conversation turns
// the completion service accepts: text entries only, strictly
// alternating roles, starting with a user turn. Consecutive user turns
// are merged; surplus assistant turns are dropped. The result ends
// with an assistant turn because the current utterance is appended
// after it.
func NormalizeHistory(items []HistoryItem) []llm.Message {
	var out []llm.Message
	for _, it := range items {
		if !strings.EqualFold(it.Type, "TEXT") {
			continue
		}
		text := strings.TrimSpace(it.Message)
		if text == "" {
			continue
		}
		switch strings.ToUpper(it.SentBy) {
		case "USER":
			if n := len(out); n > 0 && out[n-1].Role == llm.RoleUser {
				out[n-1].Content += "\n" + text
			} else {
				out = append(out, llm.Message{Role: llm.RoleUser, Content: text})
			}
		case "BOT":
			if len(out) == 0 || out[len(out)-1].Role == llm.RoleAssistant {
				continue
			}
			out = append(out, llm.Message{Role: llm.RoleAssistant, Content: text})
		}
	}
	if n := len(out); n > 0 && out[n-1].Role == llm.RoleUser {
		out = out[:n-1]
	}
	return out
}

// BotMessages extracts the raw assistant-side text entries, oldest
// first, for the summarization target scan.
func BotMessages(items []HistoryItem) []string {
	var out []string
	for _, it := range items {
		if !strings.EqualFold(it.Type, "TEXT") {
			continue
		}
		if !strings.EqualFold(it.SentBy, "BOT") {
			continue
		}
		if msg := it.Message; msg != "" {
			out = append(out, msg)
		}
	}
	return out
}

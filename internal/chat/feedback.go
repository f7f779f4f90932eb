package chat

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/i2i-labs/tobi-backend/internal/blobstore"
)

// feedbackRecord is the stored shape of one thumbs-down submission.
type feedbackRecord struct {
	Timestamp    string `json:"timestamp"`
	Rating       string `json:"rating"`
	ConnectionID string `json:"connection_id"`
	UserMessage  string `json:"user_message"`
	BotMessage   string `json:"bot_message"`
}

// saveFeedback persists a thumbs-down submission. Other ratings are
// acknowledged and dropped.
func saveFeedback(store blobstore.Store, now time.Time, req Request) error {
	if req.Rating != "thumbsdown" {
		log.Printf("chat: ignoring feedback rating %q", req.Rating)
		return nil
	}
	if req.UserMessage == "" || req.BotMessage == "" {
		return fmt.Errorf("feedback missing user or bot message")
	}

	ts := req.Timestamp
	if ts == "" {
		ts = now.UTC().Format(time.RFC3339)
	}
	record := feedbackRecord{
		Timestamp:    ts,
		Rating:       req.Rating,
		ConnectionID: req.ConnectionID,
		UserMessage:  req.UserMessage,
		BotMessage:   req.BotMessage,
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling feedback: %w", err)
	}

	key := "feedback/" + now.UTC().Format("2006-01-02-15-04-05") + "-thumbsdown.json"
	if err := store.Put(key, data); err != nil {
		return fmt.Errorf("saving feedback: %w", err)
	}
	log.Printf("chat: feedback saved: %s", key)
	return nil
}

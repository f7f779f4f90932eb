package compose

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/i2i-labs/tobi-backend/internal/llm"
	"github.com/i2i-labs/tobi-backend/internal/retrieval"
)

const snippetCap = 900

type reasonDoc struct {
	Key     string `json:"key"`
	Snippet string `json:"snippet"`
	Label   string `json:"label"`
}

// relevanceReasons asks the model for a one-sentence reason per source
// explaining why it matters for the question, keyed by lowercased
// label. Failures degrade to an empty map; callers fall back to a
// generic line.
func (c *Composer) relevanceReasons(ctx context.Context, prompt string, sources []retrieval.Source) map[string]string {
	docs := make([]reasonDoc, 0, len(sources))
	for _, s := range sources {
		snip := strings.TrimSpace(s.Snippet)
		if snip == "" {
			continue
		}
		if len(snip) > snippetCap {
			snip = snip[:snippetCap] + "…"
		}
		docs = append(docs, reasonDoc{
			Key:     strings.ToLower(s.Label),
			Snippet: snip,
			Label:   s.Label,
		})
	}
	if len(docs) == 0 {
		return nil
	}

	payload, err := json.Marshal(map[string][]reasonDoc{"docs": docs})
	if err != nil {
		return nil
	}

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model: c.cfg.Model,
		System: "You write one-sentence reasons why each document is relevant to the user's question. " +
			"Base the reason ONLY on the provided snippet text; don't invent facts. " +
			"Be specific (e.g., 'covers Nigeria ART and PrEP guidance, 2020 national guideline'). " +
			"Return pure JSON mapping each 'key' to a single reason string. No extra commentary.",
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: "User question:\n" + prompt + "\n\nDocs:\n" + string(payload),
		}},
		JSONMode: true,
	})
	if err != nil {
		log.Printf("compose: relevance reasons: %v", err)
		return nil
	}

	obj := safeJSONFromText(resp.Content)
	if nested, ok := obj["reasons"].(map[string]any); ok {
		obj = nested
	}
	reasons := make(map[string]string, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok {
			reasons[k] = strings.TrimSpace(s)
		}
	}
	return reasons
}

// safeJSONFromText extracts the outermost JSON object from model
// output, tolerating prose around it.
func safeJSONFromText(txt string) map[string]any {
	start := strings.Index(txt, "{")
	end := strings.LastIndex(txt, "}")
	if start == -1 || end <= start {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(txt[start:end+1]), &obj); err != nil {
		return nil
	}
	return obj
}

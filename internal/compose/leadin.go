package compose

import (
	"context"
	"log"
	"math/rand"
	"regexp"
	"strings"

	"github.com/i2i-labs/tobi-backend/internal/llm"
	"github.com/i2i-labs/tobi-backend/internal/runtimekb"
)

var leadinBank = []string{
	"I also pulled a few official sources you can explore.",
	"Here are additional resources I grabbed in case you want more detail.",
	"These are a few more resources I think could help.",
	"I collected some extra sources that may be useful.",
	"You might find these additional official resources helpful.",
	"I added a few more resources you can check out.",
	"These references could help if you want to dive deeper.",
	"I gathered some more sources in case they're useful.",
	"Here are a few extra resources worth a look.",
	"These additional resources might answer follow-up questions you have.",
	"I included more resources that may inform planning.",
	"You can also review these official sources for more context.",
}

var newlineRe = regexp.MustCompile(`[\r\n]+`)

func randomLeadin(rng *rand.Rand) string {
	return leadinBank[rng.Intn(len(leadinBank))]
}

// leadinViaModel asks the model for a one-line introduction to the
// sources block, then normalizes it into a single short statement.
func (c *Composer) leadinViaModel(ctx context.Context, prompt string) (string, error) {
	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model: c.cfg.Model,
		System: "Write a short, friendly, ONE-LINE STATEMENT that introduces additional resources " +
			"the user might want to check. Avoid emojis and salesy tone. 6-14 words. " +
			"Plain text only. Do NOT end with a question mark.",
		Messages: []llm.Message{{
			Role: llm.RoleUser,
			Content: "User question:\n" + prompt + "\n\n" +
				"Return only the single statement line (e.g., " +
				"'Here are a few additional resources you might find useful.').",
		}},
	})
	if err != nil {
		return "", err
	}

	out := strings.TrimSpace(newlineRe.ReplaceAllString(resp.Content, " "))
	if out == "" {
		out = "Here are a few additional resources you might find useful."
	}
	if len(out) > 140 {
		out = strings.TrimRight(out[:140], " ") + "…"
	}
	if strings.HasSuffix(out, "?") {
		out = strings.TrimRight(strings.TrimRight(out, "?"), " ")
	}
	if !strings.HasSuffix(out, ".") {
		out += "."
	}
	return out, nil
}

// pickLeadin chooses the lead-in for the sources block. Rollout and
// budget planning questions skip the model call; those prompts showed
// up often enough that the extra latency wasn't worth it.
func (c *Composer) pickLeadin(ctx context.Context, prompt string) string {
	toks := runtimekb.Tokenize(prompt)
	hasNG := toks["nigeria"] || toks["ng"]
	hasPrEP := toks["prep"] || toks["pre-exposure"] || toks["preexposure"]
	isRolloutBudget := toks["rollout"] || toks["budget"] || toks["planning"] || toks["cost"] || toks["costing"]
	if hasNG && hasPrEP && isRolloutBudget {
		return randomLeadin(c.rng)
	}

	leadin, err := c.leadinViaModel(ctx, prompt)
	if err != nil {
		log.Printf("compose: lead-in model fallback: %v", err)
		return randomLeadin(c.rng)
	}
	return leadin
}

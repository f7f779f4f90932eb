package chat

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/i2i-labs/tobi-backend/internal/blobstore"
	"github.com/i2i-labs/tobi-backend/internal/compose"
	"github.com/i2i-labs/tobi-backend/internal/docindex"
	"github.com/i2i-labs/tobi-backend/internal/intent"
	"github.com/i2i-labs/tobi-backend/internal/markdown"
	"github.com/i2i-labs/tobi-backend/internal/runtimekb"
	"github.com/i2i-labs/tobi-backend/internal/transport"
)

const supportAnswer = "The i2i team is here anytime! Please contact us at " +
	"info.i2i@genesis-analytics.com"

// Dispatcher routes one inbound request to the matching response flow.
// The keyword index is optional; without it count questions answer 501.
type Dispatcher struct {
	kb       *runtimekb.Cache
	composer *compose.Composer
	index    *docindex.Index
	links    *blobstore.Links
	store    blobstore.Store
	now      func() time.Time
}

func NewDispatcher(kb *runtimekb.Cache, composer *compose.Composer, index *docindex.Index, links *blobstore.Links, store blobstore.Store) *Dispatcher {
	return &Dispatcher{
		kb:       kb,
		composer: composer,
		index:    index,
		links:    links,
		store:    store,
		now:      time.Now,
	}
}

// Handle processes one request end to end. Every path that produces
// frames finishes with exactly one end frame, including panics.
func (d *Dispatcher) Handle(ctx context.Context, sender transport.Sender, req Request) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("chat: panic handling request: %v", r)
			transport.SendErrorEnd(sender, 500, "Internal error.")
		}
	}()

	if req.Action == ActionFeedback {
		if err := saveFeedback(d.store, d.now(), req); err != nil {
			log.Printf("chat: feedback: %v", err)
		}
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		transport.SendErrorEnd(sender, 400, "Please provide a prompt.")
		return
	}

	if intent.IsSupportQuestion(prompt) {
		_ = sender.Send(transport.Delta(supportAnswer))
		transport.SendEnd(sender)
		return
	}

	cls := intent.Classify(prompt, d.kb.Personal(), d.kb.Runtime(), BotMessages(req.History))
	switch cls.Strategy {
	case intent.StrategyPersonal:
		d.answerPersonal(sender, cls)
	case intent.StrategyLinkOnly:
		d.answerLinkOnly(sender, cls)
	case intent.StrategySummarize:
		d.answerSummarize(ctx, sender, prompt, cls, req.History)
	case intent.StrategyCount:
		d.answerCount(ctx, sender, cls)
	default:
		d.composer.Talk(ctx, sender, prompt, NormalizeHistory(req.History))
	}
}

func (d *Dispatcher) answerPersonal(sender transport.Sender, cls intent.Classification) {
	answer := cls.Item.AnswerTemplate
	if answer == "" {
		answer = "Got it."
	}
	_ = sender.Send(transport.Delta(answer))
	transport.SendEnd(sender)
}

func (d *Dispatcher) answerLinkOnly(sender transport.Sender, cls intent.Classification) {
	item := cls.Item
	lead := item.AnswerText
	url := strings.TrimSpace(item.SourceURL)

	var text string
	if url != "" {
		if lead == "" {
			lead = "Here's the best source:"
		}
		name := strings.TrimSpace(item.PrimarySource)
		if name == "" {
			name = "Link"
		}
		text = lead + "\n\n" + markdown.Link(url, name)
	} else {
		if lead == "" {
			lead = "Here's the best source."
		}
		text = lead
	}
	_ = sender.Send(transport.Delta(text))
	transport.SendEnd(sender)
}

func (d *Dispatcher) answerSummarize(ctx context.Context, sender transport.Sender, prompt string, cls intent.Classification, history []HistoryItem) {
	if cls.TargetURL == "" {
		transport.SendErrorEnd(sender, 400,
			"I couldn't find a prior link to summarize. Please paste the link "+
				"or ask again after I share one.")
		return
	}
	d.composer.Summarize(ctx, sender, prompt, cls.TargetURL, NormalizeHistory(history))
}

func (d *Dispatcher) answerCount(ctx context.Context, sender transport.Sender, cls intent.Classification) {
	if d.index == nil {
		transport.SendErrorEnd(sender, 501, "Document counting is not configured.")
		return
	}
	if cls.Keyword == "" {
		transport.SendErrorEnd(sender, 400,
			`I couldn't find the keyword to count. Try: how many papers mention "cats"?`)
		return
	}

	res, err := d.index.CountKeyword(ctx, cls.Keyword)
	if err != nil {
		log.Printf("chat: count %q: %v", cls.Keyword, err)
		transport.SendErrorEnd(sender, 500, "There was a problem counting documents.")
		return
	}

	text := res.Markdown(func(doc string) string {
		url, err := d.links.BrowsableURL(doc)
		if err != nil {
			return ""
		}
		return url
	})
	_ = sender.Send(transport.Delta(text))
	transport.SendEnd(sender)
}

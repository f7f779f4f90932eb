// Package compose builds model requests, drives streaming completions,
// and post-processes answers before they reach the client.
package compose

import (
	"context"
	"log"
	"math/rand"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/i2i-labs/tobi-backend/internal/config"
	"github.com/i2i-labs/tobi-backend/internal/intent"
	"github.com/i2i-labs/tobi-backend/internal/llm"
	"github.com/i2i-labs/tobi-backend/internal/markdown"
	"github.com/i2i-labs/tobi-backend/internal/retrieval"
	"github.com/i2i-labs/tobi-backend/internal/runtimekb"
	"github.com/i2i-labs/tobi-backend/internal/transport"
)

// Composer turns a classified request into streamed answer frames.
type Composer struct {
	provider  llm.Provider
	retriever *retrieval.Retriever
	kb        *runtimekb.Cache
	cfg       *config.Config
	rng       *rand.Rand
}

func New(provider llm.Provider, retriever *retrieval.Retriever, kb *runtimekb.Cache, cfg *config.Config) *Composer {
	return &Composer{
		provider:  provider,
		retriever: retriever,
		kb:        kb,
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// runtimeContext renders the curated answer rules and the resources
// most relevant to the prompt into a context block for the model.
func (c *Composer) runtimeContext(prompt string) string {
	kb := c.kb.Runtime()
	if kb == nil {
		return ""
	}

	rules := kb.Style.AnswerRules
	if len(rules) > 3 {
		rules = rules[:3]
	}

	var lines []string
	for _, r := range kb.RelevantResources(prompt, 4) {
		name := r.Name
		if name == "" {
			name = "Resource"
		}
		bits := []string{r.Summary}
		if len(r.WhenToUse) > 0 {
			use := r.WhenToUse
			if len(use) > 2 {
				use = use[:2]
			}
			bits = append(bits, "When to use: "+strings.Join(use, "; "))
		}
		if len(r.Caveats) > 0 {
			bits = append(bits, "Caveat: "+r.Caveats[0])
		}
		joined := strings.TrimSpace(strings.Join(nonEmpty(bits), " "))
		if r.URL != "" {
			lines = append(lines, "- "+name+" — "+joined+" (URL: "+r.URL+")")
		} else {
			lines = append(lines, "- "+name+" — "+joined)
		}
	}

	var b strings.Builder
	if len(rules) > 0 {
		b.WriteString("<answer_rules>\n" + strings.Join(rules, "\n") + "\n</answer_rules>\n")
	}
	if len(lines) > 0 {
		b.WriteString("<runtime_resource_map>\n" + strings.Join(lines, "\n") + "\n</runtime_resource_map>")
	}
	return b.String()
}

func nonEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Talk answers a general question, optionally grounded on retrieved
// evidence, and finishes with the sources block and an end frame.
func (c *Composer) Talk(ctx context.Context, sender transport.Sender, prompt string, history []llm.Message) {
	useKB := intent.ShouldUseKB(prompt)

	var refURL string
	var runtimeCtx string
	var sources []retrieval.Source
	if useKB {
		refURL = PickReferenceURL(prompt)
		runtimeCtx = c.runtimeContext(prompt)
		sources = c.retriever.Retrieve(ctx, prompt)
	}
	kbText := retrieval.JoinSnippets(sources)

	var userText string
	if runtimeCtx != "" || kbText != "" {
		userText = "Use the following runtime routing map and brief bios to choose the right data source/tool. " +
			"If helpful, consult the provided excerpts. " +
			"Do not mention internal tools. " +
			"CRITICAL FORMAT: Start with one plain-English sentence answering the question. " +
			"Do NOT begin with a URL, a label (e.g., 'UNAIDS AIDSinfo'), or a list. " +
			"Only after that sentence, you may add brief details. " +
			"Do not include raw URLs in the body—tools may attach sources separately.\n" +
			runtimeCtx + "\n" +
			"<doc_excerpts>\n" + kbText + "\n</doc_excerpts>\n\n" +
			"User question: " + prompt
	} else {
		userText = "Answer helpfully and accurately. If information is missing, say what would help.\n\n" +
			"User question: " + prompt
	}

	messages := append(append([]llm.Message{}, history...), llm.Message{Role: llm.RoleUser, Content: userText})
	events, err := c.provider.Stream(ctx, llm.CompletionRequest{
		Model:    c.cfg.Model,
		System:   c.cfg.SystemPrompt,
		Messages: messages,
	})
	if err != nil {
		log.Printf("compose: stream start: %v", err)
		transport.SendErrorEnd(sender, 500, "Model error: "+string(llm.Classify(err)))
		return
	}

	// Buffer the full answer: the sentence footnote needs complete
	// sentences, so post-processing can't run on partial chunks here.
	var raw strings.Builder
	for ev := range events {
		switch ev.Type {
		case llm.StreamDelta:
			raw.WriteString(ev.Text)
		case llm.StreamError:
			log.Printf("compose: stream error: %v", ev.Err)
			transport.SendErrorEnd(sender, 500, "Model streaming error.")
			return
		}
	}

	full := markdown.LinkifyBareURLs(raw.String())
	full = markdown.EmphasizeStats(full)

	// The best source backs the [1] footnote; the curated reference
	// stands in when retrieval came back empty.
	pre := append([]retrieval.Source{}, sources...)
	if refURL != "" && len(pre) == 0 {
		pre = append(pre, retrieval.Source{URL: refURL, Label: markdown.TitleForURL(refURL)})
	}
	pre = retrieval.DedupeSources(pre)
	footnoteURL := markdown.FootnoteFallbackURL
	if len(pre) > 0 && pre[0].URL != "" {
		footnoteURL = pre[0].URL
	}
	full = markdown.AnnotateSentence(full, footnoteURL, c.rng)

	_ = sender.Send(transport.Delta(full))

	if refURL != "" && c.cfg.ReferencePolicy == config.ReferenceInline {
		c.suggestInline(sender, refURL, full)
	}

	c.sendSources(ctx, sender, prompt, sources, refURL)
	transport.SendEnd(sender)
}

var linkedDomainRe = func(domain string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\]\(\s*https?://[^)]*` + regexp.QuoteMeta(domain) + `[^)]*\)`)
}

// suggestInline appends a "see also" line for the curated reference,
// unless the answer already links to it or its domain.
func (c *Composer) suggestInline(sender transport.Sender, refURL, answer string) {
	parsed, err := url.Parse(refURL)
	if err != nil || parsed.Host == "" {
		return
	}
	domain := strings.ToLower(parsed.Host)
	if strings.Contains(answer, refURL) || linkedDomainRe(domain).MatchString(answer) {
		return
	}

	var prefix, link string
	switch {
	case strings.HasSuffix(domain, "aidsinfo.unaids.org"):
		prefix = "\n\nFor the most current official prevalence statistics, see "
		link = markdown.Link(refURL, "UNAIDS AIDSinfo")
	case strings.Contains(domain, "prepitweb.org"):
		prefix = "\n\nYou can also check the official source here: "
		link = markdown.Link(refURL, "PEPFAR")
	default:
		prefix = "\n\nYou can also check the official source here: "
		link = markdown.Link(refURL, markdown.TitleForURL(refURL))
	}
	_ = sender.Send(transport.Delta(prefix + link + "\n"))
}

// sendSources emits the sources frame: deduped evidence minus the
// first entry, which the footnote already cites.
func (c *Composer) sendSources(ctx context.Context, sender transport.Sender, prompt string, sources []retrieval.Source, refURL string) {
	toSend := append([]retrieval.Source{}, sources...)
	if refURL != "" {
		if c.cfg.ReferencePolicy == config.ReferenceAppend {
			toSend = append(toSend, retrieval.Source{URL: refURL, Label: markdown.TitleForURL(refURL)})
		} else if len(toSend) == 0 {
			toSend = append(toSend, retrieval.Source{URL: refURL, Label: markdown.TitleForURL(refURL)})
		}
	}
	deduped := retrieval.DedupeSources(toSend)
	if len(deduped) < 2 {
		return
	}

	visible := deduped[1:]
	if n := c.cfg.Retrieval.TopSources; n > 0 && len(visible) > n {
		visible = visible[:n]
	}

	reasons := c.relevanceReasons(ctx, prompt, visible)

	var lines []string
	var refs []transport.SourceRef
	for _, s := range visible {
		if s.URL == "" {
			continue
		}
		label := s.Label
		if label == "" {
			label = markdown.TitleForURL(s.URL)
		}
		if label == "" {
			label = "Source"
		}
		if reason := reasons[strings.ToLower(label)]; reason != "" {
			lines = append(lines, "- "+markdown.Link(s.URL, label+" ⬈")+" - "+reason)
		} else {
			lines = append(lines, "- relevant to the question — "+markdown.Link(s.URL, label))
		}
		refs = append(refs, transport.SourceRef{URL: s.URL, Label: label, Page: s.Page, Score: s.Score})
	}
	if len(lines) == 0 {
		return
	}

	leadIn := c.pickLeadin(ctx, prompt)
	followUp := PickFollowUp(prompt, refURL != "", true, ModeTalk, c.rng)
	block := "\n\n&nbsp;\n\n\n" +
		"_" + leadIn + "_\n" +
		strings.Join(lines, "\n") +
		"\n\n" + followUp + "\n"

	_ = sender.Send(transport.Sources(refs, block))
}

// Summarize streams a narrative summary of the document behind a
// previously shared link.
func (c *Composer) Summarize(ctx context.Context, sender transport.Sender, prompt, docURL string, history []llm.Message) {
	hint := markdown.Basename(docURL)
	sources := c.retriever.RetrieveForDoc(ctx, prompt, hint)
	kbText := retrieval.JoinSnippets(sources)
	if kbText == "" {
		transport.SendErrorEnd(sender, 404, "I couldn't retrieve that document's text from the knowledge base.")
		return
	}

	userText := "You will summarize an official PDF. Use ONLY the provided snippets; do not invent facts. " +
		"Write a clear, paragraph-style summary (3-6 sentences) in plain English. " +
		"Do NOT include a title, headings, or bullet points—just narrative prose. " +
		"If something is unclear, say so briefly.\n\n" +
		"<doc_url>" + docURL + "</doc_url>\n" +
		"<knowledge_snippets>\n" + kbText + "\n</knowledge_snippets>\n\n" +
		"User request: " + prompt

	system := "Be accurate and concise."
	if c.cfg.SystemPrompt != "" {
		system = c.cfg.SystemPrompt + "\nBe accurate and concise."
	}

	messages := append(append([]llm.Message{}, history...), llm.Message{Role: llm.RoleUser, Content: userText})
	events, err := c.provider.Stream(ctx, llm.CompletionRequest{
		Model:    c.cfg.Model,
		System:   system,
		Messages: messages,
	})
	if err != nil {
		log.Printf("compose: summary stream start: %v", err)
		transport.SendErrorEnd(sender, 500, "Model error: "+string(llm.Classify(err)))
		return
	}

	var buf streamBuffer
	for ev := range events {
		switch ev.Type {
		case llm.StreamDelta:
			if safe := buf.add(ev.Text); safe != "" {
				safe = markdown.LinkifyBareURLs(safe)
				safe = markdown.EmphasizeStats(safe)
				_ = sender.Send(transport.Delta(safe))
			}
		case llm.StreamError:
			log.Printf("compose: summary stream error: %v", ev.Err)
			transport.SendErrorEnd(sender, 500, "Model streaming error.")
			return
		}
	}

	if rest := buf.rest(); rest != "" {
		rest = markdown.LinkifyBareURLs(rest)
		rest = markdown.EmphasizeStats(rest)
		_ = sender.Send(transport.Delta(rest))
	}

	followUp := PickFollowUp(prompt, false, len(sources) > 0, ModeSummary, c.rng)
	_ = sender.Send(transport.Delta("\n\n" + followUp + "\n"))
	transport.SendEnd(sender)
}

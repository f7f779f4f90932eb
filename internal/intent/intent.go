// Package intent decides which response strategy applies to a user
// utterance. Classification is a pure ordered rule list: the first
// matching rule wins, and the same utterance always classifies the
// same way.
package intent

import (
	"regexp"
	"strings"

	"github.com/i2i-labs/tobi-backend/internal/runtimekb"
)

// Strategy is the response strategy chosen for an utterance.
type Strategy string

const (
	// StrategyPersonal answers from the personal override knowledge base.
	StrategyPersonal Strategy = "personal"
	// StrategyLinkOnly answers with a curated title plus a single link.
	StrategyLinkOnly Strategy = "link_only"
	// StrategySummarize summarizes the document behind a previously shared link.
	StrategySummarize Strategy = "summarize"
	// StrategyCount counts corpus documents containing a keyword.
	StrategyCount Strategy = "count"
	// StrategyChat is the default RAG-augmented chat flow.
	StrategyChat Strategy = "chat"
)

// Classification is the outcome of routing one utterance.
type Classification struct {
	Strategy Strategy
	// Item is the matched routing entry for personal and link-only strategies.
	Item *runtimekb.RoutingItem
	// Keyword is the extracted count keyword; empty when none could be found.
	Keyword string
	// TargetURL is the summarization target taken from history.
	TargetURL string
}

// Classify routes the utterance through the ordered rule list:
// personal override, curated link-only, summarize, count, chat.
// priorBotMessages holds earlier assistant messages, oldest first,
// used to locate a summarization target.
func Classify(prompt string, personal, runtime *runtimekb.KnowledgeBase, priorBotMessages []string) Classification {
	if hit := personal.Match(prompt); hit != nil {
		return Classification{Strategy: StrategyPersonal, Item: hit}
	}

	if hit := runtime.Match(prompt); hit != nil && hit.LinkOnly {
		return Classification{Strategy: StrategyLinkOnly, Item: hit}
	}

	if LooksLikeSummarize(prompt) {
		return Classification{
			Strategy:  StrategySummarize,
			TargetURL: LastURL(priorBotMessages),
		}
	}

	if LooksLikeCount(prompt) {
		return Classification{Strategy: StrategyCount, Keyword: ExtractKeyword(prompt)}
	}

	return Classification{Strategy: StrategyChat}
}

var summarizeTriggers = []string{
	"summarize",
	"summary of",
	"sum up",
	"tl;dr",
	"key findings",
	"key points",
	"what are the findings",
	"what are the main points",
}

// LooksLikeSummarize reports whether the utterance asks for a document summary.
func LooksLikeSummarize(prompt string) bool {
	q := strings.ToLower(prompt)
	for _, t := range summarizeTriggers {
		if strings.Contains(q, t) {
			return true
		}
	}
	return false
}

var countStarters = []string{
	"how many papers",
	"count papers",
	"number of papers",
	"how many documents",
	"count documents",
	"list papers containing",
	"list documents containing",
	"count documents mentioning",
	"count documents about",
}

// LooksLikeCount reports whether the utterance asks for a document count.
func LooksLikeCount(prompt string) bool {
	q := runtimekb.Normalize(prompt)
	for _, s := range countStarters {
		if strings.HasPrefix(q, s) {
			return true
		}
	}
	if strings.Contains(q, "how many") && (strings.Contains(q, "mention") || strings.Contains(q, "contain")) {
		return true
	}
	return strings.HasPrefix(q, "list ")
}

var (
	doubleQuotedRe = regexp.MustCompile(`"([^"]+)"`)
	singleQuotedRe = regexp.MustCompile(`'([^']+)'`)
)

// keywordTriggers are checked in order against the lowercased
// utterance; the text following the first hit becomes the keyword.
var keywordTriggers = []string{"mention ", "containing ", "contain ", "about "}

// ExtractKeyword pulls the count keyword from an utterance. A quoted
// phrase wins; otherwise the tail after a trigger word is taken,
// capped at five tokens. Returns empty when nothing can be extracted.
func ExtractKeyword(prompt string) string {
	if m := doubleQuotedRe.FindStringSubmatch(prompt); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := singleQuotedRe.FindStringSubmatch(prompt); m != nil {
		return strings.TrimSpace(m[1])
	}
	ql := strings.ToLower(prompt)
	for _, trigger := range keywordTriggers {
		idx := strings.Index(ql, trigger)
		if idx < 0 {
			continue
		}
		tail := strings.TrimSpace(ql[idx+len(trigger):])
		tail = strings.SplitN(tail, "?", 2)[0]
		tail = strings.SplitN(tail, ",", 2)[0]
		words := strings.Fields(tail)
		if len(words) > 5 {
			words = words[:5]
		}
		token := strings.Trim(strings.Join(words, " "), `.,!?";'`)
		if token != "" {
			return token
		}
	}
	return ""
}

var anyURLRe = regexp.MustCompile(`(?i)https?://[^\s)>\]]+`)

// LastURL scans prior assistant messages backward and returns the
// first URL found, or empty.
func LastURL(priorBotMessages []string) string {
	for i := len(priorBotMessages) - 1; i >= 0; i-- {
		if m := anyURLRe.FindString(priorBotMessages[i]); m != "" {
			return m
		}
	}
	return ""
}

// topicTokens gates knowledge-base retrieval: small talk without any
// of these tokens answers from general knowledge alone.
var topicTokens = map[string]bool{
	"hiv": true, "aids": true, "prep": true, "pre-exposure": true,
	"prophylaxis": true, "incidence": true, "prevalence": true,
	"who": true, "unaids": true, "scorecards": true, "gpc": true,
	"statcompiler": true, "dhis2": true, "phia": true, "agyw": true,
	"key": true, "populations": true, "psat": true, "shipp": true,
	"pepfar": true, "dsd": true, "differentiated": true, "pokemon": true,
	"adolescent": true, "adolescents": true, "behavioral": true,
	"behavioural": true, "behaviour": true, "behavior": true,
}

// ShouldUseKB reports whether the utterance is on-topic enough to
// warrant a knowledge-base retrieval.
func ShouldUseKB(prompt string) bool {
	for t := range runtimekb.Tokenize(prompt) {
		if topicTokens[t] {
			return true
		}
	}
	return false
}

// supportTriggers intercept "how do I reach you" style questions
// before any other routing.
var supportTriggers = []string{
	"contact for support",
	"who can i contact",
	"support contact",
	"contact info",
	"support email",
	"who do i contact",
}

// IsSupportQuestion reports whether the utterance asks for the support contact.
func IsSupportQuestion(prompt string) bool {
	q := strings.ToLower(prompt)
	for _, t := range supportTriggers {
		if strings.Contains(q, t) {
			return true
		}
	}
	return false
}

// Package runtimekb caches the curated routing and personal knowledge
// files stored alongside the corpus, and matches user utterances
// against them.
package runtimekb

// KnowledgeBase is the curated routing knowledge document. It carries
// hand-authored Q&A entries, a resource map used to steer the model
// toward the right data tool, and style rules for answers.
type KnowledgeBase struct {
	Meta      Meta                  `json:"meta"`
	QNA       []RoutingItem         `json:"qna"`
	Resources []ResourceItem        `json:"resources"`
	Sources   map[string]SourceMeta `json:"sources"`
	Style     Style                 `json:"style"`
}

type Meta struct {
	Version string `json:"version"`
}

// RoutingItem is a curated canned answer. It matches when the
// normalized utterance equals QuestionExact or contains one of
// Patterns. LinkOnly items answer with a title plus a single link.
type RoutingItem struct {
	QuestionExact  string   `json:"question_exact"`
	Patterns       []string `json:"patterns"`
	LinkOnly       bool     `json:"link_only"`
	SourceURL      string   `json:"source_url"`
	PrimarySource  string   `json:"primary_source"`
	AnswerTemplate string   `json:"answer_template"`
	AnswerText     string   `json:"answer_text"`
}

// ResourceItem describes one external data tool or dashboard for the
// routing context block.
type ResourceItem struct {
	Name       string   `json:"name"`
	URL        string   `json:"url"`
	Summary    string   `json:"summary"`
	WhenToUse  []string `json:"when_to_use"`
	MatchTerms []string `json:"match_terms"`
	Caveats    []string `json:"caveats"`
	Category   string   `json:"category"`
}

type SourceMeta struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Style struct {
	AnswerRules []string `json:"answer_rules"`
}

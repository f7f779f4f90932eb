package intent

import (
	"testing"

	"github.com/i2i-labs/tobi-backend/internal/runtimekb"
)

func testKBs() (personal, runtime *runtimekb.KnowledgeBase) {
	personal = &runtimekb.KnowledgeBase{
		QNA: []runtimekb.RoutingItem{
			{QuestionExact: "what's my cat's name", AnswerTemplate: "Mochi"},
		},
	}
	runtime = &runtimekb.KnowledgeBase{
		QNA: []runtimekb.RoutingItem{
			{
				Patterns:      []string{"prep guidelines"},
				LinkOnly:      true,
				SourceURL:     "https://example.org/prep.pdf",
				PrimarySource: "PrEP Guidelines",
			},
			{Patterns: []string{"summarize prep"}, AnswerTemplate: "not link only"},
		},
	}
	return
}

func TestClassifyPersonalOverride(t *testing.T) {
	personal, runtime := testKBs()
	c := Classify("What's my cat's name?", personal, runtime, nil)
	if c.Strategy != StrategyPersonal {
		t.Fatalf("expected personal, got %s", c.Strategy)
	}
	if c.Item.AnswerTemplate != "Mochi" {
		t.Errorf("wrong item: %+v", c.Item)
	}
}

func TestClassifyLinkOnly(t *testing.T) {
	personal, runtime := testKBs()
	c := Classify("show me the prep guidelines", personal, runtime, nil)
	if c.Strategy != StrategyLinkOnly {
		t.Fatalf("expected link_only, got %s", c.Strategy)
	}
	if c.Item.SourceURL != "https://example.org/prep.pdf" {
		t.Errorf("wrong item: %+v", c.Item)
	}
}

func TestClassifyPersonalBeatsLinkOnly(t *testing.T) {
	personal, runtime := testKBs()
	personal.QNA = append(personal.QNA, runtimekb.RoutingItem{
		Patterns:       []string{"prep guidelines"},
		AnswerTemplate: "personal wins",
	})
	c := Classify("show me the prep guidelines", personal, runtime, nil)
	if c.Strategy != StrategyPersonal {
		t.Errorf("personal override must win, got %s", c.Strategy)
	}
}

func TestClassifySummarize(t *testing.T) {
	personal, runtime := testKBs()
	history := []string{
		"Here you go: https://example.org/a.pdf",
		"And a newer one: https://example.org/b.pdf",
	}
	c := Classify("please summarize that document", personal, runtime, history)
	if c.Strategy != StrategySummarize {
		t.Fatalf("expected summarize, got %s", c.Strategy)
	}
	if c.TargetURL != "https://example.org/b.pdf" {
		t.Errorf("expected most recent URL, got %q", c.TargetURL)
	}
}

func TestClassifySummarizeWithoutLink(t *testing.T) {
	personal, runtime := testKBs()
	c := Classify("summarize that", personal, runtime, nil)
	if c.Strategy != StrategySummarize {
		t.Fatalf("expected summarize, got %s", c.Strategy)
	}
	if c.TargetURL != "" {
		t.Errorf("expected empty target URL, got %q", c.TargetURL)
	}
}

func TestClassifyCount(t *testing.T) {
	personal, runtime := testKBs()
	c := Classify(`how many papers mention "climate change"?`, personal, runtime, nil)
	if c.Strategy != StrategyCount {
		t.Fatalf("expected count, got %s", c.Strategy)
	}
	if c.Keyword != "climate change" {
		t.Errorf("keyword: got %q", c.Keyword)
	}
}

func TestClassifyDefaultChat(t *testing.T) {
	personal, runtime := testKBs()
	c := Classify("what's the weather today", personal, runtime, nil)
	if c.Strategy != StrategyChat {
		t.Errorf("expected chat, got %s", c.Strategy)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	personal, runtime := testKBs()
	prompt := `count documents about malaria prevention`
	a := Classify(prompt, personal, runtime, nil)
	b := Classify(prompt, personal, runtime, nil)
	if a != b {
		t.Errorf("classification not idempotent: %+v vs %+v", a, b)
	}
}

func TestLooksLikeCount(t *testing.T) {
	tests := []struct {
		prompt string
		want   bool
	}{
		{"how many papers mention PrEP", true},
		{"count documents about malaria", true},
		{"list papers containing agyw", true},
		{"list everything you know", true},
		{"how many people live in Ghana", false},
		{"tell me about PrEP", false},
	}
	for _, tt := range tests {
		if got := LooksLikeCount(tt.prompt); got != tt.want {
			t.Errorf("LooksLikeCount(%q) = %v, want %v", tt.prompt, got, tt.want)
		}
	}
}

func TestExtractKeyword(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{`how many papers mention "climate change"?`, "climate change"},
		{`how many papers mention 'stigma'?`, "stigma"},
		{"count documents about malaria", "malaria"},
		{"how many documents containing key populations data, please", "key populations data"},
		{"count documents mentioning one two three four five six seven", ""},
		{"how many papers mention a b c d e f", "a b c d e"},
		{"how many papers are there", ""},
	}
	for _, tt := range tests {
		if got := ExtractKeyword(tt.prompt); got != tt.want {
			t.Errorf("ExtractKeyword(%q) = %q, want %q", tt.prompt, got, tt.want)
		}
	}
}

func TestShouldUseKB(t *testing.T) {
	tests := []struct {
		prompt string
		want   bool
	}{
		{"what is the HIV prevalence in Ghana", true},
		{"tell me about PrEP rollout", true},
		{"differentiated service delivery models", true},
		{"what's the weather today", false},
		{"hello there", false},
	}
	for _, tt := range tests {
		if got := ShouldUseKB(tt.prompt); got != tt.want {
			t.Errorf("ShouldUseKB(%q) = %v, want %v", tt.prompt, got, tt.want)
		}
	}
}

func TestIsSupportQuestion(t *testing.T) {
	if !IsSupportQuestion("Who can I contact about a bug?") {
		t.Error("expected support intercept")
	}
	if IsSupportQuestion("how do I contact the ministry of health") {
		t.Error("unexpected support intercept")
	}
}

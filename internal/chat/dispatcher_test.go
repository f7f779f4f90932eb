package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/i2i-labs/tobi-backend/internal/blobstore"
	"github.com/i2i-labs/tobi-backend/internal/compose"
	"github.com/i2i-labs/tobi-backend/internal/config"
	"github.com/i2i-labs/tobi-backend/internal/db"
	"github.com/i2i-labs/tobi-backend/internal/docindex"
	"github.com/i2i-labs/tobi-backend/internal/llm"
	"github.com/i2i-labs/tobi-backend/internal/retrieval"
	"github.com/i2i-labs/tobi-backend/internal/runtimekb"
	"github.com/i2i-labs/tobi-backend/internal/transport"
	"github.com/i2i-labs/tobi-backend/internal/vectordb"
)

const runtimeKB = `{
  "meta": {"version": "1"},
  "qna": [{
    "question_exact": "where can i find prep data",
    "patterns": ["prep dashboards"],
    "link_only": true,
    "source_url": "https://www.prepwatch.org/",
    "primary_source": "PrEPWatch",
    "answer_text": "PrEPWatch tracks global PrEP rollout."
  }],
  "resources": [],
  "sources": {},
  "style": {"answer_rules": []}
}`

const personalKB = `{
  "qna": [{
    "question_exact": "what's my cat's name",
    "answer_template": "Your cat is called Miso."
  }]
}`

type stubProvider struct {
	deltas []string
	text   string
	panics bool
}

func (p *stubProvider) Complete(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: p.text}, nil
}

func (p *stubProvider) Stream(context.Context, llm.CompletionRequest) (<-chan llm.StreamEvent, error) {
	if p.panics {
		panic("stub stream panic")
	}
	ch := make(chan llm.StreamEvent, len(p.deltas)+1)
	for _, d := range p.deltas {
		ch <- llm.StreamEvent{Type: llm.StreamDelta, Text: d}
	}
	ch <- llm.StreamEvent{Type: llm.StreamDone, StopReason: "end_turn"}
	close(ch)
	return ch, nil
}

func (p *stubProvider) Name() string { return "stub" }

type stubVectorStore struct {
	results []vectordb.SearchResult
}

func (s *stubVectorStore) AddDocuments(context.Context, []vectordb.Document) error { return nil }

func (s *stubVectorStore) Search(context.Context, string, int, *vectordb.SearchFilter) ([]vectordb.SearchResult, error) {
	return s.results, nil
}

func (s *stubVectorStore) DeleteBySourceKey(context.Context, string) error { return nil }
func (s *stubVectorStore) Persist(context.Context, string) error           { return nil }
func (s *stubVectorStore) Load(context.Context, string) error              { return nil }
func (s *stubVectorStore) Count() int                                      { return len(s.results) }

type testEnv struct {
	dispatcher *Dispatcher
	store      *blobstore.FSStore
}

func newTestEnv(t *testing.T, provider llm.Provider, vecs *stubVectorStore, withIndex bool) *testEnv {
	t.Helper()

	fs, err := blobstore.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	if err := fs.Put("kb/runtime.json", []byte(runtimeKB)); err != nil {
		t.Fatalf("Put runtime: %v", err)
	}
	if err := fs.Put("kb/personal.json", []byte(personalKB)); err != nil {
		t.Fatalf("Put personal: %v", err)
	}

	cfg := &config.Config{
		Model:           "gpt-4o",
		SystemPrompt:    "You are Tobi.",
		ReferencePolicy: config.ReferenceInline,
		Retrieval: config.RetrievalConfig{
			ScoreThreshold: 0.4,
			MaxResults:     10,
			TopSources:     3,
			SummaryResults: 20,
		},
	}
	links := blobstore.NewLinks("https://api.example.org", "", time.Hour)
	retriever := retrieval.NewRetriever(vecs, links, cfg.Retrieval)
	kb := runtimekb.NewCache(fs, "kb/runtime.json", "kb/personal.json")
	composer := compose.New(provider, retriever, kb, cfg)

	var index *docindex.Index
	if withIndex {
		database, err := db.OpenMemory()
		if err != nil {
			t.Fatalf("OpenMemory: %v", err)
		}
		t.Cleanup(func() { database.Close() })
		index, err = docindex.New(database, config.IndexConfig{
			Enabled:    true,
			Table:      "pages",
			TextColumn: "text",
			DocColumn:  "source_uri",
			PageColumn: "page",
		})
		if err != nil {
			t.Fatalf("docindex.New: %v", err)
		}
		ctx := context.Background()
		if err := index.AddPage(ctx, "pdfs/a.pdf", 1, "PrEP uptake data"); err != nil {
			t.Fatalf("AddPage: %v", err)
		}
		if err := index.AddPage(ctx, "pdfs/b.pdf", 1, "circumcision coverage"); err != nil {
			t.Fatalf("AddPage: %v", err)
		}
	}

	d := NewDispatcher(kb, composer, index, links, fs)
	d.now = func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) }
	return &testEnv{dispatcher: d, store: fs}
}

func handle(env *testEnv, req Request) *transport.Recorder {
	rec := &transport.Recorder{}
	env.dispatcher.Handle(context.Background(), rec, req)
	return rec
}

func TestHandleEmptyPrompt(t *testing.T) {
	env := newTestEnv(t, &stubProvider{}, &stubVectorStore{}, false)
	rec := handle(env, Request{ConnectionID: "c1", Prompt: "   "})

	types := rec.Types()
	if len(types) != 2 || types[0] != transport.TypeError || types[1] != transport.TypeEnd {
		t.Fatalf("frames = %v, want [error end]", types)
	}
	if rec.Frames[0].StatusCode != 400 {
		t.Errorf("statusCode = %d, want 400", rec.Frames[0].StatusCode)
	}
}

func TestHandleSupportIntercept(t *testing.T) {
	env := newTestEnv(t, &stubProvider{}, &stubVectorStore{}, false)
	rec := handle(env, Request{ConnectionID: "c1", Prompt: "Who can I contact for help?"})

	types := rec.Types()
	if len(types) != 2 || types[0] != transport.TypeDelta || types[1] != transport.TypeEnd {
		t.Fatalf("frames = %v, want [delta end]", types)
	}
	if !strings.Contains(rec.Text(), "info.i2i@genesis-analytics.com") {
		t.Errorf("support answer = %q", rec.Text())
	}
}

func TestHandlePersonalOverride(t *testing.T) {
	env := newTestEnv(t, &stubProvider{}, &stubVectorStore{}, false)
	rec := handle(env, Request{ConnectionID: "c1", Prompt: "What's my cat's name?"})

	if got := rec.Text(); got != "Your cat is called Miso." {
		t.Errorf("answer = %q", got)
	}
	types := rec.Types()
	if types[len(types)-1] != transport.TypeEnd {
		t.Errorf("frames = %v", types)
	}
}

func TestHandleLinkOnly(t *testing.T) {
	env := newTestEnv(t, &stubProvider{}, &stubVectorStore{}, false)
	rec := handle(env, Request{ConnectionID: "c1", Prompt: "Where can I find PrEP data?"})

	text := rec.Text()
	if !strings.Contains(text, "PrEPWatch tracks global PrEP rollout.") {
		t.Errorf("lead missing: %q", text)
	}
	if !strings.Contains(text, "[PrEPWatch](https://www.prepwatch.org/)") {
		t.Errorf("link missing: %q", text)
	}
}

func TestHandleSummarizeWithoutPriorLink(t *testing.T) {
	env := newTestEnv(t, &stubProvider{}, &stubVectorStore{}, false)
	rec := handle(env, Request{ConnectionID: "c1", Prompt: "Summarize the key findings"})

	types := rec.Types()
	if len(types) != 2 || types[0] != transport.TypeError || types[1] != transport.TypeEnd {
		t.Fatalf("frames = %v, want [error end]", types)
	}
	if rec.Frames[0].StatusCode != 400 {
		t.Errorf("statusCode = %d, want 400", rec.Frames[0].StatusCode)
	}
}

func TestHandleSummarizeUsesMostRecentLink(t *testing.T) {
	provider := &stubProvider{deltas: []string{"A concise summary of the report."}}
	vecs := &stubVectorStore{results: []vectordb.SearchResult{{
		Document: vectordb.Document{
			ID:      "1",
			Content: "report snippet",
			Metadata: vectordb.DocumentMetadata{
				SourceKey: "pdfs/report.pdf",
				Title:     "Report",
				Page:      1,
			},
		},
		Similarity: 0.9,
	}}}
	env := newTestEnv(t, provider, vecs, false)

	rec := handle(env, Request{
		ConnectionID: "c1",
		Prompt:       "Summarize that document",
		History: []HistoryItem{
			{Type: "TEXT", SentBy: "USER", Message: "share the report"},
			{Type: "TEXT", SentBy: "BOT", Message: "Here it is: https://api.example.org/docs/report.pdf"},
		},
	})

	types := rec.Types()
	if types[len(types)-1] != transport.TypeEnd {
		t.Fatalf("frames = %v", types)
	}
	for _, f := range rec.Frames {
		if f.Type == transport.TypeError {
			t.Fatalf("unexpected error frame: %+v", f)
		}
	}
	if !strings.Contains(rec.Text(), "A concise summary") {
		t.Errorf("summary missing: %q", rec.Text())
	}
}

func TestHandleCountNotConfigured(t *testing.T) {
	env := newTestEnv(t, &stubProvider{}, &stubVectorStore{}, false)
	rec := handle(env, Request{ConnectionID: "c1", Prompt: `How many papers mention "prep"?`})

	types := rec.Types()
	if len(types) != 2 || types[0] != transport.TypeError || types[1] != transport.TypeEnd {
		t.Fatalf("frames = %v, want [error end]", types)
	}
	if rec.Frames[0].StatusCode != 501 {
		t.Errorf("statusCode = %d, want 501", rec.Frames[0].StatusCode)
	}
}

func TestHandleCountNoKeyword(t *testing.T) {
	env := newTestEnv(t, &stubProvider{}, &stubVectorStore{}, true)
	rec := handle(env, Request{ConnectionID: "c1", Prompt: "count documents"})

	if rec.Frames[0].StatusCode != 400 {
		t.Errorf("statusCode = %d, want 400: %+v", rec.Frames[0].StatusCode, rec.Frames)
	}
}

func TestHandleCountAnswers(t *testing.T) {
	env := newTestEnv(t, &stubProvider{}, &stubVectorStore{}, true)
	rec := handle(env, Request{ConnectionID: "c1", Prompt: `How many papers mention "prep"?`})

	text := rec.Text()
	if !strings.Contains(text, `The keyword "prep" appears in 1 of 2 papers.`) {
		t.Errorf("count sentence missing: %q", text)
	}
	types := rec.Types()
	if len(types) != 2 || types[1] != transport.TypeEnd {
		t.Fatalf("frames = %v, want [delta end]", types)
	}
}

func TestHandleFeedbackThumbsdownSaved(t *testing.T) {
	env := newTestEnv(t, &stubProvider{}, &stubVectorStore{}, false)
	rec := handle(env, Request{
		ConnectionID: "c1",
		Action:       ActionFeedback,
		Rating:       "thumbsdown",
		UserMessage:  "what is prep",
		BotMessage:   "an answer that missed the point",
	})

	if len(rec.Frames) != 0 {
		t.Errorf("feedback produced frames: %v", rec.Types())
	}

	keys, err := env.store.List("feedback/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("feedback objects = %d, want 1", len(keys))
	}
	if keys[0] != "feedback/2025-03-14-09-26-53-thumbsdown.json" {
		t.Errorf("key = %q", keys[0])
	}
	data, _, err := env.store.Get(keys[0])
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	for _, want := range []string{`"rating": "thumbsdown"`, `"connection_id": "c1"`, `"user_message": "what is prep"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("record missing %s:\n%s", want, data)
		}
	}
}

func TestHandleFeedbackOtherRatingsIgnored(t *testing.T) {
	env := newTestEnv(t, &stubProvider{}, &stubVectorStore{}, false)
	handle(env, Request{
		ConnectionID: "c1",
		Action:       ActionFeedback,
		Rating:       "thumbsup",
		UserMessage:  "q",
		BotMessage:   "a",
	})

	keys, err := env.store.List("feedback/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("feedback objects = %d, want 0", len(keys))
	}
}

func TestHandleRecoversFromPanic(t *testing.T) {
	env := newTestEnv(t, &stubProvider{panics: true}, &stubVectorStore{}, false)
	rec := handle(env, Request{ConnectionID: "c1", Prompt: "hello there"})

	types := rec.Types()
	if len(types) != 2 || types[0] != transport.TypeError || types[1] != transport.TypeEnd {
		t.Fatalf("frames = %v, want [error end]", types)
	}
	if rec.Frames[0].Text != "Internal error." {
		t.Errorf("error text = %q", rec.Frames[0].Text)
	}
}

func TestHandleChatFallsThrough(t *testing.T) {
	provider := &stubProvider{deltas: []string{"Hi! ", "How can I help?"}}
	env := newTestEnv(t, provider, &stubVectorStore{}, false)
	rec := handle(env, Request{ConnectionID: "c1", Prompt: "good morning"})

	if !strings.Contains(rec.Text(), "How can I help?") {
		t.Errorf("chat answer missing: %q", rec.Text())
	}
	var ends int
	for _, typ := range rec.Types() {
		if typ == transport.TypeEnd {
			ends++
		}
	}
	if ends != 1 {
		t.Errorf("end frames = %d, want exactly 1", ends)
	}
}

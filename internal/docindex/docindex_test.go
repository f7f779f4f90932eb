package docindex

import (
	"context"
	"strings"
	"testing"

	"github.com/i2i-labs/tobi-backend/internal/config"
	"github.com/i2i-labs/tobi-backend/internal/db"
)

func testConfig() config.IndexConfig {
	return config.IndexConfig{
		Enabled:    true,
		Table:      "pages",
		TextColumn: "text",
		DocColumn:  "source_uri",
		PageColumn: "page",
	}
}

func openIndex(t *testing.T) *Index {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	ix, err := New(database, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ix
}

func seed(t *testing.T, ix *Index) {
	t.Helper()
	ctx := context.Background()
	pages := []struct {
		doc  string
		page int
		text string
	}{
		{"pdfs/a.pdf", 1, "PrEP uptake among adolescent girls and young women"},
		{"pdfs/a.pdf", 2, "methods and limitations"},
		{"pdfs/a.pdf", 5, "PrEP continuation at month six"},
		{"pdfs/b.pdf", 1, "HIV incidence estimates for Ghana"},
		{"pdfs/c.pdf", 3, "voluntary medical male circumcision coverage"},
	}
	for _, p := range pages {
		if err := ix.AddPage(ctx, p.doc, p.page, p.text); err != nil {
			t.Fatalf("AddPage: %v", err)
		}
	}
}

func TestNewNotConfigured(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	cases := []config.IndexConfig{
		{Enabled: false, Table: "pages", TextColumn: "text", DocColumn: "doc", PageColumn: "page"},
		{Enabled: true, Table: "", TextColumn: "text", DocColumn: "doc", PageColumn: "page"},
		{Enabled: true, Table: "pages; DROP TABLE x", TextColumn: "text", DocColumn: "doc", PageColumn: "page"},
	}
	for _, cfg := range cases {
		if _, err := New(database, cfg); err != ErrNotConfigured {
			t.Errorf("New(%+v) err = %v, want ErrNotConfigured", cfg, err)
		}
	}
}

func TestCountKeyword(t *testing.T) {
	ix := openIndex(t)
	seed(t, ix)

	res, err := ix.CountKeyword(context.Background(), "PrEP")
	if err != nil {
		t.Fatalf("CountKeyword: %v", err)
	}
	if res.TotalDocs != 3 {
		t.Errorf("TotalDocs = %d, want 3", res.TotalDocs)
	}
	if len(res.Matched) != 1 {
		t.Fatalf("matched %d docs, want 1", len(res.Matched))
	}
	m := res.Matched[0]
	if m.Doc != "pdfs/a.pdf" {
		t.Errorf("Doc = %q", m.Doc)
	}
	if len(m.Pages) != 2 || m.Pages[0] != 1 || m.Pages[1] != 5 {
		t.Errorf("Pages = %v, want [1 5]", m.Pages)
	}
}

func TestCountKeywordPhrase(t *testing.T) {
	ix := openIndex(t)
	seed(t, ix)

	res, err := ix.CountKeyword(context.Background(), "adolescent girls")
	if err != nil {
		t.Fatalf("CountKeyword: %v", err)
	}
	if len(res.Matched) != 1 || res.Matched[0].Doc != "pdfs/a.pdf" {
		t.Errorf("phrase match = %+v", res.Matched)
	}

	// Words present but not adjacent should not match as a phrase.
	res, err = ix.CountKeyword(context.Background(), "girls adolescent")
	if err != nil {
		t.Fatalf("CountKeyword: %v", err)
	}
	if len(res.Matched) != 0 {
		t.Errorf("reversed phrase matched %d docs, want 0", len(res.Matched))
	}
}

func TestCountKeywordNoMatches(t *testing.T) {
	ix := openIndex(t)
	seed(t, ix)

	res, err := ix.CountKeyword(context.Background(), "tuberculosis")
	if err != nil {
		t.Fatalf("CountKeyword: %v", err)
	}
	if len(res.Matched) != 0 || res.TotalDocs != 3 {
		t.Errorf("got %d matches of %d docs, want 0 of 3", len(res.Matched), res.TotalDocs)
	}
}

func TestDeleteDoc(t *testing.T) {
	ix := openIndex(t)
	seed(t, ix)
	ctx := context.Background()

	if err := ix.DeleteDoc(ctx, "pdfs/a.pdf"); err != nil {
		t.Fatalf("DeleteDoc: %v", err)
	}
	res, err := ix.CountKeyword(ctx, "PrEP")
	if err != nil {
		t.Fatalf("CountKeyword: %v", err)
	}
	if len(res.Matched) != 0 {
		t.Errorf("matched %d docs after delete, want 0", len(res.Matched))
	}
	if res.TotalDocs != 2 {
		t.Errorf("TotalDocs = %d, want 2", res.TotalDocs)
	}
}

func TestMarkdown(t *testing.T) {
	res := &CountResult{
		Keyword:   "prep",
		TotalDocs: 10,
		Matched: []DocCount{
			{Doc: "pdfs/a.pdf", Pages: []int{1, 5}},
			{Doc: "pdfs/b.pdf", Pages: []int{3}},
			{Doc: "pdfs/c.pdf", Pages: []int{2}},
		},
	}

	got := res.Markdown(func(doc string) string {
		if doc == "pdfs/b.pdf" {
			return "https://api.example.org/docs/pdfs%2Fb.pdf"
		}
		return ""
	})

	if !strings.HasPrefix(got, `The keyword "prep" appears in 3 of 10 papers.`) {
		t.Errorf("summary sentence missing:\n%s", got)
	}
	if !strings.Contains(got, "- a.pdf - pages 1, 5") {
		t.Errorf("plain breakdown line missing:\n%s", got)
	}
	if !strings.Contains(got, "[b.pdf](https://api.example.org/docs/pdfs%2Fb.pdf) - page 3") {
		t.Errorf("linked breakdown line missing:\n%s", got)
	}
}

func TestMarkdownNoMatches(t *testing.T) {
	res := &CountResult{Keyword: "x", TotalDocs: 4}
	got := res.Markdown(nil)
	want := `The keyword "x" appears in 0 of 4 papers.` + "\n"
	if got != want {
		t.Errorf("Markdown = %q, want %q", got, want)
	}
}

package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is one page of extracted document text. Page numbers are 1-based.
type Page struct {
	Number int
	Text   string
}

// ExtractPages reads a document and returns its text page by page.
// Plain-text and markdown files count as a single page.
func ExtractPages(path string) ([]Page, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		text := normalizeText(string(data))
		if text == "" {
			return nil, nil
		}
		return []Page{{Number: 1, Text: text}}, nil
	default:
		return nil, fmt.Errorf("unsupported document type %q", filepath.Ext(path))
	}
}

func extractPDF(path string) ([]Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []Page
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// A single damaged page should not sink the document.
			continue
		}
		text = normalizeText(text)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}

// normalizeText collapses whitespace runs so extracted passages embed
// and match consistently regardless of the source layout.
func normalizeText(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	var kept []string
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(strings.Join(strings.Fields(line), " "), " ")
		if line == "" {
			blank = true
			continue
		}
		if blank && len(kept) > 0 {
			kept = append(kept, "")
		}
		blank = false
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

package docindex

import (
	"fmt"
	"strings"

	"github.com/i2i-labs/tobi-backend/internal/markdown"
)

// Markdown renders the count result as a chat answer: a summary
// sentence followed by a per-document breakdown. linkFor maps a doc
// key to a browsable URL; a nil or empty result leaves the label plain.
func (r *CountResult) Markdown(linkFor func(doc string) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The keyword %q appears in %d of %d papers.\n",
		r.Keyword, len(r.Matched), r.TotalDocs)

	for _, m := range r.Matched {
		label := markdown.CleanFilename(m.Doc)
		line := "- " + label
		if linkFor != nil {
			if url := linkFor(m.Doc); url != "" {
				line = "- " + markdown.Link(url, label)
			}
		}
		if len(m.Pages) > 0 {
			line += " - " + pageList(m.Pages)
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

func pageList(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprint(p)
	}
	if len(pages) == 1 {
		return "page " + parts[0]
	}
	return "pages " + strings.Join(parts, ", ")
}

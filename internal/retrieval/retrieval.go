// Package retrieval turns vector search results into citable evidence
// sources with browsable document links.
package retrieval

import (
	"context"
	"log"
	"path"
	"strings"

	"github.com/i2i-labs/tobi-backend/internal/blobstore"
	"github.com/i2i-labs/tobi-backend/internal/config"
	"github.com/i2i-labs/tobi-backend/internal/markdown"
	"github.com/i2i-labs/tobi-backend/internal/vectordb"
)

// Source is one citable evidence hit: a passage plus where it came from.
type Source struct {
	URL     string
	Label   string
	Page    int
	Score   float32
	Snippet string
}

// Retriever searches the passage store and resolves hits into sources.
type Retriever struct {
	store vectordb.VectorStore
	links *blobstore.Links
	cfg   config.RetrievalConfig
}

func NewRetriever(store vectordb.VectorStore, links *blobstore.Links, cfg config.RetrievalConfig) *Retriever {
	return &Retriever{store: store, links: links, cfg: cfg}
}

// Retrieve returns evidence sources for the query, best first. Retrieval
// failures degrade to no evidence rather than failing the conversation,
// so the assistant can still answer from its own knowledge.
func (r *Retriever) Retrieve(ctx context.Context, query string) []Source {
	results, err := r.store.Search(ctx, query, r.cfg.MaxResults, nil)
	if err != nil {
		log.Printf("retrieval: search failed: %v", err)
		return nil
	}
	return r.toSources(results)
}

// RetrieveForDoc retrieves passages biased toward one source document,
// identified by a filename hint taken from a shared link. When any hit
// matches the hint the result is narrowed to that document.
func (r *Retriever) RetrieveForDoc(ctx context.Context, query, docHint string) []Source {
	limit := r.cfg.SummaryResults
	if limit <= 0 {
		limit = r.cfg.MaxResults
	}
	results, err := r.store.Search(ctx, query+" "+docHint, limit, nil)
	if err != nil {
		log.Printf("retrieval: doc search failed: %v", err)
		return nil
	}

	hint := strings.ToLower(docHint)
	var matched []vectordb.SearchResult
	for _, res := range results {
		base := strings.ToLower(path.Base(res.Document.Metadata.SourceKey))
		if hint != "" && strings.Contains(base, hint) {
			matched = append(matched, res)
		}
	}
	if len(matched) > 0 {
		results = matched
	}
	return r.toSources(results)
}

// toSources filters hits by the score threshold and resolves each into
// a Source with a browsable URL.
func (r *Retriever) toSources(results []vectordb.SearchResult) []Source {
	sources := make([]Source, 0, len(results))
	for _, res := range results {
		if float64(res.Similarity) < r.cfg.ScoreThreshold {
			continue
		}
		md := res.Document.Metadata
		url, err := r.links.BrowsableURL(md.SourceKey)
		if err != nil {
			log.Printf("retrieval: link for %s: %v", md.SourceKey, err)
			continue
		}
		label := md.Title
		if label == "" {
			label = markdown.CleanFilename(md.SourceKey)
		}
		sources = append(sources, Source{
			URL:     url,
			Label:   label,
			Page:    md.Page,
			Score:   res.Similarity,
			Snippet: res.Document.Content,
		})
	}
	return sources
}

// JoinSnippets concatenates source snippets into one context block for
// the model, separated by blank lines.
func JoinSnippets(sources []Source) string {
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		if s.Snippet != "" {
			parts = append(parts, s.Snippet)
		}
	}
	return strings.Join(parts, "\n\n")
}

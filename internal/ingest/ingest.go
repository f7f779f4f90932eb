package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/i2i-labs/tobi-backend/internal/config"
	"github.com/i2i-labs/tobi-backend/internal/docindex"
	"github.com/i2i-labs/tobi-backend/internal/markdown"
	"github.com/i2i-labs/tobi-backend/internal/progress"
	"github.com/i2i-labs/tobi-backend/internal/vectordb"
)

// Ingester builds the vector store and keyword index from a corpus
// directory. The keyword index is optional.
type Ingester struct {
	vectors  vectordb.VectorStore
	index    *docindex.Index
	cfg      config.IngestConfig
	reporter progress.Reporter
}

func New(vectors vectordb.VectorStore, index *docindex.Index, cfg config.IngestConfig, reporter progress.Reporter) *Ingester {
	if reporter == nil {
		reporter = progress.Silent{}
	}
	return &Ingester{
		vectors:  vectors,
		index:    index,
		cfg:      cfg,
		reporter: reporter,
	}
}

// Result summarizes one ingest run.
type Result struct {
	Files    int
	Skipped  int
	Removed  int
	Pages    int
	Passages int
}

// Run walks corpusDir, ingests new and changed documents, removes
// documents that disappeared from disk, and persists the vector store
// and ingest state under dataDir.
func (ing *Ingester) Run(ctx context.Context, corpusDir, dataDir string) (*Result, error) {
	files, err := Walk(WalkConfig{
		RootDir: corpusDir,
		Include: ing.cfg.Include,
		Exclude: ing.cfg.Exclude,
	})
	if err != nil {
		return nil, err
	}

	state, err := LoadState(dataDir)
	if err != nil {
		return nil, fmt.Errorf("ingest: loading state: %w", err)
	}

	res := &Result{}
	ing.reporter.Start(len(files))
	seen := make(map[string]bool, len(files))

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seen[file.Key] = true
		ing.reporter.Update(i+1, file.Key)

		if !state.Changed(file.Key, file.ContentHash) {
			res.Skipped++
			continue
		}

		pages, passages, err := ing.ingestFile(ctx, file)
		if err != nil {
			log.Printf("ingest: %s: %v", file.Key, err)
			continue
		}

		state.DocHashes[file.Key] = file.ContentHash
		res.Files++
		res.Pages += pages
		res.Passages += passages
	}

	// Documents deleted from the corpus leave the stores too.
	for key := range state.DocHashes {
		if seen[key] {
			continue
		}
		if err := ing.remove(ctx, key); err != nil {
			log.Printf("ingest: removing %s: %v", key, err)
			continue
		}
		delete(state.DocHashes, key)
		res.Removed++
	}

	ing.reporter.Finish()

	if err := ing.vectors.Persist(ctx, dataDir); err != nil {
		return nil, fmt.Errorf("ingest: persisting vectors: %w", err)
	}
	if err := state.Save(dataDir); err != nil {
		return nil, fmt.Errorf("ingest: saving state: %w", err)
	}

	return res, nil
}

// ingestFile replaces all stored content of one document.
func (ing *Ingester) ingestFile(ctx context.Context, file FileInfo) (pages, passages int, err error) {
	extracted, err := ExtractPages(file.Path)
	if err != nil {
		return 0, 0, err
	}
	if len(extracted) == 0 {
		return 0, 0, fmt.Errorf("no extractable text")
	}

	if err := ing.remove(ctx, file.Key); err != nil {
		return 0, 0, err
	}

	title := markdown.CleanFilename(file.Key)
	now := time.Now()

	var docs []vectordb.Document
	for _, page := range extracted {
		for i, passage := range splitPassages(page.Text, ing.cfg.ChunkChars) {
			docs = append(docs, vectordb.Document{
				ID:      fmt.Sprintf("%s:%d:%d", file.Key, page.Number, i),
				Content: passage,
				Metadata: vectordb.DocumentMetadata{
					SourceKey:   file.Key,
					Title:       title,
					Page:        page.Number,
					ContentHash: file.ContentHash,
					IngestedAt:  now,
				},
			})
		}
		if ing.index != nil {
			if err := ing.index.AddPage(ctx, file.Key, page.Number, page.Text); err != nil {
				return 0, 0, fmt.Errorf("indexing page %d: %w", page.Number, err)
			}
		}
	}

	if err := ing.vectors.AddDocuments(ctx, docs); err != nil {
		return 0, 0, fmt.Errorf("adding passages: %w", err)
	}
	return len(extracted), len(docs), nil
}

func (ing *Ingester) remove(ctx context.Context, key string) error {
	if err := ing.vectors.DeleteBySourceKey(ctx, key); err != nil {
		return err
	}
	if ing.index != nil {
		if err := ing.index.DeleteDoc(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

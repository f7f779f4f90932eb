package vectordb

import "context"

// VectorStore defines the interface for storing and searching corpus
// passages by embeddings.
type VectorStore interface {
	// AddDocuments adds or updates passages in the store.
	AddDocuments(ctx context.Context, docs []Document) error

	// Search performs a semantic search using the query text.
	Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error)

	// DeleteBySourceKey removes all passages of one source document.
	DeleteBySourceKey(ctx context.Context, sourceKey string) error

	// Persist saves the store's data to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the store's data from the given directory.
	Load(ctx context.Context, dir string) error

	// Count returns the total number of passages in the store.
	Count() int
}

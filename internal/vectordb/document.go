// Package vectordb stores corpus passages and searches them
// semantically for the evidence retriever.
package vectordb

import "time"

// Document represents one corpus passage to be stored and searched.
type Document struct {
	ID       string
	Content  string
	Metadata DocumentMetadata
}

// DocumentMetadata identifies where a passage came from.
type DocumentMetadata struct {
	// SourceKey is the blob-store key of the source document.
	SourceKey string
	// Title is a human-readable label, usually the filename.
	Title string
	// Page is the 1-based page number within the source, 0 when unknown.
	Page int
	// ContentHash fingerprints the passage for change detection.
	ContentHash string
	IngestedAt  time.Time
}

// SearchResult pairs a passage with its similarity score.
type SearchResult struct {
	Document   Document
	Similarity float32
}

// SearchFilter narrows search results by metadata fields.
type SearchFilter struct {
	SourceKey *string
}

// Package ingest turns a directory of source documents into vector
// passages and keyword-index pages.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxFileSize is the maximum document size to ingest (50 MB).
const DefaultMaxFileSize int64 = 50 << 20

// supportedExtensions lists the document types ingestion understands.
var supportedExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

// defaultExcludes are directory names skipped during traversal.
var defaultExcludes = []string{
	".git",
	".DS_Store",
	"__MACOSX",
	"node_modules",
}

// FileInfo describes one corpus document discovered during traversal.
type FileInfo struct {
	Path        string // Absolute path on disk.
	Key         string // Blob-store key: slash-separated path relative to the corpus root.
	Size        int64
	ContentHash string // SHA-256 hex digest of the file content.
}

// WalkConfig controls corpus traversal.
type WalkConfig struct {
	RootDir     string
	Include     []string // Glob patterns; empty means every supported file.
	Exclude     []string
	MaxFileSize int64 // 0 means DefaultMaxFileSize.
}

// Walk returns metadata for every corpus document that passes filtering.
func Walk(config WalkConfig) ([]FileInfo, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("ingest: resolve root: %w", err)
	}

	maxSize := config.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var files []FileInfo

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			return nil
		}

		if d.IsDir() {
			if shouldExcludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		key := filepath.ToSlash(relPath)

		if !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if !matchesInclude(key, config.Include) {
			return nil
		}
		if matchesExclude(key, config.Exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxSize {
			return nil
		}

		hash, err := hashFile(path)
		if err != nil {
			return nil
		}

		files = append(files, FileInfo{
			Path:        path,
			Key:         key,
			Size:        info.Size(),
			ContentHash: hash,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: traversal: %w", err)
	}

	return files, nil
}

func shouldExcludeDir(name string) bool {
	for _, excl := range defaultExcludes {
		if strings.EqualFold(name, excl) {
			return true
		}
	}
	return false
}

// matchesInclude returns true if the key matches any include pattern.
// An empty pattern list includes everything.
func matchesInclude(key string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchesAny(key, patterns)
}

// matchesExclude returns true if the key matches any exclude pattern.
func matchesExclude(key string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	return matchesAny(key, patterns)
}

// matchesAny checks the key against each glob pattern. Patterns use
// doublestar for ** support and also match against the bare filename.
func matchesAny(key string, patterns []string) bool {
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)

		if matched, err := doublestar.PathMatch(pattern, key); err == nil && matched {
			return true
		}
		base := filepath.Base(key)
		if matched, err := doublestar.PathMatch(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// hashFile computes the SHA-256 digest of the given file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

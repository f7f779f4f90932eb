// Package blobstore provides object storage for the document corpus,
// curated knowledge files, and feedback records.
package blobstore

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = fmt.Errorf("blobstore: key not found")

// Store is a flat key/value object store. Keys use forward slashes
// regardless of platform.
type Store interface {
	// Get returns the object content and its ETag. The ETag changes
	// whenever the content changes.
	Get(key string) (data []byte, etag string, err error)
	// ETag returns the current ETag without reading the full content.
	ETag(key string) (string, error)
	// Put writes the object.
	Put(key string, data []byte) error
	// Exists reports whether the key is present.
	Exists(key string) bool
}

// FSStore is a filesystem-backed Store rooted at a directory.
type FSStore struct {
	root string
}

// NewFSStore creates the root directory if needed and returns a store over it.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating blobstore root %s: %w", root, err)
	}
	return &FSStore{root: root}, nil
}

// Root returns the store's root directory.
func (s *FSStore) Root() string {
	return s.root
}

// resolve maps a key to a path under the root, rejecting traversal.
func (s *FSStore) resolve(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("blobstore: invalid key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *FSStore) Get(key string) ([]byte, string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("reading %s: %w", key, err)
	}
	return data, contentETag(data), nil
}

// ETag hashes the file content. Cheap enough for the small curated
// knowledge files this is called on; corpus documents go through Get.
func (s *FSStore) ETag(key string) (string, error) {
	data, etag, err := s.Get(key)
	_ = data
	return etag, err
}

func (s *FSStore) Put(key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating dir for %s: %w", key, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *FSStore) Exists(key string) bool {
	path, err := s.resolve(key)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// List returns all keys under the given prefix, in walk order.
func (s *FSStore) List(prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", prefix, err)
	}
	return keys, nil
}

func contentETag(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

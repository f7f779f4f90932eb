package runtimekb

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/i2i-labs/tobi-backend/internal/blobstore"
)

// refreshInterval bounds how often the cache re-checks the stored ETag.
const refreshInterval = time.Minute

// Cache holds the routing and personal knowledge bases in memory,
// reloading a file when its blob-store ETag changes. Reads are served
// from the cached copy; a stale read during a concurrent reload is
// acceptable since reloads only swap the reference.
type Cache struct {
	store       blobstore.Store
	runtimeKey  string
	personalKey string
	now         func() time.Time

	mu            sync.RWMutex
	runtime       *KnowledgeBase
	personal      *KnowledgeBase
	runtimeETag   string
	personalETag  string
	lastCheckedAt time.Time
}

// NewCache returns a cache over the given store and object keys.
// Either key may be empty, which disables that knowledge base.
func NewCache(store blobstore.Store, runtimeKey, personalKey string) *Cache {
	return &Cache{
		store:       store,
		runtimeKey:  runtimeKey,
		personalKey: personalKey,
		now:         time.Now,
	}
}

// Runtime returns the routing knowledge base, refreshing if stale.
// Returns nil when the file is absent or unparseable.
func (c *Cache) Runtime() *KnowledgeBase {
	c.refreshIfStale()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.runtime
}

// Personal returns the personal override knowledge base, refreshing if stale.
func (c *Cache) Personal() *KnowledgeBase {
	c.refreshIfStale()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.personal
}

// Refresh forces an immediate reload check of both files.
func (c *Cache) Refresh() {
	c.mu.Lock()
	c.lastCheckedAt = time.Time{}
	c.mu.Unlock()
	c.refreshIfStale()
}

func (c *Cache) refreshIfStale() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.lastCheckedAt.IsZero() && now.Sub(c.lastCheckedAt) < refreshInterval {
		return
	}
	c.lastCheckedAt = now

	if c.runtimeKey != "" {
		kb, etag, ok := c.loadIfChanged(c.runtimeKey, c.runtimeETag)
		if ok {
			c.runtime = kb
			c.runtimeETag = etag
			log.Printf("runtimekb: loaded %s version=%s", c.runtimeKey, kb.Meta.Version)
		}
	}
	if c.personalKey != "" {
		kb, etag, ok := c.loadIfChanged(c.personalKey, c.personalETag)
		if ok {
			c.personal = kb
			c.personalETag = etag
			log.Printf("runtimekb: loaded %s version=%s", c.personalKey, kb.Meta.Version)
		}
	}
}

// loadIfChanged reads the object and parses it when its ETag differs
// from the last seen one. ok is false when unchanged or on error.
func (c *Cache) loadIfChanged(key, lastETag string) (*KnowledgeBase, string, bool) {
	data, etag, err := c.store.Get(key)
	if err != nil {
		if err != blobstore.ErrNotFound {
			log.Printf("runtimekb: reading %s: %v", key, err)
		}
		return nil, "", false
	}
	if etag == lastETag && lastETag != "" {
		return nil, "", false
	}
	var kb KnowledgeBase
	if err := json.Unmarshal(data, &kb); err != nil {
		log.Printf("runtimekb: parsing %s: %v", key, err)
		return nil, "", false
	}
	return &kb, etag, true
}

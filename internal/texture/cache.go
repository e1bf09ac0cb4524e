package texture

import (
	"image"
	"sync"
	"sync/atomic"

	"posecap/internal/logx"
)

// Resolver resolves a texture name to a decoded image.
type Resolver interface {
	Resolve(texName string) *image.NRGBA
}

// Stats counts cache lookups.
type Stats struct {
	Hits   int64
	Misses int64
	Failed int64
}

// Cache decodes textures on first use and shares them between editors.
// A file that fails to decode is remembered as nil and never read again.
// Safe for concurrent use.
type Cache struct {
	index *Index
	load  func(path string) (*image.NRGBA, error)

	mu     sync.RWMutex
	byPath map[string]*image.NRGBA

	hits, misses, failed atomic.Int64
}

// NewCache creates a cache over index that decodes with LoadTexture.
func NewCache(index *Index) *Cache {
	return &Cache{
		index:  index,
		load:   LoadTexture,
		byPath: make(map[string]*image.NRGBA),
	}
}

// Resolve returns the texture for texName, or nil when it is not indexed
// or cannot be decoded.
func (c *Cache) Resolve(texName string) *image.NRGBA {
	path, ok := c.index.ResolvePath(texName)
	if !ok {
		return nil
	}

	c.mu.RLock()
	img, seen := c.byPath[path]
	c.mu.RUnlock()
	if seen {
		c.hits.Add(1)
		return img
	}

	img, err := c.load(path)
	if err != nil {
		c.failed.Add(1)
		logx.Logger().Warn("texture: load failed", "name", texName, "path", path, "err", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// another worker may have won the race
	if prev, seen := c.byPath[path]; seen {
		c.hits.Add(1)
		return prev
	}
	c.misses.Add(1)
	c.byPath[path] = img
	return img
}

// Len returns the number of files looked at, failures included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byPath)
}

// Stats returns the lookup counters.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Failed: c.failed.Load()}
}

package schema

import (
	"os"
	"sync"
)

// Cache memoizes compiled models by resolved schema path for the process
// lifetime. Entries are inserted if absent; an unreadable schema yields nil
// without caching, so the file showing up later is picked up.
type Cache struct {
	mu     sync.Mutex
	models map[string]*ContentModel
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{models: make(map[string]*ContentModel)}
}

// Load returns the compiled model for the schema at path, compiling and
// caching it on first use. Returns nil when the file cannot be read.
func (c *Cache) Load(path string) *ContentModel {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.models[path]; ok {
		return m
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	m := Compile(src)
	c.models[path] = m
	return m
}

// Invalidate drops the cached model for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.models, path)
}

// Reset drops every cached model.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = make(map[string]*ContentModel)
}

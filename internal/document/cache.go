package document

import (
	"sync"
)

type cacheKey struct {
	index int
	dpi   float64
}

// Cache provides thread-safe memoization of page renders.
//
// Once a page is rendered at a resolution, later RenderPage calls with the
// same arguments return the cached *Page without touching the backend.
// Callers must treat cached pages as read-only.
//
// # Memory Management
//
// Cached rasters stay in memory until Evict or Clear. A letter page at
// 150 DPI is roughly 8 MB as RGBA, so long sessions over large documents
// should evict pages they navigate away from.
type Cache struct {
	Renderer

	mu    sync.RWMutex
	pages map[cacheKey]*Page
}

// NewCache wraps r with a render cache.
func NewCache(r Renderer) *Cache {
	return &Cache{
		Renderer: r,
		pages:    make(map[cacheKey]*Page),
	}
}

// RenderPage returns the cached render or renders and caches it.
func (c *Cache) RenderPage(index int, dpi float64) (*Page, error) {
	key := cacheKey{index: index, dpi: dpi}

	c.mu.RLock()
	if p, ok := c.pages[key]; ok {
		c.mu.RUnlock()
		return p, nil
	}
	c.mu.RUnlock()

	p, err := c.Renderer.RenderPage(index, dpi)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.pages[key] = p
	c.mu.Unlock()

	return p, nil
}

// Evict drops every cached render of the page, at any resolution.
func (c *Cache) Evict(index int) {
	c.mu.Lock()
	for k := range c.pages {
		if k.index == index {
			delete(c.pages, k)
		}
	}
	c.mu.Unlock()
}

// Clear drops all cached renders.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.pages = make(map[cacheKey]*Page)
	c.mu.Unlock()
}

// Len returns the number of cached renders.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}

package cache

import (
	"sync"

	"github.com/factionboard/missionstore/pkg/core"
)

// DocumentCache holds the session's working copy of the mission
// document so repeated reads skip the backend. The store owns the
// document; the cache stores and hands out full copies only, so a
// caller can never mutate the cached state in place.
type DocumentCache struct {
	m   sync.Mutex
	doc *core.Document
}

func NewDocumentCache() *DocumentCache {
	return &DocumentCache{}
}

// Get returns a copy of the cached document, or false when the cache
// is empty.
func (c *DocumentCache) Get() (*core.Document, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.doc == nil {
		return nil, false
	}
	return c.doc.Clone(), true
}

// Put stores a copy of doc as the cached document.
func (c *DocumentCache) Put(doc *core.Document) {
	c.m.Lock()
	defer c.m.Unlock()
	c.doc = doc.Clone()
}

// Reset empties the cache; the next load goes back to the backend.
func (c *DocumentCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.doc = nil
}

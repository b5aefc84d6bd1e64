// internal/storage/memory/memory.go
package memory

import (
	"sync"

	"github.com/factionboard/missionstore/pkg/core"
)

// Backend keeps the snapshot in process memory. It backs tests and any
// wiring that needs a board without touching disk; contents vanish with
// the process.
type Backend struct {
	mu  sync.RWMutex
	doc *core.Document
}

// New creates an empty memory backend.
func New() *Backend {
	return &Backend{}
}

// Name identifies the backend in log lines.
func (b *Backend) Name() string {
	return "memory"
}

// Read returns a copy of the held snapshot, or an empty board before the
// first write.
func (b *Backend) Read() (*core.Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.doc == nil {
		return core.EmptyDocument(), nil
	}
	return b.doc.Clone(), nil
}

// Write replaces the held snapshot with a copy of doc.
func (b *Backend) Write(doc *core.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.doc = doc.Clone()
	return nil
}

// Close cleans up resources.
func (b *Backend) Close() error {
	return nil
}

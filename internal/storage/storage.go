// internal/storage/storage.go
package storage

import "github.com/factionboard/missionstore/pkg/core"

// Backend is the interface all snapshot stores must satisfy. A backend
// persists the whole mission board document at once; there are no partial
// writes.
type Backend interface {
	// Name identifies the backend in log lines.
	Name() string

	// Read returns the last stored snapshot. Backends that can lose their
	// medium underneath them (the remote grid) report that with an error;
	// the local file backend degrades to an empty document instead.
	Read() (*core.Document, error)

	// Write replaces the stored snapshot with doc.
	Write(doc *core.Document) error

	// Close releases any held resources.
	Close() error
}

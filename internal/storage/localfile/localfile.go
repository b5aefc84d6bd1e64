// Package localfile implements the storage.Backend interface on a single
// JSON document on disk. This is the authoritative store: the board must
// stay usable with nothing but this file present.
package localfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/factionboard/missionstore/pkg/core"
)

// Backend persists the board as an indented JSON document at a fixed path.
type Backend struct {
	path string
	log  zerolog.Logger
}

// New creates a local file backend for the given path.
func New(path string, log zerolog.Logger) *Backend {
	return &Backend{
		path: path,
		log:  log.With().Str("backend", "local file").Logger(),
	}
}

// Name identifies the backend in log lines.
func (b *Backend) Name() string {
	return "local file"
}

// Path returns the snapshot location on disk.
func (b *Backend) Path() string {
	return b.path
}

// Read loads the snapshot. A missing file is a normal first run; an
// unreadable or malformed file is reported and replaced by an empty board.
// Read never returns an error.
func (b *Backend) Read() (*core.Document, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			b.log.Warn().Err(err).Str("path", b.path).Msg("Could not read board file, starting with an empty board")
		}
		return core.EmptyDocument(), nil
	}

	doc, err := core.ParseDocument(data)
	if err != nil {
		b.log.Warn().Err(err).Str("path", b.path).Msg("Board file is not a usable document, starting with an empty board")
		return core.EmptyDocument(), nil
	}
	return doc, nil
}

// Write replaces the snapshot. The document is rendered into a temp file in
// the same directory and renamed over the old one, so a crash mid-write
// cannot leave a half-written board behind.
func (b *Backend) Write(doc *core.Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace board file: %w", err)
	}
	return nil
}

// Close is a no-op; the backend holds no open handles between calls.
func (b *Backend) Close() error {
	return nil
}

// internal/storage/factory.go
package storage

import (
	"github.com/rs/zerolog"

	"github.com/factionboard/missionstore/internal/config"
	"github.com/factionboard/missionstore/internal/storage/localfile"
	"github.com/factionboard/missionstore/internal/storage/remote"
)

// Mode selects which backends a run writes through.
type Mode int

const (
	// ModeLocalOnly persists snapshots to the local JSON file only.
	ModeLocalOnly Mode = iota
	// ModeLocalRemoteMirror additionally mirrors every snapshot to the
	// remote grid.
	ModeLocalRemoteMirror
)

func (m Mode) String() string {
	switch m {
	case ModeLocalRemoteMirror:
		return "local+remote"
	default:
		return "local-only"
	}
}

// Set bundles the backends resolved for a run. Remote is nil unless Mode
// is ModeLocalRemoteMirror.
type Set struct {
	Mode   Mode
	Local  Backend
	Remote Backend
}

// Resolve decides the storage mode from configuration. The remote grid is
// only attempted when both db.password and db.database are set; anything
// less means the operator has not finished wiring it.
func Resolve() Mode {
	if config.GetRemoteConfig().CapabilityPresent() {
		return ModeLocalRemoteMirror
	}
	return ModeLocalOnly
}

// NewBackends builds the backend set for the resolved mode. A remote grid
// that cannot be reached downgrades the run to local-only with a warning;
// the board must stay usable without it.
func NewBackends(log zerolog.Logger) *Set {
	set := &Set{
		Mode:  Resolve(),
		Local: localfile.New(config.LocalFilePath(), log),
	}
	if set.Mode == ModeLocalRemoteMirror {
		grid := remote.New(remote.Dependencies{Log: log})
		if err := grid.Init(); err != nil {
			log.Warn().Err(err).Msg("Remote grid unavailable, continuing local-only")
			set.Mode = ModeLocalOnly
		} else {
			set.Remote = grid
		}
	}

	log.Info().Str("mode", set.Mode.String()).Msg("Storage backends ready")
	return set
}

// Close closes every backend in the set.
func (s *Set) Close() error {
	var firstErr error
	if s.Local != nil {
		if err := s.Local.Close(); err != nil {
			firstErr = err
		}
	}
	if s.Remote != nil {
		if err := s.Remote.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

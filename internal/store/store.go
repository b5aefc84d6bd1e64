// Package store is the service layer of the mission board. It owns the
// in-memory document: operations validate, mutate a working copy, persist
// the whole document through the configured backends and only then swap
// the session cache. Backends and cache never mutate the document on
// their own.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/factionboard/missionstore/internal/cache"
	"github.com/factionboard/missionstore/internal/storage"
	"github.com/factionboard/missionstore/pkg/core"
)

// ErrConflict is returned by mutations under the check-revision policy
// when the stored board moved past the loaded one. The caller reloads and
// retries; nothing has been written or cached.
var ErrConflict = errors.New("board changed since it was loaded")

// SavePolicy selects how concurrent saves are handled.
type SavePolicy string

const (
	// PolicyLastWriterWins overwrites whatever is stored. This is the
	// documented default: two actors saving from stale snapshots lose
	// the earlier write, whole-document.
	PolicyLastWriterWins SavePolicy = "last-writer-wins"
	// PolicyCheckRevision stamps the document with a revision counter
	// and rejects a save whose base revision is stale.
	PolicyCheckRevision SavePolicy = "check-revision"
)

// ParsePolicy maps a configured policy name to a SavePolicy. Unknown
// names select last-writer-wins, the default.
func ParsePolicy(s string) SavePolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(PolicyCheckRevision)) {
		return PolicyCheckRevision
	}
	return PolicyLastWriterWins
}

// ActivityRecorder receives operation telemetry. Recording failures are
// logged at debug and never affect the operation.
type ActivityRecorder interface {
	RecordOperation(ctx context.Context, op string, mission core.Mission) error
	RecordSnapshot(ctx context.Context, doc *core.Document) error
}

// Dependencies holds all dependencies needed by the store.
type Dependencies struct {
	Backends *storage.Set
	Cache    *cache.DocumentCache
	Factions []string
	Policy   SavePolicy
	Activity ActivityRecorder
	Logger   zerolog.Logger

	// Now is the clock; tests inject a fixed one.
	Now func() time.Time
}

// Service applies board operations on the current document.
type Service struct {
	deps    Dependencies
	metrics *metrics
}

// New creates a store service.
func New(deps Dependencies) (*Service, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Policy == "" {
		deps.Policy = PolicyLastWriterWins
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewDocumentCache()
	}

	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	return &Service{deps: deps, metrics: m}, nil
}

func (s *Service) now() time.Time {
	return s.deps.Now().UTC()
}

// Load returns the current board, reading it from the active backend on
// first use in this session. Loading never fails: a grid error falls
// back to the local file and the local file degrades to an empty board.
func (s *Service) Load(ctx context.Context) *core.Document {
	return s.current(ctx)
}

// CreateMission validates faction and title, builds the record and
// persists the grown board. The new mission starts Available with both
// timestamps set to now.
func (s *Service) CreateMission(ctx context.Context, faction, title, reward, location, hook string) (core.Mission, error) {
	if err := core.ValidateNew(s.deps.Factions, faction, title); err != nil {
		s.metrics.validations.Add(ctx, 1)
		return core.Mission{}, err
	}

	doc := s.current(ctx)
	mission := core.NewMission(faction, title, reward, location, hook, s.now())
	doc.Append(mission)
	if err := s.persist(ctx, doc, "create"); err != nil {
		return core.Mission{}, err
	}
	s.recordActivity(ctx, "create", mission)
	return mission, nil
}

// UpdateMission merges the set fields of patch into the mission with the
// given id and stamps its updated_at. Fields left nil are kept, not
// cleared, and no field is validated: the merge is the whole contract.
// An unknown id reports false with no error and no write.
func (s *Service) UpdateMission(ctx context.Context, id string, patch core.MissionPatch) (core.Mission, bool, error) {
	doc := s.current(ctx)
	if !doc.Update(id, patch, s.now()) {
		return core.Mission{}, false, nil
	}
	if err := s.persist(ctx, doc, "update"); err != nil {
		return core.Mission{}, false, err
	}
	mission, _ := doc.Find(id)
	s.recordActivity(ctx, "update", mission)
	return mission, true, nil
}

// SetStatus is a convenience wrapper over UpdateMission for the status
// verbs. Any status may move to any other status.
func (s *Service) SetStatus(ctx context.Context, id string, status core.Status) (core.Mission, bool, error) {
	return s.UpdateMission(ctx, id, core.MissionPatch{Status: &status})
}

// DeleteMission removes the mission with the given id, persisting only
// when a removal actually happened.
func (s *Service) DeleteMission(ctx context.Context, id string) (bool, error) {
	doc := s.current(ctx)
	mission, _ := doc.Find(id)
	if !doc.Remove(id) {
		return false, nil
	}
	if err := s.persist(ctx, doc, "delete"); err != nil {
		return false, err
	}
	s.recordActivity(ctx, "delete", mission)
	return true, nil
}

// Find returns the mission with the given id from the current board.
func (s *Service) Find(ctx context.Context, id string) (core.Mission, bool) {
	return s.current(ctx).Find(id)
}

// ListByFaction filters the current board by faction, preserving board
// order. No persistence side effect.
func (s *Service) ListByFaction(ctx context.Context, faction string) []core.Mission {
	return s.current(ctx).ByFaction(faction)
}

// Filter narrows the current board by faction, status set and free-text
// query. No persistence side effect.
func (s *Service) Filter(ctx context.Context, opts core.FilterOptions) []core.Mission {
	return s.current(ctx).Filter(opts)
}

// Export serializes the current board exactly as the local file stores
// it, suitable as a backup.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	return s.current(ctx).Marshal()
}

// Import replaces the whole board with the parsed payload: a full
// overwrite of file, grid and cache, never a merge. A payload that does
// not parse as a document with a missions list is rejected without
// touching anything.
func (s *Service) Import(ctx context.Context, data []byte) error {
	doc, err := core.ParseDocument(data)
	if err != nil {
		s.metrics.validations.Add(ctx, 1)
		return err
	}

	if s.deps.Policy == PolicyCheckRevision {
		// Imported payloads carry a foreign revision; continue from ours.
		doc.Revision = s.current(ctx).Revision
	}
	if err := s.persist(ctx, doc, "import"); err != nil {
		return err
	}
	return nil
}

// Stats summarizes the current board.
type Stats struct {
	Missions  int
	ByStatus  map[core.Status]int
	ByFaction map[string]int
	UpdatedAt time.Time
	Revision  int64
	Mode      storage.Mode
}

// Stats counts the current board by status and faction.
func (s *Service) Stats(ctx context.Context) Stats {
	doc := s.current(ctx)
	st := Stats{
		Missions:  len(doc.Missions),
		ByStatus:  make(map[core.Status]int),
		ByFaction: make(map[string]int),
		UpdatedAt: doc.UpdatedAt,
		Revision:  doc.Revision,
		Mode:      s.deps.Backends.Mode,
	}
	for _, m := range doc.Missions {
		st.ByStatus[m.Status]++
		st.ByFaction[m.Faction]++
	}
	return st
}

// current returns a working copy of the board, loading it on first use.
func (s *Service) current(ctx context.Context) *core.Document {
	if doc, ok := s.deps.Cache.Get(); ok {
		s.metrics.cacheHits.Add(ctx, 1)
		return doc
	}
	s.metrics.cacheMisses.Add(ctx, 1)

	doc := s.read(ctx)
	s.deps.Cache.Put(doc)
	return doc
}

// read pulls the board from the active backend. In mirror mode the grid
// is the shared copy and is read first; a grid failure falls back to the
// local file with a warning, one-shot, no retry.
func (s *Service) read(ctx context.Context) *core.Document {
	if s.deps.Backends.Remote != nil {
		doc, err := s.deps.Backends.Remote.Read()
		if err == nil {
			return doc
		}
		s.deps.Logger.Warn().Err(err).Msg("Remote grid read failed, falling back to local file")
		s.metrics.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", "read")))
	}

	doc, err := s.deps.Backends.Local.Read()
	if err != nil {
		s.deps.Logger.Warn().Err(err).Msg("Local read failed, starting with an empty board")
		return core.EmptyDocument()
	}
	return doc
}

// storedRevision reads the revision currently persisted on the active
// backend.
func (s *Service) storedRevision() int64 {
	if s.deps.Backends.Remote != nil {
		if doc, err := s.deps.Backends.Remote.Read(); err == nil {
			return doc.Revision
		}
	}
	doc, err := s.deps.Backends.Local.Read()
	if err != nil {
		return 0
	}
	return doc.Revision
}

// persist stamps and writes the whole document, then swaps the cache.
// A failed local write is logged and counted, not returned: the board
// stays usable and the operation's in-memory result stands. A failed
// grid write degrades to local with a warning.
func (s *Service) persist(ctx context.Context, doc *core.Document, op string) error {
	if s.deps.Policy == PolicyCheckRevision {
		if stored := s.storedRevision(); stored != doc.Revision {
			s.metrics.conflicts.Add(ctx, 1)
			return fmt.Errorf("%w: stored revision %d, loaded %d", ErrConflict, stored, doc.Revision)
		}
		doc.Revision++
	}
	doc.UpdatedAt = s.now()

	if err := s.deps.Backends.Local.Write(doc); err != nil {
		s.deps.Logger.Error().Err(err).Str("op", op).Msg("Failed to write board file")
		s.metrics.writeFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("backend", s.deps.Backends.Local.Name())))
	}
	if s.deps.Backends.Remote != nil {
		if err := s.deps.Backends.Remote.Write(doc); err != nil {
			s.deps.Logger.Warn().Err(err).Str("op", op).Msg("Remote mirror write failed, board saved locally only")
			s.metrics.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", "write")))
		}
	}

	s.deps.Cache.Put(doc)
	s.metrics.ops.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))

	if s.deps.Activity != nil {
		if err := s.deps.Activity.RecordSnapshot(ctx, doc); err != nil {
			s.deps.Logger.Debug().Err(err).Msg("Could not record board snapshot")
		}
	}
	return nil
}

func (s *Service) recordActivity(ctx context.Context, op string, mission core.Mission) {
	if s.deps.Activity == nil {
		return
	}
	if err := s.deps.Activity.RecordOperation(ctx, op, mission); err != nil {
		s.deps.Logger.Debug().Err(err).Msg("Could not record mission activity")
	}
}

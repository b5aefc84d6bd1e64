// Package remote implements the storage.Backend interface on a shared
// relational grid via GORM. The grid mirrors the local snapshot one
// mission per row so other tooling can read the board; it is a replica,
// never the authority.
package remote

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/factionboard/missionstore/internal/database"
	"github.com/factionboard/missionstore/internal/model"
	"github.com/factionboard/missionstore/internal/model/convert"
	"github.com/factionboard/missionstore/pkg/core"
)

// Dependencies holds all dependencies for the remote grid backend.
type Dependencies struct {
	// DB is the grid connection. When nil, Init opens one from
	// configuration and Close tears it down again.
	DB  *gorm.DB
	Log zerolog.Logger
}

// Backend mirrors board snapshots into the missions and document_meta
// tables.
type Backend struct {
	deps    Dependencies
	manager *database.Manager
}

// New creates a remote grid backend.
func New(deps Dependencies) *Backend {
	deps.Log = deps.Log.With().Str("backend", "remote grid").Logger()
	return &Backend{deps: deps}
}

// Name identifies the backend in log lines.
func (b *Backend) Name() string {
	return "remote grid"
}

// Init connects when no DB was injected, migrates the schema and checks
// the stored column header before any rows are trusted.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		manager := database.NewManager(b.deps.Log)
		if err := manager.Connect(); err != nil {
			return err
		}
		b.manager = manager
		b.deps.DB = manager.DB
	}

	if err := b.deps.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return b.ensureHeader()
}

// ensureHeader compares the stored column header with the canonical one.
// No header means a fresh grid and is simply written. A different header
// means the tables were built by an incompatible version: the mirror is
// wiped and restarted empty rather than guessing at column meanings. The
// local file is the authority, so no mission data is lost by this.
func (b *Backend) ensureHeader() error {
	var meta model.MetaRow
	err := b.deps.DB.Where("key = ?", model.MetaKeyHeader).First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := b.deps.DB.Create(&model.MetaRow{Key: model.MetaKeyHeader, Value: model.HeaderValue()}).Error; err != nil {
			return fmt.Errorf("failed to write grid header: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read grid header: %w", err)
	}

	if meta.Value == model.HeaderValue() {
		return nil
	}

	b.deps.Log.Error().
		Str("found", meta.Value).
		Str("want", model.HeaderValue()).
		Msg("Grid header does not match this version, wiping and rebuilding the mirror")

	return b.deps.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.MissionRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear mission rows: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.MetaRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear grid meta: %w", err)
		}
		if err := tx.Create(&model.MetaRow{Key: model.MetaKeyHeader, Value: model.HeaderValue()}).Error; err != nil {
			return fmt.Errorf("failed to write grid header: %w", err)
		}
		return nil
	})
}

// Read rebuilds a document from the grid, rows in board order.
func (b *Backend) Read() (*core.Document, error) {
	var rows []model.MissionRow
	if err := b.deps.DB.Order("row_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read mission rows: %w", err)
	}

	doc := core.EmptyDocument()
	doc.Missions = make([]core.Mission, 0, len(rows))
	for _, row := range rows {
		doc.Missions = append(doc.Missions, convert.MissionRowToCore(row))
	}

	var metas []model.MetaRow
	if err := b.deps.DB.Find(&metas).Error; err != nil {
		return nil, fmt.Errorf("failed to read grid meta: %w", err)
	}
	for _, meta := range metas {
		switch meta.Key {
		case model.MetaKeyUpdatedAt:
			if ts, err := time.Parse(time.RFC3339Nano, meta.Value); err == nil {
				doc.UpdatedAt = ts.UTC()
			}
		case model.MetaKeyRevision:
			if rev, err := strconv.ParseInt(meta.Value, 10, 64); err == nil {
				doc.Revision = rev
			}
		}
	}
	return doc, nil
}

// Write mirrors doc onto the grid. Rows and meta are replaced in one
// transaction so a concurrent reader never sees a half-written board.
func (b *Backend) Write(doc *core.Document) error {
	rows := make([]model.MissionRow, 0, len(doc.Missions))
	for _, m := range doc.Missions {
		rows = append(rows, convert.CoreToMissionRow(m))
	}

	metas := []model.MetaRow{
		{Key: model.MetaKeyHeader, Value: model.HeaderValue()},
		{Key: model.MetaKeyUpdatedAt, Value: doc.UpdatedAt.UTC().Format(time.RFC3339Nano)},
	}
	if doc.Revision > 0 {
		metas = append(metas, model.MetaRow{Key: model.MetaKeyRevision, Value: strconv.FormatInt(doc.Revision, 10)})
	}

	return b.deps.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.MissionRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear mission rows: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.MetaRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear grid meta: %w", err)
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to write mission rows: %w", err)
			}
		}
		if err := tx.Create(&metas).Error; err != nil {
			return fmt.Errorf("failed to write grid meta: %w", err)
		}
		return nil
	})
}

// Close closes the owned database connection, if Init opened one.
func (b *Backend) Close() error {
	if b.manager != nil {
		return b.manager.Close()
	}
	return nil
}

package remote

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factionboard/missionstore/internal/database"
	"github.com/factionboard/missionstore/internal/model"
	"github.com/factionboard/missionstore/pkg/core"
)

// newTestBackend creates an initialized Backend on a throwaway SQLite grid.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()

	manager := database.NewManager(zerolog.Nop())
	db, err := manager.GetSqliteDB(filepath.Join(t.TempDir(), "grid.db"))
	require.NoError(t, err)

	b := New(Dependencies{DB: db, Log: zerolog.Nop()})
	require.NoError(t, b.Init())
	t.Cleanup(func() { b.Close() })
	return b
}

func testDocument() *core.Document {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	doc := core.EmptyDocument()
	doc.UpdatedAt = now
	doc.Append(core.NewMission("🜁 Gilded Compass", "Recover the Moonshard", "300 gp", "City of the Dead", "An astronomer begs for help.", now))
	doc.Append(core.NewMission("🜃 Emberfall Syndicate", "Escort the reliquary cart", "Favor", "Old Kiln Road", "", now.Add(time.Hour)))
	doc.Append(core.NewMission("🜁 Gilded Compass", "Map the sunken stacks", "", "Drowned Library", "", now.Add(2*time.Hour)))
	return doc
}

func TestInit_WritesHeaderOnFreshGrid(t *testing.T) {
	b := newTestBackend(t)

	var meta model.MetaRow
	require.NoError(t, b.deps.DB.Where("key = ?", model.MetaKeyHeader).First(&meta).Error)
	assert.Equal(t, model.HeaderValue(), meta.Value)
}

func TestWriteThenRead_RoundTripsInBoardOrder(t *testing.T) {
	b := newTestBackend(t)
	want := testDocument()

	require.NoError(t, b.Write(want))

	got, err := b.Read()
	require.NoError(t, err)
	assert.Equal(t, want.UpdatedAt, got.UpdatedAt)
	assert.Equal(t, want.Missions, got.Missions)
}

func TestWrite_ReplacesPreviousRows(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.Write(testDocument()))

	second := core.EmptyDocument()
	second.UpdatedAt = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	second.Append(core.NewMission("🜄 Tidecaller Court", "Chart the drowned vault", "", "", "", second.UpdatedAt))
	require.NoError(t, b.Write(second))

	got, err := b.Read()
	require.NoError(t, err)
	require.Len(t, got.Missions, 1)
	assert.Equal(t, "Chart the drowned vault", got.Missions[0].Title)
}

func TestWrite_EmptyBoardClearsRows(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.Write(testDocument()))

	empty := core.EmptyDocument()
	empty.UpdatedAt = time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, b.Write(empty))

	got, err := b.Read()
	require.NoError(t, err)
	assert.Empty(t, got.Missions)
	assert.Equal(t, empty.UpdatedAt, got.UpdatedAt)
}

func TestWrite_PersistsRevisionMeta(t *testing.T) {
	b := newTestBackend(t)
	doc := testDocument()
	doc.Revision = 7

	require.NoError(t, b.Write(doc))

	got, err := b.Read()
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Revision)
}

func TestInit_WipesMirrorOnHeaderMismatch(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.Write(testDocument()))

	// Simulate a grid built by an incompatible version.
	require.NoError(t, b.deps.DB.Model(&model.MetaRow{}).
		Where("key = ?", model.MetaKeyHeader).
		Update("value", "id,faction,title").Error)

	again := New(Dependencies{DB: b.deps.DB, Log: zerolog.Nop()})
	require.NoError(t, again.Init())

	got, err := again.Read()
	require.NoError(t, err)
	assert.Empty(t, got.Missions, "mismatched mirror should be wiped")

	var meta model.MetaRow
	require.NoError(t, b.deps.DB.Where("key = ?", model.MetaKeyHeader).First(&meta).Error)
	assert.Equal(t, model.HeaderValue(), meta.Value)
}

func TestRead_RepairsDamagedRows(t *testing.T) {
	b := newTestBackend(t)

	// A row written by hand: no id, no status, unreadable timestamps.
	require.NoError(t, b.deps.DB.Create(&model.MissionRow{
		Faction: "🜂 Ashen Accord",
		Title:   "Orphaned row",
	}).Error)

	got, err := b.Read()
	require.NoError(t, err)
	require.Len(t, got.Missions, 1)

	m := got.Missions[0]
	_, parseErr := uuid.Parse(m.ID)
	assert.NoError(t, parseErr)
	assert.Equal(t, core.StatusAvailable, m.Status)
	assert.False(t, m.CreatedAt.IsZero())
}

func TestClose_LeavesInjectedConnectionOpen(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.Close())

	// The backend did not open the connection, so it must still work.
	var n int64
	assert.NoError(t, b.deps.DB.Model(&model.MetaRow{}).Count(&n).Error)
	assert.NotZero(t, n)
}

// Ensure gorm batch insert keeps board order on this schema.
func TestWrite_ManyRowsKeepOrder(t *testing.T) {
	b := newTestBackend(t)
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	doc := core.EmptyDocument()
	doc.UpdatedAt = now
	for i := 0; i < 50; i++ {
		doc.Append(core.NewMission("🜁 Gilded Compass", "Mission "+string(rune('A'+i%26)), "", "", "", now.Add(time.Duration(i)*time.Minute)))
	}
	require.NoError(t, b.Write(doc))

	got, err := b.Read()
	require.NoError(t, err)
	require.Len(t, got.Missions, 50)
	for i := range doc.Missions {
		assert.Equal(t, doc.Missions[i].ID, got.Missions[i].ID)
	}
}

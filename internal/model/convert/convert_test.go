package convert

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factionboard/missionstore/internal/model"
	"github.com/factionboard/missionstore/pkg/core"
)

func TestParseCellTime(t *testing.T) {
	want := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	tests := []struct {
		name string
		cell string
	}{
		{"rfc3339nano", "2026-03-14T09:26:53Z"},
		{"rfc3339 offset", "2026-03-14T10:26:53+01:00"},
		{"legacy space form", "2026-03-14 09:26:53"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, want, parseCellTime(tt.cell))
		})
	}
}

func TestParseCellTime_UnreadableCellResolvesToNow(t *testing.T) {
	before := time.Now().UTC()
	got := parseCellTime("not a time")
	after := time.Now().UTC()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))

	assert.False(t, parseCellTime("").IsZero())
}

func TestMissionRowToCore(t *testing.T) {
	row := model.MissionRow{
		RowID:      7,
		MissionID:  "4be0643f-1d98-573b-97cd-ca98a65347dd",
		Faction:    "🜁 Gilded Compass",
		Title:      "Recover the Moonshard",
		Reward:     "300 gp",
		Location:   "City of the Dead",
		Hook:       "An astronomer begs for help.",
		CreatedAt:  "2026-03-14T09:26:53Z",
		UpdatedAt:  "2026-03-15T18:00:00Z",
		Status:     "Accepted",
		AssignedTo: "Brakka",
		Notes:      "Bring rope.",
	}

	m := MissionRowToCore(row)

	assert.Equal(t, "4be0643f-1d98-573b-97cd-ca98a65347dd", m.ID)
	assert.Equal(t, "🜁 Gilded Compass", m.Faction)
	assert.Equal(t, "Recover the Moonshard", m.Title)
	assert.Equal(t, "300 gp", m.Reward)
	assert.Equal(t, "City of the Dead", m.Location)
	assert.Equal(t, "An astronomer begs for help.", m.Hook)
	assert.Equal(t, core.StatusAccepted, m.Status)
	assert.Equal(t, "Brakka", m.AssignedTo)
	assert.Equal(t, "Bring rope.", m.Notes)
	assert.Equal(t, time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC), m.CreatedAt)
	assert.Equal(t, time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC), m.UpdatedAt)
}

func TestMissionRowToCore_RepairsBlankCells(t *testing.T) {
	m := MissionRowToCore(model.MissionRow{Title: "Orphaned row"})

	_, err := uuid.Parse(m.ID)
	require.NoError(t, err, "blank id cell should be replaced with a fresh UUID")
	assert.Equal(t, core.StatusAvailable, m.Status)
	assert.False(t, m.CreatedAt.IsZero())
	assert.False(t, m.UpdatedAt.IsZero())
}

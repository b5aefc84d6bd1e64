package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/factionboard/missionstore/pkg/core"
)

func TestFormatCellTime_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2026, 3, 14, 11, 26, 53, 0, loc)

	assert.Equal(t, "2026-03-14T09:26:53Z", formatCellTime(ts))
}

// Round-trip: core -> row -> core
func TestMissionRoundTrip(t *testing.T) {
	original := core.Mission{
		ID:         "4be0643f-1d98-573b-97cd-ca98a65347dd",
		Faction:    "🜃 Emberfall Syndicate",
		Title:      "Escort the reliquary cart",
		Reward:     "Favor of the syndicate",
		Location:   "Old Kiln Road",
		Hook:       "The cart leaves at dawn.",
		Status:     core.StatusCompleted,
		AssignedTo: "Sable company",
		Notes:      "Paid in full.",
		CreatedAt:  time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 3, 20, 7, 0, 0, 0, time.UTC),
	}

	row := CoreToMissionRow(original)
	assert.Zero(t, row.RowID, "row id is assigned by the database")
	assert.Equal(t, "2026-03-14T09:26:53Z", row.CreatedAt)

	got := MissionRowToCore(row)
	assert.Equal(t, original, got)
}

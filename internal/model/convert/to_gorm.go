package convert

import (
	"time"

	"github.com/factionboard/missionstore/internal/model"
	"github.com/factionboard/missionstore/pkg/core"
)

// formatCellTime renders a timestamp for a grid cell.
func formatCellTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// CoreToMissionRow converts a core.Mission to a grid model.MissionRow.
// RowID is left zero so the database assigns it on insert; board order is
// the insert order.
func CoreToMissionRow(m core.Mission) model.MissionRow {
	return model.MissionRow{
		MissionID:  m.ID,
		Faction:    m.Faction,
		Title:      m.Title,
		Reward:     m.Reward,
		Location:   m.Location,
		Hook:       m.Hook,
		CreatedAt:  formatCellTime(m.CreatedAt),
		UpdatedAt:  formatCellTime(m.UpdatedAt),
		Status:     string(m.Status),
		AssignedTo: m.AssignedTo,
		Notes:      m.Notes,
	}
}

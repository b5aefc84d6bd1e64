// Package convert provides functions to convert grid rows to core models and back
package convert

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/factionboard/missionstore/internal/model"
	"github.com/factionboard/missionstore/pkg/core"
)

// cellTimeLayouts are the accepted timestamp formats for grid cells, in
// preference order. Rows written by older tooling used the space-separated
// form.
var cellTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseCellTime parses a timestamp cell. A blank or unreadable cell resolves
// to the current time so a damaged row never produces a zero timestamp.
func parseCellTime(cell string) time.Time {
	cell = strings.TrimSpace(cell)
	if cell != "" {
		for _, layout := range cellTimeLayouts {
			if ts, err := time.Parse(layout, cell); err == nil {
				return ts.UTC()
			}
		}
	}
	return time.Now().UTC()
}

// MissionRowToCore converts a grid MissionRow to a core.Mission.
// Blank id and status cells are repaired the same way document parsing
// repairs them, so a hand-edited grid still loads.
func MissionRowToCore(r model.MissionRow) core.Mission {
	id := strings.TrimSpace(r.MissionID)
	if id == "" {
		id = uuid.NewString()
	}
	status := core.Status(strings.TrimSpace(r.Status))
	if status == "" {
		status = core.StatusAvailable
	}

	return core.Mission{
		ID:         id,
		Faction:    r.Faction,
		Title:      r.Title,
		Reward:     r.Reward,
		Location:   r.Location,
		Hook:       r.Hook,
		Status:     status,
		AssignedTo: r.AssignedTo,
		Notes:      r.Notes,
		CreatedAt:  parseCellTime(r.CreatedAt),
		UpdatedAt:  parseCellTime(r.UpdatedAt),
	}
}

package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrValidation is wrapped by every error arising from caller-supplied
// input: a bad mission field on create, or an import payload that does
// not parse as a document.
var ErrValidation = errors.New("validation")

// Status is the lifecycle state of a mission. Transitions are not
// restricted: any status may be set from any other.
type Status string

const (
	StatusAvailable Status = "Available"
	StatusAccepted  Status = "Accepted"
	StatusCompleted Status = "Completed"
	StatusFailed    Status = "Failed"
)

// Statuses lists the valid statuses in display order.
func Statuses() []Status {
	return []Status{StatusAvailable, StatusAccepted, StatusCompleted, StatusFailed}
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	return slices.Contains(Statuses(), s)
}

// ParseStatus converts user input to a canonical Status, matching
// case-insensitively.
func ParseStatus(input string) (Status, error) {
	for _, s := range Statuses() {
		if strings.EqualFold(string(s), strings.TrimSpace(input)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, input)
}

// Mission is a single posted job for a faction.
type Mission struct {
	ID         string    `json:"id"`
	Faction    string    `json:"faction"`
	Title      string    `json:"title"`
	Reward     string    `json:"reward"`
	Location   string    `json:"location"`
	Hook       string    `json:"hook"`
	Status     Status    `json:"status"`
	AssignedTo string    `json:"assigned_to"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewMission builds a fresh mission with a generated id and status
// Available. Text fields are trimmed; the faction value is stored as
// chosen. created_at and updated_at both start at now.
func NewMission(faction, title, reward, location, hook string, now time.Time) Mission {
	return Mission{
		ID:        uuid.NewString(),
		Faction:   faction,
		Title:     strings.TrimSpace(title),
		Reward:    strings.TrimSpace(reward),
		Location:  strings.TrimSpace(location),
		Hook:      strings.TrimSpace(hook),
		Status:    StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateNew checks the fields required to create a mission: a title
// that survives trimming and a faction from the configured set.
func ValidateNew(factions []string, faction, title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !slices.Contains(factions, faction) {
		return fmt.Errorf("%w: unknown faction %q", ErrValidation, faction)
	}
	return nil
}

// MissionPatch carries a partial mission update. Nil fields are left
// untouched; set fields are written as-is.
type MissionPatch struct {
	Title      *string
	Reward     *string
	Location   *string
	Hook       *string
	Status     *Status
	AssignedTo *string
	Notes      *string
}

// IsZero reports whether the patch sets nothing at all.
func (p MissionPatch) IsZero() bool {
	return p.Title == nil && p.Reward == nil && p.Location == nil &&
		p.Hook == nil && p.Status == nil && p.AssignedTo == nil && p.Notes == nil
}

func (p MissionPatch) apply(m *Mission) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Reward != nil {
		m.Reward = *p.Reward
	}
	if p.Location != nil {
		m.Location = *p.Location
	}
	if p.Hook != nil {
		m.Hook = *p.Hook
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.AssignedTo != nil {
		m.AssignedTo = *p.AssignedTo
	}
	if p.Notes != nil {
		m.Notes = *p.Notes
	}
}

package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current document schema version.
const SchemaVersion = 1

// Document is the unit of persistence. Every save writes the whole
// document and every load reads it back; missions keep their list
// order across the round trip.
type Document struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
	Revision  int64     `json:"revision,omitempty"`
	Missions  []Mission `json:"missions"`
}

// EmptyDocument returns a document with no missions, stamped now.
func EmptyDocument() *Document {
	return &Document{
		Version:   SchemaVersion,
		UpdatedAt: time.Now().UTC(),
		Missions:  []Mission{},
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	cp := *d
	cp.Missions = append([]Mission(nil), d.Missions...)
	return &cp
}

// Find returns the mission with the given id.
func (d *Document) Find(id string) (Mission, bool) {
	for _, m := range d.Missions {
		if m.ID == id {
			return m, true
		}
	}
	return Mission{}, false
}

// Append adds a mission to the end of the list.
func (d *Document) Append(m Mission) {
	d.Missions = append(d.Missions, m)
}

// Update merges patch into the mission with the given id and stamps its
// updated_at. It reports false, changing nothing, when the id is
// unknown.
func (d *Document) Update(id string, patch MissionPatch, now time.Time) bool {
	for i := range d.Missions {
		if d.Missions[i].ID == id {
			patch.apply(&d.Missions[i])
			d.Missions[i].UpdatedAt = now
			return true
		}
	}
	return false
}

// Remove deletes the mission with the given id, reporting whether a
// mission was actually removed.
func (d *Document) Remove(id string) bool {
	for i := range d.Missions {
		if d.Missions[i].ID == id {
			d.Missions = append(d.Missions[:i], d.Missions[i+1:]...)
			return true
		}
	}
	return false
}

// ByFaction returns the missions belonging to faction, in document
// order. A faction with no missions yields an empty slice, never an
// error.
func (d *Document) ByFaction(faction string) []Mission {
	out := []Mission{}
	for _, m := range d.Missions {
		if m.Faction == faction {
			out = append(out, m)
		}
	}
	return out
}

// FilterOptions narrows a mission listing. Zero values match
// everything: an empty faction means all factions, an empty status set
// means all statuses, and the query is a case-insensitive substring
// match over title, location and reward.
type FilterOptions struct {
	Faction  string
	Statuses []Status
	Query    string
}

// Filter returns the missions matching opts, in document order.
func (d *Document) Filter(opts FilterOptions) []Mission {
	query := strings.ToLower(strings.TrimSpace(opts.Query))
	out := []Mission{}
	for _, m := range d.Missions {
		if opts.Faction != "" && m.Faction != opts.Faction {
			continue
		}
		if len(opts.Statuses) > 0 && !slices.Contains(opts.Statuses, m.Status) {
			continue
		}
		if query != "" && !matchesQuery(m, query) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matchesQuery(m Mission, query string) bool {
	return strings.Contains(strings.ToLower(m.Title), query) ||
		strings.Contains(strings.ToLower(m.Location), query) ||
		strings.Contains(strings.ToLower(m.Reward), query)
}

// Marshal serializes the document as 2-space indented UTF-8 JSON.
// Faction names carry emoji, so HTML escaping is disabled to keep the
// output byte-stable for hand inspection and re-import.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseDocument decodes and normalizes a serialized document. Anything
// that is not a JSON object holding a missions list fails with an
// ErrValidation-wrapped error.
func ParseDocument(data []byte) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: not a JSON object: %v", ErrValidation, err)
	}
	missionsRaw, ok := raw["missions"]
	if !ok {
		return nil, fmt.Errorf("%w: document has no missions list", ErrValidation)
	}
	var missions []Mission
	if err := json.Unmarshal(missionsRaw, &missions); err != nil {
		return nil, fmt.Errorf("%w: malformed missions list: %v", ErrValidation, err)
	}
	doc := &Document{Version: SchemaVersion, Missions: missions}
	if v, ok := raw["version"]; ok {
		_ = json.Unmarshal(v, &doc.Version)
	}
	if v, ok := raw["updated_at"]; ok {
		var ts time.Time
		if err := json.Unmarshal(v, &ts); err == nil {
			doc.UpdatedAt = ts
		}
	}
	if v, ok := raw["revision"]; ok {
		_ = json.Unmarshal(v, &doc.Revision)
	}
	doc.normalize()
	return doc, nil
}

// normalize fills the gaps a hand-edited or partial document may carry:
// schema version, nil mission list, blank ids, blank statuses and zero
// timestamps all get usable values.
func (d *Document) normalize() {
	if d.Version == 0 {
		d.Version = SchemaVersion
	}
	if d.Missions == nil {
		d.Missions = []Mission{}
	}
	now := time.Now().UTC()
	for i := range d.Missions {
		m := &d.Missions[i]
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.Status == "" {
			m.Status = StatusAvailable
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		if m.UpdatedAt.IsZero() {
			m.UpdatedAt = m.CreatedAt
		}
	}
}

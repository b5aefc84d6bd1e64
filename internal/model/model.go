package model

import "strings"

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&MissionRow{},
	&MetaRow{},
}

// HeaderColumns is the canonical mission column order. The joined list is
// stored under MetaKeyHeader so a schema drift can be detected before any
// rows are trusted.
var HeaderColumns = []string{
	"id",
	"faction",
	"title",
	"reward",
	"location",
	"hook",
	"created_at",
	"updated_at",
	"status",
	"assigned_to",
	"notes",
}

// HeaderValue returns the header string persisted in the meta table.
func HeaderValue() string {
	return strings.Join(HeaderColumns, ",")
}

// Keys used in the document_meta table.
const (
	MetaKeyHeader    = "header"
	MetaKeyUpdatedAt = "updated_at"
	MetaKeyRevision  = "revision"
)

// MissionRow mirrors a single mission from the board snapshot. Every payload
// column is text: the table stores exactly what the snapshot holds, and the
// surrogate row_id keeps board order without touching the mission id.
type MissionRow struct {
	RowID      uint   `json:"-" gorm:"column:row_id;primaryKey;autoIncrement"`
	MissionID  string `json:"id" gorm:"column:id;size:64"`
	Faction    string `json:"faction" gorm:"size:127"`
	Title      string `json:"title" gorm:"size:255"`
	Reward     string `json:"reward" gorm:"size:255"`
	Location   string `json:"location" gorm:"size:255"`
	Hook       string `json:"hook" gorm:"size:2000"`
	CreatedAt  string `json:"created_at" gorm:"column:created_at;size:64"`
	UpdatedAt  string `json:"updated_at" gorm:"column:updated_at;size:64"`
	Status     string `json:"status" gorm:"size:32"`
	AssignedTo string `json:"assigned_to" gorm:"column:assigned_to;size:127"`
	Notes      string `json:"notes" gorm:"size:2000"`
}

func (*MissionRow) TableName() string {
	return "missions"
}

// MetaRow is a key/value pair describing the mirrored document as a whole:
// the column header, the document timestamp and the save revision.
type MetaRow struct {
	Key   string `json:"key" gorm:"column:key;primaryKey;size:64"`
	Value string `json:"value" gorm:"size:255"`
}

func (*MetaRow) TableName() string {
	return "document_meta"
}

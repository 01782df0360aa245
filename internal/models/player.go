package models

import (
	"database/sql"
	"time"
)

// External identifier columns on the players table
const (
	GsisID  = "gsis_id"
	PfrID   = "pfr_id"
	SmartID = "smart_id"
	EsbID   = "esb_id"
)

// ExternalIDColumns lists every external identifier column
var ExternalIDColumns = []string{GsisID, PfrID, SmartID, EsbID}

// Player represents one real person across all feeds
type Player struct {
	ID           int64          `db:"id"`
	GsisID       sql.NullString `db:"gsis_id"`
	PfrID        sql.NullString `db:"pfr_id"`
	SmartID      sql.NullString `db:"smart_id"`
	EsbID        sql.NullString `db:"esb_id"`
	FullName     string         `db:"full_name"`
	FirstName    sql.NullString `db:"first_name"`
	LastName     sql.NullString `db:"last_name"`
	FootballName sql.NullString `db:"football_name"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// Unmatched reasons
const (
	ReasonMissingIdentifier = "missing_identifier"
	ReasonNotFound          = "not_found"
)

// UnmatchedPlayer is a feed row kept for manual reconciliation because its
// identity could not be resolved
type UnmatchedPlayer struct {
	ID        int64          `db:"id"`
	Feed      string         `db:"feed"`
	Reason    string         `db:"reason"`
	GsisID    sql.NullString `db:"gsis_id"`
	PfrID     sql.NullString `db:"pfr_id"`
	SmartID   sql.NullString `db:"smart_id"`
	FullName  sql.NullString `db:"full_name"`
	Season    sql.NullInt32  `db:"season"`
	Week      sql.NullInt32  `db:"week"`
	CreatedAt time.Time      `db:"created_at"`
}

// NullString wraps a non-empty string
func NullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

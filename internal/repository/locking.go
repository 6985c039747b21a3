package repository

import (
	"errors"

	"github.com/jmoiron/sqlx"
)

// Lookup failures inside multi-row transactions, where a bare sql.ErrNoRows
// would not say which row was missing.
var (
	ErrCycleNotFound        = errors.New("cycle not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrParticipantNotFound  = errors.New("participant not found")
)

// Catalog updates refused because participants are already enrolled.
var (
	ErrCapacityBelowEnrolled = errors.New("capacity below enrolled count")
	ErrCycleLevelLocked      = errors.New("cycle level fixed by enrolled participants")
)

// forUpdate returns the row lock clause for drivers that support it. SQLite
// takes a database-wide write lock per transaction instead.
func forUpdate(db *sqlx.DB) string {
	if db.DriverName() == "postgres" {
		return " FOR UPDATE"
	}
	return ""
}

package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

var fixedNow = time.Date(2025, time.January, 2, 9, 0, 0, 0, time.UTC)

var cycleCols = []string{"id", "start_date", "end_date", "level", "capacity", "enrolled_count", "created_at", "updated_at"}

var registrationCols = []string{"id", "name", "email", "package", "answers", "status", "submitted_at", "reviewed_at"}

var participantCols = []string{"id", "sequence", "registration_id", "name", "email", "cycle_id", "current_tier", "purchased_package", "hold", "attendance", "enrolled_at", "updated_at"}

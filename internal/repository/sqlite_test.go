package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/program-cycles-api/internal/lifecycle"
	"github.com/noah-isme/program-cycles-api/internal/models"
	"github.com/noah-isme/program-cycles-api/pkg/config"
	"github.com/noah-isme/program-cycles-api/pkg/database"
)

func newSQLiteDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.NewSQLite(config.DatabaseConfig{SQLitePath: filepath.Join(t.TempDir(), "program.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = database.Migrate(db)
	require.NoError(t, err)
	return db
}

func TestSQLiteEnrollmentAndAttendanceRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	cycles := NewCycleRepository(db)
	registrations := NewRegistrationRepository(db)
	enrollment := NewEnrollmentRepository(db)
	participants := NewParticipantRepository(db)

	now := time.Date(2029, time.December, 20, 10, 0, 0, 0, time.UTC)
	start := time.Date(2030, time.January, 3, 0, 0, 0, 0, time.UTC)
	cycle := &models.Cycle{ID: "inicial-2030-01-03", StartDate: start, EndDate: start.AddDate(0, 0, 3), Level: models.TierInicial, Capacity: 2, CreatedAt: now, UpdatedAt: now}
	created, err := cycles.Upsert(ctx, cycle)
	require.NoError(t, err)
	require.True(t, created)

	enroll := func(id, name string) *models.Participant {
		t.Helper()
		reg := &models.Registration{
			ID:          id,
			Name:        name,
			Email:       id + "@example.com",
			Package:     models.PackageComboInicialAvanzado,
			Answers:     models.Answers{{Question: "Why now?", Answer: "Ready"}},
			Status:      models.RegistrationPendingReview,
			SubmittedAt: now,
		}
		require.NoError(t, registrations.Create(ctx, reg))

		approved, err := registrations.Review(ctx, id, func(r models.Registration) (models.Registration, error) {
			return lifecycle.ApproveRegistration(r, now)
		})
		require.NoError(t, err)
		require.Equal(t, models.RegistrationPendingPayment, approved.Status)

		_, p, c, err := enrollment.Convert(ctx, id, cycle.ID, func(r models.Registration, c models.Cycle) (models.Participant, models.Cycle, error) {
			conv, err := lifecycle.ConfirmPayment(r, c, "", "p-"+id, lifecycle.Ledger{EnforceCapacity: true}, now)
			return conv.Participant, conv.Cycle, err
		})
		require.NoError(t, err)
		assert.Equal(t, cycle.ID, c.ID)
		return p
	}

	first := enroll("r-1", "Ana Garcia")
	second := enroll("r-2", "Luis Perez")
	assert.Equal(t, int64(1), first.Sequence)
	assert.Equal(t, int64(2), second.Sequence)

	_, err = registrations.FindByID(ctx, "r-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, _, _, err = enrollment.Convert(ctx, "r-1", cycle.ID, func(r models.Registration, c models.Cycle) (models.Participant, models.Cycle, error) {
		t.Fatal("consumed registration must not reach the converter")
		return models.Participant{}, c, nil
	})
	assert.ErrorIs(t, err, ErrRegistrationNotFound)

	stored, err := cycles.FindByID(ctx, cycle.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.EnrolledCount)

	toggle := func(day int) *models.Participant {
		t.Helper()
		p, err := participants.Mutate(ctx, first.ID, "", func(p models.Participant, _ *models.Cycle) (models.Participant, *models.Cycle, error) {
			next, err := lifecycle.ToggleAttendance(p, day)
			return next, nil, err
		})
		require.NoError(t, err)
		return p
	}
	toggle(0)
	toggle(1)
	toggle(2)

	reloaded, err := participants.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Attendance{true, true, true, false}, reloaded.Attendance)
	assert.Equal(t, 75, reloaded.Progress())
	assert.Equal(t, models.ParticipantActive, reloaded.Status())

	toggle(1)
	reloaded, err = participants.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Attendance{true, false, false, false}, reloaded.Attendance)
	assert.Equal(t, 25, reloaded.Progress())
	assert.Equal(t, models.ParticipantConflict, reloaded.Status())

	counts, err := participants.CountByStatus(ctx, cycle.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Active)
	assert.Equal(t, 1, counts.Conflict)

	roster, err := participants.ListByCycle(ctx, cycle.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Ana Garcia", roster[0].Name)
	assert.Equal(t, models.HoldConflict, roster[0].Hold)
}

func TestSQLiteUpsertGuardsEnrolledCycle(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	cycles := NewCycleRepository(db)

	now := time.Date(2029, time.December, 20, 10, 0, 0, 0, time.UTC)
	start := time.Date(2030, time.January, 3, 0, 0, 0, 0, time.UTC)
	base := models.Cycle{ID: "inicial-2030-01-03", StartDate: start, EndDate: start.AddDate(0, 0, 3), Level: models.TierInicial, Capacity: 2, CreatedAt: now, UpdatedAt: now}
	insert := base
	_, err := cycles.Upsert(ctx, &insert)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE cycles SET enrolled_count = 2 WHERE id = $1`, base.ID)
	require.NoError(t, err)

	shrink := base
	shrink.Capacity = 1
	_, err = cycles.Upsert(ctx, &shrink)
	assert.ErrorIs(t, err, ErrCapacityBelowEnrolled)

	relevel := base
	relevel.Level = models.TierAvanzado
	_, err = cycles.Upsert(ctx, &relevel)
	assert.ErrorIs(t, err, ErrCycleLevelLocked)

	grow := base
	grow.Capacity = 5
	created, err := cycles.Upsert(ctx, &grow)
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := cycles.FindByID(ctx, base.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierInicial, stored.Level)
	assert.Equal(t, 5, stored.Capacity)
	assert.Equal(t, 2, stored.EnrolledCount)
}

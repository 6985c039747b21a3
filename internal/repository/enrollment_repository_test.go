package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/program-cycles-api/internal/models"
)

func convertStub(reg models.Registration, cycle models.Cycle) (models.Participant, models.Cycle, error) {
	cycle.EnrolledCount++
	cycle.UpdatedAt = fixedNow
	return models.Participant{
		ID:               "p-1",
		RegistrationID:   reg.ID,
		Name:             reg.Name,
		Email:            reg.Email,
		CycleID:          cycle.ID,
		CurrentTier:      models.TierInicial,
		PurchasedPackage: reg.Package,
		EnrolledAt:       fixedNow,
		UpdatedAt:        fixedNow,
	}, cycle, nil
}

func TestEnrollmentRepositoryConvert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM registrations WHERE id = $1 FOR UPDATE")).
		WithArgs("r-1").
		WillReturnRows(sqlmock.NewRows(registrationCols).
			AddRow("r-1", "Ana Garcia", "ana@example.com", "INICIAL", `[]`, "PENDING_PAYMENT", fixedNow, fixedNow))
	mock.ExpectQuery(regexp.QuoteMeta("FROM cycles WHERE id = $1 FOR UPDATE")).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows(cycleCols).AddRow("c-1", fixedNow, fixedNow, "INICIAL", 30, 4, fixedNow, fixedNow))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cycles SET enrolled_count = $1")).
		WithArgs(5, fixedNow, "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE program_counters SET value = value + 1 WHERE name = 'participant_sequence' RETURNING value")).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(42)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO participants")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM registrations WHERE id = $1")).
		WithArgs("r-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	reg, p, cycle, err := repo.Convert(context.Background(), "r-1", "c-1", convertStub)
	require.NoError(t, err)
	assert.Equal(t, "r-1", reg.ID)
	assert.Equal(t, int64(42), p.Sequence)
	assert.Equal(t, "c-1", p.CycleID)
	assert.Equal(t, 5, cycle.EnrolledCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryConvertMissingRegistration(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM registrations WHERE id = $1")).
		WithArgs("r-1").
		WillReturnRows(sqlmock.NewRows(registrationCols))
	mock.ExpectRollback()

	_, _, _, err := repo.Convert(context.Background(), "r-1", "c-1", convertStub)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryConvertDeclined(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM registrations WHERE id = $1")).
		WithArgs("r-1").
		WillReturnRows(sqlmock.NewRows(registrationCols).
			AddRow("r-1", "Ana Garcia", "ana@example.com", "INICIAL", `[]`, "PENDING_PAYMENT", fixedNow, fixedNow))
	mock.ExpectQuery(regexp.QuoteMeta("FROM cycles WHERE id = $1")).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows(cycleCols).AddRow("c-1", fixedNow, fixedNow, "INICIAL", 30, 30, fixedNow, fixedNow))
	mock.ExpectRollback()

	full := assert.AnError
	reg, _, _, err := repo.Convert(context.Background(), "r-1", "c-1", func(models.Registration, models.Cycle) (models.Participant, models.Cycle, error) {
		return models.Participant{}, models.Cycle{}, full
	})
	assert.ErrorIs(t, err, full)
	require.NotNil(t, reg)
	assert.Equal(t, models.RegistrationPendingPayment, reg.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

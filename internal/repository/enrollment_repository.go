package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/program-cycles-api/internal/models"
)

// ConvertFunc turns the locked registration and cycle into a participant and
// the cycle with its seat reserved.
type ConvertFunc func(reg models.Registration, cycle models.Cycle) (models.Participant, models.Cycle, error)

// EnrollmentRepository performs the registration to participant conversion.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Convert runs the whole conversion in one transaction: the registration is
// removed, the cycle count bumped, a sequence number allocated and the
// participant inserted. Either all of it lands or none does. When fn declines,
// the locked registration is returned with its error.
func (r *EnrollmentRepository) Convert(ctx context.Context, registrationID, cycleID string, fn ConvertFunc) (registration *models.Registration, participant *models.Participant, cycle *models.Cycle, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("begin enrollment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	reg, err := lockRegistration(ctx, r.db, tx, registrationID)
	if err != nil {
		return nil, nil, nil, err
	}
	locked, err := lockCycle(ctx, r.db, tx, cycleID)
	if err != nil {
		return nil, nil, nil, err
	}

	p, c, err := fn(*reg, *locked)
	if err != nil {
		return reg, nil, nil, err
	}

	if err = saveCycleCount(ctx, tx, c); err != nil {
		return nil, nil, nil, err
	}

	const sequenceQuery = `UPDATE program_counters SET value = value + 1 WHERE name = 'participant_sequence' RETURNING value`
	if err = tx.GetContext(ctx, &p.Sequence, sequenceQuery); err != nil {
		return nil, nil, nil, fmt.Errorf("allocate participant sequence: %w", err)
	}

	const insertQuery = `INSERT INTO participants (id, sequence, registration_id, name, email, cycle_id, current_tier, purchased_package, hold, attendance, enrolled_at, updated_at)
VALUES (:id, :sequence, :registration_id, :name, :email, :cycle_id, :current_tier, :purchased_package, :hold, :attendance, :enrolled_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, p); err != nil {
		return nil, nil, nil, fmt.Errorf("insert participant: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, reg.ID); err != nil {
		return nil, nil, nil, fmt.Errorf("delete converted registration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, nil, fmt.Errorf("commit enrollment: %w", err)
	}
	return reg, &p, &c, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/program-cycles-api/internal/models"
)

const participantColumns = `id, sequence, registration_id, name, email, cycle_id, current_tier, purchased_package, hold, attendance, enrolled_at, updated_at`

// fullAttendance is the bitmask of a record with every day attended.
const fullAttendance = 1<<models.CycleLength - 1

// ParticipantRepository persists enrolled participants.
type ParticipantRepository struct {
	db *sqlx.DB
}

// NewParticipantRepository constructs the repository.
func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// FindByID fetches a participant by identifier.
func (r *ParticipantRepository) FindByID(ctx context.Context, id string) (*models.Participant, error) {
	query := fmt.Sprintf("SELECT %s FROM participants WHERE id = $1", participantColumns)
	var p models.Participant
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns participants matching the filter in sequence order, with the total count.
func (r *ParticipantRepository) List(ctx context.Context, filter models.ParticipantFilter) ([]models.Participant, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.CycleID != "" {
		args = append(args, filter.CycleID)
		conditions = append(conditions, fmt.Sprintf("cycle_id = $%d", len(args)))
	}
	if filter.Tier != "" {
		args = append(args, filter.Tier)
		conditions = append(conditions, fmt.Sprintf("current_tier = $%d", len(args)))
	}
	if filter.Status != "" {
		conditions = append(conditions, statusCondition(filter.Status))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args), len(args)))
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s FROM participants%s ORDER BY sequence ASC LIMIT %d OFFSET %d",
		participantColumns, where, size, (page-1)*size)

	var participants []models.Participant
	if err := r.db.SelectContext(ctx, &participants, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list participants: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM participants"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count participants: %w", err)
	}
	return participants, total, nil
}

// ListByCycle returns the full roster of a cycle in sequence order.
func (r *ParticipantRepository) ListByCycle(ctx context.Context, cycleID string) ([]models.Participant, error) {
	query := fmt.Sprintf("SELECT %s FROM participants WHERE cycle_id = $1 ORDER BY sequence ASC", participantColumns)
	var participants []models.Participant
	if err := r.db.SelectContext(ctx, &participants, query, cycleID); err != nil {
		return nil, fmt.Errorf("list cycle roster: %w", err)
	}
	return participants, nil
}

// CountByStatus aggregates participants per derived status, optionally scoped to a cycle.
func (r *ParticipantRepository) CountByStatus(ctx context.Context, cycleID string) (models.ParticipantStatusCounts, error) {
	query := fmt.Sprintf(`SELECT
	COALESCE(SUM(CASE WHEN %s THEN 1 ELSE 0 END), 0) AS active,
	COALESCE(SUM(CASE WHEN %s THEN 1 ELSE 0 END), 0) AS conflict,
	COALESCE(SUM(CASE WHEN %s THEN 1 ELSE 0 END), 0) AS graduated,
	COALESCE(SUM(CASE WHEN %s THEN 1 ELSE 0 END), 0) AS dropped
FROM participants`,
		statusCondition(models.ParticipantActive),
		statusCondition(models.ParticipantConflict),
		statusCondition(models.ParticipantGraduated),
		statusCondition(models.ParticipantDropped))

	args := []interface{}{}
	if cycleID != "" {
		query += " WHERE cycle_id = $1"
		args = append(args, cycleID)
	}

	var counts models.ParticipantStatusCounts
	if err := r.db.GetContext(ctx, &counts, query, args...); err != nil {
		return models.ParticipantStatusCounts{}, fmt.Errorf("count participants by status: %w", err)
	}
	return counts, nil
}

// statusCondition mirrors Participant.Status in SQL.
func statusCondition(status models.ParticipantStatus) string {
	switch status {
	case models.ParticipantDropped:
		return fmt.Sprintf("hold = '%s'", models.HoldDropped)
	case models.ParticipantConflict:
		return fmt.Sprintf("hold = '%s'", models.HoldConflict)
	case models.ParticipantGraduated:
		return fmt.Sprintf("(hold = '' AND attendance = %d)", fullAttendance)
	case models.ParticipantActive:
		return fmt.Sprintf("(hold = '' AND attendance <> %d)", fullAttendance)
	default:
		return "1=0"
	}
}

// MutateFunc computes the next participant snapshot from the locked one.
// target is the locked cycle named by the caller, or nil. A non-nil returned
// cycle has its enrollment count persisted in the same transaction.
type MutateFunc func(p models.Participant, target *models.Cycle) (models.Participant, *models.Cycle, error)

// Mutate serialises a read-modify-write of one participant. When fn fails
// nothing is written and the locked snapshot is returned with the error.
func (r *ParticipantRepository) Mutate(ctx context.Context, id, targetCycleID string, fn MutateFunc) (result *models.Participant, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin participant mutation: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := fmt.Sprintf("SELECT %s FROM participants WHERE id = $1", participantColumns) + forUpdate(r.db)
	var current models.Participant
	if err = tx.GetContext(ctx, &current, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("lock participant: %w", err)
	}

	var target *models.Cycle
	if targetCycleID != "" {
		if target, err = lockCycle(ctx, r.db, tx, targetCycleID); err != nil {
			return nil, err
		}
	}

	next, cycle, err := fn(current, target)
	if err != nil {
		return &current, err
	}

	if cycle != nil {
		if err = saveCycleCount(ctx, tx, *cycle); err != nil {
			return nil, err
		}
	}

	const updateQuery = `UPDATE participants SET cycle_id = $1, current_tier = $2, hold = $3, attendance = $4, updated_at = $5 WHERE id = $6`
	if _, err = tx.ExecContext(ctx, updateQuery, next.CycleID, next.CurrentTier, next.Hold, next.Attendance, next.UpdatedAt, next.ID); err != nil {
		return nil, fmt.Errorf("update participant: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit participant mutation: %w", err)
	}
	return &next, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/program-cycles-api/internal/models"
)

const cycleColumns = `id, start_date, end_date, level, capacity, enrolled_count, created_at, updated_at`

// CycleRepository persists the cycle ledger.
type CycleRepository struct {
	db *sqlx.DB
}

// NewCycleRepository constructs the repository.
func NewCycleRepository(db *sqlx.DB) *CycleRepository {
	return &CycleRepository{db: db}
}

// List returns every cycle in calendar order. Calendar filtering happens in memory.
func (r *CycleRepository) List(ctx context.Context) ([]models.Cycle, error) {
	query := fmt.Sprintf("SELECT %s FROM cycles ORDER BY start_date ASC, level ASC", cycleColumns)
	var cycles []models.Cycle
	if err := r.db.SelectContext(ctx, &cycles, query); err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	return cycles, nil
}

// FindByID fetches a cycle by identifier.
func (r *CycleRepository) FindByID(ctx context.Context, id string) (*models.Cycle, error) {
	query := fmt.Sprintf("SELECT %s FROM cycles WHERE id = $1", cycleColumns)
	var cycle models.Cycle
	if err := r.db.GetContext(ctx, &cycle, query, id); err != nil {
		return nil, err
	}
	return &cycle, nil
}

// Create inserts a new cycle.
func (r *CycleRepository) Create(ctx context.Context, cycle *models.Cycle) error {
	const query = `INSERT INTO cycles (id, start_date, end_date, level, capacity, enrolled_count, created_at, updated_at)
VALUES (:id, :start_date, :end_date, :level, :capacity, :enrolled_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cycle); err != nil {
		return fmt.Errorf("create cycle: %w", err)
	}
	return nil
}

// Upsert inserts the cycle or updates its window and capacity when the ID
// already exists. Enrollment counts are never overwritten. An existing cycle
// cannot shrink below its enrolled count, and its level is fixed once anyone
// is enrolled.
func (r *CycleRepository) Upsert(ctx context.Context, cycle *models.Cycle) (created bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin cycle upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current struct {
		Level    models.Tier `db:"level"`
		Enrolled int         `db:"enrolled_count"`
	}
	lockQuery := "SELECT level, enrolled_count FROM cycles WHERE id = $1" + forUpdate(r.db)
	err = tx.GetContext(ctx, &current, lockQuery, cycle.ID)
	switch {
	case err == sql.ErrNoRows:
		const insertQuery = `INSERT INTO cycles (id, start_date, end_date, level, capacity, enrolled_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 0, $6, $7)`
		if _, err = tx.ExecContext(ctx, insertQuery, cycle.ID, cycle.StartDate, cycle.EndDate, cycle.Level, cycle.Capacity, cycle.CreatedAt, cycle.UpdatedAt); err != nil {
			return false, fmt.Errorf("insert cycle: %w", err)
		}
		cycle.EnrolledCount = 0
		created = true
	case err != nil:
		return false, fmt.Errorf("lock cycle: %w", err)
	default:
		if cycle.Capacity < current.Enrolled {
			err = fmt.Errorf("%w: cycle %s has %d enrolled, capacity %d", ErrCapacityBelowEnrolled, cycle.ID, current.Enrolled, cycle.Capacity)
			return false, err
		}
		if cycle.Level != current.Level && current.Enrolled > 0 {
			err = fmt.Errorf("%w: cycle %s has %d enrolled at %s", ErrCycleLevelLocked, cycle.ID, current.Enrolled, current.Level)
			return false, err
		}
		const updateQuery = `UPDATE cycles SET start_date = $1, end_date = $2, level = $3, capacity = $4, updated_at = $5 WHERE id = $6`
		if _, err = tx.ExecContext(ctx, updateQuery, cycle.StartDate, cycle.EndDate, cycle.Level, cycle.Capacity, cycle.UpdatedAt, cycle.ID); err != nil {
			return false, fmt.Errorf("update cycle: %w", err)
		}
		cycle.EnrolledCount = current.Enrolled
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit cycle upsert: %w", err)
	}
	return created, nil
}

// lockCycle reads a cycle inside tx, holding its row lock where supported.
func lockCycle(ctx context.Context, db *sqlx.DB, tx *sqlx.Tx, id string) (*models.Cycle, error) {
	query := fmt.Sprintf("SELECT %s FROM cycles WHERE id = $1", cycleColumns) + forUpdate(db)
	var cycle models.Cycle
	if err := tx.GetContext(ctx, &cycle, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("lock cycle: %w", err)
	}
	return &cycle, nil
}

func saveCycleCount(ctx context.Context, tx *sqlx.Tx, cycle models.Cycle) error {
	const query = `UPDATE cycles SET enrolled_count = $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, query, cycle.EnrolledCount, cycle.UpdatedAt, cycle.ID); err != nil {
		return fmt.Errorf("update cycle enrollment: %w", err)
	}
	return nil
}

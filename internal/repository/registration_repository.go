package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/program-cycles-api/internal/models"
)

const registrationColumns = `id, name, email, package, answers, status, submitted_at, reviewed_at`

// RegistrationRepository persists applications awaiting review or payment.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create inserts a submitted registration.
func (r *RegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	const query = `INSERT INTO registrations (id, name, email, package, answers, status, submitted_at, reviewed_at)
VALUES (:id, :name, :email, :package, :answers, :status, :submitted_at, :reviewed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// FindByID fetches a registration by identifier.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	query := fmt.Sprintf("SELECT %s FROM registrations WHERE id = $1", registrationColumns)
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, id); err != nil {
		return nil, err
	}
	return &reg, nil
}

// List returns registrations matching the filter, newest first, with the total count.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args), len(args)))
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s FROM registrations%s ORDER BY submitted_at DESC LIMIT %d OFFSET %d",
		registrationColumns, where, size, (page-1)*size)

	var regs []models.Registration
	if err := r.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM registrations"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return regs, total, nil
}

// RegistrationFunc computes the reviewed registration from the locked snapshot.
type RegistrationFunc func(models.Registration) (models.Registration, error)

// Review locks the registration, applies fn and stores the new status. When fn
// fails nothing is written and the locked snapshot is returned with the error.
func (r *RegistrationRepository) Review(ctx context.Context, id string, fn RegistrationFunc) (result *models.Registration, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin registration review: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	current, err := lockRegistration(ctx, r.db, tx, id)
	if err != nil {
		return nil, err
	}

	next, err := fn(*current)
	if err != nil {
		return current, err
	}

	const updateQuery = `UPDATE registrations SET status = $1, reviewed_at = $2 WHERE id = $3`
	if _, err = tx.ExecContext(ctx, updateQuery, next.Status, next.ReviewedAt, next.ID); err != nil {
		return nil, fmt.Errorf("update registration status: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit registration review: %w", err)
	}
	return &next, nil
}

func lockRegistration(ctx context.Context, db *sqlx.DB, tx *sqlx.Tx, id string) (*models.Registration, error) {
	query := fmt.Sprintf("SELECT %s FROM registrations WHERE id = $1", registrationColumns) + forUpdate(db)
	var reg models.Registration
	if err := tx.GetContext(ctx, &reg, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("lock registration: %w", err)
	}
	return &reg, nil
}

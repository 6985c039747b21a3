package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/program-cycles-api/internal/dto"
	"github.com/noah-isme/program-cycles-api/internal/lifecycle"
	"github.com/noah-isme/program-cycles-api/internal/models"
	"github.com/noah-isme/program-cycles-api/internal/repository"
	appErrors "github.com/noah-isme/program-cycles-api/pkg/errors"
)

type registrationStore interface {
	Create(ctx context.Context, reg *models.Registration) error
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error)
	Review(ctx context.Context, id string, fn repository.RegistrationFunc) (*models.Registration, error)
}

// RegistrationService runs the admission workflow ahead of payment.
type RegistrationService struct {
	repo      registrationStore
	validator *validator.Validate
	deps      LifecycleDeps
}

// NewRegistrationService constructs the service.
func NewRegistrationService(repo registrationStore, validate *validator.Validate, deps LifecycleDeps) *RegistrationService {
	return &RegistrationService{repo: repo, validator: newProgramValidator(validate), deps: deps.withDefaults()}
}

// Submit stores a new application awaiting review.
func (s *RegistrationService) Submit(ctx context.Context, req dto.SubmitRegistrationRequest) (*models.Registration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}
	answers := models.Answers(req.Answers)
	if answers == nil {
		answers = models.Answers{}
	}
	reg := &models.Registration{
		ID:          s.deps.NewID(),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Package:     models.PackageOption(strings.ToUpper(req.Package)),
		Answers:     answers,
		Status:      models.RegistrationPendingReview,
		SubmittedAt: s.deps.now(),
	}
	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit registration")
	}
	s.deps.Logger.Info("registration submitted", zap.String("registration_id", reg.ID), zap.String("package", string(reg.Package)))
	if err := s.deps.Cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.deps.Logger.Warn("cache invalidation after submission failed", zap.Error(err))
	}
	return reg, nil
}

// List returns a page of registrations.
func (s *RegistrationService) List(ctx context.Context, req dto.ListRegistrationsRequest) ([]models.Registration, *models.Pagination, error) {
	filter := models.RegistrationFilter{Search: strings.TrimSpace(req.Search)}
	if req.Status != "" {
		filter.Status = models.RegistrationStatus(strings.ToUpper(req.Status))
		if !filter.Status.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid status")
		}
	}
	filter.Page, filter.PageSize = models.NormalizePage(req.Page, req.PageSize)

	regs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	return regs, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get fetches a registration by ID.
func (s *RegistrationService) Get(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	return reg, nil
}

// Approve admits a registration under review; it then awaits payment.
func (s *RegistrationService) Approve(ctx context.Context, id string) (*dto.ReviewResult, error) {
	return s.review(ctx, OpApproveRegistration, id, lifecycle.ApproveRegistration)
}

// Reject closes a registration under review.
func (s *RegistrationService) Reject(ctx context.Context, id string) (*dto.ReviewResult, error) {
	return s.review(ctx, OpRejectRegistration, id, lifecycle.RejectRegistration)
}

func (s *RegistrationService) review(ctx context.Context, op, id string, decide func(models.Registration, time.Time) (models.Registration, error)) (*dto.ReviewResult, error) {
	reg, err := s.repo.Review(ctx, id, func(r models.Registration) (models.Registration, error) {
		return decide(r, s.deps.now())
	})
	if err != nil {
		if lifecycle.IsNoop(err) && reg != nil {
			s.deps.Metrics.RecordTransition(op, OutcomeDeclined)
			reason := appErrors.FromError(err).Message
			s.deps.Logger.Info("registration review declined", zap.String("registration_id", id), zap.String("status", string(reg.Status)))
			return &dto.ReviewResult{Registration: *reg, Applied: false, Reason: reason}, nil
		}
		return nil, s.deps.transitionError(op, err)
	}

	s.deps.Metrics.RecordTransition(op, OutcomeApplied)
	s.deps.Logger.Info("registration reviewed", zap.String("registration_id", reg.ID), zap.String("status", string(reg.Status)))
	if err := s.deps.Cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.deps.Logger.Warn("cache invalidation after review failed", zap.Error(err))
	}
	return &dto.ReviewResult{Registration: *reg, Applied: true}, nil
}

package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/program-cycles-api/internal/dto"
	"github.com/noah-isme/program-cycles-api/internal/lifecycle"
	"github.com/noah-isme/program-cycles-api/internal/models"
	appErrors "github.com/noah-isme/program-cycles-api/pkg/errors"
)

const dashboardOverviewKey = "dashboard:overview"

type participantCounter interface {
	CountByStatus(ctx context.Context, cycleID string) (models.ParticipantStatusCounts, error)
}

type registrationCounter interface {
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error)
}

type cycleLister interface {
	List(ctx context.Context) ([]models.Cycle, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
	Location *time.Location
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Participants  participantCounter
	Registrations registrationCounter
	Cycles        cycleLister
	Cache         *CacheService
	Logger        *zap.Logger
	Config        DashboardServiceConfig
}

// DashboardService composes the coordinator overview.
type DashboardService struct {
	participants  participantCounter
	registrations registrationCounter
	cycles        cycleLister
	cache         *CacheService
	logger        *zap.Logger
	now           func() time.Time
	cfg           DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		participants:  params.Participants,
		registrations: params.Registrations,
		cycles:        params.Cycles,
		cache:         params.Cache,
		logger:        logger,
		now:           time.Now,
		cfg:           cfg,
	}
}

// Overview returns the dashboard summary and whether it came from cache.
func (s *DashboardService) Overview(ctx context.Context) (*dto.ProgramOverview, bool, error) {
	var cached dto.ProgramOverview
	if hit, _ := s.cache.Get(ctx, dashboardOverviewKey, &cached); hit {
		return &cached, true, nil
	}

	counts, err := s.participants.CountByStatus(ctx, "")
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count participants")
	}
	pendingReview, err := s.countRegistrations(ctx, models.RegistrationPendingReview)
	if err != nil {
		return nil, false, err
	}
	pendingPayment, err := s.countRegistrations(ctx, models.RegistrationPendingPayment)
	if err != nil {
		return nil, false, err
	}
	cycles, err := s.cycles.List(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cycles")
	}

	now := s.now()
	open := make([]models.CycleView, 0, len(cycles))
	for _, view := range lifecycle.FilterCycles(cycles, models.CycleFilter{}, now, s.cfg.Location) {
		if view.Status != models.CycleCompleted {
			open = append(open, view)
		}
	}

	overview := &dto.ProgramOverview{
		Participants:   counts,
		PendingReview:  pendingReview,
		PendingPayment: pendingPayment,
		OpenCycles:     open,
		GeneratedAt:    now.UTC(),
	}
	if err := s.cache.Set(ctx, dashboardOverviewKey, overview, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return overview, false, nil
}

func (s *DashboardService) countRegistrations(ctx context.Context, status models.RegistrationStatus) (int, error) {
	_, total, err := s.registrations.List(ctx, models.RegistrationFilter{Status: status, Page: 1, PageSize: 1})
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count registrations")
	}
	return total, nil
}

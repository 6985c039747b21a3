package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/program-cycles-api/internal/dto"
	"github.com/noah-isme/program-cycles-api/internal/lifecycle"
	"github.com/noah-isme/program-cycles-api/internal/models"
	"github.com/noah-isme/program-cycles-api/internal/repository"
	appErrors "github.com/noah-isme/program-cycles-api/pkg/errors"
)

const calendarCacheKey = "calendar:cycles"

type cycleStore interface {
	List(ctx context.Context) ([]models.Cycle, error)
	FindByID(ctx context.Context, id string) (*models.Cycle, error)
	Create(ctx context.Context, cycle *models.Cycle) error
	Upsert(ctx context.Context, cycle *models.Cycle) (bool, error)
}

// CycleServiceConfig tunes calendar behaviour.
type CycleServiceConfig struct {
	CacheTTL time.Duration
	Location *time.Location
}

// CycleService manages the cycle catalog and calendar queries.
type CycleService struct {
	repo      cycleStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
	cfg       CycleServiceConfig
}

// NewCycleService constructs the service.
func NewCycleService(repo cycleStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg CycleServiceConfig) *CycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &CycleService{
		repo:      repo,
		cache:     cache,
		validator: newProgramValidator(validate),
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
		cfg:       cfg,
	}
}

// Create schedules a single cycle.
func (s *CycleService) Create(ctx context.Context, req dto.CreateCycleRequest) (*models.Cycle, error) {
	cycle, err := s.build(req, s.newID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, cycle); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create cycle")
	}
	s.logger.Info("cycle created", zap.String("cycle_id", cycle.ID), zap.String("level", string(cycle.Level)), zap.Time("start_date", cycle.StartDate))
	s.invalidate(ctx)
	return cycle, nil
}

// Import upserts a batch of catalog entries. Entries without an ID get a
// stable one derived from level and start date so re-imports update in place.
// The batch is validated up front; nothing is written if any entry is invalid.
func (s *CycleService) Import(ctx context.Context, entries []dto.CreateCycleRequest) (*dto.CatalogImportResult, error) {
	cycles := make([]*models.Cycle, 0, len(entries))
	seen := make(map[string]int, len(entries))
	for i, entry := range entries {
		cycle, err := s.build(entry, func() string { return catalogID(entry) })
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("catalog entry %d: %s", i+1, appErrors.FromError(err).Message))
		}
		if prev, dup := seen[cycle.ID]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("catalog entries %d and %d share id %s", prev+1, i+1, cycle.ID))
		}
		seen[cycle.ID] = i
		cycles = append(cycles, cycle)
	}

	result := &dto.CatalogImportResult{Cycles: make([]models.Cycle, 0, len(cycles))}
	for _, cycle := range cycles {
		created, err := s.repo.Upsert(ctx, cycle)
		if err != nil {
			return nil, s.importError(cycle, err)
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
		result.Cycles = append(result.Cycles, *cycle)
	}
	s.logger.Info("cycle catalog imported", zap.Int("created", result.Created), zap.Int("updated", result.Updated))
	s.invalidate(ctx)
	return result, nil
}

func (s *CycleService) importError(cycle *models.Cycle, err error) error {
	switch {
	case errors.Is(err, repository.ErrCapacityBelowEnrolled):
		s.logger.Warn("catalog import refused", zap.String("cycle_id", cycle.ID), zap.Int("capacity", cycle.Capacity), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrCapacityExceeded.Code, appErrors.ErrCapacityExceeded.Status, "cycle "+cycle.ID+" capacity is below its enrolled count")
	case errors.Is(err, repository.ErrCycleLevelLocked):
		s.logger.Warn("catalog import refused", zap.String("cycle_id", cycle.ID), zap.String("level", string(cycle.Level)), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "cycle "+cycle.ID+" level cannot change while participants are enrolled")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import cycle "+cycle.ID)
}

// List returns calendar views matching the request.
func (s *CycleService) List(ctx context.Context, req dto.ListCyclesRequest) ([]models.CycleView, error) {
	filter, err := parseCycleFilter(req)
	if err != nil {
		return nil, err
	}
	cycles, err := s.allCycles(ctx)
	if err != nil {
		return nil, err
	}
	return lifecycle.FilterCycles(cycles, filter, s.now(), s.cfg.Location), nil
}

// Get returns a single cycle view.
func (s *CycleService) Get(ctx context.Context, id string) (*models.CycleView, error) {
	cycle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cycle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cycle")
	}
	view := lifecycle.View(*cycle, s.now(), s.cfg.Location)
	return &view, nil
}

// Packages lists the purchasable packages with their entry tier.
func (s *CycleService) Packages() []dto.PackageOptionView {
	options := []models.PackageOption{
		models.PackageInicial,
		models.PackageAvanzado,
		models.PackageProgramaLider,
		models.PackageComboInicialAvanzado,
		models.PackageFullExperience,
	}
	views := make([]dto.PackageOptionView, 0, len(options))
	for _, option := range options {
		views = append(views, dto.PackageOptionView{Package: option, Tiers: option.Tiers(), EntryTier: option.EntryTier()})
	}
	return views
}

func (s *CycleService) allCycles(ctx context.Context) ([]models.Cycle, error) {
	var cached []models.Cycle
	if hit, _ := s.cache.Get(ctx, calendarCacheKey, &cached); hit {
		return cached, nil
	}
	cycles, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cycles")
	}
	_ = s.cache.Set(ctx, calendarCacheKey, cycles, s.cfg.CacheTTL)
	return cycles, nil
}

func (s *CycleService) build(req dto.CreateCycleRequest, id func() string) (*models.Cycle, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
	}
	cycleID := strings.TrimSpace(req.ID)
	if cycleID == "" {
		cycleID = id()
	}
	cycle, err := lifecycle.NewCycle(cycleID, start, models.Tier(strings.ToUpper(req.Level)), req.Capacity, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return &cycle, nil
}

func (s *CycleService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, calendarCachePattern, dashboardCachePattern); err != nil {
		s.logger.Warn("cache invalidation after catalog change failed", zap.Error(err))
	}
}

const dateLayout = "2006-01-02"

func catalogID(req dto.CreateCycleRequest) string {
	if id := strings.TrimSpace(req.ID); id != "" {
		return id
	}
	return strings.ToLower(strings.ReplaceAll(req.Level, "_", "-")) + "-" + req.StartDate
}

func parseCycleFilter(req dto.ListCyclesRequest) (models.CycleFilter, error) {
	filter := models.CycleFilter{Search: req.Search}
	if req.Level != "" {
		filter.Level = models.Tier(strings.ToUpper(req.Level))
		if !filter.Level.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid level")
		}
	}
	if req.Status != "" {
		filter.Status = models.CycleStatus(strings.ToUpper(req.Status))
		if !filter.Status.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid status")
		}
	}
	if req.From != "" {
		from, err := time.Parse(dateLayout, req.From)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD")
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse(dateLayout, req.To)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "to must be YYYY-MM-DD")
		}
		filter.To = &to
	}
	return filter, nil
}

// Package app assembles repositories and services from configuration so the
// HTTP server and the operator CLI share one wiring.
package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/program-cycles-api/internal/catalog"
	"github.com/noah-isme/program-cycles-api/internal/handler"
	"github.com/noah-isme/program-cycles-api/internal/lifecycle"
	"github.com/noah-isme/program-cycles-api/internal/repository"
	"github.com/noah-isme/program-cycles-api/internal/service"
	"github.com/noah-isme/program-cycles-api/pkg/cache"
	"github.com/noah-isme/program-cycles-api/pkg/config"
	"github.com/noah-isme/program-cycles-api/pkg/database"
	"github.com/noah-isme/program-cycles-api/pkg/events"
)

const cacheNamespace = "program"

// Services holds every domain service.
type Services struct {
	Registrations *service.RegistrationService
	Enrollments   *service.EnrollmentService
	Participants  *service.ParticipantService
	Attendance    *service.AttendanceService
	Progression   *service.ProgressionService
	Cycles        *service.CycleService
	Dashboard     *service.DashboardService
	Exports       *service.ExportService
}

// App owns the process-wide resources.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *sqlx.DB
	Cache    *repository.CacheRepository
	Events   events.Publisher
	Metrics  *service.MetricsService
	Services Services
}

// New opens the database, applies migrations when configured, connects the
// optional Redis cache and event publisher, and builds the services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(db)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("database migrated", zap.String("driver", db.DriverName()), zap.Int("applied", applied))
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Cache:   repository.NewCacheRepository(redisClient, cacheNamespace, logger),
		Events:  events.NewFromConfig(cfg.Events, logger),
		Metrics: service.NewMetricsService(),
	}
	a.Services = a.buildServices(redisClient != nil)
	return a, nil
}

func (a *App) buildServices(cacheEnabled bool) Services {
	cfg := a.Config
	loc := cfg.Program.Location()
	validate := validator.New()

	cycles := repository.NewCycleRepository(a.DB)
	registrations := repository.NewRegistrationRepository(a.DB)
	participants := repository.NewParticipantRepository(a.DB)
	enrollments := repository.NewEnrollmentRepository(a.DB)

	cacheSvc := service.NewCacheService(a.Cache, a.Metrics, cfg.Dashboard.CacheTTL, a.Logger, cacheEnabled && cfg.Dashboard.CacheEnabled)
	deps := service.LifecycleDeps{
		Events:  a.Events,
		Cache:   cacheSvc,
		Metrics: a.Metrics,
		Logger:  a.Logger,
		Ledger:  lifecycle.Ledger{EnforceCapacity: cfg.Program.EnforceCapacity},
	}

	return Services{
		Registrations: service.NewRegistrationService(registrations, validate, deps),
		Enrollments:   service.NewEnrollmentService(enrollments, validate, deps),
		Participants:  service.NewParticipantService(participants, a.Logger),
		Attendance:    service.NewAttendanceService(participants, validate, deps),
		Progression:   service.NewProgressionService(participants, deps),
		Cycles: service.NewCycleService(cycles, cacheSvc, validate, a.Logger, service.CycleServiceConfig{
			CacheTTL: cfg.Calendar.CacheTTL,
			Location: loc,
		}),
		Dashboard: service.NewDashboardService(service.DashboardServiceParams{
			Participants:  participants,
			Registrations: registrations,
			Cycles:        cycles,
			Cache:         cacheSvc,
			Logger:        a.Logger,
			Config:        service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL, Location: loc},
		}),
		Exports: service.NewExportService(participants, cycles, validate, a.Logger, nil, nil),
	}
}

// Handlers builds the HTTP handlers over the services.
func (a *App) Handlers() handler.Handlers {
	s := a.Services
	return handler.Handlers{
		Registrations: handler.NewRegistrationHandler(s.Registrations, s.Enrollments),
		Participants:  handler.NewParticipantHandler(s.Participants, s.Attendance, s.Progression),
		Cycles:        handler.NewCycleHandler(s.Cycles),
		Dashboard:     handler.NewDashboardHandler(s.Dashboard),
		Exports:       handler.NewExportHandler(s.Exports),
	}
}

// ReadinessChecks probes the database, and Redis when it is configured.
func (a *App) ReadinessChecks() map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"database": a.DB.PingContext,
	}
	if a.Config.Redis.Enabled {
		checks["redis"] = a.Cache.Ping
	}
	return checks
}

// ImportCatalogFile loads a YAML catalog and upserts its cycles.
func (a *App) ImportCatalogFile(ctx context.Context, path string) error {
	entries, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}
	result, err := a.Services.Cycles.Import(ctx, entries)
	if err != nil {
		return err
	}
	a.Logger.Info("catalog file imported", zap.String("path", path), zap.Int("created", result.Created), zap.Int("updated", result.Updated))
	return nil
}

// Close releases the publisher, cache and database in that order.
func (a *App) Close() {
	if closer, ok := a.Events.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.Logger.Warn("close event publisher", zap.Error(err))
		}
	}
	if err := a.Cache.Close(); err != nil {
		a.Logger.Warn("close cache", zap.Error(err))
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Warn("close database", zap.Error(err))
	}
}

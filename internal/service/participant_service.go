package service

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/program-cycles-api/internal/dto"
	"github.com/noah-isme/program-cycles-api/internal/models"
	appErrors "github.com/noah-isme/program-cycles-api/pkg/errors"
)

type participantReader interface {
	List(ctx context.Context, filter models.ParticipantFilter) ([]models.Participant, int, error)
	FindByID(ctx context.Context, id string) (*models.Participant, error)
}

// ParticipantService exposes read access to enrolled participants.
type ParticipantService struct {
	repo   participantReader
	logger *zap.Logger
}

// NewParticipantService constructs the service.
func NewParticipantService(repo participantReader, logger *zap.Logger) *ParticipantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParticipantService{repo: repo, logger: logger}
}

// List returns a page of participants.
func (s *ParticipantService) List(ctx context.Context, req dto.ListParticipantsRequest) ([]models.Participant, *models.Pagination, error) {
	filter := models.ParticipantFilter{
		CycleID: strings.TrimSpace(req.CycleID),
		Search:  strings.TrimSpace(req.Search),
	}
	if req.Tier != "" {
		filter.Tier = models.Tier(strings.ToUpper(req.Tier))
		if !filter.Tier.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid tier")
		}
	}
	if req.Status != "" {
		filter.Status = models.ParticipantStatus(strings.ToUpper(req.Status))
		if !filter.Status.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid status")
		}
	}
	filter.Page, filter.PageSize = models.NormalizePage(req.Page, req.PageSize)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list participants")
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get fetches a participant by ID.
func (s *ParticipantService) Get(ctx context.Context, id string) (*models.Participant, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "participant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load participant")
	}
	return p, nil
}

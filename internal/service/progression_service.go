package service

import (
	"context"
	"strings"

	"github.com/noah-isme/program-cycles-api/internal/dto"
	"github.com/noah-isme/program-cycles-api/internal/lifecycle"
	"github.com/noah-isme/program-cycles-api/internal/models"
)

// ProgressionService moves participants between attempts and tiers.
type ProgressionService struct {
	store participantMutator
	deps  LifecycleDeps
}

// NewProgressionService constructs the progression service.
func NewProgressionService(store participantMutator, deps LifecycleDeps) *ProgressionService {
	return &ProgressionService{store: store, deps: deps.withDefaults()}
}

// Reschedule restarts the participant's current cycle from day one.
func (s *ProgressionService) Reschedule(ctx context.Context, participantID string) (*dto.TransitionResult, error) {
	return s.deps.runTransition(ctx, s.store, OpReschedule, participantID, "", func(p models.Participant, _ *models.Cycle) (models.Participant, *models.Cycle, error) {
		next, err := lifecycle.Reschedule(p)
		return next, nil, err
	})
}

// Promote advances a graduated participant to the next tier, optionally
// moving them into a cycle of that tier.
func (s *ProgressionService) Promote(ctx context.Context, participantID string, req dto.PromoteRequest) (*dto.TransitionResult, error) {
	target := strings.TrimSpace(req.CycleID)
	return s.deps.runTransition(ctx, s.store, OpPromote, participantID, target, func(p models.Participant, cycle *models.Cycle) (models.Participant, *models.Cycle, error) {
		return lifecycle.Promote(p, cycle, s.deps.Ledger)
	})
}

// Drop withdraws the participant for good.
func (s *ProgressionService) Drop(ctx context.Context, participantID string) (*dto.TransitionResult, error) {
	return s.deps.runTransition(ctx, s.store, OpDrop, participantID, "", func(p models.Participant, _ *models.Cycle) (models.Participant, *models.Cycle, error) {
		next, err := lifecycle.Drop(p)
		return next, nil, err
	})
}

package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/program-cycles-api/internal/dto"
	"github.com/noah-isme/program-cycles-api/internal/lifecycle"
	"github.com/noah-isme/program-cycles-api/internal/models"
	"github.com/noah-isme/program-cycles-api/internal/repository"
	appErrors "github.com/noah-isme/program-cycles-api/pkg/errors"
	"github.com/noah-isme/program-cycles-api/pkg/events"
)

type enrollmentStore interface {
	Convert(ctx context.Context, registrationID, cycleID string, fn repository.ConvertFunc) (*models.Registration, *models.Participant, *models.Cycle, error)
}

// EnrollmentService converts paid registrations into participants.
type EnrollmentService struct {
	repo      enrollmentStore
	validator *validator.Validate
	deps      LifecycleDeps
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(repo enrollmentStore, validate *validator.Validate, deps LifecycleDeps) *EnrollmentService {
	return &EnrollmentService{repo: repo, validator: newProgramValidator(validate), deps: deps.withDefaults()}
}

// ConfirmPayment enrolls the registration into the requested cycle. The
// registration is consumed; a repeated call reports it as not found.
func (s *EnrollmentService) ConfirmPayment(ctx context.Context, registrationID string, req dto.ConfirmPaymentRequest) (*dto.EnrollmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}
	tier := models.Tier(strings.ToUpper(req.Tier))
	participantID := s.deps.NewID()

	reg, participant, cycle, err := s.repo.Convert(ctx, registrationID, strings.TrimSpace(req.CycleID), func(r models.Registration, c models.Cycle) (models.Participant, models.Cycle, error) {
		conv, err := lifecycle.ConfirmPayment(r, c, tier, participantID, s.deps.Ledger, s.deps.now())
		if err != nil {
			return models.Participant{}, models.Cycle{}, err
		}
		return conv.Participant, conv.Cycle, nil
	})
	if err != nil {
		if lifecycle.IsNoop(err) && reg != nil {
			s.deps.Metrics.RecordTransition(OpConfirmPayment, OutcomeDeclined)
			reason := appErrors.FromError(err).Message
			s.deps.Logger.Info("payment confirmation declined", zap.String("registration_id", registrationID), zap.String("status", string(reg.Status)))
			return &dto.EnrollmentResult{Registration: reg, Applied: false, Reason: reason}, nil
		}
		return nil, s.deps.transitionError(OpConfirmPayment, err)
	}

	s.deps.Metrics.RecordTransition(OpConfirmPayment, OutcomeApplied)
	s.deps.Logger.Info("participant enrolled",
		zap.String("registration_id", registrationID),
		zap.String("participant_id", participant.ID),
		zap.Int64("pl", participant.Sequence),
		zap.String("cycle_id", cycle.ID),
		zap.Int("enrolled", cycle.EnrolledCount))
	s.deps.afterCommit(ctx, events.ParticipantEnrolled, *participant)
	return &dto.EnrollmentResult{Participant: participant, Cycle: cycle, Applied: true}, nil
}

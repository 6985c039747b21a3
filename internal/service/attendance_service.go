package service

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/program-cycles-api/internal/dto"
	"github.com/noah-isme/program-cycles-api/internal/lifecycle"
	"github.com/noah-isme/program-cycles-api/internal/models"
)

// AttendanceService records the four program days of a participant.
type AttendanceService struct {
	store     participantMutator
	validator *validator.Validate
	deps      LifecycleDeps
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(store participantMutator, validate *validator.Validate, deps LifecycleDeps) *AttendanceService {
	return &AttendanceService{store: store, validator: newProgramValidator(validate), deps: deps.withDefaults()}
}

// Toggle flips one day of the participant's attendance record.
func (s *AttendanceService) Toggle(ctx context.Context, participantID string, req dto.ToggleAttendanceRequest) (*dto.TransitionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err)
	}
	day := *req.Day
	return s.deps.runTransition(ctx, s.store, OpToggleAttendance, participantID, "", func(p models.Participant, _ *models.Cycle) (models.Participant, *models.Cycle, error) {
		next, err := lifecycle.ToggleAttendance(p, day)
		return next, nil, err
	})
}

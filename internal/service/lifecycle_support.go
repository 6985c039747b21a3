package service

import (
	"context"
	"errors"
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
	"github.com/noah-isme/program-cycles-api/pkg/events"
)

// Operation labels used in logs and metrics.
const (
	OpApproveRegistration = "approve_registration"
	OpRejectRegistration  = "reject_registration"
	OpConfirmPayment      = "confirm_payment"
	OpToggleAttendance    = "toggle_attendance"
	OpReschedule          = "reschedule"
	OpPromote             = "promote"
	OpDrop                = "drop"
)

// LifecycleDeps are the collaborators shared by every service that mutates
// participants or registrations.
type LifecycleDeps struct {
	Events  events.Publisher
	Cache   *CacheService
	Metrics *MetricsService
	Logger  *zap.Logger
	Ledger  lifecycle.Ledger
	Now     func() time.Time
	NewID   func() string
}

func (d LifecycleDeps) withDefaults() LifecycleDeps {
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	return d
}

func (d LifecycleDeps) now() time.Time {
	return d.Now().UTC()
}

// afterCommit publishes the event and drops derived caches. Neither failure
// affects the committed transition.
func (d LifecycleDeps) afterCommit(ctx context.Context, eventType string, p models.Participant) {
	if err := d.Cache.Invalidate(ctx, dashboardCachePattern, calendarCachePattern); err != nil {
		d.Logger.Warn("cache invalidation after transition failed", zap.String("participant_id", p.ID), zap.Error(err))
	}
	if eventType == "" {
		return
	}
	event := events.Event{
		Type:          eventType,
		ParticipantID: p.ID,
		CycleID:       p.CycleID,
		Tier:          string(p.CurrentTier),
		Status:        string(p.Status()),
		OccurredAt:    p.UpdatedAt,
	}
	if err := d.Events.Publish(ctx, event); err != nil {
		d.Logger.Warn("publish lifecycle event failed", zap.String("event", eventType), zap.String("participant_id", p.ID), zap.Error(err))
	}
}

type participantMutator interface {
	Mutate(ctx context.Context, id, targetCycleID string, fn repository.MutateFunc) (*models.Participant, error)
}

// transitionFunc is a pure participant transition bound to its arguments.
type transitionFunc func(p models.Participant, target *models.Cycle) (models.Participant, *models.Cycle, error)

// runTransition executes fn under the participant lock and shapes the result.
// Precondition failures come back as an unapplied result, not an error.
func (d LifecycleDeps) runTransition(ctx context.Context, store participantMutator, op, participantID, targetCycleID string, fn transitionFunc) (*dto.TransitionResult, error) {
	var before models.Participant
	updated, err := store.Mutate(ctx, participantID, targetCycleID, func(p models.Participant, target *models.Cycle) (models.Participant, *models.Cycle, error) {
		before = p
		next, cycle, err := fn(p, target)
		if err != nil {
			return p, nil, err
		}
		stamp := d.now()
		next.UpdatedAt = stamp
		if cycle != nil {
			cycle.UpdatedAt = stamp
		}
		return next, cycle, nil
	})
	if err != nil {
		if lifecycle.IsNoop(err) && updated != nil {
			reason := appErrors.FromError(err).Message
			d.Metrics.RecordTransition(op, OutcomeDeclined)
			d.Logger.Info("transition declined",
				zap.String("operation", op),
				zap.String("participant_id", participantID),
				zap.String("status", string(updated.Status())),
				zap.String("reason", reason))
			return &dto.TransitionResult{Participant: *updated, Applied: false, Reason: reason}, nil
		}
		return nil, d.transitionError(op, err)
	}

	d.Metrics.RecordTransition(op, OutcomeApplied)
	eventType := transitionEvent(op, before, *updated)
	d.Logger.Info("participant transition applied",
		zap.String("operation", op),
		zap.String("participant_id", updated.ID),
		zap.String("from", string(before.Status())),
		zap.String("to", string(updated.Status())),
		zap.Int("progress", updated.Progress()))
	d.afterCommit(ctx, eventType, *updated)
	return &dto.TransitionResult{Participant: *updated, Applied: true}, nil
}

func (d LifecycleDeps) transitionError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrParticipantNotFound):
		d.Metrics.RecordTransition(op, OutcomeRejected)
		return appErrors.Clone(appErrors.ErrNotFound, "participant not found")
	case errors.Is(err, repository.ErrRegistrationNotFound):
		d.Metrics.RecordTransition(op, OutcomeRejected)
		return appErrors.Clone(appErrors.ErrNotFound, "registration not found")
	case errors.Is(err, repository.ErrCycleNotFound):
		d.Metrics.RecordTransition(op, OutcomeRejected)
		return appErrors.Clone(appErrors.ErrNotFound, "cycle not found")
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		d.Metrics.RecordTransition(op, OutcomeRejected)
		return appErr
	}
	d.Metrics.RecordTransition(op, OutcomeError)
	d.Logger.Error("transition failed", zap.String("operation", op), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to "+strings.ReplaceAll(op, "_", " "))
}

// transitionEvent picks the event to publish for a committed transition.
func transitionEvent(op string, before, after models.Participant) string {
	switch op {
	case OpReschedule:
		return events.ParticipantRescheduled
	case OpPromote:
		return events.ParticipantPromoted
	case OpDrop:
		return events.ParticipantDropped
	case OpToggleAttendance:
		if before.Status() == after.Status() {
			return ""
		}
		switch after.Status() {
		case models.ParticipantConflict:
			return events.ParticipantConflict
		case models.ParticipantGraduated:
			return events.ParticipantGraduated
		}
	}
	return ""
}

// newProgramValidator registers the tier and package rules used by request DTOs.
func newProgramValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		v = validator.New()
	}
	_ = v.RegisterValidation("tier", func(fl validator.FieldLevel) bool {
		return models.Tier(strings.ToUpper(fl.Field().String())).Valid()
	})
	_ = v.RegisterValidation("package_option", func(fl validator.FieldLevel) bool {
		return models.PackageOption(strings.ToUpper(fl.Field().String())).Valid()
	})
	return v
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}

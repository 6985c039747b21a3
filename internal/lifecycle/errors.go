package lifecycle

import appErrors "github.com/noah-isme/program-cycles-api/pkg/errors"

// Precondition failures leave the entity unchanged.
var (
	ErrAttendanceLocked  = appErrors.Clone(appErrors.ErrPreconditionFailed, "attendance is locked for the participant's status")
	ErrOutOfSequence     = appErrors.Clone(appErrors.ErrPreconditionFailed, "previous day must be attended first")
	ErrNotGraduated      = appErrors.Clone(appErrors.ErrPreconditionFailed, "participant has not graduated")
	ErrFinalTier         = appErrors.Clone(appErrors.ErrPreconditionFailed, "participant is already at the final tier")
	ErrDropped           = appErrors.Clone(appErrors.ErrPreconditionFailed, "participant was dropped")
	ErrNotPendingReview  = appErrors.Clone(appErrors.ErrPreconditionFailed, "registration is not pending review")
	ErrNotPendingPayment = appErrors.Clone(appErrors.ErrPreconditionFailed, "registration is not pending payment")
)

// Rejections that are not status preconditions.
var (
	ErrCycleFull       = appErrors.Clone(appErrors.ErrCapacityExceeded, "cycle is at capacity")
	ErrDayOutOfRange   = appErrors.Clone(appErrors.ErrValidation, "day index must be between 0 and 3")
	ErrUnknownTier     = appErrors.Clone(appErrors.ErrValidation, "unknown tier")
	ErrTierMismatch    = appErrors.Clone(appErrors.ErrValidation, "cycle level does not match the tier")
	ErrNotThursday     = appErrors.Clone(appErrors.ErrValidation, "cycles start on a Thursday")
	ErrInvalidCapacity = appErrors.Clone(appErrors.ErrValidation, "capacity must be positive")
)

// IsNoop reports whether err is a precondition failure, i.e. the transition
// was declined and the entity left as it was.
func IsNoop(err error) bool {
	return appErrors.Is(err, appErrors.ErrPreconditionFailed)
}

package lifecycle

import "github.com/noah-isme/program-cycles-api/internal/models"

var ladder = []models.Tier{models.TierInicial, models.TierAvanzado, models.TierProgramaLider}

// NextTier returns the tier after t. ok is false at the top of the ladder or
// for an unknown tier.
func NextTier(t models.Tier) (next models.Tier, ok bool) {
	for i, tier := range ladder {
		if tier == t && i+1 < len(ladder) {
			return ladder[i+1], true
		}
	}
	return t, false
}

// Reschedule restarts the current cycle: attendance cleared, hold lifted.
// Cycle and tier are kept. Rescheduling an already clean participant is a no-op.
func Reschedule(p models.Participant) (models.Participant, error) {
	if p.Status() == models.ParticipantDropped {
		return p, ErrDropped
	}
	p.Attendance = models.Attendance{}
	p.Hold = models.HoldNone
	return p, nil
}

// Promote advances a graduated participant one tier and resets attendance.
// When target is non-nil the participant is rebound to it; the target must
// run the next tier and is registered in the ledger. The updated target is
// returned.
func Promote(p models.Participant, target *models.Cycle, ledger Ledger) (models.Participant, *models.Cycle, error) {
	switch p.Status() {
	case models.ParticipantDropped:
		return p, nil, ErrDropped
	case models.ParticipantGraduated:
	default:
		return p, nil, ErrNotGraduated
	}
	if p.NextTierLocked() {
		return p, nil, ErrNotGraduated
	}
	next, ok := NextTier(p.CurrentTier)
	if !ok {
		return p, nil, ErrFinalTier
	}

	var rebound *models.Cycle
	if target != nil {
		if target.Level != next {
			return p, nil, ErrTierMismatch
		}
		registered, err := ledger.Register(*target)
		if err != nil {
			return p, nil, err
		}
		rebound = &registered
		p.CycleID = registered.ID
	}

	p.CurrentTier = next
	p.Attendance = models.Attendance{}
	p.Hold = models.HoldNone
	return p, rebound, nil
}

// Drop moves a participant to the terminal DROPPED state.
func Drop(p models.Participant) (models.Participant, error) {
	if p.Status() == models.ParticipantDropped {
		return p, ErrDropped
	}
	p.Hold = models.HoldDropped
	return p, nil
}

package lifecycle

import (
	"time"

	"github.com/noah-isme/program-cycles-api/internal/models"
)

// ApproveRegistration admits a reviewed application; it then waits for payment.
func ApproveRegistration(r models.Registration, now time.Time) (models.Registration, error) {
	if r.Status != models.RegistrationPendingReview {
		return r, ErrNotPendingReview
	}
	r.Status = models.RegistrationPendingPayment
	r.ReviewedAt = &now
	return r, nil
}

// RejectRegistration closes an application under review.
func RejectRegistration(r models.Registration, now time.Time) (models.Registration, error) {
	if r.Status != models.RegistrationPendingReview {
		return r, ErrNotPendingReview
	}
	r.Status = models.RegistrationRejected
	r.ReviewedAt = &now
	return r, nil
}

// Conversion is the outcome of a confirmed payment.
type Conversion struct {
	Participant models.Participant
	Cycle       models.Cycle
}

// ConfirmPayment converts an approved registration into a participant of
// cycle. An empty tier defaults to the entry tier of the purchased package,
// and the cycle must run that tier. The participant sequence is left zero for
// storage to allocate.
func ConfirmPayment(r models.Registration, cycle models.Cycle, tier models.Tier, id string, ledger Ledger, now time.Time) (Conversion, error) {
	if r.Status != models.RegistrationPendingPayment {
		return Conversion{}, ErrNotPendingPayment
	}
	if tier == "" {
		tier = r.Package.EntryTier()
	}
	if !tier.Valid() {
		return Conversion{}, ErrUnknownTier
	}
	if cycle.Level != tier {
		return Conversion{}, ErrTierMismatch
	}

	registered, err := ledger.Register(cycle)
	if err != nil {
		return Conversion{}, err
	}
	registered.UpdatedAt = now

	return Conversion{
		Participant: models.Participant{
			ID:               id,
			RegistrationID:   r.ID,
			Name:             r.Name,
			Email:            r.Email,
			CycleID:          registered.ID,
			CurrentTier:      tier,
			PurchasedPackage: r.Package,
			Hold:             models.HoldNone,
			EnrolledAt:       now,
			UpdatedAt:        now,
		},
		Cycle: registered,
	}, nil
}

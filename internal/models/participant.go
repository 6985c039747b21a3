package models

import (
	"encoding/json"
	"time"
)

// ParticipantStatus is the externally visible lifecycle state.
type ParticipantStatus string

const (
	ParticipantActive    ParticipantStatus = "ACTIVE"
	ParticipantConflict  ParticipantStatus = "CONFLICT"
	ParticipantGraduated ParticipantStatus = "GRADUATED"
	ParticipantDropped   ParticipantStatus = "DROPPED"
)

// Valid returns true when the status is a supported value.
func (s ParticipantStatus) Valid() bool {
	switch s {
	case ParticipantActive, ParticipantConflict, ParticipantGraduated, ParticipantDropped:
		return true
	default:
		return false
	}
}

// ParticipantHold is the only persisted piece of status: the states that
// cannot be read off the attendance record.
type ParticipantHold string

const (
	HoldNone     ParticipantHold = ""
	HoldConflict ParticipantHold = "CONFLICT"
	HoldDropped  ParticipantHold = "DROPPED"
)

// Participant is an enrolled, paying member of a cycle.
type Participant struct {
	ID               string          `db:"id"`
	Sequence         int64           `db:"sequence"`
	RegistrationID   string          `db:"registration_id"`
	Name             string          `db:"name"`
	Email            string          `db:"email"`
	CycleID          string          `db:"cycle_id"`
	CurrentTier      Tier            `db:"current_tier"`
	PurchasedPackage PackageOption   `db:"purchased_package"`
	Hold             ParticipantHold `db:"hold"`
	Attendance       Attendance      `db:"attendance"`
	EnrolledAt       time.Time       `db:"enrolled_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// Status derives the lifecycle state from the hold flag and attendance.
func (p Participant) Status() ParticipantStatus {
	switch {
	case p.Hold == HoldDropped:
		return ParticipantDropped
	case p.Hold == HoldConflict:
		return ParticipantConflict
	case p.Attendance.Full():
		return ParticipantGraduated
	default:
		return ParticipantActive
	}
}

// Progress is the attended share of the cycle as a percentage.
func (p Participant) Progress() int {
	return p.Attendance.Count() * 100 / CycleLength
}

// NextTierLocked reports whether promotion is still gated.
func (p Participant) NextTierLocked() bool {
	return p.Status() != ParticipantGraduated
}

type participantJSON struct {
	ID               string            `json:"id"`
	Sequence         int64             `json:"pl"`
	RegistrationID   string            `json:"registrationId"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	CycleID          string            `json:"cycleId"`
	CurrentTier      Tier              `json:"currentPackage"`
	PurchasedPackage PackageOption     `json:"purchasedPackage"`
	Status           ParticipantStatus `json:"status"`
	Attendance       Attendance        `json:"attendance"`
	Progress         int               `json:"progress"`
	NextTierLocked   bool              `json:"nextPackageLocked"`
	EnrolledAt       time.Time         `json:"enrolledAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// MarshalJSON renders derived fields alongside the stored ones.
func (p Participant) MarshalJSON() ([]byte, error) {
	return json.Marshal(participantJSON{
		ID:               p.ID,
		Sequence:         p.Sequence,
		RegistrationID:   p.RegistrationID,
		Name:             p.Name,
		Email:            p.Email,
		CycleID:          p.CycleID,
		CurrentTier:      p.CurrentTier,
		PurchasedPackage: p.PurchasedPackage,
		Status:           p.Status(),
		Attendance:       p.Attendance,
		Progress:         p.Progress(),
		NextTierLocked:   p.NextTierLocked(),
		EnrolledAt:       p.EnrolledAt,
		UpdatedAt:        p.UpdatedAt,
	})
}

// ParticipantFilter scopes listing queries.
type ParticipantFilter struct {
	CycleID  string
	Tier     Tier
	Status   ParticipantStatus
	Search   string
	Page     int
	PageSize int
}

// ParticipantStatusCounts aggregates participants per derived status.
type ParticipantStatusCounts struct {
	Active    int `db:"active" json:"active"`
	Conflict  int `db:"conflict" json:"conflict"`
	Graduated int `db:"graduated" json:"graduated"`
	Dropped   int `db:"dropped" json:"dropped"`
}

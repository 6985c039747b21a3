package models

import "time"

// CycleStatus is derived from the calendar, never stored.
type CycleStatus string

const (
	CycleUpcoming   CycleStatus = "UPCOMING"
	CycleInProgress CycleStatus = "IN_PROGRESS"
	CycleCompleted  CycleStatus = "COMPLETED"
)

// Valid returns true when the status is a supported value.
func (s CycleStatus) Valid() bool {
	switch s {
	case CycleUpcoming, CycleInProgress, CycleCompleted:
		return true
	default:
		return false
	}
}

// CycleLength is the number of program days in a cycle, Thursday through Sunday.
const CycleLength = 4

// Cycle is a four-day offering of one tier with bounded seats.
type Cycle struct {
	ID            string    `db:"id" json:"id"`
	StartDate     time.Time `db:"start_date" json:"startDate"`
	EndDate       time.Time `db:"end_date" json:"endDate"`
	Level         Tier      `db:"level" json:"level"`
	Capacity      int       `db:"capacity" json:"capacity"`
	EnrolledCount int       `db:"enrolled_count" json:"enrolledCount"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// SeatsLeft returns the remaining capacity, never negative.
func (c Cycle) SeatsLeft() int {
	if c.EnrolledCount >= c.Capacity {
		return 0
	}
	return c.Capacity - c.EnrolledCount
}

// CycleFilter constrains calendar listings.
type CycleFilter struct {
	Search string
	Level  Tier
	Status CycleStatus
	From   *time.Time
	To     *time.Time
}

// CycleView is a cycle together with its calendar-derived fields.
type CycleView struct {
	Cycle
	Status    CycleStatus `json:"status"`
	Month     string      `json:"month"`
	Year      int         `json:"year"`
	SeatsLeft int         `json:"seatsLeft"`
}

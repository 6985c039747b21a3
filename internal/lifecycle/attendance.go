package lifecycle

import "github.com/noah-isme/program-cycles-api/internal/models"

// NextAttendance computes the record after toggling day. Turning a day on
// requires the previous day on; turning a day off clears every later day.
// conflict is true when a later day was already attended at the moment of
// the retraction.
func NextAttendance(rec models.Attendance, day int) (next models.Attendance, conflict bool, err error) {
	if day < 0 || day >= models.CycleLength {
		return rec, false, ErrDayOutOfRange
	}
	on := !rec[day]
	if on && day > 0 && !rec[day-1] {
		return rec, false, ErrOutOfSequence
	}

	next = rec
	next[day] = on
	if on {
		return next, false, nil
	}

	conflict = day+1 < models.CycleLength && rec[day+1]
	for i := day + 1; i < models.CycleLength; i++ {
		next[i] = false
	}
	return next, conflict, nil
}

// ToggleAttendance applies one attendance toggle to a participant.
// Conflicted, graduated and dropped participants cannot be edited; they leave
// those states only through Reschedule or Promote.
func ToggleAttendance(p models.Participant, day int) (models.Participant, error) {
	if day < 0 || day >= models.CycleLength {
		return p, ErrDayOutOfRange
	}
	switch p.Status() {
	case models.ParticipantConflict, models.ParticipantGraduated, models.ParticipantDropped:
		return p, ErrAttendanceLocked
	}

	next, conflict, err := NextAttendance(p.Attendance, day)
	if err != nil {
		return p, err
	}
	p.Attendance = next
	if conflict {
		p.Hold = models.HoldConflict
	}
	return p, nil
}

package lifecycle

import (
	"strings"
	"time"

	"github.com/noah-isme/program-cycles-api/internal/models"
)

// Ledger applies the seat policy to cycle registrations.
type Ledger struct {
	// EnforceCapacity rejects registrations once EnrolledCount reaches Capacity.
	EnforceCapacity bool
}

// Register reserves one seat in c.
func (l Ledger) Register(c models.Cycle) (models.Cycle, error) {
	if l.EnforceCapacity && c.EnrolledCount >= c.Capacity {
		return c, ErrCycleFull
	}
	c.EnrolledCount++
	return c, nil
}

// NewCycle validates a cycle window and fills the derived end date. start must
// be a Thursday; the cycle runs through the following Sunday. A zero capacity
// takes the level default.
func NewCycle(id string, start time.Time, level models.Tier, capacity int, now time.Time) (models.Cycle, error) {
	if !level.Valid() {
		return models.Cycle{}, ErrUnknownTier
	}
	if capacity < 0 {
		return models.Cycle{}, ErrInvalidCapacity
	}
	if capacity == 0 {
		capacity = level.DefaultCapacity()
	}

	day := civilDate(start)
	if day.Weekday() != time.Thursday {
		return models.Cycle{}, ErrNotThursday
	}

	return models.Cycle{
		ID:        id,
		StartDate: day,
		EndDate:   day.AddDate(0, 0, models.CycleLength-1),
		Level:     level,
		Capacity:  capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CycleStatusAt classifies c against the calendar day of now in loc. Cycle
// dates are calendar dates and are read in UTC.
func CycleStatusAt(c models.Cycle, now time.Time, loc *time.Location) models.CycleStatus {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

	switch {
	case today.Before(civilDate(c.StartDate)):
		return models.CycleUpcoming
	case today.After(civilDate(c.EndDate)):
		return models.CycleCompleted
	default:
		return models.CycleInProgress
	}
}

// View decorates c with its calendar status, month label and free seats.
func View(c models.Cycle, now time.Time, loc *time.Location) models.CycleView {
	start := civilDate(c.StartDate)
	return models.CycleView{
		Cycle:     c,
		Status:    CycleStatusAt(c, now, loc),
		Month:     spanishMonths[start.Month()-1],
		Year:      start.Year(),
		SeatsLeft: c.SeatsLeft(),
	}
}

// FilterCycles returns the calendar views of cycles matching filter, keeping
// the input order.
func FilterCycles(cycles []models.Cycle, filter models.CycleFilter, now time.Time, loc *time.Location) []models.CycleView {
	query := strings.ToLower(strings.TrimSpace(filter.Search))
	views := make([]models.CycleView, 0, len(cycles))
	for _, c := range cycles {
		if filter.Level != "" && c.Level != filter.Level {
			continue
		}
		if filter.From != nil && civilDate(c.EndDate).Before(civilDate(*filter.From)) {
			continue
		}
		if filter.To != nil && civilDate(c.StartDate).After(civilDate(*filter.To)) {
			continue
		}
		view := View(c, now, loc)
		if filter.Status != "" && view.Status != filter.Status {
			continue
		}
		if query != "" && !matchesQuery(c, query) {
			continue
		}
		views = append(views, view)
	}
	return views
}

var spanishMonths = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// query is already lowercased.
func matchesQuery(c models.Cycle, query string) bool {
	start, end := civilDate(c.StartDate), civilDate(c.EndDate)
	level := strings.ToLower(string(c.Level))
	candidates := []string{
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
		strings.ToLower(spanishMonths[start.Month()-1]),
		strings.ToLower(start.Month().String()),
		level,
		strings.ReplaceAll(level, "_", " "),
	}
	for _, candidate := range candidates {
		if strings.Contains(candidate, query) {
			return true
		}
	}
	return false
}

func civilDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

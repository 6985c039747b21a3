package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/program-cycles-api/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLedgerRegister(t *testing.T) {
	c := models.Cycle{ID: "c-1", Capacity: 2, EnrolledCount: 1}

	c, err := Ledger{EnforceCapacity: true}.Register(c)
	require.NoError(t, err)
	assert.Equal(t, 2, c.EnrolledCount)

	_, err = Ledger{EnforceCapacity: true}.Register(c)
	assert.ErrorIs(t, err, ErrCycleFull)

	c, err = Ledger{}.Register(c)
	require.NoError(t, err)
	assert.Equal(t, 3, c.EnrolledCount)
	assert.Equal(t, 0, c.SeatsLeft())
}

func TestNewCycle(t *testing.T) {
	now := date(2024, time.December, 1)

	c, err := NewCycle("c-1", date(2025, time.January, 2), models.TierInicial, 0, now)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.January, 5), c.EndDate)
	assert.Equal(t, 30, c.Capacity)

	c, err = NewCycle("c-2", date(2025, time.January, 2), models.TierAvanzado, 0, now)
	require.NoError(t, err)
	assert.Equal(t, 20, c.Capacity)

	_, err = NewCycle("c-3", date(2025, time.January, 3), models.TierInicial, 10, now)
	assert.ErrorIs(t, err, ErrNotThursday)

	_, err = NewCycle("c-4", date(2025, time.January, 2), "BASIC", 10, now)
	assert.ErrorIs(t, err, ErrUnknownTier)

	_, err = NewCycle("c-5", date(2025, time.January, 2), models.TierInicial, -1, now)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestCycleStatusAt(t *testing.T) {
	c := models.Cycle{StartDate: date(2025, time.January, 2), EndDate: date(2025, time.January, 5)}
	bogota := time.FixedZone("COT", -5*60*60)

	assert.Equal(t, models.CycleUpcoming, CycleStatusAt(c, time.Date(2025, time.January, 1, 23, 0, 0, 0, time.UTC), time.UTC))
	assert.Equal(t, models.CycleInProgress, CycleStatusAt(c, date(2025, time.January, 2), time.UTC))
	assert.Equal(t, models.CycleInProgress, CycleStatusAt(c, time.Date(2025, time.January, 5, 23, 59, 0, 0, time.UTC), time.UTC))
	assert.Equal(t, models.CycleCompleted, CycleStatusAt(c, date(2025, time.January, 6), time.UTC))
	assert.Equal(t, models.CycleInProgress, CycleStatusAt(c, time.Date(2025, time.January, 6, 3, 0, 0, 0, time.UTC), bogota))
}

func TestFilterCycles(t *testing.T) {
	cycles := []models.Cycle{
		{ID: "jan", StartDate: date(2025, time.January, 2), EndDate: date(2025, time.January, 5), Level: models.TierInicial, Capacity: 30},
		{ID: "feb", StartDate: date(2025, time.February, 6), EndDate: date(2025, time.February, 9), Level: models.TierAvanzado, Capacity: 20},
		{ID: "mar", StartDate: date(2025, time.March, 6), EndDate: date(2025, time.March, 9), Level: models.TierProgramaLider, Capacity: 20, EnrolledCount: 20},
	}
	now := date(2025, time.February, 7)

	ids := func(views []models.CycleView) []string {
		out := make([]string, 0, len(views))
		for _, v := range views {
			out = append(out, v.ID)
		}
		return out
	}

	assert.Equal(t, []string{"jan", "feb", "mar"}, ids(FilterCycles(cycles, models.CycleFilter{}, now, time.UTC)))
	assert.Equal(t, []string{"feb"}, ids(FilterCycles(cycles, models.CycleFilter{Search: "Febrero"}, now, time.UTC)))
	assert.Equal(t, []string{"mar"}, ids(FilterCycles(cycles, models.CycleFilter{Search: "march"}, now, time.UTC)))
	assert.Equal(t, []string{"mar"}, ids(FilterCycles(cycles, models.CycleFilter{Search: "programa lider"}, now, time.UTC)))
	assert.Equal(t, []string{"jan"}, ids(FilterCycles(cycles, models.CycleFilter{Search: "2025-01-05"}, now, time.UTC)))
	assert.Equal(t, []string{"feb"}, ids(FilterCycles(cycles, models.CycleFilter{Status: models.CycleInProgress}, now, time.UTC)))
	assert.Equal(t, []string{"feb"}, ids(FilterCycles(cycles, models.CycleFilter{Level: models.TierAvanzado}, now, time.UTC)))

	from := date(2025, time.February, 1)
	assert.Equal(t, []string{"feb", "mar"}, ids(FilterCycles(cycles, models.CycleFilter{From: &from}, now, time.UTC)))

	views := FilterCycles(cycles, models.CycleFilter{Search: "mar"}, now, time.UTC)
	require.Len(t, views, 1)
	assert.Equal(t, "Marzo", views[0].Month)
	assert.Equal(t, 0, views[0].SeatsLeft)
	assert.Equal(t, models.CycleUpcoming, views[0].Status)
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/program-cycles-api/internal/dto"
	"github.com/noah-isme/program-cycles-api/internal/models"
	appErrors "github.com/noah-isme/program-cycles-api/pkg/errors"
	"github.com/noah-isme/program-cycles-api/pkg/events"
)

func day(i int) dto.ToggleAttendanceRequest {
	return dto.ToggleAttendanceRequest{Day: &i}
}

func seededStore(attendance models.Attendance) *programStore {
	store := newProgramStore()
	store.participants["p-1"] = models.Participant{
		ID:          "p-1",
		Sequence:    1,
		CycleID:     "c-1",
		CurrentTier: models.TierInicial,
		Attendance:  attendance,
	}
	store.cycles["c-1"] = models.Cycle{ID: "c-1", Level: models.TierInicial, Capacity: 30, EnrolledCount: 1}
	store.cycles["c-2"] = models.Cycle{ID: "c-2", Level: models.TierAvanzado, Capacity: 1}
	return store
}

func TestAttendanceServiceConflictScenario(t *testing.T) {
	store := seededStore(models.Attendance{true, true})
	pub := &eventRecorder{}
	metrics := NewMetricsService()
	deps := testDeps(pub)
	deps.Metrics = metrics
	svc := NewAttendanceService(store, nil, deps)
	ctx := context.Background()

	res, err := svc.Toggle(ctx, "p-1", day(2))
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, models.ParticipantActive, res.Participant.Status())
	assert.Equal(t, 75, res.Participant.Progress())
	assert.Equal(t, testNow, res.Participant.UpdatedAt)

	res, err = svc.Toggle(ctx, "p-1", day(1))
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, models.Attendance{true}, res.Participant.Attendance)
	assert.Equal(t, models.ParticipantConflict, res.Participant.Status())
	assert.Equal(t, 25, res.Participant.Progress())

	res, err = svc.Toggle(ctx, "p-1", day(1))
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.NotEmpty(t, res.Reason)
	assert.Equal(t, models.ParticipantConflict, res.Participant.Status())

	assert.Equal(t, []string{events.ParticipantConflict}, pub.types())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.transitions.WithLabelValues(OpToggleAttendance, OutcomeApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.transitions.WithLabelValues(OpToggleAttendance, OutcomeDeclined)))
}

func TestAttendanceServiceOutOfSequenceIsDeclined(t *testing.T) {
	store := seededStore(models.Attendance{})
	svc := NewAttendanceService(store, nil, testDeps(nil))

	res, err := svc.Toggle(context.Background(), "p-1", day(2))
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, models.Attendance{}, res.Participant.Attendance)
	assert.Equal(t, 0, store.writes)
}

func TestAttendanceServiceValidation(t *testing.T) {
	svc := NewAttendanceService(seededStore(models.Attendance{}), nil, testDeps(nil))

	_, err := svc.Toggle(context.Background(), "p-1", day(4))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Toggle(context.Background(), "p-1", dto.ToggleAttendanceRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAttendanceServiceMissingParticipant(t *testing.T) {
	svc := NewAttendanceService(seededStore(models.Attendance{}), nil, testDeps(nil))

	_, err := svc.Toggle(context.Background(), "p-404", day(0))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAttendanceServiceGraduationPublishesEvent(t *testing.T) {
	store := seededStore(models.Attendance{true, true, true})
	pub := &eventRecorder{err: errors.New("broker down")}
	cache := newMemoryCache()
	deps := testDeps(pub)
	deps.Cache = NewCacheService(cache, nil, 0, nil, true)
	svc := NewAttendanceService(store, nil, deps)

	res, err := svc.Toggle(context.Background(), "p-1", day(3))
	require.NoError(t, err, "publish failures never fail the transition")
	assert.Equal(t, models.ParticipantGraduated, res.Participant.Status())
	assert.False(t, res.Participant.NextTierLocked())
	assert.Equal(t, []string{events.ParticipantGraduated}, pub.types())
	assert.ElementsMatch(t, []string{dashboardCachePattern, calendarCachePattern}, cache.invalidated)
}

func TestProgressionServicePromoteScenario(t *testing.T) {
	store := seededStore(models.Attendance{true, true, true, true})
	pub := &eventRecorder{}
	svc := NewProgressionService(store, testDeps(pub))

	res, err := svc.Promote(context.Background(), "p-1", dto.PromoteRequest{})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, models.TierAvanzado, res.Participant.CurrentTier)
	assert.Equal(t, models.ParticipantActive, res.Participant.Status())
	assert.Equal(t, 0, res.Participant.Progress())
	assert.True(t, res.Participant.NextTierLocked())
	assert.Equal(t, "c-1", res.Participant.CycleID)
	assert.Equal(t, []string{events.ParticipantPromoted}, pub.types())

	res, err = svc.Promote(context.Background(), "p-1", dto.PromoteRequest{})
	require.NoError(t, err)
	assert.False(t, res.Applied)
}

func TestProgressionServicePromoteIntoCycle(t *testing.T) {
	store := seededStore(models.Attendance{true, true, true, true})
	svc := NewProgressionService(store, testDeps(nil))

	res, err := svc.Promote(context.Background(), "p-1", dto.PromoteRequest{CycleID: "c-2"})
	require.NoError(t, err)
	require.True(t, res.Applied)
	assert.Equal(t, "c-2", res.Participant.CycleID)
	assert.Equal(t, 1, store.cycles["c-2"].EnrolledCount)

	other := store.participants["p-1"]
	other.ID = "p-2"
	other.CurrentTier = models.TierInicial
	other.CycleID = "c-1"
	other.Attendance = models.Attendance{true, true, true, true}
	store.participants["p-2"] = other

	_, err = svc.Promote(context.Background(), "p-2", dto.PromoteRequest{CycleID: "c-2"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCapacityExceeded))
	assert.Equal(t, models.TierInicial, store.participants["p-2"].CurrentTier)

	_, err = svc.Promote(context.Background(), "p-2", dto.PromoteRequest{CycleID: "c-404"})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestProgressionServiceRescheduleAndDrop(t *testing.T) {
	store := seededStore(models.Attendance{true})
	p := store.participants["p-1"]
	p.Hold = models.HoldConflict
	store.participants["p-1"] = p
	pub := &eventRecorder{}
	svc := NewProgressionService(store, testDeps(pub))
	ctx := context.Background()

	res, err := svc.Reschedule(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, models.ParticipantActive, res.Participant.Status())
	assert.Equal(t, models.Attendance{}, res.Participant.Attendance)

	res, err = svc.Drop(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, models.ParticipantDropped, res.Participant.Status())

	res, err = svc.Reschedule(ctx, "p-1")
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, models.ParticipantDropped, res.Participant.Status())

	assert.Equal(t, []string{events.ParticipantRescheduled, events.ParticipantDropped}, pub.types())
}

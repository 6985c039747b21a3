package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantDerivedStatus(t *testing.T) {
	cases := []struct {
		name       string
		hold       ParticipantHold
		attendance Attendance
		want       ParticipantStatus
		progress   int
	}{
		{"fresh", HoldNone, Attendance{}, ParticipantActive, 0},
		{"partial", HoldNone, Attendance{true, true, true, false}, ParticipantActive, 75},
		{"full", HoldNone, Attendance{true, true, true, true}, ParticipantGraduated, 100},
		{"conflict", HoldConflict, Attendance{true, false, false, false}, ParticipantConflict, 25},
		{"dropped wins", HoldDropped, Attendance{true, true, true, true}, ParticipantDropped, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Participant{Hold: tc.hold, Attendance: tc.attendance}
			assert.Equal(t, tc.want, p.Status())
			assert.Equal(t, tc.progress, p.Progress())
			assert.Equal(t, tc.want != ParticipantGraduated, p.NextTierLocked())
		})
	}
}

func TestParticipantMarshalJSONIncludesDerivedFields(t *testing.T) {
	p := Participant{ID: "p-1", Sequence: 60, CurrentTier: TierInicial, Attendance: Attendance{true, true, true, true}}
	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "GRADUATED", decoded["status"])
	assert.Equal(t, float64(100), decoded["progress"])
	assert.Equal(t, false, decoded["nextPackageLocked"])
	assert.Equal(t, float64(60), decoded["pl"])
	assert.Equal(t, []interface{}{true, true, true, true}, decoded["attendance"])
}

func TestAttendanceBitsRoundTrip(t *testing.T) {
	for bits := int64(0); bits < 16; bits++ {
		a, err := AttendanceFromBits(bits)
		require.NoError(t, err)
		assert.Equal(t, bits, a.Bits())
	}
	_, err := AttendanceFromBits(16)
	assert.Error(t, err)
}

func TestAttendanceScan(t *testing.T) {
	var a Attendance
	require.NoError(t, a.Scan(int64(3)))
	assert.Equal(t, Attendance{true, true, false, false}, a)
	require.NoError(t, a.Scan([]byte("15")))
	assert.True(t, a.Full())
	require.NoError(t, a.Scan(nil))
	assert.Zero(t, a.Count())
	assert.Error(t, a.Scan("x"))
}

func TestAttendanceContiguous(t *testing.T) {
	assert.True(t, Attendance{true, true, false, false}.Contiguous())
	assert.False(t, Attendance{true, false, true, false}.Contiguous())
	assert.False(t, Attendance{false, true, false, false}.Contiguous())
}

func TestPackageEntryTier(t *testing.T) {
	assert.Equal(t, TierInicial, PackageFullExperience.EntryTier())
	assert.Equal(t, TierAvanzado, PackageAvanzado.EntryTier())
	assert.True(t, PackageComboInicialAvanzado.Covers(TierAvanzado))
	assert.False(t, PackageComboInicialAvanzado.Covers(TierProgramaLider))
	assert.False(t, PackageOption("GOLD").Valid())
	assert.Equal(t, Tier(""), PackageOption("GOLD").EntryTier())
}

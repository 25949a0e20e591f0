package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeToMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"09:00", 540},
		{"09:30", 570},
		{"18:45", 1125},
		{"23:59", 1439},
	}
	for _, tc := range cases {
		got, err := TimeToMinutes(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestTimeToMinutesRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "9", "nine:30", "10:oo", "1030"} {
		_, err := TimeToMinutes(in)
		assert.Error(t, err, in)
	}
}

func TestMinutesToTimeRoundTrip(t *testing.T) {
	for m := 0; m < 24*60; m += 7 {
		got, err := TimeToMinutes(MinutesToTime(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestMinutesToTimePadsAndExceedsMidnight(t *testing.T) {
	assert.Equal(t, "09:05", MinutesToTime(545))
	// No clamping: a slot ending past midnight stays representable.
	assert.Equal(t, "24:30", MinutesToTime(1470))
}

func TestAddMinutes(t *testing.T) {
	got, err := AddMinutes("10:00", 90)
	require.NoError(t, err)
	assert.Equal(t, "11:30", got)

	got, err = AddMinutes("10:30", -45)
	require.NoError(t, err)
	assert.Equal(t, "09:45", got)

	_, err = AddMinutes("bad", 30)
	assert.Error(t, err)
}

func TestGenerateSlotsHalfOpen(t *testing.T) {
	slots, err := GenerateSlots("09:00", "11:00", 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, slots)
}

func TestGenerateSlotsUnevenStep(t *testing.T) {
	// The last partial step still yields a start inside the window.
	slots, err := GenerateSlots("09:00", "10:00", 45)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:45"}, slots)
}

func TestGenerateSlotsEmptyWindow(t *testing.T) {
	slots, err := GenerateSlots("10:00", "10:00", 30)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlotsRejectsBadInput(t *testing.T) {
	_, err := GenerateSlots("09:00", "18:00", 0)
	assert.Error(t, err)

	_, err = GenerateSlots("open", "18:00", 30)
	assert.Error(t, err)
}

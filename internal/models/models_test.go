package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainWeekday(t *testing.T) {
	// 2025-03-17 is a Monday.
	cases := []struct {
		date string
		want int
	}{
		{"2025-03-17", 0},
		{"2025-03-18", 1},
		{"2025-03-21", 4},
		{"2025-03-22", 5},
		{"2025-03-23", 6}, // Sunday maps to 6, not 0
	}
	for _, tc := range cases {
		date, err := ParseDateID(tc.date)
		require.NoError(t, err)
		assert.Equal(t, tc.want, DomainWeekday(date), tc.date)
	}
}

func TestParseDateID(t *testing.T) {
	date, err := ParseDateID("2025-03-17")
	require.NoError(t, err)
	assert.Equal(t, time.March, date.Month())

	_, err = ParseDateID("17/03/2025")
	assert.Error(t, err)
	_, err = ParseDateID("")
	assert.Error(t, err)
}

func TestCapability(t *testing.T) {
	unrestricted := CapabilityOf(nil)
	assert.True(t, unrestricted.Unrestricted())
	assert.True(t, unrestricted.Allows("anything"))

	restricted := CapabilityOf([]string{"svc-1", "svc-2"})
	assert.False(t, restricted.Unrestricted())
	assert.True(t, restricted.Allows("svc-1"))
	assert.False(t, restricted.Allows("svc-3"))
}

func TestReservationBlocks(t *testing.T) {
	assert.True(t, (&Reservation{Status: StatusPendiente}).Blocks())
	assert.True(t, (&Reservation{Status: StatusConfirmada}).Blocks())
	assert.False(t, (&Reservation{Status: StatusCancelada}).Blocks())
}

func TestReservationStatusValid(t *testing.T) {
	assert.True(t, StatusPendiente.Valid())
	assert.True(t, StatusConfirmada.Valid())
	assert.True(t, StatusCancelada.Valid())
	assert.False(t, ReservationStatus("Archivada").Valid())
}

func TestStaffHoursWorksOn(t *testing.T) {
	var none *StaffHours
	assert.False(t, none.WorksOn(0))

	all := &StaffHours{Open: "09:00", Close: "17:00"}
	for day := 0; day <= 6; day++ {
		assert.True(t, all.WorksOn(day))
	}

	weekdaysOnly := &StaffHours{Open: "09:00", Close: "17:00", DaysOfWeek: []int{0, 1, 2, 3, 4}}
	assert.True(t, weekdaysOnly.WorksOn(0))
	assert.False(t, weekdaysOnly.WorksOn(6))
}

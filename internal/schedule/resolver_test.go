package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolukazzz/reservas-api/internal/models"
)

var (
	monday = time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	sunday = time.Date(2025, 3, 23, 0, 0, 0, 0, time.UTC)
)

func baseBusinessHours() *models.BusinessHours {
	return &models.BusinessHours{Open: "09:00", Close: "18:00", SlotMinutes: 30}
}

func TestResolveBusinessHoursTopLevel(t *testing.T) {
	hours := ResolveBusinessHours(baseBusinessHours(), monday)
	require.NotNil(t, hours)
	assert.Equal(t, "09:00", hours.Open)
	assert.Equal(t, "18:00", hours.Close)
	assert.Equal(t, 30, hours.SlotMinutes)
}

func TestResolveBusinessHoursDayOverride(t *testing.T) {
	bh := baseBusinessHours()
	bh.Days = []models.DayOverride{{Day: 0, Open: "10:00", Close: "14:00", Active: true}}

	hours := ResolveBusinessHours(bh, monday)
	require.NotNil(t, hours)
	assert.Equal(t, "10:00", hours.Open)
	assert.Equal(t, "14:00", hours.Close)
	// Overrides inherit the business slot step.
	assert.Equal(t, 30, hours.SlotMinutes)

	// Other weekdays keep the top-level window.
	hours = ResolveBusinessHours(bh, sunday)
	require.NotNil(t, hours)
	assert.Equal(t, "09:00", hours.Open)
}

func TestResolveBusinessHoursClosedDay(t *testing.T) {
	bh := baseBusinessHours()
	bh.Days = []models.DayOverride{{Day: 6, Active: false}}

	assert.Nil(t, ResolveBusinessHours(bh, sunday))
	assert.NotNil(t, ResolveBusinessHours(bh, monday))
}

func TestResolveBusinessHoursNoConfig(t *testing.T) {
	assert.Nil(t, ResolveBusinessHours(nil, monday))
	assert.Nil(t, ResolveBusinessHours(&models.BusinessHours{}, monday))
}

func TestResolveStaffHoursOwnOverrideWins(t *testing.T) {
	staff := &models.StaffMember{
		ID: "st1",
		Hours: &models.StaffHours{
			Open: "08:00", Close: "16:00", SlotMinutes: 20,
		},
		Schedule: &models.StaffSchedule{
			Days: []models.StaffDaySchedule{{Day: 0, Open: "12:00", Close: "15:00"}},
		},
	}

	hours := ResolveStaffHours(staff, baseBusinessHours(), monday)
	require.NotNil(t, hours)
	assert.Equal(t, "12:00", hours.Open)
	assert.Equal(t, "15:00", hours.Close)
	// The override has no step of its own: fall back to staff defaults.
	assert.Equal(t, 20, hours.SlotMinutes)
}

func TestResolveStaffHoursDefaultsOnWorkDay(t *testing.T) {
	staff := &models.StaffMember{
		ID:    "st1",
		Hours: &models.StaffHours{Open: "08:00", Close: "14:00", DaysOfWeek: []int{0, 1, 2}},
	}

	hours := ResolveStaffHours(staff, baseBusinessHours(), monday)
	require.NotNil(t, hours)
	assert.Equal(t, "08:00", hours.Open)
	assert.Equal(t, "14:00", hours.Close)
	// No staff step configured: business step applies.
	assert.Equal(t, 30, hours.SlotMinutes)
}

func TestResolveStaffHoursOffDayFallsBackToBusiness(t *testing.T) {
	staff := &models.StaffMember{
		ID:    "st1",
		Hours: &models.StaffHours{Open: "08:00", Close: "14:00", DaysOfWeek: []int{0, 1, 2}},
	}

	// Sunday is not in the member's work days.
	hours := ResolveStaffHours(staff, baseBusinessHours(), sunday)
	require.NotNil(t, hours)
	assert.Equal(t, "09:00", hours.Open)
	assert.Equal(t, "18:00", hours.Close)
}

func TestResolveStaffHoursDelegation(t *testing.T) {
	staff := &models.StaffMember{
		ID:       "st1",
		Hours:    &models.StaffHours{Open: "08:00", Close: "14:00"},
		Schedule: &models.StaffSchedule{UseBusinessHours: true},
	}

	hours := ResolveStaffHours(staff, baseBusinessHours(), monday)
	require.NotNil(t, hours)
	// Delegation skips the member's own defaults entirely.
	assert.Equal(t, "09:00", hours.Open)
	assert.Equal(t, "18:00", hours.Close)
}

func TestResolveStaffHoursNilStaff(t *testing.T) {
	hours := ResolveStaffHours(nil, baseBusinessHours(), monday)
	require.NotNil(t, hours)
	assert.Equal(t, "09:00", hours.Open)
}

func TestResolveStaffHoursClosedBusinessDay(t *testing.T) {
	bh := baseBusinessHours()
	bh.Days = []models.DayOverride{{Day: 0, Active: false}}
	staff := &models.StaffMember{ID: "st1", Schedule: &models.StaffSchedule{UseBusinessHours: true}}

	assert.Nil(t, ResolveStaffHours(staff, bh, monday))
}

package schedule

import (
	"time"

	"github.com/nicolukazzz/reservas-api/internal/models"
)

// ResolveBusinessHours returns the tenant's effective window for the
// given date, or nil when the business is closed that day. Pure function
// of its inputs.
func ResolveBusinessHours(hours *models.BusinessHours, date time.Time) *models.EffectiveHours {
	if hours == nil {
		return nil
	}
	day := models.DomainWeekday(date)

	if override := hours.OverrideFor(day); override != nil {
		if !override.Active {
			return nil
		}
		return &models.EffectiveHours{
			Open:        override.Open,
			Close:       override.Close,
			SlotMinutes: hours.SlotMinutes,
		}
	}

	if hours.Open == "" || hours.Close == "" {
		return nil
	}
	return &models.EffectiveHours{
		Open:        hours.Open,
		Close:       hours.Close,
		SlotMinutes: hours.SlotMinutes,
	}
}

// ResolveStaffHours returns a staff member's effective window for the
// given date, layering per-day overrides over staff defaults over the
// business schedule. A nil result means the member does not work that
// day.
//
// Priority, highest first:
//  1. the member's own per-weekday override
//  2. the member's default hours, unless delegating to business hours
//  3. the business schedule for that weekday
func ResolveStaffHours(staff *models.StaffMember, business *models.BusinessHours, date time.Time) *models.EffectiveHours {
	if staff == nil {
		return ResolveBusinessHours(business, date)
	}
	day := models.DomainWeekday(date)

	if override := staff.Schedule.OverrideFor(day); override != nil {
		return &models.EffectiveHours{
			Open:        override.Open,
			Close:       override.Close,
			SlotMinutes: staffSlotMinutes(override.SlotMinutes, staff, business),
		}
	}

	delegating := staff.Schedule != nil && staff.Schedule.UseBusinessHours
	if !delegating && staff.Hours != nil && staff.Hours.WorksOn(day) {
		return &models.EffectiveHours{
			Open:        staff.Hours.Open,
			Close:       staff.Hours.Close,
			SlotMinutes: staffSlotMinutes(staff.Hours.SlotMinutes, staff, business),
		}
	}

	return ResolveBusinessHours(business, date)
}

// staffSlotMinutes picks the first configured slot step along the
// override -> staff defaults -> business chain.
func staffSlotMinutes(own int, staff *models.StaffMember, business *models.BusinessHours) int {
	if own > 0 {
		return own
	}
	if staff != nil && staff.Hours != nil && staff.Hours.SlotMinutes > 0 {
		return staff.Hours.SlotMinutes
	}
	if business != nil {
		return business.SlotMinutes
	}
	return 0
}

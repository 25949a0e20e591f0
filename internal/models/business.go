package models

import (
	"time"
)

// DayOverride replaces the default business hours for one weekday.
// Day uses the domain convention Monday=0 .. Sunday=6.
// Active == false closes the business that day regardless of defaults.
type DayOverride struct {
	Day    int    `json:"day" validate:"min=0,max=6"`
	Open   string `json:"open"`
	Close  string `json:"close"`
	Active bool   `json:"active"`
}

// BusinessHours is the tenant's default weekly schedule plus optional
// per-weekday overrides. At most one override per weekday.
type BusinessHours struct {
	Open        string        `json:"open"`
	Close       string        `json:"close"`
	SlotMinutes int           `json:"slotMinutes"`
	Days        []DayOverride `json:"days,omitempty"`
}

// OverrideFor returns the override configured for the given domain
// weekday, or nil when the default hours apply.
func (h *BusinessHours) OverrideFor(day int) *DayOverride {
	if h == nil {
		return nil
	}
	for i := range h.Days {
		if h.Days[i].Day == day {
			return &h.Days[i]
		}
	}
	return nil
}

// BusinessProfile is the stored hours configuration for one tenant.
type BusinessProfile struct {
	ID        string        `db:"id" json:"id"`
	ClientID  string        `db:"client_id" json:"client_id"`
	Hours     BusinessHours `db:"-" json:"hours"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// EffectiveHours is the resolved open/close window for one entity on one
// calendar date. A nil *EffectiveHours means closed that day.
type EffectiveHours struct {
	Open        string `json:"open"`
	Close       string `json:"close"`
	SlotMinutes int    `json:"slotMinutes"`
}

// DomainWeekday converts a calendar date's native weekday (Sunday=0) to
// the domain convention Monday=0 .. Sunday=6. This is the only
// conversion point; callers must not reimplement it.
func DomainWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DateIDLayout is the wire format for reservation dates.
const DateIDLayout = "2006-01-02"

// ParseDateID parses a "YYYY-MM-DD" date identifier.
func ParseDateID(dateID string) (time.Time, error) {
	return time.Parse(DateIDLayout, dateID)
}

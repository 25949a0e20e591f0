package models

import (
	"time"
)

// StaffHours is a staff member's own default schedule, used only when the
// member is not delegating to business hours.
type StaffHours struct {
	Open        string `json:"open"`
	Close       string `json:"close"`
	SlotMinutes int    `json:"slotMinutes,omitempty"`
	DaysOfWeek  []int  `json:"daysOfWeek,omitempty"`
}

// WorksOn reports whether the staff defaults cover the given domain
// weekday. An empty DaysOfWeek list covers every day.
func (h *StaffHours) WorksOn(day int) bool {
	if h == nil {
		return false
	}
	if len(h.DaysOfWeek) == 0 {
		return true
	}
	for _, d := range h.DaysOfWeek {
		if d == day {
			return true
		}
	}
	return false
}

// StaffDaySchedule overrides one weekday for one staff member.
type StaffDaySchedule struct {
	Day         int    `json:"day" validate:"min=0,max=6"`
	Open        string `json:"open"`
	Close       string `json:"close"`
	SlotMinutes int    `json:"slotMinutes,omitempty"`
}

// StaffSchedule bundles a staff member's per-weekday overrides and the
// delegation flag.
type StaffSchedule struct {
	UseBusinessHours bool               `json:"useBusinessHours"`
	Days             []StaffDaySchedule `json:"days,omitempty"`
}

// OverrideFor returns the per-weekday override, or nil when none applies.
func (s *StaffSchedule) OverrideFor(day int) *StaffDaySchedule {
	if s == nil {
		return nil
	}
	for i := range s.Days {
		if s.Days[i].Day == day {
			return &s.Days[i]
		}
	}
	return nil
}

// StaffMember is a bookable person belonging to one tenant.
type StaffMember struct {
	ID         string         `db:"id" json:"id"`
	ClientID   string         `db:"client_id" json:"client_id"`
	Name       string         `db:"name" json:"name"`
	Active     bool           `db:"active" json:"active"`
	ServiceIDs []string       `db:"-" json:"serviceIds,omitempty"`
	Hours      *StaffHours    `db:"-" json:"hours,omitempty"`
	Schedule   *StaffSchedule `db:"-" json:"schedule,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// Capability returns the member's service capability. An empty or absent
// ServiceIDs list means the member can perform every service.
func (m *StaffMember) Capability() Capability {
	return CapabilityOf(m.ServiceIDs)
}

// Capability expresses which services a staff member may perform.
// The zero value is unrestricted, matching the open-world default.
type Capability struct {
	restricted bool
	allowed    map[string]struct{}
}

// CapabilityOf builds a Capability from a service-ID list. Empty means
// unrestricted.
func CapabilityOf(serviceIDs []string) Capability {
	if len(serviceIDs) == 0 {
		return Capability{}
	}
	allowed := make(map[string]struct{}, len(serviceIDs))
	for _, id := range serviceIDs {
		allowed[id] = struct{}{}
	}
	return Capability{restricted: true, allowed: allowed}
}

// Unrestricted reports whether the member may perform any service.
func (c Capability) Unrestricted() bool {
	return !c.restricted
}

// Allows reports whether the member may perform the given service.
func (c Capability) Allows(serviceID string) bool {
	if !c.restricted {
		return true
	}
	_, ok := c.allowed[serviceID]
	return ok
}

// StaffFilter describes query params for listing staff.
type StaffFilter struct {
	ClientID string
	Active   *bool
	Page     int
	PageSize int
}

package schedule

import (
	"github.com/nicolukazzz/reservas-api/internal/models"
)

// Overlaps reports whether the half-open minute intervals [s1,e1) and
// [s2,e2) intersect. This predicate carries the whole double-booking
// guarantee; touching boundaries do not overlap.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// ConflictScan tests candidate windows against a day's reservations.
type ConflictScan struct {
	// DefaultDurationMinutes derives an end time for reservations that
	// carry neither EndTime nor DurationMinutes. It must match the
	// booking default so read and write paths agree.
	DefaultDurationMinutes int
}

// Window returns the reservation's [start, end) minute interval,
// deriving a missing end from the duration, then from the default.
func (c ConflictScan) Window(r *models.Reservation) (int, int, error) {
	start, err := TimeToMinutes(r.Time)
	if err != nil {
		return 0, 0, err
	}
	if r.EndTime != "" {
		end, err := TimeToMinutes(r.EndTime)
		if err != nil {
			return 0, 0, err
		}
		return start, end, nil
	}
	duration := r.DurationMinutes
	if duration <= 0 {
		duration = c.DefaultDurationMinutes
	}
	if duration <= 0 {
		duration = 60
	}
	return start, start + duration, nil
}

// HasConflict reports whether [startMin, endMin) for the given staff and
// date collides with any blocking reservation. excludeID skips the
// reservation being edited. Reservations with unparsable times are
// skipped rather than failing the whole scan.
func (c ConflictScan) HasConflict(staffID, dateID string, startMin, endMin int, existing []models.Reservation, excludeID string) bool {
	for i := range existing {
		r := &existing[i]
		if r.StaffID != staffID || r.DateID != dateID {
			continue
		}
		if !r.Blocks() {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		s, e, err := c.Window(r)
		if err != nil {
			continue
		}
		if Overlaps(startMin, endMin, s, e) {
			return true
		}
	}
	return false
}

// CountBlocking returns the number of non-cancelled reservations held by
// the staff member on the given date. Used for least-loaded selection.
func CountBlocking(staffID, dateID string, existing []models.Reservation) int {
	count := 0
	for i := range existing {
		r := &existing[i]
		if r.StaffID == staffID && r.DateID == dateID && r.Blocks() {
			count++
		}
	}
	return count
}

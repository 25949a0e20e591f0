package dto

import "github.com/nicolukazzz/reservas-api/internal/models"

// BookingRequest is the payload for creating or dry-run validating a
// reservation. StaffID empty means auto-select; DurationMinutes zero
// falls back to the offering's duration, then the configured default.
type BookingRequest struct {
	DateID          string `json:"dateId" validate:"required"`
	Time            string `json:"time" validate:"required"`
	DurationMinutes int    `json:"durationMinutes" validate:"omitempty,min=1"`
	StaffID         string `json:"staffId"`
	ServiceID       string `json:"serviceId"`
	CustomerName    string `json:"customerName"`
	CustomerPhone   string `json:"customerPhone"`
}

// BookingResponse returns the stored reservation together with the staff
// member that was assigned (relevant when auto-selected).
type BookingResponse struct {
	Reservation *models.Reservation `json:"reservation"`
	Staff       *models.StaffMember `json:"staff,omitempty"`
}

// ValidateBookingResponse is the dry-run result.
type ValidateBookingResponse struct {
	CanBook bool   `json:"canBook"`
	Reason  string `json:"reason,omitempty"`
	Code    string `json:"code,omitempty"`
}

// UpdateStatusRequest changes a reservation's lifecycle state.
type UpdateStatusRequest struct {
	Status models.ReservationStatus `json:"status" validate:"required"`
}

// Slot is one bookable interval offered to the client UI.
type Slot struct {
	Time      string `json:"time"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// DayAvailability is the resolved schedule plus the generated slot grid
// for one entity on one date.
type DayAvailability struct {
	DateID string                 `json:"dateId"`
	Closed bool                   `json:"closed"`
	Hours  *models.EffectiveHours `json:"hours,omitempty"`
	Slots  []Slot                 `json:"slots,omitempty"`
}

// ExportRequest queues an agenda export.
type ExportRequest struct {
	DateID  string `json:"dateId" validate:"required"`
	StaffID string `json:"staffId"`
	Format  string `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportQueuedResponse returns the queued job reference.
type ExportQueuedResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// ExportReadyResponse carries the signed download token for a finished
// export.
type ExportReadyResponse struct {
	JobID     string `json:"jobId"`
	Status    string `json:"status"`
	Token     string `json:"token,omitempty"`
	URL       string `json:"url,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

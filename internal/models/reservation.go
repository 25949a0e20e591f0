package models

import "time"

// ReservationStatus is the lifecycle state of a reservation. The Spanish
// literals are part of the wire contract with the existing dashboard.
type ReservationStatus string

const (
	StatusPendiente  ReservationStatus = "Pendiente"
	StatusConfirmada ReservationStatus = "Confirmada"
	StatusCancelada  ReservationStatus = "Cancelada"
)

// Valid reports whether the status is one of the known literals.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPendiente, StatusConfirmada, StatusCancelada:
		return true
	}
	return false
}

// Reservation is a booked slot for a tenant. EndTime and DurationMinutes
// may be absent on legacy rows; conflict scans derive the missing one.
type Reservation struct {
	ID              string            `db:"id" json:"id"`
	ClientID        string            `db:"client_id" json:"client_id"`
	DateID          string            `db:"date_id" json:"dateId"`
	Time            string            `db:"start_time" json:"time"`
	EndTime         string            `db:"end_time" json:"endTime,omitempty"`
	DurationMinutes int               `db:"duration_minutes" json:"durationMinutes,omitempty"`
	StaffID         string            `db:"staff_id" json:"staffId,omitempty"`
	ServiceID       string            `db:"service_id" json:"serviceId,omitempty"`
	CustomerName    string            `db:"customer_name" json:"customerName,omitempty"`
	CustomerPhone   string            `db:"customer_phone" json:"customerPhone,omitempty"`
	Status          ReservationStatus `db:"status" json:"status"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// Blocks reports whether the reservation occupies its slot for conflict
// purposes. Cancelled reservations never conflict.
func (r *Reservation) Blocks() bool {
	return r.Status != StatusCancelada
}

// ReservationFilter describes query params for listing reservations.
type ReservationFilter struct {
	ClientID  string
	DateID    string
	StaffID   string
	Status    ReservationStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// BookingDecision is the outcome of validating a booking request.
type BookingDecision struct {
	CanBook bool   `json:"canBook"`
	Reason  string `json:"reason,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Allowed is the decision for a bookable request.
func Allowed() BookingDecision {
	return BookingDecision{CanBook: true}
}

// Rejected builds a rejection decision carrying the machine code and the
// human-readable reason.
func Rejected(code, reason string) BookingDecision {
	return BookingDecision{CanBook: false, Code: code, Reason: reason}
}

// RejectionSource says which layer rejected a booking write. The
// validator's conflict check is an advisory fast path; the storage
// constraint is authoritative under concurrent writers.
type RejectionSource string

const (
	RejectedByValidator RejectionSource = "validator"
	RejectedByStore     RejectionSource = "store"
)

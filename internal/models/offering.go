package models

import "time"

// Offering is a bookable service configured by the tenant. It supplies
// the default duration when a booking request omits one.
type Offering struct {
	ID              string    `db:"id" json:"id"`
	ClientID        string    `db:"client_id" json:"client_id"`
	Name            string    `db:"name" json:"name"`
	Price           float64   `db:"price" json:"price,omitempty"`
	DurationMinutes int       `db:"duration_minutes" json:"durationMinutes,omitempty"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// OfferingFilter describes query params for listing offerings.
type OfferingFilter struct {
	ClientID string
	Active   *bool
	Page     int
	PageSize int
}

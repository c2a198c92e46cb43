package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventStatusDraft  EventStatus = "DRAFT"
	EventStatusOnSale EventStatus = "ON_SALE"
	EventStatusActive EventStatus = "ACTIVE" // gates open
	EventStatusClosed EventStatus = "CLOSED"
)

// Event is a venue event that sells ghost passes and opens gates.
type Event struct {
	ID               uuid.UUID   `json:"id"`
	VenueID          uuid.UUID   `json:"venue_id"`
	PromoterID       *uuid.UUID  `json:"promoter_id,omitempty"`
	Name             string      `json:"name"`
	Status           EventStatus `json:"status"`
	TicketPriceCents Money       `json:"ticket_price_cents"`
	RevenueProfileID uuid.UUID   `json:"revenue_profile_id"`
	AllowsReentry    bool        `json:"allows_reentry"`
	StartsAt         time.Time   `json:"starts_at"`
	EndsAt           time.Time   `json:"ends_at"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// IsOnSale reports whether passes can still be purchased. Gates being open
// does not stop door sales.
func (e *Event) IsOnSale() bool {
	return e.Status == EventStatusOnSale || e.Status == EventStatusActive
}

// IsGateOpen reports whether entry scans are admitted.
func (e *Event) IsGateOpen() bool {
	return e.Status == EventStatusActive
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// StaffRole scopes what a dashboard account may do.
type StaffRole string

const (
	RoleAdmin  StaffRole = "ADMIN"
	RoleVenue  StaffRole = "VENUE"
	RoleVendor StaffRole = "VENDOR"
)

// StaffStatus represents the state of a staff account.
type StaffStatus string

const (
	StaffStatusActive    StaffStatus = "ACTIVE"
	StaffStatusSuspended StaffStatus = "SUSPENDED"
)

// StaffAccount is a venue/admin/vendor dashboard account. Vendors carry the
// revenue profile applied to their concession sales.
type StaffAccount struct {
	ID               uuid.UUID   `json:"id"`
	Username         string      `json:"username"`
	PasswordHash     string      `json:"-"`
	DisplayName      string      `json:"display_name"`
	Role             StaffRole   `json:"role"`
	VenueID          *uuid.UUID  `json:"venue_id,omitempty"`
	RevenueProfileID *uuid.UUID  `json:"revenue_profile_id,omitempty"` // vendors only
	Status           StaffStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// IsActive returns true if the account may authenticate.
func (a *StaffAccount) IsActive() bool {
	return a.Status == StaffStatusActive
}

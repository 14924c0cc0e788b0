package models

import (
	"time"

	"github.com/jredh-dev/foodrescue/internal/expiry"
)

// Role is the dashboard a user signs in to.
type Role string

const (
	RoleProvider Role = "PROVIDER"
	RoleNGO      Role = "NGO"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleProvider, RoleNGO, RoleAdmin:
		return true
	}
	return false
}

// DonationStatus is the lifecycle state of a donation.
type DonationStatus string

const (
	StatusAvailable DonationStatus = "available"
	StatusClaimed   DonationStatus = "claimed"
	StatusPickedUp  DonationStatus = "picked_up"
	StatusExpired   DonationStatus = "expired"
	StatusAccepted  DonationStatus = "accepted"
)

// Statuses lists every donation status in display order.
var Statuses = []DonationStatus{StatusAvailable, StatusClaimed, StatusAccepted, StatusPickedUp, StatusExpired}

// Location is where a donation can be collected.
type Location struct {
	Lat     float64 `json:"lat" firestore:"lat"`
	Lng     float64 `json:"lng" firestore:"lng"`
	Address string  `json:"address" firestore:"address"`
}

// Donation is a unit of food offered by a provider. ExpiryHours, Urgency and
// Explanation are computed once when the donation is created.
type Donation struct {
	ID           string                  `json:"id" firestore:"-"`
	ProviderID   string                  `json:"provider_id" firestore:"providerId"`
	ProviderName string                  `json:"provider_name" firestore:"providerName"`
	FoodType     string                  `json:"type" firestore:"type"`
	Quantity     float64                 `json:"quantity" firestore:"quantity"` // kg
	PreparedAt   time.Time               `json:"prep_date" firestore:"prepDate"`
	Storage      expiry.StorageCondition `json:"storage" firestore:"storage"`
	Location     Location                `json:"location" firestore:"location"`
	ExpiryHours  float64                 `json:"expiry_hours" firestore:"expiryHours"`
	Urgency      expiry.Urgency          `json:"urgency" firestore:"urgency"`
	Explanation  []expiry.Explanation    `json:"explanation" firestore:"explanation"`
	Status       DonationStatus          `json:"status" firestore:"status"`
	AcceptedBy   string                  `json:"accepted_by,omitempty" firestore:"acceptedBy"`
	CreatedAt    time.Time               `json:"created_at" firestore:"createdAt"`
	UpdatedAt    time.Time               `json:"updated_at" firestore:"updatedAt"`
}

// DonationFilter narrows a donation listing. Empty fields match everything.
type DonationFilter struct {
	ProviderID string
	Status     DonationStatus
	AcceptedBy string
}

// Matches reports whether d passes the filter.
func (f DonationFilter) Matches(d *Donation) bool {
	if f.ProviderID != "" && d.ProviderID != f.ProviderID {
		return false
	}
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	if f.AcceptedBy != "" && d.AcceptedBy != f.AcceptedBy {
		return false
	}
	return true
}

// User is the identity carried by a login token.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// IsAdmin reports whether the user may see the platform overview.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Package donation implements the donation workflows on top of a record store.
package donation

import (
	"context"
	"errors"
	"time"

	"github.com/jredh-dev/foodrescue/internal/models"
)

var (
	ErrNotFound     = errors.New("donation not found")
	ErrNotAvailable = errors.New("donation is no longer available")
	ErrInvalidInput = errors.New("invalid donation")
)

// Store persists donation records.
type Store interface {
	// CreateDonation inserts d. d.ID must already be set.
	CreateDonation(ctx context.Context, d *models.Donation) error
	// GetDonation returns ErrNotFound when no donation has the ID.
	GetDonation(ctx context.Context, id string) (*models.Donation, error)
	// ListDonations returns matching donations, newest first.
	ListDonations(ctx context.Context, f models.DonationFilter) ([]*models.Donation, error)
	// AcceptDonation moves an available donation to accepted for ngo.
	// Returns ErrNotAvailable if it is in any other state.
	AcceptDonation(ctx context.Context, id, ngo string, at time.Time) (*models.Donation, error)
}

// Package dashboard aggregates donation history into the figures each role's
// dashboard shows. Every function works on the slice it is given; callers
// fetch the records.
package dashboard

import (
	"fmt"

	"github.com/jredh-dev/foodrescue/internal/expiry"
	"github.com/jredh-dev/foodrescue/internal/gamification"
	"github.com/jredh-dev/foodrescue/internal/models"
	"github.com/jredh-dev/foodrescue/internal/rules"
)

// MealsPerKg converts saved kilograms into the meals figure on the admin view.
const MealsPerKg = 2

// Provider is the provider dashboard.
type Provider struct {
	TotalDonations int                `json:"total_donations"`
	MealsSaved     float64            `json:"meals_saved"`
	Points         int                `json:"points"`
	Gamification   gamification.State `json:"gamification"`
	Donations      []*models.Donation `json:"donations"`
}

// NGO is the NGO dashboard.
type NGO struct {
	Pickups      int                `json:"pickups"`
	FoodSaved    float64            `json:"food_saved"`
	Points       int                `json:"points"`
	Gamification gamification.State `json:"gamification"`
	Available    []*models.Donation `json:"available"`
	Accepted     []*models.Donation `json:"accepted"`
	Markers      []Marker           `json:"markers"`
}

// Marker is one pin on the NGO map.
type Marker struct {
	ID          string  `json:"id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
}

// Admin is the platform overview.
type Admin struct {
	TotalDonations   int                           `json:"total_donations"`
	TotalKg          float64                       `json:"total_kg"`
	MealsDistributed float64                       `json:"meals_distributed"`
	HighUrgency      int                           `json:"high_urgency"`
	ByStatus         map[models.DonationStatus]int `json:"by_status"`
}

// Builder turns donation slices into dashboards using the point awards and
// the shared scorer.
type Builder struct {
	awards rules.PointAwards
	scorer *gamification.Scorer
}

// NewBuilder creates a Builder.
func NewBuilder(awards rules.PointAwards, scorer *gamification.Scorer) *Builder {
	return &Builder{awards: awards, scorer: scorer}
}

// ProviderPoints is the provider point rule: a fixed award per donation.
func (b *Builder) ProviderPoints(donationCount int) int {
	return donationCount * b.awards.ProviderPerDonation
}

// NGOPoints is the NGO point rule: a fixed award per accepted pickup.
func (b *Builder) NGOPoints(pickups int) int {
	return pickups * b.awards.NGOPerPickup
}

// Provider builds the dashboard from everything the provider has donated.
func (b *Builder) Provider(donations []*models.Donation) (*Provider, error) {
	p := &Provider{
		TotalDonations: len(donations),
		Donations:      nonNil(donations),
	}
	for _, d := range donations {
		p.MealsSaved += d.Quantity
	}
	p.Points = b.ProviderPoints(p.TotalDonations)

	st, err := b.scorer.Score(p.Points)
	if err != nil {
		return nil, fmt.Errorf("score provider: %w", err)
	}
	p.Gamification = st
	return p, nil
}

// NGO builds the dashboard for ngo from the full donation list: what it has
// accepted, and what is still available to pick up.
func (b *Builder) NGO(ngo string, donations []*models.Donation) (*NGO, error) {
	n := &NGO{
		Available: []*models.Donation{},
		Accepted:  []*models.Donation{},
		Markers:   []Marker{},
	}
	for _, d := range donations {
		switch {
		case d.Status == models.StatusAccepted && d.AcceptedBy == ngo:
			n.Accepted = append(n.Accepted, d)
			n.FoodSaved += d.Quantity
		case d.Status == models.StatusAvailable:
			n.Available = append(n.Available, d)
			n.Markers = append(n.Markers, MarkerFor(d))
		}
	}
	n.Pickups = len(n.Accepted)
	n.Points = b.NGOPoints(n.Pickups)

	st, err := b.scorer.Score(n.Points)
	if err != nil {
		return nil, fmt.Errorf("score ngo: %w", err)
	}
	n.Gamification = st
	return n, nil
}

// MarkerFor builds the map pin for an available donation.
func MarkerFor(d *models.Donation) Marker {
	return Marker{
		ID:          d.ID,
		Lat:         d.Location.Lat,
		Lng:         d.Location.Lng,
		Title:       d.FoodType,
		Description: fmt.Sprintf("%gkg • %s", d.Quantity, d.ProviderName),
	}
}

// AdminStats summarises every donation on the platform.
func AdminStats(donations []*models.Donation) *Admin {
	a := &Admin{
		TotalDonations: len(donations),
		ByStatus:       make(map[models.DonationStatus]int, len(models.Statuses)),
	}
	for _, s := range models.Statuses {
		a.ByStatus[s] = 0
	}
	for _, d := range donations {
		a.TotalKg += d.Quantity
		if d.Urgency == expiry.High {
			a.HighUrgency++
		}
		a.ByStatus[d.Status]++
	}
	a.MealsDistributed = a.TotalKg * MealsPerKg
	return a
}

func nonNil(ds []*models.Donation) []*models.Donation {
	if ds == nil {
		return []*models.Donation{}
	}
	return ds
}

package donation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jredh-dev/foodrescue/internal/events"
	"github.com/jredh-dev/foodrescue/internal/expiry"
	"github.com/jredh-dev/foodrescue/internal/models"
)

// Publisher announces donation lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// CreateInput is what a provider submits for a new donation.
type CreateInput struct {
	ProviderID   string
	ProviderName string
	FoodType     string
	Quantity     float64
	Storage      expiry.StorageCondition
	PreparedAt   time.Time
	Location     models.Location
}

func (in CreateInput) validate() error {
	switch {
	case strings.TrimSpace(in.ProviderID) == "":
		return fmt.Errorf("%w: provider id is required", ErrInvalidInput)
	case strings.TrimSpace(in.FoodType) == "":
		return fmt.Errorf("%w: food type is required", ErrInvalidInput)
	case in.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	case in.Storage == "":
		return fmt.Errorf("%w: storage condition is required", ErrInvalidInput)
	case in.PreparedAt.IsZero():
		return fmt.Errorf("%w: preparation time is required", ErrInvalidInput)
	}
	return nil
}

// Service runs the donation workflows.
type Service struct {
	store     Store
	predictor *expiry.Predictor
	publisher Publisher
	now       func() time.Time
}

// NewService creates a Service. A nil publisher discards events; a nil clock
// means time.Now.
func NewService(store Store, predictor *expiry.Predictor, publisher Publisher, now func() time.Time) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, predictor: predictor, publisher: publisher, now: now}
}

// Create predicts the expiry for a new donation and stores it as available.
// The estimate is stored with the record and not recomputed later.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Donation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	est := s.predictor.Predict(in.FoodType, in.Storage, in.PreparedAt)
	now := s.now().UTC()
	d := &models.Donation{
		ID:           uuid.New().String(),
		ProviderID:   in.ProviderID,
		ProviderName: in.ProviderName,
		FoodType:     in.FoodType,
		Quantity:     in.Quantity,
		PreparedAt:   in.PreparedAt.UTC(),
		Storage:      in.Storage,
		Location:     in.Location,
		ExpiryHours:  est.RemainingHours,
		Urgency:      est.Urgency,
		Explanation:  est.Explanations,
		Status:       models.StatusAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateDonation(ctx, d); err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}

	s.publish(ctx, events.New(events.TypeCreated, d, in.ProviderName, now))
	return d, nil
}

// Accept marks an available donation as accepted by ngo.
func (s *Service) Accept(ctx context.Context, id, ngo string) (*models.Donation, error) {
	if strings.TrimSpace(ngo) == "" {
		return nil, fmt.Errorf("%w: ngo name is required", ErrInvalidInput)
	}
	now := s.now().UTC()
	d, err := s.store.AcceptDonation(ctx, id, ngo, now)
	if err != nil {
		return nil, fmt.Errorf("accept donation %s: %w", id, err)
	}

	s.publish(ctx, events.New(events.TypeAccepted, d, ngo, now))
	return d, nil
}

// Get returns a single donation.
func (s *Service) Get(ctx context.Context, id string) (*models.Donation, error) {
	return s.store.GetDonation(ctx, id)
}

// List returns donations matching f, newest first.
func (s *Service) List(ctx context.Context, f models.DonationFilter) ([]*models.Donation, error) {
	ds, err := s.store.ListDonations(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return ds, nil
}

// Preview computes an estimate without storing anything.
func (s *Service) Preview(foodType string, storage expiry.StorageCondition, preparedAt time.Time) expiry.Estimate {
	return s.predictor.Predict(foodType, storage, preparedAt)
}

// publish never fails the workflow; the record is already stored.
func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		slog.Warn("publish donation event failed", "type", e.Type, "donation_id", e.DonationID, "error", err)
	}
}

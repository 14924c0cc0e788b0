// Package docstore is the Firestore donation store used in production.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jredh-dev/foodrescue/internal/donation"
	"github.com/jredh-dev/foodrescue/internal/models"
)

// Collection holds one document per donation, keyed by donation ID.
const Collection = "donations"

// Options selects the Firebase project and database.
type Options struct {
	ProjectID       string
	CredentialsPath string // empty uses application default credentials
	DatabaseID      string // empty or "(default)" uses the default database
}

// Store is a Firestore-backed donation.Store.
type Store struct {
	client *firestore.Client
}

// Open connects to Firestore. When FIRESTORE_EMULATOR_HOST is set the client
// talks to the emulator instead.
func Open(ctx context.Context, o Options) (*Store, error) {
	var opts []option.ClientOption
	if o.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(o.CredentialsPath))
	}

	if o.DatabaseID != "" && o.DatabaseID != firestore.DefaultDatabaseID {
		client, err := firestore.NewClientWithDatabase(ctx, o.ProjectID, o.DatabaseID, opts...)
		if err != nil {
			return nil, fmt.Errorf("firestore client for database %s: %w", o.DatabaseID, err)
		}
		return New(client), nil
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: o.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return New(client), nil
}

// New wraps an existing client.
func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) donations() *firestore.CollectionRef {
	return s.client.Collection(Collection)
}

// CreateDonation writes d. It fails if a document with d.ID already exists.
func (s *Store) CreateDonation(ctx context.Context, d *models.Donation) error {
	if _, err := s.donations().Doc(d.ID).Create(ctx, d); err != nil {
		return fmt.Errorf("create %s: %w", d.ID, err)
	}
	return nil
}

// GetDonation reads a single donation.
func (s *Store) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	snap, err := s.donations().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, donation.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return decode(snap)
}

// ListDonations queries on the equality filters and sorts in memory, so no
// composite index is needed.
func (s *Store) ListDonations(ctx context.Context, f models.DonationFilter) ([]*models.Donation, error) {
	q := s.donations().Query
	if f.ProviderID != "" {
		q = q.Where("providerId", "==", f.ProviderID)
	}
	if f.Status != "" {
		q = q.Where("status", "==", string(f.Status))
	}
	if f.AcceptedBy != "" {
		q = q.Where("acceptedBy", "==", f.AcceptedBy)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*models.Donation
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list donations: %w", err)
		}
		d, err := decode(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// AcceptDonation flips available → accepted inside a transaction so two NGOs
// cannot both accept the same donation.
func (s *Store) AcceptDonation(ctx context.Context, id, ngo string, at time.Time) (*models.Donation, error) {
	ref := s.donations().Doc(id)
	var accepted *models.Donation

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return donation.ErrNotFound
			}
			return err
		}
		d, err := decode(snap)
		if err != nil {
			return err
		}
		if d.Status != models.StatusAvailable {
			return donation.ErrNotAvailable
		}

		d.Status = models.StatusAccepted
		d.AcceptedBy = ngo
		d.UpdatedAt = at
		accepted = d
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(models.StatusAccepted)},
			{Path: "acceptedBy", Value: ngo},
			{Path: "updatedAt", Value: at},
		})
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

func decode(snap *firestore.DocumentSnapshot) (*models.Donation, error) {
	var d models.Donation
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decode %s: %w", snap.Ref.ID, err)
	}
	d.ID = snap.Ref.ID
	return &d, nil
}

var _ donation.Store = (*Store)(nil)

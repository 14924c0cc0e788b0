package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jredh-dev/foodrescue/internal/donation"
	"github.com/jredh-dev/foodrescue/internal/expiry"
	"github.com/jredh-dev/foodrescue/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := t.TempDir() + "/test.db"
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(path)
	})
	return db
}

func testDonation(id, provider string, created time.Time) *models.Donation {
	return &models.Donation{
		ID:           id,
		ProviderID:   provider,
		ProviderName: "Provider " + provider,
		FoodType:     "Cooked Meal",
		Quantity:     5,
		PreparedAt:   created.Add(-2 * time.Hour),
		Storage:      expiry.Refrigerated,
		Location:     models.Location{Lat: 12.97, Lng: 77.59, Address: "MG Road"},
		ExpiryHours:  22,
		Urgency:      expiry.Low,
		Explanation: []expiry.Explanation{
			{Factor: expiry.FactorFoodType, Impact: "Base shelf life for Cooked Meal is 6 hours.", Score: 6},
			{Factor: expiry.FactorStorage, Impact: "Refrigerated storage increases shelf life by 4x.", Score: 4},
			{Factor: expiry.FactorDecay, Impact: "2.0 hours have passed since preparation.", Score: -2},
		},
		Status:    models.StatusAvailable,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestDonationCreateAndGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	d := testDonation("don-1", "prov-1", now)
	if err := db.CreateDonation(ctx, d); err != nil {
		t.Fatalf("create donation: %v", err)
	}

	got, err := db.GetDonation(ctx, "don-1")
	if err != nil {
		t.Fatalf("get donation: %v", err)
	}
	if got.ProviderID != "prov-1" || got.FoodType != "Cooked Meal" || got.Storage != expiry.Refrigerated {
		t.Errorf("get donation returned %+v", got)
	}
	if got.Location.Address != "MG Road" || got.Location.Lat != 12.97 {
		t.Errorf("location = %+v", got.Location)
	}
	if len(got.Explanation) != 3 || got.Explanation[2].Score != -2 {
		t.Errorf("explanation = %+v", got.Explanation)
	}
	if !got.CreatedAt.Equal(now) || !got.PreparedAt.Equal(now.Add(-2*time.Hour)) {
		t.Errorf("times = created %v prepared %v", got.CreatedAt, got.PreparedAt)
	}

	if _, err := db.GetDonation(ctx, "missing"); !errors.Is(err, donation.ErrNotFound) {
		t.Errorf("missing donation: err = %v, want ErrNotFound", err)
	}
}

func TestListDonations_Filters(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i, d := range []*models.Donation{
		testDonation("a", "prov-1", base),
		testDonation("b", "prov-1", base.Add(time.Minute)),
		testDonation("c", "prov-2", base.Add(2*time.Minute)),
	} {
		if err := db.CreateDonation(ctx, d); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	if _, err := db.AcceptDonation(ctx, "c", "Food Bank", base.Add(3*time.Minute)); err != nil {
		t.Fatalf("accept: %v", err)
	}

	tests := []struct {
		name   string
		filter models.DonationFilter
		want   []string
	}{
		{"all newest first", models.DonationFilter{}, []string{"c", "b", "a"}},
		{"by provider", models.DonationFilter{ProviderID: "prov-1"}, []string{"b", "a"}},
		{"available", models.DonationFilter{Status: models.StatusAvailable}, []string{"b", "a"}},
		{"accepted by ngo", models.DonationFilter{Status: models.StatusAccepted, AcceptedBy: "Food Bank"}, []string{"c"}},
		{"no match", models.DonationFilter{ProviderID: "prov-9"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListDonations(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			var ids []string
			for _, d := range got {
				ids = append(ids, d.ID)
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Errorf("ids = %v, want %v", ids, tt.want)
					break
				}
			}
		})
	}
}

func TestAcceptDonation(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := db.CreateDonation(ctx, testDonation("don-1", "prov-1", now)); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := db.AcceptDonation(ctx, "don-1", "Helping Hands", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got.Status != models.StatusAccepted || got.AcceptedBy != "Helping Hands" {
		t.Errorf("accepted donation = %+v", got)
	}
	if got.ExpiryHours != 22 || got.Urgency != expiry.Low {
		t.Errorf("accept must not touch the stored estimate, got %v/%s", got.ExpiryHours, got.Urgency)
	}

	if _, err := db.AcceptDonation(ctx, "don-1", "Other NGO", now); !errors.Is(err, donation.ErrNotAvailable) {
		t.Errorf("second accept: err = %v, want ErrNotAvailable", err)
	}
	if _, err := db.AcceptDonation(ctx, "missing", "Other NGO", now); !errors.Is(err, donation.ErrNotFound) {
		t.Errorf("missing accept: err = %v, want ErrNotFound", err)
	}
}

// Package database is the SQLite donation store used for local development
// and tests.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jredh-dev/foodrescue/internal/donation"
	"github.com/jredh-dev/foodrescue/internal/expiry"
	"github.com/jredh-dev/foodrescue/internal/models"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS donations (
	id            TEXT PRIMARY KEY,
	provider_id   TEXT NOT NULL,
	provider_name TEXT NOT NULL DEFAULT '',
	food_type     TEXT NOT NULL,
	quantity      REAL NOT NULL,
	prepared_at   DATETIME NOT NULL,
	storage       TEXT NOT NULL,
	lat           REAL NOT NULL DEFAULT 0,
	lng           REAL NOT NULL DEFAULT 0,
	address       TEXT NOT NULL DEFAULT '',
	expiry_hours  REAL NOT NULL,
	urgency       TEXT NOT NULL,
	explanation   TEXT NOT NULL DEFAULT '[]',
	status        TEXT NOT NULL DEFAULT 'available',
	accepted_by   TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_donations_provider_id ON donations(provider_id);
CREATE INDEX IF NOT EXISTS idx_donations_status      ON donations(status);
CREATE INDEX IF NOT EXISTS idx_donations_accepted_by ON donations(accepted_by);
CREATE INDEX IF NOT EXISTS idx_donations_created_at  ON donations(created_at);
`

// Open creates or opens the SQLite database at path and applies the schema.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer, many readers.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close shuts down the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

const donationColumns = `id, provider_id, provider_name, food_type, quantity, prepared_at, storage,
	lat, lng, address, expiry_hours, urgency, explanation, status, accepted_by, created_at, updated_at`

// scanDonation scans a row into a Donation.
func scanDonation(row interface{ Scan(...any) error }) (*models.Donation, error) {
	d := &models.Donation{}
	var storage, urgency, status, explanation string
	err := row.Scan(
		&d.ID, &d.ProviderID, &d.ProviderName, &d.FoodType, &d.Quantity, &d.PreparedAt, &storage,
		&d.Location.Lat, &d.Location.Lng, &d.Location.Address, &d.ExpiryHours, &urgency, &explanation,
		&status, &d.AcceptedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Storage = expiry.StorageCondition(storage)
	d.Urgency = expiry.Urgency(urgency)
	d.Status = models.DonationStatus(status)
	if err := json.Unmarshal([]byte(explanation), &d.Explanation); err != nil {
		return nil, fmt.Errorf("decode explanation for %s: %w", d.ID, err)
	}
	return d, nil
}

// CreateDonation inserts a new donation.
func (db *DB) CreateDonation(ctx context.Context, d *models.Donation) error {
	explanation, err := json.Marshal(d.Explanation)
	if err != nil {
		return fmt.Errorf("encode explanation: %w", err)
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO donations (`+donationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.ProviderID, d.ProviderName, d.FoodType, d.Quantity, d.PreparedAt, string(d.Storage),
		d.Location.Lat, d.Location.Lng, d.Location.Address, d.ExpiryHours, string(d.Urgency), string(explanation),
		string(d.Status), d.AcceptedBy, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

// GetDonation looks up a donation by ID.
func (db *DB) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	d, err := scanDonation(db.conn.QueryRowContext(ctx,
		`SELECT `+donationColumns+` FROM donations WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, donation.ErrNotFound
	}
	return d, err
}

// ListDonations returns donations matching f, newest first.
func (db *DB) ListDonations(ctx context.Context, f models.DonationFilter) ([]*models.Donation, error) {
	var where []string
	var args []any
	if f.ProviderID != "" {
		where = append(where, "provider_id = ?")
		args = append(args, f.ProviderID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.AcceptedBy != "" {
		where = append(where, "accepted_by = ?")
		args = append(args, f.AcceptedBy)
	}

	q := `SELECT ` + donationColumns + ` FROM donations`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id ASC`

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donations []*models.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		donations = append(donations, d)
	}
	return donations, rows.Err()
}

// AcceptDonation marks an available donation as accepted by ngo.
func (db *DB) AcceptDonation(ctx context.Context, id, ngo string, at time.Time) (*models.Donation, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE donations SET status = ?, accepted_by = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(models.StatusAccepted), ngo, at, id, string(models.StatusAvailable),
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Either missing or in another state; GetDonation tells which.
		if _, err := db.GetDonation(ctx, id); err != nil {
			return nil, err
		}
		return nil, donation.ErrNotAvailable
	}
	return db.GetDonation(ctx, id)
}

var _ donation.Store = (*DB)(nil)

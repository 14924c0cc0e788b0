// Package rules loads the tunable tables behind expiry prediction and
// gamification from an optional TOML file.
//
// Example rules.toml:
//
//	badge_cost = 15
//
//	[points]
//	provider_per_donation = 2
//	ngo_per_pickup = 5
//
//	[expiry]
//	default_base_hours = 12
//	high_below_hours = 4
//	medium_below_hours = 12
//
//	[expiry.base_hours]
//	"Cooked Meal" = 6
//
//	[expiry.storage_factors]
//	"Refrigerated" = 4.0
//
//	[[levels]]
//	name = "Food Supporter"
//	min = 0
//	max = 99
//
//	[[levels]]
//	name = "Food Saver"
//	min = 100 # no max: unbounded
package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"github.com/jredh-dev/foodrescue/internal/expiry"
	"github.com/jredh-dev/foodrescue/internal/gamification"
)

// DefaultBadgeCost is the points needed per badge when the rules file does
// not set one. Every dashboard shares this single value.
const DefaultBadgeCost = 15

var ErrInvalidRules = errors.New("invalid rules")

// PointAwards are the per-role point rules used to build a point total.
type PointAwards struct {
	ProviderPerDonation int `json:"provider_per_donation"`
	NGOPerPickup        int `json:"ngo_per_pickup"`
}

// Rules is the complete configuration surface of the core.
type Rules struct {
	Expiry    expiry.Profile
	Levels    gamification.Table
	BadgeCost int
	Points    PointAwards
}

// Default returns the built-in rules.
func Default() *Rules {
	return &Rules{
		Expiry:    expiry.DefaultProfile(),
		Levels:    gamification.DefaultTable(),
		BadgeCost: DefaultBadgeCost,
		Points:    PointAwards{ProviderPerDonation: 2, NGOPerPickup: 5},
	}
}

// Validate checks every table. A gap in the level table is an error here so
// the scorer never has to rely on its first-tier fallback.
func (r *Rules) Validate() error {
	if err := r.Expiry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}
	if err := r.Levels.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}
	if r.BadgeCost <= 0 {
		return fmt.Errorf("%w: badge_cost must be positive, got %d", ErrInvalidRules, r.BadgeCost)
	}
	if r.Points.ProviderPerDonation < 0 || r.Points.NGOPerPickup < 0 {
		return fmt.Errorf("%w: point awards must not be negative", ErrInvalidRules)
	}
	return nil
}

// Scorer builds a gamification scorer from the level table and badge cost.
func (r *Rules) Scorer() (*gamification.Scorer, error) {
	return gamification.NewScorer(r.Levels, r.BadgeCost)
}

type fileRules struct {
	BadgeCost *int `toml:"badge_cost"`
	Points    struct {
		ProviderPerDonation *int `toml:"provider_per_donation"`
		NGOPerPickup        *int `toml:"ngo_per_pickup"`
	} `toml:"points"`
	Expiry struct {
		DefaultBaseHours     *int               `toml:"default_base_hours"`
		DefaultStorageFactor *float64           `toml:"default_storage_factor"`
		HighBelowHours       *float64           `toml:"high_below_hours"`
		MediumBelowHours     *float64           `toml:"medium_below_hours"`
		BaseHours            map[string]int     `toml:"base_hours"`
		StorageFactors       map[string]float64 `toml:"storage_factors"`
	} `toml:"expiry"`
	Levels []fileLevel `toml:"levels"`
}

type fileLevel struct {
	Name  string `toml:"name"`
	Min   int    `toml:"min"`
	Max   *int   `toml:"max"`
	Style string `toml:"style"`
}

// Load reads rules from path. An empty path returns the defaults. Keys the
// file leaves out keep their default; a table that is present replaces the
// default table entirely. The result is validated.
func Load(path string) (*Rules, error) {
	r := Default()
	if path == "" {
		return r, nil
	}

	var f fileRules
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("decode rules %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidRules, path, strings.Join(keys, ", "))
	}

	f.apply(r)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (f *fileRules) apply(r *Rules) {
	if f.BadgeCost != nil {
		r.BadgeCost = *f.BadgeCost
	}
	if f.Points.ProviderPerDonation != nil {
		r.Points.ProviderPerDonation = *f.Points.ProviderPerDonation
	}
	if f.Points.NGOPerPickup != nil {
		r.Points.NGOPerPickup = *f.Points.NGOPerPickup
	}

	e := &r.Expiry
	if f.Expiry.DefaultBaseHours != nil {
		e.DefaultBaseHours = *f.Expiry.DefaultBaseHours
	}
	if f.Expiry.DefaultStorageFactor != nil {
		e.DefaultFactor = *f.Expiry.DefaultStorageFactor
	}
	if f.Expiry.HighBelowHours != nil {
		e.Thresholds.High = *f.Expiry.HighBelowHours
	}
	if f.Expiry.MediumBelowHours != nil {
		e.Thresholds.Medium = *f.Expiry.MediumBelowHours
	}
	if len(f.Expiry.BaseHours) > 0 {
		e.BaseHours = make(map[string]int, len(f.Expiry.BaseHours))
		for name, h := range f.Expiry.BaseHours {
			e.BaseHours[norm.NFC.String(strings.TrimSpace(name))] = h
		}
	}
	if len(f.Expiry.StorageFactors) > 0 {
		e.StorageFactors = make(map[expiry.StorageCondition]float64, len(f.Expiry.StorageFactors))
		for cond, v := range f.Expiry.StorageFactors {
			e.StorageFactors[expiry.StorageCondition(cond)] = v
		}
	}

	if len(f.Levels) > 0 {
		table := make(gamification.Table, len(f.Levels))
		for i, l := range f.Levels {
			upper := gamification.Unbounded
			if l.Max != nil {
				upper = *l.Max
			}
			table[i] = gamification.Level{Name: l.Name, Min: l.Min, Max: upper, Style: l.Style}
		}
		r.Levels = table
	}
}

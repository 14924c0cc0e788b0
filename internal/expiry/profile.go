// Package expiry estimates the remaining shelf life of a food donation.
package expiry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// StorageCondition is how a donation is being kept until pickup.
type StorageCondition string

const (
	RoomTemp     StorageCondition = "Room Temp"
	Refrigerated StorageCondition = "Refrigerated"
	Frozen       StorageCondition = "Frozen"
)

// ErrInvalidProfile is wrapped by every Profile validation failure.
var ErrInvalidProfile = errors.New("invalid expiry profile")

// Thresholds are the urgency cut-offs in hours. Both are strict upper bounds:
// a remaining value equal to High is MEDIUM, equal to Medium is LOW.
type Thresholds struct {
	High   float64
	Medium float64
}

// Profile holds the tables the predictor reads.
type Profile struct {
	BaseHours        map[string]int
	DefaultBaseHours int
	StorageFactors   map[StorageCondition]float64
	DefaultFactor    float64
	Thresholds       Thresholds
}

// DefaultProfile returns the built-in food and storage tables.
func DefaultProfile() Profile {
	return Profile{
		BaseHours: map[string]int{
			"Cooked Meal":         6,
			"Bakery Items":        24,
			"Fruits & Vegetables": 48,
			"Dairy Products":      12,
			"Canned Goods":        720,
			"Meats & Poultry":     4,
		},
		DefaultBaseHours: 12,
		StorageFactors: map[StorageCondition]float64{
			RoomTemp:     1.0,
			Refrigerated: 4.0,
			Frozen:       10.0,
		},
		DefaultFactor: 1.0,
		Thresholds:    Thresholds{High: 4, Medium: 12},
	}
}

// FoodTypes returns the known food categories in a stable order.
func (p Profile) FoodTypes() []string {
	order := []string{"Cooked Meal", "Bakery Items", "Fruits & Vegetables", "Dairy Products", "Canned Goods", "Meats & Poultry"}
	var out []string
	seen := make(map[string]bool)
	for _, name := range order {
		if _, ok := p.BaseHours[name]; ok {
			out = append(out, name)
			seen[name] = true
		}
	}
	var extra []string
	for name := range p.BaseHours {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Validate checks that every table value can produce a sane estimate.
func (p Profile) Validate() error {
	if p.DefaultBaseHours <= 0 {
		return fmt.Errorf("%w: default base hours must be positive, got %d", ErrInvalidProfile, p.DefaultBaseHours)
	}
	for name, h := range p.BaseHours {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty food type name", ErrInvalidProfile)
		}
		if h <= 0 {
			return fmt.Errorf("%w: base hours for %q must be positive, got %d", ErrInvalidProfile, name, h)
		}
	}
	if p.DefaultFactor < 1.0 {
		return fmt.Errorf("%w: default storage factor must be >= 1.0, got %g", ErrInvalidProfile, p.DefaultFactor)
	}
	for cond, f := range p.StorageFactors {
		if f < 1.0 {
			return fmt.Errorf("%w: storage factor for %q must be >= 1.0, got %g", ErrInvalidProfile, cond, f)
		}
	}
	if p.Thresholds.High <= 0 || p.Thresholds.Medium < p.Thresholds.High {
		return fmt.Errorf("%w: thresholds must satisfy 0 < high <= medium, got high=%g medium=%g",
			ErrInvalidProfile, p.Thresholds.High, p.Thresholds.Medium)
	}
	return nil
}

// baseHours looks up a food type. Surrounding whitespace is ignored and the
// name is compared in NFC so "Fruits & Vegetables" typed on a phone keyboard
// still matches.
func (p Profile) baseHours(foodType string) int {
	key := norm.NFC.String(strings.TrimSpace(foodType))
	if h, ok := p.BaseHours[key]; ok {
		return h
	}
	return p.DefaultBaseHours
}

func (p Profile) factor(storage StorageCondition) float64 {
	if f, ok := p.StorageFactors[storage]; ok {
		return f
	}
	return p.DefaultFactor
}

// Package gamification turns accumulated points into impact levels and badges.
package gamification

import (
	"errors"
	"fmt"
)

// Unbounded is the Max of the last tier.
const Unbounded = -1

var (
	ErrInvalidTable     = errors.New("invalid impact level table")
	ErrNegativePoints   = errors.New("points must not be negative")
	ErrInvalidBadgeCost = errors.New("badge cost must be positive")
)

// Level is one impact tier. Min and Max are inclusive.
type Level struct {
	Name  string `json:"name"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Style string `json:"style"`
}

// Contains reports whether points fall inside the tier.
func (l Level) Contains(points int) bool {
	return points >= l.Min && (l.Max == Unbounded || points <= l.Max)
}

// Table is an ordered list of tiers covering [0, ∞).
type Table []Level

// DefaultTable returns the built-in impact tiers.
func DefaultTable() Table {
	return Table{
		{Name: "🌱 Food Supporter", Min: 0, Max: 99, Style: "text-emerald-500"},
		{Name: "🥗 Food Saver", Min: 100, Max: 299, Style: "text-sky-500"},
		{Name: "🏅 Hunger Hero", Min: 300, Max: 699, Style: "text-indigo-500"},
		{Name: "🥇 Zero Hunger Champion", Min: 700, Max: Unbounded, Style: "text-amber-500"},
	}
}

// Validate checks that the tiers are contiguous, non-overlapping, start at
// zero and that only the last tier is unbounded.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no tiers", ErrInvalidTable)
	}
	if t[0].Min != 0 {
		return fmt.Errorf("%w: first tier %q starts at %d, want 0", ErrInvalidTable, t[0].Name, t[0].Min)
	}
	for i, l := range t {
		if l.Name == "" {
			return fmt.Errorf("%w: tier %d has no name", ErrInvalidTable, i)
		}
		last := i == len(t)-1
		if last {
			if l.Max != Unbounded {
				return fmt.Errorf("%w: last tier %q must be unbounded", ErrInvalidTable, l.Name)
			}
		} else {
			if l.Max == Unbounded {
				return fmt.Errorf("%w: only the last tier may be unbounded, %q is not last", ErrInvalidTable, l.Name)
			}
			if l.Max < l.Min {
				return fmt.Errorf("%w: tier %q has max %d below min %d", ErrInvalidTable, l.Name, l.Max, l.Min)
			}
		}
		if i > 0 {
			prev := t[i-1]
			if l.Min != prev.Max+1 {
				return fmt.Errorf("%w: tier %q starts at %d, want %d after %q", ErrInvalidTable, l.Name, l.Min, prev.Max+1, prev.Name)
			}
		}
	}
	return nil
}

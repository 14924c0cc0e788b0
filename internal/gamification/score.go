package gamification

import "fmt"

// State is what a dashboard renders for a point total. It is derived on
// every call and never stored.
type State struct {
	Points            int     `json:"points"`
	CurrentLevel      Level   `json:"current_level"`
	NextLevel         *Level  `json:"next_level,omitempty"`
	ProgressPercent   float64 `json:"progress_percent"`
	BadgeCount        int     `json:"badge_count"`
	BadgeCost         int     `json:"badge_cost"`
	PointsToNextBadge int     `json:"points_to_next_badge"`
}

// Score derives the gamification state for points against table.
func Score(table Table, points, badgeCost int) (State, error) {
	if points < 0 {
		return State{}, fmt.Errorf("%w: got %d", ErrNegativePoints, points)
	}
	if badgeCost <= 0 {
		return State{}, fmt.Errorf("%w: got %d", ErrInvalidBadgeCost, badgeCost)
	}
	if len(table) == 0 {
		return State{}, fmt.Errorf("%w: no tiers", ErrInvalidTable)
	}

	// A validated table always matches; index 0 covers a gap.
	idx := 0
	for i, l := range table {
		if l.Contains(points) {
			idx = i
			break
		}
	}
	current := table[idx]

	st := State{
		Points:            points,
		CurrentLevel:      current,
		ProgressPercent:   100,
		BadgeCount:        points / badgeCost,
		BadgeCost:         badgeCost,
		PointsToNextBadge: badgeCost - points%badgeCost,
	}

	if idx+1 < len(table) {
		next := table[idx+1]
		st.NextLevel = &next
		st.ProgressPercent = progress(points, current.Min, next.Min)
	}
	return st, nil
}

func progress(points, from, to int) float64 {
	width := to - from
	if width <= 0 {
		return 100
	}
	pct := float64(points-from) * 100 / float64(width)
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// Scorer pairs a validated table with the system-wide badge cost.
type Scorer struct {
	table     Table
	badgeCost int
}

// NewScorer validates table and badgeCost.
func NewScorer(table Table, badgeCost int) (*Scorer, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if badgeCost <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBadgeCost, badgeCost)
	}
	return &Scorer{table: table, badgeCost: badgeCost}, nil
}

// Score derives the state for points.
func (s *Scorer) Score(points int) (State, error) {
	return Score(s.table, points, s.badgeCost)
}

// BadgeCost returns the configured points per badge.
func (s *Scorer) BadgeCost() int { return s.badgeCost }

// Table returns the configured tiers.
func (s *Scorer) Table() Table { return s.table }

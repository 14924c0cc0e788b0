package gamification

import (
	"errors"
	"reflect"
	"testing"
)

func TestScore_Zero(t *testing.T) {
	st, err := Score(DefaultTable(), 0, 15)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if st.CurrentLevel.Name != DefaultTable()[0].Name {
		t.Errorf("level = %q, want first tier", st.CurrentLevel.Name)
	}
	if st.ProgressPercent != 0 {
		t.Errorf("progress = %v, want 0", st.ProgressPercent)
	}
	if st.BadgeCount != 0 {
		t.Errorf("badges = %d, want 0", st.BadgeCount)
	}
	if st.PointsToNextBadge != 15 {
		t.Errorf("to next badge = %d, want 15", st.PointsToNextBadge)
	}
}

func TestScore_Levels(t *testing.T) {
	table := DefaultTable()
	tests := []struct {
		points    int
		wantLevel string
		wantNext  string
		wantPct   float64
	}{
		{50, "🌱 Food Supporter", "🥗 Food Saver", 50},
		{99, "🌱 Food Supporter", "🥗 Food Saver", 99},
		{100, "🥗 Food Saver", "🏅 Hunger Hero", 0},
		{200, "🥗 Food Saver", "🏅 Hunger Hero", 50},
		{300, "🏅 Hunger Hero", "🥇 Zero Hunger Champion", 0},
		{500, "🏅 Hunger Hero", "🥇 Zero Hunger Champion", 50},
		{700, "🥇 Zero Hunger Champion", "", 100},
		{5000, "🥇 Zero Hunger Champion", "", 100},
	}

	for _, tt := range tests {
		st, err := Score(table, tt.points, 10)
		if err != nil {
			t.Fatalf("score(%d): %v", tt.points, err)
		}
		if st.CurrentLevel.Name != tt.wantLevel {
			t.Errorf("score(%d) level = %q, want %q", tt.points, st.CurrentLevel.Name, tt.wantLevel)
		}
		next := ""
		if st.NextLevel != nil {
			next = st.NextLevel.Name
		}
		if next != tt.wantNext {
			t.Errorf("score(%d) next = %q, want %q", tt.points, next, tt.wantNext)
		}
		if st.ProgressPercent != tt.wantPct {
			t.Errorf("score(%d) progress = %v, want %v", tt.points, st.ProgressPercent, tt.wantPct)
		}
	}
}

func TestScore_Badges(t *testing.T) {
	tests := []struct {
		points, cost int
		wantBadges   int
		wantToNext   int
	}{
		{45, 15, 3, 15},
		{44, 15, 2, 1},
		{46, 15, 3, 14},
		{9, 10, 0, 1},
		{10, 10, 1, 10},
	}
	for _, tt := range tests {
		st, err := Score(DefaultTable(), tt.points, tt.cost)
		if err != nil {
			t.Fatalf("score(%d, %d): %v", tt.points, tt.cost, err)
		}
		if st.BadgeCount != tt.wantBadges {
			t.Errorf("score(%d, %d) badges = %d, want %d", tt.points, tt.cost, st.BadgeCount, tt.wantBadges)
		}
		if st.PointsToNextBadge != tt.wantToNext {
			t.Errorf("score(%d, %d) to next = %d, want %d", tt.points, tt.cost, st.PointsToNextBadge, tt.wantToNext)
		}
	}
}

func TestScore_ContractViolations(t *testing.T) {
	if _, err := Score(DefaultTable(), -1, 15); !errors.Is(err, ErrNegativePoints) {
		t.Errorf("negative points: err = %v, want ErrNegativePoints", err)
	}
	if _, err := Score(DefaultTable(), 10, 0); !errors.Is(err, ErrInvalidBadgeCost) {
		t.Errorf("zero cost: err = %v, want ErrInvalidBadgeCost", err)
	}
	if _, err := Score(nil, 10, 15); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("empty table: err = %v, want ErrInvalidTable", err)
	}
}

func TestScore_GapFallsBackToFirstTier(t *testing.T) {
	gappy := Table{
		{Name: "a", Min: 0, Max: 9},
		{Name: "b", Min: 20, Max: Unbounded},
	}
	st, err := Score(gappy, 15, 10)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if st.CurrentLevel.Name != "a" {
		t.Errorf("level = %q, want a", st.CurrentLevel.Name)
	}
	if st.NextLevel == nil || st.NextLevel.Name != "b" {
		t.Errorf("next = %+v, want b", st.NextLevel)
	}
	if st.ProgressPercent != 75 {
		t.Errorf("progress = %v, want 75", st.ProgressPercent)
	}
}

func TestScore_Idempotent(t *testing.T) {
	a, _ := Score(DefaultTable(), 321, 15)
	b, _ := Score(DefaultTable(), 321, 15)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated scores differ: %+v vs %+v", a, b)
	}
}

func TestTableValidate(t *testing.T) {
	if err := DefaultTable().Validate(); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}

	tests := []struct {
		name  string
		table Table
	}{
		{"empty", Table{}},
		{"does not start at zero", Table{{Name: "a", Min: 1, Max: Unbounded}}},
		{"gap", Table{{Name: "a", Min: 0, Max: 9}, {Name: "b", Min: 11, Max: Unbounded}}},
		{"overlap", Table{{Name: "a", Min: 0, Max: 10}, {Name: "b", Min: 10, Max: Unbounded}}},
		{"bounded last", Table{{Name: "a", Min: 0, Max: 9}, {Name: "b", Min: 10, Max: 20}}},
		{"unbounded middle", Table{{Name: "a", Min: 0, Max: Unbounded}, {Name: "b", Min: 0, Max: Unbounded}}},
		{"max below min", Table{{Name: "a", Min: 0, Max: -5}, {Name: "b", Min: -4, Max: Unbounded}}},
		{"unnamed", Table{{Min: 0, Max: Unbounded}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.table.Validate(); !errors.Is(err, ErrInvalidTable) {
				t.Errorf("Validate() = %v, want ErrInvalidTable", err)
			}
		})
	}
}

func TestNewScorer(t *testing.T) {
	s, err := NewScorer(DefaultTable(), 15)
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	st, err := s.Score(45)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if st.BadgeCount != 3 || st.BadgeCost != 15 {
		t.Errorf("state = %+v", st)
	}

	if _, err := NewScorer(Table{{Name: "a", Min: 5, Max: Unbounded}}, 15); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("gappy table: err = %v", err)
	}
	if _, err := NewScorer(DefaultTable(), -3); !errors.Is(err, ErrInvalidBadgeCost) {
		t.Errorf("negative cost: err = %v", err)
	}
}

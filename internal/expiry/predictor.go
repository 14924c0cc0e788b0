package expiry

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Urgency is the pickup priority derived from remaining hours.
type Urgency string

const (
	Low    Urgency = "LOW"
	Medium Urgency = "MEDIUM"
	High   Urgency = "HIGH"
)

// Explanation factor names, in display order.
const (
	FactorFoodType = "Food Type Sensitivity"
	FactorStorage  = "Storage Optimization"
	FactorDecay    = "Freshness Decay"
)

// Explanation is one line of the trail shown next to an estimate.
type Explanation struct {
	Factor string  `json:"factor" firestore:"factor"`
	Impact string  `json:"impact" firestore:"impact"`
	Score  float64 `json:"score" firestore:"score"`
}

// Estimate is the result of a prediction. It is stored with the donation
// when the donation is created and never recomputed.
type Estimate struct {
	RemainingHours float64       `json:"remaining_hours"`
	Urgency        Urgency       `json:"urgency"`
	Explanations   []Explanation `json:"explanations"`
}

// Predictor computes estimates against a profile and a clock.
type Predictor struct {
	profile Profile
	now     func() time.Time
}

// NewPredictor creates a Predictor. A nil clock means time.Now.
func NewPredictor(profile Profile, now func() time.Time) *Predictor {
	if now == nil {
		now = time.Now
	}
	return &Predictor{profile: profile, now: now}
}

// Profile returns the tables the predictor was built with.
func (p *Predictor) Profile() Profile {
	return p.profile
}

// Predict estimates shelf life as of the predictor's current time.
// The clock is read exactly once.
func (p *Predictor) Predict(foodType string, storage StorageCondition, preparedAt time.Time) Estimate {
	return PredictAt(p.profile, p.now(), foodType, storage, preparedAt)
}

// PredictAt estimates shelf life as of now. Unknown food types and storage
// conditions fall back to the profile defaults; it never fails.
func PredictAt(profile Profile, now time.Time, foodType string, storage StorageCondition, preparedAt time.Time) Estimate {
	base := profile.baseHours(foodType)
	multiplier := profile.factor(storage)

	total := float64(base) * multiplier
	// preparedAt in the future yields a negative elapsed value; left as is.
	elapsed := now.Sub(preparedAt).Hours()
	remaining := roundTenth(math.Max(0, total-elapsed))

	return Estimate{
		RemainingHours: remaining,
		Urgency:        profile.Thresholds.Classify(remaining),
		Explanations: []Explanation{
			{
				Factor: FactorFoodType,
				Impact: fmt.Sprintf("Base shelf life for %s is %d hours.", foodType, base),
				Score:  float64(base),
			},
			{
				Factor: FactorStorage,
				Impact: fmt.Sprintf("%s storage increases shelf life by %sx.", storage, strconv.FormatFloat(multiplier, 'f', -1, 64)),
				Score:  multiplier,
			},
			{
				Factor: FactorDecay,
				Impact: fmt.Sprintf("%.1f hours have passed since preparation.", elapsed),
				Score:  -elapsed,
			},
		},
	}
}

// Classify maps remaining hours to an urgency tier. First match wins and
// both comparisons are strict.
func (t Thresholds) Classify(remaining float64) Urgency {
	switch {
	case remaining < t.High:
		return High
	case remaining < t.Medium:
		return Medium
	default:
		return Low
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

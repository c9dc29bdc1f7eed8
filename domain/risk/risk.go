// Package risk buckets churn scores into actionable tiers.
package risk

// Tier labels a score bucket.
type Tier string

const (
	TierHigh   Tier = "High"
	TierMedium Tier = "Medium"
	TierLow    Tier = "Low"
)

// Thresholds are the tier cut points. A score on a boundary belongs to the
// higher tier.
type Thresholds struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
}

// DefaultThresholds mirrors the retention team's standing definition of
// high and medium churn risk.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 0.75, Medium: 0.5}
}

// Classify maps a score to its tier, checking the high cut first.
func (t Thresholds) Classify(score float64) Tier {
	switch {
	case score >= t.High:
		return TierHigh
	case score >= t.Medium:
		return TierMedium
	default:
		return TierLow
	}
}

// Counts tallies scores per tier.
func (t Thresholds) Counts(scores []float64) map[Tier]int {
	counts := map[Tier]int{TierHigh: 0, TierMedium: 0, TierLow: 0}
	for _, s := range scores {
		counts[t.Classify(s)]++
	}
	return counts
}

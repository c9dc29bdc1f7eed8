package eval

import (
	"sort"
	"strconv"
)

// Weight pairs a feature name with a non-negative score, used both for
// impurity importances and mean-absolute attributions.
type Weight struct {
	Name  string  `json:"feature"`
	Score float64 `json:"score"`
}

// TopWeights pairs names with scores, sorts descending by score and keeps at
// most k entries. When the name list does not match the score vector the
// names are replaced with positional placeholders instead of failing.
func TopWeights(names []string, scores []float64, k int) []Weight {
	if len(names) != len(scores) {
		names = PlaceholderNames(len(scores))
	}
	weights := make([]Weight, len(scores))
	for i, s := range scores {
		weights[i] = Weight{Name: names[i], Score: s}
	}
	sort.SliceStable(weights, func(a, b int) bool { return weights[a].Score > weights[b].Score })
	if k > 0 && len(weights) > k {
		weights = weights[:k]
	}
	return weights
}

// PlaceholderNames yields "Feature 0" .. "Feature n-1" for when real names
// cannot be recovered.
func PlaceholderNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "Feature " + strconv.Itoa(i)
	}
	return names
}

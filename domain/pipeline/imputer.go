// Package pipeline implements the reusable preprocessing transform and the
// fitted pipeline artifact: medianimpute+scale for numeric columns,
// mode-impute+one-hot for categorical columns, composed with a tree-ensemble
// estimator. All fit-time statistics are frozen at Fit and reused unchanged
// for every later Transform.
package pipeline

import (
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"

	"churnscope/domain/tabular"
)

// MedianImputer replaces missing numeric cells with the column median
// computed from the fit data only.
type MedianImputer struct {
	Median float64
	Fitted bool
}

// Fit computes the median over the parseable, non-missing cells.
func (m *MedianImputer) Fit(values []string) {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if tabular.IsMissing(v) {
			continue
		}
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			nums = append(nums, x)
		}
	}
	if med, err := stats.Median(nums); err == nil {
		m.Median = med
	}
	m.Fitted = true
}

// Transform parses the column into floats, substituting the fit-time median
// for missing or unparseable cells.
func (m *MedianImputer) Transform(values []string) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if tabular.IsMissing(v) {
			out[i] = m.Median
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			out[i] = m.Median
			continue
		}
		out[i] = x
	}
	return out
}

// ModeImputer replaces missing categorical cells with the most frequent
// fit-time value. Ties break to the lexicographically smallest value.
type ModeImputer struct {
	Mode   string
	Fitted bool
}

// Fit finds the most frequent non-missing value.
func (m *ModeImputer) Fit(values []string) {
	counts := make(map[string]int)
	for _, v := range values {
		if !tabular.IsMissing(v) {
			counts[v]++
		}
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best, bestCount := "", -1
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	m.Mode = best
	m.Fitted = true
}

// Transform substitutes the fit-time mode for missing cells.
func (m *ModeImputer) Transform(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if tabular.IsMissing(v) {
			out[i] = m.Mode
		} else {
			out[i] = v
		}
	}
	return out
}

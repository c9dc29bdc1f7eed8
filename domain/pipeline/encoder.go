package pipeline

import "sort"

// OneHotEncoder expands a categorical column into one indicator column per
// fit-time category. Categories unseen at fit time map to an all-zero
// indicator vector rather than raising.
type OneHotEncoder struct {
	Categories []string
	Fitted     bool
}

// Fit collects the distinct values of the column, sorted for a stable
// encoder-assigned order.
func (e *OneHotEncoder) Fit(values []string) {
	seen := make(map[string]struct{})
	for _, v := range values {
		seen[v] = struct{}{}
	}
	cats := make([]string, 0, len(seen))
	for v := range seen {
		cats = append(cats, v)
	}
	sort.Strings(cats)
	e.Categories = cats
	e.Fitted = true
}

// Transform one-hot encodes each value against the fit-time categories.
func (e *OneHotEncoder) Transform(values []string) [][]float64 {
	index := make(map[string]int, len(e.Categories))
	for i, c := range e.Categories {
		index[c] = i
	}
	out := make([][]float64, len(values))
	for i, v := range values {
		vec := make([]float64, len(e.Categories))
		if j, ok := index[v]; ok {
			vec[j] = 1
		}
		out[i] = vec
	}
	return out
}

// FeatureNames returns the expanded column names in encoder-assigned order,
// one per category, prefixed with the source column name.
func (e *OneHotEncoder) FeatureNames(column string) []string {
	names := make([]string, len(e.Categories))
	for i, c := range e.Categories {
		names[i] = column + "_" + c
	}
	return names
}

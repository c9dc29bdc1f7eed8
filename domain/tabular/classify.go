package tabular

import (
	"strconv"
	"time"
)

// ColumnType is the inferred semantic type of a column.
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeTemporal    ColumnType = "datetime"
	TypeCategorical ColumnType = "categorical"
)

// dateLayouts are the formats recognized as temporal values.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Classify labels every column of the frame: columns whose non-missing cells
// all parse as numbers are numeric, columns whose non-missing cells all parse
// as dates are datetime, everything else (strings, booleans, mixed) is
// categorical. Missing cells are ignored here; imputation is the
// preprocessing pipeline's job.
func Classify(f *Frame) map[string]ColumnType {
	types := make(map[string]ColumnType, f.NumCols())
	for _, name := range f.Names() {
		col, _ := f.Column(name)
		types[name] = classifyColumn(col)
	}
	return types
}

func classifyColumn(col Column) ColumnType {
	allNumeric := true
	allTemporal := true
	seen := 0
	for _, v := range col.Values {
		if IsMissing(v) {
			continue
		}
		seen++
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			allTemporal = false
			continue
		}
		allNumeric = false
		if !isDate(v) {
			return TypeCategorical
		}
	}
	// An all-missing column carries no dtype evidence; treat as categorical
	// like an object column.
	if seen == 0 {
		return TypeCategorical
	}
	if allNumeric {
		return TypeNumeric
	}
	if allTemporal {
		return TypeTemporal
	}
	return TypeCategorical
}

func isDate(v string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

// Roles partitions feature columns by inferred type. Temporal columns carry
// no transformer and are dropped from the feature set, matching the
// preprocessing pipeline's column selection.
type Roles struct {
	Numeric     []string
	Categorical []string
}

// SplitRoles classifies every column except the target and partitions the
// rest into numeric and categorical features, preserving column order.
func SplitRoles(f *Frame, target string) Roles {
	types := Classify(f)
	var roles Roles
	for _, name := range f.Names() {
		if name == target {
			continue
		}
		switch types[name] {
		case TypeNumeric:
			roles.Numeric = append(roles.Numeric, name)
		case TypeCategorical:
			roles.Categorical = append(roles.Categorical, name)
		}
	}
	return roles
}

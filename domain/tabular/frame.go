// Package tabular holds the in-memory dataset representation: an ordered
// sequence of named columns with identical row counts, plus column-type
// inference and deterministic splitting.
package tabular

import (
	"fmt"
	"strings"

	"churnscope/domain/core"
)

// Column is a single named column of raw cell text. Empty string and the
// usual NA spellings are treated as missing.
type Column struct {
	Name   string
	Values []string
}

// Frame is an ordered collection of columns. Column names are unique and all
// columns have the same length.
type Frame struct {
	cols  []Column
	index map[string]int
}

// NewFrame builds a Frame from columns, enforcing the structural invariants.
func NewFrame(cols []Column) (*Frame, error) {
	if len(cols) == 0 {
		return nil, core.NewDataFormatError(fmt.Errorf("no columns"))
	}
	index := make(map[string]int, len(cols))
	rows := len(cols[0].Values)
	for i, c := range cols {
		if strings.TrimSpace(c.Name) == "" {
			return nil, core.NewDataFormatError(fmt.Errorf("column %d has an empty name", i))
		}
		if _, dup := index[c.Name]; dup {
			return nil, core.NewDataFormatError(fmt.Errorf("duplicate column name %q", c.Name))
		}
		if len(c.Values) != rows {
			return nil, core.NewDataFormatError(fmt.Errorf("column %q has %d rows, expected %d", c.Name, len(c.Values), rows))
		}
		index[c.Name] = i
	}
	return &Frame{cols: cols, index: index}, nil
}

// NumRows returns the row count.
func (f *Frame) NumRows() int {
	if len(f.cols) == 0 {
		return 0
	}
	return len(f.cols[0].Values)
}

// NumCols returns the column count.
func (f *Frame) NumCols() int { return len(f.cols) }

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the named column.
func (f *Frame) Column(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return Column{}, false
	}
	return f.cols[i], true
}

// Row materializes row i across all columns, in column order.
func (f *Frame) Row(i int) []string {
	row := make([]string, len(f.cols))
	for j, c := range f.cols {
		row[j] = c.Values[i]
	}
	return row
}

// Drop returns a new Frame without the named column. Dropping a column that
// does not exist returns the frame unchanged.
func (f *Frame) Drop(name string) *Frame {
	if !f.HasColumn(name) {
		return f
	}
	cols := make([]Column, 0, len(f.cols)-1)
	for _, c := range f.cols {
		if c.Name != name {
			cols = append(cols, c)
		}
	}
	out, _ := NewFrame(cols)
	return out
}

// Select returns a new Frame containing only the given row indices, in the
// given order.
func (f *Frame) Select(rows []int) *Frame {
	cols := make([]Column, len(f.cols))
	for j, c := range f.cols {
		vals := make([]string, len(rows))
		for i, r := range rows {
			vals[i] = c.Values[r]
		}
		cols[j] = Column{Name: c.Name, Values: vals}
	}
	out, _ := NewFrame(cols)
	return out
}

// WithColumn returns a new Frame with the column appended.
func (f *Frame) WithColumn(col Column) (*Frame, error) {
	cols := make([]Column, 0, len(f.cols)+1)
	cols = append(cols, f.cols...)
	cols = append(cols, col)
	return NewFrame(cols)
}

// IsMissing reports whether a raw cell is a missing value. The spellings
// cover the NA markers common in spreadsheet and CSV exports.
func IsMissing(cell string) bool {
	switch strings.TrimSpace(cell) {
	case "", "NA", "N/A", "NaN", "nan", "null", "NULL", "None":
		return true
	}
	return false
}

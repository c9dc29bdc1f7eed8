// Package excel reads XLSX workbooks into tabular frames so spreadsheet
// uploads go through the same pipeline as CSV.
package excel

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"churnscope/domain/core"
	"churnscope/domain/tabular"
)

// ReadFrame reads the first sheet of an XLSX workbook into a Frame. The
// first row is the header; short rows are padded with empty cells, which the
// pipeline treats as missing.
func ReadFrame(r io.Reader) (*tabular.Frame, error) {
	start := time.Now()
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, core.NewDataFormatError(fmt.Errorf("opening workbook: %w", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.NewDataFormatError(fmt.Errorf("workbook has no sheets"))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, core.NewDataFormatError(fmt.Errorf("reading sheet %q: %w", sheets[0], err))
	}
	if len(rows) == 0 {
		return nil, core.NewDataFormatError(fmt.Errorf("workbook sheet %q is empty", sheets[0]))
	}
	log.Printf("[ExcelReader] Read sheet %q in %.2fms (%d rows)", sheets[0], float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	header := rows[0]
	cols := make([]tabular.Column, len(header))
	for j, name := range header {
		cols[j] = tabular.Column{
			Name:   strings.TrimSpace(name),
			Values: make([]string, len(rows)-1),
		}
	}
	for i, row := range rows[1:] {
		for j := range cols {
			if j < len(row) {
				cols[j].Values[i] = strings.TrimSpace(row[j])
			}
		}
	}
	return tabular.NewFrame(cols)
}

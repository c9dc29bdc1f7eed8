package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"churnscope/domain/core"
)

// ReadCSV parses comma-separated data with a header row into a Frame.
// Any parse failure surfaces as a data format error with no partial result.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, core.NewDataFormatError(fmt.Errorf("reading CSV: %w", err))
	}
	if len(records) == 0 {
		return nil, core.NewDataFormatError(fmt.Errorf("CSV file is empty"))
	}

	headers := records[0]
	dataRows := records[1:]

	cols := make([]Column, len(headers))
	for j, h := range headers {
		vals := make([]string, len(dataRows))
		for i, rec := range dataRows {
			vals[i] = strings.TrimSpace(rec[j])
		}
		cols[j] = Column{Name: strings.TrimSpace(h), Values: vals}
	}
	return NewFrame(cols)
}

// WriteCSV writes the frame back out with a header row, preserving row order.
func WriteCSV(f *Frame, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.Names()); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i := 0; i < f.NumRows(); i++ {
		if err := writer.Write(f.Row(i)); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Package ingest loads stored datasets into frames, dispatching on file
// extension so CSV and XLSX uploads share one code path.
package ingest

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"churnscope/adapters/excel"
	"churnscope/domain/core"
	"churnscope/domain/tabular"
	"churnscope/ports"
)

// Loader reads datasets out of the file store.
type Loader struct {
	files ports.FileStore
}

// NewLoader creates a dataset loader.
func NewLoader(files ports.FileStore) *Loader {
	return &Loader{files: files}
}

// Load reads the stored dataset into a frame.
func (l *Loader) Load(ctx context.Context, ref core.FileRef) (*tabular.Frame, error) {
	r, err := l.files.Open(ctx, ref)
	if err != nil {
		return nil, core.NewDataFormatError(fmt.Errorf("opening dataset %s: %w", ref, err))
	}
	defer r.Close()

	var frame *tabular.Frame
	switch strings.ToLower(filepath.Ext(string(ref))) {
	case ".csv", "":
		frame, err = tabular.ReadCSV(r)
	case ".xlsx", ".xlsm":
		frame, err = excel.ReadFrame(r)
	default:
		return nil, core.NewDataFormatError(fmt.Errorf("unsupported file type %q", filepath.Ext(string(ref))))
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[Loader] Loaded %s (%d rows, %d columns)", ref, frame.NumRows(), frame.NumCols())
	return frame, nil
}

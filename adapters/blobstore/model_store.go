package blobstore

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"churnscope/domain/core"
	"churnscope/domain/pipeline"
	"churnscope/ports"
)

const modelExt = ".gob"

// GobModelStore persists pipelines as one gob file per model id.
type GobModelStore struct {
	baseDir string
}

// NewGobModelStore creates the model directory if needed.
func NewGobModelStore(baseDir string) (*GobModelStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating model directory: %w", err)
	}
	return &GobModelStore{baseDir: baseDir}, nil
}

// Save writes the pipeline, replacing any previous artifact for the id. The
// write goes through a temp file so a crash never leaves a truncated model.
func (s *GobModelStore) Save(ctx context.Context, id core.ModelID, p *pipeline.Pipeline) error {
	path := s.path(id)
	tmp, err := os.CreateTemp(s.baseDir, "model-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp model file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := p.Encode(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp model file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing model file: %w", err)
	}
	log.Printf("[ModelStore] Saved model %s", id)
	return nil
}

// Load reads a previously saved pipeline.
func (s *GobModelStore) Load(ctx context.Context, id core.ModelID) (*pipeline.Pipeline, error) {
	f, err := os.Open(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.NewModelNotFoundError(string(id))
		}
		return nil, fmt.Errorf("opening model file: %w", err)
	}
	defer f.Close()
	return pipeline.Decode(f)
}

// Exists reports whether an artifact exists for the id.
func (s *GobModelStore) Exists(ctx context.Context, id core.ModelID) (bool, error) {
	_, err := os.Stat(s.path(id))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking model file: %w", err)
	}
	return true, nil
}

// List returns all stored model ids sorted lexicographically.
func (s *GobModelStore) List(ctx context.Context) ([]core.ModelID, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("listing model directory: %w", err)
	}
	var ids []core.ModelID
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), modelExt) {
			continue
		}
		ids = append(ids, core.ModelID(strings.TrimSuffix(e.Name(), modelExt)))
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	return ids, nil
}

// Delete removes the artifact for the id if present.
func (s *GobModelStore) Delete(ctx context.Context, id core.ModelID) error {
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting model file: %w", err)
	}
	return nil
}

func (s *GobModelStore) path(id core.ModelID) string {
	return filepath.Join(s.baseDir, filepath.Base(string(id))+modelExt)
}

var _ ports.ModelStore = (*GobModelStore)(nil)

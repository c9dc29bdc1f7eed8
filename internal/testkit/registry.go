package testkit

import (
	"context"
	"fmt"
	"sync"

	"churnscope/ports"
)

// MemoryRunRegistry is an in-memory ports.RunRegistry for tests and for
// deployments without a database.
type MemoryRunRegistry struct {
	mu   sync.Mutex
	runs []*ports.TrainingRun
}

// NewMemoryRunRegistry returns an empty registry.
func NewMemoryRunRegistry() *MemoryRunRegistry {
	return &MemoryRunRegistry{}
}

// Record appends a run.
func (r *MemoryRunRegistry) Record(ctx context.Context, run *ports.TrainingRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *run
	r.runs = append(r.runs, &clone)
	return nil
}

// GetByModelID returns the most recently recorded run for the model.
func (r *MemoryRunRegistry) GetByModelID(ctx context.Context, modelID string) (*ports.TrainingRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.runs) - 1; i >= 0; i-- {
		if r.runs[i].ModelID == modelID {
			clone := *r.runs[i]
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("no training run for model %s", modelID)
}

// ListRecent returns up to limit runs, newest first.
func (r *MemoryRunRegistry) ListRecent(ctx context.Context, limit int) ([]*ports.TrainingRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*ports.TrainingRun, 0, limit)
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		clone := *r.runs[i]
		out = append(out, &clone)
	}
	return out, nil
}

var _ ports.RunRegistry = (*MemoryRunRegistry)(nil)

package ports

import (
	"context"
	"time"

	"churnscope/domain/core"
)

// TrainingRun records one completed training job for audit and comparison.
type TrainingRun struct {
	ID          core.ID   `db:"id" json:"id"`
	ModelID     string    `db:"model_id" json:"model_id"`
	FileRef     string    `db:"file_ref" json:"file_ref"`
	Target      string    `db:"target" json:"target"`
	Task        string    `db:"task" json:"task"`
	NumRows     int       `db:"num_rows" json:"num_rows"`
	NumFeatures int       `db:"num_features" json:"num_features"`
	MetricsJSON string    `db:"metrics_json" json:"metrics_json"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RunRegistry stores training-run records. Implementations must be safe for
// concurrent use.
type RunRegistry interface {
	Record(ctx context.Context, run *TrainingRun) error
	GetByModelID(ctx context.Context, modelID string) (*TrainingRun, error)
	ListRecent(ctx context.Context, limit int) ([]*TrainingRun, error)
}

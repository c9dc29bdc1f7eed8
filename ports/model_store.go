package ports

import (
	"context"

	"churnscope/domain/core"
	"churnscope/domain/pipeline"
)

// ModelStore persists fitted pipelines keyed by model id. Saving an existing
// id overwrites the previous artifact.
type ModelStore interface {
	Save(ctx context.Context, id core.ModelID, p *pipeline.Pipeline) error
	Load(ctx context.Context, id core.ModelID) (*pipeline.Pipeline, error)
	Exists(ctx context.Context, id core.ModelID) (bool, error)
	List(ctx context.Context) ([]core.ModelID, error)
	Delete(ctx context.Context, id core.ModelID) error
}

// Package predict scores stored datasets with saved models and writes the
// results as downloadable CSV artifacts.
package predict

import (
	"bytes"
	"context"
	"log"

	"churnscope/adapters/blobstore"
	"churnscope/domain/core"
	"churnscope/domain/tabular"
	"churnscope/internal/ingest"
	"churnscope/ports"
)

// Predictor loads a saved pipeline and applies it to new data.
type Predictor struct {
	loader *ingest.Loader
	models ports.ModelStore
	files  ports.FileStore
}

// NewPredictor wires a predictor.
func NewPredictor(loader *ingest.Loader, models ports.ModelStore, files ports.FileStore) *Predictor {
	return &Predictor{loader: loader, models: models, files: files}
}

// Request names the dataset to score and the model to score it with.
type Request struct {
	FileRef core.FileRef `json:"file_id"`
	ModelID core.ModelID `json:"model_id"`
}

// Result points at the written artifact and carries the predictions.
type Result struct {
	ResultFile  core.FileRef `json:"result_file"`
	NumRows     int          `json:"num_rows"`
	Predictions []string     `json:"predictions"`
}

// Predict scores every row of the dataset and writes the input plus a
// trailing prediction column to a fresh result CSV.
func (p *Predictor) Predict(ctx context.Context, req Request) (*Result, error) {
	pipe, err := p.models.Load(ctx, req.ModelID)
	if err != nil {
		return nil, err
	}
	frame, err := p.loader.Load(ctx, req.FileRef)
	if err != nil {
		return nil, err
	}

	preds, err := pipe.Predict(frame)
	if err != nil {
		return nil, err
	}

	out, err := frame.WithColumn(tabular.Column{Name: "prediction", Values: preds})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tabular.WriteCSV(out, &buf); err != nil {
		return nil, err
	}
	name := blobstore.ArtifactName("prediction", ".csv")
	ref, err := p.files.StoreNamed(ctx, &buf, name)
	if err != nil {
		return nil, err
	}

	log.Printf("[Predictor] Scored %d rows with model %s -> %s", frame.NumRows(), req.ModelID, ref)
	return &Result{ResultFile: ref, NumRows: frame.NumRows(), Predictions: preds}, nil
}

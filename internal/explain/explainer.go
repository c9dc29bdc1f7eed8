// Package explain produces post-hoc feature attributions for saved models:
// batch attribution summaries over a dataset and single-instance score
// simulation.
package explain

import (
	"bytes"
	"context"
	"log"
	"math"

	"churnscope/adapters/blobstore"
	"churnscope/adapters/render"
	"churnscope/domain/core"
	"churnscope/domain/eval"
	"churnscope/domain/pipeline"
	"churnscope/domain/tabular"
	"churnscope/internal/ingest"
	"churnscope/ports"
)

// Explainer attributes model predictions to input features.
type Explainer struct {
	loader      *ingest.Loader
	models      ports.ModelStore
	files       ports.FileStore
	topFeatures int
}

// NewExplainer wires an explainer.
func NewExplainer(loader *ingest.Loader, models ports.ModelStore, files ports.FileStore) *Explainer {
	return &Explainer{loader: loader, models: models, files: files, topFeatures: 20}
}

// Request names the model and the dataset to attribute.
type Request struct {
	FileRef core.FileRef `json:"file_id"`
	ModelID core.ModelID `json:"model_id"`
}

// Result carries the global attribution ranking and the chart artifact.
type Result struct {
	ImageFile   core.FileRef  `json:"image_file"`
	TopFeatures []eval.Weight `json:"top_features"`
}

// Explain computes per-row tree-path attributions over the dataset,
// aggregates them to mean absolute contribution per encoded feature, and
// renders the top features as a chart artifact. Binary classifiers are
// attributed on the positive class; regressors on the raw prediction.
func (e *Explainer) Explain(ctx context.Context, req Request) (*Result, error) {
	pipe, err := e.models.Load(ctx, req.ModelID)
	if err != nil {
		return nil, err
	}
	frame, err := e.loader.Load(ctx, req.FileRef)
	if err != nil {
		return nil, err
	}

	X, err := pipe.Transform(frame)
	if err != nil {
		return nil, err
	}

	contribs, err := e.contributions(pipe, X)
	if err != nil {
		return nil, err
	}

	meanAbs := make([]float64, len(pipe.Schema.Encoded))
	if len(contribs) > 0 {
		width := len(contribs[0])
		if width != len(meanAbs) {
			meanAbs = make([]float64, width)
		}
		for _, row := range contribs {
			for j, c := range row {
				meanAbs[j] += math.Abs(c)
			}
		}
		for j := range meanAbs {
			meanAbs[j] /= float64(len(contribs))
		}
	}

	top := eval.TopWeights(pipe.Schema.Encoded, meanAbs, e.topFeatures)

	var buf bytes.Buffer
	if err := render.WeightChartPNG(&buf, "Feature Attribution Summary", top); err != nil {
		return nil, err
	}
	name := blobstore.ArtifactName("attribution_summary", ".png")
	ref, err := e.files.StoreNamed(ctx, &buf, name)
	if err != nil {
		return nil, err
	}

	log.Printf("[Explainer] Attributed %d rows with model %s -> %s", len(X), req.ModelID, ref)
	return &Result{ImageFile: ref, TopFeatures: top}, nil
}

// contributions picks the attribution output per task: positive class for
// binary classifiers, the per-row predicted class for multiclass, the raw
// value for regressors.
func (e *Explainer) contributions(pipe *pipeline.Pipeline, X [][]float64) ([][]float64, error) {
	if pipe.Task == pipeline.TaskRegression {
		_, contribs, err := pipe.Regressor.Contributions(X)
		return contribs, err
	}
	if class := pipe.PositiveClassIndex(); class >= 0 {
		_, contribs, err := pipe.Classifier.Contributions(X, class)
		return contribs, err
	}

	// multiclass: attribute each row on its own predicted class
	predicted, err := pipe.Classifier.Predict(X)
	if err != nil {
		return nil, err
	}
	byClass := make(map[int][][]float64)
	contribs := make([][]float64, len(X))
	for r, class := range predicted {
		rows, ok := byClass[class]
		if !ok {
			_, rows, err = pipe.Classifier.Contributions(X, class)
			if err != nil {
				return nil, err
			}
			byClass[class] = rows
		}
		contribs[r] = rows[r]
	}
	return contribs, nil
}

// SimulateRequest is a single feature-value mapping to score.
type SimulateRequest struct {
	ModelID  core.ModelID      `json:"model_id"`
	Features map[string]string `json:"features"`
}

// Simulate scores one hypothetical instance. Missing features fall back to
// the pipeline's fit-time imputation, so partial mappings are allowed.
func (e *Explainer) Simulate(ctx context.Context, req SimulateRequest) (float64, error) {
	pipe, err := e.models.Load(ctx, req.ModelID)
	if err != nil {
		return 0, err
	}

	frame, err := singleRowFrame(pipe, req.Features)
	if err != nil {
		return 0, err
	}

	scores, err := pipe.Scores(frame)
	if err != nil {
		return 0, err
	}
	return scores[0], nil
}

// singleRowFrame builds a one-row frame over the model's stored schema.
// Features absent from the mapping become missing cells.
func singleRowFrame(pipe *pipeline.Pipeline, features map[string]string) (*tabular.Frame, error) {
	names := make([]string, 0, len(pipe.Schema.Numeric)+len(pipe.Schema.Categorical))
	names = append(names, pipe.Schema.Numeric...)
	names = append(names, pipe.Schema.Categorical...)

	cols := make([]tabular.Column, len(names))
	for i, name := range names {
		cols[i] = tabular.Column{Name: name, Values: []string{features[name]}}
	}
	return tabular.NewFrame(cols)
}

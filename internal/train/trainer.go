// Package train fits churn models on stored datasets and persists the
// resulting pipeline artifacts.
package train

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"churnscope/domain/core"
	"churnscope/domain/eval"
	"churnscope/domain/pipeline"
	"churnscope/domain/tabular"
	"churnscope/internal/ingest"
	"churnscope/ports"
)

// Config tunes the trainer. Defaults match the production model.
type Config struct {
	TestFraction float64
	SplitSeed    int64
	Trees        int
	ForestSeed   int64
	TopFeatures  int
}

// DefaultConfig returns the standard 80/20 split and 100-tree forest.
func DefaultConfig() Config {
	return Config{
		TestFraction: 0.2,
		SplitSeed:    42,
		Trees:        100,
		ForestSeed:   42,
		TopFeatures:  20,
	}
}

// Trainer runs training jobs end to end: load, split, fit, evaluate,
// persist.
type Trainer struct {
	loader   *ingest.Loader
	models   ports.ModelStore
	registry ports.RunRegistry
	config   Config
}

// NewTrainer wires a trainer. registry may be nil when no run database is
// configured.
func NewTrainer(loader *ingest.Loader, models ports.ModelStore, registry ports.RunRegistry, config Config) *Trainer {
	return &Trainer{loader: loader, models: models, registry: registry, config: config}
}

// Request names the dataset, target column and task for one training job.
type Request struct {
	FileRef core.FileRef `json:"file_id"`
	Target  string       `json:"target_column"`
	Task    string       `json:"task"`
}

// Result summarizes a completed training job.
type Result struct {
	ModelID        core.ModelID                `json:"model_id"`
	Task           pipeline.Task               `json:"task"`
	NumRows        int                         `json:"num_rows"`
	NumFeatures    int                         `json:"num_features"`
	Classification *eval.ClassificationMetrics `json:"classification_metrics,omitempty"`
	Regression     *eval.RegressionMetrics     `json:"regression_metrics,omitempty"`
	TopFeatures    []eval.Weight               `json:"top_features"`
}

// Train runs one training job. The task is validated before any data is
// touched so an invalid task never produces an artifact.
func (t *Trainer) Train(ctx context.Context, req Request) (*Result, error) {
	task, err := pipeline.ParseTask(req.Task)
	if err != nil {
		return nil, err
	}

	frame, err := t.loader.Load(ctx, req.FileRef)
	if err != nil {
		return nil, err
	}
	if !frame.HasColumn(req.Target) {
		return nil, core.NewDataFormatError(fmt.Errorf("target column %q not found", req.Target))
	}

	kept := tabular.DropMissingTarget(frame, req.Target)
	if len(kept) < 2 {
		return nil, core.ErrEmptyDataset
	}
	frame = frame.Select(kept)

	roles := tabular.SplitRoles(frame, req.Target)
	if len(roles.Numeric)+len(roles.Categorical) == 0 {
		return nil, core.NewDataFormatError(fmt.Errorf("no usable feature columns"))
	}

	trainIdx, testIdx := tabular.TrainTestSplit(frame.NumRows(), t.config.TestFraction, t.config.SplitSeed)
	log.Printf("[Trainer] Training %s model on %s: %d train rows, %d test rows",
		task, req.FileRef, len(trainIdx), len(testIdx))

	p := pipeline.NewPipeline(task, req.Target, roles)
	if err := p.Fit(frame, trainIdx, pipeline.FitOptions{Trees: t.config.Trees, Seed: t.config.ForestSeed}); err != nil {
		return nil, err
	}

	result := &Result{
		ModelID:     core.DeriveModelID(req.FileRef, req.Target),
		Task:        task,
		NumRows:     frame.NumRows(),
		NumFeatures: len(p.Schema.Encoded),
	}

	if err := t.evaluate(p, frame, testIdx, result); err != nil {
		return nil, err
	}

	importances, err := p.FeatureImportances()
	if err != nil {
		return nil, err
	}
	result.TopFeatures = eval.TopWeights(p.Schema.Encoded, importances, t.config.TopFeatures)

	if err := t.models.Save(ctx, result.ModelID, p); err != nil {
		return nil, fmt.Errorf("persisting model: %w", err)
	}

	t.record(ctx, req, result)
	return result, nil
}

// evaluate fills the task-appropriate holdout metrics.
func (t *Trainer) evaluate(p *pipeline.Pipeline, frame *tabular.Frame, testIdx []int, result *Result) error {
	test := frame.Select(testIdx)
	X, err := p.Transform(test)
	if err != nil {
		return err
	}

	targetCol, _ := test.Column(p.Schema.Target)

	switch p.Task {
	case pipeline.TaskClassification:
		predIdx, err := p.Classifier.Predict(X)
		if err != nil {
			return err
		}
		classIndex := make(map[string]int, len(p.Classes))
		for k, c := range p.Classes {
			classIndex[c] = k
		}
		// labels unseen at fit time cannot be scored; drop those rows
		var yTrue, yPred []int
		for i, raw := range targetCol.Values {
			k, ok := classIndex[raw]
			if !ok {
				continue
			}
			yTrue = append(yTrue, k)
			yPred = append(yPred, predIdx[i])
		}

		m := &eval.ClassificationMetrics{Accuracy: eval.Accuracy(yTrue, yPred)}
		m.Precision, m.Recall, m.F1 = eval.PrecisionRecallF1(yTrue, yPred, len(p.Classes))

		if len(p.Classes) == 2 {
			scores, err := p.ScoresMatrix(X)
			if err != nil {
				return err
			}
			if auc, err := eval.AUC(yTrue, alignScores(scores, targetCol.Values, classIndex)); err != nil {
				log.Printf("[Trainer] AUC unavailable: %v", err)
			} else {
				m.AUC = &auc
			}
		}
		result.Classification = m
	case pipeline.TaskRegression:
		preds, err := p.Regressor.Predict(X)
		if err != nil {
			return err
		}
		yTrue := make([]float64, 0, len(preds))
		yPred := make([]float64, 0, len(preds))
		for i, raw := range targetCol.Values {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			yTrue = append(yTrue, v)
			yPred = append(yPred, preds[i])
		}
		result.Regression = &eval.RegressionMetrics{
			RMSE: eval.RMSE(yTrue, yPred),
			MAE:  eval.MAE(yTrue, yPred),
			R2:   eval.R2(yTrue, yPred),
		}
	}
	return nil
}

// alignScores keeps only scores for rows whose label was in the training
// vocabulary, mirroring the yTrue filter.
func alignScores(scores []float64, rawLabels []string, classIndex map[string]int) []float64 {
	out := make([]float64, 0, len(scores))
	for i, raw := range rawLabels {
		if _, ok := classIndex[raw]; ok {
			out = append(out, scores[i])
		}
	}
	return out
}

// record writes the run to the registry. Registry failures are logged, not
// fatal: the artifact is already saved and usable.
func (t *Trainer) record(ctx context.Context, req Request, result *Result) {
	if t.registry == nil {
		return
	}
	metrics, err := json.Marshal(result)
	if err != nil {
		log.Printf("[Trainer] Failed to marshal run metrics: %v", err)
		return
	}
	run := &ports.TrainingRun{
		ID:          core.NewID(),
		ModelID:     string(result.ModelID),
		FileRef:     string(req.FileRef),
		Target:      req.Target,
		Task:        string(result.Task),
		NumRows:     result.NumRows,
		NumFeatures: result.NumFeatures,
		MetricsJSON: string(metrics),
		CreatedAt:   time.Now().UTC(),
	}
	if err := t.registry.Record(ctx, run); err != nil {
		log.Printf("[Trainer] Failed to record training run: %v", err)
	}
}

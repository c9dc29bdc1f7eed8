package pipeline

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"sort"
	"strconv"

	"churnscope/domain/core"
	"churnscope/domain/forest"
	"churnscope/domain/tabular"
)

// Task selects the estimator family.
type Task string

const (
	TaskClassification Task = "classification"
	TaskRegression     Task = "regression"
)

// ParseTask validates a task string from the outside world.
func ParseTask(s string) (Task, error) {
	switch Task(s) {
	case TaskClassification, TaskRegression:
		return Task(s), nil
	default:
		return "", core.NewInvalidTaskError(s)
	}
}

// Schema records the training-time view of the data so inference never
// re-infers column roles.
type Schema struct {
	Target      string
	Numeric     []string
	Categorical []string
	Encoded     []string // post-encoding feature names, model input order
}

// Pipeline couples a fitted Preprocessor with a fitted forest estimator.
// Exactly one of Classifier and Regressor is non-nil after Fit, matching
// Task.
type Pipeline struct {
	Task       Task
	Schema     Schema
	Pre        *Preprocessor
	Classifier *forest.Classifier
	Regressor  *forest.Regressor
	Classes    []string // label vocabulary, classification only
	Fitted     bool
}

// NewPipeline builds an unfitted pipeline for the given task and column
// roles.
func NewPipeline(task Task, target string, roles tabular.Roles) *Pipeline {
	return &Pipeline{
		Task: task,
		Schema: Schema{
			Target:      target,
			Numeric:     append([]string(nil), roles.Numeric...),
			Categorical: append([]string(nil), roles.Categorical...),
		},
		Pre: BuildPreprocessor(roles.Numeric, roles.Categorical),
	}
}

// Fit fits the preprocessor and estimator on the rows of f named by idx.
// Classification targets are label-encoded against a sorted vocabulary so
// class indices are deterministic.
func (p *Pipeline) Fit(f *tabular.Frame, idx []int, opts FitOptions) error {
	X, err := p.Pre.FitTransform(f.Select(idx))
	if err != nil {
		return err
	}
	p.Schema.Encoded = p.Pre.FeatureNames()

	targetCol, ok := f.Column(p.Schema.Target)
	if !ok {
		return core.NewSchemaMismatchError(p.Schema.Target)
	}

	switch p.Task {
	case TaskClassification:
		labels, classes, err := encodeLabels(targetCol.Values, idx)
		if err != nil {
			return err
		}
		p.Classes = classes
		clf := forest.NewClassifier(
			forest.WithTrees(opts.trees()),
			forest.WithSeed(opts.seed()),
		)
		if err := clf.Fit(X, labels); err != nil {
			return fmt.Errorf("fitting classifier: %w", err)
		}
		p.Classifier = clf
	case TaskRegression:
		y := make([]float64, len(idx))
		for k, i := range idx {
			v, err := strconv.ParseFloat(targetCol.Values[i], 64)
			if err != nil {
				return core.NewDataFormatError(fmt.Errorf("target %q has non-numeric value %q", p.Schema.Target, targetCol.Values[i]))
			}
			y[k] = v
		}
		reg := forest.NewRegressor(
			forest.WithRegressorTrees(opts.trees()),
			forest.WithRegressorSeed(opts.seed()),
		)
		if err := reg.Fit(X, y); err != nil {
			return fmt.Errorf("fitting regressor: %w", err)
		}
		p.Regressor = reg
	default:
		return core.NewInvalidTaskError(string(p.Task))
	}

	p.Fitted = true
	return nil
}

// FitOptions tunes the estimator; zero values mean the production defaults.
type FitOptions struct {
	Trees int
	Seed  int64
}

func (o FitOptions) trees() int {
	if o.Trees > 0 {
		return o.Trees
	}
	return 100
}

func (o FitOptions) seed() int64 {
	if o.Seed != 0 {
		return o.Seed
	}
	return 42
}

// Transform preprocesses all rows of f into the model's feature space.
func (p *Pipeline) Transform(f *tabular.Frame) ([][]float64, error) {
	if !p.Fitted {
		return nil, core.ErrNotFitted
	}
	return p.Pre.Transform(f)
}

// TransformRows preprocesses only the rows named by idx.
func (p *Pipeline) TransformRows(f *tabular.Frame, idx []int) ([][]float64, error) {
	if !p.Fitted {
		return nil, core.ErrNotFitted
	}
	return p.Pre.Transform(f.Select(idx))
}

// Predict returns rendered predictions: class labels for classification,
// decimal strings for regression.
func (p *Pipeline) Predict(f *tabular.Frame) ([]string, error) {
	X, err := p.Transform(f)
	if err != nil {
		return nil, err
	}
	return p.predictMatrix(X)
}

func (p *Pipeline) predictMatrix(X [][]float64) ([]string, error) {
	out := make([]string, len(X))
	switch p.Task {
	case TaskClassification:
		idx, err := p.Classifier.Predict(X)
		if err != nil {
			return nil, err
		}
		for r, k := range idx {
			out[r] = p.Classes[k]
		}
	case TaskRegression:
		preds, err := p.Regressor.Predict(X)
		if err != nil {
			return nil, err
		}
		for r, v := range preds {
			out[r] = strconv.FormatFloat(v, 'g', -1, 64)
		}
	default:
		return nil, core.NewInvalidTaskError(string(p.Task))
	}
	return out, nil
}

// Scores returns one score per row: the positive-class probability for
// binary classification, the predicted class's probability for multiclass,
// and the raw prediction for regression.
func (p *Pipeline) Scores(f *tabular.Frame) ([]float64, error) {
	X, err := p.Transform(f)
	if err != nil {
		return nil, err
	}
	return p.ScoresMatrix(X)
}

// ScoresMatrix scores already-preprocessed rows.
func (p *Pipeline) ScoresMatrix(X [][]float64) ([]float64, error) {
	if !p.Fitted {
		return nil, core.ErrNotFitted
	}
	switch p.Task {
	case TaskClassification:
		probas, err := p.Classifier.PredictProba(X)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(probas))
		if len(p.Classes) == 2 {
			for r, row := range probas {
				out[r] = row[1]
			}
			return out, nil
		}
		for r, row := range probas {
			best := 0
			for k := 1; k < len(row); k++ {
				if row[k] > row[best] {
					best = k
				}
			}
			out[r] = row[best]
		}
		return out, nil
	case TaskRegression:
		return p.Regressor.Predict(X)
	}
	return nil, core.NewInvalidTaskError(string(p.Task))
}

// PositiveClassIndex is the value-vector index attribution tracks for
// classification: class 1 for binary, -1 when the caller should use the
// predicted class per row.
func (p *Pipeline) PositiveClassIndex() int {
	if len(p.Classes) == 2 {
		return 1
	}
	return -1
}

// FeatureImportances exposes the fitted estimator's importances over
// Schema.Encoded.
func (p *Pipeline) FeatureImportances() ([]float64, error) {
	if !p.Fitted {
		return nil, core.ErrNotFitted
	}
	if p.Task == TaskClassification {
		return p.Classifier.FeatureImportances()
	}
	return p.Regressor.FeatureImportances()
}

// encodeLabels maps the target values at idx onto indices of a sorted
// distinct vocabulary.
func encodeLabels(values []string, idx []int) ([]int, []string, error) {
	seen := make(map[string]bool)
	for _, i := range idx {
		seen[values[i]] = true
	}
	classes := make([]string, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Strings(classes)
	if len(classes) < 2 {
		return nil, nil, core.NewDataFormatError(fmt.Errorf("target has fewer than two classes"))
	}
	pos := make(map[string]int, len(classes))
	for k, v := range classes {
		pos[v] = k
	}
	labels := make([]int, len(idx))
	for k, i := range idx {
		labels[k] = pos[values[i]]
	}
	return labels, classes, nil
}

// Encode serializes the fitted pipeline with gob.
func (p *Pipeline) Encode(w io.Writer) error {
	if !p.Fitted {
		return core.ErrNotFitted
	}
	if err := gob.NewEncoder(w).Encode(p); err != nil {
		return fmt.Errorf("encoding pipeline: %w", err)
	}
	return nil
}

// Decode deserializes a pipeline previously written by Encode.
func Decode(r io.Reader) (*Pipeline, error) {
	var p Pipeline
	if err := gob.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding pipeline: %w", err)
	}
	return &p, nil
}

// EncodeBytes is Encode into a fresh buffer.
func (p *Pipeline) EncodeBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

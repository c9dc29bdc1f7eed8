package forest

import (
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Regressor is a random forest over variance-reduction CART trees whose
// prediction is the mean of the tree means. Unlike the classifier it
// considers every feature at each split.
type Regressor struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 => all features
	Bootstrap       bool
	Seed            int64

	NFeatures int
	Trees     []*Tree
}

// RegressorOption configures a Regressor before fitting.
type RegressorOption func(*Regressor)

func WithRegressorTrees(n int) RegressorOption     { return func(r *Regressor) { r.NEstimators = n } }
func WithRegressorMaxDepth(d int) RegressorOption  { return func(r *Regressor) { r.MaxDepth = d } }
func WithRegressorSeed(seed int64) RegressorOption { return func(r *Regressor) { r.Seed = seed } }

// NewRegressor returns a regressor with 100 bootstrap-sampled trees.
func NewRegressor(opts ...RegressorOption) *Regressor {
	r := &Regressor{
		NEstimators:     100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
		Seed:            42,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fit trains the forest on X and continuous targets y.
func (r *Regressor) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("forest: empty training set")
	}
	if len(X) != len(y) {
		return errors.New("forest: X and y length mismatch")
	}
	r.NFeatures = len(X[0])

	maxFeat := r.MaxFeatures
	if maxFeat == 0 {
		maxFeat = r.NFeatures
	}

	r.Trees = make([]*Tree, r.NEstimators)
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < r.NEstimators; i++ {
		i := i
		g.Go(func() error {
			seed := r.Seed + int64(i)
			tree := NewTree(0, seed)
			tree.MaxDepth = r.MaxDepth
			tree.MinSamplesSplit = r.MinSamplesSplit
			tree.MinSamplesLeaf = r.MinSamplesLeaf
			tree.MaxFeatures = maxFeat

			idx := sampleIndices(len(X), r.Bootstrap, seed)
			if err := tree.Fit(X, y, idx); err != nil {
				return err
			}
			r.Trees[i] = tree
			return nil
		})
	}
	return g.Wait()
}

// Predict returns the ensemble mean per row.
func (r *Regressor) Predict(X [][]float64) ([]float64, error) {
	if len(r.Trees) == 0 {
		return nil, errors.New("forest: regressor is not fitted")
	}
	out := make([]float64, len(X))
	for row, x := range X {
		sum := 0.0
		for _, tree := range r.Trees {
			sum += tree.PredictValue(x)[0]
		}
		out[row] = sum / float64(len(r.Trees))
	}
	return out, nil
}

// FeatureImportances averages the normalized impurity-decrease importances
// of the individual trees.
func (r *Regressor) FeatureImportances() ([]float64, error) {
	if len(r.Trees) == 0 {
		return nil, errors.New("forest: regressor is not fitted")
	}
	return averageImportances(r.Trees, r.NFeatures), nil
}

// Contributions attributes each predicted value across the input features,
// averaged over trees. bias + sum(contribs) reproduces Predict for every
// row.
func (r *Regressor) Contributions(X [][]float64) (bias float64, contribs [][]float64, err error) {
	if len(r.Trees) == 0 {
		return 0, nil, errors.New("forest: regressor is not fitted")
	}
	return treeContributions(r.Trees, X, 0, r.NFeatures), contributionsFor(r.Trees, X, 0, r.NFeatures), nil
}

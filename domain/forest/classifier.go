package forest

import (
	"errors"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Classifier is a random forest over gini CART trees with soft voting.
type Classifier struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 => sqrt(p)
	Bootstrap       bool
	Seed            int64

	NClasses  int
	NFeatures int
	Trees     []*Tree
}

// ClassifierOption configures a Classifier before fitting.
type ClassifierOption func(*Classifier)

func WithTrees(n int) ClassifierOption        { return func(c *Classifier) { c.NEstimators = n } }
func WithMaxDepth(d int) ClassifierOption     { return func(c *Classifier) { c.MaxDepth = d } }
func WithSeed(seed int64) ClassifierOption    { return func(c *Classifier) { c.Seed = seed } }
func WithMaxFeatures(m int) ClassifierOption  { return func(c *Classifier) { c.MaxFeatures = m } }
func WithoutBootstrap() ClassifierOption      { return func(c *Classifier) { c.Bootstrap = false } }
func WithMinSamplesSplit(m int) ClassifierOption {
	return func(c *Classifier) { c.MinSamplesSplit = m }
}

// NewClassifier returns a classifier with 100 trees, bootstrap sampling and
// sqrt(p) feature subsampling per split.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		NEstimators:     100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
		Seed:            42,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fit trains the forest on X and class indices y. Trees are grown
// concurrently; per-tree seeds derive from the forest seed so results are
// reproducible regardless of scheduling.
func (c *Classifier) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("forest: empty training set")
	}
	if len(X) != len(y) {
		return errors.New("forest: X and y length mismatch")
	}
	c.NFeatures = len(X[0])
	c.NClasses = 0
	for _, label := range y {
		if label < 0 {
			return errors.New("forest: negative class index")
		}
		if label+1 > c.NClasses {
			c.NClasses = label + 1
		}
	}

	yf := make([]float64, len(y))
	for i, label := range y {
		yf[i] = float64(label)
	}

	maxFeat := c.MaxFeatures
	if maxFeat == 0 {
		maxFeat = int(math.Sqrt(float64(c.NFeatures)))
		if maxFeat < 1 {
			maxFeat = 1
		}
	}

	c.Trees = make([]*Tree, c.NEstimators)
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < c.NEstimators; i++ {
		i := i
		g.Go(func() error {
			seed := c.Seed + int64(i)
			tree := NewTree(c.NClasses, seed)
			tree.MaxDepth = c.MaxDepth
			tree.MinSamplesSplit = c.MinSamplesSplit
			tree.MinSamplesLeaf = c.MinSamplesLeaf
			tree.MaxFeatures = maxFeat

			idx := sampleIndices(len(X), c.Bootstrap, seed)
			if err := tree.Fit(X, yf, idx); err != nil {
				return err
			}
			c.Trees[i] = tree
			return nil
		})
	}
	return g.Wait()
}

// PredictProba returns per-row class probability distributions averaged over
// all trees.
func (c *Classifier) PredictProba(X [][]float64) ([][]float64, error) {
	if len(c.Trees) == 0 {
		return nil, errors.New("forest: classifier is not fitted")
	}
	probas := make([][]float64, len(X))
	for r, x := range X {
		acc := make([]float64, c.NClasses)
		for _, tree := range c.Trees {
			v := tree.PredictValue(x)
			for k := range acc {
				acc[k] += v[k]
			}
		}
		for k := range acc {
			acc[k] /= float64(len(c.Trees))
		}
		probas[r] = acc
	}
	return probas, nil
}

// Predict returns the most probable class index per row.
func (c *Classifier) Predict(X [][]float64) ([]int, error) {
	probas, err := c.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(probas))
	for r, p := range probas {
		out[r] = argmax(p)
	}
	return out, nil
}

// FeatureImportances averages the normalized impurity-decrease importances
// of the individual trees.
func (c *Classifier) FeatureImportances() ([]float64, error) {
	if len(c.Trees) == 0 {
		return nil, errors.New("forest: classifier is not fitted")
	}
	return averageImportances(c.Trees, c.NFeatures), nil
}

// Contributions attributes each row's probability for the given class across
// the input features, averaged over trees. The returned bias is the mean
// root probability; for every row, bias + sum(contribs) equals the
// predicted probability.
func (c *Classifier) Contributions(X [][]float64, class int) (bias float64, contribs [][]float64, err error) {
	if len(c.Trees) == 0 {
		return 0, nil, errors.New("forest: classifier is not fitted")
	}
	if class < 0 || class >= c.NClasses {
		return 0, nil, errors.New("forest: class index out of range")
	}
	return treeContributions(c.Trees, X, class, c.NFeatures), contributionsFor(c.Trees, X, class, c.NFeatures), nil
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// sampleIndices draws a bootstrap sample (with replacement) of size n, or
// the identity permutation when bootstrapping is off.
func sampleIndices(n int, bootstrap bool, seed int64) []int {
	idx := make([]int, n)
	if !bootstrap {
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	rnd := rand.New(rand.NewSource(seed))
	for i := range idx {
		idx[i] = rnd.Intn(n)
	}
	return idx
}

func averageImportances(trees []*Tree, p int) []float64 {
	out := make([]float64, p)
	for _, tree := range trees {
		for j, v := range tree.Importances {
			out[j] += v
		}
	}
	for j := range out {
		out[j] /= float64(len(trees))
	}
	return out
}

func treeContributions(trees []*Tree, X [][]float64, output, p int) float64 {
	if len(X) == 0 {
		return 0
	}
	scratch := make([]float64, p)
	bias := 0.0
	for _, tree := range trees {
		for j := range scratch {
			scratch[j] = 0
		}
		bias += tree.Contributions(X[0], output, scratch)
	}
	return bias / float64(len(trees))
}

func contributionsFor(trees []*Tree, X [][]float64, output, p int) [][]float64 {
	contribs := make([][]float64, len(X))
	for r, x := range X {
		row := make([]float64, p)
		scratch := make([]float64, p)
		for _, tree := range trees {
			for j := range scratch {
				scratch[j] = 0
			}
			tree.Contributions(x, output, scratch)
			for j := range row {
				row[j] += scratch[j]
			}
		}
		for j := range row {
			row[j] /= float64(len(trees))
		}
		contribs[r] = row
	}
	return contribs
}

// Package forest implements CART decision trees and random-forest ensembles
// for classification and regression, with impurity-decrease feature
// importances and tree-path attribution of individual predictions.
package forest

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// Node holds one node of a fitted tree. Value is the class probability
// distribution for classification trees and a single-element mean for
// regression trees; it is populated on every node so prediction paths can be
// attributed split by split.
type Node struct {
	Leaf      bool
	Feature   int
	Threshold float64 // x <= threshold goes left
	Left      *Node
	Right     *Node
	Samples   int
	Value     []float64
}

// Tree is a CART tree. NClasses == 0 means regression (variance criterion),
// otherwise classification over class indices 0..NClasses-1 (gini).
type Tree struct {
	MaxDepth        int // 0 => no depth limit
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 => consider all features
	Seed            int64
	NClasses        int

	Root        *Node
	Importances []float64 // impurity-decrease per feature, normalized to sum 1

	nTotal int
}

// NewTree returns a tree with the defaults the forest relies on.
func NewTree(nClasses int, seed int64) *Tree {
	return &Tree{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Seed:            seed,
		NClasses:        nClasses,
	}
}

type sample struct {
	v float64
	i int
}

// Fit grows the tree on the rows of X named by idx. For classification y
// holds class indices as floats; for regression y holds the raw target.
func (t *Tree) Fit(X [][]float64, y []float64, idx []int) error {
	if len(X) == 0 || len(idx) == 0 {
		return errors.New("forest: empty training set")
	}
	if len(y) != len(X) {
		return errors.New("forest: X and y length mismatch")
	}
	p := len(X[0])
	t.nTotal = len(idx)
	t.Importances = make([]float64, p)

	rnd := rand.New(rand.NewSource(t.Seed))
	t.Root = t.buildNode(X, y, idx, 0, p, rnd)

	total := 0.0
	for _, v := range t.Importances {
		total += v
	}
	if total > 0 {
		for i := range t.Importances {
			t.Importances[i] /= total
		}
	}
	return nil
}

func (t *Tree) buildNode(X [][]float64, y []float64, idx []int, depth, p int, rnd *rand.Rand) *Node {
	node := &Node{Samples: len(idx)}
	node.Value = t.nodeValue(y, idx)

	imp := t.impurity(y, idx)
	if imp <= 1e-12 || len(idx) < t.MinSamplesSplit || (t.MaxDepth > 0 && depth >= t.MaxDepth) {
		node.Leaf = true
		return node
	}

	features := make([]int, p)
	for j := range features {
		features[j] = j
	}
	if t.MaxFeatures > 0 && t.MaxFeatures < p {
		rnd.Shuffle(p, func(a, b int) { features[a], features[b] = features[b], features[a] })
		features = features[:t.MaxFeatures]
	}

	best := t.findBestSplit(X, y, idx, features, imp)
	if best.feature < 0 {
		node.Leaf = true
		return node
	}

	t.Importances[best.feature] += float64(len(idx)) / float64(t.nTotal) * best.gain

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Left = t.buildNode(X, y, left, depth+1, p, rnd)
	node.Right = t.buildNode(X, y, right, depth+1, p, rnd)
	return node
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

// findBestSplit scans every candidate feature with a single sorted pass,
// maintaining running statistics on the left partition.
func (t *Tree) findBestSplit(X [][]float64, y []float64, idx []int, features []int, parentImp float64) split {
	best := split{feature: -1}
	n := len(idx)

	for _, f := range features {
		pairs := make([]sample, n)
		for k, i := range idx {
			pairs[k] = sample{v: X[i][f], i: i}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })

		if t.NClasses > 0 {
			t.scanClassification(pairs, y, f, parentImp, &best)
		} else {
			t.scanRegression(pairs, y, f, parentImp, &best)
		}
	}
	return best
}

func (t *Tree) scanClassification(pairs []sample, y []float64, f int, parentImp float64, best *split) {
	n := len(pairs)
	total := make([]float64, t.NClasses)
	for _, s := range pairs {
		total[int(y[s.i])]++
	}
	left := make([]float64, t.NClasses)

	for s := 1; s < n; s++ {
		left[int(y[pairs[s-1].i])]++
		if pairs[s].v == pairs[s-1].v {
			continue
		}
		nl, nr := s, n-s
		if nl < t.MinSamplesLeaf || nr < t.MinSamplesLeaf {
			continue
		}
		gl := giniCounts(left, float64(nl))
		right := make([]float64, t.NClasses)
		for c := range right {
			right[c] = total[c] - left[c]
		}
		gr := giniCounts(right, float64(nr))
		weighted := float64(nl)/float64(n)*gl + float64(nr)/float64(n)*gr
		if gain := parentImp - weighted; gain > best.gain {
			*best = split{feature: f, threshold: (pairs[s-1].v + pairs[s].v) / 2, gain: gain}
		}
	}
}

func (t *Tree) scanRegression(pairs []sample, y []float64, f int, parentImp float64, best *split) {
	n := len(pairs)
	var totalSum, totalSq float64
	for _, s := range pairs {
		v := y[s.i]
		totalSum += v
		totalSq += v * v
	}
	var leftSum, leftSq float64

	for s := 1; s < n; s++ {
		v := y[pairs[s-1].i]
		leftSum += v
		leftSq += v * v
		if pairs[s].v == pairs[s-1].v {
			continue
		}
		nl, nr := s, n-s
		if nl < t.MinSamplesLeaf || nr < t.MinSamplesLeaf {
			continue
		}
		vl := variance(leftSum, leftSq, float64(nl))
		vr := variance(totalSum-leftSum, totalSq-leftSq, float64(nr))
		weighted := float64(nl)/float64(n)*vl + float64(nr)/float64(n)*vr
		if gain := parentImp - weighted; gain > best.gain {
			*best = split{feature: f, threshold: (pairs[s-1].v + pairs[s].v) / 2, gain: gain}
		}
	}
}

func (t *Tree) nodeValue(y []float64, idx []int) []float64 {
	if t.NClasses > 0 {
		counts := make([]float64, t.NClasses)
		for _, i := range idx {
			counts[int(y[i])]++
		}
		for c := range counts {
			counts[c] /= float64(len(idx))
		}
		return counts
	}
	sum := 0.0
	for _, i := range idx {
		sum += y[i]
	}
	return []float64{sum / float64(len(idx))}
}

func (t *Tree) impurity(y []float64, idx []int) float64 {
	if t.NClasses > 0 {
		counts := make([]float64, t.NClasses)
		for _, i := range idx {
			counts[int(y[i])]++
		}
		return giniCounts(counts, float64(len(idx)))
	}
	var sum, sq float64
	for _, i := range idx {
		v := y[i]
		sum += v
		sq += v * v
	}
	return variance(sum, sq, float64(len(idx)))
}

func giniCounts(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := c / n
		g -= p * p
	}
	return g
}

func variance(sum, sq, n float64) float64 {
	if n == 0 {
		return 0
	}
	mean := sum / n
	v := sq/n - mean*mean
	if v < 0 {
		return 0
	}
	return v
}

// leaf walks x down to its leaf node.
func (t *Tree) leaf(x []float64) *Node {
	node := t.Root
	for !node.Leaf {
		v := x[node.Feature]
		if math.IsNaN(v) {
			// missing at inference: follow the larger child
			if node.Left.Samples >= node.Right.Samples {
				node = node.Left
			} else {
				node = node.Right
			}
			continue
		}
		if v <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

// PredictValue returns the leaf value vector for one row.
func (t *Tree) PredictValue(x []float64) []float64 {
	return t.leaf(x).Value
}

// Contributions attributes the prediction for x across features following
// the decision path: at every split, the change in node value is credited to
// the split feature. output is the tracked value component (class index for
// classification, 0 for regression). The bias is the root value; bias plus
// the summed contributions reproduces the leaf value exactly.
func (t *Tree) Contributions(x []float64, output int, contrib []float64) (bias float64) {
	node := t.Root
	bias = node.Value[output]
	for !node.Leaf {
		next := node.Right
		v := x[node.Feature]
		if math.IsNaN(v) {
			if node.Left.Samples >= node.Right.Samples {
				next = node.Left
			}
		} else if v <= node.Threshold {
			next = node.Left
		}
		contrib[node.Feature] += next.Value[output] - node.Value[output]
		node = next
	}
	return bias
}

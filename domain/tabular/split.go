package tabular

import "math/rand"

// TrainTestSplit partitions row indices [0,n) into train and test sets. The
// shuffle is seeded, so the same (n, testFraction, seed) always yields the
// same split.
func TrainTestSplit(n int, testFraction float64, seed int64) (trainIdx, testIdx []int) {
	rnd := rand.New(rand.NewSource(seed))
	perm := rnd.Perm(n)
	nTest := int(float64(n) * testFraction)
	if nTest < 1 && n > 1 {
		nTest = 1
	}
	testIdx = perm[:nTest]
	trainIdx = perm[nTest:]
	return trainIdx, testIdx
}

// DropMissingTarget returns the indices of rows whose target cell is present.
// Rows with a missing target cannot contribute to supervised learning.
func DropMissingTarget(f *Frame, target string) []int {
	col, ok := f.Column(target)
	if !ok {
		return nil
	}
	keep := make([]int, 0, len(col.Values))
	for i, v := range col.Values {
		if !IsMissing(v) {
			keep = append(keep, i)
		}
	}
	return keep
}

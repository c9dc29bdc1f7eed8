// Package eval computes holdout evaluation metrics and ranked feature
// weights for fitted models.
package eval

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// ClassificationMetrics is the holdout summary for a classifier. AUC is only
// present for binary problems where it could be computed.
type ClassificationMetrics struct {
	Accuracy  float64  `json:"accuracy"`
	Precision float64  `json:"precision"`
	Recall    float64  `json:"recall"`
	F1        float64  `json:"f1_score"`
	AUC       *float64 `json:"roc_auc,omitempty"`
}

// RegressionMetrics is the holdout summary for a regressor.
type RegressionMetrics struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2_score"`
}

// Accuracy is the fraction of exact label matches.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	hits := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue))
}

// PrecisionRecallF1 computes precision, recall and F1 over nClasses classes.
// Binary problems score class 1 as the positive class; multiclass problems
// use support-weighted averages. Undefined ratios degrade to zero instead of
// failing.
func PrecisionRecallF1(yTrue, yPred []int, nClasses int) (precision, recall, f1 float64) {
	if len(yTrue) == 0 || nClasses < 2 {
		return 0, 0, 0
	}

	tp := make([]float64, nClasses)
	fp := make([]float64, nClasses)
	fn := make([]float64, nClasses)
	support := make([]float64, nClasses)
	for i := range yTrue {
		support[yTrue[i]]++
		if yTrue[i] == yPred[i] {
			tp[yTrue[i]]++
		} else {
			fp[yPred[i]]++
			fn[yTrue[i]]++
		}
	}

	classPrecision := func(c int) float64 { return safeRatio(tp[c], tp[c]+fp[c]) }
	classRecall := func(c int) float64 { return safeRatio(tp[c], tp[c]+fn[c]) }
	classF1 := func(c int) float64 {
		p, r := classPrecision(c), classRecall(c)
		return safeRatio(2*p*r, p+r)
	}

	if nClasses == 2 {
		return classPrecision(1), classRecall(1), classF1(1)
	}

	total := float64(len(yTrue))
	for c := 0; c < nClasses; c++ {
		w := support[c] / total
		precision += w * classPrecision(c)
		recall += w * classRecall(c)
		f1 += w * classF1(c)
	}
	return precision, recall, f1
}

// AUC computes the area under the ROC curve for binary labels and
// positive-class scores. It fails rather than guessing when only one class
// is present.
func AUC(yTrue []int, scores []float64) (float64, error) {
	if len(yTrue) != len(scores) || len(yTrue) == 0 {
		return 0, errors.New("eval: labels and scores length mismatch")
	}
	var pos, neg int
	for _, label := range yTrue {
		switch label {
		case 0:
			neg++
		case 1:
			pos++
		default:
			return 0, errors.New("eval: AUC requires binary labels")
		}
	}
	if pos == 0 || neg == 0 {
		return 0, errors.New("eval: AUC undefined with a single class")
	}

	type pair struct {
		score    float64
		positive bool
	}
	pairs := make([]pair, len(yTrue))
	for i := range yTrue {
		pairs[i] = pair{score: scores[i], positive: yTrue[i] == 1}
	}
	// stat.ROC requires scores in ascending order
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].score < pairs[b].score })

	y := make([]float64, len(pairs))
	classes := make([]bool, len(pairs))
	for i, p := range pairs {
		y[i] = p.score
		classes[i] = p.positive
	}
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}

// RMSE is the root mean squared error.
func RMSE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	sum := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(yTrue)))
}

// MAE is the mean absolute error.
func MAE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	sum := 0.0
	for i := range yTrue {
		sum += math.Abs(yPred[i] - yTrue[i])
	}
	return sum / float64(len(yTrue))
}

// R2 is the coefficient of determination. A constant target degrades to
// zero.
func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range yTrue {
		mean += v
	}
	mean /= float64(len(yTrue))

	var ssRes, ssTot float64
	for i := range yTrue {
		ssRes += (yTrue[i] - yPred[i]) * (yTrue[i] - yPred[i])
		ssTot += (yTrue[i] - mean) * (yTrue[i] - mean)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

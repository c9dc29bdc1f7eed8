package pipeline

import (
	"bytes"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnscope/domain/core"
	"churnscope/domain/tabular"
)

func churnFrame(t *testing.T, n int, seed int64) *tabular.Frame {
	t.Helper()
	rnd := rand.New(rand.NewSource(seed))
	tenure := make([]string, n)
	charges := make([]string, n)
	contract := make([]string, n)
	churn := make([]string, n)
	for i := 0; i < n; i++ {
		months := rnd.Intn(60) + 1
		tenure[i] = strconv.Itoa(months)
		charges[i] = strconv.FormatFloat(20+rnd.Float64()*80, 'f', 2, 64)
		plans := []string{"Month-to-Month", "One-Year", "Two-Year"}
		contract[i] = plans[rnd.Intn(len(plans))]
		if months < 12 && contract[i] == "Month-to-Month" {
			churn[i] = "Yes"
		} else {
			churn[i] = "No"
		}
	}
	f, err := tabular.NewFrame([]tabular.Column{
		{Name: "Tenure_Months", Values: tenure},
		{Name: "Monthly_Charges", Values: charges},
		{Name: "Contract_Type", Values: contract},
		{Name: "Churn", Values: churn},
	})
	require.NoError(t, err)
	return f
}

func allRows(f *tabular.Frame) []int {
	idx := make([]int, f.NumRows())
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func TestMedianImputerFillsMissing(t *testing.T) {
	imp := &MedianImputer{}
	imp.Fit([]string{"1", "3", "", "5"})
	assert.Equal(t, 3.0, imp.Median)

	out := imp.Transform([]string{"2", "NA", "garbage"})
	assert.Equal(t, []float64{2, 3, 3}, out)
}

func TestModeImputerTieBreaksLexicographically(t *testing.T) {
	imp := &ModeImputer{}
	imp.Fit([]string{"b", "a", "b", "a"})
	assert.Equal(t, "a", imp.Mode)

	out := imp.Transform([]string{"c", ""})
	assert.Equal(t, []string{"c", "a"}, out)
}

func TestStandardScalerCentersAndScales(t *testing.T) {
	s := &StandardScaler{}
	s.Fit([]float64{2, 4, 6})
	assert.InDelta(t, 4.0, s.Mean, 1e-9)

	out := s.Transform([]float64{4})
	assert.InDelta(t, 0.0, out[0], 1e-9)
}

func TestStandardScalerConstantColumn(t *testing.T) {
	s := &StandardScaler{}
	s.Fit([]float64{5, 5, 5})

	out := s.Transform([]float64{5, 7})
	assert.InDelta(t, 0.0, out[0], 1e-9)
	assert.InDelta(t, 2.0, out[1], 1e-9)
}

func TestOneHotEncoderUnseenCategoryIsZeroVector(t *testing.T) {
	enc := &OneHotEncoder{}
	enc.Fit([]string{"red", "blue", "red"})
	assert.Equal(t, []string{"blue", "red"}, enc.Categories)

	rows := enc.Transform([]string{"red", "green"})
	assert.Equal(t, []float64{0, 1}, rows[0])
	assert.Equal(t, []float64{0, 0}, rows[1])
}

func TestPreprocessorFeatureNamesOrder(t *testing.T) {
	f := churnFrame(t, 50, 1)
	roles := tabular.SplitRoles(f, "Churn")

	pre := BuildPreprocessor(roles.Numeric, roles.Categorical)
	_, err := pre.FitTransform(f)
	require.NoError(t, err)

	names := pre.FeatureNames()
	assert.Equal(t, []string{
		"Tenure_Months",
		"Monthly_Charges",
		"Contract_Type_Month-to-Month",
		"Contract_Type_One-Year",
		"Contract_Type_Two-Year",
	}, names)
	assert.Equal(t, len(names), pre.Width())
}

func TestPreprocessorMissingColumnIsSchemaMismatch(t *testing.T) {
	f := churnFrame(t, 30, 2)
	roles := tabular.SplitRoles(f, "Churn")

	pre := BuildPreprocessor(roles.Numeric, roles.Categorical)
	_, err := pre.FitTransform(f)
	require.NoError(t, err)

	dropped := f.Drop("Contract_Type")
	_, err = pre.Transform(dropped)
	assert.ErrorIs(t, err, core.ErrSchemaMismatch)
}

func TestParseTask(t *testing.T) {
	task, err := ParseTask("classification")
	require.NoError(t, err)
	assert.Equal(t, TaskClassification, task)

	_, err = ParseTask("clustering")
	assert.ErrorIs(t, err, core.ErrInvalidTask)
}

func TestPipelineFitPredictClassification(t *testing.T) {
	f := churnFrame(t, 300, 3)
	roles := tabular.SplitRoles(f, "Churn")

	p := NewPipeline(TaskClassification, "Churn", roles)
	require.NoError(t, p.Fit(f, allRows(f), FitOptions{Trees: 25}))
	assert.Equal(t, []string{"No", "Yes"}, p.Classes)
	require.NotNil(t, p.Classifier)
	assert.Nil(t, p.Regressor)

	preds, err := p.Predict(f)
	require.NoError(t, err)
	require.Len(t, preds, f.NumRows())
	for _, label := range preds {
		assert.Contains(t, []string{"No", "Yes"}, label)
	}

	scores, err := p.Scores(f)
	require.NoError(t, err)
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestPipelineFitRegression(t *testing.T) {
	f := churnFrame(t, 200, 4)
	roles := tabular.SplitRoles(f, "Monthly_Charges")

	p := NewPipeline(TaskRegression, "Monthly_Charges", roles)
	require.NoError(t, p.Fit(f, allRows(f), FitOptions{Trees: 20}))
	require.NotNil(t, p.Regressor)
	assert.Nil(t, p.Classifier)

	preds, err := p.Predict(f)
	require.NoError(t, err)
	for _, s := range preds {
		_, err := strconv.ParseFloat(s, 64)
		assert.NoError(t, err)
	}
}

func TestPipelineRegressionRejectsTextTarget(t *testing.T) {
	f := churnFrame(t, 60, 5)
	roles := tabular.SplitRoles(f, "Churn")

	p := NewPipeline(TaskRegression, "Churn", roles)
	err := p.Fit(f, allRows(f), FitOptions{Trees: 5})
	assert.ErrorIs(t, err, core.ErrDataFormat)
}

func TestPipelineDeterministicAcrossFits(t *testing.T) {
	f := churnFrame(t, 150, 6)
	roles := tabular.SplitRoles(f, "Churn")

	a := NewPipeline(TaskClassification, "Churn", roles)
	b := NewPipeline(TaskClassification, "Churn", roles)
	require.NoError(t, a.Fit(f, allRows(f), FitOptions{Trees: 10}))
	require.NoError(t, b.Fit(f, allRows(f), FitOptions{Trees: 10}))

	sa, err := a.Scores(f)
	require.NoError(t, err)
	sb, err := b.Scores(f)
	require.NoError(t, err)
	assert.Equal(t, sa, sb)
}

func TestPipelineGobRoundTrip(t *testing.T) {
	f := churnFrame(t, 120, 8)
	roles := tabular.SplitRoles(f, "Churn")

	p := NewPipeline(TaskClassification, "Churn", roles)
	require.NoError(t, p.Fit(f, allRows(f), FitOptions{Trees: 10}))

	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))

	restored, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, p.Schema, restored.Schema)
	assert.Equal(t, p.Classes, restored.Classes)

	want, err := p.Scores(f)
	require.NoError(t, err)
	got, err := restored.Scores(f)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPipelineUnfittedGuards(t *testing.T) {
	f := churnFrame(t, 20, 9)
	roles := tabular.SplitRoles(f, "Churn")

	p := NewPipeline(TaskClassification, "Churn", roles)
	_, err := p.Predict(f)
	assert.ErrorIs(t, err, core.ErrNotFitted)

	assert.ErrorIs(t, p.Encode(&bytes.Buffer{}), core.ErrNotFitted)
}

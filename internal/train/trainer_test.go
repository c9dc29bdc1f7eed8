package train

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnscope/adapters/blobstore"
	"churnscope/domain/core"
	"churnscope/internal/ingest"
	"churnscope/internal/testkit"
)

func setup(t *testing.T) (*Trainer, *blobstore.LocalFileStore, *blobstore.GobModelStore, *testkit.MemoryRunRegistry) {
	t.Helper()
	files, err := blobstore.NewLocalFileStore(t.TempDir())
	require.NoError(t, err)
	models, err := blobstore.NewGobModelStore(t.TempDir())
	require.NoError(t, err)
	registry := testkit.NewMemoryRunRegistry()

	cfg := DefaultConfig()
	cfg.Trees = 15
	trainer := NewTrainer(ingest.NewLoader(files), models, registry, cfg)
	return trainer, files, models, registry
}

func uploadChurnCSV(t *testing.T, files *blobstore.LocalFileStore, rows int) core.FileRef {
	t.Helper()
	data := testkit.GenerateChurnCSV(rows, 42)
	ref, err := files.Store(context.Background(), bytes.NewReader(data), "churn.csv")
	require.NoError(t, err)
	return ref
}

func TestTrainClassification(t *testing.T) {
	trainer, files, models, registry := setup(t)
	ctx := context.Background()
	ref := uploadChurnCSV(t, files, 400)

	result, err := trainer.Train(ctx, Request{FileRef: ref, Target: "Churn", Task: "classification"})
	require.NoError(t, err)

	assert.Equal(t, core.DeriveModelID(ref, "Churn"), result.ModelID)
	require.NotNil(t, result.Classification)
	assert.Nil(t, result.Regression)
	assert.GreaterOrEqual(t, result.Classification.Accuracy, 0.0)
	assert.LessOrEqual(t, result.Classification.Accuracy, 1.0)
	// binary target, so AUC should be present
	require.NotNil(t, result.Classification.AUC)
	assert.GreaterOrEqual(t, *result.Classification.AUC, 0.0)
	assert.LessOrEqual(t, *result.Classification.AUC, 1.0)

	assert.LessOrEqual(t, len(result.TopFeatures), 20)
	for i := 1; i < len(result.TopFeatures); i++ {
		assert.GreaterOrEqual(t, result.TopFeatures[i-1].Score, result.TopFeatures[i].Score)
	}

	ok, err := models.Exists(ctx, result.ModelID)
	require.NoError(t, err)
	assert.True(t, ok)

	run, err := registry.GetByModelID(ctx, string(result.ModelID))
	require.NoError(t, err)
	assert.Equal(t, "classification", run.Task)
	assert.Equal(t, result.NumRows, run.NumRows)
}

func TestTrainRegression(t *testing.T) {
	trainer, files, _, _ := setup(t)
	ctx := context.Background()
	ref := uploadChurnCSV(t, files, 300)

	result, err := trainer.Train(ctx, Request{FileRef: ref, Target: "Monthly_Charges", Task: "regression"})
	require.NoError(t, err)

	require.NotNil(t, result.Regression)
	assert.Nil(t, result.Classification)
	assert.GreaterOrEqual(t, result.Regression.RMSE, 0.0)
	assert.GreaterOrEqual(t, result.Regression.MAE, 0.0)
	assert.LessOrEqual(t, result.Regression.R2, 1.0)
}

func TestTrainInvalidTaskWritesNoArtifact(t *testing.T) {
	trainer, files, models, _ := setup(t)
	ctx := context.Background()
	ref := uploadChurnCSV(t, files, 100)

	_, err := trainer.Train(ctx, Request{FileRef: ref, Target: "Churn", Task: "clustering"})
	assert.ErrorIs(t, err, core.ErrInvalidTask)

	ids, err := models.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestTrainMissingTargetColumn(t *testing.T) {
	trainer, files, _, _ := setup(t)
	ctx := context.Background()
	ref := uploadChurnCSV(t, files, 100)

	_, err := trainer.Train(ctx, Request{FileRef: ref, Target: "Nope", Task: "classification"})
	assert.ErrorIs(t, err, core.ErrDataFormat)
}

func TestTrainMissingFile(t *testing.T) {
	trainer, _, _, _ := setup(t)

	_, err := trainer.Train(context.Background(), Request{FileRef: "ghost.csv", Target: "Churn", Task: "classification"})
	assert.ErrorIs(t, err, core.ErrDataFormat)
}

func TestTrainDeterministicMetrics(t *testing.T) {
	trainer, files, _, _ := setup(t)
	ctx := context.Background()
	ref := uploadChurnCSV(t, files, 250)

	a, err := trainer.Train(ctx, Request{FileRef: ref, Target: "Churn", Task: "classification"})
	require.NoError(t, err)
	b, err := trainer.Train(ctx, Request{FileRef: ref, Target: "Churn", Task: "classification"})
	require.NoError(t, err)

	assert.Equal(t, a.Classification, b.Classification)
	assert.Equal(t, a.TopFeatures, b.TopFeatures)
}

func TestTrainOverwritesSameModelID(t *testing.T) {
	trainer, files, models, _ := setup(t)
	ctx := context.Background()
	ref := uploadChurnCSV(t, files, 150)

	_, err := trainer.Train(ctx, Request{FileRef: ref, Target: "Churn", Task: "classification"})
	require.NoError(t, err)
	_, err = trainer.Train(ctx, Request{FileRef: ref, Target: "Churn", Task: "classification"})
	require.NoError(t, err)

	ids, err := models.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

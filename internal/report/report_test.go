package report

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnscope/adapters/blobstore"
	"churnscope/domain/core"
	"churnscope/domain/risk"
	"churnscope/internal/ingest"
	"churnscope/internal/testkit"
	"churnscope/internal/train"
)

func trainedModel(t *testing.T) (*Generator, *blobstore.LocalFileStore, core.FileRef, core.ModelID) {
	t.Helper()
	ctx := context.Background()
	files, err := blobstore.NewLocalFileStore(t.TempDir())
	require.NoError(t, err)
	models, err := blobstore.NewGobModelStore(t.TempDir())
	require.NoError(t, err)
	loader := ingest.NewLoader(files)

	data := testkit.GenerateChurnCSV(250, 42)
	ref, err := files.Store(ctx, bytes.NewReader(data), "churn.csv")
	require.NoError(t, err)

	cfg := train.DefaultConfig()
	cfg.Trees = 10
	trainer := train.NewTrainer(loader, models, nil, cfg)
	result, err := trainer.Train(ctx, train.Request{FileRef: ref, Target: "Churn", Task: "classification"})
	require.NoError(t, err)

	return NewGenerator(loader, models, files), files, ref, result.ModelID
}

func TestGenerateReport(t *testing.T) {
	gen, files, ref, modelID := trainedModel(t)
	ctx := context.Background()

	result, err := gen.Generate(ctx, Request{
		FileRef: ref,
		ModelID: modelID,
		Recommendations: map[risk.Tier]string{
			risk.TierHigh:   "Call immediately",
			risk.TierMedium: "Send retention offer",
			risk.TierLow:    "No action needed",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 250, result.TotalRows)
	total := result.TierCounts[risk.TierHigh] + result.TierCounts[risk.TierMedium] + result.TierCounts[risk.TierLow]
	assert.Equal(t, 250, total)

	r, err := files.Open(ctx, result.ReportFile)
	require.NoError(t, err)
	defer r.Close()
	raw, err := io.ReadAll(r)
	require.NoError(t, err)

	html := string(raw)
	assert.Contains(t, html, "Churn Risk Report")
	assert.Contains(t, html, "Summary")
	assert.Contains(t, html, "Top Drivers")
	assert.Contains(t, html, "Highest-Risk Rows")
	assert.Contains(t, html, "Call immediately")
	assert.True(t, strings.HasSuffix(string(result.ReportFile), ".html"))
}

func TestGenerateReportCustomThresholds(t *testing.T) {
	gen, _, ref, modelID := trainedModel(t)

	// thresholds of zero push every row into the High tier
	result, err := gen.Generate(context.Background(), Request{
		FileRef:    ref,
		ModelID:    modelID,
		Thresholds: &risk.Thresholds{High: 0, Medium: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, result.TotalRows, result.TierCounts[risk.TierHigh])
	assert.Equal(t, 0, result.TierCounts[risk.TierMedium])
	assert.Equal(t, 0, result.TierCounts[risk.TierLow])
}

func TestGenerateReportUnknownModel(t *testing.T) {
	gen, _, ref, _ := trainedModel(t)

	_, err := gen.Generate(context.Background(), Request{FileRef: ref, ModelID: "missing"})
	assert.ErrorIs(t, err, core.ErrModelNotFound)
}

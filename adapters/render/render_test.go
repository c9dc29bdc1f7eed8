package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnscope/domain/eval"
)

func TestWeightChartPNG(t *testing.T) {
	weights := []eval.Weight{
		{Name: "Tenure_Months", Score: 0.42},
		{Name: "Contract_Type_Month-to-Month", Score: 0.31},
		{Name: "Monthly_Charges", Score: 0.12},
	}

	var buf bytes.Buffer
	require.NoError(t, WeightChartPNG(&buf, "Feature Attribution", weights))

	// PNG magic bytes
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestMarkdownReportHTML(t *testing.T) {
	md := []byte("# Churn Report\n\n| Tier | Count |\n|---|---|\n| High | 3 |\n")

	var buf bytes.Buffer
	require.NoError(t, MarkdownReportHTML(&buf, "Churn Report", md))

	out := buf.String()
	assert.Contains(t, out, "<title>Churn Report</title>")
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<table>")
}

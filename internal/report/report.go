// Package report builds risk-tiered churn reports from saved models and
// stored datasets.
package report

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"churnscope/adapters/blobstore"
	"churnscope/adapters/render"
	"churnscope/domain/core"
	"churnscope/domain/eval"
	"churnscope/domain/risk"
	"churnscope/internal/ingest"
	"churnscope/ports"
)

const (
	topDrivers   = 10
	topRiskyRows = 50
)

// Generator scores datasets and renders risk reports.
type Generator struct {
	loader *ingest.Loader
	models ports.ModelStore
	files  ports.FileStore
}

// NewGenerator wires a report generator.
func NewGenerator(loader *ingest.Loader, models ports.ModelStore, files ports.FileStore) *Generator {
	return &Generator{loader: loader, models: models, files: files}
}

// Request configures one report run. Zero thresholds fall back to the
// defaults; recommendations are free text attached per tier.
type Request struct {
	FileRef         core.FileRef         `json:"file_id"`
	ModelID         core.ModelID         `json:"model_id"`
	Thresholds      *risk.Thresholds     `json:"thresholds,omitempty"`
	Recommendations map[risk.Tier]string `json:"recommendations,omitempty"`
}

// Result points at the rendered report and summarizes the tier counts.
type Result struct {
	ReportFile core.FileRef      `json:"report_file"`
	TotalRows  int               `json:"total_rows"`
	TierCounts map[risk.Tier]int `json:"tier_counts"`
}

type scoredRow struct {
	index int
	score float64
}

// Generate scores every row, buckets scores into tiers and persists an HTML
// report with summary counts, global drivers and the highest-risk rows.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	pipe, err := g.models.Load(ctx, req.ModelID)
	if err != nil {
		return nil, err
	}
	frame, err := g.loader.Load(ctx, req.FileRef)
	if err != nil {
		return nil, err
	}

	scores, err := pipe.Scores(frame)
	if err != nil {
		return nil, err
	}

	thresholds := risk.DefaultThresholds()
	if req.Thresholds != nil {
		thresholds = *req.Thresholds
	}
	counts := thresholds.Counts(scores)

	// drivers come from native importances; silently omitted on mismatch
	var drivers []eval.Weight
	if importances, err := pipe.FeatureImportances(); err == nil && len(importances) == len(pipe.Schema.Encoded) {
		drivers = eval.TopWeights(pipe.Schema.Encoded, importances, topDrivers)
	}

	high := make([]scoredRow, 0)
	for i, s := range scores {
		if thresholds.Classify(s) == risk.TierHigh {
			high = append(high, scoredRow{index: i, score: s})
		}
	}
	sort.SliceStable(high, func(a, b int) bool { return high[a].score > high[b].score })
	if len(high) > topRiskyRows {
		high = high[:topRiskyRows]
	}

	md := buildMarkdown(len(scores), counts, req.Recommendations, drivers, high)

	var buf bytes.Buffer
	if err := render.MarkdownReportHTML(&buf, "Churn Risk Report", md); err != nil {
		return nil, err
	}
	name := blobstore.ArtifactName("churn_report", ".html")
	ref, err := g.files.StoreNamed(ctx, &buf, name)
	if err != nil {
		return nil, err
	}

	log.Printf("[Report] Generated report for model %s over %d rows -> %s", req.ModelID, len(scores), ref)
	return &Result{ReportFile: ref, TotalRows: len(scores), TierCounts: counts}, nil
}

// buildMarkdown assembles the three fixed report sections.
func buildMarkdown(total int, counts map[risk.Tier]int, recs map[risk.Tier]string, drivers []eval.Weight, high []scoredRow) []byte {
	var b strings.Builder
	b.WriteString("# Churn Risk Report\n\n")

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "Total rows scored: **%d**\n\n", total)
	b.WriteString("| Risk Tier | Rows | Recommendation |\n|---|---|---|\n")
	for _, tier := range []risk.Tier{risk.TierHigh, risk.TierMedium, risk.TierLow} {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", tier, counts[tier], recs[tier])
	}
	b.WriteString("\n")

	b.WriteString("## Top Drivers\n\n")
	if len(drivers) == 0 {
		b.WriteString("Driver importances unavailable for this model.\n\n")
	} else {
		b.WriteString("| Rank | Feature | Importance |\n|---|---|---|\n")
		for i, d := range drivers {
			fmt.Fprintf(&b, "| %d | %s | %.4f |\n", i+1, d.Name, d.Score)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Highest-Risk Rows\n\n")
	if len(high) == 0 {
		b.WriteString("No rows fell into the High tier.\n")
	} else {
		b.WriteString("| Row | Score |\n|---|---|\n")
		for _, row := range high {
			fmt.Fprintf(&b, "| %d | %.4f |\n", row.index, row.score)
		}
	}
	return []byte(b.String())
}

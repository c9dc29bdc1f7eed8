// Package render turns model outputs into shareable artifacts: attribution
// charts and HTML reports.
package render

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"churnscope/domain/eval"
)

// WeightChartPNG renders ranked feature weights as a bar chart PNG. Weights
// arrive sorted descending; the chart keeps that order left to right.
func WeightChartPNG(w io.Writer, title string, weights []eval.Weight) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "mean |contribution|"
	p.X.Tick.Label.Rotation = -0.6
	p.X.Tick.Label.XAlign = -0.8

	values := make(plotter.Values, len(weights))
	names := make([]string, len(weights))
	for i, weight := range weights {
		values[i] = weight.Score
		names[i] = weight.Name
	}

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return fmt.Errorf("building bar chart: %w", err)
	}
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)

	wt, err := p.WriterTo(10*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writing chart: %w", err)
	}
	return nil
}

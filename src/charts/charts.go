// Package charts renders the benchmark report images. Each renderer is a pure
// transformation from the loaded record set to one PNG on disk; nothing is
// shared between renderers beyond the input records.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/sashank1508/IDIOMS/src/benchdata"
)

// Fixed output names, one per report stage.
const (
	OverallFile     = "overall_improvement.png"
	PerQueryFile    = "performance_by_popularity.png"
	CorrelationFile = "improvement_vs_popularity.png"
	ReplicationFile = "replication_impact.png"
)

const chartDPI = 300

// perQueryLimit caps the per-query chart at the most popular patterns so the
// x-axis stays readable.
const perQueryLimit = 10

var (
	standardBlue  = color.RGBA{R: 0x34, G: 0x98, B: 0xdb, A: 0xff}
	adaptiveGreen = color.RGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}
	impactOrange  = color.RGBA{R: 0xf3, G: 0x9c, B: 0x12, A: 0xff}
)

// RenderOverall draws the two-bar total-time comparison with the computed
// improvement percentage annotated above the adaptive bar. A zero standard
// total leaves the improvement undefined and is annotated as n/a.
func RenderOverall(recs []benchdata.Record, source, outPath string) error {
	if len(recs) == 0 {
		return errors.New("no records to chart")
	}
	sum := benchdata.OverallTotals(recs)

	p := plot.New()
	p.Title.Text = "Overall Performance Comparison"
	p.Y.Label.Text = "Total Query Time (ms)"
	p.Add(plotter.NewGrid())

	w := vg.Points(55)
	stdBar, err := plotter.NewBarChart(plotter.Values{sum.StandardTotal, 0}, w)
	if err != nil {
		return fmt.Errorf("standard bars: %w", err)
	}
	stdBar.Color = standardBlue
	stdBar.LineStyle.Width = 0
	adpBar, err := plotter.NewBarChart(plotter.Values{0, sum.AdaptiveTotal}, w)
	if err != nil {
		return fmt.Errorf("adaptive bars: %w", err)
	}
	adpBar.Color = adaptiveGreen
	adpBar.LineStyle.Width = 0
	p.Add(stdBar, adpBar)
	p.Legend.Add("Standard IDIOMS", stdBar)
	p.Legend.Add("Adaptive IDIOMS", adpBar)
	p.Legend.Top = true

	maxTotal := math.Max(sum.StandardTotal, sum.AdaptiveTotal)
	improvement := "improvement: n/a"
	if sum.Valid {
		improvement = fmt.Sprintf("%.2f%% improvement", sum.ImprovementPct)
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs: plotter.XYs{
			{X: 0, Y: sum.StandardTotal + 0.02*maxTotal},
			{X: 1, Y: sum.AdaptiveTotal + 0.02*maxTotal},
			{X: 1, Y: sum.AdaptiveTotal + 0.10*maxTotal},
		},
		Labels: []string{
			fmt.Sprintf("%.2f ms", sum.StandardTotal),
			fmt.Sprintf("%.2f ms", sum.AdaptiveTotal),
			improvement,
		},
	})
	if err != nil {
		return fmt.Errorf("bar labels: %w", err)
	}
	centerLabels(labels)
	p.Add(labels)

	p.X.Min, p.X.Max = -0.5, 1.5
	p.X.Tick.Marker = plot.ConstantTicks([]plot.Tick{
		{Value: 0, Label: "Standard IDIOMS"},
		{Value: 1, Label: "Adaptive IDIOMS"},
	})
	p.Y.Min = 0
	p.Y.Max *= 1.15

	return savePlotPNG(p, 10*vg.Inch, 6*vg.Inch, source, outPath)
}

// RenderPerQuery draws grouped standard/adaptive bars for the most popular
// query patterns, annotated with each pattern's replication factor.
func RenderPerQuery(recs []benchdata.Record, source, outPath string) error {
	top := benchdata.TopByPopularity(recs, perQueryLimit)
	if len(top) == 0 {
		return errors.New("no records to chart")
	}

	std := make(plotter.Values, len(top))
	adp := make(plotter.Values, len(top))
	maxTime := 0.0
	for i, r := range top {
		std[i] = r.StandardTime
		adp[i] = r.AdaptiveTime
		maxTime = math.Max(maxTime, math.Max(r.StandardTime, r.AdaptiveTime))
	}

	p := plot.New()
	p.Title.Text = "Performance by Query Pattern (Most Popular First)"
	p.X.Label.Text = "Query Pattern"
	p.Y.Label.Text = "Query Time (ms)"
	p.Add(plotter.NewGrid())

	barWidth := vg.Points(16)
	barSpacing := vg.Points(3)
	stdBar, err := plotter.NewBarChart(std, barWidth)
	if err != nil {
		return fmt.Errorf("standard bars: %w", err)
	}
	stdBar.Color = standardBlue
	stdBar.LineStyle.Width = 0
	stdBar.Offset = -(barWidth + barSpacing) / 2
	adpBar, err := plotter.NewBarChart(adp, barWidth)
	if err != nil {
		return fmt.Errorf("adaptive bars: %w", err)
	}
	adpBar.Color = adaptiveGreen
	adpBar.LineStyle.Width = 0
	adpBar.Offset = (barWidth + barSpacing) / 2
	p.Add(stdBar, adpBar)
	p.Legend.Add("Standard IDIOMS", stdBar)
	p.Legend.Add("Adaptive IDIOMS", adpBar)
	p.Legend.Top = true

	ticks := make([]plot.Tick, len(top))
	rfXYs := make(plotter.XYs, len(top))
	rfLabels := make([]string, len(top))
	for i, r := range top {
		ticks[i] = plot.Tick{Value: float64(i), Label: r.Query}
		rfXYs[i] = plotter.XY{X: float64(i), Y: math.Max(std[i], adp[i]) + 0.03*maxTime}
		rfLabels[i] = fmt.Sprintf("RF: %d", r.ReplicationFactor)
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: rfXYs, Labels: rfLabels})
	if err != nil {
		return fmt.Errorf("replication labels: %w", err)
	}
	centerLabels(labels)
	p.Add(labels)

	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	p.X.Min, p.X.Max = -0.5, float64(len(top))-0.5
	p.Y.Min = 0
	p.Y.Max *= 1.12

	return savePlotPNG(p, 12*vg.Inch, 8*vg.Inch, source, outPath)
}

// RenderReplication draws one bar of mean improvement per distinct replication
// factor, each annotated to two decimals.
func RenderReplication(recs []benchdata.Record, source, outPath string) error {
	groups := benchdata.GroupByReplication(recs)
	if len(groups) == 0 {
		return errors.New("no records to chart")
	}

	values := make(plotter.Values, len(groups))
	maxMean := 0.0
	for i, g := range groups {
		values[i] = g.MeanImprovement
		maxMean = math.Max(maxMean, math.Abs(g.MeanImprovement))
	}
	if maxMean == 0 {
		maxMean = 1
	}

	p := plot.New()
	p.Title.Text = "Impact of Replication Factor on Query Performance"
	p.X.Label.Text = "Replication Factor"
	p.Y.Label.Text = "Average Improvement (%)"
	p.Add(plotter.NewGrid())

	bars, err := plotter.NewBarChart(values, vg.Points(55))
	if err != nil {
		return fmt.Errorf("bars: %w", err)
	}
	bars.Color = impactOrange
	bars.LineStyle.Width = 0
	p.Add(bars)

	ticks := make([]plot.Tick, len(groups))
	xys := make(plotter.XYs, len(groups))
	annotations := make([]string, len(groups))
	for i, g := range groups {
		ticks[i] = plot.Tick{Value: float64(i), Label: fmt.Sprintf("%d", g.Factor)}
		xys[i] = plotter.XY{X: float64(i), Y: math.Max(g.MeanImprovement, 0) + 0.02*maxMean}
		annotations[i] = fmt.Sprintf("%.2f%%", g.MeanImprovement)
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: annotations})
	if err != nil {
		return fmt.Errorf("bar labels: %w", err)
	}
	centerLabels(labels)
	p.Add(labels)

	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Min, p.X.Max = -0.5, float64(len(groups))-0.5
	if p.Y.Max > 0 {
		p.Y.Max *= 1.12
	}

	return savePlotPNG(p, 12*vg.Inch, 6*vg.Inch, source, outPath)
}

func centerLabels(l *plotter.Labels) {
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = text.XCenter
	}
}

// savePlotPNG renders a plot at 300 DPI, stamps the source caption and writes
// the PNG.
func savePlotPNG(p *plot.Plot, w, h vg.Length, source, outPath string) error {
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(chartDPI))
	p.Draw(vgdraw.New(c))

	var buf bytes.Buffer
	if err := png.Encode(&buf, stampFooter(c.Image(), "source: "+source)); err != nil {
		return fmt.Errorf("png encode %s: %w", outPath, err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}

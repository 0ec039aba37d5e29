package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"
	"sort"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot/palette/brewer"

	"github.com/sashank1508/IDIOMS/src/benchdata"
)

// labelWorthy reports whether a point gets a query-name annotation. The
// thresholds keep dense clusters readable: only clearly popular or clearly
// improved patterns are named.
func labelWorthy(r benchdata.Record) bool {
	return r.Popularity > 10 || r.Improvement > 30
}

// rfDotWidth scales the marker linearly with the replication factor.
func rfDotWidth(factor int) float64 {
	w := 3 + 2*float64(factor)
	if w > 15 {
		w = 15
	}
	return w
}

// replicationPalette maps n replication-factor buckets onto a sequential
// color ramp, low factors light and high factors dark.
func replicationPalette(n int) []drawing.Color {
	cnt := n
	if cnt < 3 {
		cnt = 3
	}
	if cnt > 9 {
		cnt = 9
	}
	fallback := []drawing.Color{
		{R: 0xed, G: 0xf8, B: 0xb1, A: 0xff},
		{R: 0x7f, G: 0xcd, B: 0xbb, A: 0xff},
		{R: 0x2c, G: 0x7f, B: 0xb8, A: 0xff},
	}
	pal, err := brewer.GetPalette(brewer.TypeSequential, "YlGnBu", cnt)
	colors := fallback
	if err == nil {
		src := pal.Colors()
		colors = make([]drawing.Color, len(src))
		for i, c := range src {
			r, g, b, a := c.RGBA()
			colors[i] = drawing.Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
		}
	}
	out := make([]drawing.Color, n)
	for i := range out {
		idx := len(colors) - 1
		if n > 1 {
			idx = i * (len(colors) - 1) / (n - 1)
		}
		out[i] = colors[idx]
	}
	return out
}

// RenderCorrelation draws the improvement-vs-popularity scatter. Points are
// grouped into one series per replication factor (sized and colored by the
// factor, with a legend entry each), overlaid with a dashed least-squares
// trend line and selective query-name annotations.
func RenderCorrelation(recs []benchdata.Record, source, outPath string) error {
	if len(recs) == 0 {
		return errors.New("no records to chart")
	}

	byFactor := map[int][]benchdata.Record{}
	for _, r := range recs {
		byFactor[r.ReplicationFactor] = append(byFactor[r.ReplicationFactor], r)
	}
	factors := make([]int, 0, len(byFactor))
	for f := range byFactor {
		factors = append(factors, f)
	}
	sort.Ints(factors)
	colors := replicationPalette(len(factors))

	minX, maxX := recs[0].Popularity, recs[0].Popularity
	minY, maxY := recs[0].Improvement, recs[0].Improvement
	for _, r := range recs {
		minX = min(minX, r.Popularity)
		maxX = max(maxX, r.Popularity)
		minY = min(minY, r.Improvement)
		maxY = max(maxY, r.Improvement)
	}

	series := make([]chart.Series, 0, len(factors)+2)
	for i, f := range factors {
		rows := byFactor[f]
		xs := make([]float64, len(rows))
		ys := make([]float64, len(rows))
		for j, r := range rows {
			xs[j] = r.Popularity
			ys[j] = r.Improvement
		}
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("RF %d", f),
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(colors[i], rfDotWidth(f)),
		})
	}

	if t, ok := benchdata.TrendLine(recs); ok {
		minY = min(minY, min(t.Slope*minX+t.Intercept, t.Slope*maxX+t.Intercept))
		maxY = max(maxY, max(t.Slope*minX+t.Intercept, t.Slope*maxX+t.Intercept))
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("Trend: y=%.2fx+%.2f", t.Slope, t.Intercept),
			XValues: []float64{minX, maxX},
			YValues: []float64{t.Slope*minX + t.Intercept, t.Slope*maxX + t.Intercept},
			Style: chart.Style{
				StrokeColor:     chart.ColorRed,
				StrokeWidth:     2.0,
				StrokeDashArray: []float64{6.0, 4.0},
			},
		})
	}

	var annotations []chart.Value2
	for _, r := range recs {
		if labelWorthy(r) {
			annotations = append(annotations, chart.Value2{XValue: r.Popularity, YValue: r.Improvement, Label: r.Query})
		}
	}
	if len(annotations) > 0 {
		series = append(series, chart.AnnotationSeries{
			Annotations: annotations,
			Style: chart.Style{
				FontSize:    8,
				StrokeWidth: 1,
				StrokeColor: chart.ColorAlternateGray,
			},
		})
	}

	nMinX, nMaxX := niceAxisBounds(minX, maxX)
	nMinY, nMaxY := niceAxisBounds(minY, maxY)
	ch := chart.Chart{
		Title:      "Performance Improvement vs. Query Popularity",
		DPI:        chartDPI,
		Width:      3600,
		Height:     2400,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 40, Right: 40, Bottom: 40}},
		XAxis: chart.XAxis{
			Name:  "Popularity Score",
			Range: &chart.ContinuousRange{Min: nMinX, Max: nMaxX},
			Ticks: niceTicks(nMinX, nMaxX, 6),
		},
		YAxis: chart.YAxis{
			Name:  "Performance Improvement (%)",
			Range: &chart.ContinuousRange{Min: nMinY, Max: nMaxY},
			Ticks: niceTicks(nMinY, nMaxY, 6),
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var rendered bytes.Buffer
	if err := ch.Render(chart.PNG, &rendered); err != nil {
		return fmt.Errorf("render %s: %w", outPath, err)
	}
	img, err := png.Decode(&rendered)
	if err != nil {
		return fmt.Errorf("decode %s: %w", outPath, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, stampFooter(img, "source: "+source)); err != nil {
		return fmt.Errorf("png encode %s: %w", outPath, err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}

package chart

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/fogleman/gg"

	"spreadview/internal/domain"
)

// Plot margins in pixels. The right margin is wide enough to carry the
// benchmark-line labels.
const (
	marginTop    = 20.0
	marginRight  = 80.0
	marginBottom = 32.0
	marginLeft   = 64.0
)

const (
	horizontalGridLines = 5
	verticalGridLines   = 6
	timeAxisLabels      = 6
)

// Renderer paints one intraday chart per Render call onto a surface of the
// given dimensions. It holds no per-render state, so a single Renderer can
// serve concurrent requests.
type Renderer struct {
	Width    int
	Height   int
	Location *time.Location // exchange-local zone for the time axis
}

// NewRenderer creates a Renderer for the given surface size, labelling the
// time axis in loc (nil means UTC).
func NewRenderer(width, height int, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{Width: width, Height: height, Location: loc}
}

// Render draws the price polyline, grid, benchmark lines, and time axis for
// the series and returns the finished image. The surface is cleared first;
// there is no incremental patching. Benchmarks that are absent (zero or
// negative) are excluded from scaling and never drawn; present benchmarks
// that still fall outside the padded range are silently skipped.
func (r *Renderer) Render(points []domain.PricePoint, bench domain.BenchmarkLines) (image.Image, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return nil, fmt.Errorf("rendering chart: surface %dx%d unavailable: %w", r.Width, r.Height, domain.ErrInvalidInput)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("rendering chart: %w", domain.ErrInvalidInput)
	}

	closes := make([]float64, len(points))
	for i := range points {
		closes[i] = points[i].Close
	}
	rng, err := ComputeRange(closes, presentBenchmarks(bench)...)
	if err != nil {
		return nil, err
	}

	w := float64(r.Width)
	h := float64(r.Height)
	plotW := w - marginLeft - marginRight
	plotH := h - marginTop - marginBottom
	if plotW <= 0 || plotH <= 0 {
		return nil, fmt.Errorf("rendering chart: surface %dx%d too small for plot margins: %w", r.Width, r.Height, domain.ErrInvalidInput)
	}

	xAt := func(i int) float64 {
		if len(points) == 1 {
			return marginLeft + plotW/2
		}
		return marginLeft + plotW*float64(i)/float64(len(points)-1)
	}
	yAt := func(v float64) float64 {
		return marginTop + plotH - (v-rng.Min)/(rng.Max-rng.Min)*plotH
	}

	dc := gg.NewContext(r.Width, r.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Horizontal grid with price labels, top to bottom.
	for i := 0; i < horizontalGridLines; i++ {
		frac := float64(i) / float64(horizontalGridLines-1)
		y := marginTop + plotH*frac
		price := rng.Max - (rng.Max-rng.Min)*frac

		dc.SetRGB(0.85, 0.85, 0.85)
		dc.SetLineWidth(1)
		dc.DrawLine(marginLeft, y, marginLeft+plotW, y)
		dc.Stroke()

		dc.SetRGB(0.25, 0.25, 0.25)
		dc.DrawStringAnchored(fmt.Sprintf("%.2f", price), marginLeft-6, y, 1, 0.35)
	}

	// Vertical grid, purely visual.
	dc.SetRGB(0.9, 0.9, 0.9)
	dc.SetLineWidth(1)
	for j := 0; j < verticalGridLines; j++ {
		x := marginLeft + plotW*float64(j)/float64(verticalGridLines-1)
		dc.DrawLine(x, marginTop, x, marginTop+plotH)
		dc.Stroke()
	}

	// Close-price polyline.
	dc.SetRGB(0.12, 0.45, 0.85)
	dc.SetLineWidth(1.5)
	for i := range points {
		if i == 0 {
			dc.MoveTo(xAt(i), yAt(points[i].Close))
			continue
		}
		dc.LineTo(xAt(i), yAt(points[i].Close))
	}
	dc.Stroke()

	// Benchmark lines: current price solid, strikes dashed.
	r.drawBenchmark(dc, rng, plotW, yAt, "Current", bench.CurrentPrice, false, 0.15, 0.55, 0.3)
	r.drawBenchmark(dc, rng, plotW, yAt, "Sell", bench.SellStrike, true, 0.8, 0.2, 0.2)
	r.drawBenchmark(dc, rng, plotW, yAt, "Buy", bench.BuyStrike, true, 0.9, 0.55, 0.1)

	// Time axis: evenly sampled labels, each showing the exchange-local
	// wall-clock time of the nearest data point.
	dc.SetRGB(0.25, 0.25, 0.25)
	for k := 0; k < timeAxisLabels; k++ {
		frac := float64(k) / float64(timeAxisLabels-1)
		x := marginLeft + plotW*frac
		idx := int(math.Round(frac * float64(len(points)-1)))
		label := points[idx].Timestamp.In(r.Location).Format("3:04 PM")
		dc.DrawStringAnchored(label, x, marginTop+plotH+14, 0.5, 0.35)
	}

	return dc.Image(), nil
}

// RenderPNG renders the chart and encodes it as PNG bytes.
func (r *Renderer) RenderPNG(points []domain.PricePoint, bench domain.BenchmarkLines) ([]byte, error) {
	img, err := r.Render(points, bench)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := gg.NewContextForImage(img).EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding chart PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawBenchmark(dc *gg.Context, rng domain.AxisRange, plotW float64, yAt func(float64) float64, name string, v float64, dashed bool, red, green, blue float64) {
	if v <= 0 || !Contains(rng, v) {
		return
	}
	y := yAt(v)

	dc.SetRGB(red, green, blue)
	dc.SetLineWidth(1)
	if dashed {
		dc.SetDash(5, 4)
	}
	dc.DrawLine(marginLeft, y, marginLeft+plotW, y)
	dc.Stroke()
	dc.SetDash()

	dc.DrawStringAnchored(fmt.Sprintf("%s %.2f", name, v), marginLeft+plotW+4, y, 0, 0.35)
}

// presentBenchmarks returns the benchmark values that take part in axis
// scaling. Zero and negative values mean "absent".
func presentBenchmarks(b domain.BenchmarkLines) []float64 {
	var vals []float64
	for _, v := range []float64{b.CurrentPrice, b.BuyStrike, b.SellStrike} {
		if v > 0 {
			vals = append(vals, v)
		}
	}
	return vals
}

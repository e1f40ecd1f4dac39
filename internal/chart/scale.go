// Package chart computes price-axis scaling and renders intraday price
// charts (grid, close-price polyline, benchmark lines, time axis) to PNG.
// Every render is a full redraw of a fresh surface.
package chart

import (
	"fmt"

	"spreadview/internal/domain"
)

// Fraction of the tightest bounding span added as padding above and below.
const paddingFraction = 0.10

// Absolute padding applied when the bounding span is zero (all samples and
// benchmarks equal), so a degenerate series still gets a usable axis.
const degeneratePadding = 1.0

// ComputeRange returns a padded axis range covering every close price and
// every benchmark value. All inputs end up strictly inside [Min, Max].
// An empty price sequence is ErrInvalidInput: there is nothing to scale and
// the caller must not render.
func ComputeRange(closes []float64, benchmarks ...float64) (domain.AxisRange, error) {
	if len(closes) == 0 {
		return domain.AxisRange{}, fmt.Errorf("computing axis range: empty price series: %w", domain.ErrInvalidInput)
	}

	lo, hi := closes[0], closes[0]
	for _, v := range closes[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	for _, v := range benchmarks {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	pad := (hi - lo) * paddingFraction
	if pad == 0 {
		pad = degeneratePadding
	}
	return domain.AxisRange{Min: lo - pad, Max: hi + pad}, nil
}

// Contains reports whether v lies inside the range (inclusive).
func Contains(r domain.AxisRange, v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Package market supplies intraday price series for the chart layer. The
// series can come from the analysis collaborator or straight from the
// Alpaca market-data API; both produce the same IntradaySeries shape.
package market

import (
	"context"

	"spreadview/internal/domain"
)

// BarSource fetches one intraday series per call. The optional strike pair
// is carried through as benchmark lines; zero strikes mean absent.
type BarSource interface {
	Intraday(ctx context.Context, symbol, interval string, sellStrike, buyStrike float64) (*domain.IntradaySeries, error)
}

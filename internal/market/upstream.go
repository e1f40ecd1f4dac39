package market

import (
	"context"

	"spreadview/internal/domain"
	"spreadview/internal/upstream"
)

var _ BarSource = (*UpstreamSource)(nil)

// UpstreamSource serves intraday series from the analysis collaborator,
// which already returns benchmark lines alongside the candles.
type UpstreamSource struct {
	client *upstream.Client
}

// NewUpstreamSource creates a BarSource backed by the collaborator API.
func NewUpstreamSource(client *upstream.Client) *UpstreamSource {
	return &UpstreamSource{client: client}
}

// Intraday fetches the series and converts the wire shape to the domain
// series.
func (s *UpstreamSource) Intraday(ctx context.Context, symbol, interval string, sellStrike, buyStrike float64) (*domain.IntradaySeries, error) {
	resp, err := s.client.GetIntraday(ctx, symbol, interval, sellStrike, buyStrike)
	if err != nil {
		return nil, err
	}

	return &domain.IntradaySeries{
		Ticker:       symbol,
		Interval:     resp.Interval,
		Points:       resp.PriceData,
		Benchmarks:   resp.BenchmarkLines,
		TotalCandles: resp.Metadata.TotalCandles,
		LastUpdated:  resp.Metadata.LastUpdated,
	}, nil
}

package market

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"spreadview/internal/domain"
)

var _ BarSource = (*AlpacaSource)(nil)

// AlpacaSource serves intraday series straight from the Alpaca market-data
// API: candles from GetBars, the current-price benchmark from the latest
// trade. Strike benchmarks are passed through from the caller.
type AlpacaSource struct {
	client  *marketdata.Client
	feed    marketdata.Feed
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewAlpacaSource creates an AlpacaSource with the given credentials. An
// empty dataURL uses the SDK default endpoint.
func NewAlpacaSource(apiKey, apiSecret, dataURL, feed string, rateLimitPerMin int, log *slog.Logger) *AlpacaSource {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	if feed == "" {
		feed = "iex"
	}
	if rateLimitPerMin <= 0 {
		rateLimitPerMin = 200
	}
	if log == nil {
		log = slog.Default()
	}

	return &AlpacaSource{
		client:  marketdata.NewClient(opts),
		feed:    marketdata.Feed(feed),
		limiter: rate.NewLimiter(rate.Limit(float64(rateLimitPerMin)/60.0), 1),
		log:     log.With("component", "alpaca"),
	}
}

var intervalPattern = regexp.MustCompile(`^(\d+)([mhd])$`)

// parseInterval maps an interval label like "5m", "1h", or "1d" to an
// Alpaca timeframe plus the lookback window worth charting at that
// resolution. Unrecognized labels fall back to 5-minute candles.
func parseInterval(interval string) (marketdata.TimeFrame, time.Duration) {
	m := intervalPattern.FindStringSubmatch(interval)
	if m == nil {
		return marketdata.NewTimeFrame(5, marketdata.Min), 24 * time.Hour
	}
	n, _ := strconv.Atoi(m[1])
	if n <= 0 {
		n = 1
	}
	switch m[2] {
	case "h":
		return marketdata.NewTimeFrame(n, marketdata.Hour), 7 * 24 * time.Hour
	case "d":
		return marketdata.NewTimeFrame(n, marketdata.Day), 180 * 24 * time.Hour
	default:
		return marketdata.NewTimeFrame(n, marketdata.Min), 24 * time.Hour
	}
}

// Intraday fetches candles for the interval's lookback window, newest last.
func (s *AlpacaSource) Intraday(ctx context.Context, symbol, interval string, sellStrike, buyStrike float64) (*domain.IntradaySeries, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &domain.FetchError{Ticker: symbol, Err: err}
	}

	timeframe, lookback := parseInterval(interval)

	var bars []marketdata.Bar
	operation := func() error {
		var err error
		bars, err = s.client.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame:  timeframe,
			Start:      time.Now().Add(-lookback),
			TotalLimit: 500,
			Feed:       s.feed,
		})
		return err
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, 3), ctx)); err != nil {
		return nil, &domain.FetchError{Ticker: symbol, Err: fmt.Errorf("alpaca bars: %w", err)}
	}
	if len(bars) == 0 {
		return nil, &domain.FetchError{Ticker: symbol, Err: fmt.Errorf("alpaca bars: %w", domain.ErrNotFound)}
	}

	points := make([]domain.PricePoint, len(bars))
	for i, b := range bars {
		points[i] = domain.PricePoint{
			Timestamp: b.Timestamp,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    int64(b.Volume),
		}
	}

	current := points[len(points)-1].Close
	if trade, err := s.client.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{Feed: s.feed}); err == nil && trade != nil && trade.Price > 0 {
		current = trade.Price
	} else if err != nil {
		// The last close is a good enough benchmark when the trade tape
		// is briefly unavailable.
		s.log.Warn("latest trade unavailable, using last close", "symbol", symbol, "error", err)
	}

	return &domain.IntradaySeries{
		Ticker:   symbol,
		Interval: interval,
		Points:   points,
		Benchmarks: domain.BenchmarkLines{
			CurrentPrice: current,
			SellStrike:   sellStrike,
			BuyStrike:    buyStrike,
		},
		TotalCandles: len(points),
		LastUpdated:  time.Now().UTC(),
	}, nil
}

// Package upstream is the HTTP client for the spread-analysis collaborator:
// the service that selects recommended spreads and serves intraday chart
// series. spreadview imposes only the response shapes here; it owns no wire
// format of its own.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"spreadview/internal/domain"
)

// Client is a rate-limited, retrying HTTP client for the analysis API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries uint64
	log        *slog.Logger
}

// Options configures a Client. Zero values get sensible defaults.
type Options struct {
	BaseURL        string
	RequestsPerSec int
	MaxRetries     int
	Timeout        time.Duration
}

// NewClient creates a Client for the analysis API at opts.BaseURL.
func NewClient(opts Options, log *slog.Logger) *Client {
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.RequestsPerSec),
		maxRetries: uint64(opts.MaxRetries),
		log:        log.With("component", "upstream"),
	}
}

// GetSpreadAnalysis fetches the raw live analysis payload for a ticker.
// The payload is returned unparsed so the normalizer can classify it; a
// trend hint, when known, is forwarded as a query parameter.
func (c *Client) GetSpreadAnalysis(ctx context.Context, symbol, trend string) ([]byte, error) {
	q := url.Values{}
	if trend != "" {
		q.Set("trend", trend)
	}
	return c.get(ctx, symbol, "/api/v1/spread-analysis/"+url.PathEscape(symbol), q)
}

// IntradayMetadata describes one intraday fetch.
type IntradayMetadata struct {
	TotalCandles int       `json:"total_candles"`
	LastUpdated  time.Time `json:"last_updated"`
}

// IntradayResponse is the collaborator's chart-data shape.
type IntradayResponse struct {
	PriceData      []domain.PricePoint   `json:"price_data"`
	BenchmarkLines domain.BenchmarkLines `json:"benchmark_lines"`
	Interval       string                `json:"interval"`
	Metadata       IntradayMetadata      `json:"metadata"`
}

// GetIntraday fetches the intraday series for a ticker and interval,
// forwarding the optional strike pair so the collaborator can include them
// as benchmark lines.
func (c *Client) GetIntraday(ctx context.Context, symbol, interval string, sellStrike, buyStrike float64) (*IntradayResponse, error) {
	q := url.Values{}
	q.Set("interval", interval)
	if sellStrike > 0 {
		q.Set("sell_strike", strconv.FormatFloat(sellStrike, 'f', -1, 64))
	}
	if buyStrike > 0 {
		q.Set("buy_strike", strconv.FormatFloat(buyStrike, 'f', -1, 64))
	}

	body, err := c.get(ctx, symbol, "/api/v1/intraday/"+url.PathEscape(symbol), q)
	if err != nil {
		return nil, err
	}

	var resp IntradayResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &domain.FetchError{Ticker: symbol, Err: fmt.Errorf("decoding intraday response: %w", err)}
	}
	return &resp, nil
}

// get performs a rate-limited GET with exponential-backoff retries. Client
// errors (4xx) are permanent; 404 maps to ErrNotFound.
func (c *Client) get(ctx context.Context, symbol, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &domain.FetchError{Ticker: symbol, Err: err}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(&domain.FetchError{Ticker: symbol, Status: resp.StatusCode, Err: domain.ErrNotFound})
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return backoff.Permanent(&domain.FetchError{Ticker: symbol, Status: resp.StatusCode, Err: fmt.Errorf("client error")})
		case resp.StatusCode != http.StatusOK:
			return &domain.FetchError{Ticker: symbol, Status: resp.StatusCode, Err: fmt.Errorf("server error")}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		c.log.Warn("upstream fetch failed", "symbol", symbol, "url", u, "error", err)
		if _, ok := err.(*domain.FetchError); ok {
			return nil, err
		}
		return nil, &domain.FetchError{Ticker: symbol, Err: err}
	}
	return body, nil
}

func newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	return b
}

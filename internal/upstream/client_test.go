package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"spreadview/internal/domain"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Options{
		BaseURL:        baseURL,
		RequestsPerSec: 100,
		MaxRetries:     2,
		Timeout:        5 * time.Second,
	}, nil)
}

func TestGetSpreadAnalysis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/spread-analysis/TSLA" {
			t.Errorf("path = %q, want /api/v1/spread-analysis/TSLA", r.URL.Path)
		}
		if r.URL.Query().Get("trend") != "uptrend" {
			t.Errorf("trend = %q, want uptrend", r.URL.Query().Get("trend"))
		}
		w.Write([]byte(`{"current_stock_price": 300, "spread_analysis": {"found": true}}`))
	}))
	defer srv.Close()

	body, err := newTestClient(srv.URL).GetSpreadAnalysis(context.Background(), "TSLA", "uptrend")
	if err != nil {
		t.Fatalf("GetSpreadAnalysis returned error: %v", err)
	}
	if len(body) == 0 {
		t.Fatal("GetSpreadAnalysis returned empty body")
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"spread_analysis": {"found": true}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetSpreadAnalysis(context.Background(), "SPY", "")
	if err != nil {
		t.Fatalf("GetSpreadAnalysis should succeed after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("server called %d times, want 3", calls.Load())
	}
}

func TestGetNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetSpreadAnalysis(context.Background(), "ZZZZ", "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if calls.Load() != 1 {
		t.Errorf("404 retried %d times, want exactly 1 call", calls.Load())
	}

	var fe *domain.FetchError
	if !errors.As(err, &fe) || fe.Ticker != "ZZZZ" {
		t.Errorf("error should carry the ticker for diagnosis: %v", err)
	}
}

func TestGetIntraday(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("sell_strike"); got != "310" {
			t.Errorf("sell_strike = %q, want 310", got)
		}
		w.Write([]byte(`{
			"price_data": [
				{"timestamp": "2025-07-25T13:30:00Z", "open": 300, "high": 301, "low": 299, "close": 300.5, "volume": 1200},
				{"timestamp": "2025-07-25T13:35:00Z", "open": 300.5, "high": 302, "low": 300, "close": 301.4, "volume": 900}
			],
			"benchmark_lines": {"current_price": 301.4, "sell_strike": 310, "buy_strike": 315},
			"interval": "5m",
			"metadata": {"total_candles": 2, "last_updated": "2025-07-25T13:36:00Z"}
		}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).GetIntraday(context.Background(), "TSLA", "5m", 310, 315)
	if err != nil {
		t.Fatalf("GetIntraday returned error: %v", err)
	}
	if len(resp.PriceData) != 2 {
		t.Fatalf("PriceData has %d points, want 2", len(resp.PriceData))
	}
	if resp.PriceData[1].Close != 301.4 {
		t.Errorf("second close = %v, want 301.4", resp.PriceData[1].Close)
	}
	if resp.BenchmarkLines.SellStrike != 310 {
		t.Errorf("SellStrike = %v, want 310", resp.BenchmarkLines.SellStrike)
	}
	if resp.Metadata.TotalCandles != 2 {
		t.Errorf("TotalCandles = %d, want 2", resp.Metadata.TotalCandles)
	}
}

func TestGetCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv.URL).GetSpreadAnalysis(ctx, "SPY", "")
	if err == nil {
		t.Fatal("cancelled context should abort the fetch")
	}
}

// Package domain defines the canonical data model shared by the chart,
// spread, store, and API layers: intraday price series, benchmark lines,
// the normalized spread-analysis record, and the error taxonomy.
package domain

import "time"

// ContractType identifies the credit-spread flavor.
type ContractType string

const (
	ContractCall ContractType = "call"
	ContractPut  ContractType = "put"
)

// Suffix returns the OCC contract-symbol suffix letter for the type.
func (c ContractType) Suffix() string {
	if c == ContractPut {
		return "P"
	}
	return "C"
}

// ParseContractType maps a stored contract-type string to a ContractType.
// Anything that is not recognizably a put is a call.
func ParseContractType(s string) ContractType {
	if s == string(ContractPut) {
		return ContractPut
	}
	return ContractCall
}

// PricePoint is a single OHLCV candle in an intraday series.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// BenchmarkLines holds the horizontal reference prices overlaid on a chart.
// A zero (or negative) value means the benchmark is absent: it is excluded
// from axis scaling and never drawn.
type BenchmarkLines struct {
	CurrentPrice float64 `json:"current_price"`
	BuyStrike    float64 `json:"buy_strike,omitempty"`
	SellStrike   float64 `json:"sell_strike,omitempty"`
}

// IntradaySeries is one fetch of chart data for a ticker: a chronological,
// immutable candle sequence plus benchmark lines and fetch metadata.
type IntradaySeries struct {
	Ticker       string         `json:"ticker"`
	Interval     string         `json:"interval"`
	Points       []PricePoint   `json:"price_data"`
	Benchmarks   BenchmarkLines `json:"benchmark_lines"`
	TotalCandles int            `json:"total_candles"`
	LastUpdated  time.Time      `json:"last_updated"`
}

// AxisRange is a derived, padded price axis. Invariant: Min < Max, and every
// price sample and present benchmark value used to build it lies strictly
// inside [Min, Max].
type AxisRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ScenarioRow is one profit/loss outcome at a fixed relative price move.
type ScenarioRow struct {
	PriceChangeLabel  string  `json:"price_change_label"`
	ProjectedPrice    float64 `json:"projected_price"`
	ProfitLoss        float64 `json:"profit_loss"`
	ProfitLossPercent float64 `json:"profit_loss_percent"`
}

// SpreadAnalysis is the canonical spread record. It is built fresh from
// whichever raw shape was supplied (live response or saved claim) and never
// mutated in place.
type SpreadAnalysis struct {
	Ticker             string        `json:"ticker"`
	CurrentPrice       float64       `json:"current_price"`
	SellStrike         float64       `json:"sell_strike"`
	BuyStrike          float64       `json:"buy_strike"`
	NetCredit          float64       `json:"net_credit"`
	MaxRisk            float64       `json:"max_risk"`
	ROIPercent         float64       `json:"roi_percent"`
	ExpirationDate     string        `json:"expiration_date"` // YYYY-MM-DD
	DTE                int           `json:"dte"`
	Breakeven          float64       `json:"breakeven"`
	BufferRoomPercent  float64       `json:"buffer_room_percent"`
	ContractType       ContractType  `json:"contract_type"`
	SellContractSymbol string        `json:"sell_contract_symbol"`
	BuyContractSymbol  string        `json:"buy_contract_symbol"`
	Scenarios          []ScenarioRow `json:"scenarios"`
}

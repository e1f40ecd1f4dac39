// Package httpapi provides the HTTP REST API for the credit-spread
// dashboard: normalized spread analyses, rendered intraday charts, and the
// claims journal.
package httpapi

import (
	"time"

	"spreadview/internal/domain"
)

// ScenarioRowJSON is one profit/loss outcome row.
type ScenarioRowJSON struct {
	PriceChangeLabel  string  `json:"priceChangeLabel"`
	ProjectedPrice    float64 `json:"projectedPrice"`
	ProfitLoss        float64 `json:"profitLoss"`
	ProfitLossPercent float64 `json:"profitLossPercent"`
}

// SpreadAnalysisJSON is the canonical spread record as the dashboard
// consumes it.
type SpreadAnalysisJSON struct {
	Ticker             string            `json:"ticker"`
	CurrentPrice       float64           `json:"currentPrice"`
	SellStrike         float64           `json:"sellStrike"`
	BuyStrike          float64           `json:"buyStrike"`
	NetCredit          float64           `json:"netCredit"`
	MaxRisk            float64           `json:"maxRisk"`
	ROIPercent         float64           `json:"roiPercent"`
	ExpirationDate     string            `json:"expirationDate"`
	DTE                int               `json:"dte"`
	Breakeven          float64           `json:"breakeven"`
	BufferRoomPercent  float64           `json:"bufferRoomPercent"`
	ContractType       string            `json:"contractType"`
	SellContractSymbol string            `json:"sellContractSymbol,omitempty"`
	BuyContractSymbol  string            `json:"buyContractSymbol,omitempty"`
	Scenarios          []ScenarioRowJSON `json:"scenarios"`
}

// SpreadResponse pairs the canonical record with the position sizing
// derived for the requested contract quantity.
type SpreadResponse struct {
	Analysis        SpreadAnalysisJSON `json:"analysis"`
	Quantity        int                `json:"quantity"`
	TotalInvestment float64            `json:"totalInvestment"`
	IncomePotential float64            `json:"incomePotential"`
}

// ClaimJSON is one claims-journal entry.
type ClaimJSON struct {
	ID        string             `json:"id"`
	Symbol    string             `json:"symbol"`
	ClaimedAt time.Time          `json:"claimedAt"`
	Analysis  SpreadAnalysisJSON `json:"analysis"`
}

// ClaimsResponse lists the claims journal, newest first.
type ClaimsResponse struct {
	Claims []ClaimJSON `json:"claims"`
}

// ClaimRequest is the POST body for claiming a spread.
type ClaimRequest struct {
	Symbol     string                `json:"symbol"`
	SpreadData domain.SpreadAnalysis `json:"spreadData"`
}

// convertAnalysis converts a canonical record to its JSON view.
func convertAnalysis(a domain.SpreadAnalysis) SpreadAnalysisJSON {
	scenarios := make([]ScenarioRowJSON, 0, len(a.Scenarios))
	for _, row := range a.Scenarios {
		scenarios = append(scenarios, ScenarioRowJSON{
			PriceChangeLabel:  row.PriceChangeLabel,
			ProjectedPrice:    row.ProjectedPrice,
			ProfitLoss:        row.ProfitLoss,
			ProfitLossPercent: row.ProfitLossPercent,
		})
	}
	return SpreadAnalysisJSON{
		Ticker:             a.Ticker,
		CurrentPrice:       a.CurrentPrice,
		SellStrike:         a.SellStrike,
		BuyStrike:          a.BuyStrike,
		NetCredit:          a.NetCredit,
		MaxRisk:            a.MaxRisk,
		ROIPercent:         a.ROIPercent,
		ExpirationDate:     a.ExpirationDate,
		DTE:                a.DTE,
		Breakeven:          a.Breakeven,
		BufferRoomPercent:  a.BufferRoomPercent,
		ContractType:       string(a.ContractType),
		SellContractSymbol: a.SellContractSymbol,
		BuyContractSymbol:  a.BuyContractSymbol,
		Scenarios:          scenarios,
	}
}

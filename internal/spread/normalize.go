// Package spread reconciles the two incompatible shapes of spread data —
// a live analysis response and a persisted claim — into one canonical
// SpreadAnalysis record, and derives scenario metrics from it.
package spread

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"spreadview/internal/domain"
	"spreadview/internal/ticker"
)

// Kind discriminates the raw payload shapes.
type Kind int

const (
	// KindNotFound: the live wrapper reported found=false, or the payload
	// matched neither shape.
	KindNotFound Kind = iota
	// KindLive: a live analysis response with a found spread.
	KindLive
	// KindSaved: a persisted claim from the journal.
	KindSaved
)

// Payload is the classified raw payload: exactly one variant is set for
// the live and saved kinds.
type Payload struct {
	Kind  Kind
	Live  *LivePayload
	Saved *SavedClaim
}

// LiveAnalysis is the nested spread_analysis object of a live response.
type LiveAnalysis struct {
	Found              bool                   `json:"found"`
	SellStrike         float64                `json:"sell_strike"`
	BuyStrike          float64                `json:"buy_strike"`
	NetCredit          float64                `json:"net_credit"`
	MaxRisk            float64                `json:"max_risk"`
	ROIPercent         float64                `json:"roi_percent"`
	Expiration         string                 `json:"expiration"`
	DTE                int                    `json:"dte"`
	Breakeven          float64                `json:"breakeven"`
	SpreadType         string                 `json:"spread_type"`
	StrategyType       string                 `json:"strategy_type"`
	SellContractSymbol string                 `json:"sell_contract_symbol"`
	BuyContractSymbol  string                 `json:"buy_contract_symbol"`
	SellMidPrice       float64                `json:"sell_mid_price"`
	BuyMidPrice        float64                `json:"buy_mid_price"`
	PriceScenarios     map[string]RawScenario `json:"price_scenarios"`
}

// LivePayload is the top-level live analysis response.
type LivePayload struct {
	Ticker            string        `json:"ticker"`
	Symbol            string        `json:"symbol"`
	CurrentStockPrice float64       `json:"current_stock_price"`
	Trend             string        `json:"trend"`
	SpreadAnalysis    *LiveAnalysis `json:"spread_analysis"`
}

// SavedClaim is one entry of the persisted-claims journal. SpreadData may
// arrive as a JSON-encoded string or an already-decoded object.
type SavedClaim struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	SpreadData json.RawMessage `json:"spreadData"`
	ClaimedAt  time.Time       `json:"claimedAt"`
}

// SavedRecord is the decoded spreadData of a claim. It stores the canonical
// fields, so a claim built from a normalized record renormalizes to the
// same SpreadAnalysis.
type SavedRecord struct {
	Ticker         string               `json:"ticker"`
	CurrentPrice   float64              `json:"current_price"`
	SellStrike     float64              `json:"sell_strike"`
	BuyStrike      float64              `json:"buy_strike"`
	NetCredit      float64              `json:"net_credit"`
	MaxRisk        float64              `json:"max_risk"`
	ROIPercent     float64              `json:"roi_percent"`
	ExpirationDate string               `json:"expiration_date"`
	DTE            int                  `json:"dte"`
	Breakeven      float64              `json:"breakeven"`
	ContractType   string               `json:"contract_type"`
	Scenarios      []domain.ScenarioRow `json:"scenarios"`
}

// Classify inspects a raw payload and tags its shape. A live wrapper with
// found=false, or a payload matching neither shape, is KindNotFound.
func Classify(raw []byte) Payload {
	var probe struct {
		SpreadAnalysis *json.RawMessage `json:"spread_analysis"`
		SpreadData     *json.RawMessage `json:"spreadData"`
		ID             string           `json:"id"`
		Symbol         string           `json:"symbol"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Payload{Kind: KindNotFound}
	}

	if probe.SpreadAnalysis != nil {
		var live LivePayload
		if err := json.Unmarshal(raw, &live); err != nil || live.SpreadAnalysis == nil || !live.SpreadAnalysis.Found {
			return Payload{Kind: KindNotFound}
		}
		return Payload{Kind: KindLive, Live: &live}
	}

	if probe.SpreadData != nil || probe.ID != "" {
		var saved SavedClaim
		if err := json.Unmarshal(raw, &saved); err != nil {
			return Payload{Kind: KindNotFound}
		}
		return Payload{Kind: KindSaved, Saved: &saved}
	}

	return Payload{Kind: KindNotFound}
}

// Normalize builds the canonical SpreadAnalysis from a classified payload.
// loc is the navigation location used by ticker resolution and the
// contract-type trend fallback. KindNotFound yields ErrNotFound.
func Normalize(p Payload, loc ticker.Location) (domain.SpreadAnalysis, error) {
	switch p.Kind {
	case KindLive:
		return normalizeLive(p.Live, loc)
	case KindSaved:
		return normalizeSaved(p.Saved, loc)
	case KindNotFound:
		return domain.SpreadAnalysis{}, fmt.Errorf("normalizing spread payload: %w", domain.ErrNotFound)
	default:
		return domain.SpreadAnalysis{}, fmt.Errorf("normalizing spread payload: unknown kind %d: %w", p.Kind, domain.ErrInvalidInput)
	}
}

func normalizeLive(live *LivePayload, loc ticker.Location) (domain.SpreadAnalysis, error) {
	a := live.SpreadAnalysis

	sym, err := ticker.Resolve(ticker.Record{
		Symbol:             live.Symbol,
		Ticker:             live.Ticker,
		SellContractSymbol: a.SellContractSymbol,
		BuyContractSymbol:  a.BuyContractSymbol,
	}, loc)
	if err != nil {
		return domain.SpreadAnalysis{}, err
	}

	return domain.SpreadAnalysis{
		Ticker:             sym,
		CurrentPrice:       live.CurrentStockPrice,
		SellStrike:         a.SellStrike,
		BuyStrike:          a.BuyStrike,
		NetCredit:          a.NetCredit,
		MaxRisk:            a.MaxRisk,
		ROIPercent:         a.ROIPercent,
		ExpirationDate:     a.Expiration,
		DTE:                a.DTE,
		Breakeven:          a.Breakeven,
		BufferRoomPercent:  BufferRoomPercent(a.Breakeven, live.CurrentStockPrice),
		ContractType:       DetermineContractType(live.Trend, loc, a.StrategyType, a.SpreadType),
		SellContractSymbol: a.SellContractSymbol,
		BuyContractSymbol:  a.BuyContractSymbol,
		Scenarios:          BuildRows(a.PriceScenarios),
	}, nil
}

func normalizeSaved(claim *SavedClaim, loc ticker.Location) (domain.SpreadAnalysis, error) {
	rec := DecodeSavedRecord(claim.SpreadData)
	reconstructed := ReconstructLive(claim, rec)
	a := reconstructed.SpreadAnalysis

	sym, err := ticker.Resolve(ticker.Record{
		Symbol:             claim.Symbol,
		Ticker:             rec.Ticker,
		SellContractSymbol: a.SellContractSymbol,
		BuyContractSymbol:  a.BuyContractSymbol,
	}, loc)
	if err != nil {
		return domain.SpreadAnalysis{}, err
	}

	ct := domain.ParseContractType(rec.ContractType)
	return domain.SpreadAnalysis{
		Ticker:             sym,
		CurrentPrice:       rec.CurrentPrice,
		SellStrike:         rec.SellStrike,
		BuyStrike:          rec.BuyStrike,
		NetCredit:          rec.NetCredit,
		MaxRisk:            rec.MaxRisk,
		ROIPercent:         rec.ROIPercent,
		ExpirationDate:     rec.ExpirationDate,
		DTE:                rec.DTE,
		Breakeven:          rec.Breakeven,
		BufferRoomPercent:  BufferRoomPercent(rec.Breakeven, rec.CurrentPrice),
		ContractType:       ct,
		SellContractSymbol: a.SellContractSymbol,
		BuyContractSymbol:  a.BuyContractSymbol,
		Scenarios:          OrderRows(rec.Scenarios),
	}, nil
}

// DecodeSavedRecord parses a claim's spreadData, which may be a JSON object
// or a JSON-encoded string of one. Malformed data degrades to a zero-valued
// record; downstream rendering tolerates all-zero values.
func DecodeSavedRecord(raw json.RawMessage) SavedRecord {
	var rec SavedRecord
	if len(raw) == 0 {
		return rec
	}

	data := []byte(raw)
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return SavedRecord{}
		}
		data = []byte(inner)
	}

	if err := json.Unmarshal(data, &rec); err != nil {
		return SavedRecord{}
	}
	return rec
}

// SavedRecordFromAnalysis flattens a canonical record back into the shape
// the claims journal stores.
func SavedRecordFromAnalysis(a domain.SpreadAnalysis) SavedRecord {
	return SavedRecord{
		Ticker:         a.Ticker,
		CurrentPrice:   a.CurrentPrice,
		SellStrike:     a.SellStrike,
		BuyStrike:      a.BuyStrike,
		NetCredit:      a.NetCredit,
		MaxRisk:        a.MaxRisk,
		ROIPercent:     a.ROIPercent,
		ExpirationDate: a.ExpirationDate,
		DTE:            a.DTE,
		Breakeven:      a.Breakeven,
		ContractType:   string(a.ContractType),
		Scenarios:      a.Scenarios,
	}
}

// ReconstructLive synthesizes the live-shape payload a saved claim never
// stored, so downstream consumers handle one shape only: mid prices as half
// the net credit, contract symbols rebuilt OCC-style from the stored
// ticker, expiration, strikes, and contract type.
func ReconstructLive(claim *SavedClaim, rec SavedRecord) *LivePayload {
	ct := domain.ParseContractType(rec.ContractType)
	sym := rec.Ticker
	if sym == "" {
		sym = claim.Symbol
	}

	scenarios := make(map[string]RawScenario, len(rec.Scenarios))
	for _, row := range rec.Scenarios {
		scenarios[row.PriceChangeLabel] = RawScenario{
			Price:             row.ProjectedPrice,
			ProfitLoss:        row.ProfitLoss,
			ProfitLossPercent: row.ProfitLossPercent,
		}
	}

	return &LivePayload{
		Ticker:            sym,
		CurrentStockPrice: rec.CurrentPrice,
		SpreadAnalysis: &LiveAnalysis{
			Found:              true,
			SellStrike:         rec.SellStrike,
			BuyStrike:          rec.BuyStrike,
			NetCredit:          rec.NetCredit,
			MaxRisk:            rec.MaxRisk,
			ROIPercent:         rec.ROIPercent,
			Expiration:         rec.ExpirationDate,
			DTE:                rec.DTE,
			Breakeven:          rec.Breakeven,
			SpreadType:         string(ct) + " credit spread",
			SellMidPrice:       rec.NetCredit / 2,
			BuyMidPrice:        rec.NetCredit / 2,
			SellContractSymbol: OCCSymbol(sym, rec.ExpirationDate, rec.SellStrike, ct),
			BuyContractSymbol:  OCCSymbol(sym, rec.ExpirationDate, rec.BuyStrike, ct),
			PriceScenarios:     scenarios,
		},
	}
}

// OCCSymbol builds an OCC-style option contract symbol:
// <TICKER><YYMMDD><C|P><strike*1000, 8 digits>. An unparseable expiration
// or empty ticker yields "", which downstream treats as absent.
func OCCSymbol(sym, expiration string, strike float64, ct domain.ContractType) string {
	if sym == "" {
		return ""
	}
	exp, err := time.Parse("2006-01-02", expiration)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s%s%s%08d", strings.ToUpper(sym), exp.Format("060102"), ct.Suffix(), int(strike*1000+0.5))
}

// DetermineContractType decides whether a freshly fetched spread is a put or
// call credit spread. The tiers are heuristic and of decreasing
// reliability; there is no server-side confirmation.
func DetermineContractType(trendHint string, loc ticker.Location, strategyType, spreadType string) domain.ContractType {
	// 1. Explicit trend hint carried with the payload: an uptrend is played
	// with a put credit spread, a downtrend with a call credit spread.
	if ct, ok := trendToType(trendHint); ok {
		return ct
	}

	// 2. Trend query parameter on the navigation location, same mapping.
	if ct, ok := trendToType(loc.Query.Get("trend")); ok {
		return ct
	}

	// 3. Server-reported strategy type, substring-matched.
	if strategyType != "" {
		return substringType(strategyType)
	}

	// 4. Server-reported spread type, same rule.
	if spreadType != "" {
		return substringType(spreadType)
	}

	// 5. Default.
	return domain.ContractCall
}

func trendToType(trend string) (domain.ContractType, bool) {
	switch strings.ToLower(strings.TrimSpace(trend)) {
	case "uptrend":
		return domain.ContractPut, true
	case "downtrend":
		return domain.ContractCall, true
	default:
		return "", false
	}
}

func substringType(s string) domain.ContractType {
	if strings.Contains(strings.ToLower(s), "put") {
		return domain.ContractPut
	}
	return domain.ContractCall
}

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"spreadview/internal/spread"
)

// ClaimExportRecord is the Parquet schema for an exported claim: the
// journal entry flattened together with its decoded spread fields.
type ClaimExportRecord struct {
	ID             string  `parquet:"id"`
	Symbol         string  `parquet:"symbol"`
	ClaimedAt      int64   `parquet:"claimed_at,timestamp(millisecond)"` // Unix ms
	Ticker         string  `parquet:"ticker"`
	CurrentPrice   float64 `parquet:"current_price"`
	SellStrike     float64 `parquet:"sell_strike"`
	BuyStrike      float64 `parquet:"buy_strike"`
	NetCredit      float64 `parquet:"net_credit"`
	MaxRisk        float64 `parquet:"max_risk"`
	ROIPercent     float64 `parquet:"roi_percent"`
	ExpirationDate string  `parquet:"expiration_date"`
	DTE            int32   `parquet:"dte"`
	Breakeven      float64 `parquet:"breakeven"`
	ContractType   string  `parquet:"contract_type"`
}

// ExportClaims flattens the claims and writes them to a Parquet file at
// path. Claims with malformed spread data export with zero-valued spread
// fields, matching how the normalizer degrades them.
func ExportClaims(path string, claims []ClaimRecord) error {
	records := make([]ClaimExportRecord, 0, len(claims))
	for _, c := range claims {
		rec := spread.DecodeSavedRecord(json.RawMessage(c.SpreadData))
		ticker := rec.Ticker
		if ticker == "" {
			ticker = c.Symbol
		}
		records = append(records, ClaimExportRecord{
			ID:             c.ID,
			Symbol:         c.Symbol,
			ClaimedAt:      c.ClaimedAt.UnixMilli(),
			Ticker:         ticker,
			CurrentPrice:   rec.CurrentPrice,
			SellStrike:     rec.SellStrike,
			BuyStrike:      rec.BuyStrike,
			NetCredit:      rec.NetCredit,
			MaxRisk:        rec.MaxRisk,
			ROIPercent:     rec.ROIPercent,
			ExpirationDate: rec.ExpirationDate,
			DTE:            int32(rec.DTE),
			Breakeven:      rec.Breakeven,
			ContractType:   rec.ContractType,
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("writing claims export: %w", err)
	}
	return nil
}

// ReadClaimExport reads back an exported claims file.
func ReadClaimExport(path string) ([]ClaimExportRecord, error) {
	return parquet.ReadFile[ClaimExportRecord](path)
}

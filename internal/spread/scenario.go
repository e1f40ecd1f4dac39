package spread

import (
	"strconv"
	"strings"

	"spreadview/internal/domain"
)

// Exchange-standard share multiplier per option contract.
const sharesPerContract = 100

// Contract-quantity bounds for the position-size input.
const (
	minQuantity = 1
	maxQuantity = 100
)

// canonicalLabels is the fixed scenario ordering. Rows are emitted in this
// order regardless of how the source iterates; labels absent from the
// source are omitted, never synthesized.
var canonicalLabels = []string{"-10%", "-5%", "-2.5%", "-1%", "0%", "+1%", "+2.5%", "+5%", "+10%"}

// RawScenario is one price-move outcome as the live API reports it.
type RawScenario struct {
	Price             float64 `json:"price"`
	ProfitLoss        float64 `json:"profit_loss"`
	ProfitLossPercent float64 `json:"profit_loss_percent"`
}

// BuildRows converts a live price_scenarios mapping into the canonical
// ordered row sequence. The live API spells the zero move "+0%"; that label
// is rewritten to "0%".
func BuildRows(src map[string]RawScenario) []domain.ScenarioRow {
	if len(src) == 0 {
		return nil
	}
	var rows []domain.ScenarioRow
	for _, label := range canonicalLabels {
		raw, ok := src[label]
		if !ok {
			raw, ok = src[aliasLabel(label)]
		}
		if !ok {
			continue
		}
		rows = append(rows, domain.ScenarioRow{
			PriceChangeLabel:  label,
			ProjectedPrice:    raw.Price,
			ProfitLoss:        raw.ProfitLoss,
			ProfitLossPercent: raw.ProfitLossPercent,
		})
	}
	return rows
}

// OrderRows re-orders an already-flat row list (the saved shape) into
// canonical order, dropping rows whose labels are not canonical and
// rewriting "+0%" to "0%".
func OrderRows(src []domain.ScenarioRow) []domain.ScenarioRow {
	if len(src) == 0 {
		return nil
	}
	byLabel := make(map[string]domain.ScenarioRow, len(src))
	for _, row := range src {
		label := row.PriceChangeLabel
		if label == "+0%" {
			label = "0%"
		}
		if _, dup := byLabel[label]; dup {
			continue
		}
		row.PriceChangeLabel = label
		byLabel[label] = row
	}

	var rows []domain.ScenarioRow
	for _, label := range canonicalLabels {
		if row, ok := byLabel[label]; ok {
			rows = append(rows, row)
		}
	}
	return rows
}

func aliasLabel(label string) string {
	if label == "0%" {
		return "+0%"
	}
	return label
}

// BufferRoomPercent is the percentage distance from the current price to
// the breakeven. Positive means the breakeven sits above the current price.
func BufferRoomPercent(breakeven, currentPrice float64) float64 {
	if currentPrice == 0 {
		return 0
	}
	return breakeven/currentPrice*100 - 100
}

// TotalInvestment is the capital at risk for qty contracts.
func TotalInvestment(maxRisk float64, qty int) float64 {
	return maxRisk * float64(qty) * sharesPerContract
}

// IncomePotential is the credit received for qty contracts.
func IncomePotential(netCredit float64, qty int) float64 {
	return netCredit * float64(qty) * sharesPerContract
}

// ClampQuantity resolves a user-entered contract quantity. Numeric input is
// clamped to [1, 100]; anything unparseable falls back to the previous valid
// value (itself clamped), so the quantity is never zero, negative, or blank.
func ClampQuantity(input string, prev int) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return clampInt(prev)
	}
	return clampInt(n)
}

func clampInt(n int) int {
	if n < minQuantity {
		return minQuantity
	}
	if n > maxQuantity {
		return maxQuantity
	}
	return n
}

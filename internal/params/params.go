// Package params holds the canonical trading-parameter set shared by the
// calculator and advisory screens, and the store that persists it.
//
// The store keeps one in-memory snapshot per session and writes every
// mutation through an injected persistence port. Fields are persisted
// independently as serialized primitives, so a missing or corrupt field
// falls back to its default without affecting the others.
package params

import (
	"math"

	"leverage-calc/internal/common"
)

// View identifies the last-selected screen. UI concern only, it has no
// bearing on any calculation.
type View string

const (
	ViewCalculator View = "calculator"
	ViewAdvisory   View = "advisory"
)

// ParseView maps a stored string onto a known view, falling back to the
// calculator screen for anything unrecognized.
func ParseView(s string) View {
	if View(s) == ViewAdvisory {
		return ViewAdvisory
	}
	return ViewCalculator
}

// Field names one independently persisted trading parameter.
type Field string

const (
	FieldAccountBalance Field = "accountBalance"
	FieldRiskPercentage Field = "riskPercentage"
	FieldEntryPrice     Field = "entryPrice"
	FieldStopLossPrice  Field = "stopLossPrice"
	FieldActiveView     Field = "activeView"
)

// TradingParameters is the canonical parameter set for one session.
type TradingParameters struct {
	AccountBalance float64 `json:"accountBalance"`
	RiskPercentage float64 `json:"riskPercentage"`
	EntryPrice     float64 `json:"entryPrice"`
	StopLossPrice  float64 `json:"stopLossPrice"`
	ActiveView     View    `json:"activeView"`
}

// Defaults returns the documented per-field defaults used to seed a new
// session and to backfill unreadable persisted fields.
func Defaults() TradingParameters {
	return TradingParameters{
		AccountBalance: common.DefaultAccountBalance,
		RiskPercentage: common.DefaultRiskPercentage,
		EntryPrice:     common.DefaultEntryPrice,
		StopLossPrice:  common.DefaultStopLossPrice,
		ActiveView:     ViewCalculator,
	}
}

// CalculationResult is the derived position sizing output. It is a
// display cache, recomputed deterministically from TradingParameters,
// never a source of truth on its own.
type CalculationResult struct {
	RiskAmount        float64 `json:"riskAmount"`
	PriceRisk         float64 `json:"priceRisk"`
	PositionSizeUnits float64 `json:"positionSizeUnits"`
	PositionSizeUSD   float64 `json:"positionSizeUSD"`
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

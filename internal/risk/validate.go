// Package risk implements the validation gate and the position sizing
// engine. Both are pure: no storage, no network, deterministic output
// for a given parameter set.
package risk

import (
	"fmt"
	"math"

	"leverage-calc/internal/common"
	"leverage-calc/internal/params"
)

// ValidationError reports a single domain-constraint violation. The
// field and message are surfaced verbatim to the caller.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validated wraps a parameter set that has passed the gate. The sizing
// engine only accepts this type, so unvalidated input cannot reach it.
type Validated struct {
	p params.TradingParameters
}

// Params returns the normalized parameter set.
func (v Validated) Params() params.TradingParameters {
	return v.p
}

// Validate checks a candidate parameter set against the domain
// constraints, first failure wins:
//
//  1. accountBalance > 0
//  2. entryPrice > 0
//  3. stopLossPrice > 0
//  4. entryPrice != stopLossPrice
//
// riskPercentage is clamped to the slider bounds rather than rejected;
// a non-finite risk value is replaced by the default before clamping.
// Non-finite values in the other numeric fields fail their positivity
// rule.
func Validate(p params.TradingParameters) (Validated, error) {
	if !(p.AccountBalance > 0) || !finite(p.AccountBalance) {
		return Validated{}, &ValidationError{Field: string(params.FieldAccountBalance), Message: "must be greater than zero"}
	}
	if !(p.EntryPrice > 0) || !finite(p.EntryPrice) {
		return Validated{}, &ValidationError{Field: string(params.FieldEntryPrice), Message: "must be greater than zero"}
	}
	if !(p.StopLossPrice > 0) || !finite(p.StopLossPrice) {
		return Validated{}, &ValidationError{Field: string(params.FieldStopLossPrice), Message: "must be greater than zero"}
	}
	if p.EntryPrice == p.StopLossPrice {
		return Validated{}, &ValidationError{Field: string(params.FieldStopLossPrice), Message: "cannot equal entry price"}
	}

	p.RiskPercentage = ClampRisk(p.RiskPercentage)
	p.ActiveView = params.ParseView(string(p.ActiveView))

	return Validated{p: p}, nil
}

// ValidateField checks a single numeric field edit: the value must be
// finite and non-negative. Cross-field rules stay with Validate, which
// runs when a calculation or acceptance is attempted.
func ValidateField(field params.Field, value float64) error {
	if !finite(value) || value < 0 {
		return &ValidationError{Field: string(field), Message: "must be a non-negative number"}
	}
	return nil
}

// ClampRisk normalizes a risk percentage into the slider bounds.
func ClampRisk(risk float64) float64 {
	if !finite(risk) {
		return common.DefaultRiskPercentage
	}
	if risk < common.RiskPercentMin {
		return common.RiskPercentMin
	}
	if risk > common.RiskPercentMax {
		return common.RiskPercentMax
	}
	return risk
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

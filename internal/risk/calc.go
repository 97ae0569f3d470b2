package risk

import (
	"math"

	"leverage-calc/internal/params"
)

// CalculationError reports arithmetic that produced an unusable result
// despite the input having passed the validation gate.
type CalculationError struct {
	Reason string `json:"reason"`
}

func (e *CalculationError) Error() string {
	return "calculation failed: " + e.Reason
}

// Calculate derives the position size from a validated parameter set:
//
//	riskAmount        = accountBalance * riskPercentage / 100
//	priceRisk         = |entryPrice - stopLossPrice|
//	positionSizeUnits = riskAmount / priceRisk
//	positionSizeUSD   = positionSizeUnits * entryPrice
//
// No rounding is applied; formatting is a presentation concern. The
// gate guarantees a non-zero priceRisk, the zero check here is defense
// in depth. A non-finite derived value is reported as an error rather
// than surfaced raw.
func Calculate(v Validated) (params.CalculationResult, error) {
	p := v.Params()

	riskAmount := p.AccountBalance * p.RiskPercentage / 100
	priceRisk := math.Abs(p.EntryPrice - p.StopLossPrice)
	if priceRisk == 0 {
		return params.CalculationResult{}, &CalculationError{Reason: "zero price risk"}
	}

	r := params.CalculationResult{
		RiskAmount:        riskAmount,
		PriceRisk:         priceRisk,
		PositionSizeUnits: riskAmount / priceRisk,
		PositionSizeUSD:   riskAmount / priceRisk * p.EntryPrice,
	}

	for _, value := range []float64{r.RiskAmount, r.PriceRisk, r.PositionSizeUnits, r.PositionSizeUSD} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return params.CalculationResult{}, &CalculationError{Reason: "non-finite result"}
		}
	}

	return r, nil
}

package advisor

import (
	"math"

	"leverage-calc/internal/common"
)

// Advice is the normalized advisory payload as the external service
// reports it: relative stop distance plus a reward multiplier, with the
// model's prose attached.
type Advice struct {
	TradingPair          string  `json:"tradingPair"`
	StopLossLevel        float64 `json:"stopLossLevel"`
	RiskRewardRatio      float64 `json:"riskRewardRatio"`
	Reasoning            string  `json:"reasoning"`
	VolatilityAssessment string  `json:"volatilityAssessment"`
}

// Suggestion is the rich, price-anchored form shown to the user and
// offered to the parameter store. It is synthesized from an Advice plus
// a current price; the advisory service itself never sees prices.
type Suggestion struct {
	TradingPair     string  `json:"tradingPair"`
	EntryPrice      float64 `json:"entryPrice"`
	StopLoss        float64 `json:"stopLoss"`
	TakeProfit      float64 `json:"takeProfit"`
	RiskRewardRatio float64 `json:"riskRewardRatio"`
	Confidence      float64 `json:"confidence"`
	Reasoning       string  `json:"reasoning"`
}

// fallbackAdvice is the documented conservative default returned when
// the advisory response cannot be used as-is.
func fallbackAdvice(tradingPair string) Advice {
	return Advice{
		TradingPair:          tradingPair,
		StopLossLevel:        common.FallbackStopLossLevel,
		RiskRewardRatio:      common.FallbackRiskReward,
		Reasoning:            common.FallbackReasoning,
		VolatilityAssessment: common.FallbackVolatility,
	}
}

// normalize repairs an advice payload field by field: any missing,
// non-positive, or non-finite numeric falls back to its conservative
// default, empty prose gets the fixed fallback text, and the trading
// pair is always the one that was asked about. Returns the repaired
// advice and whether any repair was needed.
func normalize(a Advice, tradingPair string) (Advice, bool) {
	repaired := false
	a.TradingPair = tradingPair

	if !(a.StopLossLevel > 0) || !finite(a.StopLossLevel) {
		a.StopLossLevel = common.FallbackStopLossLevel
		repaired = true
	}
	if !(a.RiskRewardRatio > 0) || !finite(a.RiskRewardRatio) {
		a.RiskRewardRatio = common.FallbackRiskReward
		repaired = true
	}
	if a.Reasoning == "" {
		a.Reasoning = common.FallbackReasoning
		repaired = true
	}
	if a.VolatilityAssessment == "" {
		a.VolatilityAssessment = common.FallbackVolatility
		repaired = true
	}

	return a, repaired
}

// Synthesize anchors an advice at the given current price, deriving the
// concrete entry, stop and target levels the calculator consumes. The
// stop sits below entry by the advised relative distance; the target is
// the advised multiple of that distance above entry.
func Synthesize(a Advice, currentPrice float64) Suggestion {
	entry := currentPrice
	stop := entry * (1 - a.StopLossLevel)
	target := entry + (entry-stop)*a.RiskRewardRatio

	return Suggestion{
		TradingPair:     a.TradingPair,
		EntryPrice:      entry,
		StopLoss:        stop,
		TakeProfit:      target,
		RiskRewardRatio: a.RiskRewardRatio,
		Confidence:      common.FallbackConfidenceScore,
		Reasoning:       a.Reasoning,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package advisor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	good := Advice{
		TradingPair:          "IGNORED/PAIR",
		StopLossLevel:        0.07,
		RiskRewardRatio:      1.8,
		Reasoning:            "reasoning",
		VolatilityAssessment: "assessment",
	}
	a, repaired := normalize(good, "ETH/USD")
	assert.False(t, repaired)
	assert.Equal(t, "ETH/USD", a.TradingPair, "pair is always the one asked about")
	assert.Equal(t, 0.07, a.StopLossLevel)

	bad := Advice{StopLossLevel: math.NaN(), RiskRewardRatio: 0}
	a, repaired = normalize(bad, "BTC/USD")
	assert.True(t, repaired)
	assert.Equal(t, 0.05, a.StopLossLevel)
	assert.Equal(t, 2.0, a.RiskRewardRatio)
	assert.NotEmpty(t, a.Reasoning)
	assert.NotEmpty(t, a.VolatilityAssessment)
}

func TestSynthesize(t *testing.T) {
	t.Parallel()

	advice := Advice{
		TradingPair:     "ETH/USD",
		StopLossLevel:   0.05,
		RiskRewardRatio: 2.0,
		Reasoning:       "reasoning",
	}

	s := Synthesize(advice, 2000)

	assert.Equal(t, "ETH/USD", s.TradingPair)
	assert.Equal(t, 2000.0, s.EntryPrice)
	assert.InDelta(t, 1900.0, s.StopLoss, 1e-9)
	assert.InDelta(t, 2200.0, s.TakeProfit, 1e-9)
	assert.Equal(t, 2.0, s.RiskRewardRatio)
	assert.Equal(t, "reasoning", s.Reasoning)
	assert.GreaterOrEqual(t, s.Confidence, 0.0)
	assert.LessOrEqual(t, s.Confidence, 100.0)

	// The stop always sits strictly below the entry, so an accepted
	// suggestion can never trip the equal entry/stop invariant.
	assert.Less(t, s.StopLoss, s.EntryPrice)
	assert.Greater(t, s.TakeProfit, s.EntryPrice)
}

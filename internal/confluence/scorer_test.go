package confluence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aurumquant/xau-signal-engine/internal/smartmoney"
	"github.com/aurumquant/xau-signal-engine/internal/structure"
)

func bullishAnalysis(s structure.Structure, strength float64) *structure.Analysis {
	bias := 0
	if s.IsBullish() {
		bias = 1
	} else if s.IsBearish() {
		bias = -1
	}
	return &structure.Analysis{Structure: s, Bias: bias, TrendStrength: strength}
}

func zoneSet(bullish, bearish int) *smartmoney.ZoneSet {
	set := &smartmoney.ZoneSet{}
	for i := 0; i < bullish; i++ {
		set.OrderBlocks = append(set.OrderBlocks, smartmoney.Zone{Direction: smartmoney.DirectionBullish})
	}
	for i := 0; i < bearish; i++ {
		set.OrderBlocks = append(set.OrderBlocks, smartmoney.Zone{Direction: smartmoney.DirectionBearish})
	}
	return set
}

func TestScore_StrongBullishConfluencePassesGate(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	score := scorer.Score(
		bullishAnalysis(structure.StructureStrongBullish, 1.0),
		zoneSet(3, 0),
		1.0,
		Momentum{RSI: 62, MACDHistogram: 1.5},
	)

	assert.Equal(t, DirectionBullish, score.Direction)
	assert.True(t, score.Tradeable)
	assert.GreaterOrEqual(t, score.Total, 0.90)
	assert.Equal(t, "A+", score.Grade)
	assert.Equal(t, 1.0, score.Structure)
	assert.Equal(t, 1.0, score.Zones)
	assert.Equal(t, 1.0, score.Momentum)
	assert.NotEmpty(t, score.Reasoning)
}

func TestScore_RangingStructureIsNeverTradeable(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	score := scorer.Score(
		bullishAnalysis(structure.StructureRanging, 0.1),
		zoneSet(3, 3),
		1.0,
		Momentum{RSI: 65, MACDHistogram: 2},
	)

	assert.Equal(t, DirectionNeutral, score.Direction)
	assert.False(t, score.Tradeable)
	assert.Equal(t, 0.0, score.Zones)
	assert.Equal(t, 0.0, score.Momentum)
}

func TestScore_BearishDirectionUsesBearishZones(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	score := scorer.Score(
		bullishAnalysis(structure.StructureStrongBearish, 0.9),
		zoneSet(5, 2),
		0.75,
		Momentum{RSI: 35, MACDHistogram: -1.2},
	)

	assert.Equal(t, DirectionBearish, score.Direction)
	// 2 of 3 saturation
	assert.InDelta(t, 2.0/3.0, score.Zones, 0.0001)
	assert.Equal(t, 1.0, score.Momentum)
	assert.True(t, score.Tradeable)
}

func TestScore_WeakConfluenceFailsGate(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	score := scorer.Score(
		bullishAnalysis(structure.StructureBullish, 0.3),
		zoneSet(0, 0),
		0.5,
		Momentum{RSI: 48, MACDHistogram: -0.5},
	)

	assert.Equal(t, DirectionBullish, score.Direction)
	assert.False(t, score.Tradeable)
	assert.Less(t, score.Total, 0.70)
}

func TestScore_OverboughtRSIDiscounted(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	hot := scorer.Score(bullishAnalysis(structure.StructureStrongBullish, 1.0), zoneSet(3, 0), 1.0,
		Momentum{RSI: 85, MACDHistogram: 1})
	healthy := scorer.Score(bullishAnalysis(structure.StructureStrongBullish, 1.0), zoneSet(3, 0), 1.0,
		Momentum{RSI: 60, MACDHistogram: 1})

	assert.Less(t, hot.Momentum, healthy.Momentum)
	assert.True(t, hot.Tradeable) // discounted, not rejected
}

func TestGrade_Boundaries(t *testing.T) {
	assert.Equal(t, "A+", grade(0.95))
	assert.Equal(t, "A", grade(0.85))
	assert.Equal(t, "B", grade(0.70))
	assert.Equal(t, "C", grade(0.65))
	assert.Equal(t, "D", grade(0.55))
	assert.Equal(t, "F", grade(0.20))
}

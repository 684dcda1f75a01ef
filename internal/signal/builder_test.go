package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurumquant/xau-signal-engine/internal/confluence"
	"github.com/aurumquant/xau-signal-engine/internal/smartmoney"
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

func lastCandle(close float64) []types.Candle {
	return []types.Candle{{
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Open:      close - 1,
		High:      close + 2,
		Low:       close - 2,
		Close:     close,
		Volume:    1000,
	}}
}

func tradeableScore(dir confluence.Direction) *confluence.Score {
	return &confluence.Score{
		Direction: dir,
		Total:     0.85,
		Grade:     "A",
		Tradeable: true,
		Reasoning: []string{"test confluence"},
	}
}

func TestBuild_BuyWithoutZonesUsesClose(t *testing.T) {
	builder := NewBuilder(DefaultConfig())

	sig, err := builder.Build(lastCandle(2000), &smartmoney.ZoneSet{}, tradeableScore(confluence.DirectionBullish), 4.0)
	require.NoError(t, err)

	assert.Equal(t, Buy, sig.Direction)
	assert.Equal(t, 2000.0, sig.Entry)
	assert.Equal(t, 1994.0, sig.StopLoss) // close - 1.5 ATR
	assert.Equal(t, []float64{2006, 2010, 2016}, sig.TakeProfits)
	assert.InDelta(t, 10.0/6.0, sig.RiskReward, 0.0001)
	assert.Equal(t, 85.0, sig.Confidence)
	assert.NotEmpty(t, sig.ID)
}

func TestBuild_BuyEntersAtZoneEdge(t *testing.T) {
	builder := NewBuilder(DefaultConfig())
	zones := &smartmoney.ZoneSet{
		OrderBlocks: []smartmoney.Zone{{
			ID:        "ob",
			Kind:      smartmoney.KindOrderBlock,
			Direction: smartmoney.DirectionBullish,
			Top:       1996,
			Bottom:    1992,
		}},
	}

	sig, err := builder.Build(lastCandle(2000), zones, tradeableScore(confluence.DirectionBullish), 4.0)
	require.NoError(t, err)

	assert.Equal(t, Buy, sig.Direction)
	assert.Equal(t, 1996.0, sig.Entry)
	assert.Equal(t, 1990.0, sig.StopLoss) // zone bottom - 0.5 ATR

	// BUY invariant: stop < entry < tp1 < tp2 < tp3
	assert.Less(t, sig.StopLoss, sig.Entry)
	for i := 0; i < len(sig.TakeProfits); i++ {
		assert.Greater(t, sig.TakeProfits[i], sig.Entry)
		if i > 0 {
			assert.Greater(t, sig.TakeProfits[i], sig.TakeProfits[i-1])
		}
	}
}

func TestBuild_BuyIgnoresZoneAbovePrice(t *testing.T) {
	builder := NewBuilder(DefaultConfig())
	zones := &smartmoney.ZoneSet{
		OrderBlocks: []smartmoney.Zone{{
			Direction: smartmoney.DirectionBullish,
			Top:       2010,
			Bottom:    2005,
		}},
	}

	sig, err := builder.Build(lastCandle(2000), zones, tradeableScore(confluence.DirectionBullish), 4.0)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, sig.Entry)
}

func TestBuild_SellMirrorsLevels(t *testing.T) {
	builder := NewBuilder(DefaultConfig())
	zones := &smartmoney.ZoneSet{
		FairValueGaps: []smartmoney.Zone{{
			Kind:      smartmoney.KindFairValueGap,
			Direction: smartmoney.DirectionBearish,
			Top:       2008,
			Bottom:    2004,
		}},
	}

	sig, err := builder.Build(lastCandle(2000), zones, tradeableScore(confluence.DirectionBearish), 4.0)
	require.NoError(t, err)

	assert.Equal(t, Sell, sig.Direction)
	assert.Equal(t, 2004.0, sig.Entry)
	assert.Equal(t, 2010.0, sig.StopLoss) // zone top + 0.5 ATR
	assert.Equal(t, []float64{1998, 1994, 1988}, sig.TakeProfits)

	// SELL invariant: tp3 < tp2 < tp1 < entry < stop
	assert.Greater(t, sig.StopLoss, sig.Entry)
	for i := 0; i < len(sig.TakeProfits); i++ {
		assert.Less(t, sig.TakeProfits[i], sig.Entry)
	}
}

func TestBuild_UntradeableConfluenceIsNoTrade(t *testing.T) {
	builder := NewBuilder(DefaultConfig())
	conf := &confluence.Score{Direction: confluence.DirectionNeutral, Total: 0.4, Grade: "F"}

	sig, err := builder.Build(lastCandle(2000), &smartmoney.ZoneSet{}, conf, 4.0)
	require.NoError(t, err)

	assert.Equal(t, NoTrade, sig.Direction)
	assert.False(t, sig.IsActionable())
	assert.Zero(t, sig.Entry)
	assert.Zero(t, sig.StopLoss)
	assert.Empty(t, sig.TakeProfits)
}

func TestBuild_MissingATRIsNoTrade(t *testing.T) {
	builder := NewBuilder(DefaultConfig())

	sig, err := builder.Build(lastCandle(2000), &smartmoney.ZoneSet{}, tradeableScore(confluence.DirectionBullish), 0)
	require.NoError(t, err)
	assert.Equal(t, NoTrade, sig.Direction)
}

func TestBuild_RiskRewardGate(t *testing.T) {
	config := DefaultConfig()
	config.MinRiskReward = 5.0
	builder := NewBuilder(config)

	sig, err := builder.Build(lastCandle(2000), &smartmoney.ZoneSet{}, tradeableScore(confluence.DirectionBullish), 4.0)
	require.NoError(t, err)

	assert.Equal(t, NoTrade, sig.Direction)
	assert.Contains(t, sig.Reasoning[len(sig.Reasoning)-1], "risk:reward")
}

func TestBuild_Validation(t *testing.T) {
	builder := NewBuilder(DefaultConfig())

	_, err := builder.Build(nil, &smartmoney.ZoneSet{}, tradeableScore(confluence.DirectionBullish), 4.0)
	assert.Error(t, err)

	_, err = builder.Build(lastCandle(2000), &smartmoney.ZoneSet{}, nil, 4.0)
	assert.Error(t, err)
}

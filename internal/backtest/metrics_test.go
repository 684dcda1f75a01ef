package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

func curve(values ...float64) []EquityPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]EquityPoint, len(values))
	for i, v := range values {
		points[i] = EquityPoint{Timestamp: start.Add(time.Duration(i) * time.Hour), Equity: v}
	}
	return points
}

func TestMaxDrawdown(t *testing.T) {
	assert.InDelta(t, 1.0/3.0, maxDrawdown(curve(100, 120, 90, 110, 80)), 1e-9)
	assert.Equal(t, 0.0, maxDrawdown(curve(100, 110, 120, 130)))
	assert.Equal(t, 0.0, maxDrawdown(nil))
}

func TestSharpeRatio(t *testing.T) {
	trades := []Trade{
		{PnL: 100}, {PnL: -50}, {PnL: 100}, {PnL: -50},
	}
	// returns .01/-.005/.01/-.005, mean .0025, stddev ~.00866
	assert.InDelta(t, 0.288675, sharpeRatio(trades, 10000), 1e-5)
}

func TestSharpeRatio_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, sharpeRatio([]Trade{{PnL: 100}}, 10000))
	assert.Equal(t, 0.0, sharpeRatio([]Trade{{PnL: 50}, {PnL: 50}}, 10000)) // zero variance
	assert.Equal(t, 0.0, sharpeRatio(nil, 10000))
}

func TestAnnualizedReturn(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	oneYear := []types.Candle{
		{Timestamp: start},
		{Timestamp: start.Add(365 * 24 * time.Hour)},
	}
	assert.InDelta(t, 0.10, annualizedReturn(0.10, oneYear), 1e-9)

	halfYear := []types.Candle{
		{Timestamp: start},
		{Timestamp: start.Add(365 * 12 * time.Hour)},
	}
	// 10% over half a year compounds to 21% annualized
	assert.InDelta(t, 0.21, annualizedReturn(0.10, halfYear), 1e-9)

	assert.Equal(t, 0.0, annualizedReturn(0.10, oneYear[:1]))
}

func TestFinalize_ProfitFactorAndWinRate(t *testing.T) {
	results := &Results{
		StartBalance: 10000,
		EndBalance:   10075,
		Trades: []Trade{
			{PnL: 100}, {PnL: 50}, {PnL: -75},
		},
	}
	results.finalize(nil)

	assert.Equal(t, 3, results.TotalTrades)
	assert.Equal(t, 2, results.WinningTrades)
	assert.Equal(t, 1, results.LosingTrades)
	assert.InDelta(t, 2.0/3.0, results.WinRate, 1e-9)
	assert.InDelta(t, 2.0, results.ProfitFactor, 1e-9) // 150 gross profit / 75 gross loss
	assert.InDelta(t, 0.0075, results.TotalReturn, 1e-9)
}

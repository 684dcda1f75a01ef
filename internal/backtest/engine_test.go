package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurumquant/xau-signal-engine/internal/signal"
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

func flatCandles(count int) []types.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]types.Candle, count)
	for i := range candles {
		candles[i] = types.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      2000,
			High:      2001,
			Low:       1999,
			Close:     2000,
			Volume:    1000,
		}
	}
	return candles
}

// fireOnce emits the given signal on the first window and nothing after
func fireOnce(sig *signal.Signal) SignalFunc {
	fired := false
	return func(window []types.Candle) (*signal.Signal, error) {
		if fired {
			return nil, nil
		}
		fired = true
		return sig, nil
	}
}

func buySignal() *signal.Signal {
	return &signal.Signal{
		ID:          "test-buy",
		Direction:   signal.Buy,
		Entry:       2000,
		StopLoss:    1996,
		TakeProfits: []float64{2004, 2008, 2012},
	}
}

func testConfig() Config {
	return Config{
		InitialBalance: 10000,
		Commission:     0,
		WindowSize:     2,
		RiskPercent:    1.0,
	}
}

func TestRun_WinningLongTrade(t *testing.T) {
	candles := flatCandles(6)
	candles[4].High = 2010 // through the middle take profit at 2008

	engine := NewEngine(testConfig(), fireOnce(buySignal()))
	results, err := engine.Run(candles)
	require.NoError(t, err)

	require.Len(t, results.Trades, 1)
	trade := results.Trades[0]
	assert.Equal(t, signal.Buy, trade.Direction)
	assert.Equal(t, 2000.0, trade.EntryPrice)
	assert.Equal(t, 2008.0, trade.ExitPrice)
	assert.Equal(t, "take profit", trade.ExitReason)
	assert.Equal(t, 25.0, trade.Quantity) // 1% of 10000 over a 4.0 stop distance
	assert.Equal(t, 200.0, trade.PnL)

	assert.Equal(t, 10200.0, results.EndBalance)
	assert.InDelta(t, 0.02, results.TotalReturn, 1e-9)
	assert.Equal(t, 1, results.WinningTrades)
	assert.Equal(t, 1.0, results.WinRate)
	assert.True(t, math.IsInf(results.ProfitFactor, 1))
	assert.Greater(t, results.AnnualizedReturn, 0.0)

	require.Len(t, results.EquityCurve, 4)
	assert.Equal(t, 10200.0, results.EquityCurve[len(results.EquityCurve)-1].Equity)
}

func TestRun_StopFillsBeforeTarget(t *testing.T) {
	candles := flatCandles(6)
	candles[4].Low = 1995  // through the stop at 1996
	candles[4].High = 2010 // and through the target in the same candle

	engine := NewEngine(testConfig(), fireOnce(buySignal()))
	results, err := engine.Run(candles)
	require.NoError(t, err)

	require.Len(t, results.Trades, 1)
	trade := results.Trades[0]
	assert.Equal(t, 1996.0, trade.ExitPrice)
	assert.Equal(t, "stop loss", trade.ExitReason)
	assert.Equal(t, -100.0, trade.PnL)

	assert.Equal(t, 9900.0, results.EndBalance)
	assert.Equal(t, 1, results.LosingTrades)
	assert.Equal(t, 0.0, results.WinRate)
	assert.InDelta(t, 0.01, results.MaxDrawdown, 1e-9)
}

func TestRun_ShortTradeMirrors(t *testing.T) {
	sellSig := &signal.Signal{
		ID:          "test-sell",
		Direction:   signal.Sell,
		Entry:       2000,
		StopLoss:    2004,
		TakeProfits: []float64{1996, 1992, 1988},
	}
	candles := flatCandles(6)
	candles[4].Low = 1990 // through the middle take profit at 1992

	engine := NewEngine(testConfig(), fireOnce(sellSig))
	results, err := engine.Run(candles)
	require.NoError(t, err)

	require.Len(t, results.Trades, 1)
	trade := results.Trades[0]
	assert.Equal(t, signal.Sell, trade.Direction)
	assert.Equal(t, 1992.0, trade.ExitPrice)
	assert.Equal(t, "take profit", trade.ExitReason)
	assert.Equal(t, 200.0, trade.PnL)
}

func TestRun_OpenPositionClosedAtEndOfData(t *testing.T) {
	candles := flatCandles(5) // flat range never touches stop or target

	engine := NewEngine(testConfig(), fireOnce(buySignal()))
	results, err := engine.Run(candles)
	require.NoError(t, err)

	require.Len(t, results.Trades, 1)
	trade := results.Trades[0]
	assert.Equal(t, "end of data", trade.ExitReason)
	assert.Equal(t, 2000.0, trade.ExitPrice)
	assert.Equal(t, 0.0, trade.PnL)
	assert.Equal(t, 10000.0, results.EndBalance)
}

func TestRun_CommissionChargedBothSides(t *testing.T) {
	config := testConfig()
	config.Commission = 0.001
	candles := flatCandles(6)
	candles[4].High = 2010

	engine := NewEngine(config, fireOnce(buySignal()))
	results, err := engine.Run(candles)
	require.NoError(t, err)

	require.Len(t, results.Trades, 1)
	trade := results.Trades[0]
	// entry 2000*25*0.001 = 50, exit 2008*25*0.001 = 50.2
	assert.InDelta(t, 100.2, trade.Commission, 1e-9)
	assert.InDelta(t, 149.8, trade.PnL, 1e-9)
	assert.InDelta(t, 10099.8, results.EndBalance, 1e-9)
}

func TestRun_ShortDataIsZeroTradeResult(t *testing.T) {
	engine := NewEngine(testConfig(), fireOnce(buySignal()))
	results, err := engine.Run(flatCandles(2))
	require.NoError(t, err)

	assert.Empty(t, results.Trades)
	assert.Equal(t, 10000.0, results.EndBalance)
	assert.Zero(t, results.TotalReturn)
}

func TestRun_NoTradeSignalsAreIgnored(t *testing.T) {
	calls := 0
	engine := NewEngine(testConfig(), func(window []types.Candle) (*signal.Signal, error) {
		calls++
		return &signal.Signal{Direction: signal.NoTrade}, nil
	})

	results, err := engine.Run(flatCandles(10))
	require.NoError(t, err)

	assert.Empty(t, results.Trades)
	assert.Equal(t, 8, calls) // one evaluation per replayed candle
}

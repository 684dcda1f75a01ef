package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurumquant/xau-signal-engine/internal/backtest"
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

func hourlyCandles(count int) []types.Candle {
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

func fixedRunner(totalReturn, drawdown float64) Runner {
	return func(candles []types.Candle) (*backtest.Results, error) {
		return &backtest.Results{
			StartBalance: 10000,
			EndBalance:   10000 * (1 + totalReturn),
			TotalReturn:  totalReturn,
			MaxDrawdown:  drawdown,
		}, nil
	}
}

func TestSplitByRatio(t *testing.T) {
	candles := hourlyCandles(100)

	train, test := SplitByRatio(candles, 0.7)
	assert.Len(t, train, 70)
	assert.Len(t, test, 30)
	assert.True(t, train[len(train)-1].Timestamp.Before(test[0].Timestamp))

	// Degenerate ratios return everything as train
	train, test = SplitByRatio(candles, 0)
	assert.Len(t, train, 100)
	assert.Nil(t, test)
	train, test = SplitByRatio(candles, 1.0)
	assert.Len(t, train, 100)
	assert.Nil(t, test)
}

func TestCreateRollingFolds(t *testing.T) {
	// 60 days of hourly candles: 10-day train, 5-day test, 5-day roll
	candles := hourlyCandles(60 * 24)
	folds := CreateRollingFolds(candles, 10, 5, 5)
	require.NotEmpty(t, folds)

	for _, fold := range folds {
		assert.Len(t, fold.Train, 10*24)
		assert.Len(t, fold.Test, 5*24)
		assert.True(t, fold.TrainEnd.Before(fold.TestStart))
	}

	// Consecutive folds roll forward by 5 days
	if len(folds) > 1 {
		assert.Equal(t, folds[0].TrainStart.Add(5*24*time.Hour), folds[1].TrainStart)
	}
}

func TestCreateRollingFolds_TooLittleData(t *testing.T) {
	assert.Empty(t, CreateRollingFolds(hourlyCandles(50), 10, 5, 5))
}

func TestValidate_Holdout(t *testing.T) {
	validator := NewValidator(DefaultConfig(), fixedRunner(0.10, 0.05))

	summary, err := validator.Validate(hourlyCandles(500))
	require.NoError(t, err)

	require.Len(t, summary.Folds, 1)
	assert.InDelta(t, 10.0, summary.AverageTrainReturn, 1e-9)
	assert.InDelta(t, 10.0, summary.AverageTestReturn, 1e-9)
	assert.InDelta(t, 0.0, summary.ReturnDegradation, 1e-9)
	assert.Equal(t, "LOW", summary.OverfittingRisk)
	assert.True(t, summary.IsRobust)
}

func TestValidate_Rolling(t *testing.T) {
	config := Config{Rolling: true, TrainDays: 10, TestDays: 5, RollDays: 5}
	validator := NewValidator(config, fixedRunner(0.05, 0.02))

	summary, err := validator.Validate(hourlyCandles(60 * 24))
	require.NoError(t, err)

	assert.Greater(t, len(summary.Folds), 1)
	assert.InDelta(t, 5.0, summary.AverageTestReturn, 1e-9)
	assert.InDelta(t, 0.0, summary.TestReturnStdDev, 1e-9)
}

func TestValidate_DegradationFlagsOverfitting(t *testing.T) {
	calls := 0
	runner := func(candles []types.Candle) (*backtest.Results, error) {
		calls++
		// Odd calls are train windows, even calls are test windows
		if calls%2 == 1 {
			return &backtest.Results{TotalReturn: 0.20}, nil
		}
		return &backtest.Results{TotalReturn: 0.02}, nil
	}

	validator := NewValidator(DefaultConfig(), runner)
	summary, err := validator.Validate(hourlyCandles(500))
	require.NoError(t, err)

	assert.Equal(t, "HIGH", summary.OverfittingRisk)
	assert.False(t, summary.IsRobust)
}

func TestValidate_RequiresRunner(t *testing.T) {
	validator := NewValidator(DefaultConfig(), nil)
	_, err := validator.Validate(hourlyCandles(500))
	assert.Error(t, err)
}

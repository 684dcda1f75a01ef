package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// candlesFromCloses builds a candle series from literal close prices
func candlesFromCloses(closes ...float64) []types.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]types.Candle, len(closes))
	for i, close := range closes {
		open := close
		if i > 0 {
			open = closes[i-1]
		}
		candles[i] = types.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      open,
			High:      close + 1,
			Low:       close - 1,
			Close:     close,
			Volume:    1000,
		}
	}
	return candles
}

func TestRSI_InsufficientData(t *testing.T) {
	rsi := NewRSI(14)
	_, err := rsi.Calculate(candlesFromCloses(100, 101, 102))
	assert.Error(t, err)
}

func TestRSI_AllGains(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 2000 + float64(i)
	}

	rsi := NewRSI(14)
	value, err := rsi.Calculate(candlesFromCloses(closes...))
	require.NoError(t, err)
	assert.Equal(t, 100.0, value)
}

func TestRSI_BalancedGainsAndLosses(t *testing.T) {
	// Alternating +1/-1 changes: average gain equals average loss
	closes := make([]float64, 15)
	closes[0] = 2000
	for i := 1; i < len(closes); i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] + 1
		} else {
			closes[i] = closes[i-1] - 1
		}
	}

	rsi := NewRSI(14)
	value, err := rsi.Calculate(candlesFromCloses(closes...))
	require.NoError(t, err)
	assert.InDelta(t, 50.0, value, 0.0001)
}

func TestSMA_KnownValue(t *testing.T) {
	sma := NewSMA(5)
	value, err := sma.Calculate(candlesFromCloses(1, 2, 3, 4, 5))
	require.NoError(t, err)
	assert.Equal(t, 3.0, value)
}

func TestSMA_UsesOnlyLastPeriod(t *testing.T) {
	sma := NewSMA(2)
	value, err := sma.Calculate(candlesFromCloses(100, 200, 10, 20))
	require.NoError(t, err)
	assert.Equal(t, 15.0, value)
}

func TestEMA_KnownSeries(t *testing.T) {
	// period 3, alpha 0.5, seed SMA(1,2,3)=2 -> 3 -> 4
	ema := NewEMA(3)
	value, err := ema.Calculate(candlesFromCloses(1, 2, 3, 4, 5))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, value, 0.0001)
}

func TestEMA_InsufficientData(t *testing.T) {
	ema := NewEMA(10)
	_, err := ema.Calculate(candlesFromCloses(1, 2, 3))
	assert.Error(t, err)
}

func TestMACD_RisingSeriesIsPositive(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 2000 + float64(i)*2
	}

	macd := NewMACD(12, 26, 9)
	result, err := macd.Calculate(candlesFromCloses(closes...))
	require.NoError(t, err)
	assert.Greater(t, result.Line, 0.0)
}

func TestMACD_InvalidPeriodsFallBackToDefaults(t *testing.T) {
	macd := NewMACD(26, 12, 9)
	assert.Equal(t, 26+9, macd.RequiredPeriods())
}

func TestATR_ConstantRange(t *testing.T) {
	// Flat closes with the fixture's constant +-1 range: TR is always 2
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 2000
	}

	atr := NewATR(14)
	value, err := atr.Calculate(candlesFromCloses(closes...))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, value, 0.0001)
}

func TestATR_InsufficientData(t *testing.T) {
	atr := NewATR(14)
	_, err := atr.Calculate(candlesFromCloses(1, 2, 3))
	assert.Error(t, err)
}

func TestBollinger_FlatSeries(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 2000
	}

	bb := NewBollinger(20, 2.0)
	result, err := bb.Calculate(candlesFromCloses(closes...))
	require.NoError(t, err)
	assert.Equal(t, 2000.0, result.Middle)
	assert.Equal(t, 2000.0, result.Upper)
	assert.Equal(t, 2000.0, result.Lower)
	assert.Equal(t, 0.0, result.Width())
}

func TestBollinger_BandsBracketMiddle(t *testing.T) {
	closes := []float64{2000, 2010, 1990, 2020, 1980, 2005, 1995, 2015, 1985, 2000,
		2010, 1990, 2020, 1980, 2005, 1995, 2015, 1985, 2000, 2010}

	bb := NewBollinger(20, 2.0)
	result, err := bb.Calculate(candlesFromCloses(closes...))
	require.NoError(t, err)
	assert.Greater(t, result.Upper, result.Middle)
	assert.Less(t, result.Lower, result.Middle)
}

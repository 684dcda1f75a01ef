package mtf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurumquant/xau-signal-engine/internal/structure"
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

func m15Candles(closes ...float64) []types.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]types.Candle, len(closes))
	for i, close := range closes {
		open := close
		if i > 0 {
			open = closes[i-1]
		}
		candles[i] = types.Candle{
			Timestamp: start.Add(time.Duration(i) * 15 * time.Minute),
			Open:      open,
			High:      close + 0.5,
			Low:       close - 0.5,
			Close:     close,
			Volume:    100,
		}
	}
	return candles
}

func TestResample_M15ToH1(t *testing.T) {
	candles := m15Candles(2000, 2004, 1998, 2002, 2006, 2010, 2004, 2008)

	h1, err := Resample(candles, types.TimeframeM15, types.TimeframeH1)
	require.NoError(t, err)
	require.Len(t, h1, 2)

	first := h1[0]
	assert.Equal(t, 2000.0, first.Open)
	assert.Equal(t, 2002.0, first.Close)
	assert.Equal(t, 2004.5, first.High) // highest of the four highs
	assert.Equal(t, 1997.5, first.Low)
	assert.Equal(t, 400.0, first.Volume)
	assert.True(t, first.Timestamp.Equal(candles[0].Timestamp))

	second := h1[1]
	assert.Equal(t, 2002.0, second.Open)
	assert.Equal(t, 2008.0, second.Close)
}

func TestResample_DropsPartialBucket(t *testing.T) {
	candles := m15Candles(2000, 2001, 2002, 2003, 2004, 2005)

	h1, err := Resample(candles, types.TimeframeM15, types.TimeframeH1)
	require.NoError(t, err)
	assert.Len(t, h1, 1)
}

func TestResample_RejectsNonMultiple(t *testing.T) {
	candles := m15Candles(2000, 2001)

	_, err := Resample(candles, types.TimeframeH1, types.TimeframeM15)
	assert.Error(t, err)
}

func TestAlign_TrendingSeriesFullyAligned(t *testing.T) {
	// A steady climb looks bullish on every timeframe
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 2000 + float64(i)
	}
	candles := m15Candles(closes...)

	agg := NewAggregator(Config{Timeframes: []types.Timeframe{types.TimeframeH1}}, nil)
	alignment, err := agg.Align(candles, types.TimeframeM15)
	require.NoError(t, err)

	assert.Equal(t, 1, alignment.BaseBias)
	assert.Equal(t, 1.0, alignment.Score)
	assert.Equal(t, 1, alignment.TimeframeBias[types.TimeframeH1])
}

func TestAlign_NeutralBaseScoresHalf(t *testing.T) {
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 2000
	}
	candles := m15Candles(closes...)

	agg := NewAggregator(DefaultConfig(), structure.NewClassifier(structure.DefaultConfig()))
	alignment, err := agg.Align(candles, types.TimeframeM15)
	require.NoError(t, err)

	assert.Equal(t, 0, alignment.BaseBias)
	assert.Equal(t, 0.5, alignment.Score)
}

func TestAlign_InsufficientHigherTimeframeDataSkipped(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 2000 + float64(i)
	}
	candles := m15Candles(closes...)

	// 40 M15 candles resample to only 2 H4 candles: too few to classify
	agg := NewAggregator(Config{Timeframes: []types.Timeframe{types.TimeframeH4}}, nil)
	alignment, err := agg.Align(candles, types.TimeframeM15)
	require.NoError(t, err)

	assert.Equal(t, 0.5, alignment.Score)
	assert.NotContains(t, alignment.TimeframeBias, types.TimeframeH4)
}

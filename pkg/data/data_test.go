package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Deterministic(t *testing.T) {
	config := DefaultSyntheticConfig()

	first := Generate(config)
	second := Generate(config)

	require.Len(t, first, config.Count)
	assert.Equal(t, first, second)
}

func TestGenerate_CandleInvariants(t *testing.T) {
	candles := Generate(DefaultSyntheticConfig())

	for i, c := range candles {
		assert.GreaterOrEqual(t, c.High, c.Open, "candle %d", i)
		assert.GreaterOrEqual(t, c.High, c.Close, "candle %d", i)
		assert.LessOrEqual(t, c.Low, c.Open, "candle %d", i)
		assert.LessOrEqual(t, c.Low, c.Close, "candle %d", i)
		assert.Greater(t, c.Close, 0.0, "candle %d", i)
		if i > 0 {
			// Continuous series: each candle opens at the previous close
			assert.Equal(t, candles[i-1].Close, c.Open, "candle %d", i)
		}
	}

	require.NoError(t, ValidateTimeSequence(candles))
}

func TestGenerate_DifferentSeedsDiffer(t *testing.T) {
	a := DefaultSyntheticConfig()
	b := DefaultSyntheticConfig()
	b.Seed = 7

	assert.NotEqual(t, Generate(a), Generate(b))
}

func TestSyntheticProvider_SourceOverridesSeedPrice(t *testing.T) {
	provider := NewSyntheticProvider(DefaultSyntheticConfig())

	candles, err := provider.LoadData("2350.5")
	require.NoError(t, err)
	assert.Equal(t, 2350.5, candles[0].Open)

	_, err = provider.LoadData("not-a-price")
	assert.Error(t, err)
}

func TestCSVProvider_LoadData(t *testing.T) {
	content := "timestamp,open,high,low,close,volume\n" +
		"2024-01-01 00:00:00,2000,2005,1995,2002,1200\n" +
		"2024-01-01 01:00:00,2002,2010,2000,2008,900\n" +
		"bad-row,x,x,x,x,x\n" +
		"2024-01-01 02:00:00,2008,2012,2004,2006,1100\n"

	path := filepath.Join(t.TempDir(), "xauusd.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	provider := NewCSVProvider()
	candles, err := provider.LoadData(path)
	require.NoError(t, err)

	require.Len(t, candles, 3)
	assert.Equal(t, 2000.0, candles[0].Open)
	assert.Equal(t, 2008.0, candles[1].Close)
	assert.Equal(t, 1100.0, candles[2].Volume)
}

func TestCSVProvider_MissingFile(t *testing.T) {
	provider := NewCSVProvider()
	_, err := provider.LoadData(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestCSVProvider_UnixMilliTimestamps(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	content := "timestamp,open,high,low,close,volume\n" +
		"1709294400000,2000,2005,1995,2002,1200\n"

	path := filepath.Join(t.TempDir(), "xauusd.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	candles, err := NewCSVProvider().LoadData(path)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.True(t, candles[0].Timestamp.Equal(ts))
}

func TestFilterByDateRange(t *testing.T) {
	candles := Generate(DefaultSyntheticConfig())
	start := candles[10].Timestamp
	end := candles[20].Timestamp

	filtered := FilterByDateRange(candles, start, end)
	require.Len(t, filtered, 11)
	assert.True(t, filtered[0].Timestamp.Equal(start))
	assert.True(t, filtered[len(filtered)-1].Timestamp.Equal(end))
}

func TestLastN(t *testing.T) {
	candles := Generate(DefaultSyntheticConfig())

	assert.Len(t, LastN(candles, 50), 50)
	assert.Len(t, LastN(candles, 0), len(candles))
	assert.Len(t, LastN(candles[:5], 50), 5)
}

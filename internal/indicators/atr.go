package indicators

import (
	"errors"
	"math"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// ATR calculates the Average True Range, a volatility measure used by the
// zone finder and the signal builder for stop placement
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator with the given period
func NewATR(period int) *ATR {
	if period <= 0 {
		period = 14
	}
	return &ATR{period: period}
}

// Calculate computes the ATR using Wilder's smoothing
func (a *ATR) Calculate(data []types.Candle) (float64, error) {
	if len(data) < a.period+1 {
		return 0, errors.New("insufficient data for ATR calculation")
	}

	trs := trueRanges(data)

	// Seed with the simple average of the first period true ranges
	atr := mean(trs[:a.period])

	// Wilder smoothing over the remainder
	for i := a.period; i < len(trs); i++ {
		atr = (atr*float64(a.period-1) + trs[i]) / float64(a.period)
	}
	return atr, nil
}

// Name returns the indicator name
func (a *ATR) Name() string {
	return "ATR"
}

// RequiredPeriods returns the minimum number of candles needed
func (a *ATR) RequiredPeriods() int {
	return a.period + 1
}

// trueRanges computes the true range series; trs[i] corresponds to data[i+1]
func trueRanges(data []types.Candle) []float64 {
	trs := make([]float64, len(data)-1)
	for i := 1; i < len(data); i++ {
		highLow := data[i].High - data[i].Low
		highClose := math.Abs(data[i].High - data[i-1].Close)
		lowClose := math.Abs(data[i].Low - data[i-1].Close)
		trs[i-1] = math.Max(highLow, math.Max(highClose, lowClose))
	}
	return trs
}

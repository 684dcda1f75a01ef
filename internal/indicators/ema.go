package indicators

import (
	"errors"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// EMA calculates the Exponential Moving Average
type EMA struct {
	period int
	alpha  float64
}

// NewEMA creates a new EMA indicator with the given period
func NewEMA(period int) *EMA {
	if period <= 0 {
		period = 20
	}
	return &EMA{
		period: period,
		alpha:  2.0 / float64(period+1),
	}
}

// Calculate computes the EMA over the full candle slice, seeded with the SMA
// of the first period values
func (e *EMA) Calculate(data []types.Candle) (float64, error) {
	series, err := e.Series(Closes(data))
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// Series computes the EMA for every index from period-1 onward.
// The returned slice is aligned so that Series[i] is the EMA at prices[i+period-1].
func (e *EMA) Series(prices []float64) ([]float64, error) {
	if len(prices) < e.period {
		return nil, errors.New("insufficient data for EMA calculation")
	}

	// Seed with SMA of the first period values
	sum := 0.0
	for i := 0; i < e.period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(e.period)

	series := make([]float64, 0, len(prices)-e.period+1)
	series = append(series, ema)
	for i := e.period; i < len(prices); i++ {
		ema = prices[i]*e.alpha + ema*(1-e.alpha)
		series = append(series, ema)
	}
	return series, nil
}

// Name returns the indicator name
func (e *EMA) Name() string {
	return "EMA"
}

// RequiredPeriods returns the minimum number of candles needed
func (e *EMA) RequiredPeriods() int {
	return e.period
}

package indicators

import (
	"errors"
	"math"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// RSI calculates the Relative Strength Index
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with the given period
func NewRSI(period int) *RSI {
	if period <= 0 {
		period = 14
	}
	return &RSI{period: period}
}

// Calculate computes the RSI value from the candle close prices
func (r *RSI) Calculate(data []types.Candle) (float64, error) {
	if len(data) < r.period+1 {
		return 0, errors.New("insufficient data for RSI calculation")
	}

	prices := Closes(data)

	// Price changes over the lookback
	changes := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		changes[i-1] = prices[i] - prices[i-1]
	}

	// Separate gains and losses
	gains := make([]float64, len(changes))
	losses := make([]float64, len(changes))
	for i, change := range changes {
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = math.Abs(change)
		}
	}

	avgGain := mean(gains[len(gains)-r.period:])
	avgLoss := mean(losses[len(losses)-r.period:])

	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), nil
}

// Name returns the indicator name
func (r *RSI) Name() string {
	return "RSI"
}

// RequiredPeriods returns the minimum number of candles needed
func (r *RSI) RequiredPeriods() int {
	return r.period + 1
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

package indicators

import (
	"errors"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// SMA calculates the Simple Moving Average
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator with the given period
func NewSMA(period int) *SMA {
	if period <= 0 {
		period = 20
	}
	return &SMA{period: period}
}

// Calculate computes the SMA of the last period closes
func (s *SMA) Calculate(data []types.Candle) (float64, error) {
	if len(data) < s.period {
		return 0, errors.New("insufficient data for SMA calculation")
	}

	sum := 0.0
	for i := len(data) - s.period; i < len(data); i++ {
		sum += data[i].Close
	}
	return sum / float64(s.period), nil
}

// Name returns the indicator name
func (s *SMA) Name() string {
	return "SMA"
}

// RequiredPeriods returns the minimum number of candles needed
func (s *SMA) RequiredPeriods() int {
	return s.period
}

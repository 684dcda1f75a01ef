package indicators

import (
	"errors"
	"math"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// BollingerResult holds the computed band values
type BollingerResult struct {
	Middle float64
	Upper  float64
	Lower  float64
}

// Width returns the band width normalized by the middle band
func (b *BollingerResult) Width() float64 {
	if b.Middle == 0 {
		return 0
	}
	return (b.Upper - b.Lower) / b.Middle
}

// Bollinger calculates Bollinger Bands
type Bollinger struct {
	period int
	stdDev float64
}

// NewBollinger creates a new Bollinger Bands indicator
func NewBollinger(period int, stdDev float64) *Bollinger {
	if period <= 0 {
		period = 20
	}
	if stdDev <= 0 {
		stdDev = 2.0
	}
	return &Bollinger{period: period, stdDev: stdDev}
}

// Calculate computes the bands for the most recent candle
func (b *Bollinger) Calculate(data []types.Candle) (*BollingerResult, error) {
	if len(data) < b.period {
		return nil, errors.New("insufficient data for Bollinger Bands calculation")
	}

	window := Closes(data[len(data)-b.period:])
	middle := mean(window)

	variance := 0.0
	for _, price := range window {
		variance += math.Pow(price-middle, 2)
	}
	sd := math.Sqrt(variance / float64(len(window)))

	return &BollingerResult{
		Middle: middle,
		Upper:  middle + b.stdDev*sd,
		Lower:  middle - b.stdDev*sd,
	}, nil
}

// Name returns the indicator name
func (b *Bollinger) Name() string {
	return "Bollinger"
}

// RequiredPeriods returns the minimum number of candles needed
func (b *Bollinger) RequiredPeriods() int {
	return b.period
}

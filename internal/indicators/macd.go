package indicators

import (
	"errors"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// MACDResult holds the three MACD output values
type MACDResult struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// MACD calculates the Moving Average Convergence Divergence
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with the given fast, slow and signal periods
func NewMACD(fast, slow, signal int) *MACD {
	if fast <= 0 || slow <= 0 || signal <= 0 || fast >= slow {
		fast, slow, signal = 12, 26, 9
	}
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

// Calculate computes the MACD line, signal line and histogram for the most
// recent candle
func (m *MACD) Calculate(data []types.Candle) (*MACDResult, error) {
	if len(data) < m.RequiredPeriods() {
		return nil, errors.New("insufficient data for MACD calculation")
	}

	prices := Closes(data)

	fastSeries, err := NewEMA(m.fastPeriod).Series(prices)
	if err != nil {
		return nil, err
	}
	slowSeries, err := NewEMA(m.slowPeriod).Series(prices)
	if err != nil {
		return nil, err
	}

	// Align the fast series to the slow series start
	offset := len(fastSeries) - len(slowSeries)
	macdSeries := make([]float64, len(slowSeries))
	for i := range slowSeries {
		macdSeries[i] = fastSeries[i+offset] - slowSeries[i]
	}

	signalSeries, err := NewEMA(m.signalPeriod).Series(macdSeries)
	if err != nil {
		return nil, err
	}

	line := macdSeries[len(macdSeries)-1]
	signal := signalSeries[len(signalSeries)-1]

	return &MACDResult{
		Line:      line,
		Signal:    signal,
		Histogram: line - signal,
	}, nil
}

// Name returns the indicator name
func (m *MACD) Name() string {
	return "MACD"
}

// RequiredPeriods returns the minimum number of candles needed
func (m *MACD) RequiredPeriods() int {
	return m.slowPeriod + m.signalPeriod
}

package indicators

import (
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// Closes extracts the close prices from a candle slice
func Closes(data []types.Candle) []float64 {
	closes := make([]float64, len(data))
	for i, c := range data {
		closes[i] = c.Close
	}
	return closes
}

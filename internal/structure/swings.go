package structure

import (
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// DetectSwings finds fractal swing points: candle i is a swing high if its
// high is the maximum over [i-left, i+right], a swing low if its low is the
// minimum over the same window. Trailing candles that cannot be confirmed yet
// are never reported.
func DetectSwings(candles []types.Candle, left, right int) (highs, lows []SwingPoint) {
	if len(candles) < left+right+1 {
		return nil, nil
	}

	for i := left; i < len(candles)-right; i++ {
		isHigh, isLow := true, true
		for j := i - left; j <= i+right; j++ {
			if j == i {
				continue
			}
			if candles[j].High > candles[i].High {
				isHigh = false
			}
			if candles[j].Low < candles[i].Low {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}

		if isHigh {
			highs = append(highs, SwingPoint{
				Index:     i,
				Price:     candles[i].High,
				Type:      SwingHigh,
				Timestamp: candles[i].Timestamp,
			})
		}
		if isLow {
			lows = append(lows, SwingPoint{
				Index:     i,
				Price:     candles[i].Low,
				Type:      SwingLow,
				Timestamp: candles[i].Timestamp,
			})
		}
	}

	return highs, lows
}

// countTransitions counts strictly higher and strictly lower consecutive
// swing prices. Equal prices count as neither.
func countTransitions(swings []SwingPoint) (higher, lower int) {
	for i := 1; i < len(swings); i++ {
		switch {
		case swings[i].Price > swings[i-1].Price:
			higher++
		case swings[i].Price < swings[i-1].Price:
			lower++
		}
	}
	return higher, lower
}

package mtf

import (
	"fmt"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// Resample aggregates candles from a lower timeframe into a higher one. The
// target must be an exact multiple of the source interval; a trailing partial
// bucket is dropped.
func Resample(candles []types.Candle, from, to types.Timeframe) ([]types.Candle, error) {
	fromDur := from.Duration()
	toDur := to.Duration()
	if fromDur == 0 || toDur == 0 {
		return nil, fmt.Errorf("unknown timeframe: %s -> %s", from, to)
	}
	if toDur <= fromDur || toDur%fromDur != 0 {
		return nil, fmt.Errorf("timeframe %s is not an exact higher multiple of %s", to, from)
	}

	ratio := int(toDur / fromDur)
	buckets := len(candles) / ratio
	if buckets == 0 {
		return nil, nil
	}

	out := make([]types.Candle, 0, buckets)
	for b := 0; b < buckets; b++ {
		group := candles[b*ratio : (b+1)*ratio]

		agg := types.Candle{
			Timestamp: group[0].Timestamp,
			Open:      group[0].Open,
			High:      group[0].High,
			Low:       group[0].Low,
			Close:     group[len(group)-1].Close,
		}
		for _, c := range group {
			if c.High > agg.High {
				agg.High = c.High
			}
			if c.Low < agg.Low {
				agg.Low = c.Low
			}
			agg.Volume += c.Volume
		}
		out = append(out, agg)
	}

	return out, nil
}

package smartmoney

import (
	"errors"

	"github.com/google/uuid"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// Config holds zone detection parameters
type Config struct {
	Lookback        int     `json:"lookback"`         // candles scanned per call
	MinGapPercent   float64 `json:"min_gap_percent"`  // minimum FVG size in percent
	DisplacementATR float64 `json:"displacement_atr"` // body size in ATRs that marks a displacement candle
}

// DefaultConfig returns the default detection parameters
func DefaultConfig() Config {
	return Config{
		Lookback:        100,
		MinGapPercent:   0.05,
		DisplacementATR: 1.5,
	}
}

// Detector finds order blocks and fair value gaps over a fixed lookback window
type Detector struct {
	config Config
}

// NewDetector creates a zone detector with the given config
func NewDetector(config Config) *Detector {
	if config.Lookback <= 0 {
		config.Lookback = 100
	}
	if config.MinGapPercent <= 0 {
		config.MinGapPercent = 0.05
	}
	if config.DisplacementATR <= 0 {
		config.DisplacementATR = 1.5
	}
	return &Detector{config: config}
}

// FindZones scans the last Lookback candles for order blocks and fair value
// gaps. Zone indexes refer to positions in the analyzed window tail. atr must
// be the current ATR of the series; it gates order-block displacement size.
func (d *Detector) FindZones(candles []types.Candle, atr float64) (*ZoneSet, error) {
	if len(candles) < 3 {
		return nil, errors.New("insufficient data for zone detection")
	}
	if atr <= 0 {
		return nil, errors.New("atr must be positive for zone detection")
	}

	window := candles
	if len(window) > d.config.Lookback {
		window = window[len(window)-d.config.Lookback:]
	}

	set := &ZoneSet{
		OrderBlocks:   d.findOrderBlocks(window, atr),
		FairValueGaps: d.findFairValueGaps(window),
	}

	markMitigated(set.OrderBlocks, window)
	markMitigated(set.FairValueGaps, window)

	return set, nil
}

// findFairValueGaps applies the three-candle gap rule: a bullish FVG exists
// when candle one's high sits below candle three's low, leaving an
// untraded window around the middle candle
func (d *Detector) findFairValueGaps(window []types.Candle) []Zone {
	var zones []Zone

	for i := 0; i+2 < len(window); i++ {
		c1, c2, c3 := window[i], window[i+1], window[i+2]

		if c1.High < c3.Low {
			gapPercent := (c3.Low - c1.High) / c1.High * 100
			if gapPercent >= d.config.MinGapPercent {
				zones = append(zones, Zone{
					ID:        uuid.NewString(),
					Kind:      KindFairValueGap,
					Direction: DirectionBullish,
					Top:       c3.Low,
					Bottom:    c1.High,
					Index:     i + 1,
					CreatedAt: c2.Timestamp,
				})
			}
		}

		if c1.Low > c3.High {
			gapPercent := (c1.Low - c3.High) / c3.High * 100
			if gapPercent >= d.config.MinGapPercent {
				zones = append(zones, Zone{
					ID:        uuid.NewString(),
					Kind:      KindFairValueGap,
					Direction: DirectionBearish,
					Top:       c1.Low,
					Bottom:    c3.High,
					Index:     i + 1,
					CreatedAt: c2.Timestamp,
				})
			}
		}
	}

	return zones
}

// findOrderBlocks marks the last opposite-colored candle before a
// displacement move (body of at least DisplacementATR * atr) as a zone
func (d *Detector) findOrderBlocks(window []types.Candle, atr float64) []Zone {
	var zones []Zone
	threshold := d.config.DisplacementATR * atr

	for i := 1; i < len(window); i++ {
		c := window[i]
		if c.Body() < threshold {
			continue
		}

		if c.IsBullish() {
			if j, ok := lastOpposite(window, i, false); ok {
				zones = append(zones, Zone{
					ID:        uuid.NewString(),
					Kind:      KindOrderBlock,
					Direction: DirectionBullish,
					Top:       window[j].High,
					Bottom:    window[j].Low,
					Index:     j,
					CreatedAt: window[j].Timestamp,
				})
			}
		} else if c.IsBearish() {
			if j, ok := lastOpposite(window, i, true); ok {
				zones = append(zones, Zone{
					ID:        uuid.NewString(),
					Kind:      KindOrderBlock,
					Direction: DirectionBearish,
					Top:       window[j].High,
					Bottom:    window[j].Low,
					Index:     j,
					CreatedAt: window[j].Timestamp,
				})
			}
		}
	}

	return zones
}

// lastOpposite walks back at most three candles from i looking for the last
// bullish (wantBullish) or bearish candle
func lastOpposite(window []types.Candle, i int, wantBullish bool) (int, bool) {
	for j := i - 1; j >= 0 && j >= i-3; j-- {
		if wantBullish && window[j].IsBullish() {
			return j, true
		}
		if !wantBullish && window[j].IsBearish() {
			return j, true
		}
	}
	return 0, false
}

// markMitigated flags zones that price has traded back into after forming.
// The candle immediately after the forming pattern is excluded so a zone is
// not consumed by its own displacement.
func markMitigated(zones []Zone, window []types.Candle) {
	for zi := range zones {
		zone := &zones[zi]
		for i := zone.Index + 2; i < len(window); i++ {
			c := window[i]

			touched := false
			if zone.Direction == DirectionBullish {
				touched = c.Low <= zone.Top && c.Low >= zone.Bottom-zone.Height()
			} else {
				touched = c.High >= zone.Bottom && c.High <= zone.Top+zone.Height()
			}

			if touched {
				zone.Mitigated = true
				ts := c.Timestamp
				zone.MitigatedAt = &ts
				break
			}
		}
	}
}

package structure

import (
	"fmt"
	"math"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// Config holds classifier parameters
type Config struct {
	SwingLeft  int `json:"swing_left"`  // candles to the left of a fractal pivot
	SwingRight int `json:"swing_right"` // candles to the right of a fractal pivot
}

// DefaultConfig returns the default classifier parameters
func DefaultConfig() Config {
	return Config{
		SwingLeft:  2,
		SwingRight: 2,
	}
}

// Classifier derives the market structure from swing-point transitions
type Classifier struct {
	config Config
}

// NewClassifier creates a classifier with the given config
func NewClassifier(config Config) *Classifier {
	if config.SwingLeft <= 0 {
		config.SwingLeft = 2
	}
	if config.SwingRight <= 0 {
		config.SwingRight = 2
	}
	return &Classifier{config: config}
}

// Analyze classifies the market structure of the candle series.
// Classification is driven by higher-high/higher-low counting; when the
// series produces too few swings to compare (e.g. a monotonic run confirms
// no fractals), it falls back to directional price efficiency.
func (c *Classifier) Analyze(candles []types.Candle) (*Analysis, error) {
	minLen := 2 * (c.config.SwingLeft + c.config.SwingRight + 1)
	if len(candles) < minLen {
		return nil, fmt.Errorf("insufficient data for structure analysis: need at least %d candles, got %d", minLen, len(candles))
	}

	highs, lows := DetectSwings(candles, c.config.SwingLeft, c.config.SwingRight)

	analysis := &Analysis{
		SwingHighs:      highs,
		SwingLows:       lows,
		PriceEfficiency: priceEfficiency(candles),
	}
	analysis.HigherHighs, analysis.LowerHighs = countTransitions(highs)
	analysis.HigherLows, analysis.LowerLows = countTransitions(lows)

	bullish := analysis.HigherHighs + analysis.HigherLows
	bearish := analysis.LowerHighs + analysis.LowerLows
	total := bullish + bearish

	if total < 2 {
		// Not enough comparable swings; classify from efficiency alone
		c.classifyFromEfficiency(analysis)
		return analysis, nil
	}

	ratio := float64(bullish) / float64(total)
	analysis.TrendStrength = clamp01(0.6*math.Abs(2*ratio-1) + 0.4*math.Abs(analysis.PriceEfficiency))

	switch {
	case ratio >= 0.75 && analysis.HigherHighs > 0 && analysis.HigherLows > 0:
		analysis.Structure = StructureStrongBullish
		analysis.Bias = 1
	case ratio >= 0.60:
		analysis.Structure = StructureBullish
		analysis.Bias = 1
	case ratio <= 0.25 && analysis.LowerHighs > 0 && analysis.LowerLows > 0:
		analysis.Structure = StructureStrongBearish
		analysis.Bias = -1
	case ratio <= 0.40:
		analysis.Structure = StructureBearish
		analysis.Bias = -1
	default:
		analysis.Structure = StructureRanging
		analysis.Bias = 0
		analysis.TrendStrength = clamp01(0.4 * math.Abs(analysis.PriceEfficiency))
	}

	return analysis, nil
}

// classifyFromEfficiency handles series where fractal swings are scarce,
// such as a monotonic run that confirms no pivots at all
func (c *Classifier) classifyFromEfficiency(analysis *Analysis) {
	eff := analysis.PriceEfficiency
	analysis.TrendStrength = clamp01(math.Abs(eff))

	switch {
	case eff >= 0.6:
		analysis.Structure = StructureStrongBullish
		analysis.Bias = 1
	case eff >= 0.3:
		analysis.Structure = StructureBullish
		analysis.Bias = 1
	case eff <= -0.6:
		analysis.Structure = StructureStrongBearish
		analysis.Bias = -1
	case eff <= -0.3:
		analysis.Structure = StructureBearish
		analysis.Bias = -1
	default:
		analysis.Structure = StructureRanging
		analysis.Bias = 0
	}
}

// priceEfficiency is the net close change divided by the sum of absolute
// close changes: +1 for a perfectly straight advance, 0 for pure chop
func priceEfficiency(candles []types.Candle) float64 {
	if len(candles) < 2 {
		return 0
	}

	net := candles[len(candles)-1].Close - candles[0].Close
	pathLength := 0.0
	for i := 1; i < len(candles); i++ {
		pathLength += math.Abs(candles[i].Close - candles[i-1].Close)
	}

	if pathLength == 0 {
		return 0
	}
	return net / pathLength
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

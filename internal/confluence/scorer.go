package confluence

import (
	"fmt"

	"github.com/aurumquant/xau-signal-engine/internal/smartmoney"
	"github.com/aurumquant/xau-signal-engine/internal/structure"
)

// Direction is the side the confluence favors
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// Weights for the confluence blend; they should sum to 1.0
type Weights struct {
	Structure     float64 `json:"structure"`
	Zones         float64 `json:"zones"`
	MTF           float64 `json:"mtf"`
	TrendStrength float64 `json:"trend_strength"`
	Momentum      float64 `json:"momentum"`
}

// DefaultWeights returns the default confluence weights
func DefaultWeights() Weights {
	return Weights{
		Structure:     0.30,
		Zones:         0.25,
		MTF:           0.20,
		TrendStrength: 0.15,
		Momentum:      0.10,
	}
}

// Config holds scorer parameters
type Config struct {
	Weights        Weights `json:"weights"`
	MinScore       float64 `json:"min_score"`       // emission gate
	ZoneSaturation int     `json:"zone_saturation"` // unmitigated zones that count as a full zone score
}

// DefaultConfig returns the default scorer configuration
func DefaultConfig() Config {
	return Config{
		Weights:        DefaultWeights(),
		MinScore:       0.70,
		ZoneSaturation: 3,
	}
}

// Momentum is the oscillator snapshot fed into the scorer
type Momentum struct {
	RSI           float64
	MACDHistogram float64
}

// Score is the scored confluence of all heuristic inputs
type Score struct {
	Direction Direction

	// Component scores, each 0.0 to 1.0
	Structure     float64
	Zones         float64
	MTF           float64
	TrendStrength float64
	Momentum      float64

	Total     float64
	Grade     string
	Tradeable bool
	Reasoning []string
}

// Scorer blends the heuristic sub-scores into a single gated confluence score
type Scorer struct {
	config Config
}

// NewScorer creates a confluence scorer with the given config
func NewScorer(config Config) *Scorer {
	if config.MinScore <= 0 {
		config.MinScore = 0.70
	}
	if config.ZoneSaturation <= 0 {
		config.ZoneSaturation = 3
	}
	zero := Weights{}
	if config.Weights == zero {
		config.Weights = DefaultWeights()
	}
	return &Scorer{config: config}
}

// Score combines market structure, smart-money zones, multi-timeframe
// alignment and momentum into a weighted total. The direction follows the
// structure bias; a neutral structure is never tradeable.
func (s *Scorer) Score(analysis *structure.Analysis, zones *smartmoney.ZoneSet, mtfScore float64, momentum Momentum) *Score {
	score := &Score{
		Direction: DirectionNeutral,
		MTF:       clamp01(mtfScore),
		Reasoning: make([]string, 0, 4),
	}

	var zoneDir smartmoney.Direction
	switch {
	case analysis.Bias > 0:
		score.Direction = DirectionBullish
		zoneDir = smartmoney.DirectionBullish
	case analysis.Bias < 0:
		score.Direction = DirectionBearish
		zoneDir = smartmoney.DirectionBearish
	}

	score.Structure = structureScore(analysis.Structure)
	score.TrendStrength = clamp01(analysis.TrendStrength)
	if score.Direction != DirectionNeutral {
		if zones != nil {
			count := zones.CountUnmitigated(zoneDir)
			score.Zones = clamp01(float64(count) / float64(s.config.ZoneSaturation))
			if count > 0 {
				score.Reasoning = append(score.Reasoning,
					fmt.Sprintf("%d unmitigated %s zone(s) in play", count, zoneDir))
			}
		}
		score.Momentum = momentumScore(score.Direction, momentum)
	}

	w := s.config.Weights
	score.Total = clamp01(w.Structure*score.Structure +
		w.Zones*score.Zones +
		w.MTF*score.MTF +
		w.TrendStrength*score.TrendStrength +
		w.Momentum*score.Momentum)

	score.Grade = grade(score.Total)
	score.Tradeable = score.Direction != DirectionNeutral && score.Total >= s.config.MinScore

	switch {
	case analysis.Structure == structure.StructureStrongBullish || analysis.Structure == structure.StructureStrongBearish:
		score.Reasoning = append(score.Reasoning, fmt.Sprintf("strong %s structure", score.Direction))
	case score.Direction != DirectionNeutral:
		score.Reasoning = append(score.Reasoning, fmt.Sprintf("%s structure", score.Direction))
	default:
		score.Reasoning = append(score.Reasoning, "ranging structure, no edge")
	}
	if score.MTF >= 0.75 {
		score.Reasoning = append(score.Reasoning, "higher timeframes aligned")
	}
	if !score.Tradeable && score.Direction != DirectionNeutral {
		score.Reasoning = append(score.Reasoning,
			fmt.Sprintf("score %.2f below %.2f gate", score.Total, s.config.MinScore))
	}

	return score
}

// structureScore maps the classified structure onto a 0..1 component score
func structureScore(s structure.Structure) float64 {
	switch s {
	case structure.StructureStrongBullish, structure.StructureStrongBearish:
		return 1.0
	case structure.StructureBullish, structure.StructureBearish:
		return 0.7
	default:
		return 0.25
	}
}

// momentumScore checks whether RSI and the MACD histogram agree with the
// proposed direction. Overextended RSI readings are discounted, not rejected.
func momentumScore(dir Direction, m Momentum) float64 {
	rsi := m.RSI
	hist := m.MACDHistogram
	if dir == DirectionBearish {
		rsi = 100 - rsi
		hist = -hist
	}

	rsiScore := 0.0
	switch {
	case rsi >= 50 && rsi <= 70:
		rsiScore = 1.0
	case rsi > 70 || (rsi >= 45 && rsi < 50):
		rsiScore = 0.5
	}

	macdScore := 0.0
	if hist > 0 {
		macdScore = 1.0
	}

	return 0.6*rsiScore + 0.4*macdScore
}

func grade(total float64) string {
	switch {
	case total >= 0.90:
		return "A+"
	case total >= 0.80:
		return "A"
	case total >= 0.70:
		return "B"
	case total >= 0.60:
		return "C"
	case total >= 0.50:
		return "D"
	default:
		return "F"
	}
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

package quantum

import (
	"fmt"
	"math"

	"github.com/aurumquant/xau-signal-engine/internal/indicators"
	"github.com/aurumquant/xau-signal-engine/internal/structure"
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// DimensionWeights blends the four quantum dimensions; they should sum to 1.0
type DimensionWeights struct {
	Momentum   float64 `json:"momentum"`
	Volatility float64 `json:"volatility"`
	Structure  float64 `json:"structure"`
	Volume     float64 `json:"volume"`
}

// Config holds the quantum scorer parameters
type Config struct {
	RSIPeriod       int              `json:"rsi_period"`
	MACDFast        int              `json:"macd_fast"`
	MACDSlow        int              `json:"macd_slow"`
	MACDSignal      int              `json:"macd_signal"`
	ATRPeriod       int              `json:"atr_period"`
	BollingerPeriod int              `json:"bollinger_period"`
	BollingerStdDev float64          `json:"bollinger_std_dev"`
	VolumeLookback  int              `json:"volume_lookback"`
	ATRPercentLow   float64          `json:"atr_percent_low"`  // lower edge of the tradeable volatility band
	ATRPercentHigh  float64          `json:"atr_percent_high"` // upper edge of the tradeable volatility band
	Weights         DimensionWeights `json:"weights"`
}

// DefaultConfig returns the default quantum scorer parameters
func DefaultConfig() Config {
	return Config{
		RSIPeriod:       14,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		ATRPeriod:       14,
		BollingerPeriod: 20,
		BollingerStdDev: 2.0,
		VolumeLookback:  20,
		ATRPercentLow:   0.05,
		ATRPercentHigh:  0.40,
		Weights: DimensionWeights{
			Momentum:   0.30,
			Volatility: 0.20,
			Structure:  0.30,
			Volume:     0.20,
		},
	}
}

// Score is the multi-dimension quantum assessment, each dimension 0..100
type Score struct {
	Momentum   float64
	Volatility float64
	Structure  float64
	Volume     float64
	Total      float64
	Rating     string
}

// Scorer computes the composite quantum score over a candle series
type Scorer struct {
	config     Config
	classifier *structure.Classifier
}

// NewScorer creates a quantum scorer
func NewScorer(config Config, classifier *structure.Classifier) *Scorer {
	if classifier == nil {
		classifier = structure.NewClassifier(structure.DefaultConfig())
	}
	return &Scorer{config: config, classifier: classifier}
}

// Score computes all four dimensions and their weighted composite. It is a
// pure function of the candle slice.
func (s *Scorer) Score(candles []types.Candle) (*Score, error) {
	if len(candles) < s.minRequired() {
		return nil, fmt.Errorf("insufficient data for quantum score: need at least %d candles", s.minRequired())
	}

	momentum, err := s.momentumDimension(candles)
	if err != nil {
		return nil, fmt.Errorf("momentum dimension: %w", err)
	}

	volatility, err := s.volatilityDimension(candles)
	if err != nil {
		return nil, fmt.Errorf("volatility dimension: %w", err)
	}

	analysis, err := s.classifier.Analyze(candles)
	if err != nil {
		return nil, fmt.Errorf("structure dimension: %w", err)
	}
	structureDim := analysis.TrendStrength * 100

	volume := s.volumeDimension(candles)

	w := s.config.Weights
	total := w.Momentum*momentum + w.Volatility*volatility + w.Structure*structureDim + w.Volume*volume

	return &Score{
		Momentum:   momentum,
		Volatility: volatility,
		Structure:  structureDim,
		Volume:     volume,
		Total:      total,
		Rating:     rating(total),
	}, nil
}

// momentumDimension measures directional energy: RSI distance from the
// midline, with a bonus when the MACD histogram points the same way
func (s *Scorer) momentumDimension(candles []types.Candle) (float64, error) {
	rsi, err := indicators.NewRSI(s.config.RSIPeriod).Calculate(candles)
	if err != nil {
		return 0, err
	}
	macd, err := indicators.NewMACD(s.config.MACDFast, s.config.MACDSlow, s.config.MACDSignal).Calculate(candles)
	if err != nil {
		return 0, err
	}

	energy := math.Min(math.Abs(rsi-50)*2, 100)

	agrees := (rsi >= 50 && macd.Histogram > 0) || (rsi < 50 && macd.Histogram < 0)
	score := energy * 0.7
	if agrees {
		score += 30
	}
	return math.Min(score, 100), nil
}

// volatilityDimension scores how far the ATR (as a percent of price) sits
// inside the tradeable band: dead markets and violent ones both score low
func (s *Scorer) volatilityDimension(candles []types.Candle) (float64, error) {
	atr, err := indicators.NewATR(s.config.ATRPeriod).Calculate(candles)
	if err != nil {
		return 0, err
	}
	bb, err := indicators.NewBollinger(s.config.BollingerPeriod, s.config.BollingerStdDev).Calculate(candles)
	if err != nil {
		return 0, err
	}

	price := candles[len(candles)-1].Close
	if price <= 0 {
		return 0, nil
	}
	atrPercent := atr / price * 100

	var atrScore float64
	switch {
	case atrPercent >= s.config.ATRPercentLow && atrPercent <= s.config.ATRPercentHigh:
		atrScore = 100
	case atrPercent < s.config.ATRPercentLow:
		atrScore = atrPercent / s.config.ATRPercentLow * 100
	default:
		atrScore = s.config.ATRPercentHigh / atrPercent * 100
	}

	// Squeezed bands cap the score: no room to run
	if bb.Width() < 0.002 {
		atrScore = math.Min(atrScore, 40)
	}

	return atrScore, nil
}

// volumeDimension compares the latest volume against its recent average
func (s *Scorer) volumeDimension(candles []types.Candle) float64 {
	lookback := s.config.VolumeLookback
	if len(candles) < lookback+1 {
		lookback = len(candles) - 1
	}
	if lookback <= 0 {
		return 0
	}

	sum := 0.0
	for i := len(candles) - 1 - lookback; i < len(candles)-1; i++ {
		sum += candles[i].Volume
	}
	avg := sum / float64(lookback)
	if avg <= 0 {
		return 0
	}

	ratio := candles[len(candles)-1].Volume / avg
	return math.Min(ratio, 2.0) / 2.0 * 100
}

func (s *Scorer) minRequired() int {
	min := s.config.MACDSlow + s.config.MACDSignal
	if s.config.BollingerPeriod > min {
		min = s.config.BollingerPeriod
	}
	if s.config.ATRPeriod+1 > min {
		min = s.config.ATRPeriod + 1
	}
	return min
}

func rating(total float64) string {
	switch {
	case total >= 85:
		return "EXCEPTIONAL"
	case total >= 70:
		return "STRONG"
	case total >= 50:
		return "MODERATE"
	default:
		return "WEAK"
	}
}

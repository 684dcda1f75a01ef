package mtf

import (
	"github.com/aurumquant/xau-signal-engine/internal/structure"
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// Config holds the aggregator parameters
type Config struct {
	Timeframes []types.Timeframe `json:"timeframes"` // higher timeframes checked against the base
}

// DefaultConfig returns the default higher-timeframe set for an M15 base
func DefaultConfig() Config {
	return Config{
		Timeframes: []types.Timeframe{types.TimeframeH1, types.TimeframeH4},
	}
}

// Alignment reports how the higher timeframes agree with the base bias
type Alignment struct {
	Score         float64 // 0.0 to 1.0
	BaseBias      int
	TimeframeBias map[types.Timeframe]int
}

// Aggregator resamples the base series into higher timeframes and scores how
// many of them share the base structure bias
type Aggregator struct {
	config     Config
	classifier *structure.Classifier
}

// NewAggregator creates a multi-timeframe aggregator
func NewAggregator(config Config, classifier *structure.Classifier) *Aggregator {
	if len(config.Timeframes) == 0 {
		config = DefaultConfig()
	}
	if classifier == nil {
		classifier = structure.NewClassifier(structure.DefaultConfig())
	}
	return &Aggregator{config: config, classifier: classifier}
}

// Align classifies the base series and each configured higher timeframe.
// Agreeing timeframes score 1, neutral ones 0.5, disagreeing ones 0; the
// result is the average over the timeframes that had enough data. A neutral
// base bias always yields 0.5.
func (a *Aggregator) Align(candles []types.Candle, base types.Timeframe) (*Alignment, error) {
	baseAnalysis, err := a.classifier.Analyze(candles)
	if err != nil {
		return nil, err
	}

	alignment := &Alignment{
		BaseBias:      baseAnalysis.Bias,
		TimeframeBias: make(map[types.Timeframe]int, len(a.config.Timeframes)),
	}

	if baseAnalysis.Bias == 0 {
		alignment.Score = 0.5
		return alignment, nil
	}

	total := 0.0
	evaluated := 0
	for _, tf := range a.config.Timeframes {
		resampled, err := Resample(candles, base, tf)
		if err != nil {
			return nil, err
		}

		analysis, err := a.classifier.Analyze(resampled)
		if err != nil {
			// Not enough higher-timeframe candles to judge; skip
			continue
		}

		alignment.TimeframeBias[tf] = analysis.Bias
		evaluated++
		switch {
		case analysis.Bias == baseAnalysis.Bias:
			total += 1.0
		case analysis.Bias == 0:
			total += 0.5
		}
	}

	if evaluated == 0 {
		alignment.Score = 0.5
		return alignment, nil
	}

	alignment.Score = total / float64(evaluated)
	return alignment, nil
}

package pipeline

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aurumquant/xau-signal-engine/internal/confluence"
	"github.com/aurumquant/xau-signal-engine/internal/indicators"
	"github.com/aurumquant/xau-signal-engine/internal/mtf"
	"github.com/aurumquant/xau-signal-engine/internal/quantum"
	"github.com/aurumquant/xau-signal-engine/internal/signal"
	"github.com/aurumquant/xau-signal-engine/internal/smartmoney"
	"github.com/aurumquant/xau-signal-engine/internal/structure"
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// Config wires the full analysis chain together
type Config struct {
	BaseTimeframe types.Timeframe   `json:"base_timeframe"`
	RSIPeriod     int               `json:"rsi_period"`
	MACDFast      int               `json:"macd_fast"`
	MACDSlow      int               `json:"macd_slow"`
	MACDSignal    int               `json:"macd_signal"`
	ATRPeriod     int               `json:"atr_period"`
	Structure     structure.Config  `json:"structure"`
	SmartMoney    smartmoney.Config `json:"smart_money"`
	MTF           mtf.Config        `json:"mtf"`
	Confluence    confluence.Config `json:"confluence"`
	Quantum       quantum.Config    `json:"quantum"`
	Signal        signal.Config     `json:"signal"`
}

// DefaultConfig returns the default end-to-end analysis parameters
func DefaultConfig() Config {
	return Config{
		BaseTimeframe: types.TimeframeM15,
		RSIPeriod:     14,
		MACDFast:      12,
		MACDSlow:      26,
		MACDSignal:    9,
		ATRPeriod:     14,
		Structure:     structure.DefaultConfig(),
		SmartMoney:    smartmoney.DefaultConfig(),
		MTF:           mtf.DefaultConfig(),
		Confluence:    confluence.DefaultConfig(),
		Quantum:       quantum.DefaultConfig(),
		Signal:        signal.DefaultConfig(),
	}
}

// Report is the full output of one analysis pass over a candle window
type Report struct {
	Timestamp  time.Time
	Price      float64
	ATR        float64
	Momentum   confluence.Momentum
	Structure  *structure.Analysis
	Zones      *smartmoney.ZoneSet
	Alignment  *mtf.Alignment
	Confluence *confluence.Score
	Quantum    *quantum.Score
	Signal     *signal.Signal
}

// Analyzer runs the full chain: indicators, market structure, smart-money
// zones, multi-timeframe alignment, confluence scoring, the quantum
// composite, and finally signal construction.
type Analyzer struct {
	config     Config
	classifier *structure.Classifier
	detector   *smartmoney.Detector
	aggregator *mtf.Aggregator
	confluence *confluence.Scorer
	quantum    *quantum.Scorer
	builder    *signal.Builder
}

// NewAnalyzer creates an analyzer from the given config
func NewAnalyzer(config Config) *Analyzer {
	if config.BaseTimeframe == "" {
		config.BaseTimeframe = types.TimeframeM15
	}
	if config.RSIPeriod <= 0 {
		config.RSIPeriod = 14
	}
	if config.ATRPeriod <= 0 {
		config.ATRPeriod = 14
	}
	if config.MACDFast <= 0 || config.MACDSlow <= 0 || config.MACDSignal <= 0 {
		config.MACDFast, config.MACDSlow, config.MACDSignal = 12, 26, 9
	}

	classifier := structure.NewClassifier(config.Structure)
	return &Analyzer{
		config:     config,
		classifier: classifier,
		detector:   smartmoney.NewDetector(config.SmartMoney),
		aggregator: mtf.NewAggregator(config.MTF, classifier),
		confluence: confluence.NewScorer(config.Confluence),
		quantum:    quantum.NewScorer(config.Quantum, classifier),
		builder:    signal.NewBuilder(config.Signal),
	}
}

// MinCandles returns the smallest window the analyzer accepts
func (a *Analyzer) MinCandles() int {
	min := a.config.MACDSlow + a.config.MACDSignal
	if a.config.ATRPeriod+1 > min {
		min = a.config.ATRPeriod + 1
	}
	if a.config.Quantum.BollingerPeriod > min {
		min = a.config.Quantum.BollingerPeriod
	}
	structMin := 2 * (a.config.Structure.SwingLeft + a.config.Structure.SwingRight + 1)
	if structMin > min {
		min = structMin
	}
	return min
}

// Analyze runs every stage over the candle window and returns the combined
// report. The window must hold at least MinCandles candles in chronological
// order; the last candle is treated as the current one.
func (a *Analyzer) Analyze(candles []types.Candle) (*Report, error) {
	if len(candles) < a.MinCandles() {
		return nil, fmt.Errorf("insufficient data: need at least %d candles, got %d", a.MinCandles(), len(candles))
	}

	last := candles[len(candles)-1]
	report := &Report{
		Timestamp: last.Timestamp,
		Price:     last.Close,
	}

	atr, err := indicators.NewATR(a.config.ATRPeriod).Calculate(candles)
	if err != nil {
		return nil, fmt.Errorf("atr: %w", err)
	}
	report.ATR = atr

	rsi, err := indicators.NewRSI(a.config.RSIPeriod).Calculate(candles)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	macd, err := indicators.NewMACD(a.config.MACDFast, a.config.MACDSlow, a.config.MACDSignal).Calculate(candles)
	if err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}
	report.Momentum = confluence.Momentum{RSI: rsi, MACDHistogram: macd.Histogram}

	report.Structure, err = a.classifier.Analyze(candles)
	if err != nil {
		return nil, fmt.Errorf("structure: %w", err)
	}

	report.Zones, err = a.detector.FindZones(candles, atr)
	if err != nil {
		return nil, fmt.Errorf("zones: %w", err)
	}

	report.Alignment, err = a.aggregator.Align(candles, a.config.BaseTimeframe)
	if err != nil {
		return nil, fmt.Errorf("mtf alignment: %w", err)
	}

	report.Confluence = a.confluence.Score(report.Structure, report.Zones, report.Alignment.Score, report.Momentum)

	report.Quantum, err = a.quantum.Score(candles)
	if err != nil {
		return nil, fmt.Errorf("quantum score: %w", err)
	}

	report.Signal, err = a.builder.Build(candles, report.Zones, report.Confluence, atr)
	if err != nil {
		return nil, fmt.Errorf("signal: %w", err)
	}

	log.Debug().
		Time("candle", last.Timestamp).
		Str("structure", report.Structure.Structure.String()).
		Float64("confluence", report.Confluence.Total).
		Float64("quantum", report.Quantum.Total).
		Str("signal", report.Signal.Direction.String()).
		Msg("analysis pass complete")

	return report, nil
}

// Signal runs a full analysis and returns only the resulting signal. Its
// shape matches the backtest engine's signal function.
func (a *Analyzer) Signal(window []types.Candle) (*signal.Signal, error) {
	report, err := a.Analyze(window)
	if err != nil {
		return nil, err
	}
	return report.Signal, nil
}

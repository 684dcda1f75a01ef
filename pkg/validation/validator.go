package validation

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/aurumquant/xau-signal-engine/internal/backtest"
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// Config controls walk-forward validation
type Config struct {
	Rolling    bool    `json:"rolling"`
	SplitRatio float64 `json:"split_ratio"` // holdout mode train fraction
	TrainDays  int     `json:"train_days"`
	TestDays   int     `json:"test_days"`
	RollDays   int     `json:"roll_days"`
}

// DefaultConfig returns the default walk-forward parameters
func DefaultConfig() Config {
	return Config{
		Rolling:    false,
		SplitRatio: 0.7,
		TrainDays:  90,
		TestDays:   30,
		RollDays:   30,
	}
}

// Runner executes a backtest over a candle window
type Runner func(candles []types.Candle) (*backtest.Results, error)

// FoldResult pairs in-sample and out-of-sample results for one fold
type FoldResult struct {
	Fold  int
	Train *backtest.Results
	Test  *backtest.Results
}

// Summary aggregates walk-forward results
type Summary struct {
	Folds                []FoldResult
	AverageTrainReturn   float64 // percent
	AverageTestReturn    float64 // percent
	AverageTrainDrawdown float64 // percent
	AverageTestDrawdown  float64 // percent
	TestReturnStdDev     float64 // percent
	ReturnDegradation    float64 // percent
	OverfittingRisk      string  // LOW, MODERATE or HIGH
	IsRobust             bool
}

// Validator runs walk-forward validation with a backtest runner. The signal
// rules carry no fitted parameters, so the train windows serve as the
// in-sample baseline that the out-of-sample test windows are compared
// against.
type Validator struct {
	config Config
	runner Runner
}

// NewValidator creates a walk-forward validator
func NewValidator(config Config, runner Runner) *Validator {
	return &Validator{config: config, runner: runner}
}

// Validate runs the configured validation mode over the series
func (v *Validator) Validate(candles []types.Candle) (*Summary, error) {
	if v.runner == nil {
		return nil, errors.New("a backtest runner is required")
	}
	if v.config.Rolling {
		return v.validateRolling(candles)
	}
	return v.validateHoldout(candles)
}

func (v *Validator) validateHoldout(candles []types.Candle) (*Summary, error) {
	train, test := SplitByRatio(candles, v.config.SplitRatio)
	if len(test) < 50 {
		return nil, errors.New("not enough test data for holdout validation")
	}

	log.Info().
		Int("train_candles", len(train)).
		Int("test_candles", len(test)).
		Msg("holdout validation")

	result, err := v.runFold(1, train, test)
	if err != nil {
		return nil, err
	}
	return summarize([]FoldResult{result}), nil
}

func (v *Validator) validateRolling(candles []types.Candle) (*Summary, error) {
	folds := CreateRollingFolds(candles, v.config.TrainDays, v.config.TestDays, v.config.RollDays)
	if len(folds) == 0 {
		return nil, errors.New("not enough data for rolling walk-forward validation")
	}

	log.Info().
		Int("folds", len(folds)).
		Int("train_days", v.config.TrainDays).
		Int("test_days", v.config.TestDays).
		Msg("rolling walk-forward validation")

	results := make([]FoldResult, 0, len(folds))
	for i, fold := range folds {
		result, err := v.runFold(i+1, fold.Train, fold.Test)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", i+1, err)
		}
		results = append(results, result)

		log.Info().
			Int("fold", i+1).
			Float64("train_return_pct", result.Train.TotalReturn*100).
			Float64("test_return_pct", result.Test.TotalReturn*100).
			Msg("fold complete")
	}

	return summarize(results), nil
}

func (v *Validator) runFold(fold int, train, test []types.Candle) (FoldResult, error) {
	trainResults, err := v.runner(train)
	if err != nil {
		return FoldResult{}, fmt.Errorf("train window: %w", err)
	}
	testResults, err := v.runner(test)
	if err != nil {
		return FoldResult{}, fmt.Errorf("test window: %w", err)
	}
	return FoldResult{Fold: fold, Train: trainResults, Test: testResults}, nil
}

func summarize(results []FoldResult) *Summary {
	var trainReturns, testReturns, trainDDs, testDDs []float64
	for _, r := range results {
		trainReturns = append(trainReturns, r.Train.TotalReturn*100)
		testReturns = append(testReturns, r.Test.TotalReturn*100)
		trainDDs = append(trainDDs, r.Train.MaxDrawdown*100)
		testDDs = append(testDDs, r.Test.MaxDrawdown*100)
	}

	summary := &Summary{
		Folds:                results,
		AverageTrainReturn:   average(trainReturns),
		AverageTestReturn:    average(testReturns),
		AverageTrainDrawdown: average(trainDDs),
		AverageTestDrawdown:  average(testDDs),
		TestReturnStdDev:     stdDev(testReturns),
	}

	summary.ReturnDegradation = (summary.AverageTrainReturn - summary.AverageTestReturn) /
		math.Max(0.01, math.Abs(summary.AverageTrainReturn)) * 100

	switch {
	case summary.ReturnDegradation > 30:
		summary.OverfittingRisk = "HIGH"
	case summary.ReturnDegradation > 15:
		summary.OverfittingRisk = "MODERATE"
	default:
		summary.OverfittingRisk = "LOW"
	}
	summary.IsRobust = summary.ReturnDegradation <= 30

	return summary
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	avg := average(values)
	sumSquares := 0.0
	for _, v := range values {
		diff := v - avg
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}

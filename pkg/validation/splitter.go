package validation

import (
	"time"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// Fold is one walk-forward window pair
type Fold struct {
	Train      []types.Candle
	Test       []types.Candle
	TrainStart time.Time
	TrainEnd   time.Time
	TestStart  time.Time
	TestEnd    time.Time
}

// SplitByRatio splits candles chronologically into train and test parts
func SplitByRatio(candles []types.Candle, ratio float64) ([]types.Candle, []types.Candle) {
	if ratio <= 0 || ratio >= 1 {
		return candles, nil
	}

	n := int(float64(len(candles)) * ratio)
	if n < 1 || n >= len(candles) {
		return candles, nil
	}
	return candles[:n], candles[n:]
}

// CreateRollingFolds slices the series into rolling train/test windows. A
// fold needs at least 50 train candles and 10 test candles; the window rolls
// forward by rollDays between folds.
func CreateRollingFolds(candles []types.Candle, trainDays, testDays, rollDays int) []Fold {
	var folds []Fold
	if len(candles) < 100 {
		return folds
	}

	trainDur := time.Duration(trainDays) * 24 * time.Hour
	testDur := time.Duration(testDays) * 24 * time.Hour
	rollDur := time.Duration(rollDays) * 24 * time.Hour

	start := 0
	for {
		trainEndTs := candles[start].Timestamp.Add(trainDur)
		trainEnd := start
		for trainEnd < len(candles) && candles[trainEnd].Timestamp.Before(trainEndTs) {
			trainEnd++
		}

		testEndTs := trainEndTs.Add(testDur)
		testEnd := trainEnd
		for testEnd < len(candles) && candles[testEnd].Timestamp.Before(testEndTs) {
			testEnd++
		}

		if trainEnd-start < 50 || testEnd-trainEnd < 10 {
			break
		}

		folds = append(folds, Fold{
			Train:      candles[start:trainEnd],
			Test:       candles[trainEnd:testEnd],
			TrainStart: candles[start].Timestamp,
			TrainEnd:   candles[trainEnd-1].Timestamp,
			TestStart:  candles[trainEnd].Timestamp,
			TestEnd:    candles[testEnd-1].Timestamp,
		})

		nextStartTs := candles[start].Timestamp.Add(rollDur)
		nextStart := start
		for nextStart < len(candles) && candles[nextStart].Timestamp.Before(nextStartTs) {
			nextStart++
		}
		if nextStart <= start {
			nextStart = start + 1
		}
		if nextStart >= len(candles) {
			break
		}
		start = nextStart
	}

	return folds
}

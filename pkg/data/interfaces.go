package data

import (
	"fmt"
	"time"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// Provider loads candle series from a source (file path, seed spec, symbol)
type Provider interface {
	// LoadData loads candles from the specified source
	LoadData(source string) ([]types.Candle, error)

	// GetName returns the name of the data provider
	GetName() string
}

// CSVColumnMapping defines the column positions for different CSV formats
type CSVColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int
	MinColumns   int
	DateFormat   string
}

// DefaultCSVFormat matches timestamp,open,high,low,close,volume rows
var DefaultCSVFormat = CSVColumnMapping{
	TimestampCol: 0,
	OpenCol:      1,
	HighCol:      2,
	LowCol:       3,
	CloseCol:     4,
	VolumeCol:    5,
	MinColumns:   6,
	DateFormat:   "2006-01-02 15:04:05",
}

// FilterByDateRange returns the candles whose timestamps fall inside [start, end]
func FilterByDateRange(candles []types.Candle, start, end time.Time) []types.Candle {
	if len(candles) == 0 {
		return candles
	}

	var filtered []types.Candle
	for _, c := range candles {
		if (c.Timestamp.After(start) || c.Timestamp.Equal(start)) &&
			(c.Timestamp.Before(end) || c.Timestamp.Equal(end)) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// LastN returns at most the last n candles
func LastN(candles []types.Candle, n int) []types.Candle {
	if n <= 0 || len(candles) <= n {
		return candles
	}
	return candles[len(candles)-n:]
}

// ValidateTimeSequence ensures candles are in strictly increasing chronological order
func ValidateTimeSequence(candles []types.Candle) error {
	for i := 1; i < len(candles); i++ {
		if !candles[i].Timestamp.After(candles[i-1].Timestamp) {
			return &OutOfOrderError{Index: i, Timestamp: candles[i].Timestamp}
		}
	}
	return nil
}

// OutOfOrderError reports a candle that breaks chronological ordering
type OutOfOrderError struct {
	Index     int
	Timestamp time.Time
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("candle out of chronological order at index %d (%s)",
		e.Index, e.Timestamp.Format(time.RFC3339))
}

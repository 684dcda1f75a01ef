package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// CSVProvider loads candle data from CSV files
type CSVProvider struct {
	format CSVColumnMapping
}

// NewCSVProvider creates a CSV provider with the default column format
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{format: DefaultCSVFormat}
}

// NewCSVProviderWithFormat creates a CSV provider with a custom column format
func NewCSVProviderWithFormat(format CSVColumnMapping) *CSVProvider {
	return &CSVProvider{format: format}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadData loads candles from a CSV file. Malformed rows are skipped with a
// warning; an empty result is an error.
func (p *CSVProvider) LoadData(source string) ([]types.Candle, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var candles []types.Candle

	lineNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}
		lineNum++

		if len(record) < p.format.MinColumns {
			log.Warn().Int("line", lineNum).Int("columns", len(record)).
				Msg("insufficient columns, skipping row")
			continue
		}

		candle, err := p.parseRecord(record)
		if err != nil {
			log.Warn().Int("line", lineNum).Err(err).Msg("invalid row, skipping")
			continue
		}

		candles = append(candles, candle)
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("no valid candles in %s", source)
	}

	return candles, nil
}

func (p *CSVProvider) parseRecord(record []string) (types.Candle, error) {
	timestamp, err := p.parseTimestamp(record[p.format.TimestampCol])
	if err != nil {
		return types.Candle{}, fmt.Errorf("invalid timestamp %q: %w", record[p.format.TimestampCol], err)
	}

	open, err := strconv.ParseFloat(record[p.format.OpenCol], 64)
	if err != nil {
		return types.Candle{}, fmt.Errorf("invalid open price: %w", err)
	}
	high, err := strconv.ParseFloat(record[p.format.HighCol], 64)
	if err != nil {
		return types.Candle{}, fmt.Errorf("invalid high price: %w", err)
	}
	low, err := strconv.ParseFloat(record[p.format.LowCol], 64)
	if err != nil {
		return types.Candle{}, fmt.Errorf("invalid low price: %w", err)
	}
	close, err := strconv.ParseFloat(record[p.format.CloseCol], 64)
	if err != nil {
		return types.Candle{}, fmt.Errorf("invalid close price: %w", err)
	}
	volume, err := strconv.ParseFloat(record[p.format.VolumeCol], 64)
	if err != nil {
		return types.Candle{}, fmt.Errorf("invalid volume: %w", err)
	}

	if open <= 0 || high <= 0 || low <= 0 || close <= 0 {
		return types.Candle{}, errors.New("non-positive price data")
	}
	if high < open || high < close || high < low {
		return types.Candle{}, errors.New("high below other prices")
	}
	if low > open || low > close {
		return types.Candle{}, errors.New("low above other prices")
	}

	return types.Candle{
		Timestamp: timestamp,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}, nil
}

// parseTimestamp accepts either the configured date format or a unix
// millisecond value, which is what the fetch-data CLI writes
func (p *CSVProvider) parseTimestamp(field string) (time.Time, error) {
	if ts, err := time.Parse(p.format.DateFormat, field); err == nil {
		return ts, nil
	}
	ms, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

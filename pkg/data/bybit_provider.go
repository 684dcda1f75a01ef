package data

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aurumquant/xau-signal-engine/internal/exchange/bybit"
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// BybitProvider loads candles from the exchange REST API. The LoadData
// source argument is the symbol, e.g. "XAUTUSDT".
type BybitProvider struct {
	client    *bybit.Client
	timeframe types.Timeframe
	start     time.Time
	end       time.Time
}

// NewBybitProvider creates an exchange-backed provider covering [start, end)
func NewBybitProvider(client *bybit.Client, tf types.Timeframe, start, end time.Time) *BybitProvider {
	return &BybitProvider{
		client:    client,
		timeframe: tf,
		start:     start,
		end:       end,
	}
}

// LoadData fetches the full candle history for the symbol
func (p *BybitProvider) LoadData(symbol string) ([]types.Candle, error) {
	if p.client == nil {
		return nil, errors.New("bybit client is required")
	}
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	candles, err := p.client.GetHistory(ctx, symbol, p.timeframe, p.start, p.end)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, errors.New("no candles returned for symbol " + symbol)
	}
	if err := ValidateTimeSequence(candles); err != nil {
		return nil, err
	}

	log.Info().
		Str("symbol", symbol).
		Str("timeframe", string(p.timeframe)).
		Int("candles", len(candles)).
		Msg("loaded exchange history")

	return candles, nil
}

// GetName returns the provider name
func (p *BybitProvider) GetName() string {
	return "Bybit Provider"
}

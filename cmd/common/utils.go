package common

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/aurumquant/xau-signal-engine/internal/exchange/bybit"
	"github.com/aurumquant/xau-signal-engine/internal/monitoring"
	"github.com/aurumquant/xau-signal-engine/pkg/config"
	"github.com/aurumquant/xau-signal-engine/pkg/data"
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// LoadEnvironment loads the .env file when present. A missing file is fine;
// credentials can come straight from the process environment.
func LoadEnvironment(envFile string) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Debug().Str("file", envFile).Err(err).Msg("no environment file loaded")
	}
}

// NewProvider builds the candle provider selected by the configuration
func NewProvider(cfg *config.Config, history time.Duration) (data.Provider, string, error) {
	switch cfg.Data.Source {
	case config.SourceCSV:
		return data.NewCSVProvider(), cfg.Data.Path, nil

	case config.SourceSynthetic:
		return data.NewSyntheticProvider(cfg.Data.Synthetic), "", nil

	case config.SourceBybit:
		client := bybit.NewClient(bybit.Config{
			APIKey:    cfg.Exchange.APIKey,
			APISecret: cfg.Exchange.APISecret,
			Testnet:   cfg.Exchange.Testnet,
			Category:  cfg.Exchange.Category,
		})
		end := time.Now().UTC()
		start := end.Add(-history)
		return data.NewBybitProvider(client, cfg.Timeframe, start, end), cfg.Symbol, nil

	default:
		return nil, "", fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}

// LoadCandles resolves the configured provider and loads the candle series.
// history bounds how far back exchange sources reach; file and synthetic
// sources ignore it.
func LoadCandles(cfg *config.Config, history time.Duration) ([]types.Candle, error) {
	provider, source, err := NewProvider(cfg, history)
	if err != nil {
		return nil, err
	}

	candles, err := provider.LoadData(source)
	if err != nil {
		return nil, fmt.Errorf("failed to load candles from %s: %w", provider.GetName(), err)
	}

	if err := data.ValidateTimeSequence(candles); err != nil {
		return nil, err
	}

	monitoring.RecordCandlesLoaded(provider.GetName(), len(candles))
	log.Info().
		Str("provider", provider.GetName()).
		Str("symbol", cfg.Symbol).
		Int("candles", len(candles)).
		Msg("candle data loaded")

	return candles, nil
}

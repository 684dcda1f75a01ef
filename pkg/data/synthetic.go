package data

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// SyntheticConfig controls the synthetic candle generator
type SyntheticConfig struct {
	SeedPrice  float64         `json:"seed_price"`
	Count      int             `json:"count"`
	Timeframe  types.Timeframe `json:"timeframe"`
	Seed       int64           `json:"seed"`
	Volatility float64         `json:"volatility"` // per-candle move as a fraction of price
	StartTime  time.Time       `json:"start_time"`
}

// DefaultSyntheticConfig returns generator defaults for an XAUUSD-like series
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		SeedPrice:  2000.0,
		Count:      500,
		Timeframe:  types.TimeframeM15,
		Seed:       42,
		Volatility: 0.0012,
		StartTime:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// SyntheticProvider generates a deterministic OHLC series from a seed price.
// The walk alternates between drift segments (up, ranging, down) so trending
// and ranging fixtures are both reproducible under a fixed seed.
type SyntheticProvider struct {
	config SyntheticConfig
}

// NewSyntheticProvider creates a synthetic data provider
func NewSyntheticProvider(config SyntheticConfig) *SyntheticProvider {
	if config.SeedPrice <= 0 {
		config.SeedPrice = 2000.0
	}
	if config.Count <= 0 {
		config.Count = 500
	}
	if config.Volatility <= 0 {
		config.Volatility = 0.0012
	}
	if config.Timeframe.Duration() == 0 {
		config.Timeframe = types.TimeframeM15
	}
	if config.StartTime.IsZero() {
		config.StartTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &SyntheticProvider{config: config}
}

// GetName returns the name of the data provider
func (p *SyntheticProvider) GetName() string {
	return "Synthetic Provider"
}

// LoadData generates candles. The source, when non-empty, overrides the seed
// price (e.g. "2350.5").
func (p *SyntheticProvider) LoadData(source string) ([]types.Candle, error) {
	config := p.config
	if source != "" {
		seedPrice, err := strconv.ParseFloat(source, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed price %q: %w", source, err)
		}
		config.SeedPrice = seedPrice
	}
	return Generate(config), nil
}

// Generate produces the candle series for the given config. Identical configs
// always produce identical series.
func Generate(config SyntheticConfig) []types.Candle {
	rng := rand.New(rand.NewSource(config.Seed))
	interval := config.Timeframe.Duration()

	candles := make([]types.Candle, config.Count)
	price := config.SeedPrice

	// Drift regime for the current segment: +1 trending up, 0 ranging, -1 down
	drift := 0
	segmentLeft := 0

	for i := 0; i < config.Count; i++ {
		if segmentLeft == 0 {
			drift = rng.Intn(3) - 1
			segmentLeft = 30 + rng.Intn(50)
		}
		segmentLeft--

		open := price
		move := rng.NormFloat64() * config.Volatility * price
		move += float64(drift) * 0.35 * config.Volatility * price
		close := open + move
		if close <= 0 {
			close = open * 0.99
		}

		high := maxFloat(open, close) + rng.Float64()*0.5*config.Volatility*price
		low := minFloat(open, close) - rng.Float64()*0.5*config.Volatility*price
		volume := 800 + rng.Float64()*600

		candles[i] = types.Candle{
			Timestamp: config.StartTime.Add(time.Duration(i) * interval),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
		}

		price = close
	}

	return candles
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

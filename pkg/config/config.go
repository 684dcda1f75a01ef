package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aurumquant/xau-signal-engine/internal/backtest"
	"github.com/aurumquant/xau-signal-engine/internal/logging"
	"github.com/aurumquant/xau-signal-engine/internal/pipeline"
	"github.com/aurumquant/xau-signal-engine/pkg/data"
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// Data source kinds
const (
	SourceCSV       = "csv"
	SourceSynthetic = "synthetic"
	SourceBybit     = "bybit"
)

// DataConfig selects and parameterizes the candle source
type DataConfig struct {
	Source    string               `json:"source"` // csv, synthetic or bybit
	Path      string               `json:"path"`   // CSV file path or exchange symbol
	Synthetic data.SyntheticConfig `json:"synthetic"`
}

// ExchangeConfig holds exchange API settings. Credentials come from the
// environment, never from the config file.
type ExchangeConfig struct {
	APIKey    string `json:"-"`
	APISecret string `json:"-"`
	Testnet   bool   `json:"testnet"`
	Category  string `json:"category"`
}

// MonitoringConfig holds the metrics and health endpoints
type MonitoringConfig struct {
	Enabled        bool `json:"enabled"`
	PrometheusPort int  `json:"prometheus_port"`
	HealthPort     int  `json:"health_port"`
}

// Config is the full engine configuration
type Config struct {
	Symbol       string           `json:"symbol"`
	Timeframe    types.Timeframe  `json:"timeframe"`
	Data         DataConfig       `json:"data"`
	Analysis     pipeline.Config  `json:"analysis"`
	Backtest     backtest.Config  `json:"backtest"`
	Logging      logging.Config   `json:"logging"`
	Exchange     ExchangeConfig   `json:"exchange"`
	Monitoring   MonitoringConfig `json:"monitoring"`
	LicenseStore string           `json:"license_store"`
}

// Default returns the engine defaults for a gold analysis setup
func Default() *Config {
	return &Config{
		Symbol:    "XAUUSD",
		Timeframe: types.TimeframeM15,
		Data: DataConfig{
			Source:    SourceSynthetic,
			Synthetic: data.DefaultSyntheticConfig(),
		},
		Analysis: pipeline.DefaultConfig(),
		Backtest: backtest.DefaultConfig(),
		Logging:  logging.DefaultConfig(),
		Exchange: ExchangeConfig{
			Category: "linear",
		},
		Monitoring: MonitoringConfig{
			PrometheusPort: 8080,
			HealthPort:     8081,
		},
		LicenseStore: "licenses.json",
	}
}

// Load builds the configuration: defaults, then the JSON file when given,
// then environment overrides
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("could not parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the config
func (c *Config) applyEnv() {
	c.Exchange.APIKey = getEnv("BYBIT_API_KEY", c.Exchange.APIKey)
	c.Exchange.APISecret = getEnv("BYBIT_API_SECRET", c.Exchange.APISecret)
	c.Exchange.Testnet = getEnvBool("BYBIT_TESTNET", c.Exchange.Testnet)

	c.Symbol = getEnv("SIGNAL_SYMBOL", c.Symbol)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.LicenseStore = getEnv("LICENSE_STORE", c.LicenseStore)
}

// Validate checks the configuration for inconsistencies
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if c.Timeframe.Duration() == 0 {
		return fmt.Errorf("unknown timeframe %q", c.Timeframe)
	}

	switch c.Data.Source {
	case SourceCSV:
		if c.Data.Path == "" {
			return fmt.Errorf("csv data source requires a path")
		}
	case SourceSynthetic, SourceBybit:
	default:
		return fmt.Errorf("unknown data source %q", c.Data.Source)
	}

	if c.Backtest.InitialBalance <= 0 {
		return fmt.Errorf("initial balance must be positive")
	}
	if c.Backtest.Commission < 0 {
		return fmt.Errorf("commission cannot be negative")
	}
	if c.Monitoring.Enabled && c.Monitoring.PrometheusPort == c.Monitoring.HealthPort {
		return fmt.Errorf("prometheus and health ports must differ")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.ParseBool(strings.ToLower(val))
	if err != nil {
		return defaultVal
	}
	return parsed
}

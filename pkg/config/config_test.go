package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "XAUUSD", cfg.Symbol)
	assert.Equal(t, types.TimeframeM15, cfg.Timeframe)
	assert.Equal(t, SourceSynthetic, cfg.Data.Source)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"symbol": "XAUTUSDT",
		"timeframe": "H1",
		"data": {"source": "csv", "path": "gold.csv"},
		"backtest": {"initial_balance": 5000, "commission": 0.001, "window_size": 200, "risk_percent": 2.0}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "XAUTUSDT", cfg.Symbol)
	assert.Equal(t, types.TimeframeH1, cfg.Timeframe)
	assert.Equal(t, SourceCSV, cfg.Data.Source)
	assert.Equal(t, "gold.csv", cfg.Data.Path)
	assert.Equal(t, 5000.0, cfg.Backtest.InitialBalance)
	assert.Equal(t, 2.0, cfg.Backtest.RiskPercent)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("SIGNAL_SYMBOL", "XAUEUR")
	t.Setenv("BYBIT_API_KEY", "key-from-env")
	t.Setenv("BYBIT_TESTNET", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "XAUEUR", cfg.Symbol)
	assert.Equal(t, "key-from-env", cfg.Exchange.APIKey)
	assert.True(t, cfg.Exchange.Testnet)
}

func TestValidate_Failures(t *testing.T) {
	cfg := Default()
	cfg.Symbol = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Timeframe = types.Timeframe("7m")
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Data.Source = "grpc"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Data.Source = SourceCSV
	cfg.Data.Path = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Backtest.InitialBalance = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Monitoring.Enabled = true
	cfg.Monitoring.HealthPort = cfg.Monitoring.PrometheusPort
	assert.Error(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("does-not-exist.json")
	assert.Error(t, err)
}

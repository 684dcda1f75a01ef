package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aurumquant/xau-signal-engine/cmd/common"
	"github.com/aurumquant/xau-signal-engine/internal/logging"
	"github.com/aurumquant/xau-signal-engine/internal/monitoring"
	"github.com/aurumquant/xau-signal-engine/internal/pipeline"
	"github.com/aurumquant/xau-signal-engine/pkg/config"
	"github.com/aurumquant/xau-signal-engine/pkg/data"
	"github.com/aurumquant/xau-signal-engine/pkg/reporting"
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

const (
	AppName = "Signal Analyzer"

	// DefaultHistory bounds how far back exchange sources fetch
	DefaultHistory = 30 * 24 * time.Hour
)

type analyzeFlags struct {
	*common.CommonFlags

	Source    *string
	DataFile  *string
	Symbol    *string
	Timeframe *string
	Candles   *int
	JSONOut   *string
	Watch     *bool
}

func newAnalyzeFlags() *analyzeFlags {
	return &analyzeFlags{
		CommonFlags: common.RegisterCommonFlags(),

		Source:    flag.String("source", "", "Data source: csv, synthetic or bybit (overrides config)"),
		DataFile:  flag.String("data", "", "CSV data file (implies -source csv)"),
		Symbol:    flag.String("symbol", "", "Symbol to analyze (overrides config)"),
		Timeframe: flag.String("timeframe", "", "Base timeframe: M15, M30, H1, H4 (overrides config)"),
		Candles:   flag.Int("candles", 0, "Analyze only the last N candles (0 = all)"),
		JSONOut:   flag.String("json", "", "Write the report as JSON to this path"),
		Watch:     flag.Bool("watch", false, "Re-analyze continuously on each closed candle"),
	}
}

func main() {
	flags := newAnalyzeFlags()
	flag.Parse()

	usage := common.NewUsageFormatter(AppName, "Market structure and confluence analysis for gold").
		AddExample("analyze -data data/XAUUSD_m15.csv", "Analyze a CSV candle file").
		AddExample("analyze -source bybit -symbol XAUTUSDT -timeframe H1", "Analyze live exchange data").
		AddExample("analyze -source bybit -watch", "Run continuously with metrics endpoints")
	if common.CheckHelpAndVersion(AppName, flags.CommonFlags, usage) {
		return
	}

	common.LoadEnvironment(*flags.EnvFile)

	cfg, err := loadConfiguration(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if *flags.Verbose {
		cfg.Logging.Level = "debug"
	}
	cfg.Logging.Tag = "analyze"
	closeLogs, err := logging.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup failed: %v\n", err)
		os.Exit(1)
	}
	defer closeLogs()

	analyzer := pipeline.NewAnalyzer(cfg.Analysis)

	if *flags.Watch {
		if err := runWatch(cfg, analyzer); err != nil {
			log.Fatal().Err(err).Msg("watch loop failed")
		}
		return
	}

	if err := runOnce(cfg, analyzer, *flags.Candles, *flags.JSONOut); err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}
}

func loadConfiguration(flags *analyzeFlags) (*config.Config, error) {
	cfg, err := config.Load(*flags.ConfigFile)
	if err != nil {
		return nil, err
	}

	if *flags.DataFile != "" {
		cfg.Data.Source = config.SourceCSV
		cfg.Data.Path = *flags.DataFile
	}
	if *flags.Source != "" {
		cfg.Data.Source = *flags.Source
	}
	if *flags.Symbol != "" {
		cfg.Symbol = *flags.Symbol
	}
	if *flags.Timeframe != "" {
		tf, err := types.ParseTimeframe(*flags.Timeframe)
		if err != nil {
			return nil, err
		}
		cfg.Timeframe = tf
		cfg.Analysis.BaseTimeframe = tf
	}

	return cfg, cfg.Validate()
}

// runOnce performs a single analysis pass over the loaded series
func runOnce(cfg *config.Config, analyzer *pipeline.Analyzer, lastN int, jsonOut string) error {
	candles, err := common.LoadCandles(cfg, DefaultHistory)
	if err != nil {
		return err
	}
	if lastN > 0 {
		candles = data.LastN(candles, lastN)
	}

	report, err := analyzer.Analyze(candles)
	if err != nil {
		return err
	}

	recordReport(cfg.Symbol, report)
	reporting.OutputReport(report, cfg.Symbol)

	if jsonOut != "" {
		if err := reporting.WriteReportJSON(report, jsonOut); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		log.Info().Str("path", jsonOut).Msg("report written")
	}
	return nil
}

// runWatch re-analyzes on every closed candle and serves the metrics and
// health endpoints until interrupted.
func runWatch(cfg *config.Config, analyzer *pipeline.Analyzer) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	health := monitoring.NewHealthChecker()
	if cfg.Monitoring.Enabled {
		startMonitoringServers(cfg.Monitoring, health)
	}

	interval := cfg.Timeframe.Duration()
	log.Info().
		Str("symbol", cfg.Symbol).
		Str("timeframe", string(cfg.Timeframe)).
		Dur("interval", interval).
		Msg("watch mode started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := watchPass(cfg, analyzer, health); err != nil {
			log.Error().Err(err).Msg("analysis pass failed")
			health.RecordError(err.Error())
			monitoring.RecordError("analysis")
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("watch mode stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func watchPass(cfg *config.Config, analyzer *pipeline.Analyzer, health *monitoring.HealthChecker) error {
	candles, err := common.LoadCandles(cfg, DefaultHistory)
	if err != nil {
		health.SetDataOK(false)
		return err
	}
	health.SetDataOK(true)

	report, err := analyzer.Analyze(candles)
	if err != nil {
		return err
	}

	health.RecordAnalysis(report.Price)
	recordReport(cfg.Symbol, report)

	if report.Signal.IsActionable() {
		reporting.OutputReport(report, cfg.Symbol)
	} else {
		log.Info().
			Float64("price", report.Price).
			Str("structure", report.Structure.Structure.String()).
			Float64("confluence", report.Confluence.Total).
			Msg("no tradeable setup")
	}
	return nil
}

func recordReport(symbol string, report *pipeline.Report) {
	monitoring.UpdateScores(symbol, report.Confluence.Total, report.Quantum.Total)
	if report.Signal.IsActionable() {
		monitoring.RecordSignal(symbol, report.Signal.Direction.String(), report.Signal.Confidence)
	}
}

func startMonitoringServers(cfg config.MonitoringConfig, health *monitoring.HealthChecker) {
	go func() {
		addr := fmt.Sprintf(":%d", cfg.PrometheusPort)
		mux := http.NewServeMux()
		mux.Handle("/metrics", monitoring.NewMetricsHandler())
		log.Info().Str("addr", addr).Msg("metrics endpoint listening")
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HealthPort)
		mux := http.NewServeMux()
		mux.Handle("/health", health)
		log.Info().Str("addr", addr).Msg("health endpoint listening")
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error().Err(err).Msg("health server stopped")
		}
	}()
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aurumquant/xau-signal-engine/cmd/common"
	"github.com/aurumquant/xau-signal-engine/internal/backtest"
	"github.com/aurumquant/xau-signal-engine/internal/logging"
	"github.com/aurumquant/xau-signal-engine/internal/monitoring"
	"github.com/aurumquant/xau-signal-engine/internal/pipeline"
	"github.com/aurumquant/xau-signal-engine/pkg/config"
	"github.com/aurumquant/xau-signal-engine/pkg/reporting"
	"github.com/aurumquant/xau-signal-engine/pkg/types"
	"github.com/aurumquant/xau-signal-engine/pkg/validation"
)

const (
	AppName = "Signal Backtest"

	// DefaultHistory bounds how far back exchange sources fetch
	DefaultHistory = 365 * 24 * time.Hour
)

type backtestFlags struct {
	*common.CommonFlags

	Source    *string
	DataFile  *string
	Symbol    *string
	Timeframe *string

	Balance    *float64
	Commission *float64
	WindowSize *int
	Risk       *float64

	WFEnable    *bool
	WFRolling   *bool
	WFRatio     *float64
	WFTrainDays *int
	WFTestDays  *int
	WFRollDays  *int

	OutputDir   *string
	CSVTrades   *bool
	ConsoleOnly *bool
}

func newBacktestFlags() *backtestFlags {
	return &backtestFlags{
		CommonFlags: common.RegisterCommonFlags(),

		Source:    flag.String("source", "", "Data source: csv, synthetic or bybit (overrides config)"),
		DataFile:  flag.String("data", "", "CSV data file (implies -source csv)"),
		Symbol:    flag.String("symbol", "", "Symbol to backtest (overrides config)"),
		Timeframe: flag.String("timeframe", "", "Base timeframe: M15, M30, H1, H4 (overrides config)"),

		Balance:    flag.Float64("balance", 0, "Initial balance (overrides config)"),
		Commission: flag.Float64("commission", -1, "Commission rate, e.g. 0.0005 (overrides config)"),
		WindowSize: flag.Int("window", 0, "Analysis window size in candles (overrides config)"),
		Risk:       flag.Float64("risk", 0, "Risk per trade in percent of balance (overrides config)"),

		WFEnable:    flag.Bool("wf", false, "Run walk-forward validation"),
		WFRolling:   flag.Bool("wf-rolling", false, "Use rolling folds instead of a single holdout split"),
		WFRatio:     flag.Float64("wf-ratio", 0.7, "Train/test split ratio for holdout validation"),
		WFTrainDays: flag.Int("wf-train-days", 90, "Training window in days for rolling folds"),
		WFTestDays:  flag.Int("wf-test-days", 30, "Test window in days for rolling folds"),
		WFRollDays:  flag.Int("wf-roll-days", 30, "Roll step in days for rolling folds"),

		OutputDir:   flag.String("output", "", "Output directory (default results/SYMBOL_tf)"),
		CSVTrades:   flag.Bool("csv", false, "Write the trade log as CSV instead of an Excel workbook"),
		ConsoleOnly: flag.Bool("console-only", false, "Console output only, skip result files"),
	}
}

func validateFlags(flags *backtestFlags) error {
	v := common.NewFlagValidator()
	if *flags.Balance != 0 {
		v.ValidateFloat("balance", *flags.Balance, 1, 1e9)
	}
	if *flags.Commission >= 0 {
		v.ValidateFloat("commission", *flags.Commission, 0, 0.1)
	}
	if *flags.WindowSize != 0 {
		v.ValidateInt("window", *flags.WindowSize, 50, 5000)
	}
	if *flags.Risk != 0 {
		v.ValidateFloat("risk", *flags.Risk, 0.01, 10)
	}
	if *flags.WFEnable {
		v.ValidateFloat("wf-ratio", *flags.WFRatio, 0.1, 0.9)
		v.ValidateInt("wf-train-days", *flags.WFTrainDays, 1, 3650)
		v.ValidateInt("wf-test-days", *flags.WFTestDays, 1, 3650)
		v.ValidateInt("wf-roll-days", *flags.WFRollDays, 1, 3650)
	}
	if *flags.Source != "" {
		v.ValidateChoice("source", *flags.Source, []string{config.SourceCSV, config.SourceSynthetic, config.SourceBybit})
	}
	v.ValidateFile("data", *flags.DataFile, false)
	return v.GetError()
}

func main() {
	flags := newBacktestFlags()
	flag.Parse()

	usage := common.NewUsageFormatter(AppName, "Backtest the confluence signal engine over historical candles").
		AddExample("backtest -data data/XAUUSD_m15.csv", "Backtest a CSV candle file").
		AddExample("backtest -source synthetic -balance 25000", "Backtest a synthetic series").
		AddExample("backtest -data data/XAUUSD_h1.csv -wf -wf-rolling", "Rolling walk-forward validation")
	if common.CheckHelpAndVersion(AppName, flags.CommonFlags, usage) {
		return
	}

	if err := validateFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
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
	cfg.Logging.Tag = "backtest"
	closeLogs, err := logging.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup failed: %v\n", err)
		os.Exit(1)
	}
	defer closeLogs()

	candles, err := common.LoadCandles(cfg, DefaultHistory)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load candle data")
	}

	analyzer := pipeline.NewAnalyzer(cfg.Analysis)
	if cfg.Backtest.WindowSize < analyzer.MinCandles() {
		cfg.Backtest.WindowSize = analyzer.MinCandles()
		log.Debug().Int("window", cfg.Backtest.WindowSize).Msg("window raised to analyzer minimum")
	}

	runner := func(series []types.Candle) (*backtest.Results, error) {
		engine := backtest.NewEngine(cfg.Backtest, analyzer.Signal)
		return engine.Run(series)
	}

	results, err := runner(candles)
	if err != nil {
		log.Fatal().Err(err).Msg("backtest failed")
	}
	monitoring.RecordBacktest()
	reporting.OutputConsole(results)

	if *flags.WFEnable {
		if _, err := runWalkForward(flags, runner, candles); err != nil {
			log.Fatal().Err(err).Msg("walk-forward validation failed")
		}
	}

	if !*flags.ConsoleOnly {
		outputDir := *flags.OutputDir
		if outputDir == "" {
			outputDir = reporting.DefaultOutputDir(cfg.Symbol, string(cfg.Timeframe))
		}
		if err := writeResultFiles(results, outputDir, *flags.CSVTrades); err != nil {
			log.Fatal().Err(err).Msg("failed to write result files")
		}
	}
}

func loadConfiguration(flags *backtestFlags) (*config.Config, error) {
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

	if *flags.Balance != 0 {
		cfg.Backtest.InitialBalance = *flags.Balance
	}
	if *flags.Commission >= 0 {
		cfg.Backtest.Commission = *flags.Commission
	}
	if *flags.WindowSize != 0 {
		cfg.Backtest.WindowSize = *flags.WindowSize
	}
	if *flags.Risk != 0 {
		cfg.Backtest.RiskPercent = *flags.Risk
	}

	return cfg, cfg.Validate()
}

func runWalkForward(flags *backtestFlags, runner validation.Runner, candles []types.Candle) (*validation.Summary, error) {
	wfConfig := validation.Config{
		Rolling:    *flags.WFRolling,
		SplitRatio: *flags.WFRatio,
		TrainDays:  *flags.WFTrainDays,
		TestDays:   *flags.WFTestDays,
		RollDays:   *flags.WFRollDays,
	}

	validator := validation.NewValidator(wfConfig, runner)
	summary, err := validator.Validate(candles)
	if err != nil {
		return nil, err
	}

	reporting.NewDefaultConsoleReporter().OutputWalkForwardSummary(summary)
	return summary, nil
}

func writeResultFiles(results *backtest.Results, outputDir string, csvTrades bool) error {
	if csvTrades {
		tradesPath := filepath.Join(outputDir, "trades.csv")
		if err := reporting.WriteTradesCSV(results, tradesPath); err != nil {
			return fmt.Errorf("trade log: %w", err)
		}
	} else {
		tradesPath := filepath.Join(outputDir, "trades.xlsx")
		if err := reporting.WriteTradesXLSX(results, tradesPath); err != nil {
			return fmt.Errorf("trades workbook: %w", err)
		}
	}

	resultsPath := filepath.Join(outputDir, "results.json")
	if err := reporting.WriteResultsJSON(results, resultsPath); err != nil {
		return fmt.Errorf("results json: %w", err)
	}

	log.Info().Str("dir", outputDir).Msg("result files written")
	return nil
}

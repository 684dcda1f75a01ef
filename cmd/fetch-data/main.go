package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aurumquant/xau-signal-engine/cmd/common"
	"github.com/aurumquant/xau-signal-engine/internal/exchange/bybit"
	"github.com/aurumquant/xau-signal-engine/internal/logging"
	"github.com/aurumquant/xau-signal-engine/pkg/config"
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

const AppName = "Data Fetcher"

type fetchFlags struct {
	*common.CommonFlags

	Symbol    *string
	Timeframe *string
	Days      *int
	Start     *string
	End       *string
	Output    *string
}

func newFetchFlags() *fetchFlags {
	return &fetchFlags{
		CommonFlags: common.RegisterCommonFlags(),

		Symbol:    flag.String("symbol", "XAUTUSDT", "Exchange symbol to fetch"),
		Timeframe: flag.String("timeframe", "M15", "Candle timeframe: M15, M30, H1, H4, D1"),
		Days:      flag.Int("days", 90, "Number of trailing days to fetch"),
		Start:     flag.String("start", "", "Range start, YYYY-MM-DD (overrides -days)"),
		End:       flag.String("end", "", "Range end, YYYY-MM-DD (defaults to now)"),
		Output:    flag.String("output", "", "Output CSV path (default data/SYMBOL_tf.csv)"),
	}
}

func main() {
	flags := newFetchFlags()
	flag.Parse()

	usage := common.NewUsageFormatter(AppName, "Download historical candles from Bybit into CSV files").
		AddExample("fetch-data -symbol XAUTUSDT -timeframe H1 -days 365", "One year of hourly gold candles").
		AddExample("fetch-data -start 2024-01-01 -end 2024-06-30", "A fixed date range")
	if common.CheckHelpAndVersion(AppName, flags.CommonFlags, usage) {
		return
	}

	common.LoadEnvironment(*flags.EnvFile)

	cfg, err := config.Load(*flags.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if *flags.Verbose {
		cfg.Logging.Level = "debug"
	}
	cfg.Logging.Tag = "fetch-data"
	closeLogs, err := logging.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup failed: %v\n", err)
		os.Exit(1)
	}
	defer closeLogs()

	tf, err := types.ParseTimeframe(*flags.Timeframe)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timeframe")
	}

	start, end, err := resolveRange(*flags.Start, *flags.End, *flags.Days)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid date range")
	}

	client := bybit.NewClient(bybit.Config{
		APIKey:    cfg.Exchange.APIKey,
		APISecret: cfg.Exchange.APISecret,
		Testnet:   cfg.Exchange.Testnet,
		Category:  cfg.Exchange.Category,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log.Info().
		Str("symbol", *flags.Symbol).
		Str("timeframe", string(tf)).
		Time("start", start).
		Time("end", end).
		Msg("fetching candle history")

	candles, err := client.GetHistory(ctx, *flags.Symbol, tf, start, end)
	if err != nil {
		log.Fatal().Err(err).Msg("fetch failed")
	}
	if len(candles) == 0 {
		log.Fatal().Msg("no candles returned for the requested range")
	}

	output := *flags.Output
	if output == "" {
		output = filepath.Join("data", fmt.Sprintf("%s_%s.csv",
			strings.ToUpper(*flags.Symbol), strings.ToLower(string(tf))))
	}

	if err := writeCSV(candles, output); err != nil {
		log.Fatal().Err(err).Msg("failed to write CSV")
	}

	log.Info().
		Int("candles", len(candles)).
		Str("path", output).
		Time("first", candles[0].Timestamp).
		Time("last", candles[len(candles)-1].Timestamp).
		Msg("candle history written")
}

func resolveRange(startStr, endStr string, days int) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	if endStr != "" {
		parsed, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", endStr, err)
		}
		end = parsed.Add(24*time.Hour - time.Second)
	}

	var start time.Time
	if startStr != "" {
		parsed, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", startStr, err)
		}
		start = parsed
	} else {
		if days <= 0 {
			return time.Time{}, time.Time{}, fmt.Errorf("days must be positive, got %d", days)
		}
		start = end.AddDate(0, 0, -days)
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start %s is not before end %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return start, end, nil
}

// writeCSV writes candles in the column order the CSV provider reads back
func writeCSV(candles []types.Candle, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}

	for _, c := range candles {
		record := []string{
			c.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.4f", c.Open),
			fmt.Sprintf("%.4f", c.High),
			fmt.Sprintf("%.4f", c.Low),
			fmt.Sprintf("%.4f", c.Close),
			fmt.Sprintf("%.4f", c.Volume),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}

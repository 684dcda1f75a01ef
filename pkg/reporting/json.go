package reporting

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/aurumquant/xau-signal-engine/internal/backtest"
	"github.com/aurumquant/xau-signal-engine/internal/pipeline"
	"github.com/aurumquant/xau-signal-engine/internal/signal"
)

// resultsDocument is the serialized shape of backtest results. The equity
// curve is omitted to keep the file small.
type resultsDocument struct {
	GeneratedAt      time.Time        `json:"generated_at"`
	StartBalance     float64          `json:"start_balance"`
	EndBalance       float64          `json:"end_balance"`
	TotalReturn      float64          `json:"total_return"`
	AnnualizedReturn float64          `json:"annualized_return"`
	MaxDrawdown      float64          `json:"max_drawdown"`
	SharpeRatio      float64          `json:"sharpe_ratio"`
	ProfitFactor     float64          `json:"profit_factor"`
	WinRate          float64          `json:"win_rate"`
	TotalTrades      int              `json:"total_trades"`
	WinningTrades    int              `json:"winning_trades"`
	LosingTrades     int              `json:"losing_trades"`
	Trades           []backtest.Trade `json:"trades"`
}

// WriteResultsJSON writes backtest results to a JSON file
func WriteResultsJSON(results *backtest.Results, path string) error {
	// An infinite profit factor (no losing trades) is not representable in JSON
	profitFactor := results.ProfitFactor
	if math.IsInf(profitFactor, 1) {
		profitFactor = 9999
	}

	doc := resultsDocument{
		GeneratedAt:      time.Now().UTC(),
		StartBalance:     results.StartBalance,
		EndBalance:       results.EndBalance,
		TotalReturn:      results.TotalReturn,
		AnnualizedReturn: results.AnnualizedReturn,
		MaxDrawdown:      results.MaxDrawdown,
		SharpeRatio:      results.SharpeRatio,
		ProfitFactor:     profitFactor,
		WinRate:          results.WinRate,
		TotalTrades:      results.TotalTrades,
		WinningTrades:    results.WinningTrades,
		LosingTrades:     results.LosingTrades,
		Trades:           results.Trades,
	}
	return writeJSON(doc, path)
}

// reportDocument is the serialized shape of one analysis pass
type reportDocument struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Timestamp   time.Time      `json:"timestamp"`
	Price       float64        `json:"price"`
	ATR         float64        `json:"atr"`
	Structure   string         `json:"structure"`
	RSI         float64        `json:"rsi"`
	MACDHist    float64        `json:"macd_histogram"`
	MTFScore    float64        `json:"mtf_score"`
	Confluence  float64        `json:"confluence"`
	Grade       string         `json:"grade"`
	Quantum     float64        `json:"quantum"`
	Rating      string         `json:"rating"`
	Signal      *signal.Signal `json:"signal"`
}

// WriteReportJSON writes an analysis report to a JSON file
func WriteReportJSON(report *pipeline.Report, path string) error {
	doc := reportDocument{
		GeneratedAt: time.Now().UTC(),
		Timestamp:   report.Timestamp,
		Price:       report.Price,
		ATR:         report.ATR,
		Structure:   report.Structure.Structure.String(),
		RSI:         report.Momentum.RSI,
		MACDHist:    report.Momentum.MACDHistogram,
		MTFScore:    report.Alignment.Score,
		Confluence:  report.Confluence.Total,
		Grade:       report.Confluence.Grade,
		Quantum:     report.Quantum.Total,
		Rating:      report.Quantum.Rating,
		Signal:      report.Signal,
	}
	return writeJSON(doc, path)
}

func writeJSON(doc interface{}, path string) error {
	if err := EnsureDirectoryExists(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

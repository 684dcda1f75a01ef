package reporting

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/aurumquant/xau-signal-engine/internal/backtest"
	"github.com/aurumquant/xau-signal-engine/internal/pipeline"
	"github.com/aurumquant/xau-signal-engine/internal/signal"
	"github.com/aurumquant/xau-signal-engine/internal/smartmoney"
	"github.com/aurumquant/xau-signal-engine/pkg/validation"
)

// DefaultConsoleReporter renders reports and results as console tables
type DefaultConsoleReporter struct{}

// NewDefaultConsoleReporter creates a console reporter
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{}
}

// OutputReport prints one analysis pass: scores, zones and the signal
func (r *DefaultConsoleReporter) OutputReport(report *pipeline.Report, symbol string) {
	fmt.Printf("\n%s analysis @ %s (price %.2f)\n",
		symbol, report.Timestamp.Format("2006-01-02 15:04"), report.Price)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Market Assessment")
	t.AppendHeader(table.Row{"Component", "Value"})
	t.AppendRows([]table.Row{
		{"Structure", report.Structure.Structure},
		{"Trend Strength", fmt.Sprintf("%.2f", report.Structure.TrendStrength)},
		{"Price Efficiency", fmt.Sprintf("%.2f", report.Structure.PriceEfficiency)},
		{"RSI", fmt.Sprintf("%.1f", report.Momentum.RSI)},
		{"MACD Histogram", fmt.Sprintf("%.3f", report.Momentum.MACDHistogram)},
		{"ATR", fmt.Sprintf("%.2f", report.ATR)},
		{"MTF Alignment", fmt.Sprintf("%.2f", report.Alignment.Score)},
		{"Live Bullish Zones", report.Zones.CountUnmitigated(smartmoney.DirectionBullish)},
		{"Live Bearish Zones", report.Zones.CountUnmitigated(smartmoney.DirectionBearish)},
	})
	t.Render()

	q := table.NewWriter()
	q.SetOutputMirror(os.Stdout)
	q.SetStyle(table.StyleLight)
	q.SetTitle("Quantum Dimensions")
	q.AppendHeader(table.Row{"Dimension", "Score"})
	q.AppendRows([]table.Row{
		{"Momentum", fmt.Sprintf("%.1f", report.Quantum.Momentum)},
		{"Volatility", fmt.Sprintf("%.1f", report.Quantum.Volatility)},
		{"Structure", fmt.Sprintf("%.1f", report.Quantum.Structure)},
		{"Volume", fmt.Sprintf("%.1f", report.Quantum.Volume)},
	})
	q.AppendSeparator()
	q.AppendRow(table.Row{"Total", fmt.Sprintf("%.1f (%s)", report.Quantum.Total, report.Quantum.Rating)})
	q.Render()

	fmt.Printf("\nConfluence: %.2f (grade %s)\n", report.Confluence.Total, report.Confluence.Grade)
	for _, reason := range report.Confluence.Reasoning {
		fmt.Printf("  - %s\n", reason)
	}

	r.printSignal(report.Signal)
}

func (r *DefaultConsoleReporter) printSignal(sig *signal.Signal) {
	if sig == nil {
		return
	}
	if !sig.IsActionable() {
		fmt.Println("\n" + text.FgYellow.Sprint("NO TRADE: standing aside"))
		return
	}

	color := text.FgGreen
	if sig.Direction == signal.Sell {
		color = text.FgRed
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetTitle(color.Sprintf("%s SIGNAL", sig.Direction))
	t.AppendRows([]table.Row{
		{"Entry", fmt.Sprintf("%.2f", sig.Entry)},
		{"Stop Loss", fmt.Sprintf("%.2f", sig.StopLoss)},
	})
	for i, tp := range sig.TakeProfits {
		t.AppendRow(table.Row{fmt.Sprintf("Take Profit %d", i+1), fmt.Sprintf("%.2f", tp)})
	}
	t.AppendRows([]table.Row{
		{"Risk:Reward", fmt.Sprintf("%.2f", sig.RiskReward)},
		{"Confidence", fmt.Sprintf("%.0f%% (%s)", sig.Confidence, sig.Grade)},
	})
	t.Render()
}

// OutputResults prints backtest results
func (r *DefaultConsoleReporter) OutputResults(results *backtest.Results) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Backtest Results")
	t.AppendRows([]table.Row{
		{"Initial Balance", fmt.Sprintf("$%.2f", results.StartBalance)},
		{"Final Balance", fmt.Sprintf("$%.2f", results.EndBalance)},
		{"Total Return", fmt.Sprintf("%.2f%%", results.TotalReturn*100)},
		{"Annualized Return", fmt.Sprintf("%.2f%%", results.AnnualizedReturn*100)},
		{"Max Drawdown", fmt.Sprintf("%.2f%%", results.MaxDrawdown*100)},
		{"Sharpe Ratio", fmt.Sprintf("%.2f", results.SharpeRatio)},
		{"Profit Factor", fmt.Sprintf("%.2f", results.ProfitFactor)},
		{"Total Trades", results.TotalTrades},
		{"Winning Trades", fmt.Sprintf("%d (%.1f%%)", results.WinningTrades, results.WinRate*100)},
		{"Losing Trades", results.LosingTrades},
	})
	t.Render()
}

// OutputWalkForwardSummary prints a walk-forward validation summary
func (r *DefaultConsoleReporter) OutputWalkForwardSummary(summary *validation.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("Walk-Forward Summary (%d folds)", len(summary.Folds)))
	t.AppendRows([]table.Row{
		{"Avg Train Return", fmt.Sprintf("%.2f%%", summary.AverageTrainReturn)},
		{"Avg Test Return", fmt.Sprintf("%.2f%% ± %.2f%%", summary.AverageTestReturn, summary.TestReturnStdDev)},
		{"Avg Train Drawdown", fmt.Sprintf("%.2f%%", summary.AverageTrainDrawdown)},
		{"Avg Test Drawdown", fmt.Sprintf("%.2f%%", summary.AverageTestDrawdown)},
		{"Return Degradation", fmt.Sprintf("%.1f%%", summary.ReturnDegradation)},
		{"Overfitting Risk", summary.OverfittingRisk},
	})
	t.Render()

	if summary.IsRobust {
		fmt.Println(text.FgGreen.Sprint("Consistent performance across time periods"))
	} else {
		fmt.Println(text.FgRed.Sprint("Out-of-sample performance degrades sharply"))
	}
}

// Package-level convenience functions

// OutputConsole prints backtest results with the default reporter
func OutputConsole(results *backtest.Results) {
	NewDefaultConsoleReporter().OutputResults(results)
}

// OutputReport prints an analysis report with the default reporter
func OutputReport(report *pipeline.Report, symbol string) {
	NewDefaultConsoleReporter().OutputReport(report, symbol)
}

package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/aurumquant/xau-signal-engine/internal/backtest"
)

// WriteTradesCSV writes every closed trade to a CSV file. An .xlsx path is
// delegated to the Excel writer.
func WriteTradesCSV(results *backtest.Results, path string) error {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return WriteTradesXLSX(results, path)
	}
	if err := EnsureDirectoryExists(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{
		"Entry_Time",
		"Exit_Time",
		"Direction",
		"Entry_Price",
		"Exit_Price",
		"Stop_Loss",
		"Take_Profit",
		"Quantity",
		"PnL",
		"Commission",
		"Exit_Reason",
	}); err != nil {
		return err
	}

	for _, trade := range results.Trades {
		record := []string{
			trade.EntryTime.Format("2006-01-02 15:04:05"),
			trade.ExitTime.Format("2006-01-02 15:04:05"),
			trade.Direction.String(),
			fmt.Sprintf("%.2f", trade.EntryPrice),
			fmt.Sprintf("%.2f", trade.ExitPrice),
			fmt.Sprintf("%.2f", trade.StopLoss),
			fmt.Sprintf("%.2f", trade.TakeProfit),
			fmt.Sprintf("%.4f", trade.Quantity),
			fmt.Sprintf("%.2f", trade.PnL),
			fmt.Sprintf("%.2f", trade.Commission),
			trade.ExitReason,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return nil
}

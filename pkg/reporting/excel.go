package reporting

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/aurumquant/xau-signal-engine/internal/backtest"
)

// excelStyles holds the workbook style handles
type excelStyles struct {
	header   int
	currency int
	percent  int
	red      int
	green    int
}

// WriteTradesXLSX writes a workbook with a Trades sheet and a Summary sheet
func WriteTradesXLSX(results *backtest.Results, path string) error {
	if err := EnsureDirectoryExists(path); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const tradesSheet = "Trades"
	const summarySheet = "Summary"

	fx.SetSheetName(fx.GetSheetName(0), tradesSheet)
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return err
	}

	styles, err := createStyles(fx)
	if err != nil {
		return err
	}

	if err := writeTradesSheet(fx, tradesSheet, results, styles); err != nil {
		return err
	}
	if err := writeSummarySheet(fx, summarySheet, results, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func createStyles(fx *excelize.File) (excelStyles, error) {
	var styles excelStyles
	var err error

	styles.header, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
	})
	if err != nil {
		return styles, err
	}

	styles.currency, err = fx.NewStyle(&excelize.Style{NumFmt: 177}) // $#,##0.00
	if err != nil {
		return styles, err
	}
	styles.percent, err = fx.NewStyle(&excelize.Style{NumFmt: 10}) // 0.00%
	if err != nil {
		return styles, err
	}
	styles.red, err = fx.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "CC0000"}})
	if err != nil {
		return styles, err
	}
	styles.green, err = fx.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "006600"}})
	return styles, err
}

func writeTradesSheet(fx *excelize.File, sheet string, results *backtest.Results, styles excelStyles) error {
	headers := []string{
		"Entry Time", "Exit Time", "Direction", "Entry Price", "Exit Price",
		"Stop Loss", "Take Profit", "Quantity", "PnL", "Commission", "Exit Reason",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		fx.SetCellStyle(sheet, cell, cell, styles.header)
	}

	for i, trade := range results.Trades {
		row := i + 2
		values := []interface{}{
			trade.EntryTime.Format("2006-01-02 15:04"),
			trade.ExitTime.Format("2006-01-02 15:04"),
			trade.Direction.String(),
			trade.EntryPrice,
			trade.ExitPrice,
			trade.StopLoss,
			trade.TakeProfit,
			trade.Quantity,
			trade.PnL,
			trade.Commission,
			trade.ExitReason,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := fx.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}

		pnlCell, _ := excelize.CoordinatesToCellName(9, row)
		if trade.PnL >= 0 {
			fx.SetCellStyle(sheet, pnlCell, pnlCell, styles.green)
		} else {
			fx.SetCellStyle(sheet, pnlCell, pnlCell, styles.red)
		}
	}

	return fx.SetColWidth(sheet, "A", "K", 16)
}

func writeSummarySheet(fx *excelize.File, sheet string, results *backtest.Results, styles excelStyles) error {
	profitFactor := results.ProfitFactor
	if math.IsInf(profitFactor, 1) {
		profitFactor = 9999
	}

	rows := []struct {
		label string
		value interface{}
		style int
	}{
		{"Initial Balance", results.StartBalance, styles.currency},
		{"Final Balance", results.EndBalance, styles.currency},
		{"Total Return", results.TotalReturn, styles.percent},
		{"Annualized Return", results.AnnualizedReturn, styles.percent},
		{"Max Drawdown", results.MaxDrawdown, styles.percent},
		{"Sharpe Ratio", results.SharpeRatio, 0},
		{"Profit Factor", profitFactor, 0},
		{"Win Rate", results.WinRate, styles.percent},
		{"Total Trades", results.TotalTrades, 0},
		{"Winning Trades", results.WinningTrades, 0},
		{"Losing Trades", results.LosingTrades, 0},
	}

	for i, row := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := fx.SetCellValue(sheet, labelCell, row.label); err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, valueCell, row.value); err != nil {
			return err
		}
		fx.SetCellStyle(sheet, labelCell, labelCell, styles.header)
		if row.style != 0 {
			fx.SetCellStyle(sheet, valueCell, valueCell, row.style)
		}
	}

	return fx.SetColWidth(sheet, "A", "B", 22)
}

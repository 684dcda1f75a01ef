package reporting

import (
	"github.com/aurumquant/xau-signal-engine/internal/backtest"
	"github.com/aurumquant/xau-signal-engine/internal/pipeline"
)

// Package reporting renders analysis reports and backtest results to the
// console and to files.

// ConsoleReporter renders to stdout
type ConsoleReporter interface {
	OutputResults(results *backtest.Results)
	OutputReport(report *pipeline.Report, symbol string)
}

// FileReporter renders to files
type FileReporter interface {
	WriteTradesCSV(results *backtest.Results, path string) error
	WriteTradesXLSX(results *backtest.Results, path string) error
	WriteResultsJSON(results *backtest.Results, path string) error
	WriteReportJSON(report *pipeline.Report, path string) error
}

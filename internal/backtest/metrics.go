package backtest

import (
	"math"

	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// Results holds the outcome of a backtest run
type Results struct {
	StartBalance     float64
	EndBalance       float64
	TotalReturn      float64 // fraction, EndBalance/StartBalance - 1
	AnnualizedReturn float64
	MaxDrawdown      float64 // fraction of peak equity
	SharpeRatio      float64
	ProfitFactor     float64
	WinRate          float64 // fraction of closed trades
	TotalTrades      int
	WinningTrades    int
	LosingTrades     int
	Trades           []Trade
	EquityCurve      []EquityPoint
}

// finalize computes the summary statistics from the closed trades and the
// equity curve
func (r *Results) finalize(candles []types.Candle) {
	r.TotalTrades = len(r.Trades)
	if r.StartBalance > 0 {
		r.TotalReturn = r.EndBalance/r.StartBalance - 1
	}

	grossProfit := 0.0
	grossLoss := 0.0
	for _, trade := range r.Trades {
		if trade.PnL > 0 {
			r.WinningTrades++
			grossProfit += trade.PnL
		} else {
			r.LosingTrades++
			grossLoss += -trade.PnL
		}
	}
	if r.TotalTrades > 0 {
		r.WinRate = float64(r.WinningTrades) / float64(r.TotalTrades)
	}
	switch {
	case grossLoss > 0:
		r.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		r.ProfitFactor = math.Inf(1)
	}

	r.MaxDrawdown = maxDrawdown(r.EquityCurve)
	r.SharpeRatio = sharpeRatio(r.Trades, r.StartBalance)
	r.AnnualizedReturn = annualizedReturn(r.TotalReturn, candles)
}

// maxDrawdown returns the largest peak-to-trough decline as a fraction of
// the peak equity
func maxDrawdown(curve []EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	peak := curve[0].Equity
	worst := 0.0
	for _, point := range curve {
		if point.Equity > peak {
			peak = point.Equity
		}
		if peak > 0 {
			dd := (peak - point.Equity) / peak
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

// sharpeRatio computes a per-trade Sharpe ratio with a zero risk-free rate.
// Trade returns are measured against the starting balance.
func sharpeRatio(trades []Trade, startBalance float64) float64 {
	if len(trades) < 2 || startBalance <= 0 {
		return 0
	}
	returns := make([]float64, len(trades))
	sum := 0.0
	for i, trade := range trades {
		returns[i] = trade.PnL / startBalance
		sum += returns[i]
	}
	mean := sum / float64(len(returns))

	variance := 0.0
	for _, ret := range returns {
		variance += (ret - mean) * (ret - mean)
	}
	variance /= float64(len(returns) - 1)
	if variance == 0 {
		return 0
	}
	return mean / math.Sqrt(variance)
}

// annualizedReturn scales the total return to a yearly rate from the
// candle timespan
func annualizedReturn(totalReturn float64, candles []types.Candle) float64 {
	if len(candles) < 2 {
		return 0
	}
	span := candles[len(candles)-1].Timestamp.Sub(candles[0].Timestamp)
	years := span.Hours() / (24 * 365)
	if years <= 0 {
		return 0
	}
	return math.Pow(1+totalReturn, 1/years) - 1
}

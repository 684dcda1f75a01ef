package backtest

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aurumquant/xau-signal-engine/internal/signal"
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// Config holds backtest parameters
type Config struct {
	InitialBalance float64 `json:"initial_balance"`
	Commission     float64 `json:"commission"`   // per side, as a fraction of notional
	WindowSize     int     `json:"window_size"`  // candles fed to the signal function
	RiskPercent    float64 `json:"risk_percent"` // balance fraction risked per trade
}

// DefaultConfig returns the default backtest parameters
func DefaultConfig() Config {
	return Config{
		InitialBalance: 10000.0,
		Commission:     0.0005,
		WindowSize:     150,
		RiskPercent:    1.0,
	}
}

// SignalFunc produces a signal for the given analysis window. The window is
// the trailing WindowSize candles ending at the current replay position.
type SignalFunc func(window []types.Candle) (*signal.Signal, error)

// Trade records one closed position
type Trade struct {
	EntryTime  time.Time
	ExitTime   time.Time
	Direction  signal.Direction
	EntryPrice float64
	ExitPrice  float64
	StopLoss   float64
	TakeProfit float64
	Quantity   float64
	PnL        float64
	Commission float64
	ExitReason string
}

// EquityPoint is one sample of the equity curve
type EquityPoint struct {
	Timestamp time.Time
	Equity    float64
}

type openPosition struct {
	direction  signal.Direction
	entryTime  time.Time
	entryPrice float64
	stopLoss   float64
	takeProfit float64
	quantity   float64
	commission float64
}

// Engine replays candles sequentially against a signal function, holding at
// most one position at a time
type Engine struct {
	config   Config
	signalFn SignalFunc
}

// NewEngine creates a backtest engine
func NewEngine(config Config, signalFn SignalFunc) *Engine {
	if config.InitialBalance <= 0 {
		config.InitialBalance = 10000.0
	}
	if config.WindowSize <= 0 {
		config.WindowSize = 150
	}
	if config.RiskPercent <= 0 {
		config.RiskPercent = 1.0
	}
	return &Engine{config: config, signalFn: signalFn}
}

// Run replays the candle series. Signals are evaluated on each closed
// window; an actionable signal opens a position at the next candle's open,
// carrying the signal's stop and take-profit distances. When a candle spans
// both stop and target, the stop fills first. Empty or short data produces a
// zero-trade result rather than an error.
func (e *Engine) Run(candles []types.Candle) (*Results, error) {
	results := &Results{
		StartBalance: e.config.InitialBalance,
		EndBalance:   e.config.InitialBalance,
		Trades:       make([]Trade, 0),
	}
	if len(candles) <= e.config.WindowSize {
		return results, nil
	}

	balance := e.config.InitialBalance
	var position *openPosition
	var pending *signal.Signal

	for i := e.config.WindowSize; i < len(candles); i++ {
		candle := candles[i]

		// Fill a signal emitted on the previous candle
		if pending != nil && position == nil {
			position = e.openPosition(pending, candle, balance)
			if position != nil {
				balance -= position.commission
			}
			pending = nil
		}

		// Exit checks against this candle's range
		if position != nil {
			if trade, ok := e.checkExit(position, candle); ok {
				balance += trade.PnL
				results.Trades = append(results.Trades, *trade)
				position = nil
			}
		}

		if position == nil && pending == nil {
			window := candles[i-e.config.WindowSize : i+1]
			sig, err := e.signalFn(window)
			if err != nil {
				log.Debug().Err(err).Time("candle", candle.Timestamp).Msg("signal function error, skipping candle")
			} else if sig != nil && sig.IsActionable() && i+1 < len(candles) {
				pending = sig
			}
		}

		equity := balance
		if position != nil {
			equity += unrealized(position, candle.Close)
		}
		results.EquityCurve = append(results.EquityCurve, EquityPoint{
			Timestamp: candle.Timestamp,
			Equity:    equity,
		})
	}

	// Close out any open position at the final close
	if position != nil {
		last := candles[len(candles)-1]
		trade := e.closePosition(position, last.Close, last.Timestamp, "end of data")
		balance += trade.PnL
		results.Trades = append(results.Trades, *trade)
	}

	results.EndBalance = balance
	results.finalize(candles)
	return results, nil
}

// openPosition sizes a position off the signal's stop distance. The fill is
// the candle open; stop and target keep the signal's distances from entry.
func (e *Engine) openPosition(sig *signal.Signal, candle types.Candle, balance float64) *openPosition {
	stopDist := math.Abs(sig.Entry - sig.StopLoss)
	if stopDist <= 0 || len(sig.TakeProfits) == 0 {
		return nil
	}
	tpDist := math.Abs(sig.TakeProfits[len(sig.TakeProfits)/2] - sig.Entry)

	entry := candle.Open
	riskAmount := balance * e.config.RiskPercent / 100
	quantity := riskAmount / stopDist
	if quantity <= 0 {
		return nil
	}

	pos := &openPosition{
		direction:  sig.Direction,
		entryTime:  candle.Timestamp,
		entryPrice: entry,
		quantity:   quantity,
		commission: entry * quantity * e.config.Commission,
	}
	if sig.Direction == signal.Buy {
		pos.stopLoss = entry - stopDist
		pos.takeProfit = entry + tpDist
	} else {
		pos.stopLoss = entry + stopDist
		pos.takeProfit = entry - tpDist
	}
	return pos
}

// checkExit fills the stop before the target when a candle spans both
func (e *Engine) checkExit(pos *openPosition, candle types.Candle) (*Trade, bool) {
	if pos.direction == signal.Buy {
		if candle.Low <= pos.stopLoss {
			return e.closePosition(pos, pos.stopLoss, candle.Timestamp, "stop loss"), true
		}
		if candle.High >= pos.takeProfit {
			return e.closePosition(pos, pos.takeProfit, candle.Timestamp, "take profit"), true
		}
	} else {
		if candle.High >= pos.stopLoss {
			return e.closePosition(pos, pos.stopLoss, candle.Timestamp, "stop loss"), true
		}
		if candle.Low <= pos.takeProfit {
			return e.closePosition(pos, pos.takeProfit, candle.Timestamp, "take profit"), true
		}
	}
	return nil, false
}

func (e *Engine) closePosition(pos *openPosition, exitPrice float64, exitTime time.Time, reason string) *Trade {
	exitCommission := exitPrice * pos.quantity * e.config.Commission
	pnl := unrealized(pos, exitPrice) - exitCommission

	return &Trade{
		EntryTime:  pos.entryTime,
		ExitTime:   exitTime,
		Direction:  pos.direction,
		EntryPrice: pos.entryPrice,
		ExitPrice:  exitPrice,
		StopLoss:   pos.stopLoss,
		TakeProfit: pos.takeProfit,
		Quantity:   pos.quantity,
		PnL:        pnl,
		Commission: pos.commission + exitCommission,
		ExitReason: reason,
	}
}

func unrealized(pos *openPosition, price float64) float64 {
	if pos.direction == signal.Buy {
		return (price - pos.entryPrice) * pos.quantity
	}
	return (pos.entryPrice - price) * pos.quantity
}

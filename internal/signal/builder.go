package signal

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aurumquant/xau-signal-engine/internal/confluence"
	"github.com/aurumquant/xau-signal-engine/internal/smartmoney"
	"github.com/aurumquant/xau-signal-engine/pkg/types"
)

// Config holds signal construction parameters
type Config struct {
	StopCushionATR float64   `json:"stop_cushion_atr"` // ATRs added beyond the zone extreme
	TPMultiplesATR []float64 `json:"tp_multiples_atr"` // take-profit ladder in ATRs from entry
	MinRiskReward  float64   `json:"min_risk_reward"`  // reject signals below this R:R
}

// DefaultConfig returns the default signal builder parameters
func DefaultConfig() Config {
	return Config{
		StopCushionATR: 0.5,
		TPMultiplesATR: []float64{1.5, 2.5, 4.0},
		MinRiskReward:  1.5,
	}
}

// Builder derives entry, stop and take-profit levels from zones and ATR
type Builder struct {
	config Config
}

// NewBuilder creates a signal builder with the given config
func NewBuilder(config Config) *Builder {
	if config.StopCushionATR <= 0 {
		config.StopCushionATR = 0.5
	}
	if len(config.TPMultiplesATR) == 0 {
		config.TPMultiplesATR = []float64{1.5, 2.5, 4.0}
	}
	if config.MinRiskReward <= 0 {
		config.MinRiskReward = 1.5
	}
	return &Builder{config: config}
}

// Build assembles a trade signal from the scored confluence. The entry sits
// at the nearest unmitigated aligned zone edge when one is below (BUY) or
// above (SELL) the current price, otherwise at the current close. The stop
// goes beyond the zone extreme with an ATR cushion; take profits ladder out
// at ATR multiples. The risk:reward gate is evaluated against the middle
// take-profit level.
func (b *Builder) Build(candles []types.Candle, zones *smartmoney.ZoneSet, conf *confluence.Score, atr float64) (*Signal, error) {
	if len(candles) == 0 {
		return nil, errors.New("no candles for signal construction")
	}
	if conf == nil {
		return nil, errors.New("confluence score is required")
	}

	last := candles[len(candles)-1]
	sig := &Signal{
		ID:         uuid.NewString(),
		Direction:  NoTrade,
		Confidence: conf.Total * 100,
		Grade:      conf.Grade,
		Timestamp:  last.Timestamp,
		Reasoning:  append([]string(nil), conf.Reasoning...),
	}

	if !conf.Tradeable {
		sig.Reasoning = append(sig.Reasoning, "confluence below emission gate")
		return sig, nil
	}
	if atr <= 0 {
		sig.Reasoning = append(sig.Reasoning, "no volatility estimate, standing aside")
		return sig, nil
	}

	price := last.Close
	switch conf.Direction {
	case confluence.DirectionBullish:
		b.buildLong(sig, zones, price, atr)
	case confluence.DirectionBearish:
		b.buildShort(sig, zones, price, atr)
	default:
		return sig, nil
	}

	if sig.Direction == NoTrade {
		return sig, nil
	}

	// Reward measured to the middle rung of the ladder
	mid := sig.TakeProfits[len(sig.TakeProfits)/2]
	risk := sig.Entry - sig.StopLoss
	reward := mid - sig.Entry
	if sig.Direction == Sell {
		risk = sig.StopLoss - sig.Entry
		reward = sig.Entry - mid
	}
	if risk <= 0 {
		sig.Direction = NoTrade
		sig.Reasoning = append(sig.Reasoning, "degenerate stop placement")
		return sig, nil
	}

	sig.RiskReward = reward / risk
	if sig.RiskReward < b.config.MinRiskReward {
		reason := fmt.Sprintf("risk:reward %.2f below %.2f minimum", sig.RiskReward, b.config.MinRiskReward)
		*sig = Signal{
			ID:         sig.ID,
			Direction:  NoTrade,
			Confidence: sig.Confidence,
			Grade:      sig.Grade,
			Timestamp:  sig.Timestamp,
			Reasoning:  append(sig.Reasoning, reason),
		}
	}

	return sig, nil
}

func (b *Builder) buildLong(sig *Signal, zones *smartmoney.ZoneSet, price, atr float64) {
	entry := price
	stop := price - (1.0+b.config.StopCushionATR)*atr

	if zones != nil {
		if zone := zones.NearestUnmitigated(price, smartmoney.DirectionBullish); zone != nil && zone.Top <= price {
			entry = zone.Top
			stop = zone.Bottom - b.config.StopCushionATR*atr
			sig.Reasoning = append(sig.Reasoning, fmt.Sprintf("entry at %s edge %.2f", zone.Kind, zone.Top))
		}
	}

	sig.Direction = Buy
	sig.Entry = entry
	sig.StopLoss = stop
	sig.TakeProfits = make([]float64, len(b.config.TPMultiplesATR))
	for i, m := range b.config.TPMultiplesATR {
		sig.TakeProfits[i] = entry + m*atr
	}
}

func (b *Builder) buildShort(sig *Signal, zones *smartmoney.ZoneSet, price, atr float64) {
	entry := price
	stop := price + (1.0+b.config.StopCushionATR)*atr

	if zones != nil {
		if zone := zones.NearestUnmitigated(price, smartmoney.DirectionBearish); zone != nil && zone.Bottom >= price {
			entry = zone.Bottom
			stop = zone.Top + b.config.StopCushionATR*atr
			sig.Reasoning = append(sig.Reasoning, fmt.Sprintf("entry at %s edge %.2f", zone.Kind, zone.Bottom))
		}
	}

	sig.Direction = Sell
	sig.Entry = entry
	sig.StopLoss = stop
	sig.TakeProfits = make([]float64, len(b.config.TPMultiplesATR))
	for i, m := range b.config.TPMultiplesATR {
		sig.TakeProfits[i] = entry - m*atr
	}
}

package signal

import "time"

// Direction is the side of a proposed trade
type Direction int

const (
	NoTrade Direction = iota
	Buy
	Sell
)

func (d Direction) String() string {
	switch d {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "NO_TRADE"
	}
}

// Signal is a fully specified trade proposal. A NoTrade signal carries no
// price levels, only the reasoning for standing aside.
type Signal struct {
	ID          string
	Direction   Direction
	Entry       float64
	StopLoss    float64
	TakeProfits []float64
	RiskReward  float64
	Confidence  float64 // 0..100, from the confluence total
	Grade       string
	Reasoning   []string
	Timestamp   time.Time
}

// IsActionable returns true when the signal proposes an actual trade
func (s *Signal) IsActionable() bool {
	return s.Direction == Buy || s.Direction == Sell
}

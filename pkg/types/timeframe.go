package types

import (
	"fmt"
	"time"
)

// Timeframe identifies a candle interval
type Timeframe string

const (
	TimeframeM1  Timeframe = "M1"
	TimeframeM5  Timeframe = "M5"
	TimeframeM15 Timeframe = "M15"
	TimeframeM30 Timeframe = "M30"
	TimeframeH1  Timeframe = "H1"
	TimeframeH4  Timeframe = "H4"
	TimeframeD1  Timeframe = "D1"
)

// Duration returns the candle interval as a time.Duration
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case TimeframeM1:
		return time.Minute
	case TimeframeM5:
		return 5 * time.Minute
	case TimeframeM15:
		return 15 * time.Minute
	case TimeframeM30:
		return 30 * time.Minute
	case TimeframeH1:
		return time.Hour
	case TimeframeH4:
		return 4 * time.Hour
	case TimeframeD1:
		return 24 * time.Hour
	default:
		return 0
	}
}

// BybitInterval returns the Bybit kline interval code for the timeframe
func (tf Timeframe) BybitInterval() string {
	switch tf {
	case TimeframeM1:
		return "1"
	case TimeframeM5:
		return "5"
	case TimeframeM15:
		return "15"
	case TimeframeM30:
		return "30"
	case TimeframeH1:
		return "60"
	case TimeframeH4:
		return "240"
	case TimeframeD1:
		return "D"
	default:
		return ""
	}
}

// ParseTimeframe converts a string like "M15" or "H1" into a Timeframe
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case TimeframeM1, TimeframeM5, TimeframeM15, TimeframeM30, TimeframeH1, TimeframeH4, TimeframeD1:
		return Timeframe(s), nil
	default:
		return "", fmt.Errorf("unknown timeframe: %s", s)
	}
}

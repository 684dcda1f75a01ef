package structure

import "time"

// Structure represents the classified market structure
type Structure int

const (
	StructureRanging Structure = iota
	StructureBullish
	StructureStrongBullish
	StructureBearish
	StructureStrongBearish
)

func (s Structure) String() string {
	switch s {
	case StructureStrongBullish:
		return "STRONG_BULLISH"
	case StructureBullish:
		return "BULLISH"
	case StructureRanging:
		return "RANGING"
	case StructureBearish:
		return "BEARISH"
	case StructureStrongBearish:
		return "STRONG_BEARISH"
	default:
		return "UNKNOWN"
	}
}

// IsBullish returns true for bullish structures
func (s Structure) IsBullish() bool {
	return s == StructureBullish || s == StructureStrongBullish
}

// IsBearish returns true for bearish structures
func (s Structure) IsBearish() bool {
	return s == StructureBearish || s == StructureStrongBearish
}

// SwingType distinguishes swing highs from swing lows
type SwingType int

const (
	SwingHigh SwingType = iota
	SwingLow
)

func (st SwingType) String() string {
	if st == SwingHigh {
		return "HIGH"
	}
	return "LOW"
}

// SwingPoint represents a confirmed swing high or low
type SwingPoint struct {
	Index     int
	Price     float64
	Type      SwingType
	Timestamp time.Time
}

// Analysis holds the full market-structure classification output
type Analysis struct {
	Structure       Structure
	TrendStrength   float64 // 0.0 to 1.0
	Bias            int     // 1 bullish, -1 bearish, 0 neutral
	HigherHighs     int
	HigherLows      int
	LowerHighs      int
	LowerLows       int
	PriceEfficiency float64 // signed directional efficiency, -1.0 to 1.0
	SwingHighs      []SwingPoint
	SwingLows       []SwingPoint
}

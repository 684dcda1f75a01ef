package smartmoney

import "time"

// Direction marks which side a zone favors
type Direction int

const (
	DirectionBullish Direction = iota
	DirectionBearish
)

func (d Direction) String() string {
	if d == DirectionBullish {
		return "BULLISH"
	}
	return "BEARISH"
}

// ZoneKind distinguishes the two detected zone patterns
type ZoneKind int

const (
	KindOrderBlock ZoneKind = iota
	KindFairValueGap
)

func (k ZoneKind) String() string {
	if k == KindOrderBlock {
		return "ORDER_BLOCK"
	}
	return "FVG"
}

// Zone is a detected price area treated as an institutional interest proxy
type Zone struct {
	ID          string
	Kind        ZoneKind
	Direction   Direction
	Top         float64
	Bottom      float64
	Index       int // index of the forming candle within the analyzed slice
	CreatedAt   time.Time
	Mitigated   bool
	MitigatedAt *time.Time
}

// Contains reports whether the price lies inside the zone
func (z Zone) Contains(price float64) bool {
	return price >= z.Bottom && price <= z.Top
}

// Mid returns the zone midpoint
func (z Zone) Mid() float64 {
	return (z.Top + z.Bottom) / 2
}

// Height returns the zone height
func (z Zone) Height() float64 {
	return z.Top - z.Bottom
}

// ZoneSet groups the zones found in one scan
type ZoneSet struct {
	OrderBlocks   []Zone
	FairValueGaps []Zone
}

// All returns every zone in the set
func (zs *ZoneSet) All() []Zone {
	all := make([]Zone, 0, len(zs.OrderBlocks)+len(zs.FairValueGaps))
	all = append(all, zs.OrderBlocks...)
	all = append(all, zs.FairValueGaps...)
	return all
}

// CountUnmitigated counts live zones for the given direction
func (zs *ZoneSet) CountUnmitigated(dir Direction) int {
	count := 0
	for _, z := range zs.All() {
		if !z.Mitigated && z.Direction == dir {
			count++
		}
	}
	return count
}

// NearestUnmitigated returns the live zone for the given direction whose
// midpoint is closest to price, or nil when none exists
func (zs *ZoneSet) NearestUnmitigated(price float64, dir Direction) *Zone {
	var nearest *Zone
	best := 0.0
	for _, z := range zs.All() {
		if z.Mitigated || z.Direction != dir {
			continue
		}
		dist := z.Mid() - price
		if dist < 0 {
			dist = -dist
		}
		if nearest == nil || dist < best {
			zone := z
			nearest = &zone
			best = dist
		}
	}
	return nearest
}

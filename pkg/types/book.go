package types

import "time"

// ————————————————————————————————————————————————————————————————————————
// Order books
// ————————————————————————————————————————————————————————————————————————

// PriceLevel is one (price, size) rung of an order-book ladder.
// Price is a probability in (0,1); Size is a contract count, always > 0
// after normalization.
type PriceLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// NormalizedOrderBook is the uniform cross-venue book representation.
// Ask ladders are strictly ascending by price with consolidated sizes;
// bid ladders (populated only by the streaming clients) are descending.
// The arbitrage math reads asks only.
type NormalizedOrderBook struct {
	YesAsks []PriceLevel
	NoAsks  []PriceLevel
	YesBids []PriceLevel
	NoBids  []PriceLevel

	UpdatedAt time.Time
}

// BestYesAsk returns the cheapest YES ask, if any.
func (b *NormalizedOrderBook) BestYesAsk() (PriceLevel, bool) {
	if len(b.YesAsks) == 0 {
		return PriceLevel{}, false
	}
	return b.YesAsks[0], true
}

// BestNoAsk returns the cheapest NO ask, if any.
func (b *NormalizedOrderBook) BestNoAsk() (PriceLevel, bool) {
	if len(b.NoAsks) == 0 {
		return PriceLevel{}, false
	}
	return b.NoAsks[0], true
}

// Depth sums the sizes of a ladder.
func Depth(levels []PriceLevel) float64 {
	var total float64
	for _, l := range levels {
		total += l.Size
	}
	return total
}

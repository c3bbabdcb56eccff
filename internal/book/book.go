// Package book implements the normalized order-book model.
//
// Both venues are reduced to the same shape: ascending YES/NO ask ladders in
// probability space (plus descending bid ladders for the streaming path).
// Two transformations feed it:
//
//   - Polymarket: each token (YES, NO) has its own bid/ask book. Buying YES
//     is served by the YES token's asks plus the NO token's bids inverted
//     (a bid at X on one outcome is an ask at 1-X on the other).
//   - Kalshi: the venue streams resting bids per side in cents; each side's
//     asks are the opposite side's bids inverted.
//
// Consolidation sums sizes that land on the same normalized price, so the
// resulting ladders are strictly monotonic with no zero-size entries.
package book

import (
	"sort"

	"arb-scanner/pkg/types"
)

// Consolidate merges duplicate prices, drops empty or degenerate levels,
// and returns an ask ladder sorted ascending by price.
func Consolidate(levels []types.PriceLevel) []types.PriceLevel {
	return consolidate(levels, true)
}

// ConsolidateBids is Consolidate with descending sort, for bid ladders.
func ConsolidateBids(levels []types.PriceLevel) []types.PriceLevel {
	return consolidate(levels, false)
}

func consolidate(levels []types.PriceLevel, ascending bool) []types.PriceLevel {
	bySize := make(map[float64]float64, len(levels))
	for _, l := range levels {
		if l.Size <= 0 || l.Price <= 0 || l.Price >= 1 {
			continue
		}
		bySize[l.Price] += l.Size
	}

	out := make([]types.PriceLevel, 0, len(bySize))
	for price, size := range bySize {
		out = append(out, types.PriceLevel{Price: price, Size: size})
	}
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].Price < out[j].Price
		}
		return out[i].Price > out[j].Price
	})
	return out
}

// Invert maps each level's price p to 1-p, turning bids on one outcome into
// asks on the complementary outcome (and vice versa). The result is NOT
// consolidated or sorted; callers pass it through Consolidate.
func Invert(levels []types.PriceLevel) []types.PriceLevel {
	out := make([]types.PriceLevel, 0, len(levels))
	for _, l := range levels {
		out = append(out, types.PriceLevel{Price: 1 - l.Price, Size: l.Size})
	}
	return out
}

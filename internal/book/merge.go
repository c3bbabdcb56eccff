package book

import (
	"time"

	"arb-scanner/pkg/types"
)

// TokenBook is one Polymarket token's raw book in probability space, as
// parsed by the CLOB client. Bids and asks need not be sorted.
type TokenBook struct {
	Bids []types.PriceLevel
	Asks []types.PriceLevel
}

// MergeTokenBooks combines the YES and NO token books of one Polymarket
// market into a normalized two-sided book.
//
// Buying YES is filled by the YES token's direct asks plus the NO token's
// bids inverted through p -> 1-p; symmetrically for NO. Levels colliding at
// the same resulting price have their sizes summed.
func MergeTokenBooks(yes, no TokenBook) *types.NormalizedOrderBook {
	yesAsks := append(append([]types.PriceLevel{}, yes.Asks...), Invert(no.Bids)...)
	noAsks := append(append([]types.PriceLevel{}, no.Asks...), Invert(yes.Bids)...)

	return &types.NormalizedOrderBook{
		YesAsks:   Consolidate(yesAsks),
		NoAsks:    Consolidate(noAsks),
		UpdatedAt: time.Now(),
	}
}

// FromKalshiBids builds a normalized book from Kalshi's per-side resting
// bids. Each side's executable asks are the opposite side's bids inverted:
// a NO bid at X is a YES ask at 1-X.
func FromKalshiBids(yesBids, noBids []types.PriceLevel) *types.NormalizedOrderBook {
	return &types.NormalizedOrderBook{
		YesAsks:   Consolidate(Invert(noBids)),
		NoAsks:    Consolidate(Invert(yesBids)),
		YesBids:   ConsolidateBids(yesBids),
		NoBids:    ConsolidateBids(noBids),
		UpdatedAt: time.Now(),
	}
}

// Package arb classifies matched market pairs into arbitrage opportunities.
//
// Guaranteed arbitrage exists when one of the two cross-venue positions
// (buy P-YES + K-NO, or buy K-YES + P-NO) costs less than $1: the position
// pays exactly $1 at resolution regardless of outcome. Everything else is
// at best a simple spread, a directional bet on the price difference.
// Classification uses last-trade prices; executable sizing is the liquidity
// analyzer's job.
package arb

import (
	"math"
	"sort"

	"arb-scanner/pkg/types"
)

// MinSpreadPct is the default floor below which simple spreads are dropped.
const MinSpreadPct = 2.0

// Calculator turns pairs into classified opportunities.
type Calculator struct {
	minSpreadPct float64
}

// New creates a calculator. minSpreadPct <= 0 falls back to the default.
func New(minSpreadPct float64) *Calculator {
	if minSpreadPct <= 0 {
		minSpreadPct = MinSpreadPct
	}
	return &Calculator{minSpreadPct: minSpreadPct}
}

// classify computes the opportunity for one pair. ok is false when the pair
// has no usable prices.
func (c *Calculator) classify(pair types.MarketPair) (types.ArbitrageOpportunity, bool) {
	if pair.Poly.YesPrice <= 0 || pair.Kalshi.YesPrice <= 0 {
		return types.ArbitrageOpportunity{}, false
	}

	pNo := pair.Poly.NoPrice
	if pNo <= 0 {
		pNo = 1 - pair.Poly.YesPrice
	}
	kNo := pair.Kalshi.NoPrice
	if kNo <= 0 {
		kNo = 1 - pair.Kalshi.YesPrice
	}

	cost1 := pair.Poly.YesPrice + kNo   // buy P-YES and K-NO
	cost2 := pair.Kalshi.YesPrice + pNo // buy K-YES and P-NO
	minCost := math.Min(cost1, cost2)

	if minCost < 1 {
		action := "Buy YES on Polymarket, NO on Kalshi"
		if cost2 < cost1 {
			action = "Buy YES on Kalshi, NO on Polymarket"
		}
		return types.ArbitrageOpportunity{
			Pair:             pair,
			Type:             types.OpportunityGuaranteed,
			ProfitPct:        (1 - minCost) * 100,
			Action:           action,
			GuaranteedProfit: 1 - minCost,
		}, true
	}

	spreadPct := math.Abs(pair.Poly.YesPrice-pair.Kalshi.YesPrice) * 100
	action := "Buy YES on Polymarket, sell on Kalshi"
	if pair.Kalshi.YesPrice < pair.Poly.YesPrice {
		action = "Buy YES on Kalshi, sell on Polymarket"
	}
	return types.ArbitrageOpportunity{
		Pair:      pair,
		Type:      types.OpportunitySimple,
		ProfitPct: spreadPct,
		Action:    action,
	}, true
}

// Calculate classifies pairs and keeps only interesting ones: all guaranteed
// opportunities plus simple spreads at or above the configured floor.
func (c *Calculator) Calculate(pairs []types.MarketPair) []types.ArbitrageOpportunity {
	var out []types.ArbitrageOpportunity
	for _, pair := range pairs {
		opp, ok := c.classify(pair)
		if !ok {
			continue
		}
		if opp.Type == types.OpportunitySimple && opp.ProfitPct < c.minSpreadPct {
			continue
		}
		out = append(out, opp)
	}
	Sort(out)
	return out
}

// CalculateAll classifies pairs keeping every one, including simple spreads
// below the floor. Used when the full matched-market list is displayed.
func (c *Calculator) CalculateAll(pairs []types.MarketPair) []types.ArbitrageOpportunity {
	var out []types.ArbitrageOpportunity
	for _, pair := range pairs {
		if opp, ok := c.classify(pair); ok {
			out = append(out, opp)
		}
	}
	Sort(out)
	return out
}

// Sort orders opportunities guaranteed-first, then by profitPct descending.
// The sort is stable so equal entries keep their pairing order.
func Sort(opps []types.ArbitrageOpportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		gi := opps[i].Type == types.OpportunityGuaranteed
		gj := opps[j].Type == types.OpportunityGuaranteed
		if gi != gj {
			return gi
		}
		return opps[i].ProfitPct > opps[j].ProfitPct
	})
}

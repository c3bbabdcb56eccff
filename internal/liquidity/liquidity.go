// Package liquidity sizes an arbitrage opportunity against real order
// books. The analyzed strategy is fixed: buy Polymarket YES and Kalshi NO;
// the symmetric position is represented upstream as the complementary pair.
package liquidity

import (
	"arb-scanner/pkg/types"
)

// Options tune the walk. Fees are fractional (0.02 = 2%) and subtracted
// from each step's unit profit; MinProfitPct sets the epsilon below which a
// step is not worth taking. All default to zero.
type Options struct {
	PolyFee      float64
	KalshiFee    float64
	MinProfitPct float64
}

// Analyze walks the Polymarket YES ask ladder against the Kalshi NO ask
// ladder and returns the maximum executable size, its cost and profit per
// level, and what stopped the walk.
func Analyze(opp types.ArbitrageOpportunity, pBook, kBook *types.NormalizedOrderBook, opts Options) *types.LiquidityAnalysis {
	a := &types.LiquidityAnalysis{
		Opportunity: opp,
		LimitedBy:   types.LimitedByNoLiquidity,
	}
	if pBook == nil || kBook == nil {
		return a
	}

	pAsks := pBook.YesAsks
	kAsks := kBook.NoAsks
	a.PolyDepth = types.Depth(pAsks)
	a.KalshiDepth = types.Depth(kAsks)

	if len(pAsks) == 0 || len(kAsks) == 0 {
		return a
	}

	fees := opts.PolyFee + opts.KalshiFee
	eps := opts.MinProfitPct / 100

	a.BestPolyAsk = pAsks[0].Price
	a.BestKalshiAsk = kAsks[0].Price
	a.OrderBookCost = a.BestPolyAsk + a.BestKalshiAsk

	if 1-a.OrderBookCost-fees <= eps {
		a.LimitedBy = types.LimitedBySpreadClosed
		return a
	}

	var (
		i, j                 int
		pRemaining           = pAsks[0].Size
		kRemaining           = kAsks[0].Size
		totalContracts       float64
		totalCost            float64
		totalProfit          float64
		stoppedOnProfitFloor bool
	)

	for i < len(pAsks) && j < len(kAsks) {
		cost := pAsks[i].Price + kAsks[j].Price
		profit := 1 - cost - fees
		if profit <= eps {
			stoppedOnProfitFloor = true
			break
		}

		available := pRemaining
		if kRemaining < available {
			available = kRemaining
		}

		totalContracts += available
		totalCost += available * cost
		totalProfit += available * profit
		a.Levels = append(a.Levels, types.LiquidityLevel{
			Contracts:           available,
			PolyPrice:           pAsks[i].Price,
			KalshiPrice:         kAsks[j].Price,
			CostPerContract:     cost,
			ProfitPerContract:   profit,
			CumulativeContracts: totalContracts,
			CumulativeCost:      totalCost,
			CumulativeProfit:    totalProfit,
		})

		pRemaining -= available
		kRemaining -= available
		if pRemaining <= 0 {
			i++
			if i < len(pAsks) {
				pRemaining = pAsks[i].Size
			}
		}
		if kRemaining <= 0 {
			j++
			if j < len(kAsks) {
				kRemaining = kAsks[j].Size
			}
		}
	}

	a.MaxContracts = totalContracts
	a.MaxInvestment = totalCost
	a.MaxProfit = totalProfit
	if totalCost > 0 {
		a.AvgProfitPct = totalProfit / totalCost * 100
	}

	switch {
	case totalContracts <= 0:
		a.LimitedBy = types.LimitedByNoLiquidity
	case stoppedOnProfitFloor:
		a.LimitedBy = types.LimitedBySpreadExhausted
	case i >= len(pAsks) && j < len(kAsks):
		a.LimitedBy = types.LimitedByPolyLiquidity
	case j >= len(kAsks) && i < len(pAsks):
		a.LimitedBy = types.LimitedByKalshiLiquidity
	default:
		a.LimitedBy = types.LimitedBySpreadExhausted
	}
	return a
}

package arb

import (
	"math"
	"math/rand"
	"testing"

	"arb-scanner/pkg/types"
)

func pairWith(pYes, kYes float64) types.MarketPair {
	return types.NewMarketPair("test", types.CategorySports,
		types.PolyQuote{YesPrice: pYes, NoPrice: 1 - pYes},
		types.KalshiQuote{YesPrice: kYes, NoPrice: 1 - kYes},
		1.0,
	)
}

// Prices at different levels but no crossing: a simple spread at 5%.
func TestSimpleSpread(t *testing.T) {
	t.Parallel()

	c := New(2.0)
	opps := c.Calculate([]types.MarketPair{pairWith(0.40, 0.45)})
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	o := opps[0]
	if o.Type != types.OpportunitySimple {
		t.Errorf("type = %q, want simple", o.Type)
	}
	if math.Abs(o.ProfitPct-5.0) > 1e-9 {
		t.Errorf("profitPct = %v, want 5.0", o.ProfitPct)
	}
	if o.GuaranteedProfit != 0 {
		t.Errorf("guaranteedProfit = %v, want 0", o.GuaranteedProfit)
	}
}

// A guaranteed 4% opportunity must rank ahead of a 5% simple spread.
func TestGuaranteedRanksFirst(t *testing.T) {
	t.Parallel()

	// cost1 = 0.48 + 0.48 = 0.96 -> guaranteed 4%.
	a := types.NewMarketPair("A", types.CategorySports,
		types.PolyQuote{YesPrice: 0.48, NoPrice: 0.52},
		types.KalshiQuote{YesPrice: 0.52, NoPrice: 0.48},
		1.0,
	)
	b := pairWith(0.40, 0.45) // simple 5%

	c := New(2.0)
	opps := c.Calculate([]types.MarketPair{b, a})
	if len(opps) != 2 {
		t.Fatalf("got %d opportunities, want 2", len(opps))
	}
	if opps[0].Pair.MatchedEntity != "A" || opps[0].Type != types.OpportunityGuaranteed {
		t.Fatalf("first = %q (%s), want guaranteed A", opps[0].Pair.MatchedEntity, opps[0].Type)
	}
	if math.Abs(opps[0].ProfitPct-4.0) > 1e-9 {
		t.Errorf("guaranteed profitPct = %v, want 4.0", opps[0].ProfitPct)
	}
	if math.Abs(opps[0].GuaranteedProfit-0.04) > 1e-9 {
		t.Errorf("guaranteedProfit = %v, want 0.04", opps[0].GuaranteedProfit)
	}
	if opps[1].Type != types.OpportunitySimple {
		t.Errorf("second = %+v, want the simple spread", opps[1])
	}
}

func TestCalculateDropsBelowFloor(t *testing.T) {
	t.Parallel()

	c := New(2.0)
	if got := c.Calculate([]types.MarketPair{pairWith(0.50, 0.51)}); len(got) != 0 {
		t.Fatalf("1%% spread kept by Calculate: %+v", got)
	}
	if got := c.CalculateAll([]types.MarketPair{pairWith(0.50, 0.51)}); len(got) != 1 {
		t.Fatalf("1%% spread dropped by CalculateAll")
	}
}

func TestDropsUnpricedPairs(t *testing.T) {
	t.Parallel()

	c := New(2.0)
	if got := c.CalculateAll([]types.MarketPair{pairWith(0, 0.45)}); len(got) != 0 {
		t.Fatalf("pair with zero price kept: %+v", got)
	}
}

// Classification invariant: guaranteed iff min(p.yes+k.no, k.yes+p.no) < 1.
func TestClassificationInvariantRandomized(t *testing.T) {
	t.Parallel()

	c := New(2.0)
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 500; trial++ {
		pYes := 0.01 + rng.Float64()*0.98
		kYes := 0.01 + rng.Float64()*0.98
		pair := pairWith(pYes, kYes)

		opps := c.CalculateAll([]types.MarketPair{pair})
		if len(opps) != 1 {
			t.Fatalf("trial %d: got %d opportunities", trial, len(opps))
		}
		o := opps[0]

		minCost := math.Min(pYes+(1-kYes), kYes+(1-pYes))
		if (minCost < 1) != (o.Type == types.OpportunityGuaranteed) {
			t.Fatalf("trial %d: minCost=%v but type=%q", trial, minCost, o.Type)
		}
		if o.Type == types.OpportunityGuaranteed {
			if math.Abs(o.ProfitPct-(1-minCost)*100) > 1e-9 {
				t.Fatalf("trial %d: profitPct=%v, want %v", trial, o.ProfitPct, (1-minCost)*100)
			}
		} else if math.Abs(o.ProfitPct-math.Abs(pYes-kYes)*100) > 1e-9 {
			t.Fatalf("trial %d: simple profitPct=%v", trial, o.ProfitPct)
		}
	}
}

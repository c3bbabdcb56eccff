package dto

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"arb-scanner/pkg/types"
)

func sampleOpportunity() types.OpportunityWithLiquidity {
	end := time.Date(2026, 8, 30, 22, 0, 0, 0, time.UTC)
	return types.OpportunityWithLiquidity{
		ArbitrageOpportunity: types.ArbitrageOpportunity{
			Pair: types.MarketPair{
				MatchedEntity: "86°F or above",
				EventName:     "Highest temperature in NYC today?",
				Category:      types.CategoryWeather,
				Poly: types.PolyQuote{
					YesPrice: 0.40,
					NoPrice:  0.60,
					Slug:     "highest-temperature-in-nyc-on-august-25",
					EndDate:  end,
				},
				Kalshi: types.KalshiQuote{
					YesPrice:     0.45,
					NoPrice:      0.55,
					Ticker:       "KXHIGHNY-26AUG25-T86",
					SeriesTicker: "KXHIGHNY",
					EndDate:      end.Add(time.Hour),
				},
			},
			Type:      types.OpportunitySimple,
			ProfitPct: 5.0,
		},
		Liquidity: &types.LiquidityAnalysis{
			MaxContracts:  60,
			MaxInvestment: 58.8,
			MaxProfit:     1.2,
			AvgProfitPct:  2.04,
			LimitedBy:     types.LimitedByKalshiLiquidity,
			PolyDepth:     300,
			KalshiDepth:   60,
			BestPolyAsk:   0.42,
			BestKalshiAsk: 0.56,
			OrderBookCost: 0.98,
		},
	}
}

func TestProjectFields(t *testing.T) {
	t.Parallel()

	scannedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	got := Project(sampleOpportunity(), scannedAt)

	if got.ID != "highest-temperature-in-nyc-today-86-f-or-above" {
		t.Errorf("id = %q", got.ID)
	}
	// Liquidity ran, so the spread comes from the books: (1-0.98)*100.
	if got.SpreadPct < 1.99 || got.SpreadPct > 2.01 {
		t.Errorf("spreadPct = %v, want ~2 (order-book-derived)", got.SpreadPct)
	}
	if got.Action != "Buy on Polymarket" {
		t.Errorf("action = %q", got.Action)
	}
	if got.PotentialProfit != 1.2 || got.MaxInvestment != 58.8 {
		t.Errorf("profit/investment = %v/%v", got.PotentialProfit, got.MaxInvestment)
	}
	if got.ResolutionDate == nil || !got.ResolutionDate.Equal(time.Date(2026, 8, 30, 22, 0, 0, 0, time.UTC)) {
		t.Errorf("resolutionDate = %v, want the earlier of the two end dates", got.ResolutionDate)
	}
	if got.Fees.PolymarketPct != 2.0 || got.Fees.KalshiPct != 1.0 {
		t.Errorf("fees = %+v", got.Fees)
	}
	if got.Prices.OrderBook == nil {
		t.Fatal("orderBook block missing despite liquidity analysis")
	}
	if got.Prices.OrderBook.Cost != 0.98 {
		t.Errorf("orderBook.cost = %v", got.Prices.OrderBook.Cost)
	}
	if got.Liquidity == nil || got.Liquidity.Status != "executable" {
		t.Errorf("liquidity = %+v, want executable", got.Liquidity)
	}

	wantROI := 1.2 / 58.8 * 100
	if got.ROI != wantROI {
		t.Errorf("roi = %v, want %v", got.ROI, wantROI)
	}
	if got.APR <= got.ROI {
		t.Errorf("apr = %v, want annualized above roi %v", got.APR, got.ROI)
	}
}

func TestProjectWithoutLiquidity(t *testing.T) {
	t.Parallel()

	o := sampleOpportunity()
	o.Liquidity = nil
	got := Project(o, time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC))

	if got.SpreadPct != 5.0 {
		t.Errorf("spreadPct = %v, want last-trade 5.0", got.SpreadPct)
	}
	if got.Prices.OrderBook != nil {
		t.Error("orderBook block present without liquidity analysis")
	}
	if got.Liquidity != nil {
		t.Error("liquidity block present without analysis")
	}
	if got.ROI != 0 || got.APR != 0 {
		t.Errorf("roi/apr = %v/%v, want 0 without liquidity", got.ROI, got.APR)
	}
}

// Projection is pure: the same input projected twice gives identical DTOs.
func TestProjectIdempotent(t *testing.T) {
	t.Parallel()

	scannedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	o := sampleOpportunity()
	a := Project(o, scannedAt)
	b := Project(o, scannedAt)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("projections differ:\n%+v\n%+v", a, b)
	}
}

func TestProjectAllSortsBySpread(t *testing.T) {
	t.Parallel()

	low := sampleOpportunity()
	low.Liquidity = nil
	low.ProfitPct = 3.0

	high := sampleOpportunity()
	high.Liquidity = nil
	high.ProfitPct = 8.0

	got := ProjectAll([]types.OpportunityWithLiquidity{low, high}, time.Now())
	if len(got) != 2 {
		t.Fatalf("got %d DTOs", len(got))
	}
	if got[0].SpreadPct != 8.0 || got[1].SpreadPct != 3.0 {
		t.Errorf("order = %v, %v; want descending", got[0].SpreadPct, got[1].SpreadPct)
	}
}

func TestMakeIDTrimsLongNames(t *testing.T) {
	t.Parallel()

	id := makeID(strings.Repeat("very long event name ", 5), "some entity")
	if len(id) > 64 {
		t.Errorf("id length = %d, want <= 64", len(id))
	}
	if strings.HasSuffix(id, "-") || strings.HasPrefix(id, "-") {
		t.Errorf("id has dangling dash: %q", id)
	}
}

func TestVenueURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		series  string
		ticker  string
		wantURL string
	}{
		{
			name:    "known series slug",
			series:  "KXHIGHNY",
			ticker:  "KXHIGHNY-26AUG25-T86",
			wantURL: "https://kalshi.com/markets/kxhighny/highest-temperature-in-nyc/kxhighny-26aug25-t86",
		},
		{
			name:    "nba game ticker drops team segment",
			series:  "KXNBAGAME",
			ticker:  "KXNBAGAME-26AUG25BOSLAL-BOS",
			wantURL: "https://kalshi.com/markets/kxnbagame/professional-basketball-game/kxnbagame-26aug25boslal",
		},
		{
			name:    "unknown series falls back to lowercased ticker",
			series:  "KXSOMETHING",
			ticker:  "KXSOMETHING-26AUG25",
			wantURL: "https://kalshi.com/markets/kxsomething/kxsomething/kxsomething-26aug25",
		},
		{
			name:    "missing ticker yields empty",
			series:  "KXHIGHNY",
			ticker:  "",
			wantURL: "",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := kalshiURL(tt.series, tt.ticker); got != tt.wantURL {
				t.Errorf("kalshiURL(%q, %q) = %q, want %q", tt.series, tt.ticker, got, tt.wantURL)
			}
		})
	}

	if got := polymarketURL("nba-bos-lal-2026-08-25"); got != "https://polymarket.com/event/nba-bos-lal-2026-08-25" {
		t.Errorf("polymarketURL = %q", got)
	}
	if got := polymarketURL(""); got != "" {
		t.Errorf("polymarketURL(empty) = %q", got)
	}
}

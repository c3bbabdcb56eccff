package match

import (
	"testing"

	"arb-scanner/pkg/types"
)

func nbaEvent(question string, yes float64) types.MatchedEvent {
	return types.MatchedEvent{
		Entry: types.CatalogEntry{
			Category:     types.CategoryNBAGame,
			KalshiTicker: "KXNBAGAME-26AUG25BOSLAL",
			KalshiSeries: "KXNBAGAME",
		},
		Poly: &types.EventShell{
			Title: "Lakers vs. Celtics",
			Markets: []types.MarketShell{
				{Question: "Total points over 210.5 in Lakers vs. Celtics?", YesPrice: 0.5, TokenIDs: []string{"a", "b"}},
				{Question: question, YesPrice: yes, NoPrice: 1 - yes, TokenIDs: []string{"tok0", "tok1"}},
			},
		},
		Kalshi: &types.EventShell{
			Markets: []types.MarketShell{
				{Question: "Will the Celtics win?", YesPrice: 0.42, NoPrice: 0.58, Ticker: "KXNBAGAME-26AUG25BOSLAL-BOS"},
				{Question: "Will the Lakers win?", YesPrice: 0.58, NoPrice: 0.42, Ticker: "KXNBAGAME-26AUG25BOSLAL-LAL"},
			},
		},
	}
}

// The Polymarket question lists the home team first; yesPrice belongs to the
// Lakers, so the away (Celtics) pair must get the inverted price and the
// swapped token order.
func TestNBAHomeListedFirst(t *testing.T) {
	t.Parallel()

	m := testMatcher()
	pairs := m.Pairs(nbaEvent("Lakers vs. Celtics", 0.60))
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}

	away, home := pairs[0], pairs[1]
	if away.MatchedEntity != "Boston Celtics" {
		t.Fatalf("first pair entity = %q, want away team", away.MatchedEntity)
	}
	if away.Poly.YesPrice != 0.40 {
		t.Errorf("awayPolyYes = %v, want 0.40", away.Poly.YesPrice)
	}
	if home.Poly.YesPrice != 0.60 {
		t.Errorf("homePolyYes = %v, want 0.60", home.Poly.YesPrice)
	}
	if away.Poly.TokenIDs[0] != "tok1" || away.Poly.TokenIDs[1] != "tok0" {
		t.Errorf("awayTokenIDs = %v, want [tok1 tok0]", away.Poly.TokenIDs)
	}
	if home.Poly.TokenIDs[0] != "tok0" || home.Poly.TokenIDs[1] != "tok1" {
		t.Errorf("homeTokenIDs = %v, want [tok0 tok1]", home.Poly.TokenIDs)
	}
	if away.Kalshi.Ticker != "KXNBAGAME-26AUG25BOSLAL-BOS" {
		t.Errorf("away kalshi ticker = %q", away.Kalshi.Ticker)
	}
}

func TestNBAAwayListedFirst(t *testing.T) {
	t.Parallel()

	m := testMatcher()
	pairs := m.Pairs(nbaEvent("Celtics vs. Lakers", 0.45))
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}

	away := pairs[0]
	if away.Poly.YesPrice != 0.45 {
		t.Errorf("awayPolyYes = %v, want 0.45", away.Poly.YesPrice)
	}
	if away.Poly.TokenIDs[0] != "tok0" {
		t.Errorf("awayTokenIDs = %v, want orig order", away.Poly.TokenIDs)
	}
}

// Neither team mentioned: default to away-first.
func TestNBANeitherTeamFoundDefaultsAwayFirst(t *testing.T) {
	t.Parallel()

	m := testMatcher()
	pairs := m.Pairs(nbaEvent("Who wins the game vs. the visitors?", 0.55))
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	if pairs[0].Poly.YesPrice != 0.55 {
		t.Errorf("awayPolyYes = %v, want 0.55 (away assumed first)", pairs[0].Poly.YesPrice)
	}
}

func TestFindMoneylineExclusions(t *testing.T) {
	t.Parallel()

	markets := []types.MarketShell{
		{Question: "Lakers vs. Celtics spread -3.5"},
		{Question: "First quarter winner: Lakers vs. Celtics"},
		{Question: "Will the Thunder beat the spread vs. Lakers?"},
		{Question: "Thunder vs. Lakers", TokenIDs: []string{"y", "n"}},
	}
	got, ok := findMoneyline(markets)
	if !ok {
		t.Fatal("moneyline not found")
	}
	if got.Question != "Thunder vs. Lakers" {
		t.Errorf("picked %q", got.Question)
	}
}

func TestParseGameTicker(t *testing.T) {
	t.Parallel()

	away, home, ok := parseGameTicker("KXNBAGAME-26AUG25BOSLAL")
	if !ok || away != "BOS" || home != "LAL" {
		t.Fatalf("got (%q, %q, %v)", away, home, ok)
	}

	if _, _, ok := parseGameTicker("KXNBAGAME-garbage"); ok {
		t.Error("expected failure on malformed ticker")
	}
	if _, _, ok := parseGameTicker("KXNBAGAME-26AUG25XXXYYY"); ok {
		t.Error("expected failure on unknown team codes")
	}
}

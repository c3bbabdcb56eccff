package match

import (
	"testing"

	"arb-scanner/pkg/types"
)

func TestParsePolicyAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		question string
		want     policyAction
	}{
		{"Will the Fed cut rates by 25 bps?", policyAction{kind: "cut", bps: 25}},
		{"Fed raises rates 50bps in September?", policyAction{kind: "raise", bps: 50}},
		{"Will the Fed hold rates steady?", policyAction{kind: "hold"}},
		{"No change to the federal funds rate?", policyAction{kind: "hold"}},
		{"Rate hike of 25 basis points?", policyAction{kind: "raise", bps: 25}},
		{"Fed decreases rates?", policyAction{kind: "cut"}},
		{"Who will win the election?", policyAction{}},
	}
	for _, tt := range tests {
		if got := parsePolicyAction(tt.question); got != tt.want {
			t.Errorf("parsePolicyAction(%q) = %+v, want %+v", tt.question, got, tt.want)
		}
	}
}

func TestFinanceExactBpsMatch(t *testing.T) {
	t.Parallel()

	m := testMatcher()
	ev := types.MatchedEvent{
		Entry: types.CatalogEntry{Category: types.CategoryFinance},
		Poly: &types.EventShell{
			Markets: []types.MarketShell{
				{Question: "Fed cuts by 25 bps?", YesPrice: 0.6, NoPrice: 0.4},
				{Question: "Fed cuts by 50 bps?", YesPrice: 0.1, NoPrice: 0.9},
			},
		},
		Kalshi: &types.EventShell{
			Markets: []types.MarketShell{
				{Question: "Will the Fed cut rates 50bps?", YesPrice: 0.12, NoPrice: 0.88, Ticker: "K50"},
			},
		},
	}
	pairs := m.Pairs(ev)
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	if pairs[0].MatchedEntity != "cut 50bps" {
		t.Errorf("entity = %q", pairs[0].MatchedEntity)
	}
	if pairs[0].Poly.YesPrice != 0.1 {
		t.Errorf("paired with wrong poly market: yes = %v", pairs[0].Poly.YesPrice)
	}
}

// A cut with no stated magnitude must not pair with a sized cut.
func TestFinanceBpsAbsenceDoesNotMatchSized(t *testing.T) {
	t.Parallel()

	m := testMatcher()
	ev := types.MatchedEvent{
		Entry: types.CatalogEntry{Category: types.CategoryFinance},
		Poly: &types.EventShell{
			Markets: []types.MarketShell{
				{Question: "Will the Fed cut rates?", YesPrice: 0.7, NoPrice: 0.3},
			},
		},
		Kalshi: &types.EventShell{
			Markets: []types.MarketShell{
				{Question: "Fed cut of 25 bps?", YesPrice: 0.5, NoPrice: 0.5, Ticker: "K25"},
			},
		},
	}
	if got := m.Pairs(ev); len(got) != 0 {
		t.Fatalf("unsized cut paired with sized cut: %+v", got)
	}
}

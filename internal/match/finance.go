package match

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"arb-scanner/pkg/types"
)

// policyAction is a parsed monetary-policy outcome.
type policyAction struct {
	kind string // "cut", "raise", "hold"
	bps  int    // 0 when the question names no magnitude
}

func (a policyAction) valid() bool { return a.kind != "" }

func (a policyAction) equal(o policyAction) bool {
	return a.kind == o.kind && a.bps == o.bps
}

func (a policyAction) String() string {
	if a.bps > 0 {
		return fmt.Sprintf("%s %dbps", a.kind, a.bps)
	}
	return a.kind
}

var reBps = regexp.MustCompile(`(\d+)\s*(?:bps|bp|basis\s+points?)`)

// parsePolicyAction classifies a rate-decision question as cut, raise, or
// hold, with an optional basis-point magnitude.
func parsePolicyAction(question string) policyAction {
	q := strings.ToLower(question)

	var a policyAction
	switch {
	case strings.Contains(q, "cut") || strings.Contains(q, "decrease") || strings.Contains(q, "lower"):
		a.kind = "cut"
	case strings.Contains(q, "raise") || strings.Contains(q, "hike") || strings.Contains(q, "increase"):
		a.kind = "raise"
	case strings.Contains(q, "hold") || strings.Contains(q, "no change") ||
		strings.Contains(q, "unchanged") || strings.Contains(q, "maintain"):
		a.kind = "hold"
	default:
		return policyAction{}
	}

	if m := reBps.FindStringSubmatch(q); m != nil {
		a.bps, _ = strconv.Atoi(m[1])
	}
	return a
}

// matchFinance pairs rate-decision markets on exact (action, bps) equality.
// Both bps absent also matches; a "cut" with no magnitude never pairs with
// "cut 50bps".
func (m *Matcher) matchFinance(ev types.MatchedEvent) []types.MarketPair {
	type parsed struct {
		mk types.MarketShell
		a  policyAction
	}

	var polyActions []parsed
	for _, mk := range ev.Poly.Markets {
		if a := parsePolicyAction(mk.Question); a.valid() {
			polyActions = append(polyActions, parsed{mk, a})
		}
	}

	var pairs []types.MarketPair
	for _, km := range ev.Kalshi.Markets {
		ka := parsePolicyAction(NormalizeKalshiTitle(km.Question))
		if !ka.valid() {
			continue
		}
		for _, pp := range polyActions {
			if !pp.a.equal(ka) {
				continue
			}
			pairs = append(pairs, types.NewMarketPair(pp.a.String(), types.CategoryFinance,
				types.PolyQuote{
					Question: pp.mk.Question,
					YesPrice: pp.mk.YesPrice,
					NoPrice:  pp.mk.NoPrice,
					TokenIDs: pp.mk.TokenIDs,
					EndDate:  pp.mk.EndDate,
				},
				types.KalshiQuote{
					Question: km.Question,
					YesPrice: km.YesPrice,
					NoPrice:  km.NoPrice,
					Ticker:   km.Ticker,
					EndDate:  km.EndDate,
				},
				1.0,
			))
			break
		}
	}
	return pairs
}

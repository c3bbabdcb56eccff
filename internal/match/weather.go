package match

import (
	"fmt"
	"regexp"
	"strconv"

	"arb-scanner/pkg/types"
)

// tempRange is a parsed temperature band. Open bounds are nil.
type tempRange struct {
	min *int
	max *int
}

func (r tempRange) valid() bool { return r.min != nil || r.max != nil }

// equal requires both bounds to match exactly. Approximate matching is
// deliberately absent: the venues bucket temperatures with a systematic 1°F
// offset, and fuzzy matching turns that offset into phantom arbitrage.
func (r tempRange) equal(o tempRange) bool {
	return intPtrEq(r.min, o.min) && intPtrEq(r.max, o.max)
}

func (r tempRange) String() string {
	switch {
	case r.min != nil && r.max != nil && *r.min == *r.max:
		return fmt.Sprintf("%d°F", *r.min)
	case r.min != nil && r.max != nil:
		return fmt.Sprintf("%d-%d°F", *r.min, *r.max)
	case r.max != nil:
		return fmt.Sprintf("≤%d°F", *r.max)
	case r.min != nil:
		return fmt.Sprintf("≥%d°F", *r.min)
	}
	return "?"
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

var (
	reBelow   = regexp.MustCompile(`(-?\d+)\s*°?F?\s+or\s+(below|lower|less)`)
	reAbove   = regexp.MustCompile(`(-?\d+)\s*°?F?\s+or\s+(above|higher|more)`)
	reBetween = regexp.MustCompile(`(-?\d+)\s*°?F?\s+to\s+(-?\d+)\s*°?F?`)
	reExact   = regexp.MustCompile(`(-?\d+)\s*°F`)
)

// parseTempRange extracts the temperature band from a market question.
// Recognized forms, tried in order: "N°F or below", "N or above", "A to B",
// bare "N°F". Returns an invalid range when none apply.
func parseTempRange(question string) tempRange {
	if m := reBelow.FindStringSubmatch(question); m != nil {
		v, _ := strconv.Atoi(m[1])
		return tempRange{max: &v}
	}
	if m := reAbove.FindStringSubmatch(question); m != nil {
		v, _ := strconv.Atoi(m[1])
		return tempRange{min: &v}
	}
	if m := reBetween.FindStringSubmatch(question); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return tempRange{min: &lo, max: &hi}
	}
	if m := reExact.FindStringSubmatch(question); m != nil {
		v, _ := strconv.Atoi(m[1])
		return tempRange{min: &v, max: &v}
	}
	return tempRange{}
}

// matchWeather pairs temperature-bucket markets whose ranges are exactly
// equal on both bounds. Confidence 0.9: range parsing is reliable but the
// venues occasionally phrase the terminal buckets differently.
func (m *Matcher) matchWeather(ev types.MatchedEvent) []types.MarketPair {
	type parsed struct {
		mk types.MarketShell
		r  tempRange
	}

	var polyRanges []parsed
	for _, mk := range ev.Poly.Markets {
		if r := parseTempRange(mk.Question); r.valid() {
			polyRanges = append(polyRanges, parsed{mk, r})
		}
	}

	var pairs []types.MarketPair
	for _, km := range ev.Kalshi.Markets {
		kr := parseTempRange(km.Question)
		if !kr.valid() {
			continue
		}
		for _, pp := range polyRanges {
			if !pp.r.equal(kr) {
				continue
			}
			pairs = append(pairs, types.NewMarketPair(pp.r.String(), types.CategoryWeather,
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
				0.9,
			))
			break
		}
	}
	return pairs
}

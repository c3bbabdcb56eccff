package match

import (
	"strings"

	"arb-scanner/pkg/types"
)

// moneylineExcluded lists substrings that mark a Polymarket NBA question as
// a prop, spread, total, or period market rather than the full-game
// moneyline. Checked as plain substrings.
var moneylineExcluded = []string{
	"spread", "total", "points", "o/u", "margin", "quarter", "half",
	"double", "triple", "rebounds", "assists", "+",
}

// moneylineExcludedWords are exclusion keywords matched only as whole words;
// "over" as a substring would reject the Thunder.
var moneylineExcludedWords = []string{"over", "under", "first", "second", "three"}

// findMoneyline locates the single full-game moneyline market: the question
// contains "vs." and none of the prop/period markers.
func findMoneyline(markets []types.MarketShell) (types.MarketShell, bool) {
	for _, mk := range markets {
		q := strings.ToLower(mk.Question)
		if !strings.Contains(q, "vs.") && !strings.Contains(q, " vs ") {
			continue
		}
		excluded := false
		for _, sub := range moneylineExcluded {
			if strings.Contains(q, sub) {
				excluded = true
				break
			}
		}
		if !excluded {
			for _, w := range moneylineExcludedWords {
				if containsWord(mk.Question, w) {
					excluded = true
					break
				}
			}
		}
		if !excluded {
			return mk, true
		}
	}
	return types.MarketShell{}, false
}

// questionPosition returns the index at which the team is first mentioned in
// the question, searching full name, city, nickname, then code, or -1.
func questionPosition(question string, t Team) int {
	q := strings.ToLower(question)
	for _, needle := range []string{
		strings.ToLower(t.Name()),
		strings.ToLower(t.City),
		strings.ToLower(t.Nickname),
	} {
		if i := strings.Index(q, needle); i >= 0 {
			return i
		}
	}
	if containsWord(question, t.Code) {
		return strings.Index(strings.ToUpper(question), t.Code)
	}
	return -1
}

// parseGameTicker recovers (awayCode, homeCode) from an NBA event ticker of
// the form SERIES-yyMONddAWYHOM. The away team comes first in the suffix.
func parseGameTicker(eventTicker string) (away, home string, ok bool) {
	i := strings.LastIndex(eventTicker, "-")
	if i < 0 {
		return "", "", false
	}
	tail := eventTicker[i+1:]
	// yy(2) MON(3) dd(2) AWY(3) HOM(3)
	if len(tail) != 13 {
		return "", "", false
	}
	away, home = tail[7:10], tail[10:13]
	if _, found := TeamByCode(away); !found {
		return "", "", false
	}
	if _, found := TeamByCode(home); !found {
		return "", "", false
	}
	return away, home, true
}

// matchNBAGame pairs one NBA game's moneyline across venues, emitting one
// pair per team.
//
// The Polymarket question lists the teams in arbitrary order and its
// yesPrice belongs to whichever team appears first, so the matcher resolves
// each team's position by searching the question (full name, city, nickname,
// code, in that order). If only one team is found it is assumed first; if
// neither is found the away team is assumed first and a warning is logged.
// The token-id pair is question-ordered too and is reassigned so each
// emitted pair's TokenIDs[0] is its own team's YES token.
func (m *Matcher) matchNBAGame(ev types.MatchedEvent) []types.MarketPair {
	awayCode, homeCode, ok := parseGameTicker(ev.Entry.KalshiTicker)
	if !ok {
		m.logger.Warn("unparseable nba game ticker", "ticker", ev.Entry.KalshiTicker)
		return nil
	}
	awayTeam, _ := TeamByCode(awayCode)
	homeTeam, _ := TeamByCode(homeCode)

	moneyline, found := findMoneyline(ev.Poly.Markets)
	if !found || len(moneyline.TokenIDs) < 2 {
		return nil
	}

	awayK, awayOK := marketByTickerSuffix(ev.Kalshi.Markets, awayCode)
	homeK, homeOK := marketByTickerSuffix(ev.Kalshi.Markets, homeCode)
	if !awayOK || !homeOK {
		return nil
	}

	awayPos := questionPosition(moneyline.Question, awayTeam)
	homePos := questionPosition(moneyline.Question, homeTeam)

	awayFirst := true
	switch {
	case awayPos >= 0 && homePos >= 0:
		awayFirst = awayPos < homePos
	case homePos >= 0:
		awayFirst = false
	case awayPos < 0:
		m.logger.Warn("neither team found in question, assuming away first",
			"question", moneyline.Question, "away", awayCode, "home", homeCode)
	}

	firstYes := moneyline.YesPrice
	awayYes, homeYes := firstYes, 1-firstYes
	awayTokens := []string{moneyline.TokenIDs[0], moneyline.TokenIDs[1]}
	homeTokens := []string{moneyline.TokenIDs[1], moneyline.TokenIDs[0]}
	if !awayFirst {
		awayYes, homeYes = 1-firstYes, firstYes
		awayTokens, homeTokens = homeTokens, awayTokens
	}

	mkPair := func(team Team, yes float64, tokens []string, km types.MarketShell) types.MarketPair {
		return types.NewMarketPair(team.Name(), types.CategoryNBAGame,
			types.PolyQuote{
				Question: moneyline.Question,
				YesPrice: yes,
				NoPrice:  1 - yes,
				TokenIDs: tokens,
				EndDate:  moneyline.EndDate,
			},
			types.KalshiQuote{
				Question: km.Question,
				YesPrice: km.YesPrice,
				NoPrice:  km.NoPrice,
				Ticker:   km.Ticker,
				EndDate:  km.EndDate,
			},
			1.0,
		)
	}

	return []types.MarketPair{
		mkPair(awayTeam, awayYes, awayTokens, awayK),
		mkPair(homeTeam, homeYes, homeTokens, homeK),
	}
}

func marketByTickerSuffix(markets []types.MarketShell, code string) (types.MarketShell, bool) {
	for _, mk := range markets {
		if strings.HasSuffix(strings.ToUpper(mk.Ticker), code) {
			return mk, true
		}
	}
	return types.MarketShell{}, false
}

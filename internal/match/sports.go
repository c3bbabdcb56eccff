package match

import (
	"strings"

	"arb-scanner/pkg/types"
)

var leagueKeywords = []string{"nfl", "nba", "nhl", "mlb", "soccer"}

// detectLeague picks the league from keywords in the event name. Empty when
// no keyword matches.
func detectLeague(eventName string) string {
	name := strings.ToLower(eventName)
	for _, kw := range leagueKeywords {
		if strings.Contains(name, kw) {
			return kw
		}
	}
	return ""
}

// canonicalTeam normalizes a market question to a canonical team name via
// the alias table. The longest matching alias wins; an alias equal to the
// canonical name itself beats any longer non-canonical alias. Empty when no
// alias matches.
func canonicalTeam(question string, aliases map[string]string) string {
	q := strings.ToLower(question)

	var best string
	var bestLen int
	var bestCanonical bool
	for alias, canonical := range aliases {
		if !strings.Contains(q, alias) {
			continue
		}
		isCanonical := alias == strings.ToLower(canonical)
		if isCanonical && !bestCanonical {
			best, bestLen, bestCanonical = canonical, len(alias), true
			continue
		}
		if isCanonical == bestCanonical && len(alias) > bestLen {
			best, bestLen = canonical, len(alias)
		}
	}
	return best
}

// matchSports pairs championship-style markets by canonical team name. Each
// venue's markets are bucketed by team; teams present on both sides emit
// one pair.
func (m *Matcher) matchSports(ev types.MatchedEvent) []types.MarketPair {
	league := detectLeague(ev.Poly.Title)
	if league == "" {
		league = detectLeague(ev.Entry.Name)
	}

	aliases := m.aliases[league]
	if aliases == nil {
		// No league keyword found; try every table.
		aliases = make(map[string]string)
		for _, tbl := range m.aliases {
			for a, c := range tbl {
				aliases[a] = c
			}
		}
	}

	polyByTeam := make(map[string]types.MarketShell)
	for _, mk := range ev.Poly.Markets {
		if team := canonicalTeam(mk.Question, aliases); team != "" {
			polyByTeam[team] = mk
		}
	}

	var pairs []types.MarketPair
	for _, km := range ev.Kalshi.Markets {
		team := canonicalTeam(NormalizeKalshiTitle(km.Question), aliases)
		if team == "" {
			continue
		}
		pm, ok := polyByTeam[team]
		if !ok {
			continue
		}
		pairs = append(pairs, types.NewMarketPair(team, types.CategorySports,
			types.PolyQuote{
				Question: pm.Question,
				YesPrice: pm.YesPrice,
				NoPrice:  pm.NoPrice,
				TokenIDs: pm.TokenIDs,
				EndDate:  pm.EndDate,
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
	}
	return pairs
}

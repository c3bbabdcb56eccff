// Package match pairs semantically equivalent binary markets inside one
// matched event. The matcher dispatches on the catalog entry's category:
// sports moneylines pair by canonical team name, weather markets by exact
// temperature range, finance markets by monetary-policy action, and NBA
// games by team with question-order disambiguation.
package match

import (
	"log/slog"
	"regexp"
	"strings"

	"arb-scanner/internal/matchcache"
	"arb-scanner/pkg/types"
)

// VerdictSource supplies prior human review of pairings, keyed by the
// Polymarket YES token (or question, when no token is known) and the
// Kalshi market ticker.
type VerdictSource interface {
	Verdict(polyID, kalshiID string) matchcache.Verdict
}

// Matcher produces market pairs from matched events.
type Matcher struct {
	aliases  map[string]map[string]string // league -> lowercase alias -> canonical
	verdicts VerdictSource                // nil when no match cache is attached
	logger   *slog.Logger
}

// New creates a matcher with the built-in team alias tables.
func New(logger *slog.Logger) *Matcher {
	return &Matcher{
		aliases: defaultAliases,
		logger:  logger.With("component", "matcher"),
	}
}

// UseVerdicts attaches a match cache. Rejected pairings are dropped from
// every subsequent Pairs call; confirmed ones get full confidence.
func (m *Matcher) UseVerdicts(v VerdictSource) { m.verdicts = v }

// Pairs runs the category-appropriate sub-matcher and enriches the results
// with event-level metadata. Returns nil when either venue shell is missing.
func (m *Matcher) Pairs(ev types.MatchedEvent) []types.MarketPair {
	if ev.Poly == nil || ev.Kalshi == nil {
		return nil
	}

	var pairs []types.MarketPair
	switch ev.Entry.Category {
	case types.CategorySports:
		pairs = m.matchSports(ev)
	case types.CategoryWeather:
		pairs = m.matchWeather(ev)
	case types.CategoryFinance:
		pairs = m.matchFinance(ev)
	case types.CategoryNBAGame:
		pairs = m.matchNBAGame(ev)
	default:
		m.logger.Debug("no matcher for category", "category", ev.Entry.Category)
		return nil
	}

	for i := range pairs {
		m.enrich(&pairs[i], ev)
	}
	return m.applyVerdicts(pairs)
}

// applyVerdicts filters pairs through the attached match cache, if any.
func (m *Matcher) applyVerdicts(pairs []types.MarketPair) []types.MarketPair {
	if m.verdicts == nil {
		return pairs
	}
	kept := pairs[:0]
	for _, p := range pairs {
		switch m.verdicts.Verdict(polyPairID(p), p.Kalshi.Ticker) {
		case matchcache.VerdictRejected:
			m.logger.Debug("pair rejected by match cache",
				"entity", p.MatchedEntity, "kalshi", p.Kalshi.Ticker)
		case matchcache.VerdictConfirmed:
			p.Confidence = 1.0
			kept = append(kept, p)
		default:
			kept = append(kept, p)
		}
	}
	return kept
}

// polyPairID identifies the Polymarket half of a pair for the match cache.
func polyPairID(p types.MarketPair) string {
	if len(p.Poly.TokenIDs) > 0 {
		return p.Poly.TokenIDs[0]
	}
	return p.Poly.Question
}

// enrich fills event-level metadata on a pair after the sub-matcher built
// its price core.
func (m *Matcher) enrich(p *types.MarketPair, ev types.MatchedEvent) {
	p.Category = ev.Entry.Category
	if p.EventName == "" {
		if ev.Poly.Title != "" {
			p.EventName = ev.Poly.Title
		} else {
			p.EventName = ev.Entry.Name
		}
	}
	if p.Poly.Slug == "" {
		p.Poly.Slug = ev.Entry.PolySlug
	}
	if p.Kalshi.SeriesTicker == "" {
		p.Kalshi.SeriesTicker = ev.Entry.KalshiSeries
	}
	if p.Kalshi.ImageURL == "" {
		p.Kalshi.ImageURL = ev.Kalshi.ImageURL
	}
}

// kalshiTrailingYear matches a four-digit year directly after a month name
// or a quarter marker, at the end of the title.
var kalshiTrailingYear = regexp.MustCompile(
	`\b(January|February|March|April|May|June|July|August|September|October|November|December|Q[1-4])\s+(\d{4})(\?|\s*$)`)

// NormalizeKalshiTitle strips a trailing year from a Kalshi title when it
// directly follows a month or quarter ("in January 2026?" becomes
// "in January?"). Years in other positions, such as "before 2027?", are
// left intact.
func NormalizeKalshiTitle(title string) string {
	return kalshiTrailingYear.ReplaceAllString(title, "$1$3")
}

// containsWord reports whether s contains w as a whole word,
// case-insensitively. Used for exclusion keywords like "over" that would
// otherwise match inside team names ("Thunder").
func containsWord(s, w string) bool {
	ls, lw := strings.ToLower(s), strings.ToLower(w)
	idx := 0
	for {
		i := strings.Index(ls[idx:], lw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(lw)
		beforeOK := start == 0 || !isWordChar(ls[start-1])
		afterOK := end == len(ls) || !isWordChar(ls[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '\''
}

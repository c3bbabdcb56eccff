// Package catalog expands static and date-templated mappings into concrete
// (Polymarket slug, Kalshi ticker, series) tuples for the scanner.
//
// Two generators exist:
//
//   - Yearly: one entry per mapping with a four-digit year substituted into
//     both identifiers, e.g. championship markets.
//   - Dynamic: one entry per mapping per day, over a configurable window of
//     consecutive days starting today. Polymarket slugs substitute {year},
//     {month} (full name), {day}; Kalshi tickers substitute {yy}, {MON}
//     (three-letter upper), {dd} (zero-padded).
//
// Entries are regenerated on every scan; nothing here persists. NBA game
// entries are built separately by the scanner from the live Kalshi market
// list (see NBAGameEntry) because game schedules cannot be templated.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"arb-scanner/pkg/types"
)

// YearlyMapping is a fixed pairing parameterized only by year.
type YearlyMapping struct {
	Name          string
	Category      types.Category
	PolyPattern   string // substitutes {year}
	KalshiPattern string // substitutes {yy}
	KalshiSeries  string
}

// DynamicMapping is a pairing regenerated for each scan day.
type DynamicMapping struct {
	Name          string
	Category      types.Category
	PolyPattern   string // substitutes {year}, {month}, {day}
	KalshiPattern string // substitutes {yy}, {MON}, {dd}
	KalshiSeries  string
}

// Generator expands the mapping tables into catalog entries.
type Generator struct {
	yearly  []YearlyMapping
	dynamic []DynamicMapping
	days    int
	now     func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithMappings replaces the built-in mapping tables.
func WithMappings(yearly []YearlyMapping, dynamic []DynamicMapping) Option {
	return func(g *Generator) {
		g.yearly = yearly
		g.dynamic = dynamic
	}
}

// New creates a generator covering the given number of consecutive days
// (today inclusive) for dynamic mappings.
func New(days int, opts ...Option) *Generator {
	g := &Generator{
		yearly:  defaultYearly,
		dynamic: defaultDynamic,
		days:    days,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate expands all mappings into concrete catalog entries.
func (g *Generator) Generate() []types.CatalogEntry {
	now := g.now()
	entries := make([]types.CatalogEntry, 0, len(g.yearly)+len(g.dynamic)*g.days)

	for _, m := range g.yearly {
		entries = append(entries, types.CatalogEntry{
			Name:         fmt.Sprintf("%s %d", m.Name, now.Year()),
			Category:     m.Category,
			Type:         types.EntryStatic,
			PolySlug:     expandYearly(m.PolyPattern, now),
			KalshiTicker: expandYearly(m.KalshiPattern, now),
			KalshiSeries: m.KalshiSeries,
		})
	}

	for day := 0; day < g.days; day++ {
		date := now.AddDate(0, 0, day)
		for _, m := range g.dynamic {
			entries = append(entries, types.CatalogEntry{
				Name:         fmt.Sprintf("%s %s", m.Name, date.Format("Jan 2")),
				Category:     m.Category,
				Type:         types.EntryDynamic,
				PolySlug:     ExpandPolySlug(m.PolyPattern, date),
				KalshiTicker: ExpandKalshiTicker(m.KalshiPattern, date),
				KalshiSeries: m.KalshiSeries,
				Date:         date,
			})
		}
	}

	return entries
}

// ExpandPolySlug substitutes {year}, {month}, {day} into a Polymarket slug
// pattern. Months are full lowercase names, days are unpadded.
func ExpandPolySlug(pattern string, date time.Time) string {
	r := strings.NewReplacer(
		"{year}", fmt.Sprintf("%d", date.Year()),
		"{month}", strings.ToLower(date.Month().String()),
		"{day}", fmt.Sprintf("%d", date.Day()),
	)
	return r.Replace(pattern)
}

// ExpandKalshiTicker substitutes {yy}, {MON}, {dd} into a Kalshi ticker
// pattern. Years are two-digit, months three-letter upper, days zero-padded.
func ExpandKalshiTicker(pattern string, date time.Time) string {
	r := strings.NewReplacer(
		"{yy}", fmt.Sprintf("%02d", date.Year()%100),
		"{MON}", strings.ToUpper(date.Format("Jan")),
		"{dd}", fmt.Sprintf("%02d", date.Day()),
	)
	return r.Replace(pattern)
}

func expandYearly(pattern string, now time.Time) string {
	r := strings.NewReplacer(
		"{year}", fmt.Sprintf("%d", now.Year()),
		"{yy}", fmt.Sprintf("%02d", now.Year()%100),
	)
	return r.Replace(pattern)
}

// NBAGameEntry builds a catalog entry for one NBA game discovered from the
// Kalshi market list. The Kalshi event ticker has the form
// SERIES-yyMONdd(AWAY)(HOME); the Polymarket slug follows
// nba-{away}-{home}-{year}-{month}-{day} with lowercase team codes.
func NBAGameEntry(awayCode, homeCode, kalshiEventTicker string, date time.Time) types.CatalogEntry {
	slug := fmt.Sprintf("nba-%s-%s-%d-%02d-%02d",
		strings.ToLower(awayCode), strings.ToLower(homeCode),
		date.Year(), int(date.Month()), date.Day())

	return types.CatalogEntry{
		Name:         fmt.Sprintf("NBA %s @ %s %s", awayCode, homeCode, date.Format("Jan 2")),
		Category:     types.CategoryNBAGame,
		Type:         types.EntryDynamic,
		PolySlug:     slug,
		KalshiTicker: kalshiEventTicker,
		KalshiSeries: NBAGameSeries,
		Date:         date,
	}
}

// NBAGameSeries is the Kalshi series carrying single-game NBA moneylines.
const NBAGameSeries = "KXNBAGAME"

// ParseNBAEventTicker splits an NBA event ticker SERIES-yyMONddAWYHOM into
// its team codes and game date. The parse is structural; the codes are
// validated against the team table by the matcher.
func ParseNBAEventTicker(eventTicker string) (away, home string, date time.Time, ok bool) {
	i := strings.LastIndex(eventTicker, "-")
	if i < 0 {
		return "", "", time.Time{}, false
	}
	tail := eventTicker[i+1:]
	if len(tail) != 13 {
		return "", "", time.Time{}, false
	}
	d, err := time.Parse("06Jan02", tail[:7])
	if err != nil {
		return "", "", time.Time{}, false
	}
	return tail[7:10], tail[10:13], d, true
}

// Built-in mapping tables. Weather cities mirror the Kalshi daily-high
// series; finance tracks the Fed rate decision; yearly entries cover the
// championship markets both venues list.
var defaultYearly = []YearlyMapping{
	{
		Name:          "NBA Championship",
		Category:      types.CategorySports,
		PolyPattern:   "nba-champion-{year}",
		KalshiPattern: "KXNBASERIES-{yy}",
		KalshiSeries:  "KXNBASERIES",
	},
	{
		Name:          "Super Bowl Champion",
		Category:      types.CategorySports,
		PolyPattern:   "super-bowl-champion-{year}",
		KalshiPattern: "KXSB-{yy}",
		KalshiSeries:  "KXSB",
	},
	{
		Name:          "Stanley Cup Champion",
		Category:      types.CategorySports,
		PolyPattern:   "stanley-cup-champion-{year}",
		KalshiPattern: "KXNHLSERIES-{yy}",
		KalshiSeries:  "KXNHLSERIES",
	},
}

var defaultDynamic = []DynamicMapping{
	{
		Name:          "NYC high temperature",
		Category:      types.CategoryWeather,
		PolyPattern:   "highest-temperature-in-nyc-on-{month}-{day}",
		KalshiPattern: "KXHIGHNY-{yy}{MON}{dd}",
		KalshiSeries:  "KXHIGHNY",
	},
	{
		Name:          "LA high temperature",
		Category:      types.CategoryWeather,
		PolyPattern:   "highest-temperature-in-la-on-{month}-{day}",
		KalshiPattern: "KXHIGHLAX-{yy}{MON}{dd}",
		KalshiSeries:  "KXHIGHLAX",
	},
	{
		Name:          "Chicago high temperature",
		Category:      types.CategoryWeather,
		PolyPattern:   "highest-temperature-in-chicago-on-{month}-{day}",
		KalshiPattern: "KXHIGHCHI-{yy}{MON}{dd}",
		KalshiSeries:  "KXHIGHCHI",
	},
	{
		Name:          "Miami high temperature",
		Category:      types.CategoryWeather,
		PolyPattern:   "highest-temperature-in-miami-on-{month}-{day}",
		KalshiPattern: "KXHIGHMIA-{yy}{MON}{dd}",
		KalshiSeries:  "KXHIGHMIA",
	},
	{
		Name:          "Fed rate decision",
		Category:      types.CategoryFinance,
		PolyPattern:   "fed-decision-in-{month}",
		KalshiPattern: "KXFEDDECISION-{yy}{MON}",
		KalshiSeries:  "KXFEDDECISION",
	},
}

// Package dto projects internal opportunity records into the external
// shape served by the HTTP adapter and printed by the CLI. Projection is a
// pure function: the same opportunity and scan time always produce the
// same DTO.
package dto

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"arb-scanner/pkg/types"
)

// Static fee estimates shown to consumers. They are display-only and play
// no part in the arbitrage math.
const (
	EstimatedPolyFeePct   = 2.0
	EstimatedKalshiFeePct = 1.0
)

const maxIDLength = 64

// Opportunity is the external DTO.
type Opportunity struct {
	ID              string     `json:"id"`
	EventName       string     `json:"eventName"`
	Entity          string     `json:"entity"`
	Category        string     `json:"category"`
	ImageURL        string     `json:"imageUrl,omitempty"`
	Type            string     `json:"type"`
	SpreadPct       float64    `json:"spreadPct"`
	Action          string     `json:"action"`
	PotentialProfit float64    `json:"potentialProfit"`
	MaxInvestment   float64    `json:"maxInvestment"`
	ResolutionDate  *time.Time `json:"resolutionDate,omitempty"`
	Fees            Fees       `json:"fees"`
	Prices          Prices     `json:"prices"`
	PolymarketURL   string     `json:"polymarketUrl,omitempty"`
	KalshiURL       string     `json:"kalshiUrl,omitempty"`
	Liquidity       *Liquidity `json:"liquidity,omitempty"`
	ROI             float64    `json:"roi"`
	APR             float64    `json:"apr,omitempty"`
	ScannedAt       time.Time  `json:"scannedAt"`
}

// Fees are static estimated venue fees in percent.
type Fees struct {
	PolymarketPct float64 `json:"polymarketPct"`
	KalshiPct     float64 `json:"kalshiPct"`
}

// Prices is the last-trade snapshot plus the order-book view when a
// liquidity analysis ran.
type Prices struct {
	PolyYes   float64   `json:"polyYes"`
	PolyNo    float64   `json:"polyNo"`
	KalshiYes float64   `json:"kalshiYes"`
	KalshiNo  float64   `json:"kalshiNo"`
	OrderBook *BookView `json:"orderBook,omitempty"`
}

// BookView summarizes the executable side of both books.
type BookView struct {
	BestPolyAsk   float64 `json:"bestPolyAsk"`
	BestKalshiAsk float64 `json:"bestKalshiAsk"`
	Cost          float64 `json:"cost"`
	PolyDepth     float64 `json:"polyDepth"`
	KalshiDepth   float64 `json:"kalshiDepth"`
}

// Liquidity is the projected analysis summary.
type Liquidity struct {
	Status       string  `json:"status"`
	LimitedBy    string  `json:"limitedBy"`
	MaxContracts float64 `json:"maxContracts"`
	MaxProfit    float64 `json:"maxProfit"`
	AvgProfitPct float64 `json:"avgProfitPct"`
}

// Project converts one opportunity. The spread shown is order-book-derived
// when a liquidity analysis is present, last-trade-derived otherwise.
func Project(o types.OpportunityWithLiquidity, scannedAt time.Time) Opportunity {
	pair := o.Pair

	out := Opportunity{
		ID:        makeID(pair.EventName, pair.MatchedEntity),
		EventName: pair.EventName,
		Entity:    pair.MatchedEntity,
		Category:  string(pair.Category),
		ImageURL:  pair.Kalshi.ImageURL,
		Type:      string(o.Type),
		SpreadPct: o.ProfitPct,
		Action:    simplifyAction(o),
		Fees: Fees{
			PolymarketPct: EstimatedPolyFeePct,
			KalshiPct:     EstimatedKalshiFeePct,
		},
		Prices: Prices{
			PolyYes:   pair.Poly.YesPrice,
			PolyNo:    pair.Poly.NoPrice,
			KalshiYes: pair.Kalshi.YesPrice,
			KalshiNo:  pair.Kalshi.NoPrice,
		},
		PolymarketURL: polymarketURL(pair.Poly.Slug),
		KalshiURL:     kalshiURL(pair.Kalshi.SeriesTicker, pair.Kalshi.Ticker),
		ScannedAt:     scannedAt,
	}

	if d := earliestDate(pair.Poly.EndDate, pair.Kalshi.EndDate); !d.IsZero() {
		out.ResolutionDate = &d
	}

	if l := o.Liquidity; l != nil {
		if l.OrderBookCost > 0 {
			out.SpreadPct = (1 - l.OrderBookCost) * 100
		}
		out.PotentialProfit = l.MaxProfit
		out.MaxInvestment = l.MaxInvestment
		out.Prices.OrderBook = &BookView{
			BestPolyAsk:   l.BestPolyAsk,
			BestKalshiAsk: l.BestKalshiAsk,
			Cost:          l.OrderBookCost,
			PolyDepth:     l.PolyDepth,
			KalshiDepth:   l.KalshiDepth,
		}
		out.Liquidity = &Liquidity{
			Status:       liquidityStatus(l),
			LimitedBy:    string(l.LimitedBy),
			MaxContracts: l.MaxContracts,
			MaxProfit:    l.MaxProfit,
			AvgProfitPct: l.AvgProfitPct,
		}
		if l.MaxInvestment > 0 {
			out.ROI = l.MaxProfit / l.MaxInvestment * 100
		}
	}

	if out.ROI > 0 && out.ResolutionDate != nil {
		days := out.ResolutionDate.Sub(scannedAt).Hours() / 24
		if days > 0 {
			out.APR = out.ROI * (365 / days)
		}
	}

	return out
}

// ProjectAll converts a scan's opportunities and sorts them by spread
// descending.
func ProjectAll(opps []types.OpportunityWithLiquidity, scannedAt time.Time) []Opportunity {
	out := make([]Opportunity, len(opps))
	for i, o := range opps {
		out[i] = Project(o, scannedAt)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SpreadPct > out[j].SpreadPct })
	return out
}

// makeID slugs "event-entity" and trims it to a stable maximum length.
func makeID(event, entity string) string {
	s := slugify(event + "-" + entity)
	if len(s) > maxIDLength {
		s = s[:maxIDLength]
	}
	return strings.Trim(s, "-")
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func simplifyAction(o types.OpportunityWithLiquidity) string {
	if o.Type == types.OpportunityGuaranteed {
		return o.Action
	}
	if o.Pair.Poly.YesPrice < o.Pair.Kalshi.YesPrice {
		return "Buy on Polymarket"
	}
	return "Buy on Kalshi"
}

func liquidityStatus(l *types.LiquidityAnalysis) string {
	switch {
	case l.LimitedBy == types.LimitedByNoLiquidity:
		return "no_books"
	case l.LimitedBy == types.LimitedBySpreadClosed:
		return "closed"
	case l.MaxProfit > 0:
		return "executable"
	default:
		return "unprofitable"
	}
}

func earliestDate(a, b time.Time) time.Time {
	switch {
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	case b.Before(a):
		return b
	default:
		return a
	}
}

// polymarketURL builds the public event page URL.
func polymarketURL(slug string) string {
	if slug == "" {
		return ""
	}
	return "https://polymarket.com/event/" + slug
}

// seriesSlugs maps Kalshi series tickers to their URL path segments. Series
// missing here fall back to the lowercased ticker.
var seriesSlugs = map[string]string{
	"KXNBAGAME":     "professional-basketball-game",
	"KXNBASERIES":   "professional-basketball-championship",
	"KXHIGHNY":      "highest-temperature-in-nyc",
	"KXHIGHLAX":     "highest-temperature-in-la",
	"KXHIGHCHI":     "highest-temperature-in-chicago",
	"KXHIGHMIA":     "highest-temperature-in-miami",
	"KXFEDDECISION": "fed-decision",
}

// kalshiURL builds the public market page URL. For NBA game tickers of the
// form SERIES-DATE-TEAM the trailing team segment is stripped to obtain
// the event ticker.
func kalshiURL(series, ticker string) string {
	if series == "" || ticker == "" {
		return ""
	}
	eventTicker := ticker
	if series == "KXNBAGAME" {
		if i := strings.LastIndex(ticker, "-"); i > len(series) {
			eventTicker = ticker[:i]
		}
	}
	slug, ok := seriesSlugs[series]
	if !ok {
		slug = strings.ToLower(series)
	}
	return fmt.Sprintf("https://kalshi.com/markets/%s/%s/%s",
		strings.ToLower(series), slug, strings.ToLower(eventTicker))
}

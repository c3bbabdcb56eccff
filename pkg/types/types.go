// Package types defines shared data structures used across all packages.
//
// This package is the common vocabulary for the scanner — catalog entries,
// market and event shells, matched pairs, arbitrage opportunities, liquidity
// analyses, and normalized order books. It has no dependencies on internal
// packages, so it can be imported by any layer.
//
// All prices are probabilities in [0,1]. Polymarket quotes arrive in
// thousandths of a dollar and Kalshi quotes in cents; both are normalized at
// the venue-client edge before they reach anything in this package.
package types

import (
	"math"
	"time"
)

// ————————————————————————————————————————————————————————————————————————
// Core enums
// ————————————————————————————————————————————————————————————————————————

// Category classifies a catalog entry and selects the intra-event matcher.
type Category string

const (
	CategorySports  Category = "sports"
	CategoryWeather Category = "weather"
	CategoryFinance Category = "finance"
	CategoryNBAGame Category = "nba_game"
	CategoryOther   Category = "other"
)

// EntryType distinguishes fixed pairings from date-templated ones.
type EntryType string

const (
	EntryStatic  EntryType = "static"
	EntryDynamic EntryType = "dynamic"
)

// OpportunityType classifies how a cross-venue position profits.
//
//   - Guaranteed: min(p.yes+k.no, k.yes+p.no) < 1 — risk-free payoff.
//   - Simple: a directional spread bet without guaranteed payoff.
type OpportunityType string

const (
	OpportunityGuaranteed OpportunityType = "guaranteed"
	OpportunitySimple     OpportunityType = "simple"
)

// LimitingFactor tags what stopped the liquidity walk.
type LimitingFactor string

const (
	LimitedByPolyLiquidity   LimitingFactor = "p_liquidity"
	LimitedByKalshiLiquidity LimitingFactor = "k_liquidity"
	LimitedBySpreadExhausted LimitingFactor = "spread_exhausted"
	LimitedBySpreadClosed    LimitingFactor = "spread_closed"
	LimitedByNoLiquidity     LimitingFactor = "no_liquidity"
)

// ————————————————————————————————————————————————————————————————————————
// Catalog
// ————————————————————————————————————————————————————————————————————————

// CatalogEntry names one candidate cross-venue event pairing: a Polymarket
// slug and a Kalshi ticker (plus series) that should describe the same
// real-world event. Entries are regenerated on every scan; nothing persists.
type CatalogEntry struct {
	Name         string    // human-readable label, e.g. "NYC high temp Jul 4"
	Category     Category  // selects the market matcher
	Type         EntryType // static or dynamic (date-templated)
	PolySlug     string    // Polymarket event slug
	KalshiTicker string    // Kalshi event ticker
	KalshiSeries string    // Kalshi series ticker, empty if not needed
	Date         time.Time // zero for static entries
}

// ————————————————————————————————————————————————————————————————————————
// Events and markets
// ————————————————————————————————————————————————————————————————————————

// MarketShell is the venue-neutral view of one binary market inside an
// event. Exactly one of TokenIDs (Polymarket) or Ticker (Kalshi) is set;
// these are the sole identifiers needed to fetch the market's order book.
type MarketShell struct {
	Question string
	YesPrice float64 // probability, 0 when unknown
	NoPrice  float64 // probability; derivable as 1 - YesPrice
	Volume   float64
	EndDate  time.Time

	TokenIDs []string // Polymarket: [yesTokenID, noTokenID]
	Ticker   string   // Kalshi market ticker
}

// EventShell is what a venue catalog lookup returns: the event title and
// its binary markets. A nil *EventShell means the venue has no such event.
type EventShell struct {
	Title    string
	ImageURL string
	Markets  []MarketShell
}

// MatchedEvent couples the two venue shells for one catalog entry.
// Either shell may be nil when the venue fetch failed or found nothing;
// the matcher only runs when both are present.
type MatchedEvent struct {
	Entry  CatalogEntry
	Poly   *EventShell
	Kalshi *EventShell
}

// ————————————————————————————————————————————————————————————————————————
// Pairs and opportunities
// ————————————————————————————————————————————————————————————————————————

// PolyQuote is the Polymarket half of a matched pair.
type PolyQuote struct {
	Question string
	YesPrice float64
	NoPrice  float64
	TokenIDs []string // [yesTokenID, noTokenID], ordered for THIS side's outcome
	Slug     string
	EndDate  time.Time
}

// KalshiQuote is the Kalshi half of a matched pair.
type KalshiQuote struct {
	Question     string
	YesPrice     float64
	NoPrice      float64
	Ticker       string
	SeriesTicker string
	ImageURL     string
	EndDate      time.Time
}

// MarketPair is a pair of semantically equivalent binary markets across the
// two venues, produced by the intra-event matcher. Immutable after
// construction; Spread always equals |Poly.YesPrice - Kalshi.YesPrice|.
type MarketPair struct {
	MatchedEntity string // what the two markets agree on: team, range, action
	EventName     string
	Category      Category
	Poly          PolyQuote
	Kalshi        KalshiQuote
	Confidence    float64 // matcher confidence in [0,1]
	Spread        float64 // |Poly.YesPrice - Kalshi.YesPrice|
}

// NewMarketPair builds a pair with the spread invariant applied.
func NewMarketPair(entity string, category Category, p PolyQuote, k KalshiQuote, confidence float64) MarketPair {
	return MarketPair{
		MatchedEntity: entity,
		Category:      category,
		Poly:          p,
		Kalshi:        k,
		Confidence:    confidence,
		Spread:        math.Abs(p.YesPrice - k.YesPrice),
	}
}

// ArbitrageOpportunity is a classified pair. Exactly one Type applies;
// ties between guaranteed and simple resolve to guaranteed.
type ArbitrageOpportunity struct {
	Pair             MarketPair
	Type             OpportunityType
	ProfitPct        float64
	Action           string  // human-readable position, e.g. "Buy YES on Polymarket, NO on Kalshi"
	GuaranteedProfit float64 // per-contract risk-free profit; 0 unless Type is guaranteed
}

// ————————————————————————————————————————————————————————————————————————
// Liquidity
// ————————————————————————————————————————————————————————————————————————

// LiquidityLevel is one step of the dual order-book walk. Cumulative fields
// are prefix sums up to and including this level.
type LiquidityLevel struct {
	Contracts           float64
	PolyPrice           float64
	KalshiPrice         float64
	CostPerContract     float64
	ProfitPerContract   float64
	CumulativeContracts float64
	CumulativeCost      float64
	CumulativeProfit    float64
}

// LiquidityAnalysis is the result of walking both ask books for one
// opportunity: the maximum executable size, its cost and profit, and what
// limited it.
type LiquidityAnalysis struct {
	Opportunity   ArbitrageOpportunity
	MaxContracts  float64
	MaxInvestment float64
	MaxProfit     float64
	AvgProfitPct  float64
	Levels        []LiquidityLevel
	LimitedBy     LimitingFactor
	PolyDepth     float64 // total size on the Polymarket YES ask ladder
	KalshiDepth   float64 // total size on the Kalshi NO ask ladder
	BestPolyAsk   float64 // 0 when the ladder is empty
	BestKalshiAsk float64
	OrderBookCost float64 // BestPolyAsk + BestKalshiAsk, 0 when either ladder is empty
}

// OpportunityWithLiquidity is an opportunity optionally enriched by the
// liquidity analyzer. Liquidity is nil for pairs outside the top-N cut or
// with missing order-book identifiers.
type OpportunityWithLiquidity struct {
	ArbitrageOpportunity
	Liquidity *LiquidityAnalysis
}

// ————————————————————————————————————————————————————————————————————————
// Scan result
// ————————————————————————————————————————————————————————————————————————

// ScanResult is one complete scan: the matched events and the ranked
// opportunity list. An empty Opportunities slice with a non-zero ScannedAt
// is a valid "nothing found" result, not an error.
type ScanResult struct {
	Events        []MatchedEvent
	Opportunities []OpportunityWithLiquidity
	ScannedAt     time.Time
}

// Package scanner runs the batch scan pipeline: catalog generation,
// parallel event fetch with asymmetric venue concurrency, intra-event
// matching, arbitrage classification, and bounded liquidity fan-out.
//
// One scan at most is in flight at a time (singleflight); concurrent
// callers join it, including forceRefresh callers. Completed scans are
// served from cache for a TTL.
package scanner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"arb-scanner/internal/arb"
	"arb-scanner/internal/catalog"
	"arb-scanner/internal/config"
	"arb-scanner/internal/liquidity"
	"arb-scanner/internal/match"
	"arb-scanner/internal/venue/kalshi"
	"arb-scanner/pkg/types"
)

// PolyVenue is the Polymarket surface the scanner needs.
type PolyVenue interface {
	Event(ctx context.Context, slug string) *types.EventShell
	OrderBook(ctx context.Context, yesTokenID, noTokenID string) (*types.NormalizedOrderBook, error)
}

// KalshiVenue is the Kalshi surface the scanner needs.
type KalshiVenue interface {
	Event(ctx context.Context, ticker, series string) *types.EventShell
	SeriesMarkets(ctx context.Context, series string) ([]kalshi.Market, error)
	OrderBook(ctx context.Context, ticker string) (*types.NormalizedOrderBook, error)
}

// Scanner owns the scan pipeline, the result cache, and the in-flight
// handle. Construct one per process.
type Scanner struct {
	cfg     config.ScannerConfig
	poly    PolyVenue
	kalshi  KalshiVenue
	gen     *catalog.Generator
	matcher *match.Matcher
	calc    *arb.Calculator
	logger  *slog.Logger

	flight singleflight.Group

	cacheMu sync.Mutex
	cached  *types.ScanResult

	// Per-scan state, reset at the top of performScan. The NBA market list
	// is fetched once per scan and reused for every game event shell.
	nbaMu     sync.Mutex
	nbaByGame map[string][]kalshi.Market

	now func() time.Time
}

// New creates a scanner.
func New(cfg config.ScannerConfig, poly PolyVenue, k KalshiVenue, logger *slog.Logger) *Scanner {
	return &Scanner{
		cfg:     cfg,
		poly:    poly,
		kalshi:  k,
		gen:     catalog.New(cfg.Days),
		matcher: match.New(logger),
		calc:    arb.New(cfg.MinSpreadPct),
		logger:  logger.With("component", "scanner"),
		now:     time.Now,
	}
}

// Scan returns the most recent scan result, running a new scan when the
// cache is stale or forceRefresh is set. Concurrent callers share one
// underlying scan; forceRefresh joins an in-flight scan rather than
// displacing it.
func (s *Scanner) Scan(ctx context.Context, forceRefresh bool) (*types.ScanResult, error) {
	if !forceRefresh {
		if cached := s.freshResult(); cached != nil {
			return cached, nil
		}
	}

	v, err, _ := s.flight.Do("scan", func() (any, error) {
		result := s.performScan(ctx)
		s.cacheMu.Lock()
		s.cached = result
		s.cacheMu.Unlock()
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.ScanResult), nil
}

// UseMatchVerdicts attaches a match cache to the pair matcher. Call before
// the first Scan.
func (s *Scanner) UseMatchVerdicts(v match.VerdictSource) {
	s.matcher.UseVerdicts(v)
}

// Cached returns the last result without triggering a scan, or nil when
// nothing has been scanned yet.
func (s *Scanner) Cached() *types.ScanResult {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.cached
}

func (s *Scanner) freshResult() *types.ScanResult {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cached == nil {
		return nil
	}
	if s.now().Sub(s.cached.ScannedAt) >= s.cfg.CacheTTL {
		return nil
	}
	return s.cached
}

// performScan executes the full pipeline. Per-item fetch failures yield
// nil shells and the scan continues; the result is always valid, possibly
// with zero opportunities.
func (s *Scanner) performScan(ctx context.Context) *types.ScanResult {
	started := s.now()

	s.nbaMu.Lock()
	s.nbaByGame = nil
	s.nbaMu.Unlock()

	entries := s.gen.Generate()
	entries = append(entries, s.discoverNBAGames(ctx)...)
	s.logger.Info("scan started", "catalog_entries", len(entries))

	events := s.fetchEvents(ctx, entries)

	var pairs []types.MarketPair
	matchedBoth := 0
	for _, ev := range events {
		if ev.Poly != nil && ev.Kalshi != nil {
			matchedBoth++
		}
		pairs = append(pairs, s.matcher.Pairs(ev)...)
	}

	classified := s.calc.CalculateAll(pairs)
	opps := s.analyzeLiquidity(ctx, classified)

	result := &types.ScanResult{
		Events:        events,
		Opportunities: opps,
		ScannedAt:     s.now(),
	}
	s.logger.Info("scan finished",
		"events_matched", matchedBoth,
		"pairs", len(pairs),
		"opportunities", len(opps),
		"elapsed", s.now().Sub(started),
	)
	return result
}

// discoverNBAGames lists the NBA game series once and derives one catalog
// entry per game dated within the scan window. The market list is kept for
// building the Kalshi event shells without refetching.
func (s *Scanner) discoverNBAGames(ctx context.Context) []types.CatalogEntry {
	markets, err := s.kalshi.SeriesMarkets(ctx, catalog.NBAGameSeries)
	if err != nil {
		s.logger.Warn("nba game discovery failed", "error", err)
		return nil
	}

	byGame := make(map[string][]kalshi.Market)
	for _, m := range markets {
		if m.Status != "active" {
			continue
		}
		byGame[m.EventTicker] = append(byGame[m.EventTicker], m)
	}
	s.nbaMu.Lock()
	s.nbaByGame = byGame
	s.nbaMu.Unlock()

	today := s.now().Truncate(24 * time.Hour)
	horizon := today.AddDate(0, 0, s.cfg.Days)

	var entries []types.CatalogEntry
	for eventTicker := range byGame {
		away, home, date, ok := catalog.ParseNBAEventTicker(eventTicker)
		if !ok {
			continue
		}
		if date.Before(today) || !date.Before(horizon) {
			continue
		}
		entries = append(entries, catalog.NBAGameEntry(away, home, eventTicker, date))
	}
	return entries
}

// fetchEvents resolves both venue shells for every entry. Polymarket
// requests fan out unbounded; Kalshi requests are limited to a small
// number of concurrent connections because the venue rate-limits on
// connection count.
func (s *Scanner) fetchEvents(ctx context.Context, entries []types.CatalogEntry) []types.MatchedEvent {
	events := make([]types.MatchedEvent, len(entries))
	for i, e := range entries {
		events[i].Entry = e
	}

	var wg sync.WaitGroup
	for i := range events {
		wg.Add(1)
		go func(ev *types.MatchedEvent) {
			defer wg.Done()
			ev.Poly = s.poly.Event(ctx, ev.Entry.PolySlug)
		}(&events[i])
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.KalshiConcurrency)
	for i := range events {
		ev := &events[i]
		g.Go(func() error {
			if ev.Entry.Category == types.CategoryNBAGame {
				ev.Kalshi = s.nbaEventShell(ev.Entry.KalshiTicker)
			} else {
				ev.Kalshi = s.kalshi.Event(gctx, ev.Entry.KalshiTicker, ev.Entry.KalshiSeries)
			}
			return nil
		})
	}

	wg.Wait()
	g.Wait()
	return events
}

// nbaEventShell builds a Kalshi event shell for one game from the per-scan
// market list.
func (s *Scanner) nbaEventShell(eventTicker string) *types.EventShell {
	s.nbaMu.Lock()
	markets := s.nbaByGame[eventTicker]
	s.nbaMu.Unlock()
	if len(markets) == 0 {
		return nil
	}

	shell := &types.EventShell{Title: markets[0].Title}
	for _, m := range markets {
		if m.YesPrice <= 0 || m.YesPrice >= 1 {
			continue
		}
		shell.Markets = append(shell.Markets, types.MarketShell{
			Question: m.Title,
			YesPrice: m.YesPrice,
			NoPrice:  1 - m.YesPrice,
			Ticker:   m.Ticker,
			EndDate:  m.CloseTime,
		})
	}
	return shell
}

// analyzeLiquidity enriches the top-ranked opportunities with a dual
// order-book walk. Polymarket books are fetched fully in parallel; Kalshi
// books at bounded concurrency. Opportunities past the cut, or with
// missing identifiers, keep a nil liquidity block.
func (s *Scanner) analyzeLiquidity(ctx context.Context, classified []types.ArbitrageOpportunity) []types.OpportunityWithLiquidity {
	opps := make([]types.OpportunityWithLiquidity, len(classified))
	for i, o := range classified {
		opps[i].ArbitrageOpportunity = o
	}

	topN := s.cfg.TopLiquidity
	if topN > len(opps) {
		topN = len(opps)
	}

	pBooks := make([]*types.NormalizedOrderBook, topN)
	kBooks := make([]*types.NormalizedOrderBook, topN)

	var wg sync.WaitGroup
	for i := 0; i < topN; i++ {
		tokens := opps[i].Pair.Poly.TokenIDs
		if len(tokens) < 2 {
			continue
		}
		wg.Add(1)
		go func(i int, yesID, noID string) {
			defer wg.Done()
			ob, err := s.poly.OrderBook(ctx, yesID, noID)
			if err != nil {
				s.logger.Warn("poly book fetch failed", "error", err)
				return
			}
			pBooks[i] = ob
		}(i, tokens[0], tokens[1])
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.KalshiConcurrency)
	for i := 0; i < topN; i++ {
		i := i
		ticker := opps[i].Pair.Kalshi.Ticker
		if ticker == "" {
			continue
		}
		g.Go(func() error {
			ob, err := s.kalshi.OrderBook(gctx, ticker)
			if err != nil {
				s.logger.Warn("kalshi book fetch failed", "ticker", ticker, "error", err)
				return nil
			}
			kBooks[i] = ob
			return nil
		})
	}

	wg.Wait()
	g.Wait()

	for i := 0; i < topN; i++ {
		if pBooks[i] == nil || kBooks[i] == nil {
			continue
		}
		opps[i].Liquidity = liquidity.Analyze(opps[i].ArbitrageOpportunity, pBooks[i], kBooks[i], liquidity.Options{
			MinProfitPct: 0, // step filter off; fees reported separately
		})
	}
	return opps
}

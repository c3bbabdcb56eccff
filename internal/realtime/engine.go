// Package realtime detects arbitrage from streaming order books. Two
// stream clients (one per venue) feed per-pair book state; every update
// arms a per-pair debounce timer, and the evaluation runs once after the
// pair goes quiet. Opportunities are emitted as events when they appear,
// move by more than a threshold, or close.
package realtime

import (
	"log/slog"
	"sync"
	"time"

	"arb-scanner/internal/book"
	"arb-scanner/internal/config"
	"arb-scanner/internal/venue/kalshi"
	"arb-scanner/internal/venue/polymarket"
	"arb-scanner/pkg/types"
)

// Pair names one cross-venue market pairing to watch.
type Pair struct {
	ID           string
	PolyYesToken string
	PolyNoToken  string
	KalshiTicker string
}

// EventType tags engine emissions.
type EventType string

const (
	EventOpportunity       EventType = "opportunity"
	EventOpportunityClosed EventType = "opportunity_closed"
)

// Event is one engine emission. Price fields are set only for
// EventOpportunity.
type Event struct {
	Type            EventType
	PairID          string
	SpreadPct       float64
	MaxContracts    float64
	PotentialProfit float64
	At              time.Time
}

// PolyStream is the Polymarket stream surface the engine consumes.
type PolyStream interface {
	Subscribe(ids []string) error
	Snapshots() <-chan polymarket.Snapshot
	Deltas() <-chan polymarket.Delta
	Close() error
}

// KalshiStream is the Kalshi stream surface the engine consumes.
type KalshiStream interface {
	Subscribe(tickers []string) error
	Snapshots() <-chan kalshi.Snapshot
	Deltas() <-chan kalshi.Delta
	Close() error
}

// pairState holds one pair's mutable book state. Each Polymarket token has
// bid and ask ladders; Kalshi has resting bids per side. Books have a
// single writer (the engine loop) and are read by the evaluator.
type pairState struct {
	pair Pair

	yesTokBids *book.SideBook
	yesTokAsks *book.SideBook
	noTokBids  *book.SideBook
	noTokAsks  *book.SideBook

	kYesBids *book.SideBook
	kNoBids  *book.SideBook

	timer *time.Timer
}

// Engine owns the pair registry, the per-pair debounce timers, and the
// active-opportunity set.
type Engine struct {
	cfg    config.RealtimeConfig
	poly   PolyStream
	kalshi KalshiStream
	logger *slog.Logger

	mu           sync.Mutex
	pairs        map[string]*pairState
	tokenToPair  map[string]string  // poly asset id -> pair id
	tickerToPair map[string]string  // kalshi ticker -> pair id
	active       map[string]float64 // pair id -> last emitted spreadPct
	stopped      bool

	events chan Event
	done   chan struct{}
}

// New creates an engine over the two streams.
func New(cfg config.RealtimeConfig, poly PolyStream, k KalshiStream, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:          cfg,
		poly:         poly,
		kalshi:       k,
		logger:       logger.With("component", "realtime"),
		pairs:        make(map[string]*pairState),
		tokenToPair:  make(map[string]string),
		tickerToPair: make(map[string]string),
		active:       make(map[string]float64),
		events:       make(chan Event, 64),
		done:         make(chan struct{}),
	}
}

// Events returns the emission channel.
func (e *Engine) Events() <-chan Event { return e.events }

// Watch registers a pair and subscribes both streams to its markets.
func (e *Engine) Watch(p Pair) error {
	e.mu.Lock()
	if _, exists := e.pairs[p.ID]; exists {
		e.mu.Unlock()
		return nil
	}
	e.pairs[p.ID] = &pairState{
		pair:       p,
		yesTokBids: book.NewSideBook(),
		yesTokAsks: book.NewSideBook(),
		noTokBids:  book.NewSideBook(),
		noTokAsks:  book.NewSideBook(),
		kYesBids:   book.NewSideBook(),
		kNoBids:    book.NewSideBook(),
	}
	e.tokenToPair[p.PolyYesToken] = p.ID
	e.tokenToPair[p.PolyNoToken] = p.ID
	e.tickerToPair[p.KalshiTicker] = p.ID
	e.mu.Unlock()

	if err := e.poly.Subscribe([]string{p.PolyYesToken, p.PolyNoToken}); err != nil {
		return err
	}
	return e.kalshi.Subscribe([]string{p.KalshiTicker})
}

// Start launches the event loop. The stream Run loops are the caller's
// responsibility.
func (e *Engine) Start() {
	go e.loop()
}

// Stop halts the loop, clears every debounce timer and all per-pair state,
// and closes both streams. No events are emitted after Stop returns.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	for _, st := range e.pairs {
		if st.timer != nil {
			st.timer.Stop()
		}
	}
	e.pairs = make(map[string]*pairState)
	e.tokenToPair = make(map[string]string)
	e.tickerToPair = make(map[string]string)
	e.active = make(map[string]float64)
	e.mu.Unlock()

	close(e.done)
	if err := e.poly.Close(); err != nil {
		e.logger.Warn("poly stream close", "error", err)
	}
	if err := e.kalshi.Close(); err != nil {
		e.logger.Warn("kalshi stream close", "error", err)
	}
}

func (e *Engine) loop() {
	for {
		select {
		case <-e.done:
			return
		case snap := <-e.poly.Snapshots():
			e.onPolySnapshot(snap)
		case d := <-e.poly.Deltas():
			e.onPolyDelta(d)
		case snap := <-e.kalshi.Snapshots():
			e.onKalshiSnapshot(snap)
		case d := <-e.kalshi.Deltas():
			e.onKalshiDelta(d)
		}
	}
}

func (e *Engine) onPolySnapshot(snap polymarket.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pairID, ok := e.tokenToPair[snap.AssetID]
	if !ok {
		return
	}
	st := e.pairs[pairID]
	if snap.AssetID == st.pair.PolyYesToken {
		st.yesTokBids.Replace(snap.Bids, 0)
		st.yesTokAsks.Replace(snap.Asks, 0)
	} else {
		st.noTokBids.Replace(snap.Bids, 0)
		st.noTokAsks.Replace(snap.Asks, 0)
	}
	e.armLocked(st)
}

func (e *Engine) onPolyDelta(d polymarket.Delta) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pairID, ok := e.tokenToPair[d.AssetID]
	if !ok {
		return
	}
	st := e.pairs[pairID]

	var target *book.SideBook
	isYes := d.AssetID == st.pair.PolyYesToken
	switch {
	case d.Side == "BUY" && isYes:
		target = st.yesTokBids
	case d.Side == "BUY":
		target = st.noTokBids
	case isYes:
		target = st.yesTokAsks
	default:
		target = st.noTokAsks
	}
	target.Set(d.Price, d.Size, 0)
	e.armLocked(st)
}

func (e *Engine) onKalshiSnapshot(snap kalshi.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pairID, ok := e.tickerToPair[snap.Ticker]
	if !ok {
		return
	}
	st := e.pairs[pairID]
	st.kYesBids.Replace(snap.YesBids, snap.Seq)
	st.kNoBids.Replace(snap.NoBids, snap.Seq)
	e.armLocked(st)
}

func (e *Engine) onKalshiDelta(d kalshi.Delta) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pairID, ok := e.tickerToPair[d.Ticker]
	if !ok {
		return
	}
	st := e.pairs[pairID]
	if d.Side == "yes" {
		st.kYesBids.Add(d.Price, d.Qty, d.Seq)
	} else {
		st.kNoBids.Add(d.Price, d.Qty, d.Seq)
	}
	e.armLocked(st)
}

// armLocked resets the pair's debounce timer. Caller holds e.mu.
func (e *Engine) armLocked(st *pairState) {
	if e.stopped {
		return
	}
	pairID := st.pair.ID
	if st.timer == nil {
		st.timer = time.AfterFunc(e.cfg.Debounce, func() { e.evaluate(pairID) })
		return
	}
	st.timer.Reset(e.cfg.Debounce)
}

// evaluate recomputes one pair's books and emits when warranted: a new
// opportunity, an active one whose spread moved by more than the
// configured delta, or a close.
func (e *Engine) evaluate(pairID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	st, ok := e.pairs[pairID]
	if !ok {
		return
	}

	pBook := e.polyBook(st)
	kBook := book.FromKalshiBids(st.kYesBids.Levels(), st.kNoBids.Levels())

	yesAsk, yesSize, okYes := cheaperAsk(pBook.YesAsks, kBook.YesAsks)
	noAsk, noSize, okNo := cheaperAsk(pBook.NoAsks, kBook.NoAsks)

	lastSpread, wasActive := e.active[pairID]

	if !okYes || !okNo || yesAsk+noAsk >= 1 {
		if wasActive {
			delete(e.active, pairID)
			e.emitLocked(Event{
				Type:   EventOpportunityClosed,
				PairID: pairID,
				At:     time.Now(),
			})
		}
		return
	}

	spreadPct := (1 - yesAsk - noAsk) * 100
	if wasActive && abs(spreadPct-lastSpread) <= e.cfg.SpreadDeltaPct {
		return
	}

	maxContracts := yesSize
	if noSize < maxContracts {
		maxContracts = noSize
	}

	e.active[pairID] = spreadPct
	e.emitLocked(Event{
		Type:            EventOpportunity,
		PairID:          pairID,
		SpreadPct:       spreadPct,
		MaxContracts:    maxContracts,
		PotentialProfit: spreadPct * maxContracts / 100,
		At:              time.Now(),
	})
}

// polyBook assembles the pair's normalized Polymarket book from the four
// token-side ladders.
func (e *Engine) polyBook(st *pairState) *types.NormalizedOrderBook {
	return book.MergeTokenBooks(
		book.TokenBook{Bids: st.yesTokBids.Levels(), Asks: st.yesTokAsks.Levels()},
		book.TokenBook{Bids: st.noTokBids.Levels(), Asks: st.noTokAsks.Levels()},
	)
}

// cheaperAsk picks the better best ask across the two venues' ladders.
func cheaperAsk(a, b []types.PriceLevel) (price, size float64, ok bool) {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0, 0, false
	case len(a) == 0:
		return b[0].Price, b[0].Size, true
	case len(b) == 0:
		return a[0].Price, a[0].Size, true
	case a[0].Price <= b[0].Price:
		return a[0].Price, a[0].Size, true
	default:
		return b[0].Price, b[0].Size, true
	}
}

// emitLocked sends without blocking the evaluator; a full channel drops
// the event. Caller holds e.mu.
func (e *Engine) emitLocked(ev Event) {
	select {
	case e.events <- ev:
	default:
		e.logger.Warn("event channel full, dropping", "pair", ev.PairID, "type", ev.Type)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

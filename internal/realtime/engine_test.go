package realtime

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"arb-scanner/internal/config"
	"arb-scanner/internal/venue/kalshi"
	"arb-scanner/internal/venue/polymarket"
	"arb-scanner/pkg/types"
)

type stubPolyStream struct {
	snaps  chan polymarket.Snapshot
	deltas chan polymarket.Delta
}

func newStubPolyStream() *stubPolyStream {
	return &stubPolyStream{
		snaps:  make(chan polymarket.Snapshot, 64),
		deltas: make(chan polymarket.Delta, 64),
	}
}

func (s *stubPolyStream) Subscribe([]string) error              { return nil }
func (s *stubPolyStream) Snapshots() <-chan polymarket.Snapshot { return s.snaps }
func (s *stubPolyStream) Deltas() <-chan polymarket.Delta       { return s.deltas }
func (s *stubPolyStream) Close() error                          { return nil }

type stubKalshiStream struct {
	snaps  chan kalshi.Snapshot
	deltas chan kalshi.Delta
}

func newStubKalshiStream() *stubKalshiStream {
	return &stubKalshiStream{
		snaps:  make(chan kalshi.Snapshot, 64),
		deltas: make(chan kalshi.Delta, 64),
	}
}

func (s *stubKalshiStream) Subscribe([]string) error          { return nil }
func (s *stubKalshiStream) Snapshots() <-chan kalshi.Snapshot { return s.snaps }
func (s *stubKalshiStream) Deltas() <-chan kalshi.Delta       { return s.deltas }
func (s *stubKalshiStream) Close() error                      { return nil }

func testEngine(debounce time.Duration) (*Engine, *stubPolyStream, *stubKalshiStream) {
	p := newStubPolyStream()
	k := newStubKalshiStream()
	e := New(config.RealtimeConfig{
		Debounce:       debounce,
		SpreadDeltaPct: 0.1,
	}, p, k, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return e, p, k
}

var testPair = Pair{
	ID:           "pair-1",
	PolyYesToken: "yes-tok",
	PolyNoToken:  "no-tok",
	KalshiTicker: "KX-TEST",
}

// seed installs crossed books: Poly YES ask 0.45, Kalshi NO ask 0.50
// (from a YES bid at 0.50). Combined cost 0.95 -> 5% spread.
func seed(p *stubPolyStream, k *stubKalshiStream) {
	p.snaps <- polymarket.Snapshot{
		AssetID: "yes-tok",
		Asks:    []types.PriceLevel{{Price: 0.45, Size: 100}},
	}
	k.snaps <- kalshi.Snapshot{
		Ticker:  "KX-TEST",
		YesBids: []types.PriceLevel{{Price: 0.50, Size: 40}},
		Seq:     1,
	}
}

func collectEvent(t *testing.T, e *Engine, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-e.Events():
		return ev
	case <-time.After(timeout):
		t.Fatal("no event within timeout")
		return Event{}
	}
}

// A burst of deltas within the debounce window yields exactly one
// evaluation and one emission.
func TestDebounceCollapsesBurst(t *testing.T) {
	t.Parallel()

	e, p, k := testEngine(100 * time.Millisecond)
	defer e.Stop()
	if err := e.Watch(testPair); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	e.Start()

	seed(p, k)
	// 5 Kalshi deltas within ~50ms, all improving the same YES bid level.
	for i := 0; i < 5; i++ {
		k.deltas <- kalshi.Delta{Ticker: "KX-TEST", Price: 0.50, Qty: 1, Side: "yes", Seq: int64(2 + i)}
		time.Sleep(10 * time.Millisecond)
	}

	ev := collectEvent(t, e, time.Second)
	if ev.Type != EventOpportunity {
		t.Fatalf("event type = %q", ev.Type)
	}
	if ev.PairID != "pair-1" {
		t.Errorf("pairID = %q", ev.PairID)
	}
	if ev.SpreadPct < 4.9 || ev.SpreadPct > 5.1 {
		t.Errorf("spreadPct = %v, want ~5", ev.SpreadPct)
	}
	// 40 contracts at the Kalshi NO ask plus the burst's +5.
	if ev.MaxContracts != 45 {
		t.Errorf("maxContracts = %v, want 45", ev.MaxContracts)
	}

	select {
	case extra := <-e.Events():
		t.Fatalf("second emission for one burst: %+v", extra)
	case <-time.After(250 * time.Millisecond):
	}
}

// Small spread movements are suppressed; a move beyond the threshold
// re-emits.
func TestSpreadDeltaThreshold(t *testing.T) {
	t.Parallel()

	e, p, k := testEngine(20 * time.Millisecond)
	defer e.Stop()
	if err := e.Watch(testPair); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	e.Start()

	seed(p, k)
	first := collectEvent(t, e, time.Second)
	if first.Type != EventOpportunity {
		t.Fatalf("first event = %q", first.Type)
	}

	// Same books re-sent: spread unchanged, nothing new should arrive.
	seed(p, k)
	select {
	case ev := <-e.Events():
		t.Fatalf("unchanged spread re-emitted: %+v", ev)
	case <-time.After(150 * time.Millisecond):
	}

	// Poly YES ask improves to 0.40: spread 10%, well past the threshold.
	p.snaps <- polymarket.Snapshot{
		AssetID: "yes-tok",
		Asks:    []types.PriceLevel{{Price: 0.40, Size: 100}},
	}
	second := collectEvent(t, e, time.Second)
	if second.SpreadPct < 9.9 || second.SpreadPct > 10.1 {
		t.Errorf("spreadPct = %v, want ~10", second.SpreadPct)
	}
}

// When the spread closes, one opportunity_closed fires and the active
// record drops; staying closed emits nothing further.
func TestOpportunityClosed(t *testing.T) {
	t.Parallel()

	e, p, k := testEngine(20 * time.Millisecond)
	defer e.Stop()
	if err := e.Watch(testPair); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	e.Start()

	seed(p, k)
	if ev := collectEvent(t, e, time.Second); ev.Type != EventOpportunity {
		t.Fatalf("first event = %q", ev.Type)
	}

	// Poly YES ask rises to 0.55: cost 1.05, spread gone.
	p.snaps <- polymarket.Snapshot{
		AssetID: "yes-tok",
		Asks:    []types.PriceLevel{{Price: 0.55, Size: 100}},
	}
	closed := collectEvent(t, e, time.Second)
	if closed.Type != EventOpportunityClosed {
		t.Fatalf("event = %q, want opportunity_closed", closed.Type)
	}

	// Still closed: no repeat emission.
	p.snaps <- polymarket.Snapshot{
		AssetID: "yes-tok",
		Asks:    []types.PriceLevel{{Price: 0.56, Size: 100}},
	}
	select {
	case ev := <-e.Events():
		t.Fatalf("closed pair re-emitted: %+v", ev)
	case <-time.After(150 * time.Millisecond):
	}
}

// Stop clears all state; updates arriving afterwards emit nothing.
func TestStopSilencesEngine(t *testing.T) {
	t.Parallel()

	e, p, k := testEngine(10 * time.Millisecond)
	if err := e.Watch(testPair); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	e.Start()

	seed(p, k)
	collectEvent(t, e, time.Second)

	e.Stop()
	select {
	case ev, ok := <-e.Events():
		if ok {
			t.Fatalf("event after Stop: %+v", ev)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

// A Kalshi delta arriving before any snapshot must not create book state.
func TestDeltaBeforeSnapshotIgnored(t *testing.T) {
	t.Parallel()

	e, p, k := testEngine(10 * time.Millisecond)
	defer e.Stop()
	if err := e.Watch(testPair); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	e.Start()

	p.snaps <- polymarket.Snapshot{
		AssetID: "yes-tok",
		Asks:    []types.PriceLevel{{Price: 0.45, Size: 100}},
	}
	k.deltas <- kalshi.Delta{Ticker: "KX-TEST", Price: 0.50, Qty: 40, Side: "yes", Seq: 1}

	// Without a Kalshi snapshot there is no NO ask, so no opportunity.
	select {
	case ev := <-e.Events():
		t.Fatalf("emitted from pre-snapshot delta: %+v", ev)
	case <-time.After(150 * time.Millisecond):
	}
}

package book

import (
	"sync"

	"arb-scanner/pkg/types"
)

// SideBook maintains one mutable ladder for a streamed market: a price ->
// size map fed by snapshot and delta messages. It mirrors how the venue
// keeps the book, before normalization into ask/bid ladders.
//
// Concurrency: a single stream client writes; the arbitrage evaluator reads
// via Levels, which copies under the lock so readers always observe a
// consistent ladder.
type SideBook struct {
	mu     sync.RWMutex
	levels map[float64]float64
	seeded bool  // a snapshot has been applied; deltas before it are ignored
	seq    int64 // last applied sequence number, 0 if the venue sends none
}

// NewSideBook creates an empty ladder.
func NewSideBook() *SideBook {
	return &SideBook{levels: make(map[float64]float64)}
}

// Replace installs a full snapshot, discarding all prior state.
func (s *SideBook) Replace(levels []types.PriceLevel, seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.levels = make(map[float64]float64, len(levels))
	for _, l := range levels {
		if l.Size > 0 {
			s.levels[l.Price] = l.Size
		}
	}
	s.seeded = true
	s.seq = seq
}

// Set applies an absolute-size delta: size <= 0 removes the level, any
// other value replaces it. Deltas arriving before the first snapshot are
// ignored.
func (s *SideBook) Set(price, size float64, seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seeded {
		return
	}
	if size <= 0 {
		delete(s.levels, price)
	} else {
		s.levels[price] = size
	}
	s.seq = seq
}

// Add applies a relative-size delta (Kalshi orderbook_delta semantics):
// the level's size changes by delta and is removed when it drops to zero
// or below.
func (s *SideBook) Add(price, delta float64, seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seeded {
		return
	}
	next := s.levels[price] + delta
	if next <= 0 {
		delete(s.levels, price)
	} else {
		s.levels[price] = next
	}
	s.seq = seq
}

// Levels returns an unsorted copy of the ladder.
func (s *SideBook) Levels() []types.PriceLevel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.PriceLevel, 0, len(s.levels))
	for price, size := range s.levels {
		out = append(out, types.PriceLevel{Price: price, Size: size})
	}
	return out
}

// Seeded reports whether a snapshot has been applied yet.
func (s *SideBook) Seeded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seeded
}

// Seq returns the last applied sequence number.
func (s *SideBook) Seq() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

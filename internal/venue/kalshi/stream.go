package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"arb-scanner/internal/book"
	"arb-scanner/pkg/types"
)

const (
	writeTimeout    = 10 * time.Second
	eventBufferSize = 256
)

// Snapshot is a full book for one market: resting bids per side in
// probability space.
type Snapshot struct {
	Ticker  string
	YesBids []types.PriceLevel
	NoBids  []types.PriceLevel
	Seq     int64
}

// Delta is one incremental change: the size at Price on Side ("yes"/"no")
// moves by Qty contracts (negative removes liquidity).
type Delta struct {
	Ticker string
	Price  float64
	Qty    float64
	Side   string
	Seq    int64
}

// Stream is the authenticated orderbook_delta WebSocket client.
type Stream struct {
	wsURL          string
	signer         *Signer
	reconnectDelay time.Duration

	conn   *websocket.Conn
	connMu sync.Mutex

	subscribedMu sync.RWMutex
	subscribed   map[string]bool

	cmdID atomic.Int64

	snapshotCh chan Snapshot
	deltaCh    chan Delta
	errCh      chan error

	logger *slog.Logger
}

// NewStream creates a stream client. The signer must be non-nil; Kalshi
// rejects unauthenticated WebSocket connects.
func NewStream(wsURL string, signer *Signer, reconnectDelay time.Duration, logger *slog.Logger) *Stream {
	return &Stream{
		wsURL:          wsURL,
		signer:         signer,
		reconnectDelay: reconnectDelay,
		subscribed:     make(map[string]bool),
		snapshotCh:     make(chan Snapshot, eventBufferSize),
		deltaCh:        make(chan Delta, eventBufferSize),
		errCh:          make(chan error, 16),
		logger:         logger.With("component", "kalshi_stream"),
	}
}

// Snapshots returns the full-book event channel.
func (s *Stream) Snapshots() <-chan Snapshot { return s.snapshotCh }

// Deltas returns the incremental-update event channel.
func (s *Stream) Deltas() <-chan Delta { return s.deltaCh }

// Errors returns non-fatal stream errors, including auth failures at
// connect.
func (s *Stream) Errors() <-chan error { return s.errCh }

// Subscribe registers market tickers and, when connected, sends one batched
// subscribe command.
func (s *Stream) Subscribe(tickers []string) error {
	s.subscribedMu.Lock()
	for _, t := range tickers {
		s.subscribed[t] = true
	}
	s.subscribedMu.Unlock()

	s.connMu.Lock()
	connected := s.conn != nil
	s.connMu.Unlock()
	if !connected {
		return nil
	}
	return s.sendSubscribe(tickers)
}

type subscribeCmd struct {
	ID     int64           `json:"id"`
	Cmd    string          `json:"cmd"`
	Params subscribeParams `json:"params"`
}

type subscribeParams struct {
	Channels      []string `json:"channels"`
	MarketTickers []string `json:"market_tickers"`
}

func (s *Stream) sendSubscribe(tickers []string) error {
	if len(tickers) == 0 {
		return nil
	}
	return s.writeJSON(subscribeCmd{
		ID:  s.cmdID.Add(1),
		Cmd: "subscribe",
		Params: subscribeParams{
			Channels:      []string{"orderbook_delta"},
			MarketTickers: tickers,
		},
	})
}

// Run connects and maintains the stream until ctx is cancelled, redialing
// after a fixed delay on disconnect. Auth failures at connect are emitted
// on Errors and retried like any other connect failure.
func (s *Stream) Run(ctx context.Context) error {
	for {
		err := s.connectAndRead(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.emitError(err)
		s.logger.Warn("stream disconnected, reconnecting",
			"error", err,
			"delay", s.reconnectDelay,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.reconnectDelay):
		}
	}
}

// Close closes the connection with a normal close frame.
func (s *Stream) Close() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == nil {
		return nil
	}
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Stream) connectAndRead(ctx context.Context) error {
	u, err := url.Parse(s.wsURL)
	if err != nil {
		return fmt.Errorf("ws url: %w", err)
	}
	headers, err := s.signer.Headers("GET", u.Path, time.Now())
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, s.wsURL, headers)
	if err != nil {
		if resp != nil && (resp.StatusCode == 401 || resp.StatusCode == 403) {
			return fmt.Errorf("auth rejected: status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("dial: %w", err)
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	defer func() {
		s.connMu.Lock()
		conn.Close()
		s.conn = nil
		s.connMu.Unlock()
	}()

	// gorilla answers server pings with pongs by default; Kalshi keeps the
	// connection alive that way.

	if err := s.flushSubscriptions(); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	s.logger.Info("stream connected")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		s.dispatch(msg)
	}
}

func (s *Stream) flushSubscriptions() error {
	s.subscribedMu.RLock()
	tickers := make([]string, 0, len(s.subscribed))
	for t := range s.subscribed {
		tickers = append(tickers, t)
	}
	s.subscribedMu.RUnlock()
	return s.sendSubscribe(tickers)
}

type wsMessage struct {
	Type string          `json:"type"`
	Seq  int64           `json:"seq"`
	Msg  json.RawMessage `json:"msg"`
}

type wsSnapshot struct {
	MarketTicker string       `json:"market_ticker"`
	Yes          [][2]float64 `json:"yes"`
	No           [][2]float64 `json:"no"`
}

type wsDelta struct {
	MarketTicker string  `json:"market_ticker"`
	Price        float64 `json:"price"` // cents
	Delta        float64 `json:"delta"`
	Side         string  `json:"side"`
}

func (s *Stream) dispatch(data []byte) {
	var env wsMessage
	if err := json.Unmarshal(data, &env); err != nil {
		s.emitError(fmt.Errorf("unmarshal message: %w", err))
		return
	}

	switch env.Type {
	case "orderbook_snapshot":
		var snap wsSnapshot
		if err := json.Unmarshal(env.Msg, &snap); err != nil {
			s.emitError(fmt.Errorf("unmarshal snapshot: %w", err))
			return
		}
		evt := Snapshot{
			Ticker:  snap.MarketTicker,
			YesBids: decodeCentLevels(snap.Yes),
			NoBids:  decodeCentLevels(snap.No),
			Seq:     env.Seq,
		}
		select {
		case s.snapshotCh <- evt:
		default:
			s.logger.Warn("snapshot channel full, dropping event", "ticker", snap.MarketTicker)
		}

	case "orderbook_delta":
		var d wsDelta
		if err := json.Unmarshal(env.Msg, &d); err != nil {
			s.emitError(fmt.Errorf("unmarshal delta: %w", err))
			return
		}
		evt := Delta{
			Ticker: d.MarketTicker,
			Price:  book.ProbFromCents(int(d.Price)),
			Qty:    d.Delta,
			Side:   d.Side,
			Seq:    env.Seq,
		}
		select {
		case s.deltaCh <- evt:
		default:
			s.logger.Warn("delta channel full, dropping event", "ticker", d.MarketTicker)
		}

	case "subscribed":
		s.logger.Debug("subscription confirmed")

	case "error":
		s.emitError(fmt.Errorf("server error: %s", string(env.Msg)))

	default:
		s.logger.Debug("ignoring event", "type", env.Type)
	}
}

func (s *Stream) emitError(err error) {
	if err == nil {
		return
	}
	select {
	case s.errCh <- err:
	default:
	}
}

func (s *Stream) writeJSON(v any) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("websocket not connected")
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(v)
}

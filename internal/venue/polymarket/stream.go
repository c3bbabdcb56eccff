package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"arb-scanner/internal/book"
	"arb-scanner/pkg/types"
)

const (
	pingInterval    = 10 * time.Second // periodic "PING" text frame
	writeTimeout    = 10 * time.Second
	eventBufferSize = 256
)

// Snapshot is a full book for one asset (token).
type Snapshot struct {
	AssetID string
	Bids    []types.PriceLevel
	Asks    []types.PriceLevel
}

// Delta is one incremental level update. Size is the new absolute size at
// the price; zero removes the level. Side is "BUY" (bid) or "SELL" (ask).
type Delta struct {
	AssetID string
	Price   float64
	Size    float64
	Side    string
}

// Stream is the market-channel WebSocket client. Subscriptions are by asset
// id; the server pushes a "book" snapshot per subscribed asset followed by
// "price_change" deltas.
type Stream struct {
	url            string
	reconnectDelay time.Duration

	conn   *websocket.Conn
	connMu sync.Mutex

	subscribedMu sync.RWMutex
	subscribed   map[string]bool

	snapshotCh chan Snapshot
	deltaCh    chan Delta
	errCh      chan error

	logger *slog.Logger
}

// NewStream creates a market stream client.
func NewStream(wsURL string, reconnectDelay time.Duration, logger *slog.Logger) *Stream {
	return &Stream{
		url:            wsURL,
		reconnectDelay: reconnectDelay,
		subscribed:     make(map[string]bool),
		snapshotCh:     make(chan Snapshot, eventBufferSize),
		deltaCh:        make(chan Delta, eventBufferSize),
		errCh:          make(chan error, 16),
		logger:         logger.With("component", "polymarket_stream"),
	}
}

// Snapshots returns the full-book event channel.
func (s *Stream) Snapshots() <-chan Snapshot { return s.snapshotCh }

// Deltas returns the incremental-update event channel.
func (s *Stream) Deltas() <-chan Delta { return s.deltaCh }

// Errors returns non-fatal stream errors (unparseable messages).
func (s *Stream) Errors() <-chan error { return s.errCh }

// Subscribe registers asset ids and, when connected, sends the subscribe
// message. Ids registered while disconnected are flushed in one batched
// message on the next connect.
func (s *Stream) Subscribe(ids []string) error {
	s.subscribedMu.Lock()
	for _, id := range ids {
		s.subscribed[id] = true
	}
	s.subscribedMu.Unlock()

	s.connMu.Lock()
	connected := s.conn != nil
	s.connMu.Unlock()
	if !connected {
		return nil
	}
	return s.writeJSON(subscribeMsg{AssetIDs: ids, Type: "market"})
}

type subscribeMsg struct {
	AssetIDs []string `json:"assets_ids"`
	Type     string   `json:"type"`
}

// Run connects and maintains the stream until ctx is cancelled, redialing
// after a fixed delay on every disconnect.
func (s *Stream) Run(ctx context.Context) error {
	for {
		err := s.connectAndRead(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
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
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
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

	if err := s.flushSubscriptions(); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	s.logger.Info("stream connected")

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go s.pingLoop(pingCtx)

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
	ids := make([]string, 0, len(s.subscribed))
	for id := range s.subscribed {
		ids = append(ids, id)
	}
	s.subscribedMu.RUnlock()

	if len(ids) == 0 {
		return nil
	}
	return s.writeJSON(subscribeMsg{AssetIDs: ids, Type: "market"})
}

type wsBookEvent struct {
	EventType string     `json:"event_type"`
	AssetID   string     `json:"asset_id"`
	Bids      []wsLevel  `json:"bids"`
	Asks      []wsLevel  `json:"asks"`
	Changes   []wsChange `json:"price_changes"`
}

type wsLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

type wsChange struct {
	AssetID string `json:"asset_id"`
	Price   string `json:"price"`
	Size    string `json:"size"`
	Side    string `json:"side"`
}

func (s *Stream) dispatch(data []byte) {
	// The server answers "PING" with "PONG".
	if string(data) == "PONG" {
		return
	}

	var evt wsBookEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		s.emitError(fmt.Errorf("unmarshal message: %w", err))
		return
	}

	switch evt.EventType {
	case "book":
		snap := Snapshot{
			AssetID: evt.AssetID,
			Bids:    decodeWSLevels(evt.Bids),
			Asks:    decodeWSLevels(evt.Asks),
		}
		select {
		case s.snapshotCh <- snap:
		default:
			s.logger.Warn("snapshot channel full, dropping event", "asset", evt.AssetID)
		}

	case "price_change":
		for _, ch := range evt.Changes {
			d := Delta{
				AssetID: ch.AssetID,
				Price:   book.ProbFromMilliString(ch.Price),
				Size:    book.SizeFromString(ch.Size),
				Side:    ch.Side,
			}
			select {
			case s.deltaCh <- d:
			default:
				s.logger.Warn("delta channel full, dropping event", "asset", ch.AssetID)
			}
		}

	default:
		s.logger.Debug("ignoring event", "type", evt.EventType)
	}
}

func decodeWSLevels(levels []wsLevel) []types.PriceLevel {
	out := make([]types.PriceLevel, 0, len(levels))
	for _, l := range levels {
		price := book.ProbFromMilliString(l.Price)
		size := book.SizeFromString(l.Size)
		if price <= 0 || size <= 0 {
			continue
		}
		out = append(out, types.PriceLevel{Price: price, Size: size})
	}
	return out
}

func (s *Stream) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.writeMessage(websocket.TextMessage, []byte("PING")); err != nil {
				s.logger.Warn("ping failed", "error", err)
				return
			}
		}
	}
}

func (s *Stream) emitError(err error) {
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

func (s *Stream) writeMessage(msgType int, data []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("websocket not connected")
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(msgType, data)
}

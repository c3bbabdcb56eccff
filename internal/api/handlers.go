package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"arb-scanner/internal/dto"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for local development
		// TODO: restrict in production
		return true
	},
}

// Handlers holds all HTTP handler dependencies.
type Handlers struct {
	provider ScanProvider
	hub      *Hub
	logger   *slog.Logger
}

// NewHandlers creates a handlers instance.
func NewHandlers(provider ScanProvider, hub *Hub, logger *slog.Logger) *Handlers {
	return &Handlers{
		provider: provider,
		hub:      hub,
		logger:   logger.With("component", "api-handlers"),
	}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// opportunitiesResponse is the /api/opportunities payload.
type opportunitiesResponse struct {
	Opportunities []dto.Opportunity `json:"opportunities"`
	Count         int               `json:"count"`
	ScannedAt     time.Time         `json:"scannedAt"`
}

// HandleOpportunities serves the projected opportunity list. A cached scan
// is used when fresh; ?refresh=true forces a new one (joining any scan
// already in flight).
func (h *Handlers) HandleOpportunities(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("refresh") == "true"

	result, err := h.provider.Scan(r.Context(), force)
	if err != nil {
		h.logger.Error("scan failed", "error", err)
		http.Error(w, "scan failed", http.StatusBadGateway)
		return
	}

	resp := opportunitiesResponse{
		Opportunities: dto.ProjectAll(result.Opportunities, result.ScannedAt),
		ScannedAt:     result.ScannedAt,
	}
	resp.Count = len(resp.Opportunities)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode opportunities", "error", err)
	}
}

// HandleWebSocket upgrades the connection and registers a client. New
// clients get the latest cached opportunity list before live events.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(h.hub, conn)

	cached := h.provider.Cached()
	if cached == nil {
		return
	}
	evt := Event{
		Type:      "opportunities",
		Timestamp: time.Now(),
		Data:      dto.ProjectAll(cached.Opportunities, cached.ScannedAt),
	}
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("failed to marshal initial snapshot", "error", err)
		return
	}

	select {
	case client.send <- data:
	default:
		h.logger.Warn("failed to send initial snapshot to client")
	}
}

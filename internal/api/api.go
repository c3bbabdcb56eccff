// Package api serves scan results and realtime opportunity events over
// HTTP and WebSocket. It is a thin adapter: all domain work happens in the
// scanner and realtime packages; this layer projects and transports.
package api

import (
	"context"
	"time"

	"arb-scanner/pkg/types"
)

// Event is the wrapper for all messages pushed to WebSocket clients.
type Event struct {
	Type      string    `json:"type"` // "opportunities", "opportunity", "opportunity_closed"
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// ScanProvider is the scanner surface the API consumes.
type ScanProvider interface {
	Scan(ctx context.Context, forceRefresh bool) (*types.ScanResult, error)
	Cached() *types.ScanResult
}

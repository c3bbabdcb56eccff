// Package polymarket implements the Polymarket side of the scanner: the
// Gamma catalog client, the CLOB order-book client, and the market
// WebSocket stream. All reads are unauthenticated.
//
// Gamma quirk: the fields outcomes, outcomePrices, and clobTokenIds are
// JSON arrays encoded as strings inside the JSON response and must be
// re-parsed. Parsing is defensive: a malformed optional field never
// discards a market whose question, prices, and token ids survive.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"arb-scanner/internal/book"
	"arb-scanner/internal/config"
	"arb-scanner/pkg/types"
)

// Client talks to the Gamma (catalog) and CLOB (order book) APIs.
type Client struct {
	gamma  *resty.Client
	clob   *resty.Client
	logger *slog.Logger
}

// NewClient creates a Polymarket client from config.
func NewClient(cfg config.PolymarketConfig, timeout time.Duration, logger *slog.Logger) *Client {
	mk := func(base string) *resty.Client {
		return resty.New().
			SetBaseURL(base).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json")
	}
	return &Client{
		gamma:  mk(cfg.GammaBaseURL),
		clob:   mk(cfg.CLOBBaseURL),
		logger: logger.With("component", "polymarket"),
	}
}

// gammaEvent is the wire shape of a Gamma /events element.
type gammaEvent struct {
	Title   string        `json:"title"`
	Slug    string        `json:"slug"`
	Image   string        `json:"image"`
	Markets []gammaMarket `json:"markets"`
}

type gammaMarket struct {
	Question      string `json:"question"`
	Outcomes      string `json:"outcomes"`      // JSON-encoded array of strings
	OutcomePrices string `json:"outcomePrices"` // JSON-encoded array of strings
	ClobTokenIDs  string `json:"clobTokenIds"`  // JSON-encoded array of strings
	Volume        string `json:"volume"`
	EndDate       string `json:"endDate"`
	Active        bool   `json:"active"`
	Closed        bool   `json:"closed"`
}

// Event fetches one event by slug. Returns nil (never an error) when the
// event does not exist or the request fails; failures are logged.
func (c *Client) Event(ctx context.Context, slug string) *types.EventShell {
	var events []gammaEvent
	resp, err := c.gamma.R().
		SetContext(ctx).
		SetQueryParam("slug", slug).
		SetResult(&events).
		Get("/events")
	if err != nil {
		c.logger.Warn("gamma event fetch failed", "slug", slug, "error", err)
		return nil
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode() != http.StatusOK {
		c.logger.Warn("gamma event fetch failed", "slug", slug, "status", resp.StatusCode())
		return nil
	}
	if len(events) == 0 {
		return nil
	}
	return c.toShell(events[0])
}

// ActiveEvents pages through the open-event listing. Used for pair
// discovery outside the templated catalog.
func (c *Client) ActiveEvents(ctx context.Context, limit, offset int) ([]*types.EventShell, error) {
	var events []gammaEvent
	resp, err := c.gamma.R().
		SetContext(ctx).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetQueryParam("offset", fmt.Sprintf("%d", offset)).
		SetQueryParam("active", "true").
		SetQueryParam("closed", "false").
		SetResult(&events).
		Get("/events")
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("list events: status %d: %s", resp.StatusCode(), resp.String())
	}

	out := make([]*types.EventShell, 0, len(events))
	for _, ev := range events {
		if shell := c.toShell(ev); shell != nil {
			out = append(out, shell)
		}
	}
	return out, nil
}

func (c *Client) toShell(ev gammaEvent) *types.EventShell {
	shell := &types.EventShell{
		Title:    ev.Title,
		ImageURL: ev.Image,
	}
	for _, m := range ev.Markets {
		if m.Closed {
			continue
		}
		mk, ok := c.toMarket(m)
		if !ok {
			continue
		}
		shell.Markets = append(shell.Markets, mk)
	}
	return shell
}

// toMarket decodes one Gamma market, re-parsing the string-encoded fields.
// ok is false only when the critical fields (question, a usable YES price)
// cannot be recovered.
func (c *Client) toMarket(m gammaMarket) (types.MarketShell, bool) {
	if m.Question == "" {
		return types.MarketShell{}, false
	}

	prices := decodeStringArray(m.OutcomePrices)
	if len(prices) == 0 {
		return types.MarketShell{}, false
	}
	yes := book.ProbFromString(prices[0])
	if yes <= 0 || yes >= 1 {
		// 0 and 1 mean resolved; either way there is nothing to trade.
		return types.MarketShell{}, false
	}
	no := 1 - yes
	if len(prices) > 1 {
		if v := book.ProbFromString(prices[1]); v > 0 {
			no = v
		}
	}

	shell := types.MarketShell{
		Question: m.Question,
		YesPrice: yes,
		NoPrice:  no,
		Volume:   book.SizeFromString(m.Volume),
		TokenIDs: decodeStringArray(m.ClobTokenIDs),
	}
	if m.EndDate != "" {
		if ts, err := time.Parse(time.RFC3339, m.EndDate); err == nil {
			shell.EndDate = ts
		}
	}
	return shell, true
}

// decodeStringArray parses a JSON-array-encoded-as-string field. Returns
// nil on any parse failure.
func decodeStringArray(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

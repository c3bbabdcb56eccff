package kalshi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"arb-scanner/internal/book"
	"arb-scanner/internal/config"
	"arb-scanner/pkg/types"
)

// retryWaits are the backoff steps applied to HTTP 429 responses. Other
// failures are never retried here.
var retryWaits = []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}

// Client talks to the Kalshi trade API. Pagination calls are paced by a
// shared limiter because the venue rate-limits aggressively.
type Client struct {
	http   *resty.Client
	pacer  *rate.Limiter
	logger *slog.Logger
}

// NewClient creates a Kalshi REST client. pageDelay spaces out successive
// pagination requests.
func NewClient(cfg config.KalshiConfig, timeout, pageDelay time.Duration, logger *slog.Logger) *Client {
	if pageDelay <= 0 {
		pageDelay = 50 * time.Millisecond
	}
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		pacer:  rate.NewLimiter(rate.Every(pageDelay), 1),
		logger: logger.With("component", "kalshi"),
	}
}

// Wire shapes.

type eventsResponse struct {
	Events []kalshiEvent `json:"events"`
	Cursor string        `json:"cursor"`
}

type kalshiEvent struct {
	EventTicker string         `json:"event_ticker"`
	Title       string         `json:"title"`
	Markets     []kalshiMarket `json:"markets"`
}

type marketsResponse struct {
	Markets []kalshiMarket `json:"markets"`
	Cursor  string         `json:"cursor"`
}

type kalshiMarket struct {
	Ticker      string  `json:"ticker"`
	EventTicker string  `json:"event_ticker"`
	Title       string  `json:"title"`
	Status      string  `json:"status"`
	LastPrice   int     `json:"last_price"` // cents
	YesBid      int     `json:"yes_bid"`
	YesAsk      int     `json:"yes_ask"`
	Volume      float64 `json:"volume"`
	CloseTime   string  `json:"close_time"`
}

// Event fetches one event by (ticker, series): the series' open events are
// paged through and the one whose ticker matches case-insensitively is
// returned with its non-active markets filtered out. Returns nil on
// not-found and on any failure, with a logged warning.
func (c *Client) Event(ctx context.Context, ticker, series string) *types.EventShell {
	cursor := ""
	for {
		var result eventsResponse
		err := c.get(ctx, &result, "/events", map[string]string{
			"limit":               "200",
			"with_nested_markets": "true",
			"status":              "open",
			"series_ticker":       series,
			"cursor":              cursor,
		})
		if err != nil {
			c.logger.Warn("event fetch failed", "ticker", ticker, "series", series, "error", err)
			return nil
		}

		for _, ev := range result.Events {
			if strings.EqualFold(ev.EventTicker, ticker) {
				return c.toShell(ev)
			}
		}
		if result.Cursor == "" || len(result.Events) == 0 {
			return nil
		}
		cursor = result.Cursor
	}
}

// SeriesMarkets lists every market in a series, following the pagination
// cursor. Used by the scanner to discover the day's NBA games.
func (c *Client) SeriesMarkets(ctx context.Context, series string) ([]Market, error) {
	var out []Market
	cursor := ""
	for {
		var result marketsResponse
		err := c.get(ctx, &result, "/markets", map[string]string{
			"series_ticker": series,
			"limit":         "100",
			"cursor":        cursor,
		})
		if err != nil {
			return nil, fmt.Errorf("list %s markets: %w", series, err)
		}

		for _, m := range result.Markets {
			out = append(out, toMarket(m))
		}
		if result.Cursor == "" || len(result.Markets) == 0 {
			return out, nil
		}
		cursor = result.Cursor
	}
}

// Market is a typed Kalshi market row for series listings.
type Market struct {
	Ticker      string
	EventTicker string
	Title       string
	Status      string
	YesPrice    float64
	CloseTime   time.Time
}

func toMarket(m kalshiMarket) Market {
	out := Market{
		Ticker:      m.Ticker,
		EventTicker: m.EventTicker,
		Title:       m.Title,
		Status:      m.Status,
		YesPrice:    book.ProbFromCents(m.LastPrice),
	}
	if m.CloseTime != "" {
		if ts, err := time.Parse(time.RFC3339, m.CloseTime); err == nil {
			out.CloseTime = ts
		}
	}
	return out
}

func (c *Client) toShell(ev kalshiEvent) *types.EventShell {
	shell := &types.EventShell{Title: ev.Title}
	for _, m := range ev.Markets {
		if m.Status != "active" {
			continue
		}
		yes := book.ProbFromCents(m.LastPrice)
		if yes <= 0 || yes >= 1 {
			continue
		}
		mk := types.MarketShell{
			Question: m.Title,
			YesPrice: yes,
			NoPrice:  1 - yes,
			Volume:   m.Volume,
			Ticker:   m.Ticker,
		}
		if m.CloseTime != "" {
			if ts, err := time.Parse(time.RFC3339, m.CloseTime); err == nil {
				mk.EndDate = ts
			}
		}
		shell.Markets = append(shell.Markets, mk)
	}
	return shell
}

// get performs one paced GET with 429 retry.
func (c *Client) get(ctx context.Context, result any, path string, params map[string]string) error {
	if err := c.pacer.Wait(ctx); err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetResult(result).
			Get(path)
		if err != nil {
			return fmt.Errorf("get %s: %w", path, err)
		}

		switch {
		case resp.StatusCode() == http.StatusOK:
			return nil
		case resp.StatusCode() == http.StatusTooManyRequests && attempt < len(retryWaits):
			c.logger.Debug("rate limited, backing off",
				"path", path,
				"attempt", attempt+1,
				"wait", retryWaits[attempt],
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryWaits[attempt]):
			}
		default:
			return fmt.Errorf("get %s: status %d: %s", path, resp.StatusCode(), resp.String())
		}
	}
}

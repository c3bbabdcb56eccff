package kalshi

import (
	"context"
	"fmt"

	"arb-scanner/internal/book"
	"arb-scanner/pkg/types"
)

// orderbookResponse is the wire shape of GET /markets/{ticker}/orderbook.
// Each side lists resting bids as [price_cents, quantity] pairs.
type orderbookResponse struct {
	Orderbook struct {
		Yes [][2]float64 `json:"yes"`
		No  [][2]float64 `json:"no"`
	} `json:"orderbook"`
}

// OrderBook fetches and normalizes one market's book. Kalshi exposes
// resting bids per side; each side's executable asks are the opposite
// side's bids inverted.
func (c *Client) OrderBook(ctx context.Context, ticker string) (*types.NormalizedOrderBook, error) {
	var raw orderbookResponse
	err := c.get(ctx, &raw, fmt.Sprintf("/markets/%s/orderbook", ticker), nil)
	if err != nil {
		return nil, fmt.Errorf("orderbook %s: %w", ticker, err)
	}

	return book.FromKalshiBids(
		decodeCentLevels(raw.Orderbook.Yes),
		decodeCentLevels(raw.Orderbook.No),
	), nil
}

func decodeCentLevels(pairs [][2]float64) []types.PriceLevel {
	out := make([]types.PriceLevel, 0, len(pairs))
	for _, p := range pairs {
		price := book.ProbFromCents(int(p[0]))
		if price <= 0 || p[1] <= 0 {
			continue
		}
		out = append(out, types.PriceLevel{Price: price, Size: p[1]})
	}
	return out
}

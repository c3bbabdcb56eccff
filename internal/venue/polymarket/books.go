package polymarket

import (
	"context"
	"fmt"
	"net/http"

	"arb-scanner/internal/book"
	"arb-scanner/pkg/types"
)

// clobBook is the wire shape of GET /book.
type clobBook struct {
	Bids []clobLevel `json:"bids"`
	Asks []clobLevel `json:"asks"`
}

type clobLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// TokenBook fetches the raw book for one token id.
func (c *Client) TokenBook(ctx context.Context, tokenID string) (book.TokenBook, error) {
	var raw clobBook
	resp, err := c.clob.R().
		SetContext(ctx).
		SetQueryParam("token_id", tokenID).
		SetResult(&raw).
		Get("/book")
	if err != nil {
		return book.TokenBook{}, fmt.Errorf("get book: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return book.TokenBook{}, fmt.Errorf("get book: status %d: %s", resp.StatusCode(), resp.String())
	}

	return book.TokenBook{
		Bids: decodeLevels(raw.Bids),
		Asks: decodeLevels(raw.Asks),
	}, nil
}

// OrderBook fetches both token books for a market and merges them into one
// normalized book: each side's asks are the token's direct asks plus the
// complementary token's inverted bids.
func (c *Client) OrderBook(ctx context.Context, yesTokenID, noTokenID string) (*types.NormalizedOrderBook, error) {
	yes, err := c.TokenBook(ctx, yesTokenID)
	if err != nil {
		return nil, fmt.Errorf("yes token: %w", err)
	}
	no, err := c.TokenBook(ctx, noTokenID)
	if err != nil {
		return nil, fmt.Errorf("no token: %w", err)
	}

	return book.MergeTokenBooks(yes, no), nil
}

func decodeLevels(levels []clobLevel) []types.PriceLevel {
	out := make([]types.PriceLevel, 0, len(levels))
	for _, l := range levels {
		price := book.ProbFromString(l.Price)
		size := book.SizeFromString(l.Size)
		if price <= 0 || size <= 0 {
			continue
		}
		out = append(out, types.PriceLevel{Price: price, Size: size})
	}
	return out
}

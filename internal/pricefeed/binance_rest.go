package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BinanceREST fetches the spot price from the Binance ticker endpoint
// (GET /api/v3/ticker/price?symbol=BTCUSDT) on every call.
type BinanceREST struct {
	HTTP     *http.Client
	Endpoint string
}

type binanceTicker struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

func (f *BinanceREST) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if f == nil {
		return decimal.Zero, ErrPriceUnavailable
	}
	client := f.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	endpoint := strings.TrimSpace(f.Endpoint)
	if endpoint == "" {
		return decimal.Zero, fmt.Errorf("pricefeed: missing endpoint")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pricefeed: bad endpoint: %w", err)
	}
	q := u.Query()
	q.Set("symbol", strings.ToUpper(strings.TrimSpace(symbol)))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pricefeed: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("pricefeed: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return decimal.Zero, err
	}
	var tick binanceTicker
	if err := json.Unmarshal(body, &tick); err != nil {
		return decimal.Zero, fmt.Errorf("pricefeed: decode failed: %w", err)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(tick.Price))
	if err != nil {
		return decimal.Zero, fmt.Errorf("pricefeed: bad price %q: %w", tick.Price, err)
	}
	if price.Sign() <= 0 {
		return decimal.Zero, ErrPriceUnavailable
	}
	return price, nil
}

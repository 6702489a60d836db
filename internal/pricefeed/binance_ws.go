package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// BinanceWS keeps a background subscription to the Binance trade stream
// (wss://stream.binance.com:9443/ws/<symbol>@trade) and serves the last seen
// price from cache. Price errors once the cache is older than StaleAfter, so a
// dead stream aborts settlement instead of settling on a stale quote.
type BinanceWS struct {
	URL        string
	StaleAfter time.Duration
	Logger     *zap.Logger

	mu     sync.RWMutex
	prices map[string]cachedPrice
}

type cachedPrice struct {
	price decimal.Decimal
	at    time.Time
}

type binanceTradeEvent struct {
	Symbol string `json:"s"`
	Price  string `json:"p"`
}

func NewBinanceWS(url string, staleAfter time.Duration, logger *zap.Logger) *BinanceWS {
	if staleAfter <= 0 {
		staleAfter = 30 * time.Second
	}
	return &BinanceWS{
		URL:        url,
		StaleAfter: staleAfter,
		Logger:     logger,
		prices:     map[string]cachedPrice{},
	}
}

// Run connects and reads until ctx is cancelled, reconnecting with a small
// backoff on stream errors.
func (f *BinanceWS) Run(ctx context.Context, symbol string) error {
	for {
		if err := f.streamOnce(ctx, symbol); err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return ctx.Err()
			}
			if f.Logger != nil {
				f.Logger.Warn("price stream interrupted", zap.Error(err))
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (f *BinanceWS) streamOnce(ctx context.Context, symbol string) error {
	base := strings.TrimRight(strings.TrimSpace(f.URL), "/")
	if base == "" {
		return fmt.Errorf("pricefeed: missing ws url")
	}
	streamURL := base + "/" + strings.ToLower(strings.TrimSpace(symbol)) + "@trade"

	conn, _, err := websocket.Dial(ctx, streamURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")
	conn.SetReadLimit(1 << 20)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var ev binanceTradeEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(ev.Price))
		if err != nil || price.Sign() <= 0 {
			continue
		}
		f.store(ev.Symbol, price, time.Now().UTC())
	}
}

func (f *BinanceWS) store(symbol string, price decimal.Decimal, at time.Time) {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	f.mu.Lock()
	f.prices[key] = cachedPrice{price: price, at: at}
	f.mu.Unlock()
}

func (f *BinanceWS) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	f.mu.RLock()
	cached, ok := f.prices[key]
	f.mu.RUnlock()
	if !ok {
		return decimal.Zero, ErrPriceUnavailable
	}
	if time.Since(cached.at) > f.StaleAfter {
		return decimal.Zero, fmt.Errorf("%w: last update %s ago", ErrPriceUnavailable, time.Since(cached.at).Truncate(time.Second))
	}
	return cached.price, nil
}

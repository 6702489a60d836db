package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"updown/internal/config"
)

// Feed is the reference-price port. Implementations must bound their own
// blocking: a slow upstream surfaces as an error here, never as an
// indefinitely stalled call.
type Feed interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, error)
}

var ErrPriceUnavailable = errors.New("pricefeed: price unavailable")

func New(cfg config.FeedConfig, logger *zap.Logger) (Feed, error) {
	switch cfg.Provider {
	case "static":
		return NewStatic(decimal.NewFromFloat(cfg.StaticPrice)), nil
	case "binance_rest":
		return &BinanceREST{
			HTTP:     &http.Client{Timeout: cfg.Timeout},
			Endpoint: cfg.Endpoint,
		}, nil
	case "binance_ws":
		return NewBinanceWS(cfg.WSURL, cfg.StaleAfter, logger), nil
	default:
		return nil, fmt.Errorf("pricefeed: unknown provider %q", cfg.Provider)
	}
}

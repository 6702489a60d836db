package pricefeed

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Static serves a fixed price. Used in dev and in tests; Set allows a test to
// move the market between placement and settlement.
type Static struct {
	mu    sync.RWMutex
	price decimal.Decimal
}

func NewStatic(price decimal.Decimal) *Static {
	return &Static{price: price}
}

func (s *Static) Set(price decimal.Decimal) {
	s.mu.Lock()
	s.price = price
	s.mu.Unlock()
}

func (s *Static) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.price.IsZero() {
		return decimal.Zero, ErrPriceUnavailable
	}
	return s.price, nil
}

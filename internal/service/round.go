package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"updown/internal/models"
	"updown/internal/pricefeed"
	"updown/internal/repository"
)

// RoundService owns the round lifecycle up to settlement: it maps wall-clock
// time onto fixed window slots and guarantees at most one round per slot.
type RoundService struct {
	Repo         repository.Repository
	Feed         pricefeed.Feed
	Symbol       string
	WindowLength time.Duration
	Logger       *zap.Logger
}

// SlotFor returns the window slot containing now.
func (s *RoundService) SlotFor(now time.Time) (start, end time.Time) {
	start = now.UTC().Truncate(s.WindowLength)
	return start, start.Add(s.WindowLength)
}

// EnsureCurrentRound returns the round for the slot containing now, creating
// it if absent. Creation is insert-or-ignore against the unique window index,
// so concurrent callers converge on the same row.
func (s *RoundService) EnsureCurrentRound(ctx context.Context, now time.Time) (*models.Round, error) {
	if s == nil || s.Repo == nil {
		return nil, ErrNoOpenRound
	}
	start, end := s.SlotFor(now)

	existing, err := s.Repo.GetRoundBySlot(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("lookup round slot: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	round := &models.Round{
		Symbol:    s.Symbol,
		StartTime: start,
		EndTime:   end,
		Status:    models.RoundStatusOpen,
		OpenPrice: s.openPriceSnapshot(ctx),
	}
	if err := s.Repo.InsertRoundIgnoreConflict(ctx, round); err != nil {
		return nil, fmt.Errorf("insert round: %w", err)
	}
	if round.ID != 0 {
		if s.Logger != nil {
			s.Logger.Info("round opened",
				zap.Uint64("round_id", round.ID),
				zap.Time("start", start),
				zap.Time("end", end),
			)
		}
		return round, nil
	}

	// Lost the insert race; the winner's row must exist now.
	existing, err = s.Repo.GetRoundBySlot(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("re-read round slot: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("round slot %s missing after conflicting insert", start)
	}
	return existing, nil
}

// openPriceSnapshot is informational; a feed outage at round creation leaves
// the open price null rather than blocking the round.
func (s *RoundService) openPriceSnapshot(ctx context.Context) *decimal.Decimal {
	if s.Feed == nil {
		return nil
	}
	price, err := s.Feed.Price(ctx, s.Symbol)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("open price snapshot failed", zap.Error(err))
		}
		return nil
	}
	return &price
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"updown/internal/models"
	"updown/internal/pricefeed"
	"updown/internal/repository"
)

// SettlementService resolves rounds whose window (plus grace) has elapsed.
// Each round settles inside one transaction opened after the price fetch: the
// conditional status flip claims the round, then every pending trade is
// resolved and winners are credited. A failure anywhere rolls the whole round
// back to open, so retries start from scratch and no trade settles twice.
type SettlementService struct {
	Repo       repository.Repository
	Feed       pricefeed.Feed
	PayoutRate decimal.Decimal
	Grace      time.Duration
	BatchLimit int
	Logger     *zap.Logger
}

// SettleDueRounds settles every eligible round independently; one failing
// round is logged and skipped so the rest still settle this tick.
func (s *SettlementService) SettleDueRounds(ctx context.Context, now time.Time) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	dueBefore := now.UTC().Add(-s.Grace)
	ids, err := s.Repo.ListDueRoundIDs(ctx, dueBefore, s.BatchLimit)
	if err != nil {
		return fmt.Errorf("list due rounds: %w", err)
	}
	for _, id := range ids {
		if err := s.SettleRound(ctx, id, now); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("round settlement failed, will retry",
					zap.Uint64("round_id", id),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

func (s *SettlementService) SettleRound(ctx context.Context, roundID uint64, now time.Time) error {
	round, err := s.Repo.GetRoundByID(ctx, roundID)
	if err != nil {
		return fmt.Errorf("load round: %w", err)
	}
	if round == nil || !round.IsOpen() {
		return nil
	}

	// The price fetch stays outside the transaction: a slow or failing feed
	// aborts this round only and must not hold row locks while waiting.
	price, err := s.Feed.Price(ctx, round.Symbol)
	if err != nil {
		return fmt.Errorf("settlement price for %s: %w", round.Symbol, err)
	}

	settledAt := now.UTC()
	outcome := roundOutcome(round, price)
	var settled, won int

	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		claimed, err := s.Repo.ClaimRoundSettlementTx(tx, round.ID, price, outcome, settledAt)
		if err != nil {
			return fmt.Errorf("claim round: %w", err)
		}
		if !claimed {
			// Another worker won the claim; its transaction owns the trades.
			return nil
		}

		trades, err := s.Repo.ListPendingTradesByRoundTx(tx, round.ID)
		if err != nil {
			return fmt.Errorf("load pending trades: %w", err)
		}
		for i := range trades {
			trade := &trades[i]
			if err := s.resolveTrade(tx, trade, price, settledAt); err != nil {
				return fmt.Errorf("trade %d: %w", trade.ID, err)
			}
			settled++
			if trade.Status == models.TradeStatusWon {
				won++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.Logger != nil {
		s.Logger.Info("round settled",
			zap.Uint64("round_id", round.ID),
			zap.String("settlement_price", price.String()),
			zap.Int("trades", settled),
			zap.Int("won", won),
		)
	}
	return nil
}

// resolveTrade applies the win/loss rule against the trade's own entry price.
// An unchanged price loses for both directions; see the tie note in DESIGN.md.
func (s *SettlementService) resolveTrade(tx *gorm.DB, trade *models.Trade, price decimal.Decimal, settledAt time.Time) error {
	cmp := price.Cmp(trade.EntryPrice)
	won := (cmp > 0 && trade.Direction == models.TradeDirectionUp) ||
		(cmp < 0 && trade.Direction == models.TradeDirectionDown)

	closePrice := price
	trade.ClosePrice = &closePrice
	trade.SettledAt = &settledAt

	if !won {
		trade.Status = models.TradeStatusLost
		trade.Profit = trade.Amount.Neg()
		trade.Payout = decimal.Zero
		return s.Repo.UpdateTradeSettlementTx(tx, trade)
	}

	trade.Status = models.TradeStatusWon
	trade.Profit = trade.Amount.Mul(s.PayoutRate)
	trade.Payout = trade.Amount.Add(trade.Profit)

	user, err := s.Repo.GetUserForUpdateTx(tx, trade.UserID)
	if err != nil {
		return fmt.Errorf("lock user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %d missing for payout", trade.UserID)
	}
	newBalance := user.Balance.Add(trade.Payout)
	if err := s.Repo.UpdateUserBalanceTx(tx, trade.UserID, newBalance, settledAt); err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}

	roundID := trade.RoundID
	entry := &models.LedgerEntry{
		Ref:           uuid.NewString(),
		UserID:        trade.UserID,
		Kind:          models.LedgerKindCredit,
		Amount:        trade.Payout,
		BalanceBefore: user.Balance,
		BalanceAfter:  newBalance,
		TradeID:       &trade.ID,
		RoundID:       &roundID,
		Metadata: datatypes.JSON(fmt.Sprintf(
			`{"reason":"payout","profit":%q}`, trade.Profit.String())),
	}
	if err := s.Repo.InsertLedgerEntryTx(tx, entry); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}

	return s.Repo.UpdateTradeSettlementTx(tx, trade)
}

// roundOutcome is the price move over the round itself, relative to the open
// price snapshot. Informational; trades settle against their own entry price.
func roundOutcome(round *models.Round, price decimal.Decimal) *string {
	if round == nil || round.OpenPrice == nil {
		return nil
	}
	var outcome string
	switch price.Cmp(*round.OpenPrice) {
	case 1:
		outcome = models.RoundOutcomeUp
	case -1:
		outcome = models.RoundOutcomeDown
	default:
		outcome = models.RoundOutcomeFlat
	}
	return &outcome
}

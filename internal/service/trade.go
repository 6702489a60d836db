package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"updown/internal/config"
	"updown/internal/models"
	"updown/internal/pricefeed"
	"updown/internal/repository"
)

// TradeService validates and records wagers against the currently open round.
// The debit and the trade insert share one transaction: either both land or
// neither does.
type TradeService struct {
	Repo        repository.Repository
	Rounds      *RoundService
	Feed        pricefeed.Feed
	Trading     config.TradingConfig
	EntryCutoff time.Duration
	Logger      *zap.Logger
}

type PlaceTradeRequest struct {
	Symbol    string
	Amount    decimal.Decimal
	Direction string
}

func (s *TradeService) PlaceTrade(ctx context.Context, userID uint64, req PlaceTradeRequest, now time.Time) (*models.Trade, error) {
	direction := strings.ToLower(strings.TrimSpace(req.Direction))
	if direction != models.TradeDirectionUp && direction != models.TradeDirectionDown {
		return nil, ErrInvalidDirection
	}
	minWager := decimal.NewFromInt(s.Trading.MinWager)
	if req.Amount.Cmp(minWager) < 0 {
		return nil, fmt.Errorf("%w: minimum is %s", ErrInvalidAmount, minWager)
	}
	if s.Trading.MaxWager > 0 && req.Amount.Cmp(decimal.NewFromInt(s.Trading.MaxWager)) > 0 {
		return nil, fmt.Errorf("%w: maximum is %d", ErrInvalidAmount, s.Trading.MaxWager)
	}

	round, err := s.Rounds.EnsureCurrentRound(ctx, now)
	if err != nil {
		return nil, err
	}
	if round == nil || !round.IsOpen() {
		return nil, ErrNoOpenRound
	}
	if round.EndTime.Sub(now) <= s.EntryCutoff {
		return nil, ErrRoundClosing
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		symbol = round.Symbol
	}
	entryPrice, err := s.Feed.Price(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("entry price snapshot: %w", err)
	}

	trade := &models.Trade{
		UserID:     userID,
		RoundID:    round.ID,
		Direction:  direction,
		Amount:     req.Amount,
		EntryPrice: entryPrice,
		Status:     models.TradeStatusPending,
		PlacedAt:   now.UTC(),
	}

	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		user, err := s.Repo.GetUserForUpdateTx(tx, userID)
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}
		if user == nil {
			return ErrUserNotFound
		}
		if user.Balance.Cmp(req.Amount) < 0 {
			return ErrInsufficientBalance
		}

		newBalance := user.Balance.Sub(req.Amount)
		if err := s.Repo.UpdateUserBalanceTx(tx, userID, newBalance, now.UTC()); err != nil {
			return fmt.Errorf("debit balance: %w", err)
		}
		if err := s.Repo.InsertTradeTx(tx, trade); err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}

		roundID := round.ID
		entry := &models.LedgerEntry{
			Ref:           uuid.NewString(),
			UserID:        userID,
			Kind:          models.LedgerKindDebit,
			Amount:        req.Amount,
			BalanceBefore: user.Balance,
			BalanceAfter:  newBalance,
			TradeID:       &trade.ID,
			RoundID:       &roundID,
			Metadata: datatypes.JSON(fmt.Sprintf(
				`{"reason":"wager","symbol":%q,"direction":%q}`, symbol, direction)),
		}
		if err := s.Repo.InsertLedgerEntryTx(tx, entry); err != nil {
			return fmt.Errorf("insert ledger entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.Info("trade placed",
			zap.Uint64("trade_id", trade.ID),
			zap.Uint64("user_id", userID),
			zap.Uint64("round_id", round.ID),
			zap.String("direction", direction),
			zap.String("amount", req.Amount.String()),
		)
	}
	return trade, nil
}

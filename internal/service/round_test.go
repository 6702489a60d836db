package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"updown/internal/models"
	"updown/internal/pricefeed"
)

func newRoundService(repo *stubRepo) *RoundService {
	return &RoundService{
		Repo:         repo,
		Feed:         pricefeed.NewStatic(decimal.NewFromInt(1900)),
		Symbol:       "BTCUSDT",
		WindowLength: time.Minute,
	}
}

func TestSlotFor(t *testing.T) {
	svc := newRoundService(newStubRepo())
	now := time.Date(2026, 3, 1, 12, 30, 42, 500, time.UTC)
	start, end := svc.SlotFor(now)
	if !start.Equal(time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)) {
		t.Fatalf("start=%s", start)
	}
	if end.Sub(start) != time.Minute {
		t.Fatalf("window=%s want=1m", end.Sub(start))
	}
}

func TestEnsureCurrentRoundIdempotent(t *testing.T) {
	repo := newStubRepo()
	svc := newRoundService(repo)
	now := time.Date(2026, 3, 1, 12, 30, 10, 0, time.UTC)

	first, err := svc.EnsureCurrentRound(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == nil || first.ID == 0 {
		t.Fatalf("expected created round, got %#v", first)
	}
	if first.Status != models.RoundStatusOpen {
		t.Fatalf("status=%s want open", first.Status)
	}
	if first.OpenPrice == nil || first.OpenPrice.Cmp(decimal.NewFromInt(1900)) != 0 {
		t.Fatalf("open price=%v want 1900", first.OpenPrice)
	}

	// Repeated calls within the same slot must converge on the same row.
	for _, offset := range []time.Duration{0, 20 * time.Second, 49 * time.Second} {
		again, err := svc.EnsureCurrentRound(context.Background(), now.Add(offset))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.ID != first.ID {
			t.Fatalf("round id=%d want=%d", again.ID, first.ID)
		}
	}
	if repo.inserts != 1 {
		t.Fatalf("inserts=%d want=1", repo.inserts)
	}
}

func TestEnsureCurrentRoundNewSlot(t *testing.T) {
	repo := newStubRepo()
	svc := newRoundService(repo)
	now := time.Date(2026, 3, 1, 12, 30, 10, 0, time.UTC)

	first, err := svc.EnsureCurrentRound(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.EnsureCurrentRound(context.Background(), now.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("expected distinct rounds for adjacent slots")
	}
	if !second.StartTime.Equal(first.EndTime) {
		t.Fatalf("slots overlap: first end %s, second start %s", first.EndTime, second.StartTime)
	}
}

func TestEnsureCurrentRoundLostInsertRace(t *testing.T) {
	repo := newStubRepo()
	winner := models.Round{ID: 42, Symbol: "BTCUSDT", Status: models.RoundStatusOpen}
	repo.conflictRound = &winner
	svc := newRoundService(repo)

	got, err := svc.EnsureCurrentRound(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 42 {
		t.Fatalf("round id=%d want the concurrent winner 42", got.ID)
	}
}

func TestEnsureCurrentRoundStorageError(t *testing.T) {
	repo := newStubRepo()
	repo.failInsertRound = errors.New("db down")
	svc := newRoundService(repo)

	if _, err := svc.EnsureCurrentRound(context.Background(), time.Now().UTC()); err == nil {
		t.Fatalf("expected storage error to propagate")
	}
	if len(repo.rounds) != 0 {
		t.Fatalf("no round should exist after failed insert")
	}
}

func TestEnsureCurrentRoundFeedOutage(t *testing.T) {
	repo := newStubRepo()
	svc := newRoundService(repo)
	svc.Feed = pricefeed.NewStatic(decimal.Zero) // feed errors on zero

	round, err := svc.EnsureCurrentRound(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("feed outage must not block round creation: %v", err)
	}
	if round.OpenPrice != nil {
		t.Fatalf("open price should be null when the feed is down")
	}
}

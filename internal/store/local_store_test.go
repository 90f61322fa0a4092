package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"casino/internal/models"
)

func openTestLocal(t *testing.T) *LocalStore {
	t.Helper()
	store, err := OpenLocal(filepath.Join(t.TempDir(), "casino.db"))
	if err != nil {
		t.Fatalf("failed to open local store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLocalCreateAndGetProfile(t *testing.T) {
	ctx := context.Background()
	store := openTestLocal(t)
	profile, stats, err := store.CreateProfile(ctx, "alice", "ignored")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.AcceptsProfileID(profile.ID) {
		t.Fatalf("expected local-shaped id, got %s", profile.ID)
	}
	if !profile.Balance.Equal(StartingBalance) || profile.Level != 1 || profile.Experience != 0 {
		t.Fatalf("unexpected starting profile: %+v", profile)
	}
	if stats.TotalBets != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	loaded, err := store.GetProfile(ctx, profile.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Username != "alice" || !loaded.Balance.Equal(StartingBalance) || loaded.Currency != "USD" {
		t.Fatalf("unexpected profile: %+v", loaded)
	}
	if loaded.LastDailyBonus != "" {
		t.Fatalf("expected no bonus date, got %q", loaded.LastDailyBonus)
	}
}

func TestLocalCreateProfileDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	store := openTestLocal(t)
	first, _, err := store.CreateProfile(ctx, "alice", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := store.CreateProfile(ctx, "alice", ""); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	// The first account is untouched by the rejected attempt.
	loaded, err := store.GetProfile(ctx, first.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !loaded.Balance.Equal(StartingBalance) {
		t.Fatalf("first account mutated: %+v", loaded)
	}
	if _, err := store.GetStats(ctx, first.ID); err != nil {
		t.Fatalf("first account stats lost: %v", err)
	}
}

func TestLocalAuthenticateIgnoresPassword(t *testing.T) {
	ctx := context.Background()
	store := openTestLocal(t)
	if _, _, err := store.CreateProfile(ctx, "alice", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	profile, err := store.Authenticate(ctx, "alice", "anything-at-all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Username != "alice" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if _, err := store.Authenticate(ctx, "ghost", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLocalAuthenticateCaseSensitive(t *testing.T) {
	ctx := context.Background()
	store := openTestLocal(t)
	if _, _, err := store.CreateProfile(ctx, "Alice", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Authenticate(ctx, "alice", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected case-sensitive lookup to miss")
	}
}

func TestLocalSaveBalanceAndProgress(t *testing.T) {
	ctx := context.Background()
	store := openTestLocal(t)
	profile, _, err := store.CreateProfile(ctx, "alice", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.SaveBalance(ctx, profile.ID, decimal.RequireFromString("123.45")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.SaveProgress(ctx, profile.ID, 3, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.SaveCurrency(ctx, profile.ID, "BTC"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := store.GetProfile(ctx, profile.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Balance.String() != "123.45" || loaded.Level != 3 || loaded.Experience != 50 || loaded.Currency != "BTC" {
		t.Fatalf("unexpected profile: %+v", loaded)
	}
}

func TestLocalSaveDailyBonus(t *testing.T) {
	ctx := context.Background()
	store := openTestLocal(t)
	profile, _, err := store.CreateProfile(ctx, "alice", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.SaveDailyBonus(ctx, profile.ID, decimal.NewFromInt(1025), "2026-08-28"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := store.GetProfile(ctx, profile.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.LastDailyBonus != "2026-08-28" || loaded.Balance.String() != "1025" {
		t.Fatalf("unexpected profile: %+v", loaded)
	}
}

func TestLocalRecordWagerAggregates(t *testing.T) {
	ctx := context.Background()
	store := openTestLocal(t)
	profile, _, err := store.CreateProfile(ctx, "alice", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record := func(bet, win int64) {
		t.Helper()
		b := decimal.NewFromInt(bet)
		w := decimal.NewFromInt(win)
		err := store.RecordWager(ctx, models.Wager{ProfileID: profile.ID, BetAmount: b, WinAmount: w, Profit: w.Sub(b)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	record(50, 120) // +70
	record(30, 0)   // -30
	record(10, 10)  // push

	stats, err := store.GetStats(ctx, profile.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalBets != 3 || stats.TotalWins != 1 || stats.TotalLosses != 1 {
		t.Fatalf("unexpected counters: %+v", stats)
	}
	if stats.BiggestWin.String() != "70" || stats.BiggestLoss.String() != "-30" {
		t.Fatalf("unexpected extrema: %+v", stats)
	}
	if stats.TotalWagered.String() != "90" || stats.TotalWon.String() != "130" {
		t.Fatalf("unexpected sums: %+v", stats)
	}

	wagers, err := store.ListWagers(ctx, profile.ID, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wagers) != 3 {
		t.Fatalf("expected 3 wagers, got %d", len(wagers))
	}
}

func TestLocalGetStatsMissing(t *testing.T) {
	store := openTestLocal(t)
	if _, err := store.GetStats(context.Background(), "0123456789abcdef01234567"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

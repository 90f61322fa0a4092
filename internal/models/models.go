package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile is the persisted account record. Balance is kept in canonical
// (USD-equivalent) units regardless of the display currency.
type Profile struct {
	ID             string          `db:"id" json:"id"`
	Username       string          `db:"username" json:"username"`
	Balance        decimal.Decimal `db:"balance" json:"balance"`
	IsAdmin        bool            `db:"is_admin" json:"is_admin"`
	Level          int             `db:"level" json:"level"`
	Experience     int64           `db:"experience" json:"experience"`
	LastDailyBonus string          `db:"last_daily_bonus" json:"last_daily_bonus,omitempty"`
	Currency       string          `db:"currency" json:"currency"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// Stats holds cumulative betting statistics, one row per profile.
// BiggestWin is the maximum profit observed (never negative), BiggestLoss
// the minimum (never positive).
type Stats struct {
	ProfileID    string          `db:"profile_id" json:"-"`
	TotalBets    int64           `db:"total_bets" json:"total_bets"`
	TotalWins    int64           `db:"total_wins" json:"total_wins"`
	TotalLosses  int64           `db:"total_losses" json:"total_losses"`
	BiggestWin   decimal.Decimal `db:"biggest_win" json:"biggest_win"`
	BiggestLoss  decimal.Decimal `db:"biggest_loss" json:"biggest_loss"`
	TotalWagered decimal.Decimal `db:"total_wagered" json:"total_wagered"`
	TotalWon     decimal.Decimal `db:"total_won" json:"total_won"`
}

// ZeroStats returns a freshly initialised Stats row for a profile.
func ZeroStats(profileID string) Stats {
	return Stats{
		ProfileID:    profileID,
		BiggestWin:   decimal.Zero,
		BiggestLoss:  decimal.Zero,
		TotalWagered: decimal.Zero,
		TotalWon:     decimal.Zero,
	}
}

// User is the in-memory projection of a Profile and its Stats. It is owned
// by the session manager for the lifetime of a session; ledger operations
// are the only other mutators.
type User struct {
	Profile Profile `json:"profile"`
	Stats   Stats   `json:"stats"`
}

// Wager is one recorded wager outcome. Profit = WinAmount - BetAmount.
type Wager struct {
	ID        string          `db:"id" json:"id"`
	ProfileID string          `db:"profile_id" json:"-"`
	BetAmount decimal.Decimal `db:"bet_amount" json:"bet_amount"`
	WinAmount decimal.Decimal `db:"win_amount" json:"win_amount"`
	Profit    decimal.Decimal `db:"profit" json:"profit"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

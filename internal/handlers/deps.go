package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"casino/internal/models"
)

type SessionManager interface {
	Resolve(ctx context.Context) (models.User, bool)
	Login(ctx context.Context, username, password string) (models.User, bool)
	Register(ctx context.Context, username, password string) (models.User, error)
	Logout()
	Current() (models.User, bool)
}

type LedgerService interface {
	UpdateBalance(ctx context.Context, delta decimal.Decimal) (models.User, bool)
	RecordWager(ctx context.Context, betAmount, winAmount decimal.Decimal) (models.User, bool)
	ClaimDailyBonus(ctx context.Context) (decimal.Decimal, models.User, bool)
	SetCurrency(ctx context.Context, code string) (models.User, bool)
	RecentWagers(ctx context.Context, limit int) ([]models.Wager, bool)
}

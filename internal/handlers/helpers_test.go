package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"casino/internal/auth"
	"casino/internal/config"
	"casino/internal/middleware"
	"casino/internal/models"
	"casino/internal/websocket"
)

type stubSessions struct {
	resolveFn  func(ctx context.Context) (models.User, bool)
	loginFn    func(ctx context.Context, username, password string) (models.User, bool)
	registerFn func(ctx context.Context, username, password string) (models.User, error)
	logoutFn   func()
	currentFn  func() (models.User, bool)
}

func (s stubSessions) Resolve(ctx context.Context) (models.User, bool) {
	if s.resolveFn == nil {
		return models.User{}, false
	}
	return s.resolveFn(ctx)
}

func (s stubSessions) Login(ctx context.Context, username, password string) (models.User, bool) {
	if s.loginFn == nil {
		return models.User{}, false
	}
	return s.loginFn(ctx, username, password)
}

func (s stubSessions) Register(ctx context.Context, username, password string) (models.User, error) {
	return s.registerFn(ctx, username, password)
}

func (s stubSessions) Logout() {
	if s.logoutFn != nil {
		s.logoutFn()
	}
}

func (s stubSessions) Current() (models.User, bool) {
	if s.currentFn == nil {
		return models.User{}, false
	}
	return s.currentFn()
}

type stubLedger struct {
	updateBalanceFn func(ctx context.Context, delta decimal.Decimal) (models.User, bool)
	recordWagerFn   func(ctx context.Context, betAmount, winAmount decimal.Decimal) (models.User, bool)
	claimBonusFn    func(ctx context.Context) (decimal.Decimal, models.User, bool)
	setCurrencyFn   func(ctx context.Context, code string) (models.User, bool)
	recentWagersFn  func(ctx context.Context, limit int) ([]models.Wager, bool)
}

func (s stubLedger) UpdateBalance(ctx context.Context, delta decimal.Decimal) (models.User, bool) {
	return s.updateBalanceFn(ctx, delta)
}

func (s stubLedger) RecordWager(ctx context.Context, betAmount, winAmount decimal.Decimal) (models.User, bool) {
	return s.recordWagerFn(ctx, betAmount, winAmount)
}

func (s stubLedger) ClaimDailyBonus(ctx context.Context) (decimal.Decimal, models.User, bool) {
	return s.claimBonusFn(ctx)
}

func (s stubLedger) SetCurrency(ctx context.Context, code string) (models.User, bool) {
	return s.setCurrencyFn(ctx, code)
}

func (s stubLedger) RecentWagers(ctx context.Context, limit int) ([]models.Wager, bool) {
	return s.recentWagersFn(ctx, limit)
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
}

func newTestHandler(sessions SessionManager, ledgerService LedgerService) *Handler {
	return New(testConfig(), sessions, ledgerService, websocket.NewHub())
}

func testUser(profileID string) models.User {
	return models.User{
		Profile: models.Profile{
			ID:       profileID,
			Username: "alice",
			Balance:  decimal.NewFromInt(1000),
			Level:    1,
			Currency: "USD",
		},
		Stats: models.ZeroStats(profileID),
	}
}

// authedRequest runs fn through the auth middleware with a token minted for
// profileID, the way the router wires protected routes.
func authedRequest(t *testing.T, profileID string, req *http.Request, fn http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken("secret", profileID, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(fn).ServeHTTP(rr, req)
	return rr
}

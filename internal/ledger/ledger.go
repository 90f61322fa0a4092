// Package ledger is the mutation surface over the account projection:
// balance adjustment, experience and leveling, the idempotent daily bonus,
// and wager statistics. Every operation applies to the in-memory projection
// first and then issues a best-effort persistence write — asynchronous for
// the remote backend, synchronous for the local one. Write failures are
// logged, never rolled back: the projection stays the optimistic truth until
// the next full session resolve.
package ledger

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"casino/internal/models"
	"casino/internal/money"
	"casino/internal/store"
	"casino/internal/websocket"
)

const (
	dateLayout     = "2006-01-02"
	persistTimeout = 10 * time.Second
)

// SessionState serializes read-modify-writes on the single User projection.
type SessionState interface {
	Current() (models.User, bool)
	Mutate(fn func(u *models.User)) (models.User, bool)
}

type ProjectionHub interface {
	BroadcastProjection(profileID string, update websocket.ProjectionUpdate)
}

type Ledger struct {
	sessions SessionState
	backend  store.Backend
	async    bool
	hub      ProjectionHub
	now      func() time.Time
}

// New builds the ledger over the active backend. async selects
// fire-and-forget persistence (the remote backend); it is fixed at startup
// together with the backend choice.
func New(sessions SessionState, backend store.Backend, async bool, hub ProjectionHub) *Ledger {
	return &Ledger{
		sessions: sessions,
		backend:  backend,
		async:    async,
		hub:      hub,
		now:      time.Now,
	}
}

// NextLevelRequirement is the experience needed to leave the given level.
// It depends on the current level only, not on accumulated experience.
func NextLevelRequirement(level int) int64 {
	return int64(level) * 100
}

var levelTitles = []string{
	"Newcomer",
	"Rookie",
	"Amateur",
	"Hustler",
	"Regular",
	"Grinder",
	"Veteran",
	"High Roller",
	"Shark",
	"Legend",
}

type Rewards struct {
	DailyBonus int64
	Title      string
}

// LevelRewards returns the per-level daily bonus and cosmetic title. Levels
// beyond the title list reuse the last title.
func LevelRewards(level int) Rewards {
	idx := level - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(levelTitles) {
		idx = len(levelTitles) - 1
	}
	return Rewards{
		DailyBonus: 25 + int64(level-1)*5,
		Title:      levelTitles[idx],
	}
}

// UpdateBalance applies a delta, clamping the result at zero. No-op without
// an active session.
func (l *Ledger) UpdateBalance(ctx context.Context, delta decimal.Decimal) (models.User, bool) {
	user, ok := l.sessions.Mutate(func(u *models.User) {
		next := u.Profile.Balance.Add(delta)
		if next.IsNegative() {
			next = decimal.Zero
		}
		u.Profile.Balance = next
	})
	if !ok {
		return models.User{}, false
	}
	l.persist(ctx, "balance", func(ctx context.Context) error {
		return l.backend.SaveBalance(ctx, user.Profile.ID, user.Profile.Balance)
	})
	l.broadcast(user)
	return user, true
}

// AddExperience accumulates experience, resolving as many level-ups as the
// amount covers; the requirement is recomputed from the updated level each
// iteration.
func (l *Ledger) AddExperience(ctx context.Context, amount int64) (models.User, bool) {
	if amount < 0 {
		amount = 0
	}
	user, ok := l.sessions.Mutate(func(u *models.User) {
		exp := u.Profile.Experience + amount
		lvl := u.Profile.Level
		for exp >= NextLevelRequirement(lvl) {
			exp -= NextLevelRequirement(lvl)
			lvl++
		}
		u.Profile.Experience = exp
		u.Profile.Level = lvl
	})
	if !ok {
		return models.User{}, false
	}
	l.persist(ctx, "progress", func(ctx context.Context) error {
		return l.backend.SaveProgress(ctx, user.Profile.ID, user.Profile.Level, user.Profile.Experience)
	})
	l.broadcast(user)
	return user, true
}

// ClaimDailyBonus grants the level-scaled bonus at most once per UTC
// calendar day. The second claim on the same day returns zero and leaves the
// balance untouched.
func (l *Ledger) ClaimDailyBonus(ctx context.Context) (decimal.Decimal, models.User, bool) {
	today := l.now().UTC().Format(dateLayout)
	bonus := decimal.Zero
	user, ok := l.sessions.Mutate(func(u *models.User) {
		if u.Profile.LastDailyBonus == today {
			return
		}
		bonus = decimal.NewFromInt(LevelRewards(u.Profile.Level).DailyBonus)
		u.Profile.Balance = u.Profile.Balance.Add(bonus)
		u.Profile.LastDailyBonus = today
	})
	if !ok {
		return decimal.Zero, models.User{}, false
	}
	if bonus.IsZero() {
		return decimal.Zero, user, true
	}
	l.persist(ctx, "daily bonus", func(ctx context.Context) error {
		return l.backend.SaveDailyBonus(ctx, user.Profile.ID, user.Profile.Balance, today)
	})
	l.broadcast(user)
	return bonus, user, true
}

// RecordWager folds one wager outcome into the statistics projection,
// persists the wager, and grants one experience point per ten canonical
// units wagered. A zero-profit wager counts toward total bets only.
func (l *Ledger) RecordWager(ctx context.Context, betAmount, winAmount decimal.Decimal) (models.User, bool) {
	profit := winAmount.Sub(betAmount)
	user, ok := l.sessions.Mutate(func(u *models.User) {
		u.Stats = store.ApplyWager(u.Stats, models.Wager{
			BetAmount: betAmount,
			WinAmount: winAmount,
			Profit:    profit,
		})
	})
	if !ok {
		return models.User{}, false
	}
	l.persist(ctx, "wager", func(ctx context.Context) error {
		return l.backend.RecordWager(ctx, models.Wager{
			ProfileID: user.Profile.ID,
			BetAmount: betAmount,
			WinAmount: winAmount,
			Profit:    profit,
		})
	})
	xp := betAmount.Div(decimal.NewFromInt(10)).Floor().IntPart()
	if xp > 0 {
		if leveled, ok := l.AddExperience(ctx, xp); ok {
			return leveled, true
		}
	}
	l.broadcast(user)
	return user, true
}

// SetCurrency switches the display currency. The stored balance is never
// rescaled; only rendering changes.
func (l *Ledger) SetCurrency(ctx context.Context, code string) (models.User, bool) {
	if !money.Supported(code) {
		return models.User{}, false
	}
	user, ok := l.sessions.Mutate(func(u *models.User) {
		u.Profile.Currency = code
	})
	if !ok {
		return models.User{}, false
	}
	l.persist(ctx, "currency", func(ctx context.Context) error {
		return l.backend.SaveCurrency(ctx, user.Profile.ID, code)
	})
	l.broadcast(user)
	return user, true
}

// RecentWagers lists the active profile's latest recorded wagers.
func (l *Ledger) RecentWagers(ctx context.Context, limit int) ([]models.Wager, bool) {
	user, ok := l.sessions.Current()
	if !ok {
		return nil, false
	}
	wagers, err := l.backend.ListWagers(ctx, user.Profile.ID, limit)
	if err != nil {
		log.Printf("ledger: list wagers failed: %v", err)
		return nil, true
	}
	return wagers, true
}

// persist runs a backend write without ever blocking the projection update
// on its outcome. Failures are logged and swallowed; the next session
// resolve is the only resynchronization point. The remote backend persists
// on a detached context so the write outlives the caller.
func (l *Ledger) persist(base context.Context, op string, fn func(ctx context.Context) error) {
	run := func(parent context.Context) {
		ctx, cancel := context.WithTimeout(parent, persistTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("ledger: persist %s failed: %v", op, err)
		}
	}
	if l.async {
		go run(context.Background())
		return
	}
	run(base)
}

func (l *Ledger) broadcast(user models.User) {
	if l.hub == nil {
		return
	}
	l.hub.BroadcastProjection(user.Profile.ID, websocket.ProjectionUpdate{
		Balance:    user.Profile.Balance.String(),
		Display:    money.Format(user.Profile.Balance, user.Profile.Currency),
		Currency:   user.Profile.Currency,
		Level:      user.Profile.Level,
		Experience: user.Profile.Experience,
	})
}

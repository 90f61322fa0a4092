// Package store defines the persistence backend abstraction behind the
// account ledger. Exactly one backend is active per process: the networked
// Postgres store when configured, the local SQLite fallback otherwise.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"casino/internal/models"
)

const (
	RemoteName = "remote"
	LocalName  = "local"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// StartingBalance is granted to every new profile, in canonical units.
var StartingBalance = decimal.NewFromInt(1000)

// Backend is the persistence contract shared by the remote and local stores.
// Authenticate returns ErrInvalidCredentials for both unknown accounts and
// bad passwords; callers surface that as a boolean, never a fault.
type Backend interface {
	Name() string
	// AcceptsProfileID reports whether an identifier has the shape this
	// backend issues. Session references failing this check are discarded.
	AcceptsProfileID(id string) bool
	Authenticate(ctx context.Context, username, password string) (models.Profile, error)
	CreateProfile(ctx context.Context, username, password string) (models.Profile, models.Stats, error)
	GetProfile(ctx context.Context, profileID string) (models.Profile, error)
	GetStats(ctx context.Context, profileID string) (models.Stats, error)
	SaveBalance(ctx context.Context, profileID string, balance decimal.Decimal) error
	SaveProgress(ctx context.Context, profileID string, level int, experience int64) error
	SaveDailyBonus(ctx context.Context, profileID string, balance decimal.Decimal, claimedOn string) error
	SaveCurrency(ctx context.Context, profileID, currency string) error
	RecordWager(ctx context.Context, wager models.Wager) error
	ListWagers(ctx context.Context, profileID string, limit int) ([]models.Wager, error)
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"casino/internal/auth"
	"casino/internal/db"
	"casino/internal/models"
)

// EmailDomain is the fixed domain of the synthetic emails under which remote
// accounts are registered; usernames map to <username>@EmailDomain.
const EmailDomain = "demo-casino.local"

func SyntheticEmail(username string) string {
	return username + "@" + EmailDomain
}

// RemoteStore is the networked, authoritative backend. Wager statistics are
// aggregated server-side by a trigger on wager insertion (see migrations),
// so RecordWager only inserts the wager row.
type RemoteStore struct {
	db       DB
	txRunner db.TxRunner
}

func NewRemoteStore(database DB, txRunner db.TxRunner) *RemoteStore {
	return &RemoteStore{db: database, txRunner: txRunner}
}

func (s *RemoteStore) Name() string { return RemoteName }

// AcceptsProfileID requires the backend-issued UUID shape.
func (s *RemoteStore) AcceptsProfileID(id string) bool {
	return uuid.Validate(id) == nil
}

type profileRow struct {
	ID             string          `db:"id"`
	Username       string          `db:"username"`
	PasswordHash   string          `db:"password_hash"`
	Balance        decimal.Decimal `db:"balance"`
	IsAdmin        bool            `db:"is_admin"`
	Level          int             `db:"level"`
	Experience     int64           `db:"experience"`
	LastDailyBonus string          `db:"last_daily_bonus"`
	Currency       string          `db:"currency"`
	CreatedAt      time.Time       `db:"created_at"`
}

func (r profileRow) toProfile() models.Profile {
	return models.Profile{
		ID:             r.ID,
		Username:       r.Username,
		Balance:        r.Balance,
		IsAdmin:        r.IsAdmin,
		Level:          r.Level,
		Experience:     r.Experience,
		LastDailyBonus: r.LastDailyBonus,
		Currency:       r.Currency,
		CreatedAt:      r.CreatedAt,
	}
}

const profileColumns = `id, username, balance, is_admin, level, experience, COALESCE(last_daily_bonus, '') AS last_daily_bonus, currency, created_at`

func (s *RemoteStore) Authenticate(ctx context.Context, username, password string) (models.Profile, error) {
	var row profileRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+profileColumns+`, password_hash
		FROM profiles
		WHERE email = $1
	`, SyntheticEmail(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, ErrInvalidCredentials
		}
		return models.Profile{}, err
	}
	if !auth.CheckPassword(row.PasswordHash, password) {
		return models.Profile{}, ErrInvalidCredentials
	}
	return row.toProfile(), nil
}

func (s *RemoteStore) CreateProfile(ctx context.Context, username, password string) (models.Profile, models.Stats, error) {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return models.Profile{}, models.Stats{}, err
	}
	profile := models.Profile{
		ID:         uuid.NewString(),
		Username:   username,
		Balance:    StartingBalance,
		Level:      1,
		Experience: 0,
		Currency:   "USD",
		CreatedAt:  time.Now().UTC(),
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO profiles (id, username, email, password_hash, balance, is_admin, level, experience, currency)
			VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7, $8)
		`, profile.ID, profile.Username, SyntheticEmail(username), passwordHash, profile.Balance, profile.Level, profile.Experience, profile.Currency)
		return err
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.Profile{}, models.Stats{}, ErrUsernameTaken
		}
		return models.Profile{}, models.Stats{}, err
	}
	// Statistics are best-effort and must never block registration.
	stats := models.ZeroStats(profile.ID)
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO user_stats (profile_id) VALUES ($1)
	`, profile.ID); err != nil {
		log.Printf("remote store: failed to create stats for %s: %v", profile.ID, err)
	}
	return profile, stats, nil
}

func (s *RemoteStore) GetProfile(ctx context.Context, profileID string) (models.Profile, error) {
	var row profileRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE id = $1
	`, profileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, err
	}
	return row.toProfile(), nil
}

func (s *RemoteStore) GetStats(ctx context.Context, profileID string) (models.Stats, error) {
	var stats models.Stats
	err := s.db.GetContext(ctx, &stats, `
		SELECT profile_id, total_bets, total_wins, total_losses, biggest_win, biggest_loss, total_wagered, total_won
		FROM user_stats
		WHERE profile_id = $1
	`, profileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Stats{}, ErrNotFound
		}
		return models.Stats{}, err
	}
	return stats, nil
}

func (s *RemoteStore) SaveBalance(ctx context.Context, profileID string, balance decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE profiles
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`, balance, profileID)
	return err
}

func (s *RemoteStore) SaveProgress(ctx context.Context, profileID string, level int, experience int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE profiles
		SET level = $1, experience = $2, updated_at = NOW()
		WHERE id = $3
	`, level, experience, profileID)
	return err
}

func (s *RemoteStore) SaveDailyBonus(ctx context.Context, profileID string, balance decimal.Decimal, claimedOn string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE profiles
		SET balance = $1, last_daily_bonus = $2, updated_at = NOW()
		WHERE id = $3
	`, balance, claimedOn, profileID)
	return err
}

func (s *RemoteStore) SaveCurrency(ctx context.Context, profileID, currency string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE profiles
		SET currency = $1, updated_at = NOW()
		WHERE id = $2
	`, currency, profileID)
	return err
}

func (s *RemoteStore) RecordWager(ctx context.Context, wager models.Wager) error {
	id := wager.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wagers (id, profile_id, bet_amount, win_amount, profit)
		VALUES ($1, $2, $3, $4, $5)
	`, id, wager.ProfileID, wager.BetAmount, wager.WinAmount, wager.Profit)
	return err
}

func (s *RemoteStore) ListWagers(ctx context.Context, profileID string, limit int) ([]models.Wager, error) {
	var rows []models.Wager
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, profile_id, bet_amount, win_amount, profit, created_at
		FROM wagers
		WHERE profile_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, profileID, limit)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

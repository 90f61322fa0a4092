package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"log"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"casino/internal/models"
)

// LocalStore is the device-local fallback backend, used when the remote
// store is not configured. It verifies no secret on login and aggregates
// wager statistics client-side, inside the same SQLite transaction as the
// wager insert.
type LocalStore struct {
	db *sqlx.DB
}

var localMigrations = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id               TEXT PRIMARY KEY,
		username         TEXT NOT NULL UNIQUE,
		balance          TEXT NOT NULL DEFAULT '0',
		is_admin         INTEGER NOT NULL DEFAULT 0,
		level            INTEGER NOT NULL DEFAULT 1,
		experience       INTEGER NOT NULL DEFAULT 0,
		last_daily_bonus TEXT NOT NULL DEFAULT '',
		currency         TEXT NOT NULL DEFAULT 'USD',
		created_at       INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_stats (
		profile_id    TEXT PRIMARY KEY,
		total_bets    INTEGER NOT NULL DEFAULT 0,
		total_wins    INTEGER NOT NULL DEFAULT 0,
		total_losses  INTEGER NOT NULL DEFAULT 0,
		biggest_win   TEXT NOT NULL DEFAULT '0',
		biggest_loss  TEXT NOT NULL DEFAULT '0',
		total_wagered TEXT NOT NULL DEFAULT '0',
		total_won     TEXT NOT NULL DEFAULT '0'
	)`,
	`CREATE TABLE IF NOT EXISTS wagers (
		id         TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL,
		bet_amount TEXT NOT NULL,
		win_amount TEXT NOT NULL,
		profit     TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_wagers_profile ON wagers(profile_id, created_at)`,
}

func OpenLocal(path string) (*LocalStore, error) {
	database, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, err
	}
	// modernc's driver serializes writes; a single connection avoids
	// SQLITE_BUSY on concurrent persistence calls.
	database.SetMaxOpenConns(1)
	for _, stmt := range localMigrations {
		if _, err := database.Exec(stmt); err != nil {
			_ = database.Close()
			return nil, err
		}
	}
	return &LocalStore{db: database}, nil
}

func (s *LocalStore) Close() error { return s.db.Close() }

func (s *LocalStore) Name() string { return LocalName }

var localIDPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

// AcceptsProfileID matches the random hex tokens this backend issues; the
// remote backend's UUIDs do not match.
func (s *LocalStore) AcceptsProfileID(id string) bool {
	return localIDPattern.MatchString(id)
}

func newLocalID() string {
	buf := make([]byte, 12)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

type localProfileRow struct {
	ID             string          `db:"id"`
	Username       string          `db:"username"`
	Balance        decimal.Decimal `db:"balance"`
	IsAdmin        bool            `db:"is_admin"`
	Level          int             `db:"level"`
	Experience     int64           `db:"experience"`
	LastDailyBonus string          `db:"last_daily_bonus"`
	Currency       string          `db:"currency"`
	CreatedAt      int64           `db:"created_at"`
}

func (r localProfileRow) toProfile() models.Profile {
	return models.Profile{
		ID:             r.ID,
		Username:       r.Username,
		Balance:        r.Balance,
		IsAdmin:        r.IsAdmin,
		Level:          r.Level,
		Experience:     r.Experience,
		LastDailyBonus: r.LastDailyBonus,
		Currency:       r.Currency,
		CreatedAt:      time.Unix(r.CreatedAt, 0).UTC(),
	}
}

// Authenticate is a username-only lookup; the local fallback stores no
// secret and does not verify the password.
func (s *LocalStore) Authenticate(ctx context.Context, username, _ string) (models.Profile, error) {
	var row localProfileRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, username, balance, is_admin, level, experience, last_daily_bonus, currency, created_at
		FROM profiles
		WHERE username = ?
	`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, ErrInvalidCredentials
		}
		return models.Profile{}, err
	}
	return row.toProfile(), nil
}

func (s *LocalStore) CreateProfile(ctx context.Context, username, _ string) (models.Profile, models.Stats, error) {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM profiles WHERE username = ?)`, username); err != nil {
		return models.Profile{}, models.Stats{}, err
	}
	if exists {
		return models.Profile{}, models.Stats{}, ErrUsernameTaken
	}
	profile := models.Profile{
		ID:         newLocalID(),
		Username:   username,
		Balance:    StartingBalance,
		Level:      1,
		Experience: 0,
		Currency:   "USD",
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, username, balance, is_admin, level, experience, currency, created_at)
		VALUES (?, ?, ?, 0, ?, ?, ?, ?)
	`, profile.ID, profile.Username, profile.Balance, profile.Level, profile.Experience, profile.Currency, profile.CreatedAt.Unix()); err != nil {
		return models.Profile{}, models.Stats{}, err
	}
	stats := models.ZeroStats(profile.ID)
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO user_stats (profile_id) VALUES (?)
	`, profile.ID); err != nil {
		log.Printf("local store: failed to create stats for %s: %v", profile.ID, err)
	}
	return profile, stats, nil
}

func (s *LocalStore) GetProfile(ctx context.Context, profileID string) (models.Profile, error) {
	var row localProfileRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, username, balance, is_admin, level, experience, last_daily_bonus, currency, created_at
		FROM profiles
		WHERE id = ?
	`, profileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, err
	}
	return row.toProfile(), nil
}

func (s *LocalStore) GetStats(ctx context.Context, profileID string) (models.Stats, error) {
	var stats models.Stats
	err := s.db.GetContext(ctx, &stats, `
		SELECT profile_id, total_bets, total_wins, total_losses, biggest_win, biggest_loss, total_wagered, total_won
		FROM user_stats
		WHERE profile_id = ?
	`, profileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Stats{}, ErrNotFound
		}
		return models.Stats{}, err
	}
	return stats, nil
}

func (s *LocalStore) SaveBalance(ctx context.Context, profileID string, balance decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET balance = ? WHERE id = ?
	`, balance, profileID)
	return err
}

func (s *LocalStore) SaveProgress(ctx context.Context, profileID string, level int, experience int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET level = ?, experience = ? WHERE id = ?
	`, level, experience, profileID)
	return err
}

func (s *LocalStore) SaveDailyBonus(ctx context.Context, profileID string, balance decimal.Decimal, claimedOn string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET balance = ?, last_daily_bonus = ? WHERE id = ?
	`, balance, claimedOn, profileID)
	return err
}

func (s *LocalStore) SaveCurrency(ctx context.Context, profileID, currency string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET currency = ? WHERE id = ?
	`, currency, profileID)
	return err
}

// RecordWager inserts the wager row and folds it into user_stats in one
// transaction. Aggregation is computed here because there is no server to
// do it for us.
func (s *LocalStore) RecordWager(ctx context.Context, wager models.Wager) error {
	id := wager.ID
	if id == "" {
		id = newLocalID()
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_stats (profile_id) VALUES (?)
	`, wager.ProfileID); err != nil {
		return err
	}
	var stats models.Stats
	if err := tx.GetContext(ctx, &stats, `
		SELECT profile_id, total_bets, total_wins, total_losses, biggest_win, biggest_loss, total_wagered, total_won
		FROM user_stats
		WHERE profile_id = ?
	`, wager.ProfileID); err != nil {
		return err
	}
	stats = ApplyWager(stats, wager)
	if _, err := tx.ExecContext(ctx, `
		UPDATE user_stats
		SET total_bets = ?, total_wins = ?, total_losses = ?, biggest_win = ?, biggest_loss = ?, total_wagered = ?, total_won = ?
		WHERE profile_id = ?
	`, stats.TotalBets, stats.TotalWins, stats.TotalLosses, stats.BiggestWin, stats.BiggestLoss, stats.TotalWagered, stats.TotalWon, wager.ProfileID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wagers (id, profile_id, bet_amount, win_amount, profit, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, wager.ProfileID, wager.BetAmount, wager.WinAmount, wager.Profit, time.Now().UTC().Unix()); err != nil {
		return err
	}
	return tx.Commit()
}

type localWagerRow struct {
	ID        string          `db:"id"`
	ProfileID string          `db:"profile_id"`
	BetAmount decimal.Decimal `db:"bet_amount"`
	WinAmount decimal.Decimal `db:"win_amount"`
	Profit    decimal.Decimal `db:"profit"`
	CreatedAt int64           `db:"created_at"`
}

func (s *LocalStore) ListWagers(ctx context.Context, profileID string, limit int) ([]models.Wager, error) {
	var rows []localWagerRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, profile_id, bet_amount, win_amount, profit, created_at
		FROM wagers
		WHERE profile_id = ?
		ORDER BY created_at DESC, id
		LIMIT ?
	`, profileID, limit)
	if err != nil {
		return nil, err
	}
	wagers := make([]models.Wager, 0, len(rows))
	for _, row := range rows {
		wagers = append(wagers, models.Wager{
			ID:        row.ID,
			ProfileID: row.ProfileID,
			BetAmount: row.BetAmount,
			WinAmount: row.WinAmount,
			Profit:    row.Profit,
			CreatedAt: time.Unix(row.CreatedAt, 0).UTC(),
		})
	}
	return wagers, nil
}

// ApplyWager folds one wager outcome into a stats row. A zero-profit wager
// counts toward total_bets but is neither a win nor a loss.
func ApplyWager(stats models.Stats, wager models.Wager) models.Stats {
	stats.TotalBets++
	if wager.Profit.IsPositive() {
		stats.TotalWins++
	} else if wager.Profit.IsNegative() {
		stats.TotalLosses++
	}
	if wager.Profit.GreaterThan(stats.BiggestWin) {
		stats.BiggestWin = wager.Profit
	}
	if wager.Profit.LessThan(stats.BiggestLoss) {
		stats.BiggestLoss = wager.Profit
	}
	stats.TotalWagered = stats.TotalWagered.Add(wager.BetAmount)
	stats.TotalWon = stats.TotalWon.Add(wager.WinAmount)
	return stats
}

package handlers

import (
	"encoding/json"
	"net/http"

	"casino/internal/config"
	"casino/internal/ledger"
	"casino/internal/middleware"
	"casino/internal/models"
	"casino/internal/money"
	"casino/internal/websocket"
)

type Handler struct {
	cfg      config.Config
	sessions SessionManager
	ledger   LedgerService
	hub      *websocket.Hub
}

func New(cfg config.Config, sessions SessionManager, ledgerService LedgerService, hub *websocket.Hub) *Handler {
	return &Handler{
		cfg:      cfg,
		sessions: sessions,
		ledger:   ledgerService,
		hub:      hub,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// activeUser resolves the authenticated caller against the single in-process
// session. A valid token for a profile that is no longer signed in is
// rejected the same way as a missing one.
func (h *Handler) activeUser(r *http.Request) (models.User, bool) {
	profileID, ok := middleware.ProfileIDFromContext(r.Context())
	if !ok {
		return models.User{}, false
	}
	user, ok := h.sessions.Current()
	if !ok || user.Profile.ID != profileID {
		return models.User{}, false
	}
	return user, true
}

func userPayload(user models.User) map[string]any {
	rewards := ledger.LevelRewards(user.Profile.Level)
	return map[string]any{
		"id":                     user.Profile.ID,
		"username":               user.Profile.Username,
		"balance":                user.Profile.Balance.String(),
		"display_balance":        money.Format(user.Profile.Balance, user.Profile.Currency),
		"currency":               user.Profile.Currency,
		"is_admin":               user.Profile.IsAdmin,
		"level":                  user.Profile.Level,
		"experience":             user.Profile.Experience,
		"next_level_requirement": ledger.NextLevelRequirement(user.Profile.Level),
		"title":                  rewards.Title,
		"daily_bonus":            rewards.DailyBonus,
		"last_daily_bonus":       user.Profile.LastDailyBonus,
		"created_at":             user.Profile.CreatedAt,
		"stats": map[string]any{
			"total_bets":    user.Stats.TotalBets,
			"total_wins":    user.Stats.TotalWins,
			"total_losses":  user.Stats.TotalLosses,
			"biggest_win":   user.Stats.BiggestWin.String(),
			"biggest_loss":  user.Stats.BiggestLoss.String(),
			"total_wagered": user.Stats.TotalWagered.String(),
			"total_won":     user.Stats.TotalWon.String(),
		},
	}
}

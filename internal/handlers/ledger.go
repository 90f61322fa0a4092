package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"casino/internal/money"
)

type balanceRequest struct {
	Delta decimal.Decimal `json:"delta"`
}

// AdjustBalance is one of the two entry points game simulations call; the
// new balance is clamped at zero by the ledger.
func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.activeUser(r); !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req balanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, ok := h.ledger.UpdateBalance(r.Context(), req.Delta)
	if !ok {
		respondError(w, http.StatusUnauthorized, "no active session")
		return
	}
	respondJSON(w, http.StatusOK, userPayload(user))
}

type wagerRequest struct {
	BetAmount decimal.Decimal `json:"bet_amount"`
	WinAmount decimal.Decimal `json:"win_amount"`
}

// PlaceWager records a wager outcome: statistics, persistence, and
// experience. Game simulations own the outcome; this endpoint only accounts
// for it.
func (h *Handler) PlaceWager(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.activeUser(r); !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req wagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.BetAmount.IsNegative() || req.WinAmount.IsNegative() {
		respondError(w, http.StatusBadRequest, "amounts must be non-negative")
		return
	}
	user, ok := h.ledger.RecordWager(r.Context(), req.BetAmount, req.WinAmount)
	if !ok {
		respondError(w, http.StatusUnauthorized, "no active session")
		return
	}
	respondJSON(w, http.StatusOK, userPayload(user))
}

func (h *Handler) ClaimDailyBonus(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.activeUser(r); !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	bonus, user, ok := h.ledger.ClaimDailyBonus(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "no active session")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"bonus":   bonus.String(),
		"claimed": !bonus.IsZero(),
		"user":    userPayload(user),
	})
}

func (h *Handler) ListWagers(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.activeUser(r); !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if parsed > 100 {
			parsed = 100
		}
		limit = parsed
	}
	wagers, ok := h.ledger.RecentWagers(r.Context(), limit)
	if !ok {
		respondError(w, http.StatusUnauthorized, "no active session")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"wagers": wagers})
}

type currencyRequest struct {
	Currency string `json:"currency"`
}

func (h *Handler) SetCurrency(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.activeUser(r); !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req currencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if !money.Supported(req.Currency) {
		respondError(w, http.StatusBadRequest, "unsupported currency")
		return
	}
	user, ok := h.ledger.SetCurrency(r.Context(), req.Currency)
	if !ok {
		respondError(w, http.StatusUnauthorized, "no active session")
		return
	}
	respondJSON(w, http.StatusOK, userPayload(user))
}

package handlers

import (
	"net/http"
	"strings"

	"casino/internal/auth"
	"casino/internal/websocket"
)

// WSUpdates upgrades the connection and streams projection updates for the
// authenticated profile. Browsers cannot set headers on websocket upgrades,
// so the token is also accepted as a query parameter.
func (h *Handler) WSUpdates(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	if user, ok := h.sessions.Current(); !ok || user.Profile.ID != claims.UserID {
		respondError(w, http.StatusUnauthorized, "no active session")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}

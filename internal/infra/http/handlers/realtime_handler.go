package handlers

import (
	"net/http"

	"github.com/xavierca1/leaddesk/internal/infra/http/middleware"
	"github.com/xavierca1/leaddesk/internal/infra/realtime"
)

type RealtimeHandler struct {
	Hub    *realtime.Hub
	Tokens middleware.TokenValidator
}

func NewRealtimeHandler(hub *realtime.Hub, tokens middleware.TokenValidator) *RealtimeHandler {
	return &RealtimeHandler{Hub: hub, Tokens: tokens}
}

// ServeWS (GET /ws?token=) autentica antes do upgrade; browsers não mandam
// header Authorization no handshake.
func (h *RealtimeHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing token")
		return
	}
	if _, err := h.Tokens.ValidateToken(token); err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
		return
	}
	h.Hub.ServeWS(w, r)
}

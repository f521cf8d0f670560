package handlers

import (
	"net/http"

	"github.com/xavierca1/leaddesk/internal/infra/http/middleware"
	"github.com/xavierca1/leaddesk/internal/usecase"
)

type SettingsHandler struct {
	UC *usecase.SettingsUseCase
}

func NewSettingsHandler(uc *usecase.SettingsUseCase) *SettingsHandler {
	return &SettingsHandler{UC: uc}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.UC.Get(r.Context())
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateSettingsInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.Actor = middleware.Actor(r.Context())

	view, err := h.UC.Update(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

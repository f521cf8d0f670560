package handlers

import (
	"net/http"
	"strconv"

	"github.com/xavierca1/leaddesk/internal/usecase"
)

type NotificationHandler struct {
	QueryUC *usecase.QueryLeadUseCase
}

func NewNotificationHandler(query *usecase.QueryLeadUseCase) *NotificationHandler {
	return &NotificationHandler{QueryUC: query}
}

// ListRecent (GET /notifications?limit=)
func (h *NotificationHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "limit deve ser um inteiro positivo")
			return
		}
		limit = n
	}

	rows, err := h.QueryUC.RecentNotifications(r.Context(), limit)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

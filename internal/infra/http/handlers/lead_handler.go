package handlers

import (
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/leaddesk/internal/entity"
	"github.com/xavierca1/leaddesk/internal/infra/http/middleware"
	"github.com/xavierca1/leaddesk/internal/usecase"
)

type LeadHandler struct {
	CaptureUC *usecase.CaptureLeadUseCase
	QueryUC   *usecase.QueryLeadUseCase
	UpdateUC  *usecase.UpdateLeadUseCase
	NotifyUC  *usecase.NotifyLeadUseCase
	ReplyUC   *usecase.ReplyLeadUseCase
}

func NewLeadHandler(
	capture *usecase.CaptureLeadUseCase,
	query *usecase.QueryLeadUseCase,
	update *usecase.UpdateLeadUseCase,
	notify *usecase.NotifyLeadUseCase,
	reply *usecase.ReplyLeadUseCase,
) *LeadHandler {
	return &LeadHandler{
		CaptureUC: capture,
		QueryUC:   query,
		UpdateUC:  update,
		NotifyUC:  notify,
		ReplyUC:   reply,
	}
}

type CaptureLeadResponse struct {
	Success bool   `json:"success"`
	LeadID  string `json:"leadId"`
}

type NotifyChannelResponse struct {
	OK         bool                 `json:"ok"`
	Status     entity.ChannelStatus `json:"status"`
	Error      string               `json:"error,omitempty"`
	ManualLink string               `json:"manualLink,omitempty"`
}

// CaptureLead (POST /leads/capture) responde assim que o lead é salvo.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	var input usecase.CaptureLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.CaptureUC.Execute(r.Context(), input, requestMeta(r))
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CaptureLeadResponse{Success: true, LeadID: out.LeadID})
}

// GetLead (GET /leads/{id})
func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.QueryUC.GetLead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// UpdateLead (PUT /leads/{id})
func (h *LeadHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.LeadID = chi.URLParam(r, "id")
	input.Actor = middleware.Actor(r.Context())

	lead, err := h.UpdateUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// NotifyChannel (POST /leads/{id}/notify/{channel}) reexecuta um canal de alerta.
// ok diz respeito a esta tentativa; status é o agregado do canal.
func (h *LeadHandler) NotifyChannel(w http.ResponseWriter, r *http.Request) {
	result, err := h.NotifyUC.RunChannel(r.Context(), usecase.RunChannelInput{
		LeadID:  chi.URLParam(r, "id"),
		Channel: chi.URLParam(r, "channel"),
		Actor:   middleware.Actor(r.Context()),
	})
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NotifyChannelResponse{
		OK:         result.Kind == entity.DeliverySent,
		Status:     result.Status,
		Error:      result.Error,
		ManualLink: result.ManualLink,
	})
}

// ReplyWhatsApp (POST /leads/{id}/reply/whatsapp)
func (h *LeadHandler) ReplyWhatsApp(w http.ResponseWriter, r *http.Request) {
	var input usecase.ReplyWhatsAppInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.LeadID = chi.URLParam(r, "id")
	input.Actor = middleware.Actor(r.Context())

	out, err := h.ReplyUC.ReplyWhatsApp(r.Context(), input)
	if err != nil {
		if out != nil {
			writeJSON(w, http.StatusBadGateway, out)
			return
		}
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ReplyEmail (POST /leads/{id}/reply/email)
func (h *LeadHandler) ReplyEmail(w http.ResponseWriter, r *http.Request) {
	var input usecase.ReplyEmailInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.LeadID = chi.URLParam(r, "id")
	input.Actor = middleware.Actor(r.Context())

	out, err := h.ReplyUC.ReplyEmail(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// LeadNotifications (GET /leads/{id}/notifications)
func (h *LeadHandler) LeadNotifications(w http.ResponseWriter, r *http.Request) {
	rows, err := h.QueryUC.LeadNotifications(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func requestMeta(r *http.Request) usecase.RequestMeta {
	return usecase.RequestMeta{
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}
}

// getClientIP: primeiro hop do X-Forwarded-For, depois X-Real-IP, depois RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/xavierca1/leaddesk/internal/usecase"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Success bool                      `json:"success"`
	Code    string                    `json:"code,omitempty"`
	Error   string                    `json:"error"`
	Fields  []usecase.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("erro ao serializar resposta")
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Code: code, Error: message})
}

// writeUseCaseError traduz DomainError/TechnicalError em status HTTP.
func writeUseCaseError(w http.ResponseWriter, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		writeJSON(w, domainStatus(de.Code), ErrorResponse{
			Success: false,
			Code:    de.Code,
			Error:   de.Message,
			Fields:  de.Fields,
		})
		return
	}

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		log.Error().Err(te.Err).Str("code", te.Code).Msg(te.Message)
		writeErrorResponse(w, http.StatusInternalServerError, te.Code, "internal error")
		return
	}

	log.Error().Err(err).Msg("erro inesperado")
	writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
}

func domainStatus(code string) int {
	switch code {
	case usecase.CodeLeadNotFound:
		return http.StatusNotFound
	case usecase.CodeDeliveryFailed:
		return http.StatusBadGateway
	case usecase.CodeValidation, usecase.CodeNoContact, usecase.CodeEmptyUpdate:
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return false
	}
	return true
}

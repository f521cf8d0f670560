package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xavierca1/leaddesk/internal/entity"
)

type UpdateLeadUseCase struct {
	LeadRepo entity.LeadRepositoryInterface
}

func NewUpdateLeadUseCase(leadRepo entity.LeadRepositoryInterface) *UpdateLeadUseCase {
	return &UpdateLeadUseCase{LeadRepo: leadRepo}
}

func (uc *UpdateLeadUseCase) Execute(ctx context.Context, input UpdateLeadInput) (*entity.Lead, error) {
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	update := entity.LeadUpdate{Actor: actorOr(input.Actor)}
	if input.Status != nil {
		st := entity.LeadStatus(*input.Status)
		update.Status = &st
	}
	if input.OwnerID != nil {
		owner := strings.TrimSpace(*input.OwnerID)
		update.OwnerID = &owner
	}
	if input.Note != nil {
		if note := SanitizeText(*input.Note); note != "" {
			update.Note = &note
		}
	}

	if update.Status == nil && update.OwnerID == nil && update.Note == nil {
		return nil, &DomainError{Code: CodeEmptyUpdate, Message: "nada para atualizar"}
	}

	lead, err := uc.LeadRepo.ApplyUpdate(ctx, input.LeadID, update)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, leadNotFound(input.LeadID)
		}
		return nil, databaseError("erro ao atualizar lead", err)
	}

	log.Info().Str("lead_id", lead.ID).Str("by", update.Actor).Msg("📝 Lead atualizado")
	return lead, nil
}

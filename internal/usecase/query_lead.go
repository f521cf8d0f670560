package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/leaddesk/internal/entity"
)

const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 200
)

// QueryLeadUseCase atende as leituras do painel.
type QueryLeadUseCase struct {
	LeadRepo entity.LeadRepositoryInterface
	Ledger   entity.NotificationRepositoryInterface
}

func NewQueryLeadUseCase(leadRepo entity.LeadRepositoryInterface, ledger entity.NotificationRepositoryInterface) *QueryLeadUseCase {
	return &QueryLeadUseCase{LeadRepo: leadRepo, Ledger: ledger}
}

func (uc *QueryLeadUseCase) GetLead(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := uc.LeadRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, leadNotFound(id)
		}
		return nil, databaseError("erro ao buscar lead", err)
	}
	return lead, nil
}

// LeadNotifications lista o ledger de um lead existente, do mais recente ao mais antigo.
func (uc *QueryLeadUseCase) LeadNotifications(ctx context.Context, leadID string) ([]*entity.Notification, error) {
	if _, err := uc.GetLead(ctx, leadID); err != nil {
		return nil, err
	}
	rows, err := uc.Ledger.ListByLead(ctx, leadID)
	if err != nil {
		return nil, databaseError("erro ao listar notificações", err)
	}
	if rows == nil {
		rows = []*entity.Notification{}
	}
	return rows, nil
}

// RecentNotifications limita o tamanho da página a MaxNotificationLimit.
func (uc *QueryLeadUseCase) RecentNotifications(ctx context.Context, limit int) ([]*entity.Notification, error) {
	switch {
	case limit <= 0:
		limit = DefaultNotificationLimit
	case limit > MaxNotificationLimit:
		limit = MaxNotificationLimit
	}
	rows, err := uc.Ledger.ListRecent(ctx, limit)
	if err != nil {
		return nil, databaseError("erro ao listar notificações", err)
	}
	if rows == nil {
		rows = []*entity.Notification{}
	}
	return rows, nil
}

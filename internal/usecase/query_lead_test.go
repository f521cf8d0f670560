package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/leaddesk/internal/entity"
)

type limitLedger struct {
	*memStore
	gotLimit int
}

func (l *limitLedger) ListRecent(ctx context.Context, limit int) ([]*entity.Notification, error) {
	l.gotLimit = limit
	return l.memStore.ListRecent(ctx, limit)
}

func TestQueryLead_GetLead(t *testing.T) {
	lead := newTestLead(t)
	store := newMemStore(lead)
	uc := NewQueryLeadUseCase(store, store)

	got, err := uc.GetLead(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)

	_, err = uc.GetLead(context.Background(), "missing")
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeLeadNotFound, de.Code)
}

func TestQueryLead_DatabaseErrorIsTechnical(t *testing.T) {
	repo := new(MockLeadRepository)
	repo.On("FindByID", mock.Anything, "l-1").Return(nil, errors.New("connection refused"))
	uc := NewQueryLeadUseCase(repo, newMemStore())

	_, err := uc.GetLead(context.Background(), "l-1")
	assert.True(t, IsTechnicalError(err))
}

func TestQueryLead_LeadNotifications(t *testing.T) {
	lead := newTestLead(t)
	store := newMemStore(lead)
	_ = store.Append(context.Background(), entity.NewNotification(entity.ChannelEmail, entity.DirectionInternal, lead.ID, entity.Sent(nil)))
	_ = store.Append(context.Background(), entity.NewNotification(entity.ChannelEmail, entity.DirectionInternal, "other", entity.Sent(nil)))
	uc := NewQueryLeadUseCase(store, store)

	rows, err := uc.LeadNotifications(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = uc.LeadNotifications(context.Background(), "missing")
	assert.True(t, IsDomainError(err))
}

func TestQueryLead_RecentNotificationsClampsLimit(t *testing.T) {
	ledger := &limitLedger{memStore: newMemStore()}
	uc := NewQueryLeadUseCase(ledger, ledger)

	rows, err := uc.RecentNotifications(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Equal(t, DefaultNotificationLimit, ledger.gotLimit)

	_, _ = uc.RecentNotifications(context.Background(), 5000)
	assert.Equal(t, MaxNotificationLimit, ledger.gotLimit)
}

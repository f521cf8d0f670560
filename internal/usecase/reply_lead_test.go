package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/leaddesk/internal/entity"
)

func newReplyUseCase(store *memStore, settings ResolvedSettings, api WhatsAppCloudAPI, mailer LeadMailer) *ReplyLeadUseCase {
	return NewReplyLeadUseCase(store, store, staticSettings(settings), NewWhatsAppChannel(api), NewEmailChannel(mailer, mailer != nil), time.Second)
}

func TestReplyWhatsApp_ManualReturnsLink(t *testing.T) {
	lead := newTestLead(t)
	store := newMemStore(lead)
	uc := newReplyUseCase(store, ResolvedSettings{WhatsApp: WhatsAppConfig{Provider: entity.ProviderManual}}, nil, nil)

	out, err := uc.ReplyWhatsApp(context.Background(), ReplyWhatsAppInput{LeadID: lead.ID, Message: "Olá Jane", Actor: "op-1"})
	require.NoError(t, err)

	assert.False(t, out.OK)
	assert.Equal(t, "https://wa.me/5511999990000?text=Ol%C3%A1%20Jane", out.ManualLink)

	rows := store.rowsFor(entity.ChannelWhatsApp)
	require.Len(t, rows, 1)
	assert.Equal(t, entity.DirectionOutbound, rows[0].Direction)
	assert.Equal(t, "Olá Jane", rows[0].Payload["message"])

	stored := store.lead(lead.ID)
	last := stored.Events[len(stored.Events)-1]
	assert.Equal(t, entity.EventWhatsAppSent, last.Type)
	assert.Equal(t, "op-1", last.Actor)
	assert.False(t, stored.Notifications.WhatsAppToAdmin.Sent)
	assert.Nil(t, stored.Notifications.WhatsAppToAdmin.At)
}

func TestReplyWhatsApp_CloudFailureIsDeliveryError(t *testing.T) {
	lead := newTestLead(t)
	store := newMemStore(lead)

	api := new(MockCloudAPI)
	api.On("SendText", mock.Anything, "tok", "pnid", "5511999990000", "oi").Return(&apiError{status: 400})

	settings := ResolvedSettings{WhatsApp: WhatsAppConfig{Provider: entity.ProviderCloudAPI, AccessToken: "tok", PhoneNumberID: "pnid"}}
	uc := newReplyUseCase(store, settings, api, nil)

	out, err := uc.ReplyWhatsApp(context.Background(), ReplyWhatsAppInput{LeadID: lead.ID, Message: "oi"})
	require.Error(t, err)

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeDeliveryFailed, de.Code)
	require.NotNil(t, out)
	assert.Contains(t, out.Error, "400")
	assert.Len(t, store.rowsFor(entity.ChannelWhatsApp), 1)
}

func TestReplyWhatsApp_NoContact(t *testing.T) {
	lead := newTestLead(t)
	lead.Phone = ""
	store := newMemStore(lead)
	uc := newReplyUseCase(store, ResolvedSettings{}, nil, nil)

	_, err := uc.ReplyWhatsApp(context.Background(), ReplyWhatsAppInput{LeadID: lead.ID, Message: "oi"})

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeNoContact, de.Code)
	assert.Empty(t, store.rowsFor(entity.ChannelWhatsApp))
}

func TestReplyEmail_SanitizesAndRecords(t *testing.T) {
	lead := newTestLead(t)
	store := newMemStore(lead)

	mailer := new(MockLeadMailer)
	mailer.On("SendHTML", mock.Anything, []string{"jane@x.com"}, "Proposta", "<p>Segue</p>").Return(nil)

	uc := newReplyUseCase(store, ResolvedSettings{}, nil, mailer)

	out, err := uc.ReplyEmail(context.Background(), ReplyEmailInput{
		LeadID:  lead.ID,
		Subject: "Proposta",
		HTML:    `<p>Segue</p><script>alert(1)</script>`,
		Actor:   "op-1",
	})
	require.NoError(t, err)

	assert.True(t, out.OK)
	assert.True(t, out.Delivered)
	mailer.AssertExpectations(t)

	rows := store.rowsFor(entity.ChannelEmail)
	require.Len(t, rows, 1)
	assert.Equal(t, entity.DirectionOutbound, rows[0].Direction)
	assert.False(t, store.lead(lead.ID).Notifications.EmailToAdmin.Sent)
}

func TestReplyEmail_SMTPNotConfigured(t *testing.T) {
	lead := newTestLead(t)
	store := newMemStore(lead)
	uc := newReplyUseCase(store, ResolvedSettings{}, nil, nil)

	out, err := uc.ReplyEmail(context.Background(), ReplyEmailInput{LeadID: lead.ID, Subject: "Oi", HTML: "<p>oi</p>"})
	require.NoError(t, err)

	assert.True(t, out.OK)
	assert.False(t, out.Delivered)
	assert.Equal(t, "smtp not configured", out.Error)

	stored := store.lead(lead.ID)
	assert.Equal(t, entity.EventEmailSent, stored.Events[len(stored.Events)-1].Type)
}

func TestReplyEmail_LeadNotFound(t *testing.T) {
	uc := newReplyUseCase(newMemStore(), ResolvedSettings{}, nil, nil)

	_, err := uc.ReplyEmail(context.Background(), ReplyEmailInput{LeadID: "nope", Subject: "Oi", HTML: "oi"})

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeLeadNotFound, de.Code)
}

package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/leaddesk/internal/entity"
)

func strPtr(s string) *string { return &s }

func TestUpdateLead_StatusAndNote(t *testing.T) {
	lead := newTestLead(t)
	store := newMemStore(lead)
	uc := NewUpdateLeadUseCase(store)

	got, err := uc.Execute(context.Background(), UpdateLeadInput{
		LeadID: lead.ID,
		Status: strPtr("working"),
		Note:   strPtr("ligar amanhã <i>cedo</i>"),
		Actor:  "op-1",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.LeadStatusWorking, got.Status)
	require.Len(t, got.Events, 3)
	assert.Equal(t, entity.EventStatusChanged, got.Events[1].Type)
	assert.Equal(t, "new", got.Events[1].Payload["from"])
	assert.Equal(t, "ligar amanhã cedo", got.Events[2].Payload["text"])
}

func TestUpdateLead_RejectsUnknownStatus(t *testing.T) {
	uc := NewUpdateLeadUseCase(newMemStore())

	_, err := uc.Execute(context.Background(), UpdateLeadInput{LeadID: "x", Status: strPtr("archived")})

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeValidation, de.Code)
}

func TestUpdateLead_EmptyAndMissing(t *testing.T) {
	uc := NewUpdateLeadUseCase(newMemStore())

	_, err := uc.Execute(context.Background(), UpdateLeadInput{LeadID: "x"})
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeEmptyUpdate, de.Code)

	_, err = uc.Execute(context.Background(), UpdateLeadInput{LeadID: "x", Status: strPtr("won")})
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeLeadNotFound, de.Code)
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Need a website", SanitizeText("<script>alert(1)</script>Need a website"))
	assert.Equal(t, "", SanitizeText("&lt;script&gt;alert(1)&lt;/script&gt;"))
	assert.Equal(t, "O'Brien & Sons", SanitizeText("O'Brien & Sons"))
	assert.Equal(t, "a < b", SanitizeText("a < b"))
}

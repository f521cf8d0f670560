package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/leaddesk/internal/entity"
)

func testDefaults() SettingsDefaults {
	return SettingsDefaults{
		NotifyEmails:     []string{"env@agency.dev"},
		WhatsApp:         WhatsAppConfig{Provider: entity.ProviderManual},
		RateLimitPerHour: 30,
		AdminBaseURL:     "https://agency.dev/admin/",
	}
}

func TestResolve_FallsBackToDefaults(t *testing.T) {
	r := NewSettingsResolver(&fakeSettingRepo{}, testDefaults())

	got := r.Resolve(context.Background())

	assert.Equal(t, []string{"env@agency.dev"}, got.NotifyEmails)
	assert.Equal(t, entity.ProviderManual, got.WhatsApp.Provider)
	assert.Equal(t, 30, got.RateLimitPerHour)
	assert.Equal(t, "https://agency.dev/admin", got.AdminBaseURL)
}

func TestResolve_DatabaseErrorUsesDefaults(t *testing.T) {
	r := NewSettingsResolver(&fakeSettingRepo{err: errors.New("timeout")}, testDefaults())

	got := r.Resolve(context.Background())
	assert.Equal(t, []string{"env@agency.dev"}, got.NotifyEmails)
}

func TestResolve_StoredOverridesDefaults(t *testing.T) {
	repo := &fakeSettingRepo{setting: &entity.Setting{
		NotifyEmails:          []string{"ops@agency.dev"},
		NotifyWhatsAppNumbers: []string{"5511999990000"},
		WhatsAppProvider:      entity.ProviderCloudAPI,
		WhatsAppAccessToken:   "tok-123456",
		WhatsAppPhoneNumberID: "pnid",
		RateLimitPerHour:      5,
	}}
	r := NewSettingsResolver(repo, testDefaults())

	got := r.Resolve(context.Background())

	assert.Equal(t, []string{"ops@agency.dev"}, got.NotifyEmails)
	assert.True(t, got.WhatsApp.CloudReady())
	assert.Equal(t, 5, got.RateLimitPerHour)
}

func TestSettingsUpdate_KeepsTokenAndMasks(t *testing.T) {
	repo := &fakeSettingRepo{setting: &entity.Setting{WhatsAppAccessToken: "secret-token-9876"}}
	uc := NewSettingsUseCase(repo, NewSettingsResolver(repo, testDefaults()))

	view, err := uc.Update(context.Background(), UpdateSettingsInput{
		NotifyEmails:     []string{"ops@agency.dev"},
		WhatsAppProvider: "cloud-api",
		RateLimitPerHour: 60,
		Actor:            "admin@agency.dev",
	})
	require.NoError(t, err)

	assert.Equal(t, "****9876", view.WhatsAppAccessToken)
	assert.Equal(t, "admin@agency.dev", view.UpdatedBy)

	stored, _ := repo.Get(context.Background())
	assert.Equal(t, "secret-token-9876", stored.WhatsAppAccessToken)
	assert.Equal(t, 60, stored.RateLimitPerHour)
}

func TestSettingsUpdate_Validation(t *testing.T) {
	repo := &fakeSettingRepo{}
	uc := NewSettingsUseCase(repo, NewSettingsResolver(repo, testDefaults()))

	_, err := uc.Update(context.Background(), UpdateSettingsInput{
		NotifyEmails:          []string{"bad"},
		NotifyWhatsAppNumbers: []string{"12"},
		WhatsAppProvider:      "twilio",
		RateLimitPerHour:      20000,
	})

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.True(t, hasField(de.Fields, "notifyEmails[0]"))
	assert.True(t, hasField(de.Fields, "notifyWhatsappNumbers[0]"))
	assert.True(t, hasField(de.Fields, "whatsappProvider"))
	assert.True(t, hasField(de.Fields, "rateLimitPerHour"))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "****", MaskSecret("abc"))
	assert.Equal(t, "****6789", MaskSecret("123456789"))
}

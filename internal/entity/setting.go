package entity

import (
	"context"
	"errors"
	"time"
)

var ErrSettingNotFound = errors.New("configuração não encontrada")

const SettingKeyGlobal = "global"

type WhatsAppProvider string

const (
	ProviderCloudAPI WhatsAppProvider = "cloud-api"
	ProviderManual   WhatsAppProvider = "manual"
)

func (p WhatsAppProvider) Valid() bool {
	return p == ProviderCloudAPI || p == ProviderManual
}

// Setting é o registro singleton editável pelo admin.
type Setting struct {
	NotifyEmails          []string         `json:"notifyEmails"`
	NotifyWhatsAppNumbers []string         `json:"notifyWhatsAppNumbers"`
	WhatsAppProvider      WhatsAppProvider `json:"whatsappProvider,omitempty"`
	WhatsAppAccessToken   string           `json:"whatsappAccessToken,omitempty"`
	WhatsAppPhoneNumberID string           `json:"whatsappPhoneNumberId,omitempty"`
	CalendarLink          string           `json:"calendarLink,omitempty"`
	BookingLink           string           `json:"bookingLink,omitempty"`
	RateLimitPerHour      int              `json:"rateLimitPerHour,omitempty"`
	UpdatedAt             time.Time        `json:"updatedAt"`
	UpdatedBy             string           `json:"updatedBy,omitempty"`
}

type SettingRepositoryInterface interface {
	// Get retorna ErrSettingNotFound quando ninguém salvou ainda.
	Get(ctx context.Context) (*Setting, error)
	Save(ctx context.Context, s *Setting) error
}

package usecase

import (
	"time"

	"github.com/xavierca1/leaddesk/internal/entity"
)

type VisitorInput struct {
	IP          string     `json:"ip"`
	UserAgent   string     `json:"userAgent"`
	Referer     string     `json:"referer"`
	LandingPage string     `json:"landingPage" validate:"max=2000"`
	CurrentPage string     `json:"currentPage" validate:"max=2000"`
	UTM         entity.UTM `json:"utm"`
}

type CaptureLeadInput struct {
	Source       string        `json:"source" validate:"required,max=100"`
	Channel      string        `json:"channel" validate:"omitempty,oneof=form whatsapp chat calculator phone email"`
	Name         string        `json:"name" validate:"required,max=200"`
	Email        string        `json:"email" validate:"omitempty,email,max=254"`
	Phone        string        `json:"phone" validate:"omitempty,phone"`
	WhatsApp     string        `json:"whatsapp" validate:"omitempty,phone"`
	Company      string        `json:"company" validate:"max=200"`
	BusinessType string        `json:"businessType" validate:"max=100"`
	Budget       string        `json:"budget" validate:"max=100"`
	ProjectType  string        `json:"projectType" validate:"max=100"`
	Message      string        `json:"message" validate:"max=5000"`
	Tags         []string      `json:"tags" validate:"max=20,dive,max=50"`
	Priority     string        `json:"priority" validate:"omitempty,oneof=high normal low"`
	Visitor      *VisitorInput `json:"visitor"`
}

// RequestMeta vem do transporte HTTP, não do corpo.
type RequestMeta struct {
	IP        string
	UserAgent string
	Referrer  string
}

type CaptureLeadOutput struct {
	LeadID string `json:"leadId"`
}

type UpdateLeadInput struct {
	LeadID  string  `json:"-"`
	Status  *string `json:"status" validate:"omitempty,oneof=new working proposal-sent won lost spam"`
	OwnerID *string `json:"ownerId" validate:"omitempty,max=100"`
	Note    *string `json:"note" validate:"omitempty,max=5000"`
	Actor   string  `json:"-"`
}

type ReplyWhatsAppInput struct {
	LeadID  string `json:"-"`
	Message string `json:"message" validate:"required,max=4096"`
	Actor   string `json:"-"`
}

type ReplyWhatsAppOutput struct {
	OK         bool   `json:"ok"`
	ManualLink string `json:"manualLink,omitempty"`
	Error      string `json:"error,omitempty"`
}

type ReplyEmailInput struct {
	LeadID  string `json:"-"`
	Subject string `json:"subject" validate:"required,max=300"`
	HTML    string `json:"html" validate:"required,max=100000"`
	Actor   string `json:"-"`
}

type ReplyEmailOutput struct {
	OK        bool   `json:"ok"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

type RunChannelInput struct {
	LeadID  string
	Channel string
	Actor   string
}

// ChannelResult é o resumo por canal devolvido pela orquestração.
type ChannelResult struct {
	Channel    entity.Channel       `json:"channel"`
	Kind       entity.DeliveryKind  `json:"kind"`
	Error      string               `json:"error,omitempty"`
	ManualLink string               `json:"manualLink,omitempty"`
	Status     entity.ChannelStatus `json:"status"`
}

type NotifyLeadOutput struct {
	LeadID  string          `json:"leadId"`
	Results []ChannelResult `json:"results"`
}

type UpdateSettingsInput struct {
	NotifyEmails          []string `json:"notifyEmails" validate:"max=20,dive,email"`
	NotifyWhatsAppNumbers []string `json:"notifyWhatsappNumbers" validate:"max=20,dive,phone"`
	WhatsAppProvider      string   `json:"whatsappProvider" validate:"omitempty,oneof=cloud-api manual"`
	WhatsAppAccessToken   string   `json:"whatsappAccessToken" validate:"max=1000"`
	WhatsAppPhoneNumberID string   `json:"whatsappPhoneNumberId" validate:"max=100"`
	CalendarLink          string   `json:"calendarLink" validate:"omitempty,url"`
	BookingLink           string   `json:"bookingLink" validate:"omitempty,url"`
	RateLimitPerHour      int      `json:"rateLimitPerHour" validate:"omitempty,min=1,max=10000"`
	Actor                 string   `json:"-"`
}

// SettingsView é o que o painel enxerga: token sempre mascarado.
type SettingsView struct {
	NotifyEmails          []string  `json:"notifyEmails"`
	NotifyWhatsAppNumbers []string  `json:"notifyWhatsappNumbers"`
	WhatsAppProvider      string    `json:"whatsappProvider"`
	WhatsAppAccessToken   string    `json:"whatsappAccessToken"`
	WhatsAppPhoneNumberID string    `json:"whatsappPhoneNumberId"`
	CalendarLink          string    `json:"calendarLink"`
	BookingLink           string    `json:"bookingLink"`
	RateLimitPerHour      int       `json:"rateLimitPerHour"`
	UpdatedAt             time.Time `json:"updatedAt,omitempty"`
	UpdatedBy             string    `json:"updatedBy,omitempty"`
}

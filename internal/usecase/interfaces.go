package usecase

import (
	"context"

	"github.com/xavierca1/leaddesk/internal/entity"
)

// Eventos empurrados para o painel em tempo real
const (
	EventLeadCreated  = "lead.created"
	EventLeadNotified = "lead.notified"
)

// Dispatcher agenda a notificação de um lead fora do ciclo da requisição.
type Dispatcher interface {
	Dispatch(ctx context.Context, leadID string) error
}

// Broadcaster é fire-and-forget: sem observador conectado não é erro.
type Broadcaster interface {
	Broadcast(eventType string, data any)
}

type MetricsRecorder interface {
	RecordLeadCaptured(channel string)
	RecordDelivery(channel, kind string)
}

// LeadAlert é o que o template de e-mail de alerta recebe.
type LeadAlert struct {
	Lead              *entity.Lead
	AdminLink         string
	WhatsAppReplyLink string
	CalendarLink      string
	BookingLink       string
}

type LeadMailer interface {
	SendLeadAlert(ctx context.Context, to []string, alert LeadAlert) error
	SendHTML(ctx context.Context, to []string, subject, html string) error
}

// WhatsAppCloudAPI envia texto simples pela Cloud API. Erros com status HTTP
// implementam HTTPStatus() int.
type WhatsAppCloudAPI interface {
	SendText(ctx context.Context, accessToken, phoneNumberID, to, body string) error
}

type SettingsProvider interface {
	Resolve(ctx context.Context) ResolvedSettings
}

// DispatchRequest é o pedido genérico que cada adapter traduz para o seu canal.
type DispatchRequest struct {
	Lead     *entity.Lead
	Settings ResolvedSettings
}

type ChannelAdapter interface {
	Channel() entity.Channel
	Send(ctx context.Context, req DispatchRequest) entity.Delivery
}

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(string, any) {}

type noopMetrics struct{}

func (noopMetrics) RecordLeadCaptured(string)     {}
func (noopMetrics) RecordDelivery(string, string) {}

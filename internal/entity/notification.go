package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelWhatsApp
}

// StatusKey é a chave do canal dentro de leads.notifications.
func (c Channel) StatusKey() string {
	if c == ChannelWhatsApp {
		return "whatsappToAdmin"
	}
	return "emailToAdmin"
}

type Direction string

const (
	// DirectionInternal: alerta para a equipe
	DirectionInternal Direction = "internal"
	// DirectionOutbound: resposta do operador para o lead
	DirectionOutbound Direction = "outbound"
)

type NotificationStatus string

const (
	NotificationSuccess NotificationStatus = "success"
	NotificationFailed  NotificationStatus = "failed"
)

// ManualErrorMarker é o erro gravado quando o envio caiu para link wa.me.
const ManualErrorMarker = "manual"

type DeliveryKind string

const (
	DeliverySent   DeliveryKind = "sent"
	DeliveryFailed DeliveryKind = "failed"
	DeliveryManual DeliveryKind = "manual"
)

// Delivery é o resultado de uma chamada de adapter.
type Delivery struct {
	Kind        DeliveryKind
	Error       string
	ManualLink  string
	ManualLinks []string
	HTTPStatus  int
	Recipients  []string
	Payload     map[string]any
}

func Sent(recipients []string) Delivery {
	return Delivery{Kind: DeliverySent, Recipients: recipients}
}

func Failed(recipients []string, reason string) Delivery {
	return Delivery{Kind: DeliveryFailed, Recipients: recipients, Error: reason}
}

func DegradedToManual(recipients []string, links []string) Delivery {
	d := Delivery{
		Kind:        DeliveryManual,
		Recipients:  recipients,
		Error:       ManualErrorMarker,
		ManualLinks: links,
	}
	if len(links) > 0 {
		d.ManualLink = links[0]
	}
	return d
}

func (d Delivery) Success() bool {
	return d.Kind == DeliverySent
}

func (d Delivery) NotificationStatus() NotificationStatus {
	if d.Success() {
		return NotificationSuccess
	}
	return NotificationFailed
}

// ChannelStatus é o sub-documento de status por canal do lead.
type ChannelStatus struct {
	Sent  bool       `json:"sent"`
	At    *time.Time `json:"at,omitempty"`
	Error string     `json:"error,omitempty"`
}

// Merge aplica um resultado. Depois de sent, falhas posteriores não revertem.
func (s ChannelStatus) Merge(d Delivery, at time.Time) ChannelStatus {
	if d.Success() {
		return ChannelStatus{Sent: true, At: &at}
	}
	if s.Sent {
		return s
	}
	return ChannelStatus{Sent: false, At: &at, Error: d.Error}
}

// Entidade: Notification (linha do ledger, nunca atualizada)
type Notification struct {
	ID         string             `json:"id"`
	Type       Channel            `json:"type"`
	Direction  Direction          `json:"direction"`
	Recipients []string           `json:"recipients"`
	Payload    map[string]any     `json:"payload"`
	LeadID     string             `json:"leadId,omitempty"`
	Status     NotificationStatus `json:"status"`
	Error      string             `json:"error,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// NewNotification monta a linha do ledger a partir do resultado do adapter.
func NewNotification(ch Channel, dir Direction, leadID string, d Delivery) *Notification {
	payload := make(map[string]any, len(d.Payload)+3)
	for k, v := range d.Payload {
		payload[k] = v
	}
	if d.ManualLink != "" {
		payload["manualLink"] = d.ManualLink
		payload["manualLinks"] = d.ManualLinks
	}
	if d.HTTPStatus != 0 {
		payload["httpStatus"] = d.HTTPStatus
	}

	recipients := d.Recipients
	if recipients == nil {
		recipients = []string{}
	}

	return &Notification{
		ID:         uuid.New().String(),
		Type:       ch,
		Direction:  dir,
		Recipients: recipients,
		Payload:    payload,
		LeadID:     leadID,
		Status:     d.NotificationStatus(),
		Error:      d.Error,
		CreatedAt:  time.Now().UTC(),
	}
}

type NotificationRepositoryInterface interface {
	// Append grava uma linha avulsa (sem lead ou sem mexer no status do lead).
	Append(ctx context.Context, n *Notification) error
	// AppendForLead grava a linha, faz o merge do status do canal (quando
	// mergeStatus) e anexa o evento ao lead, tudo na mesma transação.
	AppendForLead(ctx context.Context, n *Notification, mergeStatus bool, event LeadEvent) (ChannelStatus, error)
	ListRecent(ctx context.Context, limit int) ([]*Notification, error)
	ListByLead(ctx context.Context, leadID string) ([]*Notification, error)
}

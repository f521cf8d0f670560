package entity

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrLeadNotFound = errors.New("lead não encontrado")

type LeadStatus string

const (
	LeadStatusNew          LeadStatus = "new"
	LeadStatusWorking      LeadStatus = "working"
	LeadStatusProposalSent LeadStatus = "proposal-sent"
	LeadStatusWon          LeadStatus = "won"
	LeadStatusLost         LeadStatus = "lost"
	LeadStatusSpam         LeadStatus = "spam"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusWorking, LeadStatusProposalSent, LeadStatusWon, LeadStatusLost, LeadStatusSpam:
		return true
	}
	return false
}

type LeadPriority string

const (
	PriorityHigh   LeadPriority = "high"
	PriorityNormal LeadPriority = "normal"
	PriorityLow    LeadPriority = "low"
)

// LeadChannel é por onde o visitante chegou, não um canal de notificação.
type LeadChannel string

const (
	LeadChannelForm       LeadChannel = "form"
	LeadChannelWhatsApp   LeadChannel = "whatsapp"
	LeadChannelChat       LeadChannel = "chat"
	LeadChannelCalculator LeadChannel = "calculator"
	LeadChannelPhone      LeadChannel = "phone"
	LeadChannelEmail      LeadChannel = "email"
)

func (c LeadChannel) Valid() bool {
	switch c {
	case LeadChannelForm, LeadChannelWhatsApp, LeadChannelChat, LeadChannelCalculator, LeadChannelPhone, LeadChannelEmail:
		return true
	}
	return false
}

// Tipos de evento do histórico do lead
const (
	EventCreated       = "created"
	EventNote          = "note"
	EventStatusChanged = "status-changed"
	EventOwnerChanged  = "owner-changed"
	EventChannelSent   = "channel-sent"
	EventWhatsAppSent  = "whatsapp-sent"
	EventEmailSent     = "email-sent"
)

const (
	ActorSystem  = "system"
	ActorVisitor = "visitor"
)

// Value Object: UTM
type UTM struct {
	Source   string `json:"source,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Campaign string `json:"campaign,omitempty"`
	Term     string `json:"term,omitempty"`
	Content  string `json:"content,omitempty"`
}

// Value Object: VisitorContext, capturado uma vez na criação
type VisitorContext struct {
	IP          string `json:"ip,omitempty"`
	UserAgent   string `json:"userAgent,omitempty"`
	Referer     string `json:"referer,omitempty"`
	LandingPage string `json:"landingPage,omitempty"`
	CurrentPage string `json:"currentPage,omitempty"`
	UTM         UTM    `json:"utm"`
}

type LeadEvent struct {
	Type    string         `json:"type"`
	Actor   string         `json:"actor"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload,omitempty"`
}

func NewLeadEvent(eventType, actor string, payload map[string]any) LeadEvent {
	return LeadEvent{
		Type:    eventType,
		Actor:   actor,
		At:      time.Now().UTC(),
		Payload: payload,
	}
}

// LeadNotifications guarda o status de cada canal de alerta para a equipe.
type LeadNotifications struct {
	EmailToAdmin    ChannelStatus `json:"emailToAdmin"`
	WhatsAppToAdmin ChannelStatus `json:"whatsappToAdmin"`
}

func (n LeadNotifications) For(ch Channel) ChannelStatus {
	if ch == ChannelWhatsApp {
		return n.WhatsAppToAdmin
	}
	return n.EmailToAdmin
}

func (n *LeadNotifications) Set(ch Channel, s ChannelStatus) {
	if ch == ChannelWhatsApp {
		n.WhatsAppToAdmin = s
		return
	}
	n.EmailToAdmin = s
}

// Entidade: Lead
type Lead struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	WhatsApp     string `json:"whatsapp,omitempty"`
	Company      string `json:"company,omitempty"`
	BusinessType string `json:"businessType,omitempty"`
	Budget       string `json:"budget,omitempty"`
	ProjectType  string `json:"projectType,omitempty"`
	Message      string `json:"message,omitempty"`

	Visitor VisitorContext `json:"visitor"`

	Source   string       `json:"source"`
	Channel  LeadChannel  `json:"channel"`
	Tags     []string     `json:"tags"`
	Priority LeadPriority `json:"priority"`
	Status   LeadStatus   `json:"status"`
	OwnerID  string       `json:"ownerId,omitempty"`

	Notifications LeadNotifications `json:"notifications"`
	Events        []LeadEvent       `json:"events"`
}

// Factory: já nasce com o evento "created" na primeira posição.
func NewLead(name, source string) (*Lead, error) {
	now := time.Now().UTC()
	lead := &Lead{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
		Source:    source,
		Channel:   LeadChannelForm,
		Tags:      []string{},
		Priority:  PriorityNormal,
		Status:    LeadStatusNew,
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	lead.Events = []LeadEvent{{
		Type:    EventCreated,
		Actor:   ActorVisitor,
		At:      now,
		Payload: map[string]any{"source": source},
	}}
	return lead, nil
}

func (l *Lead) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(l.Source) == "" {
		return errors.New("source is required")
	}
	return nil
}

// ReplyNumber é o número usado para responder o lead pelo WhatsApp.
func (l *Lead) ReplyNumber() string {
	if l.WhatsApp != "" {
		return l.WhatsApp
	}
	return l.Phone
}

func (l *Lead) HasContact() bool {
	return l.Email != "" || l.Phone != "" || l.WhatsApp != ""
}

// NormalizeTags: minúsculas, sem espaços, sem repetição, ordenadas.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// LeadUpdate é o patch aplicado por um operador. Campos nil não mudam.
type LeadUpdate struct {
	Status  *LeadStatus
	OwnerID *string
	Note    *string
	Actor   string
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	// ApplyUpdate grava o patch e os eventos numa única instrução atômica.
	ApplyUpdate(ctx context.Context, id string, update LeadUpdate) (*Lead, error)
	AppendEvent(ctx context.Context, id string, event LeadEvent) error
}

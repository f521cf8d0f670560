package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xavierca1/leaddesk/internal/entity"
)

// ReplyLeadUseCase é o operador respondendo o lead diretamente.
type ReplyLeadUseCase struct {
	LeadRepo       entity.LeadRepositoryInterface
	Ledger         entity.NotificationRepositoryInterface
	Settings       SettingsProvider
	WhatsApp       *WhatsAppChannel
	Email          *EmailChannel
	AdapterTimeout time.Duration
}

func NewReplyLeadUseCase(
	leadRepo entity.LeadRepositoryInterface,
	ledger entity.NotificationRepositoryInterface,
	settings SettingsProvider,
	whatsapp *WhatsAppChannel,
	email *EmailChannel,
	adapterTimeout time.Duration,
) *ReplyLeadUseCase {
	if adapterTimeout <= 0 {
		adapterTimeout = DefaultAdapterTimeout
	}
	return &ReplyLeadUseCase{
		LeadRepo:       leadRepo,
		Ledger:         ledger,
		Settings:       settings,
		WhatsApp:       whatsapp,
		Email:          email,
		AdapterTimeout: adapterTimeout,
	}
}

// ReplyWhatsApp devolve erro DELIVERY_FAILED junto com o output quando a
// Cloud API recusa; no modo manual devolve ok=false com o link.
func (uc *ReplyLeadUseCase) ReplyWhatsApp(ctx context.Context, input ReplyWhatsAppInput) (*ReplyWhatsAppOutput, error) {
	input.Message = strings.TrimSpace(input.Message)
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	lead, err := uc.findLead(ctx, input.LeadID)
	if err != nil {
		return nil, err
	}

	number := lead.ReplyNumber()
	if OnlyDigits(number) == "" {
		return nil, &DomainError{Code: CodeNoContact, Message: "lead sem telefone ou WhatsApp"}
	}

	settings := uc.Settings.Resolve(ctx)

	sendCtx, cancel := context.WithTimeout(ctx, uc.AdapterTimeout)
	d := uc.WhatsApp.Deliver(sendCtx, settings.WhatsApp, []string{number}, input.Message)
	cancel()

	if d.Payload == nil {
		d.Payload = map[string]any{}
	}
	d.Payload["message"] = input.Message
	uc.record(ctx, lead.ID, entity.ChannelWhatsApp, entity.EventWhatsAppSent, input.Actor, d)

	switch d.Kind {
	case entity.DeliverySent:
		return &ReplyWhatsAppOutput{OK: true}, nil
	case entity.DeliveryManual:
		return &ReplyWhatsAppOutput{OK: false, ManualLink: d.ManualLink}, nil
	default:
		out := &ReplyWhatsAppOutput{OK: false, Error: d.Error}
		return out, &DomainError{Code: CodeDeliveryFailed, Message: d.Error}
	}
}

// ReplyEmail sempre registra a intenção no histórico do lead; delivered diz
// se o SMTP aceitou.
func (uc *ReplyLeadUseCase) ReplyEmail(ctx context.Context, input ReplyEmailInput) (*ReplyEmailOutput, error) {
	input.Subject = strings.TrimSpace(input.Subject)
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	lead, err := uc.findLead(ctx, input.LeadID)
	if err != nil {
		return nil, err
	}

	body := SanitizeHTML(input.HTML)

	if lead.Email == "" {
		d := entity.Failed(nil, "lead sem e-mail")
		event := entity.NewLeadEvent(entity.EventEmailSent, actorOr(input.Actor), replyEventPayload(d, map[string]any{"subject": input.Subject}))
		if err := uc.LeadRepo.AppendEvent(ctx, lead.ID, event); err != nil {
			log.Error().Err(err).Str("lead_id", lead.ID).Msg("❌ Erro ao registrar evento de e-mail")
		}
		return &ReplyEmailOutput{OK: true, Delivered: false, Error: d.Error}, nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, uc.AdapterTimeout)
	d := uc.Email.Deliver(sendCtx, []string{lead.Email}, input.Subject, body)
	cancel()

	d.Payload = map[string]any{"subject": input.Subject, "html": body}
	uc.record(ctx, lead.ID, entity.ChannelEmail, entity.EventEmailSent, input.Actor, d)

	return &ReplyEmailOutput{OK: true, Delivered: d.Success(), Error: d.Error}, nil
}

func (uc *ReplyLeadUseCase) record(ctx context.Context, leadID string, ch entity.Channel, eventType, actor string, d entity.Delivery) {
	n := entity.NewNotification(ch, entity.DirectionOutbound, leadID, d)

	extra := map[string]any{}
	if s, ok := d.Payload["subject"]; ok {
		extra["subject"] = s
	}
	if m, ok := d.Payload["message"]; ok {
		extra["message"] = m
	}
	event := entity.NewLeadEvent(eventType, actorOr(actor), replyEventPayload(d, extra))

	if _, err := uc.Ledger.AppendForLead(ctx, n, false, event); err != nil {
		log.Error().Err(err).Str("lead_id", leadID).Str("channel", string(ch)).Msg("❌ Erro ao registrar resposta ao lead")
		return
	}
	log.Info().Str("lead_id", leadID).Str("channel", string(ch)).Str("kind", string(d.Kind)).Msg("💬 Resposta ao lead registrada")
}

func (uc *ReplyLeadUseCase) findLead(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := uc.LeadRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, leadNotFound(id)
		}
		return nil, databaseError("erro ao buscar lead", err)
	}
	return lead, nil
}

func replyEventPayload(d entity.Delivery, extra map[string]any) map[string]any {
	p := map[string]any{"status": string(d.NotificationStatus())}
	for k, v := range extra {
		p[k] = v
	}
	if d.Error != "" {
		p["error"] = d.Error
	}
	if d.ManualLink != "" {
		p["manualLink"] = d.ManualLink
	}
	return p
}

func actorOr(actor string) string {
	if actor == "" {
		return entity.ActorSystem
	}
	return actor
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xavierca1/leaddesk/internal/entity"
)

const DefaultAdapterTimeout = 10 * time.Second

// NotifyLeadUseCase dispara todos os canais de alerta para um lead já salvo.
// Cada canal roda isolado: falha, timeout ou panic de um não afeta o outro.
type NotifyLeadUseCase struct {
	LeadRepo       entity.LeadRepositoryInterface
	Ledger         entity.NotificationRepositoryInterface
	Settings       SettingsProvider
	Channels       []ChannelAdapter
	Broadcaster    Broadcaster
	Metrics        MetricsRecorder
	AdapterTimeout time.Duration
}

func NewNotifyLeadUseCase(
	leadRepo entity.LeadRepositoryInterface,
	ledger entity.NotificationRepositoryInterface,
	settings SettingsProvider,
	channels []ChannelAdapter,
	broadcaster Broadcaster,
	metrics MetricsRecorder,
	adapterTimeout time.Duration,
) *NotifyLeadUseCase {
	if broadcaster == nil {
		broadcaster = noopBroadcaster{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if adapterTimeout <= 0 {
		adapterTimeout = DefaultAdapterTimeout
	}
	return &NotifyLeadUseCase{
		LeadRepo:       leadRepo,
		Ledger:         ledger,
		Settings:       settings,
		Channels:       channels,
		Broadcaster:    broadcaster,
		Metrics:        metrics,
		AdapterTimeout: adapterTimeout,
	}
}

func (uc *NotifyLeadUseCase) Execute(ctx context.Context, leadID string) (*NotifyLeadOutput, error) {
	lead, err := uc.findLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	settings := uc.Settings.Resolve(ctx)
	req := DispatchRequest{Lead: lead, Settings: settings}

	results := make([]ChannelResult, len(uc.Channels))
	var wg sync.WaitGroup
	for i, ch := range uc.Channels {
		wg.Add(1)
		go func(i int, ch ChannelAdapter) {
			defer wg.Done()
			results[i] = uc.runChannel(ctx, ch, req, entity.ActorSystem)
		}(i, ch)
	}
	wg.Wait()

	log.Info().
		Str("lead_id", lead.ID).
		Int("channels", len(results)).
		Msg("📣 Notificação de lead concluída")

	uc.Broadcaster.Broadcast(EventLeadNotified, map[string]any{"leadId": lead.ID, "results": results})
	return &NotifyLeadOutput{LeadID: lead.ID, Results: results}, nil
}

// RunChannel reexecuta um único canal a pedido do operador.
func (uc *NotifyLeadUseCase) RunChannel(ctx context.Context, input RunChannelInput) (*ChannelResult, error) {
	channel := entity.Channel(input.Channel)
	if !channel.Valid() {
		return nil, newValidationError([]ValidationError{{"channel", "must be one of: email whatsapp"}})
	}

	adapter := uc.adapterFor(channel)
	if adapter == nil {
		return nil, &DomainError{Code: CodeValidation, Message: "canal " + input.Channel + " não está habilitado"}
	}

	lead, err := uc.findLead(ctx, input.LeadID)
	if err != nil {
		return nil, err
	}

	actor := input.Actor
	if actor == "" {
		actor = entity.ActorSystem
	}

	req := DispatchRequest{Lead: lead, Settings: uc.Settings.Resolve(ctx)}
	result := uc.runChannel(ctx, adapter, req, actor)

	uc.Broadcaster.Broadcast(EventLeadNotified, map[string]any{"leadId": lead.ID, "results": []ChannelResult{result}})
	return &result, nil
}

func (uc *NotifyLeadUseCase) findLead(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := uc.LeadRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, leadNotFound(id)
		}
		return nil, databaseError("erro ao buscar lead", err)
	}
	return lead, nil
}

func (uc *NotifyLeadUseCase) adapterFor(ch entity.Channel) ChannelAdapter {
	for _, a := range uc.Channels {
		if a.Channel() == ch {
			return a
		}
	}
	return nil
}

// runChannel envia e registra. Erro ao gravar o ledger só é logado: o envio
// já aconteceu e não deve ser repetido por causa disso.
func (uc *NotifyLeadUseCase) runChannel(ctx context.Context, adapter ChannelAdapter, req DispatchRequest, actor string) ChannelResult {
	ch := adapter.Channel()
	d := uc.send(ctx, adapter, req)

	result := ChannelResult{
		Channel:    ch,
		Kind:       d.Kind,
		Error:      d.Error,
		ManualLink: d.ManualLink,
	}

	n := entity.NewNotification(ch, entity.DirectionInternal, req.Lead.ID, d)
	event := entity.NewLeadEvent(entity.EventChannelSent, actor, channelEventPayload(ch, d))

	status, err := uc.Ledger.AppendForLead(ctx, n, true, event)
	if err != nil {
		log.Error().Err(err).Str("lead_id", req.Lead.ID).Str("channel", string(ch)).Msg("❌ Erro ao registrar notificação")
		status = req.Lead.Notifications.For(ch).Merge(d, n.CreatedAt)
	}
	result.Status = status

	uc.Metrics.RecordDelivery(string(ch), string(d.Kind))

	logEvt := log.Info()
	if d.Kind == entity.DeliveryFailed {
		logEvt = log.Warn().Str("error", d.Error)
	}
	logEvt.Str("lead_id", req.Lead.ID).Str("channel", string(ch)).Str("kind", string(d.Kind)).Msg("✉️ Canal processado")

	return result
}

// send aplica timeout e transforma panic do adapter em falha.
func (uc *NotifyLeadUseCase) send(ctx context.Context, adapter ChannelAdapter, req DispatchRequest) (d entity.Delivery) {
	ctx, cancel := context.WithTimeout(ctx, uc.AdapterTimeout)
	defer cancel()

	done := make(chan entity.Delivery, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("channel", string(adapter.Channel())).Msg("🔥 Panic no adapter de canal")
				done <- entity.Failed(nil, fmt.Sprintf("panic: %v", r))
			}
		}()
		done <- adapter.Send(ctx, req)
	}()

	select {
	case d = <-done:
		return d
	case <-ctx.Done():
		return entity.Failed(nil, "timeout: "+ctx.Err().Error())
	}
}

func channelEventPayload(ch entity.Channel, d entity.Delivery) map[string]any {
	p := map[string]any{
		"channel": string(ch),
		"status":  string(d.NotificationStatus()),
	}
	if d.Error != "" {
		p["error"] = d.Error
	}
	if d.ManualLink != "" {
		p["manualLink"] = d.ManualLink
	}
	return p
}

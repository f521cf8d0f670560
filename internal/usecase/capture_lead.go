package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xavierca1/leaddesk/internal/entity"
)

const dispatchScheduleTimeout = 30 * time.Second

// CaptureLeadUseCase grava o lead e agenda a notificação sem esperar por ela.
type CaptureLeadUseCase struct {
	LeadRepo    entity.LeadRepositoryInterface
	Dispatcher  Dispatcher
	Broadcaster Broadcaster
	Metrics     MetricsRecorder
}

func NewCaptureLeadUseCase(
	leadRepo entity.LeadRepositoryInterface,
	dispatcher Dispatcher,
	broadcaster Broadcaster,
	metrics MetricsRecorder,
) *CaptureLeadUseCase {
	if broadcaster == nil {
		broadcaster = noopBroadcaster{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &CaptureLeadUseCase{
		LeadRepo:    leadRepo,
		Dispatcher:  dispatcher,
		Broadcaster: broadcaster,
		Metrics:     metrics,
	}
}

func (uc *CaptureLeadUseCase) Execute(ctx context.Context, input CaptureLeadInput, meta RequestMeta) (*CaptureLeadOutput, error) {
	if errs := ValidateCaptureLeadInput(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	lead, err := entity.NewLead(SanitizeText(input.Name), strings.TrimSpace(input.Source))
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}

	lead.Email = strings.ToLower(strings.TrimSpace(input.Email))
	lead.Phone = strings.TrimSpace(input.Phone)
	lead.WhatsApp = strings.TrimSpace(input.WhatsApp)
	lead.Company = SanitizeText(input.Company)
	lead.BusinessType = SanitizeText(input.BusinessType)
	lead.Budget = SanitizeText(input.Budget)
	lead.ProjectType = SanitizeText(input.ProjectType)
	lead.Message = SanitizeText(input.Message)
	lead.Tags = entity.NormalizeTags(sanitizeTags(input.Tags))
	lead.Visitor = buildVisitor(input.Visitor, meta)

	if input.Channel != "" {
		lead.Channel = entity.LeadChannel(input.Channel)
	}
	if input.Priority != "" {
		lead.Priority = entity.LeadPriority(input.Priority)
	}

	if err := uc.LeadRepo.Create(ctx, lead); err != nil {
		log.Error().Err(err).Str("source", lead.Source).Msg("❌ Erro ao salvar lead")
		return nil, databaseError("erro ao salvar lead", err)
	}

	uc.Metrics.RecordLeadCaptured(string(lead.Channel))
	log.Info().Str("lead_id", lead.ID).Str("source", lead.Source).Msg("📥 Lead capturado")

	go uc.afterCapture(lead)

	return &CaptureLeadOutput{LeadID: lead.ID}, nil
}

// afterCapture roda desacoplado do contexto da requisição.
func (uc *CaptureLeadUseCase) afterCapture(lead *entity.Lead) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchScheduleTimeout)
	defer cancel()

	uc.Broadcaster.Broadcast(EventLeadCreated, lead)

	if uc.Dispatcher == nil {
		return
	}
	if err := uc.Dispatcher.Dispatch(ctx, lead.ID); err != nil {
		log.Error().Err(err).Str("lead_id", lead.ID).Msg("❌ Falha ao agendar notificação do lead")
	}
}

// buildVisitor: campos explícitos do payload vencem os do transporte.
func buildVisitor(in *VisitorInput, meta RequestMeta) entity.VisitorContext {
	v := entity.VisitorContext{
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Referer:   meta.Referrer,
	}
	if in != nil {
		v.IP = firstNonEmpty(in.IP, v.IP)
		v.UserAgent = firstNonEmpty(in.UserAgent, v.UserAgent)
		v.Referer = firstNonEmpty(in.Referer, v.Referer)
		v.LandingPage = strings.TrimSpace(in.LandingPage)
		v.CurrentPage = strings.TrimSpace(in.CurrentPage)
		v.UTM = entity.UTM{
			Source:   SanitizeText(in.UTM.Source),
			Medium:   SanitizeText(in.UTM.Medium),
			Campaign: SanitizeText(in.UTM.Campaign),
			Term:     SanitizeText(in.UTM.Term),
			Content:  SanitizeText(in.UTM.Content),
		}
	}
	v.LandingPage = firstNonEmpty(v.LandingPage, v.Referer)
	v.CurrentPage = firstNonEmpty(v.CurrentPage, v.Referer)
	return v
}

func firstNonEmpty(values ...string) string {
	for _, s := range values {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

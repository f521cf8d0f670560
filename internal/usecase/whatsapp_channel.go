package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xavierca1/leaddesk/internal/entity"
)

const manualLinkBase = "https://wa.me/"

// WhatsAppChannel escolhe entre a Cloud API e o link wa.me manual conforme a
// configuração resolvida no momento do envio.
type WhatsAppChannel struct {
	API WhatsAppCloudAPI
}

func NewWhatsAppChannel(api WhatsAppCloudAPI) *WhatsAppChannel {
	return &WhatsAppChannel{API: api}
}

func (c *WhatsAppChannel) Channel() entity.Channel {
	return entity.ChannelWhatsApp
}

func (c *WhatsAppChannel) Send(ctx context.Context, req DispatchRequest) entity.Delivery {
	text := LeadSummaryText(req.Lead, AdminLeadLink(req.Settings.AdminBaseURL, req.Lead.ID))
	d := c.Deliver(ctx, req.Settings.WhatsApp, req.Settings.NotifyWhatsAppNumbers, text)
	if d.Payload == nil {
		d.Payload = map[string]any{}
	}
	d.Payload["text"] = text
	return d
}

// Deliver envia text para cada número. Na Cloud API basta um aceite para
// contar como entregue; sem credenciais ou sem números vira link manual.
func (c *WhatsAppChannel) Deliver(ctx context.Context, cfg WhatsAppConfig, numbers []string, text string) entity.Delivery {
	recipients := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if d := OnlyDigits(n); d != "" {
			recipients = append(recipients, d)
		}
	}

	if !cfg.CloudReady() || c.API == nil || len(recipients) == 0 {
		d := entity.DegradedToManual(recipients, manualLinks(recipients, text))
		d.Payload = map[string]any{"provider": string(cfg.Provider)}
		return d
	}

	var (
		accepted   []string
		rejected   []map[string]any
		lastErr    error
		lastStatus int
	)
	for _, to := range recipients {
		err := c.API.SendText(ctx, cfg.AccessToken, cfg.PhoneNumberID, to, text)
		if err != nil {
			lastErr = err
			r := map[string]any{"to": to, "error": err.Error()}
			var withStatus interface{ HTTPStatus() int }
			if errors.As(err, &withStatus) {
				lastStatus = withStatus.HTTPStatus()
				r["httpStatus"] = lastStatus
			}
			rejected = append(rejected, r)
			log.Warn().Err(err).Str("to", to).Msg("⚠️ WhatsApp Cloud API recusou envio")
			continue
		}
		accepted = append(accepted, to)
	}

	var d entity.Delivery
	if len(accepted) > 0 {
		d = entity.Sent(accepted)
	} else {
		d = entity.Failed(recipients, lastErr.Error())
		d.HTTPStatus = lastStatus
	}
	d.Payload = map[string]any{"provider": string(cfg.Provider)}
	if len(rejected) > 0 {
		d.Payload["rejected"] = rejected
	}
	return d
}

func manualLinks(recipients []string, text string) []string {
	if len(recipients) == 0 {
		return []string{BuildManualLink("", text)}
	}
	links := make([]string, 0, len(recipients))
	for _, r := range recipients {
		links = append(links, BuildManualLink(r, text))
	}
	return links
}

// BuildManualLink monta https://wa.me/<dígitos>?text=<texto>. Espaços viram
// %20 porque o WhatsApp não decodifica "+".
func BuildManualLink(number, text string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return manualLinkBase + OnlyDigits(number) + "?text=" + encoded
}

// LeadSummaryText é o texto curto do alerta para a equipe.
func LeadSummaryText(lead *entity.Lead, adminLink string) string {
	lines := []string{"Novo lead: " + lead.Name}
	add := func(label, v string) {
		if strings.TrimSpace(v) != "" {
			lines = append(lines, label+": "+v)
		}
	}
	add("Empresa", lead.Company)
	add("Email", lead.Email)
	add("Telefone", lead.Phone)
	add("WhatsApp", lead.WhatsApp)
	add("Orçamento", lead.Budget)
	add("Origem", lead.Source)
	add("Mensagem", truncate(lead.Message, 500))
	add("Abrir", adminLink)
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

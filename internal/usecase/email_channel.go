package usecase

import (
	"context"
	"fmt"

	"github.com/xavierca1/leaddesk/internal/entity"
)

const (
	errNoEmailRecipients = "no recipients configured"
	errSMTPNotConfigured = "smtp not configured"
)

// EmailChannel entrega o alerta de lead por SMTP.
type EmailChannel struct {
	Mailer  LeadMailer
	Enabled bool
}

func NewEmailChannel(mailer LeadMailer, enabled bool) *EmailChannel {
	return &EmailChannel{Mailer: mailer, Enabled: enabled && mailer != nil}
}

func (c *EmailChannel) Channel() entity.Channel {
	return entity.ChannelEmail
}

func (c *EmailChannel) Send(ctx context.Context, req DispatchRequest) entity.Delivery {
	to := req.Settings.NotifyEmails
	if len(to) == 0 {
		return entity.Failed(nil, errNoEmailRecipients)
	}
	if !c.Enabled {
		return entity.Failed(to, errSMTPNotConfigured)
	}

	lead := req.Lead
	alert := LeadAlert{
		Lead:         lead,
		AdminLink:    AdminLeadLink(req.Settings.AdminBaseURL, lead.ID),
		CalendarLink: req.Settings.CalendarLink,
		BookingLink:  req.Settings.BookingLink,
	}
	if number := lead.ReplyNumber(); number != "" {
		alert.WhatsAppReplyLink = BuildManualLink(number, replyGreeting(lead))
	}

	d := entity.Sent(to)
	if err := c.Mailer.SendLeadAlert(ctx, to, alert); err != nil {
		d = entity.Failed(to, err.Error())
	}
	d.Payload = map[string]any{"subject": LeadAlertSubject(lead)}
	return d
}

// Deliver manda um HTML arbitrário (resposta do operador).
func (c *EmailChannel) Deliver(ctx context.Context, to []string, subject, html string) entity.Delivery {
	if len(to) == 0 {
		return entity.Failed(nil, errNoEmailRecipients)
	}
	if !c.Enabled {
		return entity.Failed(to, errSMTPNotConfigured)
	}

	d := entity.Sent(to)
	if err := c.Mailer.SendHTML(ctx, to, subject, html); err != nil {
		d = entity.Failed(to, err.Error())
	}
	d.Payload = map[string]any{"subject": subject}
	return d
}

func LeadAlertSubject(lead *entity.Lead) string {
	if lead.Company != "" {
		return fmt.Sprintf("Novo lead: %s (%s)", lead.Name, lead.Company)
	}
	return "Novo lead: " + lead.Name
}

func AdminLeadLink(base, leadID string) string {
	if base == "" {
		return "/leads/" + leadID
	}
	return base + "/leads/" + leadID
}

func replyGreeting(lead *entity.Lead) string {
	return fmt.Sprintf("Olá %s, obrigado pelo contato!", lead.Name)
}

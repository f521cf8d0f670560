package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/rs/zerolog/log"
	"github.com/xavierca1/leaddesk/internal/usecase"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

var leadAlertTmpl = template.Must(template.ParseFS(templatesFS, "templates/lead_alert.html"))

// Dialer é o pedaço do gomail que o sender usa.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From   string
	dialer Dialer
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		From:   from,
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

// NewEmailSenderWithDialer é usado nos testes.
func NewEmailSenderWithDialer(d Dialer, from string) *EmailSender {
	return &EmailSender{From: from, dialer: d}
}

func (s *EmailSender) SendLeadAlert(ctx context.Context, to []string, alert usecase.LeadAlert) error {
	body, err := RenderLeadAlert(alert)
	if err != nil {
		return err
	}
	return s.send(ctx, to, usecase.LeadAlertSubject(alert.Lead), body)
}

func (s *EmailSender) SendHTML(ctx context.Context, to []string, subject, html string) error {
	return s.send(ctx, to, subject, html)
}

// RenderLeadAlert é determinístico para o mesmo lead e links.
func RenderLeadAlert(alert usecase.LeadAlert) (string, error) {
	var body bytes.Buffer
	if err := leadAlertTmpl.Execute(&body, newLeadAlertData(alert)); err != nil {
		return "", fmt.Errorf("erro ao processar template: %w", err)
	}
	return body.String(), nil
}

// gomail não aceita context; o envio roda numa goroutine e o ctx só limita a espera.
func (s *EmailSender) send(ctx context.Context, to []string, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("erro ao enviar email SMTP: %w", err)
		}
		log.Debug().Strs("to", to).Str("subject", subject).Msg("📧 Email enviado")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("erro ao enviar email SMTP: %w", ctx.Err())
	}
}

package mail

import (
	"time"

	"github.com/xavierca1/leaddesk/internal/entity"
	"github.com/xavierca1/leaddesk/internal/usecase"
)

type alertField struct {
	Label string
	Value string
}

// leadAlertData é o view model do template lead_alert.html.
type leadAlertData struct {
	Lead              *entity.Lead
	ReceivedAt        string
	Fields            []alertField
	AdminLink         string
	WhatsAppReplyLink string
	CalendarLink      string
	BookingLink       string
}

func newLeadAlertData(a usecase.LeadAlert) leadAlertData {
	l := a.Lead
	var fields []alertField
	add := func(label, v string) {
		if v != "" {
			fields = append(fields, alertField{Label: label, Value: v})
		}
	}
	add("Email", l.Email)
	add("Telefone", l.Phone)
	add("WhatsApp", l.WhatsApp)
	add("Empresa", l.Company)
	add("Segmento", l.BusinessType)
	add("Orçamento", l.Budget)
	add("Projeto", l.ProjectType)
	add("Prioridade", string(l.Priority))
	add("UTM", utmSummary(l.Visitor.UTM))
	add("Página", l.Visitor.LandingPage)

	return leadAlertData{
		Lead:              l,
		ReceivedAt:        l.CreatedAt.UTC().Format(time.RFC822),
		Fields:            fields,
		AdminLink:         a.AdminLink,
		WhatsAppReplyLink: a.WhatsAppReplyLink,
		CalendarLink:      a.CalendarLink,
		BookingLink:       a.BookingLink,
	}
}

func utmSummary(u entity.UTM) string {
	out := ""
	for _, v := range []string{u.Source, u.Medium, u.Campaign} {
		if v == "" {
			continue
		}
		if out != "" {
			out += " / "
		}
		out += v
	}
	return out
}

package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/leaddesk/internal/entity"
	"github.com/xavierca1/leaddesk/internal/usecase"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent  []*gomail.Message
	err   error
	delay time.Duration
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	time.Sleep(d.delay)
	d.sent = append(d.sent, m...)
	return d.err
}

func testAlert(t *testing.T) usecase.LeadAlert {
	lead, err := entity.NewLead("Jane <b>Doe</b>", "website")
	require.NoError(t, err)
	lead.Email = "jane@x.com"
	lead.Company = "Acme"
	lead.Message = "Need a website"
	return usecase.LeadAlert{
		Lead:              lead,
		AdminLink:         "https://agency.dev/admin/leads/" + lead.ID,
		WhatsAppReplyLink: "https://wa.me/5511999990000?text=Ol%C3%A1",
		CalendarLink:      "https://cal.com/agency",
	}
}

func TestRenderLeadAlert(t *testing.T) {
	alert := testAlert(t)

	first, err := RenderLeadAlert(alert)
	require.NoError(t, err)
	second, err := RenderLeadAlert(alert)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, alert.AdminLink)
	assert.Contains(t, first, "https://wa.me/5511999990000?text=Ol%C3%A1")
	assert.Contains(t, first, "https://cal.com/agency")
	assert.Contains(t, first, "Jane &lt;b&gt;Doe&lt;/b&gt;")
	assert.NotContains(t, first, "Reserva:")
}

func TestSendLeadAlert(t *testing.T) {
	d := &fakeDialer{}
	s := NewEmailSenderWithDialer(d, "alerts@agency.dev")

	err := s.SendLeadAlert(context.Background(), []string{"ops@agency.dev", "sales@agency.dev"}, testAlert(t))
	require.NoError(t, err)

	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"ops@agency.dev", "sales@agency.dev"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Novo lead: Jane <b>Doe</b> (Acme)"}, d.sent[0].GetHeader("Subject"))
}

func TestSendHTML_Errors(t *testing.T) {
	s := NewEmailSenderWithDialer(&fakeDialer{err: errors.New("535 auth failed")}, "alerts@agency.dev")
	err := s.SendHTML(context.Background(), []string{"a@b.c"}, "oi", "<p>oi</p>")
	assert.ErrorContains(t, err, "535 auth failed")

	slow := NewEmailSenderWithDialer(&fakeDialer{delay: 200 * time.Millisecond}, "alerts@agency.dev")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = slow.SendHTML(ctx, []string{"a@b.c"}, "oi", "<p>oi</p>")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

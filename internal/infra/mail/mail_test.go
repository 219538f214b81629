package mail

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestSMTPSender_NotConfigured(t *testing.T) {
	s := NewSMTPSender("", 587, "", "", "noreply@example.com", "Team")

	err := s.Send(context.Background(), usecase.EmailMessage{To: "a@example.com"})

	assert.ErrorIs(t, err, entity.ErrChannelUnavailable)
}

func TestSMTPSender_Send(t *testing.T) {
	d := &fakeDialer{}
	s := &SMTPSender{Host: "smtp.example.com", From: "noreply@example.com", FromName: "Team", dialer: d}

	err := s.Send(context.Background(), usecase.EmailMessage{
		To: "admin@example.com", Subject: "Hi", HTML: "<p>x</p>", Tags: []string{"a", "b"},
	})

	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"admin@example.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"a,b"}, d.sent[0].GetHeader("X-Tags"))
}

func TestSMTPSender_Rejected(t *testing.T) {
	s := &SMTPSender{Host: "smtp.example.com", dialer: &fakeDialer{err: errors.New("550 mailbox unavailable")}}

	err := s.Send(context.Background(), usecase.EmailMessage{To: "x@example.com"})

	assert.ErrorIs(t, err, entity.ErrChannelRejected)
	assert.NotErrorIs(t, err, entity.ErrChannelUnavailable)
}

func TestSMTPSender_DialFailureIsUnavailable(t *testing.T) {
	dialErr := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	s := &SMTPSender{Host: "smtp.example.com", dialer: &fakeDialer{err: dialErr}}

	err := s.Send(context.Background(), usecase.EmailMessage{To: "x@example.com"})

	assert.ErrorIs(t, err, entity.ErrChannelUnavailable)
	assert.NotErrorIs(t, err, entity.ErrChannelRejected)
	assert.Contains(t, err.Error(), "smtp.example.com")
}

func renderLead() *entity.Lead {
	l := entity.NewLead("u", time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))
	l.ContactName = "Jane <Doe>"
	l.ContactEmail = "jane@example.com"
	l.NOD = "yes"
	l.MissedPayments = 4
	l.Overwhelmed = "yes"
	l.Notes = "We called twice"
	l.Status = entity.StatusReviewed
	return l
}

func TestTemplates_RenderEveryEvent(t *testing.T) {
	tpl, err := NewTemplates()
	require.NoError(t, err)

	view := usecase.NotificationView{
		Lead:          renderLead(),
		Urgency:       entity.UrgencyHigh,
		StatusMessage: "Your submission has been carefully reviewed by our foreclosure assistance team.",
		NextSteps:     []string{"Our team will contact you within 24 hours"},
		DaysSince:     7,
		Actions:       []string{"Send additional resources and options"},
		SiteURL:       "https://site.example",
	}

	html, err := tpl.Render(entity.EventNewSubmission, view)
	require.NoError(t, err)
	assert.Contains(t, html, "IMMEDIATE ATTENTION REQUIRED")
	assert.Contains(t, html, "Jane &lt;Doe&gt;")
	assert.Contains(t, html, "Payment Issues Started:</span> Not provided")
	assert.Contains(t, html, "https://site.example/admin")

	html, err = tpl.Render(entity.EventStatusUpdate, view)
	require.NoError(t, err)
	assert.Contains(t, html, "Status: REVIEWED")
	assert.Contains(t, html, "We called twice")
	assert.Contains(t, html, "Our team will contact you within 24 hours")

	html, err = tpl.Render(entity.EventUrgentCase, view)
	require.NoError(t, err)
	assert.Contains(t, html, "3+ missed payments detected")
	assert.Contains(t, html, "Notice of Default received")
	assert.NotContains(t, html, "Difficulty getting lender assistance")

	html, err = tpl.Render(entity.EventFollowUpReminder, view)
	require.NoError(t, err)
	assert.Contains(t, html, "7 Days Since Submission")
	assert.Contains(t, html, "Send additional resources and options")
}

func TestTemplates_WelcomeHasNoTemplate(t *testing.T) {
	tpl, err := NewTemplates()
	require.NoError(t, err)

	_, err = tpl.Render(entity.EventWelcomeSequence, usecase.NotificationView{Lead: renderLead()})

	assert.Error(t, err)
}

func TestFallback(t *testing.T) {
	date := "2026-01-01"
	blank := " "
	assert.Equal(t, "n/a", fallback("", "n/a"))
	assert.Equal(t, "n/a", fallback((*string)(nil), "n/a"))
	assert.Equal(t, "n/a", fallback(&blank, "n/a"))
	assert.Equal(t, date, fallback(&date, "n/a"))
	assert.Equal(t, "3", fallback(3, "n/a"))
}

package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

// dialer é o pedaço do gomail.Dialer que o sender usa.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPSender struct {
	Host     string
	From     string
	FromName string
	dialer   dialer
}

func NewSMTPSender(host string, port int, user, password, from, fromName string) *SMTPSender {
	s := &SMTPSender{Host: host, From: from, FromName: fromName}
	if host != "" {
		s.dialer = gomail.NewDialer(host, port, user, password)
	}
	return s
}

func (s *SMTPSender) Send(_ context.Context, msg usecase.EmailMessage) error {
	if s.Host == "" || s.dialer == nil {
		return fmt.Errorf("smtp não configurado: %w", entity.ErrChannelUnavailable)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.From, s.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if len(msg.Tags) > 0 {
		m.SetHeader("X-Tags", strings.Join(msg.Tags, ","))
	}
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		// falha de rede/dial: servidor fora do ar; o resto é recusa do servidor
		var netErr net.Error
		if errors.As(err, &netErr) {
			return fmt.Errorf("servidor SMTP %s indisponível: %v: %w", s.Host, err, entity.ErrChannelUnavailable)
		}
		return fmt.Errorf("erro ao enviar email SMTP para %s: %v: %w", msg.To, err, entity.ErrChannelRejected)
	}

	return nil
}

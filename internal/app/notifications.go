// Package app monta as dependências compartilhadas entre a API e a CLI.
package app

import (
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/config"
	"github.com/xavierca1/foreclosure-leads/internal/entity"
	"github.com/xavierca1/foreclosure-leads/internal/infra/integration/crm"
	"github.com/xavierca1/foreclosure-leads/internal/infra/integration/mailerlite"
	"github.com/xavierca1/foreclosure-leads/internal/infra/integration/whatsapp"
	"github.com/xavierca1/foreclosure-leads/internal/infra/mail"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

// NewDispatcher liga email, lista, CRM e alertas ao caso de uso de notificação.
func NewDispatcher(cfg *config.Config, leads entity.LeadRepositoryInterface, logger *zap.Logger) (*usecase.DispatchNotificationUseCase, error) {
	templates, err := mail.NewTemplates()
	if err != nil {
		return nil, err
	}

	lists := mailerlite.NewClient(cfg.MailerLite.BaseURL, cfg.MailerLite.APIKey, cfg.Mail.From, cfg.Mail.FromName, logger)

	var email usecase.EmailSender = lists
	if strings.EqualFold(cfg.Mail.Provider, "smtp") {
		email = mail.NewSMTPSender(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.SMTPUser, cfg.Mail.SMTPPassword, cfg.Mail.From, cfg.Mail.FromName)
	}

	alerts := whatsapp.NewClient(cfg.WhatsApp.BaseURL, cfg.WhatsApp.AccessToken, cfg.WhatsApp.PhoneID, cfg.WhatsApp.AlertPhone, cfg.WhatsApp.Template, logger)

	logger.Info("notification channels",
		zap.String("email", strings.ToLower(cfg.Mail.Provider)),
		zap.String("crm", strings.ToLower(cfg.CRM.Type)),
		zap.Bool("whatsapp", cfg.WhatsApp.AccessToken != ""),
	)

	return usecase.NewDispatchNotificationUseCase(
		leads,
		email,
		lists,
		crm.New(cfg.CRM, logger),
		alerts,
		templates,
		usecase.Recipients{
			Admin:   cfg.Mail.AdminEmail,
			Urgent:  cfg.Mail.UrgentEmail,
			Manager: cfg.Mail.ManagerEmail,
		},
		cfg.SiteURL,
		logger,
	), nil
}

// Package crm grava eventos de notificação no CRM configurado.
package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/config"
	"github.com/xavierca1/foreclosure-leads/internal/entity"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

const (
	TypeHubSpot    = "hubspot"
	TypeSalesforce = "salesforce"
	TypePipedrive  = "pipedrive"
	TypeKommo      = "kommo"
	TypeCustom     = "custom"
)

// New picks the backend for cfg.Type. Unknown types, salesforce and pipedrive only log.
func New(cfg config.CRMConfig, logger *zap.Logger) usecase.CRMLogger {
	switch strings.ToLower(cfg.Type) {
	case TypeHubSpot:
		return NewHubSpot(cfg.HubSpotURL, cfg.HubSpotKey, cfg.HubSpotOwner, logger)
	case TypeKommo:
		return NewKommo(cfg.KommoURL, cfg.KommoToken, logger)
	case TypeCustom:
		return NewCustom(cfg.CustomURL, cfg.CustomAPIKey, logger)
	default:
		return &LogOnly{Backend: strings.ToLower(cfg.Type), Logger: logger}
	}
}

// LogOnly registra o evento no log em vez de chamar um CRM.
type LogOnly struct {
	Backend string
	Logger  *zap.Logger
}

func (l *LogOnly) LogEvent(_ context.Context, lead *entity.Lead, event entity.EventType, customData map[string]any) error {
	backend := l.Backend
	if backend == "" {
		backend = "none"
	}
	l.Logger.Info("crm event (not forwarded)",
		zap.String("crm", backend),
		zap.String("lead_id", lead.ID),
		zap.String("event", string(event)),
		zap.Any("custom_data", customData),
	)
	return nil
}

func newHTTP(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(15*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}

func check(resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %v: %w", op, err, entity.ErrChannelUnavailable)
	}
	if resp.IsError() {
		return fmt.Errorf("%s: status %d - %s: %w", op, resp.StatusCode(), resp.String(), entity.ErrChannelRejected)
	}
	return nil
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// eventSummary é o texto da nota/atividade registrada no CRM.
func eventSummary(lead *entity.Lead, event entity.EventType, customData map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event: %s\n", event)
	fmt.Fprintf(&b, "Submission ID: %s\n", lead.ID)
	fmt.Fprintf(&b, "Status: %s\n", lead.Status)
	fmt.Fprintf(&b, "Urgency: %s\n", entity.ClassifyUrgency(lead))
	if len(customData) > 0 {
		if raw, err := json.Marshal(customData); err == nil {
			fmt.Fprintf(&b, "Additional Data: %s\n", raw)
		}
	}
	return b.String()
}

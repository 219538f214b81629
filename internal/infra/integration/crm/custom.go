package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

// Custom posts every event as JSON to an arbitrary endpoint.
type Custom struct {
	http   *resty.Client
	url    string
	apiKey string
	logger *zap.Logger
	now    func() time.Time
}

func NewCustom(url, apiKey string, logger *zap.Logger) *Custom {
	rc := newHTTP("")
	if apiKey != "" {
		rc.SetAuthToken(apiKey)
	}
	return &Custom{http: rc, url: url, apiKey: apiKey, logger: logger, now: time.Now}
}

type customEvent struct {
	Submission *entity.Lead     `json:"submission"`
	EventType  entity.EventType `json:"eventType"`
	CustomData map[string]any   `json:"customData,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

func (c *Custom) LogEvent(ctx context.Context, lead *entity.Lead, event entity.EventType, customData map[string]any) error {
	if c.url == "" || c.apiKey == "" {
		return fmt.Errorf("custom crm não configurado: %w", entity.ErrChannelUnavailable)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(customEvent{Submission: lead, EventType: event, CustomData: customData, Timestamp: c.now().UTC()}).
		Post(c.url)
	if err := check(resp, err, "custom crm"); err != nil {
		return err
	}

	c.logger.Debug("event logged to custom crm", zap.String("lead_id", lead.ID), zap.String("event", string(event)))
	return nil
}

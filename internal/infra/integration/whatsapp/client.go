package whatsapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

// Client envia templates pela WhatsApp Cloud API.
type Client struct {
	http        *resty.Client
	accessToken string
	phoneID     string
	alertPhone  string
	template    string
	logger      *zap.Logger
}

func NewClient(baseURL, accessToken, phoneID, alertPhone, template string, logger *zap.Logger) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")
	if accessToken != "" {
		rc.SetAuthToken(accessToken)
	}

	return &Client{
		http:        rc,
		accessToken: accessToken,
		phoneID:     phoneID,
		alertPhone:  alertPhone,
		template:    template,
		logger:      logger,
	}
}

func (c *Client) SendMessage(ctx context.Context, input SendMessageInput) error {
	if c.accessToken == "" || c.phoneID == "" {
		return fmt.Errorf("whatsapp não configurado: %w", entity.ErrChannelUnavailable)
	}

	payload := messageRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               input.PhoneNumber,
		Type:             "template",
		Template: templatePayload{
			Name:     input.TemplateName,
			Language: language{Code: "en_US"},
			Components: []component{{
				Type:       "body",
				Parameters: toParameters(input.Parameters),
			}},
		},
	}

	var result SendMessageResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/%s/messages", c.phoneID))
	if err != nil {
		return fmt.Errorf("whatsapp: %v: %w", err, entity.ErrChannelUnavailable)
	}
	if resp.IsError() || result.Error != nil {
		msg := resp.String()
		if result.Error != nil {
			msg = fmt.Sprintf("%s (code %d)", result.Error.Message, result.Error.Code)
		}
		return fmt.Errorf("whatsapp api error %d: %s: %w", resp.StatusCode(), msg, entity.ErrChannelRejected)
	}

	c.logger.Info("whatsapp message sent", zap.String("to", input.PhoneNumber), zap.String("template", input.TemplateName))
	return nil
}

// SendUrgentAlert avisa o agente de plantão sobre um caso urgente.
func (c *Client) SendUrgentAlert(ctx context.Context, lead *entity.Lead) error {
	if c.alertPhone == "" {
		return fmt.Errorf("whatsapp alert phone não configurado: %w", entity.ErrChannelUnavailable)
	}

	return c.SendMessage(ctx, SendMessageInput{
		PhoneNumber:  c.alertPhone,
		TemplateName: c.template,
		Parameters: []string{
			orDash(lead.ContactName),
			orDash(lead.ContactPhone),
			fmt.Sprintf("%d", lead.MissedPayments),
			lead.ID,
		},
	})
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func toParameters(params []string) []parameter {
	out := make([]parameter, 0, len(params))
	for _, p := range params {
		out = append(out, parameter{Type: "text", Text: p})
	}
	return out
}

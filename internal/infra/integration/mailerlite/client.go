package mailerlite

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

// Client fala com a API de emails/subscribers do MailerLite.
// Sem API key todas as chamadas retornam ErrChannelUnavailable.
type Client struct {
	http     *resty.Client
	apiKey   string
	from     string
	fromName string
	logger   *zap.Logger

	mu     sync.Mutex
	groups map[string]string
}

func NewClient(baseURL, apiKey, from, fromName string, logger *zap.Logger) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(15*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		rc.SetAuthToken(apiKey)
	}

	return &Client{
		http:     rc,
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
		logger:   logger,
		groups:   map[string]string{},
	}
}

func (c *Client) configured() error {
	if c.apiKey == "" {
		return fmt.Errorf("mailerlite não configurado: %w", entity.ErrChannelUnavailable)
	}
	return nil
}

func (c *Client) Send(ctx context.Context, msg usecase.EmailMessage) error {
	if err := c.configured(); err != nil {
		return err
	}

	tags := msg.Tags
	if tags == nil {
		tags = []string{}
	}
	body := sendEmailRequest{
		To:          []address{{Email: msg.To}},
		From:        address{Email: c.from, Name: c.fromName},
		Subject:     msg.Subject,
		HTML:        msg.HTML,
		Tags:        tags,
		TrackOpens:  true,
		TrackClicks: true,
	}

	var out dataResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post("/emails")
	if err := c.check(resp, err, "send email"); err != nil {
		return err
	}

	c.logger.Info("email sent via mailerlite", zap.String("to", msg.To), zap.String("id", out.Data.ID))
	return nil
}

func (c *Client) AddToGroup(ctx context.Context, lead *entity.Lead, group string) error {
	if err := c.configured(); err != nil {
		return err
	}
	if lead.ContactEmail == "" {
		return nil
	}

	groupID, err := c.groupID(ctx, group)
	if err != nil {
		return err
	}

	nod := "No"
	if lead.HasNOD() {
		nod = "Yes"
	}
	body := subscriberRequest{
		Email: lead.ContactEmail,
		Fields: map[string]any{
			"name":             lead.ContactName,
			"phone":            lead.ContactPhone,
			"home_value":       lead.HomeValue,
			"mortgage_balance": lead.MortgageBalance,
			"lender":           lead.Lender,
			"missed_payments":  lead.MissedPayments,
			"urgency_level":    string(entity.ClassifyUrgency(lead)),
			"submission_date":  lead.CreatedAt.UTC().Format(time.RFC3339),
			"property_type":    lead.PropertyType,
			"nod_received":     nod,
		},
		Groups: []string{groupID},
		Status: "active",
	}

	resp, err := c.http.R().SetContext(ctx).SetBody(body).Post("/subscribers")
	if err := c.check(resp, err, "add subscriber"); err != nil {
		return err
	}

	c.logger.Info("subscriber added to group",
		zap.String("lead_id", lead.ID),
		zap.String("group", group),
	)
	return nil
}

func (c *Client) TriggerAutomation(ctx context.Context, email, automation string, fields map[string]any) error {
	if err := c.configured(); err != nil {
		return err
	}

	body := subscriberRequest{
		Email:              email,
		Fields:             fields,
		AutomationTriggers: []string{automation},
	}
	resp, err := c.http.R().SetContext(ctx).SetBody(body).Post("/subscribers")
	return c.check(resp, err, "trigger automation")
}

// groupID busca o grupo pelo nome e cria se não existir. O id fica em cache.
func (c *Client) groupID(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	id, ok := c.groups[name]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	var list groupListResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("filter[name]", name).
		SetResult(&list).
		Get("/groups")
	if err == nil && resp.IsSuccess() {
		for _, g := range list.Data {
			if g.Name == name {
				c.remember(name, g.ID)
				return g.ID, nil
			}
		}
	}

	var created groupResponse
	resp, err = c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"name": name}).
		SetResult(&created).
		Post("/groups")
	if err := c.check(resp, err, "create group"); err != nil {
		return "", err
	}

	c.remember(name, created.Data.ID)
	return created.Data.ID, nil
}

func (c *Client) remember(name, id string) {
	c.mu.Lock()
	c.groups[name] = id
	c.mu.Unlock()
}

func (c *Client) check(resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("mailerlite %s: %v: %w", op, err, entity.ErrChannelUnavailable)
	}
	if resp.IsError() {
		return fmt.Errorf("mailerlite %s: status %d - %s: %w", op, resp.StatusCode(), resp.String(), entity.ErrChannelRejected)
	}
	return nil
}

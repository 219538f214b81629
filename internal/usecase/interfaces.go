package usecase

import (
	"context"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

type EmailMessage struct {
	To      string
	Subject string
	HTML    string
	Tags    []string
}

// EmailSender returns entity.ErrChannelUnavailable when it has no credentials
// and entity.ErrChannelRejected when the provider refuses the message.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// ListManager handles mailing-list groups and automations. Missing credentials are a no-op.
type ListManager interface {
	AddToGroup(ctx context.Context, lead *entity.Lead, group string) error
	TriggerAutomation(ctx context.Context, email, automation string, fields map[string]any) error
}

type CRMLogger interface {
	LogEvent(ctx context.Context, lead *entity.Lead, event entity.EventType, customData map[string]any) error
}

type Alerter interface {
	SendUrgentAlert(ctx context.Context, lead *entity.Lead) error
}

// NotificationView is the data handed to the email templates.
type NotificationView struct {
	Lead          *entity.Lead
	Urgency       entity.Urgency
	StatusMessage string
	NextSteps     []string
	DaysSince     int
	Actions       []string
	SiteURL       string
}

type TemplateRenderer interface {
	Render(event entity.EventType, view NotificationView) (string, error)
}

type NotificationPublisher interface {
	Publish(ctx context.Context, event entity.NotificationEvent) error
}

// IntentResult is the classifier answer for one caller utterance.
type IntentResult struct {
	Message         string          `json:"message"`
	Intent          *DetectedIntent `json:"intent"`
	RequiresHandoff bool            `json:"requiresHandoff"`
	HandoffReason   string          `json:"handoffReason"`
	NextAction      string          `json:"nextAction"`
}

type DetectedIntent struct {
	Name       string         `json:"name"`
	Confidence float64        `json:"confidence"`
	Entities   map[string]any `json:"entities"`
}

// IntentClassifier returns entity.ErrChannelUnavailable when no model is
// configured. Transport failures and unparsable replies are plain errors.
type IntentClassifier interface {
	Classify(ctx context.Context, utterance string) (*IntentResult, error)
}

package usecase

import (
	"context"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

// InlinePublisher dispatches in-process when no broker is configured.
type InlinePublisher struct {
	Dispatcher Dispatcher
}

func NewInlinePublisher(d Dispatcher) *InlinePublisher {
	return &InlinePublisher{Dispatcher: d}
}

func (p *InlinePublisher) Publish(ctx context.Context, event entity.NotificationEvent) error {
	_, err := p.Dispatcher.Execute(ctx, DispatchNotificationInput{
		SubmissionID:   event.SubmissionID,
		Type:           event.Type,
		RecipientEmail: event.RecipientEmail,
		CustomData:     event.CustomData,
		BestEffort:     true,
	})
	return err
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Worker consome eventos de notificação e entrega ao dispatcher em modo best-effort.
type Worker struct {
	Channel    consumer
	Dispatcher usecase.Dispatcher
	Logger     *zap.Logger
}

func NewWorker(ch consumer, dispatcher usecase.Dispatcher, logger *zap.Logger) *Worker {
	return &Worker{
		Channel:    ch,
		Dispatcher: dispatcher,
		Logger:     logger,
	}
}

// Start bloqueia até o ctx ser cancelado ou o canal de entregas fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual é mais seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.Logger.Info("notification worker listening", zap.String("queue", queueName))
	w.Consume(ctx, msgs)
	return nil
}

func (w *Worker) Consume(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				w.Logger.Warn("delivery channel closed")
				return
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var event entity.NotificationEvent
	if err := json.Unmarshal(d.Body, &event); err != nil || !event.Type.Valid() || event.SubmissionID == "" {
		w.Logger.Error("invalid notification message", zap.Error(err), zap.ByteString("body", d.Body))
		// Mensagem podre. Rejeita sem requeue para não travar a fila.
		d.Nack(false, false)
		return
	}

	log := w.Logger.With(zap.String("submission_id", event.SubmissionID), zap.String("type", string(event.Type)))

	_, err := w.Dispatcher.Execute(ctx, usecase.DispatchNotificationInput{
		SubmissionID:   event.SubmissionID,
		Type:           event.Type,
		RecipientEmail: event.RecipientEmail,
		CustomData:     event.CustomData,
		BestEffort:     true,
	})
	if err != nil {
		// sem retry: best-effort, só loga
		log.Warn("notification dispatch failed", zap.Error(err))
	} else {
		log.Info("notification dispatched")
	}
	d.Ack(false)
}

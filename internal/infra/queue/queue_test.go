package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
	deliveries    chan amqp.Delivery
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.deliveries, nil
}

type fakeAck struct {
	mu     sync.Mutex
	acked  []uint64
	nacked []uint64
}

func (a *fakeAck) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *fakeAck) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if requeue {
		panic("unexpected requeue")
	}
	a.nacked = append(a.nacked, tag)
	return nil
}

func (a *fakeAck) Reject(tag uint64, requeue bool) error { return a.Nack(tag, false, requeue) }

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) Execute(ctx context.Context, in usecase.DispatchNotificationInput) (*usecase.DispatchNotificationOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*usecase.DispatchNotificationOutput)
	return out, args.Error(1)
}

func TestProducer_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := NewProducer(ch)

	event := entity.NotificationEvent{SubmissionID: "lead-1", Type: entity.EventNewSubmission}
	require.NoError(t, p.Publish(context.Background(), event))

	assert.Equal(t, ExchangeName, ch.exchange)
	assert.Equal(t, RoutingKey, ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var got entity.NotificationEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, event, got)
}

func TestProducer_PublishError(t *testing.T) {
	p := NewProducer(&fakeChannel{err: errors.New("channel closed")})

	err := p.Publish(context.Background(), entity.NotificationEvent{SubmissionID: "x", Type: entity.EventUrgentCase})
	assert.ErrorContains(t, err, "channel closed")
}

func delivery(ack amqp.Acknowledger, tag uint64, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: []byte(body)}
}

func TestWorker_AcksDispatchedAndFailedNacksMalformed(t *testing.T) {
	defer goleak.VerifyNone(t)

	ack := &fakeAck{}
	d := &mockDispatcher{}
	d.On("Execute", mock.Anything, usecase.DispatchNotificationInput{
		SubmissionID: "lead-1", Type: entity.EventNewSubmission, BestEffort: true,
	}).Return(&usecase.DispatchNotificationOutput{}, nil).Once()
	d.On("Execute", mock.Anything, mock.MatchedBy(func(in usecase.DispatchNotificationInput) bool {
		return in.SubmissionID == "lead-2"
	})).Return(nil, entity.ErrLeadNotFound).Once()

	msgs := make(chan amqp.Delivery, 4)
	msgs <- delivery(ack, 1, `{"submissionId":"lead-1","type":"new_submission"}`)
	msgs <- delivery(ack, 2, `not json`)
	msgs <- delivery(ack, 3, `{"submissionId":"lead-2","type":"urgent_case"}`)
	msgs <- delivery(ack, 4, `{"submissionId":"lead-3","type":"bogus"}`)
	close(msgs)

	w := NewWorker(&fakeChannel{deliveries: msgs}, d, zap.NewNop())
	require.NoError(t, w.Start(context.Background(), QueueName))

	assert.Equal(t, []uint64{1, 3}, ack.acked)
	assert.Equal(t, []uint64{2, 4}, ack.nacked)
	d.AssertExpectations(t)
}

func TestWorker_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := NewWorker(&fakeChannel{deliveries: make(chan amqp.Delivery)}, &mockDispatcher{}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx, QueueName)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_ConsumeError(t *testing.T) {
	w := NewWorker(&fakeChannel{err: errors.New("no channel")}, &mockDispatcher{}, zap.NewNop())

	assert.Error(t, w.Start(context.Background(), QueueName))
}

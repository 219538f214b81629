package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByStatuses(ctx context.Context, statuses ...entity.LeadStatus) ([]*entity.Lead, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus, notes string, updatedAt time.Time) error {
	args := m.Called(ctx, id, status, notes, updatedAt)
	return args.Error(0)
}

// MockEmailSender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockListManager
type MockListManager struct {
	mock.Mock
}

func (m *MockListManager) AddToGroup(ctx context.Context, lead *entity.Lead, group string) error {
	args := m.Called(ctx, lead, group)
	return args.Error(0)
}

func (m *MockListManager) TriggerAutomation(ctx context.Context, email, automation string, fields map[string]any) error {
	args := m.Called(ctx, email, automation, fields)
	return args.Error(0)
}

// MockCRMLogger
type MockCRMLogger struct {
	mock.Mock
}

func (m *MockCRMLogger) LogEvent(ctx context.Context, lead *entity.Lead, event entity.EventType, customData map[string]any) error {
	args := m.Called(ctx, lead, event, customData)
	return args.Error(0)
}

// MockAlerter
type MockAlerter struct {
	mock.Mock
}

func (m *MockAlerter) SendUrgentAlert(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event entity.NotificationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockDispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Execute(ctx context.Context, in DispatchNotificationInput) (*DispatchNotificationOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DispatchNotificationOutput), args.Error(1)
}

// MockClassifier
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, utterance string) (*IntentResult, error) {
	args := m.Called(ctx, utterance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*IntentResult), args.Error(1)
}

// MockUsageCounter
type MockUsageCounter struct {
	mock.Mock
}

func (m *MockUsageCounter) Add(ctx context.Context, userID string, chars int, at time.Time) error {
	args := m.Called(ctx, userID, chars, at)
	return args.Error(0)
}

func (m *MockUsageCounter) Usage(ctx context.Context, userID string, at time.Time) (int, int, error) {
	args := m.Called(ctx, userID, at)
	return args.Int(0), args.Int(1), args.Error(2)
}

// MockVoiceUsageRepository
type MockVoiceUsageRepository struct {
	mock.Mock
}

func (m *MockVoiceUsageRepository) Create(ctx context.Context, u *entity.VoiceUsage) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// stubRenderer records which template was asked for and echoes the view.
type stubRenderer struct {
	events []entity.EventType
	views  []NotificationView
	err    error
}

func (s *stubRenderer) Render(event entity.EventType, view NotificationView) (string, error) {
	s.events = append(s.events, event)
	s.views = append(s.views, view)
	if s.err != nil {
		return "", s.err
	}
	return "<html>" + string(event) + "</html>", nil
}

// memCallRepo is an in-memory call store; the voice flow touches too many
// methods for per-call expectations to stay readable.
type memCallRepo struct {
	calls       map[string]*entity.Call
	transcripts []*entity.Transcript
	intents     []*entity.Intent
	handoffs    []*entity.Handoff
	createErr   error
}

func newMemCallRepo() *memCallRepo {
	return &memCallRepo{calls: map[string]*entity.Call{}}
}

func (r *memCallRepo) CreateCall(_ context.Context, c *entity.Call) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.calls[c.CallSID] = c
	return nil
}

func (r *memCallRepo) FindCallBySID(_ context.Context, sid string) (*entity.Call, error) {
	if c, ok := r.calls[sid]; ok {
		return c, nil
	}
	return nil, entity.ErrCallNotFound
}

func (r *memCallRepo) FindCallByID(_ context.Context, id string) (*entity.Call, error) {
	for _, c := range r.calls {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, entity.ErrCallNotFound
}

func (r *memCallRepo) MarkTransferred(_ context.Context, callID string) error {
	for _, c := range r.calls {
		if c.ID == callID {
			c.CallStatus = entity.CallTransferred
			c.RequiresHumanFollowup = true
			return nil
		}
	}
	return entity.ErrCallNotFound
}

func (r *memCallRepo) MarkCompleted(_ context.Context, sid string, at time.Time) error {
	c, ok := r.calls[sid]
	if !ok {
		return entity.ErrCallNotFound
	}
	c.CallStatus = entity.CallCompleted
	c.CompletedAt = &at
	return nil
}

func (r *memCallRepo) ListCalls(context.Context) ([]*entity.Call, error) {
	out := make([]*entity.Call, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c)
	}
	return out, nil
}

func (r *memCallRepo) RecentCalls(ctx context.Context, limit int) ([]*entity.Call, error) {
	out, _ := r.ListCalls(ctx)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memCallRepo) AddTranscript(_ context.Context, t *entity.Transcript) error {
	r.transcripts = append(r.transcripts, t)
	return nil
}

func (r *memCallRepo) TranscriptsByCall(_ context.Context, callID string) ([]*entity.Transcript, error) {
	var out []*entity.Transcript
	for _, t := range r.transcripts {
		if t.CallID == callID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memCallRepo) AddIntent(_ context.Context, i *entity.Intent) error {
	r.intents = append(r.intents, i)
	return nil
}

func (r *memCallRepo) IntentsByCall(_ context.Context, callID string) ([]*entity.Intent, error) {
	var out []*entity.Intent
	for _, i := range r.intents {
		if i.CallID == callID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *memCallRepo) ListIntents(context.Context) ([]*entity.Intent, error) {
	return r.intents, nil
}

func (r *memCallRepo) AddHandoff(_ context.Context, h *entity.Handoff) error {
	r.handoffs = append(r.handoffs, h)
	return nil
}

func (r *memCallRepo) HandoffByCall(_ context.Context, callID string) (*entity.Handoff, error) {
	for _, h := range r.handoffs {
		if h.CallID == callID {
			return h, nil
		}
	}
	return nil, nil
}

func (r *memCallRepo) ListHandoffs(context.Context) ([]*entity.Handoff, error) {
	return r.handoffs, nil
}

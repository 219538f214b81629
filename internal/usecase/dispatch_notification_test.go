package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

var testRecipients = Recipients{
	Admin:   "admin@example.com",
	Urgent:  "urgent@example.com",
	Manager: "manager@example.com",
}

type dispatchFixture struct {
	leads     *MockLeadRepository
	email     *MockEmailSender
	lists     *MockListManager
	crm       *MockCRMLogger
	alerts    *MockAlerter
	templates *stubRenderer
	uc        *DispatchNotificationUseCase
}

func newDispatchFixture(now time.Time) *dispatchFixture {
	f := &dispatchFixture{
		leads:     new(MockLeadRepository),
		email:     new(MockEmailSender),
		lists:     new(MockListManager),
		crm:       new(MockCRMLogger),
		alerts:    new(MockAlerter),
		templates: &stubRenderer{},
	}
	f.uc = NewDispatchNotificationUseCase(f.leads, f.email, f.lists, f.crm, f.alerts, f.templates,
		testRecipients, "https://site.example", zap.NewNop())
	f.uc.Now = func() time.Time { return now }
	f.crm.On("LogEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return f
}

func sentTo(to string) interface{} {
	return mock.MatchedBy(func(m EmailMessage) bool { return m.To == to })
}

func testLead(created time.Time) *entity.Lead {
	l := entity.NewLead("user-1", created)
	l.ContactName = "Jane Doe"
	l.ContactEmail = "jane@example.com"
	l.Lender = "Big Bank"
	l.SituationLength = "5 years"
	return l
}

func TestDispatch_NewSubmission_HighUrgencyEmailsAdminAndUrgent(t *testing.T) {
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f := newDispatchFixture(created)
	lead := testLead(created)
	lead.NOD = "yes"

	f.leads.On("FindByID", mock.Anything, lead.ID).Return(lead, nil)
	f.email.On("Send", mock.Anything, mock.MatchedBy(func(m EmailMessage) bool {
		return m.To == "admin@example.com" && m.Subject == "🚨 URGENT: New Foreclosure Submission - Jane Doe"
	})).Return(nil).Once()
	f.email.On("Send", mock.Anything, sentTo("urgent@example.com")).Return(nil).Once()
	f.lists.On("AddToGroup", mock.Anything, lead, GroupNewLeads).Return(nil).Once()

	out, err := f.uc.Execute(context.Background(), DispatchNotificationInput{
		SubmissionID: lead.ID, Type: entity.EventNewSubmission,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"admin@example.com", "urgent@example.com"}, out.Recipients)
	require.Len(t, out.ScheduledReminders, 4)
	assert.Equal(t, created.AddDate(0, 0, 14), out.ScheduledReminders[3])
	f.email.AssertExpectations(t)
	f.lists.AssertExpectations(t)
	f.crm.AssertCalled(t, "LogEvent", mock.Anything, lead, entity.EventNewSubmission, map[string]any(nil))
}

func TestDispatch_NewSubmission_LowUrgencyEmailsAdminOnly(t *testing.T) {
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f := newDispatchFixture(created)
	lead := testLead(created)

	f.leads.On("FindByID", mock.Anything, lead.ID).Return(lead, nil)
	f.email.On("Send", mock.Anything, mock.MatchedBy(func(m EmailMessage) bool {
		return m.To == "admin@example.com" && m.Subject == "📋 New Foreclosure Submission - Jane Doe"
	})).Return(nil).Once()
	f.lists.On("AddToGroup", mock.Anything, lead, GroupNewLeads).Return(nil)

	out, err := f.uc.Execute(context.Background(), DispatchNotificationInput{
		SubmissionID: lead.ID, Type: entity.EventNewSubmission,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"admin@example.com"}, out.Recipients)
	f.email.AssertNumberOfCalls(t, "Send", 1)
}

func TestDispatch_LeadNotFound(t *testing.T) {
	f := newDispatchFixture(time.Now())
	f.leads.On("FindByID", mock.Anything, "missing").Return(nil, entity.ErrLeadNotFound)

	_, err := f.uc.Execute(context.Background(), DispatchNotificationInput{
		SubmissionID: "missing", Type: entity.EventNewSubmission, BestEffort: true,
	})

	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
	assert.True(t, IsDomainError(err))
	f.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.crm.AssertNotCalled(t, "LogEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_InvalidType(t *testing.T) {
	f := newDispatchFixture(time.Now())

	_, err := f.uc.Execute(context.Background(), DispatchNotificationInput{SubmissionID: "x", Type: "bogus"})

	assert.True(t, IsDomainError(err))
	f.leads.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestDispatch_StatusUpdate_KnownStatusMessage(t *testing.T) {
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f := newDispatchFixture(created)
	lead := testLead(created)
	lead.Status = entity.StatusClosed

	f.leads.On("FindByID", mock.Anything, lead.ID).Return(lead, nil)
	f.email.On("Send", mock.Anything, mock.MatchedBy(func(m EmailMessage) bool {
		return m.To == "jane@example.com" &&
			m.Subject == "Update on Your Foreclosure Assistance Request - CLOSED"
	})).Return(nil)

	_, err := f.uc.Execute(context.Background(), DispatchNotificationInput{
		SubmissionID: lead.ID, Type: entity.EventStatusUpdate,
	})

	require.NoError(t, err)
	require.Len(t, f.templates.views, 1)
	assert.Equal(t,
		"Your case has been successfully resolved. Thank you for trusting us with your foreclosure assistance needs.",
		f.templates.views[0].StatusMessage)
	assert.Len(t, f.templates.views[0].NextSteps, 3)
}

func TestDispatch_StatusUpdate_UnknownStatusUsesGenericMessage(t *testing.T) {
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f := newDispatchFixture(created)
	lead := testLead(created)
	lead.Status = entity.StatusSubmitted

	f.leads.On("FindByID", mock.Anything, lead.ID).Return(lead, nil)
	f.email.On("Send", mock.Anything, sentTo("override@example.com")).Return(nil)

	out, err := f.uc.Execute(context.Background(), DispatchNotificationInput{
		SubmissionID: lead.ID, Type: entity.EventStatusUpdate, RecipientEmail: "override@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"override@example.com"}, out.Recipients)
	assert.Equal(t, "Your submission status has been updated.", f.templates.views[0].StatusMessage)
}

func TestDispatch_StatusUpdate_NoRecipientIsNoop(t *testing.T) {
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f := newDispatchFixture(created)
	lead := testLead(created)
	lead.ContactEmail = ""

	f.leads.On("FindByID", mock.Anything, lead.ID).Return(lead, nil)

	out, err := f.uc.Execute(context.Background(), DispatchNotificationInput{
		SubmissionID: lead.ID, Type: entity.EventStatusUpdate,
	})

	require.NoError(t, err)
	assert.Empty(t, out.Recipients)
	f.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.crm.AssertNumberOfCalls(t, "LogEvent", 1)
}

func TestDispatch_UrgentCase_AllRecipientsGroupAndAlert(t *testing.T) {
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f := newDispatchFixture(created)
	lead := testLead(created)

	f.leads.On("FindByID", mock.Anything, lead.ID).Return(lead, nil)
	f.email.On("Send", mock.Anything, mock.MatchedBy(func(m EmailMessage) bool {
		return m.Subject == "🚨 URGENT: High Priority Foreclosure Case - Jane Doe"
	})).Return(nil).Times(3)
	f.lists.On("AddToGroup", mock.Anything, lead, GroupUrgentCases).Return(nil).Once()
	f.alerts.On("SendUrgentAlert", mock.Anything, lead).Return(errors.New("whatsapp down")).Once()

	out, err := f.uc.Execute(context.Background(), DispatchNotificationInput{
		SubmissionID: lead.ID, Type: entity.EventUrgentCase,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"admin@example.com", "urgent@example.com", "manager@example.com"}, out.Recipients)
	f.email.AssertExpectations(t)
	f.lists.AssertExpectations(t)
	f.alerts.AssertExpectations(t)
}

func TestDispatch_FollowUpReminder_ComputesDays(t *testing.T) {
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	now := created.Add(7*24*time.Hour + 3*time.Hour)
	f := newDispatchFixture(now)
	lead := testLead(created)

	f.leads.On("FindByID", mock.Anything, lead.ID).Return(lead, nil)
	f.email.On("Send", mock.Anything, mock.MatchedBy(func(m EmailMessage) bool {
		return m.To == "admin@example.com" && m.Subject == "Follow-up Reminder: Jane Doe - Day 7"
	})).Return(nil).Once()

	_, err := f.uc.Execute(context.Background(), DispatchNotificationInput{
		SubmissionID: lead.ID, Type: entity.EventFollowUpReminder,
	})

	require.NoError(t, err)
	f.email.AssertExpectations(t)
	view := f.templates.views[0]
	assert.Equal(t, 7, view.DaysSince)
	assert.Equal(t, "Send additional resources and options", view.Actions[0])
}

func TestDispatch_FollowUpReminder_UsesSuppliedDays(t *testing.T) {
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f := newDispatchFixture(created.Add(time.Hour))
	lead := testLead(created)

	f.leads.On("FindByID", mock.Anything, lead.ID).Return(lead, nil)
	f.email.On("Send", mock.Anything, mock.MatchedBy(func(m EmailMessage) bool {
		return m.Subject == "Follow-up Reminder: Jane Doe - Day 3"
	})).Return(nil).Once()

	_, err := f.uc.Execute(context.Background(), DispatchNotificationInput{
		SubmissionID: lead.ID, Type: entity.EventFollowUpReminder,
		CustomData: map[string]any{"daysSince": float64(3)},
	})

	require.NoError(t, err)
	f.email.AssertExpectations(t)
}

func TestDispatch_WelcomeSequence_TriggersAutomationWithoutEmail(t *testing.T) {
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f := newDispatchFixture(created)
	lead := testLead(created)

	f.leads.On("FindByID", mock.Anything, lead.ID).Return(lead, nil)
	f.lists.On("TriggerAutomation", mock.Anything, "jane@example.com", AutomationWelcome,
		mock.MatchedBy(func(fields map[string]any) bool {
			return fields["name"] == "Jane Doe" && fields["urgency_level"] == "low"
		})).Return(nil).Once()

	_, err := f.uc.Execute(context.Background(), DispatchNotificationInput{
		SubmissionID: lead.ID, Type: entity.EventWelcomeSequence,
	})

	require.NoError(t, err)
	f.lists.AssertExpectations(t)
	f.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDispatch_EmailFailure_StrictModePropagates(t *testing.T) {
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f := newDispatchFixture(created)
	lead := testLead(created)

	f.leads.On("FindByID", mock.Anything, lead.ID).Return(lead, nil)
	f.email.On("Send", mock.Anything, mock.Anything).Return(entity.ErrChannelUnavailable)

	_, err := f.uc.Execute(context.Background(), DispatchNotificationInput{
		SubmissionID: lead.ID, Type: entity.EventNewSubmission,
	})

	assert.ErrorIs(t, err, entity.ErrChannelUnavailable)
	assert.True(t, IsTechnicalError(err))
	f.crm.AssertNotCalled(t, "LogEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_EmailFailure_BestEffortSwallows(t *testing.T) {
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f := newDispatchFixture(created)
	lead := testLead(created)
	lead.MissedPayments = 4

	f.leads.On("FindByID", mock.Anything, lead.ID).Return(lead, nil)
	f.email.On("Send", mock.Anything, sentTo("admin@example.com")).Return(entity.ErrChannelRejected)
	f.email.On("Send", mock.Anything, sentTo("urgent@example.com")).Return(nil)
	f.lists.On("AddToGroup", mock.Anything, lead, GroupNewLeads).Return(errors.New("list api down"))

	out, err := f.uc.Execute(context.Background(), DispatchNotificationInput{
		SubmissionID: lead.ID, Type: entity.EventNewSubmission, BestEffort: true,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"urgent@example.com"}, out.Recipients)
	f.crm.AssertNumberOfCalls(t, "LogEvent", 1)
}

func TestDispatch_CRMFailureIsSwallowed(t *testing.T) {
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f := newDispatchFixture(created)
	f.crm.ExpectedCalls = nil
	f.crm.On("LogEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("crm 500"))
	lead := testLead(created)
	lead.ContactEmail = ""

	f.leads.On("FindByID", mock.Anything, lead.ID).Return(lead, nil)
	f.email.On("Send", mock.Anything, sentTo("admin@example.com")).Return(nil)

	_, err := f.uc.Execute(context.Background(), DispatchNotificationInput{
		SubmissionID: lead.ID, Type: entity.EventNewSubmission,
	})

	assert.NoError(t, err)
	f.lists.AssertNotCalled(t, "AddToGroup", mock.Anything, mock.Anything, mock.Anything)
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "Your submission has been carefully reviewed by our foreclosure assistance team.",
		StatusMessage(entity.StatusReviewed))
	assert.Equal(t, "Your submission status has been updated.", StatusMessage("archived"))
}

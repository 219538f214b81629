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

var openStatuses = []entity.LeadStatus{entity.StatusSubmitted, entity.StatusReviewed}

func TestRunFollowUps_SelectsScheduleDaysOnly(t *testing.T) {
	now := time.Date(2026, 6, 20, 9, 0, 0, 0, time.UTC)
	leads := new(MockLeadRepository)
	dispatcher := new(MockDispatcher)

	var open []*entity.Lead
	for _, days := range []int{1, 3, 5, 7, 14} {
		l := entity.NewLead("u", now.Add(-time.Duration(days)*24*time.Hour-time.Hour))
		l.ContactName = "lead"
		open = append(open, l)
	}
	leads.On("FindByStatuses", mock.Anything, openStatuses).Return(open, nil)
	dispatcher.On("Execute", mock.Anything, mock.MatchedBy(func(in DispatchNotificationInput) bool {
		return in.Type == entity.EventFollowUpReminder && in.BestEffort
	})).Return(&DispatchNotificationOutput{}, nil)

	uc := NewRunFollowUpsUseCase(leads, dispatcher, zap.NewNop())
	uc.Now = func() time.Time { return now }

	out, err := uc.Execute(context.Background())

	require.NoError(t, err)
	require.Len(t, out.Reminders, 4)
	var days []int
	for _, r := range out.Reminders {
		days = append(days, r.DaysSince)
	}
	assert.Equal(t, []int{1, 3, 7, 14}, days)
	dispatcher.AssertNumberOfCalls(t, "Execute", 4)
	dispatcher.AssertCalled(t, "Execute", mock.Anything, DispatchNotificationInput{
		SubmissionID: open[3].ID,
		Type:         entity.EventFollowUpReminder,
		CustomData:   map[string]any{"daysSince": 7},
		BestEffort:   true,
	})
}

func TestRunFollowUps_DispatchFailureStillRecorded(t *testing.T) {
	now := time.Date(2026, 6, 20, 9, 0, 0, 0, time.UTC)
	leads := new(MockLeadRepository)
	dispatcher := new(MockDispatcher)

	l := entity.NewLead("u", now.Add(-3*24*time.Hour))
	leads.On("FindByStatuses", mock.Anything, openStatuses).Return([]*entity.Lead{l}, nil)
	dispatcher.On("Execute", mock.Anything, mock.Anything).Return(nil, errors.New("lead vanished"))

	uc := NewRunFollowUpsUseCase(leads, dispatcher, zap.NewNop())
	uc.Now = func() time.Time { return now }

	out, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Len(t, out.Reminders, 1)
}

func TestRunFollowUps_NoOpenLeads(t *testing.T) {
	leads := new(MockLeadRepository)
	dispatcher := new(MockDispatcher)
	leads.On("FindByStatuses", mock.Anything, openStatuses).Return([]*entity.Lead{}, nil)

	out, err := NewRunFollowUpsUseCase(leads, dispatcher, zap.NewNop()).Execute(context.Background())

	require.NoError(t, err)
	assert.Empty(t, out.Reminders)
	assert.NotNil(t, out.Reminders)
	dispatcher.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestRunFollowUps_QueryError(t *testing.T) {
	leads := new(MockLeadRepository)
	leads.On("FindByStatuses", mock.Anything, openStatuses).Return(nil, errors.New("timeout"))

	_, err := NewRunFollowUpsUseCase(leads, new(MockDispatcher), zap.NewNop()).Execute(context.Background())

	assert.True(t, IsTechnicalError(err))
}

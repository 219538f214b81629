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

func validSubmitInput() SubmitLeadInput {
	return SubmitLeadInput{
		UserID:          "user-1",
		ContactName:     " Jane Doe ",
		ContactEmail:    "jane@example.com",
		SituationLength: "6 months",
		Lender:          "Big Bank",
		NOD:             "no",
	}
}

func newSubmitUseCase(repo *MockLeadRepository, pub *MockPublisher) *SubmitLeadUseCase {
	uc := NewSubmitLeadUseCase(repo, pub, zap.NewNop())
	uc.Now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	return uc
}

func TestSubmitLead_Success(t *testing.T) {
	repo := new(MockLeadRepository)
	pub := new(MockPublisher)
	uc := newSubmitUseCase(repo, pub)

	in := validSubmitInput()
	in.MissedPayments = "2"
	in.NOD = "Yes"

	var saved *entity.Lead
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Lead")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*entity.Lead) }).
		Return(nil)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e entity.NotificationEvent) bool {
		return e.Type == entity.EventNewSubmission && e.SubmissionID != ""
	})).Return(nil)

	out, err := uc.Execute(context.Background(), in)

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, saved.ID, out.ID)
	assert.Equal(t, entity.StatusSubmitted, out.Status)
	assert.Equal(t, entity.UrgencyHigh, out.Urgency)
	assert.Equal(t, 2, saved.MissedPayments)
	assert.Equal(t, "Jane Doe", saved.ContactName)
	assert.Equal(t, "user-1", saved.UserID)
	assert.Nil(t, saved.PaymentDifficultyDate)
	pub.AssertExpectations(t)
}

func TestSubmitLead_OmittedMissedPaymentsIsZero(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := newSubmitUseCase(repo, nil)
	uc.Publisher = nil

	var saved *entity.Lead
	repo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*entity.Lead) }).
		Return(nil)

	out, err := uc.Execute(context.Background(), validSubmitInput())

	require.NoError(t, err)
	assert.Equal(t, 0, saved.MissedPayments)
	assert.Equal(t, entity.UrgencyLow, out.Urgency)
}

func TestSubmitLead_MissingRequiredFields(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := newSubmitUseCase(repo, new(MockPublisher))

	in := validSubmitInput()
	in.Lender = ""
	in.NOD = "  "

	_, err := uc.Execute(context.Background(), in)

	require.Error(t, err)
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "VALIDATION_ERROR", de.Code)
	assert.Contains(t, err.Error(), "lender")
	assert.Contains(t, err.Error(), "nod")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitLead_InvalidEmail(t *testing.T) {
	uc := newSubmitUseCase(new(MockLeadRepository), new(MockPublisher))
	in := validSubmitInput()
	in.ContactEmail = "not-an-email"

	_, err := uc.Execute(context.Background(), in)

	assert.True(t, IsDomainError(err))
	assert.Contains(t, err.Error(), "contact_email")
}

func TestSubmitLead_Unauthenticated(t *testing.T) {
	uc := newSubmitUseCase(new(MockLeadRepository), new(MockPublisher))
	in := validSubmitInput()
	in.UserID = ""

	_, err := uc.Execute(context.Background(), in)

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "UNAUTHENTICATED", de.Code)
}

func TestSubmitLead_DatabaseError(t *testing.T) {
	repo := new(MockLeadRepository)
	pub := new(MockPublisher)
	uc := newSubmitUseCase(repo, pub)

	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	_, err := uc.Execute(context.Background(), validSubmitInput())

	assert.True(t, IsTechnicalError(err))
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestSubmitLead_PublishFailureDoesNotFailSubmission(t *testing.T) {
	repo := new(MockLeadRepository)
	pub := new(MockPublisher)
	uc := newSubmitUseCase(repo, pub)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	out, err := uc.Execute(context.Background(), validSubmitInput())

	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
}

func TestParseMissedPayments(t *testing.T) {
	tests := map[string]int{
		"":     0,
		"2":    2,
		" 4 ":  4,
		"3+":   3,
		"none": 0,
		"-1":   0,
	}
	for raw, want := range tests {
		assert.Equal(t, want, parseMissedPayments(raw), "input %q", raw)
	}
}

package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

// SubmitLeadInput mirrors the questionnaire body; every answer arrives as a string.
type SubmitLeadInput struct {
	UserID string `json:"-"`

	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`

	SituationLength       string `json:"situation_length"`
	PaymentDifficultyDate string `json:"payment_difficulty_date"`
	Lender                string `json:"lender"`
	PaymentStatus         string `json:"payment_status"`
	MissedPayments        string `json:"missed_payments"`
	NOD                   string `json:"nod"`
	PropertyType          string `json:"property_type"`
	ReliefContacted       string `json:"relief_contacted"`
	HomeValue             string `json:"home_value"`
	MortgageBalance       string `json:"mortgage_balance"`
	Liens                 string `json:"liens"`

	Challenge        string `json:"challenge"`
	LenderIssue      string `json:"lender_issue"`
	Impact           string `json:"impact"`
	OptionsNarrowing string `json:"options_narrowing"`
	ThirdPartyHelp   string `json:"third_party_help"`
	Overwhelmed      string `json:"overwhelmed"`

	ImplicationCredit       string `json:"implication_credit"`
	ImplicationLoss         string `json:"implication_loss"`
	ImplicationStayDuration string `json:"implication_stay_duration"`
	LegalConcerns           string `json:"legal_concerns"`
	FutureImpact            string `json:"future_impact"`
	FinancialRisk           string `json:"financial_risk"`

	InterestedSolution string `json:"interested_solution"`
	NegotiationHelp    string `json:"negotiation_help"`
	SellFeelings       string `json:"sell_feelings"`
	CreditImportance   string `json:"credit_importance"`
	ResolutionPeace    string `json:"resolution_peace"`
	OpenOptions        string `json:"open_options"`
}

type SubmitLeadOutput struct {
	ID      string            `json:"id"`
	Urgency entity.Urgency    `json:"urgency"`
	Status  entity.LeadStatus `json:"status"`
}

type SubmitLeadUseCase struct {
	Repo      entity.LeadRepositoryInterface
	Publisher NotificationPublisher
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewSubmitLeadUseCase(repo entity.LeadRepositoryInterface, publisher NotificationPublisher, logger *zap.Logger) *SubmitLeadUseCase {
	return &SubmitLeadUseCase{
		Repo:      repo,
		Publisher: publisher,
		Logger:    logger,
		Now:       time.Now,
	}
}

func (uc *SubmitLeadUseCase) Execute(ctx context.Context, input SubmitLeadInput) (*SubmitLeadOutput, error) {
	if input.UserID == "" {
		return nil, &DomainError{Code: "UNAUTHENTICATED", Message: "user not authenticated"}
	}
	if errs := ValidateSubmitLeadInput(input); len(errs) > 0 {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: errs.Error(), Err: errs}
	}

	lead := entity.NewLead(input.UserID, uc.Now().UTC())
	applyAnswers(lead, input)

	if err := uc.Repo.Create(ctx, lead); err != nil {
		return nil, &TechnicalError{Code: "DB_ERROR", Message: "failed to save submission", Err: err}
	}

	urgency := entity.ClassifyUrgency(lead)
	uc.Logger.Info("lead submitted",
		zap.String("lead_id", lead.ID),
		zap.String("urgency", string(urgency)),
	)

	// notificação é best-effort: falha não derruba a submissão
	if uc.Publisher != nil {
		event := entity.NotificationEvent{SubmissionID: lead.ID, Type: entity.EventNewSubmission}
		if err := uc.Publisher.Publish(ctx, event); err != nil {
			uc.Logger.Warn("new submission notification failed",
				zap.String("lead_id", lead.ID),
				zap.Error(err),
			)
		}
	}

	return &SubmitLeadOutput{ID: lead.ID, Urgency: urgency, Status: lead.Status}, nil
}

func applyAnswers(l *entity.Lead, in SubmitLeadInput) {
	l.ContactName = strings.TrimSpace(in.ContactName)
	l.ContactEmail = strings.TrimSpace(in.ContactEmail)
	l.ContactPhone = strings.TrimSpace(in.ContactPhone)

	l.SituationLength = in.SituationLength
	if d := strings.TrimSpace(in.PaymentDifficultyDate); d != "" {
		l.PaymentDifficultyDate = &d
	}
	l.Lender = in.Lender
	l.PaymentStatus = in.PaymentStatus
	l.MissedPayments = parseMissedPayments(in.MissedPayments)
	l.NOD = in.NOD
	l.PropertyType = in.PropertyType
	l.ReliefContacted = in.ReliefContacted
	l.HomeValue = in.HomeValue
	l.MortgageBalance = in.MortgageBalance
	l.Liens = in.Liens

	l.Challenge = in.Challenge
	l.LenderIssue = in.LenderIssue
	l.Impact = in.Impact
	l.OptionsNarrowing = in.OptionsNarrowing
	l.ThirdPartyHelp = in.ThirdPartyHelp
	l.Overwhelmed = in.Overwhelmed

	l.ImplicationCredit = in.ImplicationCredit
	l.ImplicationLoss = in.ImplicationLoss
	l.ImplicationStayDuration = in.ImplicationStayDuration
	l.LegalConcerns = in.LegalConcerns
	l.FutureImpact = in.FutureImpact
	l.FinancialRisk = in.FinancialRisk

	l.InterestedSolution = in.InterestedSolution
	l.NegotiationHelp = in.NegotiationHelp
	l.SellFeelings = in.SellFeelings
	l.CreditImportance = in.CreditImportance
	l.ResolutionPeace = in.ResolutionPeace
	l.OpenOptions = in.OpenOptions
}

// parseMissedPayments aceita "3", " 3 " e "3+"; vazio, inválido ou negativo vira 0.
func parseMissedPayments(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

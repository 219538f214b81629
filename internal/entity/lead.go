package entity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	StatusSubmitted LeadStatus = "submitted"
	StatusReviewed  LeadStatus = "reviewed"
	StatusContacted LeadStatus = "contacted"
	StatusClosed    LeadStatus = "closed"
)

// ordem do ciclo de vida; só anda pra frente
var statusRank = map[LeadStatus]int{
	StatusSubmitted: 0,
	StatusReviewed:  1,
	StatusContacted: 2,
	StatusClosed:    3,
}

func (s LeadStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo reports whether next is strictly after s in the
// submitted → reviewed → contacted → closed lifecycle. Skipping steps is allowed.
func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Lead é uma resposta do questionário de foreclosure.
type Lead struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	ContactName  string `json:"contact_name" db:"contact_name"`
	ContactEmail string `json:"contact_email" db:"contact_email"`
	ContactPhone string `json:"contact_phone" db:"contact_phone"`

	// Situation
	SituationLength       string  `json:"situation_length" db:"situation_length"`
	PaymentDifficultyDate *string `json:"payment_difficulty_date" db:"payment_difficulty_date"`
	Lender                string  `json:"lender" db:"lender"`
	PaymentStatus         string  `json:"payment_status" db:"payment_status"`
	MissedPayments        int     `json:"missed_payments" db:"missed_payments"`
	NOD                   string  `json:"nod" db:"nod"`
	PropertyType          string  `json:"property_type" db:"property_type"`
	ReliefContacted       string  `json:"relief_contacted" db:"relief_contacted"`
	HomeValue             string  `json:"home_value" db:"home_value"`
	MortgageBalance       string  `json:"mortgage_balance" db:"mortgage_balance"`
	Liens                 string  `json:"liens" db:"liens"`

	// Problem
	Challenge        string `json:"challenge" db:"challenge"`
	LenderIssue      string `json:"lender_issue" db:"lender_issue"`
	Impact           string `json:"impact" db:"impact"`
	OptionsNarrowing string `json:"options_narrowing" db:"options_narrowing"`
	ThirdPartyHelp   string `json:"third_party_help" db:"third_party_help"`
	Overwhelmed      string `json:"overwhelmed" db:"overwhelmed"`

	// Implication
	ImplicationCredit       string `json:"implication_credit" db:"implication_credit"`
	ImplicationLoss         string `json:"implication_loss" db:"implication_loss"`
	ImplicationStayDuration string `json:"implication_stay_duration" db:"implication_stay_duration"`
	LegalConcerns           string `json:"legal_concerns" db:"legal_concerns"`
	FutureImpact            string `json:"future_impact" db:"future_impact"`
	FinancialRisk           string `json:"financial_risk" db:"financial_risk"`

	// Need-payoff
	InterestedSolution string `json:"interested_solution" db:"interested_solution"`
	NegotiationHelp    string `json:"negotiation_help" db:"negotiation_help"`
	SellFeelings       string `json:"sell_feelings" db:"sell_feelings"`
	CreditImportance   string `json:"credit_importance" db:"credit_importance"`
	ResolutionPeace    string `json:"resolution_peace" db:"resolution_peace"`
	OpenOptions        string `json:"open_options" db:"open_options"`

	Status     LeadStatus `json:"status" db:"status"`
	Notes      string     `json:"notes" db:"notes"`
	AssignedTo string     `json:"assigned_to" db:"assigned_to"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// NewLead prepara um lead novo com ID e timestamps.
func NewLead(userID string, now time.Time) *Lead {
	return &Lead{
		ID:        uuid.New().String(),
		UserID:    userID,
		Status:    StatusSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DaysSince returns whole days elapsed between the lead creation and now.
func (l *Lead) DaysSince(now time.Time) int {
	if now.Before(l.CreatedAt) {
		return 0
	}
	return int(now.Sub(l.CreatedAt) / (24 * time.Hour))
}

func (l *Lead) HasNOD() bool         { return isYes(l.NOD) }
func (l *Lead) IsOverwhelmed() bool  { return isYes(l.Overwhelmed) }
func (l *Lead) HasLenderIssue() bool { return isYes(l.LenderIssue) }
func (l *Lead) OptionsShrinking() bool {
	return isYes(l.OptionsNarrowing)
}

func isYes(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "y", "true":
		return true
	}
	return false
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	FindByStatuses(ctx context.Context, statuses ...LeadStatus) ([]*Lead, error)
	UpdateStatus(ctx context.Context, id string, status LeadStatus, notes string, updatedAt time.Time) error
}

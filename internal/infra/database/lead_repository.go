package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

var leadColumns = []string{
	"id", "user_id", "contact_name", "contact_email", "contact_phone",
	"situation_length", "payment_difficulty_date", "lender", "payment_status", "missed_payments",
	"nod", "property_type", "relief_contacted", "home_value", "mortgage_balance", "liens",
	"challenge", "lender_issue", "impact", "options_narrowing", "third_party_help", "overwhelmed",
	"implication_credit", "implication_loss", "implication_stay_duration", "legal_concerns",
	"future_impact", "financial_risk",
	"interested_solution", "negotiation_help", "sell_feelings", "credit_importance",
	"resolution_peace", "open_options",
	"status", "notes", "assigned_to", "created_at", "updated_at",
}

var leadSelect = "SELECT " + strings.Join(leadColumns, ", ") + " FROM leads"

type LeadRepository struct {
	DB *sqlx.DB
}

func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, l *entity.Lead) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(leadColumns)), ", ")
	query := r.DB.Rebind(fmt.Sprintf(
		"INSERT INTO leads (%s) VALUES (%s)", strings.Join(leadColumns, ", "), placeholders,
	))

	_, err := r.DB.ExecContext(ctx, query,
		l.ID, l.UserID, l.ContactName, l.ContactEmail, l.ContactPhone,
		l.SituationLength, l.PaymentDifficultyDate, l.Lender, l.PaymentStatus, l.MissedPayments,
		l.NOD, l.PropertyType, l.ReliefContacted, l.HomeValue, l.MortgageBalance, l.Liens,
		l.Challenge, l.LenderIssue, l.Impact, l.OptionsNarrowing, l.ThirdPartyHelp, l.Overwhelmed,
		l.ImplicationCredit, l.ImplicationLoss, l.ImplicationStayDuration, l.LegalConcerns,
		l.FutureImpact, l.FinancialRisk,
		l.InterestedSolution, l.NegotiationHelp, l.SellFeelings, l.CreditImportance,
		l.ResolutionPeace, l.OpenOptions,
		l.Status, l.Notes, l.AssignedTo, l.CreatedAt.UTC(), l.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting lead %s: %w", l.ID, err)
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	var l entity.Lead
	err := r.DB.GetContext(ctx, &l, r.DB.Rebind(leadSelect+" WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting lead %s: %w", id, err)
	}
	return &l, nil
}

// FindByStatuses returns leads in any of the given statuses, oldest first.
func (r *LeadRepository) FindByStatuses(ctx context.Context, statuses ...entity.LeadStatus) ([]*entity.Lead, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	vals := make([]string, 0, len(statuses))
	for _, s := range statuses {
		vals = append(vals, string(s))
	}

	query, args, err := sqlx.In(leadSelect+" WHERE status IN (?) ORDER BY created_at", vals)
	if err != nil {
		return nil, fmt.Errorf("building status query: %w", err)
	}

	var leads []*entity.Lead
	if err := r.DB.SelectContext(ctx, &leads, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing leads by status: %w", err)
	}
	return leads, nil
}

// UpdateStatus sets the status and, when notes is not empty, replaces the notes.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus, notes string, updatedAt time.Time) error {
	var (
		res sql.Result
		err error
	)
	if notes == "" {
		res, err = r.DB.ExecContext(ctx,
			r.DB.Rebind("UPDATE leads SET status = ?, updated_at = ? WHERE id = ?"),
			status, updatedAt.UTC(), id,
		)
	} else {
		res, err = r.DB.ExecContext(ctx,
			r.DB.Rebind("UPDATE leads SET status = ?, notes = ?, updated_at = ? WHERE id = ?"),
			status, notes, updatedAt.UTC(), id,
		)
	}
	if err != nil {
		return fmt.Errorf("updating lead %s status: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating lead %s status: %w", id, err)
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

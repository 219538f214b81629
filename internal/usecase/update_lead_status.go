package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

type UpdateLeadStatusInput struct {
	ID             string            `json:"-"`
	Status         entity.LeadStatus `json:"status"`
	Notes          string            `json:"notes,omitempty"`
	Notify         bool              `json:"notify,omitempty"`
	RecipientEmail string            `json:"recipient_email,omitempty"`
}

// UpdateLeadStatusOutput reports the stored lead and, when asked, how the
// status_update notification went. A failed notify never undoes the move.
type UpdateLeadStatusOutput struct {
	Lead        *entity.Lead `json:"lead"`
	Notified    bool         `json:"notified"`
	NotifyError string       `json:"notifyError,omitempty"`
	Recipients  []string     `json:"recipients,omitempty"`
}

type UpdateLeadStatusUseCase struct {
	Leads      entity.LeadRepositoryInterface
	Dispatcher Dispatcher
	Now        func() time.Time
}

func NewUpdateLeadStatusUseCase(leads entity.LeadRepositoryInterface, dispatcher Dispatcher) *UpdateLeadStatusUseCase {
	return &UpdateLeadStatusUseCase{Leads: leads, Dispatcher: dispatcher, Now: time.Now}
}

func (uc *UpdateLeadStatusUseCase) Execute(ctx context.Context, in UpdateLeadStatusInput) (*UpdateLeadStatusOutput, error) {
	if !in.Status.Valid() {
		return nil, &DomainError{Code: "INVALID_STATUS", Message: fmt.Sprintf("unknown status %q", in.Status)}
	}

	lead, err := uc.Leads.FindByID(ctx, in.ID)
	if err != nil {
		return nil, leadLookupError(err)
	}

	if !lead.Status.CanTransitionTo(in.Status) {
		return nil, &DomainError{
			Code:    "INVALID_STATUS_TRANSITION",
			Message: fmt.Sprintf("cannot move submission from %s to %s", lead.Status, in.Status),
			Err:     entity.ErrInvalidStatusTransition,
		}
	}

	now := uc.Now().UTC()
	if err := uc.Leads.UpdateStatus(ctx, lead.ID, in.Status, in.Notes, now); err != nil {
		return nil, leadLookupError(err)
	}

	lead.Status = in.Status
	lead.UpdatedAt = now
	if in.Notes != "" {
		lead.Notes = in.Notes
	}

	out := &UpdateLeadStatusOutput{Lead: lead}
	if in.Notify && uc.Dispatcher != nil {
		res, err := uc.Dispatcher.Execute(ctx, DispatchNotificationInput{
			SubmissionID:   lead.ID,
			Type:           entity.EventStatusUpdate,
			RecipientEmail: in.RecipientEmail,
		})
		if err != nil {
			// status já gravado; quem chamou decide se reenvia via /api/notifications
			out.NotifyError = err.Error()
			return out, nil
		}
		out.Notified = true
		out.Recipients = res.Recipients
	}

	return out, nil
}

type GetLeadUseCase struct {
	Leads entity.LeadRepositoryInterface
}

func NewGetLeadUseCase(leads entity.LeadRepositoryInterface) *GetLeadUseCase {
	return &GetLeadUseCase{Leads: leads}
}

func (uc *GetLeadUseCase) Execute(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := uc.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, leadLookupError(err)
	}
	return lead, nil
}

func leadLookupError(err error) error {
	if errors.Is(err, entity.ErrLeadNotFound) {
		return &DomainError{Code: "LEAD_NOT_FOUND", Message: "Submission not found", Err: err}
	}
	return &TechnicalError{Code: "DB_ERROR", Message: "failed to access submission", Err: err}
}

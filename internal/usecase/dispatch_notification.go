package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

const (
	GroupNewLeads    = "new_leads"
	GroupUrgentCases = "urgent_cases"

	AutomationWelcome = "welcome_sequence"
)

var statusMessages = map[entity.LeadStatus]string{
	entity.StatusReviewed:  "Your submission has been carefully reviewed by our foreclosure assistance team.",
	entity.StatusContacted: "We have attempted to contact you regarding your foreclosure situation. Please check your phone for missed calls.",
	entity.StatusClosed:    "Your case has been successfully resolved. Thank you for trusting us with your foreclosure assistance needs.",
}

const genericStatusMessage = "Your submission status has been updated."

var statusNextSteps = map[entity.LeadStatus][]string{
	entity.StatusReviewed: {
		"Our team will contact you within 24 hours",
		"We'll discuss your specific situation and options",
		"You'll receive a personalized action plan",
	},
	entity.StatusContacted: {
		"Please return our call at your earliest convenience",
		"We have time-sensitive options to discuss",
		"Our team is standing by to help",
	},
	entity.StatusClosed: {
		"Your case file will remain available for reference",
		"Feel free to contact us for future assistance",
		"We appreciate your trust in our services",
	},
}

var followUpActions = map[int]string{
	1:  "Initial contact within 24 hours",
	3:  "Follow-up call if no response",
	7:  "Send additional resources and options",
	14: "Final outreach before case review",
}

// StatusMessage returns the customer-facing text for a lead status.
func StatusMessage(s entity.LeadStatus) string {
	if msg, ok := statusMessages[s]; ok {
		return msg
	}
	return genericStatusMessage
}

// Recipients are the internal addresses notified about leads.
type Recipients struct {
	Admin   string
	Urgent  string
	Manager string
}

type DispatchNotificationInput struct {
	SubmissionID   string           `json:"submissionId"`
	Type           entity.EventType `json:"type"`
	RecipientEmail string           `json:"recipientEmail,omitempty"`
	CustomData     map[string]any   `json:"customData,omitempty"`
	// BestEffort troca erro de email por log.
	BestEffort bool `json:"bestEffort,omitempty"`
}

type DispatchNotificationOutput struct {
	Recipients         []string    `json:"recipients"`
	ScheduledReminders []time.Time `json:"scheduledReminders"`
}

type DispatchNotificationUseCase struct {
	Leads      entity.LeadRepositoryInterface
	Email      EmailSender
	Lists      ListManager
	CRM        CRMLogger
	Alerts     Alerter
	Templates  TemplateRenderer
	Recipients Recipients
	SiteURL    string
	Logger     *zap.Logger
	Now        func() time.Time
}

func NewDispatchNotificationUseCase(
	leads entity.LeadRepositoryInterface,
	email EmailSender,
	lists ListManager,
	crm CRMLogger,
	alerts Alerter,
	templates TemplateRenderer,
	recipients Recipients,
	siteURL string,
	logger *zap.Logger,
) *DispatchNotificationUseCase {
	return &DispatchNotificationUseCase{
		Leads:      leads,
		Email:      email,
		Lists:      lists,
		CRM:        crm,
		Alerts:     alerts,
		Templates:  templates,
		Recipients: recipients,
		SiteURL:    siteURL,
		Logger:     logger,
		Now:        time.Now,
	}
}

// dispatch carries the state of one Execute call.
type dispatch struct {
	uc         *DispatchNotificationUseCase
	in         DispatchNotificationInput
	lead       *entity.Lead
	urgency    entity.Urgency
	recipients []string
}

func (uc *DispatchNotificationUseCase) Execute(ctx context.Context, in DispatchNotificationInput) (*DispatchNotificationOutput, error) {
	if in.SubmissionID == "" {
		return nil, &DomainError{Code: "MISSING_SUBMISSION_ID", Message: "submissionId is required"}
	}
	if !in.Type.Valid() {
		return nil, &DomainError{Code: "INVALID_EVENT_TYPE", Message: fmt.Sprintf("unknown notification type %q", in.Type)}
	}

	lead, err := uc.Leads.FindByID(ctx, in.SubmissionID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &DomainError{Code: "LEAD_NOT_FOUND", Message: "Submission not found", Err: err}
		}
		return nil, &TechnicalError{Code: "DB_ERROR", Message: "failed to load submission", Err: err}
	}

	d := &dispatch{uc: uc, in: in, lead: lead, urgency: entity.ClassifyUrgency(lead)}

	switch in.Type {
	case entity.EventNewSubmission:
		err = d.newSubmission(ctx)
	case entity.EventStatusUpdate:
		err = d.statusUpdate(ctx)
	case entity.EventUrgentCase:
		err = d.urgentCase(ctx)
	case entity.EventFollowUpReminder:
		err = d.followUpReminder(ctx)
	case entity.EventWelcomeSequence:
		d.welcomeSequence(ctx)
	}
	if err != nil {
		return nil, err
	}

	if uc.CRM != nil {
		if err := uc.CRM.LogEvent(ctx, lead, in.Type, in.CustomData); err != nil {
			uc.Logger.Warn("crm log failed", zap.String("lead_id", lead.ID), zap.Error(err))
		}
	}

	reminders := entity.ReminderSchedule(lead.CreatedAt)
	for i, at := range reminders {
		uc.Logger.Debug("follow-up reminder scheduled",
			zap.String("lead_id", lead.ID),
			zap.Int("day", entity.FollowUpOffsets[i]),
			zap.Time("at", at),
		)
	}

	return &DispatchNotificationOutput{Recipients: d.recipients, ScheduledReminders: reminders}, nil
}

func (d *dispatch) newSubmission(ctx context.Context) error {
	name := d.lead.ContactName
	subject := "📋 New Foreclosure Submission - " + name
	if d.urgency == entity.UrgencyHigh {
		subject = "🚨 URGENT: New Foreclosure Submission - " + name
	}

	html, err := d.render(entity.EventNewSubmission, NotificationView{})
	if err != nil {
		return err
	}

	if err := d.send(ctx, d.uc.Recipients.Admin, subject, html,
		"admin_notification", "priority_"+string(d.urgency)); err != nil {
		return err
	}
	if d.urgency == entity.UrgencyHigh {
		if err := d.send(ctx, d.uc.Recipients.Urgent, subject, html,
			"urgent_notification", "high_priority"); err != nil {
			return err
		}
	}

	d.addToGroup(ctx, GroupNewLeads)
	return nil
}

func (d *dispatch) statusUpdate(ctx context.Context) error {
	to := d.in.RecipientEmail
	if to == "" {
		to = d.lead.ContactEmail
	}
	if to == "" {
		d.uc.Logger.Info("status update skipped, no recipient", zap.String("lead_id", d.lead.ID))
		return nil
	}

	html, err := d.render(entity.EventStatusUpdate, NotificationView{
		StatusMessage: StatusMessage(d.lead.Status),
		NextSteps:     statusNextSteps[d.lead.Status],
	})
	if err != nil {
		return err
	}

	subject := "Update on Your Foreclosure Assistance Request - " + strings.ToUpper(string(d.lead.Status))
	return d.send(ctx, to, subject, html, "status_update", "status_"+string(d.lead.Status))
}

func (d *dispatch) urgentCase(ctx context.Context) error {
	html, err := d.render(entity.EventUrgentCase, NotificationView{})
	if err != nil {
		return err
	}

	subject := "🚨 URGENT: High Priority Foreclosure Case - " + d.lead.ContactName
	for _, to := range []string{d.uc.Recipients.Admin, d.uc.Recipients.Urgent, d.uc.Recipients.Manager} {
		if to == "" {
			continue
		}
		if err := d.send(ctx, to, subject, html, "urgent_case", "immediate_action_required"); err != nil {
			return err
		}
	}

	d.addToGroup(ctx, GroupUrgentCases)

	if d.uc.Alerts != nil {
		if err := d.uc.Alerts.SendUrgentAlert(ctx, d.lead); err != nil {
			d.uc.Logger.Warn("urgent alert failed", zap.String("lead_id", d.lead.ID), zap.Error(err))
		}
	}
	return nil
}

func (d *dispatch) followUpReminder(ctx context.Context) error {
	days, ok := intFromAny(d.in.CustomData["daysSince"])
	if !ok {
		days = d.lead.DaysSince(d.uc.Now())
	}

	actions := make([]string, 0, 3)
	if a, ok := followUpActions[days]; ok {
		actions = append(actions, a)
	}
	actions = append(actions, "Update case status and notes", "Schedule next follow-up if needed")

	html, err := d.render(entity.EventFollowUpReminder, NotificationView{DaysSince: days, Actions: actions})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Follow-up Reminder: %s - Day %d", d.lead.ContactName, days)
	return d.send(ctx, d.uc.Recipients.Admin, subject, html, "follow_up_reminder", fmt.Sprintf("day_%d", days))
}

func (d *dispatch) welcomeSequence(ctx context.Context) {
	if d.lead.ContactEmail == "" || d.uc.Lists == nil {
		return
	}
	fields := map[string]any{
		"name":            d.lead.ContactName,
		"urgency_level":   string(d.urgency),
		"submission_date": d.lead.CreatedAt.Format(time.RFC3339),
	}
	if err := d.uc.Lists.TriggerAutomation(ctx, d.lead.ContactEmail, AutomationWelcome, fields); err != nil {
		d.uc.Logger.Warn("welcome automation failed", zap.String("lead_id", d.lead.ID), zap.Error(err))
	}
}

func (d *dispatch) render(event entity.EventType, view NotificationView) (string, error) {
	view.Lead = d.lead
	view.Urgency = d.urgency
	view.SiteURL = d.uc.SiteURL

	html, err := d.uc.Templates.Render(event, view)
	if err != nil {
		return "", &TechnicalError{Code: "TEMPLATE_ERROR", Message: "failed to render " + string(event), Err: err}
	}
	return html, nil
}

// send delivers one email. In best-effort mode failures are logged and nil is returned.
func (d *dispatch) send(ctx context.Context, to, subject, html string, tags ...string) error {
	err := d.uc.Email.Send(ctx, EmailMessage{To: to, Subject: subject, HTML: html, Tags: tags})
	if err == nil {
		d.recipients = append(d.recipients, to)
		return nil
	}

	if d.in.BestEffort {
		d.uc.Logger.Warn("email delivery failed",
			zap.String("lead_id", d.lead.ID),
			zap.String("event", string(d.in.Type)),
			zap.String("to", to),
			zap.Error(err),
		)
		return nil
	}
	return &TechnicalError{Code: "EMAIL_FAILED", Message: "failed to send email to " + to, Err: err}
}

func (d *dispatch) addToGroup(ctx context.Context, group string) {
	if d.lead.ContactEmail == "" || d.uc.Lists == nil {
		return
	}
	if err := d.uc.Lists.AddToGroup(ctx, d.lead, group); err != nil {
		d.uc.Logger.Warn("mailing list update failed",
			zap.String("lead_id", d.lead.ID),
			zap.String("group", group),
			zap.Error(err),
		)
	}
}

func intFromAny(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

// Dispatcher is the part of the notification use case other flows depend on.
type Dispatcher interface {
	Execute(ctx context.Context, in DispatchNotificationInput) (*DispatchNotificationOutput, error)
}

type FollowUpReminder struct {
	SubmissionID string `json:"submissionId"`
	ClientName   string `json:"clientName"`
	DaysSince    int    `json:"daysSince"`
}

type RunFollowUpsOutput struct {
	Reminders []FollowUpReminder `json:"reminders"`
}

// RunFollowUpsUseCase is one scan-and-act pass. It owns no timer; the HTTP
// route, the CLI and the worker decide when it runs.
type RunFollowUpsUseCase struct {
	Leads      entity.LeadRepositoryInterface
	Dispatcher Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
}

func NewRunFollowUpsUseCase(leads entity.LeadRepositoryInterface, dispatcher Dispatcher, logger *zap.Logger) *RunFollowUpsUseCase {
	return &RunFollowUpsUseCase{
		Leads:      leads,
		Dispatcher: dispatcher,
		Logger:     logger,
		Now:        time.Now,
	}
}

func (uc *RunFollowUpsUseCase) Execute(ctx context.Context) (*RunFollowUpsOutput, error) {
	leads, err := uc.Leads.FindByStatuses(ctx, entity.StatusSubmitted, entity.StatusReviewed)
	if err != nil {
		return nil, &TechnicalError{Code: "DB_ERROR", Message: "failed to load open submissions", Err: err}
	}

	now := uc.Now()
	out := &RunFollowUpsOutput{Reminders: []FollowUpReminder{}}

	for _, lead := range leads {
		days := lead.DaysSince(now)
		if !entity.IsFollowUpDay(days) {
			continue
		}

		_, err := uc.Dispatcher.Execute(ctx, DispatchNotificationInput{
			SubmissionID: lead.ID,
			Type:         entity.EventFollowUpReminder,
			CustomData:   map[string]any{"daysSince": days},
			BestEffort:   true,
		})
		if err != nil {
			uc.Logger.Warn("follow-up dispatch failed", zap.String("lead_id", lead.ID), zap.Error(err))
		}

		out.Reminders = append(out.Reminders, FollowUpReminder{
			SubmissionID: lead.ID,
			ClientName:   lead.ContactName,
			DaysSince:    days,
		})
	}

	uc.Logger.Info("follow-up pass finished",
		zap.Int("open_leads", len(leads)),
		zap.Int("reminders", len(out.Reminders)),
	)
	return out, nil
}

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/infra/http/middleware"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

type followUpRunner interface {
	Execute(ctx context.Context) (*usecase.RunFollowUpsOutput, error)
}

type NotificationHandler struct {
	dispatcher usecase.Dispatcher
	followUps  followUpRunner
	logger     *zap.Logger
}

func NewNotificationHandler(dispatcher usecase.Dispatcher, followUps followUpRunner, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{dispatcher: dispatcher, followUps: followUps, logger: logger}
}

type DispatchResponse struct {
	Success            bool        `json:"success"`
	Message            string      `json:"message"`
	Recipients         []string    `json:"recipients"`
	ScheduledReminders []time.Time `json:"scheduledReminders"`
}

// Dispatch envia uma notificação na hora (POST /api/notifications).
func (h *NotificationHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var input usecase.DispatchNotificationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	out, err := h.dispatcher.Execute(r.Context(), input)
	if err != nil {
		middleware.RecordNotification(string(input.Type), "failed")
		if usecase.IsTechnicalError(err) {
			middleware.RecordIntegrationError("email")
			h.logger.Error("notification failed",
				zap.String("submission_id", input.SubmissionID),
				zap.String("type", string(input.Type)),
				zap.Error(err),
			)
		}
		writeUseCaseError(w, err)
		return
	}

	middleware.RecordNotification(string(input.Type), "sent")
	writeJSON(w, http.StatusOK, DispatchResponse{
		Success:            true,
		Message:            "Email sent successfully",
		Recipients:         out.Recipients,
		ScheduledReminders: out.ScheduledReminders,
	})
}

type FollowUpsResponse struct {
	Success   bool                       `json:"success"`
	Message   string                     `json:"message"`
	Reminders []usecase.FollowUpReminder `json:"reminders"`
}

// RunFollowUps dispara os lembretes do dia (POST /api/follow-ups/run).
func (h *NotificationHandler) RunFollowUps(w http.ResponseWriter, r *http.Request) {
	out, err := h.followUps.Execute(r.Context())
	if err != nil {
		h.logger.Error("follow-up run failed", zap.Error(err))
		writeUseCaseError(w, err)
		return
	}

	reminders := out.Reminders
	if reminders == nil {
		reminders = []usecase.FollowUpReminder{}
	}
	writeJSON(w, http.StatusOK, FollowUpsResponse{
		Success:   true,
		Message:   fmt.Sprintf("Processed %d follow-up reminders", len(reminders)),
		Reminders: reminders,
	})
}

package entity

import "time"

type EventType string

const (
	EventNewSubmission    EventType = "new_submission"
	EventStatusUpdate     EventType = "status_update"
	EventUrgentCase       EventType = "urgent_case"
	EventFollowUpReminder EventType = "follow_up_reminder"
	EventWelcomeSequence  EventType = "welcome_sequence"
)

func (t EventType) Valid() bool {
	switch t {
	case EventNewSubmission, EventStatusUpdate, EventUrgentCase, EventFollowUpReminder, EventWelcomeSequence:
		return true
	}
	return false
}

// NotificationEvent is what travels between intake, the queue and the dispatcher.
type NotificationEvent struct {
	SubmissionID   string         `json:"submissionId"`
	Type           EventType      `json:"type"`
	RecipientEmail string         `json:"recipientEmail,omitempty"`
	CustomData     map[string]any `json:"customData,omitempty"`
}

// FollowUpOffsets are the day offsets at which open leads get a reminder.
var FollowUpOffsets = []int{1, 3, 7, 14}

func IsFollowUpDay(days int) bool {
	for _, d := range FollowUpOffsets {
		if d == days {
			return true
		}
	}
	return false
}

// ReminderSchedule returns the reminder dates for a lead created at createdAt.
func ReminderSchedule(createdAt time.Time) []time.Time {
	out := make([]time.Time, 0, len(FollowUpOffsets))
	for _, d := range FollowUpOffsets {
		out = append(out, createdAt.AddDate(0, 0, d))
	}
	return out
}

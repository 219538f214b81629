package entity

import (
	"context"
	"time"
)

type CallStatus string

const (
	CallInProgress  CallStatus = "in-progress"
	CallTransferred CallStatus = "transferred"
	CallCompleted   CallStatus = "completed"
)

type Speaker string

const (
	SpeakerCaller Speaker = "caller"
	SpeakerAI     Speaker = "ai"
)

type Call struct {
	ID                    string     `json:"id" db:"id"`
	CallSID               string     `json:"call_sid" db:"call_sid"`
	PhoneNumber           string     `json:"phone_number" db:"phone_number"`
	CallStatus            CallStatus `json:"call_status" db:"call_status"`
	PriorityLevel         string     `json:"priority_level" db:"priority_level"`
	CallDuration          int        `json:"call_duration" db:"call_duration"`
	RequiresHumanFollowup bool       `json:"requires_human_followup" db:"requires_human_followup"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	CompletedAt           *time.Time `json:"completed_at" db:"completed_at"`
}

type Transcript struct {
	ID              string    `json:"id" db:"id"`
	CallID          string    `json:"call_id" db:"call_id"`
	Speaker         Speaker   `json:"speaker" db:"speaker"`
	Message         string    `json:"message" db:"message"`
	ConfidenceScore float64   `json:"confidence_score" db:"confidence_score"`
	TimestampOffset int       `json:"timestamp_offset" db:"timestamp_offset"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

type Intent struct {
	ID               string    `json:"id" db:"id"`
	CallID           string    `json:"call_id" db:"call_id"`
	IntentName       string    `json:"intent_name" db:"intent_name"`
	ConfidenceScore  float64   `json:"confidence_score" db:"confidence_score"`
	Entities         string    `json:"entities" db:"entities"`
	ResponseProvided string    `json:"response_provided" db:"response_provided"`
	Fulfilled        bool      `json:"fulfilled" db:"fulfilled"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

type Handoff struct {
	ID             string     `json:"id" db:"id"`
	CallID         string     `json:"call_id" db:"call_id"`
	Reason         string     `json:"reason" db:"reason"`
	AISummary      string     `json:"ai_summary" db:"ai_summary"`
	AgentID        string     `json:"agent_id" db:"agent_id"`
	HandoffTime    time.Time  `json:"handoff_time" db:"handoff_time"`
	ResolutionTime *time.Time `json:"resolution_time" db:"resolution_time"`
}

// Intents the voice assistant knows how to classify.
const (
	IntentForeclosureHelp     = "foreclosure_help"
	IntentCaseStatus          = "case_status"
	IntentScheduleAppointment = "schedule_appointment"
	IntentFinancialHardship   = "financial_hardship"
	IntentPropertyValuation   = "property_valuation"
	IntentLegalQuestions      = "legal_questions"
	IntentSpeakToAgent        = "speak_to_agent"
)

type CallRepositoryInterface interface {
	CreateCall(ctx context.Context, c *Call) error
	FindCallBySID(ctx context.Context, sid string) (*Call, error)
	FindCallByID(ctx context.Context, id string) (*Call, error)
	MarkTransferred(ctx context.Context, callID string) error
	MarkCompleted(ctx context.Context, sid string, completedAt time.Time) error
	ListCalls(ctx context.Context) ([]*Call, error)
	RecentCalls(ctx context.Context, limit int) ([]*Call, error)

	AddTranscript(ctx context.Context, t *Transcript) error
	TranscriptsByCall(ctx context.Context, callID string) ([]*Transcript, error)

	AddIntent(ctx context.Context, i *Intent) error
	IntentsByCall(ctx context.Context, callID string) ([]*Intent, error)
	ListIntents(ctx context.Context) ([]*Intent, error)

	AddHandoff(ctx context.Context, h *Handoff) error
	HandoffByCall(ctx context.Context, callID string) (*Handoff, error)
	ListHandoffs(ctx context.Context) ([]*Handoff, error)
}

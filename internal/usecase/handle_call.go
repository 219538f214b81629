package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

const (
	MsgNoSpeech = "I didn't catch that. Could you please repeat what you need help with?"
	MsgHold     = "Thank you for calling RepMotivatedSeller. Please hold while we connect you."
	MsgApology  = "We apologize, but we are experiencing technical difficulties. Please try calling back in a few minutes."

	msgAIUnavailable = "I apologize, but our AI system is currently unavailable. Let me connect you with one of our specialists."
	msgAIFailure     = "I apologize, but I'm having trouble understanding. Let me connect you with one of our foreclosure specialists who can better assist you."

	handoffSummary = "Caller requested human assistance or AI determined handoff necessary"

	NextContinueConversation = "continue_conversation"
	NextScheduleAppointment  = "schedule_appointment"
)

type CallReplyKind int

const (
	// ReplyGreeting: greeting, speech gather, fallback dial to an agent.
	ReplyGreeting CallReplyKind = iota
	// ReplySay: a single spoken message.
	ReplySay
	// ReplyContinue: message plus another speech gather.
	ReplyContinue
	// ReplySchedule: message plus dial to the scheduling line.
	ReplySchedule
	// ReplyTransfer: transfer to an agent with voicemail fallback.
	ReplyTransfer
	// ReplyAck: plain "OK", no markup.
	ReplyAck
)

// CallReply is what the telephony layer turns into markup.
type CallReply struct {
	Kind    CallReplyKind
	Message string
}

type CallWebhookInput struct {
	CallSID      string
	From         string
	To           string
	CallStatus   string
	Direction    string
	SpeechResult string
	Confidence   string
}

type HandleCallUseCase struct {
	Calls      entity.CallRepositoryInterface
	Classifier IntentClassifier
	Logger     *zap.Logger
	Now        func() time.Time
}

func NewHandleCallUseCase(calls entity.CallRepositoryInterface, classifier IntentClassifier, logger *zap.Logger) *HandleCallUseCase {
	return &HandleCallUseCase{
		Calls:      calls,
		Classifier: classifier,
		Logger:     logger,
		Now:        time.Now,
	}
}

// Execute never fails on persistence problems; those are logged so the
// caller still hears a reply.
func (uc *HandleCallUseCase) Execute(ctx context.Context, in CallWebhookInput) (*CallReply, error) {
	log := uc.Logger.With(zap.String("call_sid", in.CallSID), zap.String("call_status", in.CallStatus))

	switch in.CallStatus {
	case "ringing":
		return uc.incoming(ctx, log, in), nil
	case "in-progress":
		return uc.inProgress(ctx, log, in), nil
	case "completed":
		if err := uc.Calls.MarkCompleted(ctx, in.CallSID, uc.Now().UTC()); err != nil {
			log.Warn("failed to complete call", zap.Error(err))
		}
		return &CallReply{Kind: ReplyAck}, nil
	default:
		return &CallReply{Kind: ReplySay, Message: MsgHold}, nil
	}
}

func (uc *HandleCallUseCase) incoming(ctx context.Context, log *zap.Logger, in CallWebhookInput) *CallReply {
	call := &entity.Call{
		ID:            uuid.NewString(),
		CallSID:       in.CallSID,
		PhoneNumber:   in.From,
		CallStatus:    entity.CallInProgress,
		PriorityLevel: "medium",
		CreatedAt:     uc.Now().UTC(),
	}
	if err := uc.Calls.CreateCall(ctx, call); err != nil {
		log.Error("failed to create call record", zap.Error(err))
	}
	return &CallReply{Kind: ReplyGreeting}
}

func (uc *HandleCallUseCase) inProgress(ctx context.Context, log *zap.Logger, in CallWebhookInput) *CallReply {
	speech := strings.TrimSpace(in.SpeechResult)
	if speech == "" {
		return &CallReply{Kind: ReplySay, Message: MsgNoSpeech}
	}

	result := uc.classify(ctx, log, speech)

	call, err := uc.Calls.FindCallBySID(ctx, in.CallSID)
	if err != nil {
		log.Warn("call record unavailable, skipping transcript", zap.Error(err))
	} else {
		uc.record(ctx, log, call, in, result)
	}

	if result.RequiresHandoff {
		if call != nil {
			uc.handoff(ctx, log, call, result.HandoffReason)
		}
		return &CallReply{Kind: ReplyTransfer, Message: result.Message}
	}

	switch result.NextAction {
	case NextContinueConversation:
		return &CallReply{Kind: ReplyContinue, Message: result.Message}
	case NextScheduleAppointment:
		return &CallReply{Kind: ReplySchedule, Message: result.Message}
	default:
		return &CallReply{Kind: ReplySay, Message: result.Message}
	}
}

// classify always yields a usable result; classifier problems become a handoff.
func (uc *HandleCallUseCase) classify(ctx context.Context, log *zap.Logger, speech string) *IntentResult {
	if uc.Classifier == nil {
		return &IntentResult{Message: msgAIUnavailable, RequiresHandoff: true, HandoffReason: "AI system unavailable"}
	}

	res, err := uc.Classifier.Classify(ctx, speech)
	switch {
	case errors.Is(err, entity.ErrChannelUnavailable):
		return &IntentResult{Message: msgAIUnavailable, RequiresHandoff: true, HandoffReason: "AI system unavailable"}
	case err != nil:
		log.Warn("intent classification failed", zap.Error(err))
		return &IntentResult{Message: msgAIFailure, RequiresHandoff: true, HandoffReason: "AI processing error"}
	case res == nil || strings.TrimSpace(res.Message) == "":
		log.Warn("intent classification returned no message")
		return &IntentResult{Message: msgAIFailure, RequiresHandoff: true, HandoffReason: "AI processing error"}
	}
	return res
}

func (uc *HandleCallUseCase) record(ctx context.Context, log *zap.Logger, call *entity.Call, in CallWebhookInput, res *IntentResult) {
	now := uc.Now().UTC()
	offset := int(now.Sub(call.CreatedAt).Seconds())
	if offset < 0 {
		offset = 0
	}
	confidence, _ := strconv.ParseFloat(in.Confidence, 64)

	transcripts := []*entity.Transcript{
		{CallID: call.ID, Speaker: entity.SpeakerCaller, Message: in.SpeechResult, ConfidenceScore: confidence},
		{CallID: call.ID, Speaker: entity.SpeakerAI, Message: res.Message},
	}
	for _, t := range transcripts {
		t.ID = uuid.NewString()
		t.TimestampOffset = offset
		t.CreatedAt = now
		if err := uc.Calls.AddTranscript(ctx, t); err != nil {
			log.Warn("failed to store transcript", zap.String("speaker", string(t.Speaker)), zap.Error(err))
		}
	}

	if res.Intent == nil || res.Intent.Name == "" {
		return
	}

	entities := "{}"
	if len(res.Intent.Entities) > 0 {
		if b, err := json.Marshal(res.Intent.Entities); err == nil {
			entities = string(b)
		}
	}
	intent := &entity.Intent{
		ID:               uuid.NewString(),
		CallID:           call.ID,
		IntentName:       res.Intent.Name,
		ConfidenceScore:  res.Intent.Confidence,
		Entities:         entities,
		ResponseProvided: res.Message,
		Fulfilled:        !res.RequiresHandoff,
		CreatedAt:        now,
	}
	if err := uc.Calls.AddIntent(ctx, intent); err != nil {
		log.Warn("failed to store intent", zap.Error(err))
	}
}

func (uc *HandleCallUseCase) handoff(ctx context.Context, log *zap.Logger, call *entity.Call, reason string) {
	h := &entity.Handoff{
		ID:          uuid.NewString(),
		CallID:      call.ID,
		Reason:      reason,
		AISummary:   handoffSummary,
		HandoffTime: uc.Now().UTC(),
	}
	if err := uc.Calls.AddHandoff(ctx, h); err != nil {
		log.Warn("failed to store handoff", zap.Error(err))
	}
	if err := uc.Calls.MarkTransferred(ctx, call.ID); err != nil {
		log.Warn("failed to mark call transferred", zap.Error(err))
	}
}

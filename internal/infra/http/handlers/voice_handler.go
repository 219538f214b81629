package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
	"github.com/xavierca1/foreclosure-leads/internal/infra/http/middleware"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

type callHandler interface {
	Execute(ctx context.Context, in usecase.CallWebhookInput) (*usecase.CallReply, error)
}

type replyRenderer interface {
	Render(reply *usecase.CallReply) (string, []byte, error)
	Apology() []byte
}

type usageRecorder interface {
	Execute(ctx context.Context, in usecase.RecordVoiceUsageInput) (*entity.VoiceUsage, error)
}

type limitsChecker interface {
	Execute(ctx context.Context, in usecase.CheckVoiceLimitsInput) (*usecase.CheckVoiceLimitsOutput, error)
}

type VoiceHandler struct {
	calls    callHandler
	renderer replyRenderer
	usage    usageRecorder
	limits   limitsChecker
	logger   *zap.Logger
}

func NewVoiceHandler(calls callHandler, renderer replyRenderer, usage usageRecorder, limits limitsChecker, logger *zap.Logger) *VoiceHandler {
	return &VoiceHandler{
		calls:    calls,
		renderer: renderer,
		usage:    usage,
		limits:   limits,
		logger:   logger,
	}
}

// Webhook atende os callbacks do provedor de telefonia. Sempre responde 200;
// qualquer falha vira o TwiML de desculpas.
func (h *VoiceHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("invalid voice webhook form", zap.Error(err))
		h.apology(w)
		return
	}

	in := usecase.CallWebhookInput{
		CallSID:      r.PostForm.Get("CallSid"),
		From:         r.PostForm.Get("From"),
		To:           r.PostForm.Get("To"),
		CallStatus:   r.PostForm.Get("CallStatus"),
		Direction:    r.PostForm.Get("Direction"),
		SpeechResult: r.PostForm.Get("SpeechResult"),
		Confidence:   r.PostForm.Get("Confidence"),
	}
	middleware.RecordCallEvent(in.CallStatus)

	reply, err := h.calls.Execute(r.Context(), in)
	if err != nil {
		h.logger.Error("voice webhook failed", zap.String("call_sid", in.CallSID), zap.Error(err))
		h.apology(w)
		return
	}

	contentType, body, err := h.renderer.Render(reply)
	if err != nil {
		h.logger.Error("twiml render failed", zap.String("call_sid", in.CallSID), zap.Error(err))
		h.apology(w)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *VoiceHandler) apology(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(h.renderer.Apology())
}

// RecordUsage registra o consumo de TTS (POST /api/voice/usage).
func (h *VoiceHandler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	var input usecase.RecordVoiceUsageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	input.UserID = middleware.UserID(r.Context())

	usage, err := h.usage.Execute(r.Context(), input)
	if err != nil {
		if usecase.IsTechnicalError(err) {
			h.logger.Error("voice usage logging failed", zap.String("user_id", input.UserID), zap.Error(err))
		}
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "usage": usage})
}

// CheckLimits diz se o pedido cabe no plano do usuário (POST /api/voice/limits).
func (h *VoiceHandler) CheckLimits(w http.ResponseWriter, r *http.Request) {
	var input usecase.CheckVoiceLimitsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	input.UserID = middleware.UserID(r.Context())
	input.Tier = middleware.Tier(r.Context())

	out, err := h.limits.Execute(r.Context(), input)
	if err != nil {
		if usecase.IsTechnicalError(err) {
			h.logger.Error("voice limit check failed", zap.String("user_id", input.UserID), zap.Error(err))
		}
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

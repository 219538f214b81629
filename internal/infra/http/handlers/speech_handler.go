package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/infra/http/middleware"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

type speechSynthesizer interface {
	Execute(ctx context.Context, in usecase.SynthesizeSpeechInput) (*usecase.SpeechAudio, error)
}

type SpeechHandler struct {
	speech speechSynthesizer
	logger *zap.Logger
}

func NewSpeechHandler(speech speechSynthesizer, logger *zap.Logger) *SpeechHandler {
	return &SpeechHandler{speech: speech, logger: logger}
}

// Synthesize gera o áudio TTS dentro do limite do plano (POST /api/voice/tts).
func (h *SpeechHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var input usecase.SynthesizeSpeechInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	input.UserID = middleware.UserID(r.Context())
	input.Tier = middleware.Tier(r.Context())

	audio, err := h.speech.Execute(r.Context(), input)
	if err != nil {
		if usecase.IsTechnicalError(err) {
			middleware.RecordIntegrationError("openai_tts")
			h.logger.Error("tts failed", zap.String("user_id", input.UserID), zap.Error(err))
		}
		writeUseCaseError(w, err)
		return
	}

	w.Header().Set("Content-Type", audio.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(audio.Data)
}

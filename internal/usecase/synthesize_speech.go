package usecase

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

const (
	DefaultSpeechVoice  = "alloy"
	DefaultSpeechModel  = "tts-1"
	DefaultSpeechFormat = "mp3"
)

var speechFormats = map[string]bool{"mp3": true, "opus": true, "aac": true, "flac": true}

type SpeechRequest struct {
	Text   string
	Voice  string
	Model  string
	Format string
}

type SpeechAudio struct {
	ContentType string
	Data        []byte
}

// SpeechSynthesizer é o provedor de TTS.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, req SpeechRequest) (*SpeechAudio, error)
}

type voiceLimits interface {
	Execute(ctx context.Context, in CheckVoiceLimitsInput) (*CheckVoiceLimitsOutput, error)
}

type voiceUsage interface {
	Execute(ctx context.Context, in RecordVoiceUsageInput) (*entity.VoiceUsage, error)
}

type SynthesizeSpeechInput struct {
	UserID         string `json:"-"`
	Tier           string `json:"-"`
	Text           string `json:"text"`
	Voice          string `json:"voice,omitempty"`
	Model          string `json:"model,omitempty"`
	ResponseFormat string `json:"responseFormat,omitempty"`
}

// SynthesizeSpeechUseCase checa o plano, gera o áudio e só então registra o
// consumo. Pedido recusado pelo limite não chega no provedor.
type SynthesizeSpeechUseCase struct {
	Speech SpeechSynthesizer
	Limits voiceLimits
	Usage  voiceUsage
	Logger *zap.Logger
}

func NewSynthesizeSpeechUseCase(speech SpeechSynthesizer, limits voiceLimits, usage voiceUsage, logger *zap.Logger) *SynthesizeSpeechUseCase {
	return &SynthesizeSpeechUseCase{Speech: speech, Limits: limits, Usage: usage, Logger: logger}
}

func (uc *SynthesizeSpeechUseCase) Execute(ctx context.Context, in SynthesizeSpeechInput) (*SpeechAudio, error) {
	if in.UserID == "" {
		return nil, &DomainError{Code: "UNAUTHENTICATED", Message: "user not authenticated"}
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "Text is required"}
	}

	req := SpeechRequest{
		Text:   in.Text,
		Voice:  orDefault(in.Voice, DefaultSpeechVoice),
		Model:  orDefault(in.Model, DefaultSpeechModel),
		Format: orDefault(in.ResponseFormat, DefaultSpeechFormat),
	}
	if !speechFormats[req.Format] {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "responseFormat must be one of mp3, opus, aac, flac"}
	}
	tier := orDefault(in.Tier, entity.DefaultTier)

	check, err := uc.Limits.Execute(ctx, CheckVoiceLimitsInput{
		UserID:      in.UserID,
		Tier:        tier,
		RequestSize: utf8.RuneCountInString(in.Text),
	})
	if err != nil {
		return nil, err
	}
	if !check.Allowed {
		return nil, &DomainError{Code: "LIMIT_EXCEEDED", Message: check.Message, Err: entity.ErrUsageLimitExceeded}
	}

	audio, err := uc.Speech.Synthesize(ctx, req)
	if err != nil {
		code := "TTS_FAILED"
		if errors.Is(err, entity.ErrChannelUnavailable) {
			code = "TTS_UNAVAILABLE"
		}
		return nil, &TechnicalError{Code: code, Message: "Failed to process text-to-speech request", Err: err}
	}

	// áudio já foi gerado; falha ao registrar não derruba a resposta
	if _, err := uc.Usage.Execute(ctx, RecordVoiceUsageInput{
		UserID: in.UserID,
		Text:   in.Text,
		Voice:  req.Voice,
		Model:  req.Model,
		Tier:   tier,
	}); err != nil {
		uc.Logger.Error("tts usage not recorded", zap.String("user_id", in.UserID), zap.Error(err))
	}

	return audio, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

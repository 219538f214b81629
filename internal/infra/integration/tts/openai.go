// Package tts fala com a API de text-to-speech da OpenAI.
package tts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

type OpenAI struct {
	http   *resty.Client
	apiKey string
	logger *zap.Logger
}

type speechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewOpenAI(baseURL, apiKey string, logger *zap.Logger) *OpenAI {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(60*time.Second).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey)

	return &OpenAI{http: rc, apiKey: apiKey, logger: logger}
}

// Synthesize devolve o áudio cru de /audio/speech.
func (o *OpenAI) Synthesize(ctx context.Context, req usecase.SpeechRequest) (*usecase.SpeechAudio, error) {
	if o.apiKey == "" {
		return nil, fmt.Errorf("openai tts não configurado: %w", entity.ErrChannelUnavailable)
	}

	var apiErr apiError
	resp, err := o.http.R().
		SetContext(ctx).
		SetBody(speechRequest{
			Model:          req.Model,
			Voice:          req.Voice,
			Input:          req.Text,
			ResponseFormat: req.Format,
		}).
		SetError(&apiErr).
		Post("/audio/speech")
	if err != nil {
		return nil, fmt.Errorf("openai tts request: %v: %w", err, entity.ErrChannelUnavailable)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("openai tts error %d: %s: %w", resp.StatusCode(), apiErr.Error.Message, entity.ErrChannelRejected)
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = "audio/" + req.Format
	}

	o.logger.Debug("tts generated",
		zap.String("model", req.Model),
		zap.String("voice", req.Voice),
		zap.Int("bytes", len(resp.Body())),
	)
	return &usecase.SpeechAudio{ContentType: contentType, Data: resp.Body()}, nil
}

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

type OpenAI struct {
	http        *resty.Client
	model       string
	temperature float64
	maxTokens   int
	logger      *zap.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func NewOpenAI(baseURL, apiKey, model string, temperature float64, maxTokens int, logger *zap.Logger) *OpenAI {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(20*time.Second).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey)

	return &OpenAI{
		http:        rc,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

func (o *OpenAI) Classify(ctx context.Context, utterance string) (*usecase.IntentResult, error) {
	req := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: utterance},
		},
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	}

	var out chatResponse
	var apiErr apiError
	resp, err := o.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("openai api error %d: %s", resp.StatusCode(), apiErr.Error.Message)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("openai: resposta sem choices")
	}

	o.logger.Debug("openai reply", zap.String("model", o.model), zap.Int("chars", len(out.Choices[0].Message.Content)))
	return parseIntent(ctx, out.Choices[0].Message.Content)
}

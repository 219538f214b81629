package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

type Gemini struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
	logger *zap.Logger
}

func NewGemini(ctx context.Context, apiKey, model string, temperature float64, maxTokens int, logger *zap.Logger) (*Gemini, error) {
	return newGemini(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model, temperature, maxTokens, logger)
}

func newGemini(ctx context.Context, cc *genai.ClientConfig, model string, temperature float64, maxTokens int, logger *zap.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr(float32(temperature)),
			MaxOutputTokens:   int32(maxTokens),
			ResponseMIMEType:  "application/json",
		},
		logger: logger,
	}, nil
}

func (g *Gemini) Classify(ctx context.Context, utterance string) (*usecase.IntentResult, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(utterance), g.config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	g.logger.Debug("gemini reply", zap.String("model", g.model), zap.Int("chars", len(text)))
	return parseIntent(ctx, text)
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/config"
	"github.com/xavierca1/foreclosure-leads/internal/entity"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const systemPrompt = `You are an AI assistant for RepMotivatedSeller, a foreclosure assistance company. Your role is to:

1. Greet callers warmly and professionally
2. Understand their foreclosure situation and needs
3. Provide helpful information about foreclosure options
4. Schedule appointments or transfer to human agents when needed
5. Collect relevant information for case management

Available intents:
- foreclosure_help: General foreclosure assistance
- case_status: Check existing case status
- schedule_appointment: Book consultation
- financial_hardship: Discuss financial difficulties
- property_valuation: Property value questions
- legal_questions: Legal advice needed (transfer to agent)
- speak_to_agent: Direct request for human

Respond with a JSON object containing:
{
  "message": "Your response to the caller",
  "intent": {
    "name": "detected_intent",
    "confidence": 0.95,
    "entities": {"key": "value"}
  },
  "requiresHandoff": false,
  "handoffReason": "reason if handoff needed",
  "nextAction": "continue_conversation | transfer_to_agent | schedule_appointment | end_call"
}

Keep responses conversational, empathetic, and under 50 words. Always be helpful and understanding about their foreclosure situation.`

// New devolve o classificador do provider configurado. Sem chave, devolve um
// classificador que sempre responde ErrChannelUnavailable, e a chamada vai
// para um atendente.
func New(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (usecase.IntentClassifier, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini:
		if cfg.GeminiKey == "" {
			return Unavailable{Provider: ProviderGemini}, nil
		}
		return NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.Temperature, cfg.MaxTokens, logger)
	default:
		if cfg.OpenAIKey == "" {
			return Unavailable{Provider: ProviderOpenAI}, nil
		}
		return NewOpenAI(cfg.OpenAIURL, cfg.OpenAIKey, cfg.OpenAIModel, cfg.Temperature, cfg.MaxTokens, logger), nil
	}
}

type Unavailable struct {
	Provider string
}

func (u Unavailable) Classify(context.Context, string) (*usecase.IntentResult, error) {
	return nil, fmt.Errorf("%s sem chave de API: %w", u.Provider, entity.ErrChannelUnavailable)
}

// intentSchema é o contrato da resposta do modelo. Resposta fora dele vira
// erro e a chamada cai para um atendente.
const intentSchema = `{
  "type": "object",
  "required": ["message", "intent", "nextAction"],
  "properties": {
    "message": {"type": "string", "minLength": 1},
    "intent": {
      "type": "object",
      "required": ["name", "confidence"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "confidence": {"type": "number", "minimum": 0, "maximum": 1},
        "entities": {"type": "object"}
      }
    },
    "requiresHandoff": {"type": "boolean"},
    "handoffReason": {"type": "string"},
    "nextAction": {"enum": ["continue_conversation", "transfer_to_agent", "schedule_appointment", "end_call"]}
  }
}`

var replySchema = mustCompile(intentSchema)

func mustCompile(raw string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(raw), rs); err != nil {
		panic(fmt.Sprintf("compile intent schema: %v", err))
	}
	return rs
}

// parseIntent aceita a resposta crua do modelo, inclusive dentro de um bloco
// ```json, e valida contra intentSchema.
func parseIntent(ctx context.Context, raw string) (*usecase.IntentResult, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("resposta vazia do modelo")
	}

	var result usecase.IntentResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("resposta do modelo não é JSON: %w", err)
	}

	verrs, err := replySchema.ValidateBytes(ctx, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("schema validate error: %w", err)
	}
	if len(verrs) > 0 {
		var sb strings.Builder
		for _, v := range verrs {
			sb.WriteString(v.PropertyPath)
			sb.WriteString(": ")
			sb.WriteString(v.Message)
			sb.WriteString("; ")
		}
		return nil, fmt.Errorf("resposta fora do contrato: %s", sb.String())
	}
	return &result, nil
}

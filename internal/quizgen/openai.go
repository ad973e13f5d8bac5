package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"livequiz-service/internal/domain"
)

// OpenAIConfig configures the generation provider. BaseURL makes any
// OpenAI-compatible API usable.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// chatCompleter is the slice of the OpenAI client the generator needs;
// tests substitute a fake.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIGenerator generates quizzes through a chat-completion API with
// structured JSON output. Quota exhaustion falls back to placeholder
// questions rather than failing the authoring flow.
type OpenAIGenerator struct {
	client chatCompleter
	model  string
}

func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, cfg Config) (domain.Quiz, error) {
	cfg = cfg.withDefaults()

	schemaBytes, err := json.Marshal(quizSchema)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("marshal schema: %w", err)
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(cfg)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "quiz-questions",
				Schema: json.RawMessage(schemaBytes),
				Strict: true,
			},
		},
	})
	if err != nil {
		if isQuotaErr(err) {
			log.Printf("quizgen: quota exceeded, serving fallback questions: %v", err)
			return fallbackQuiz(cfg)
		}
		return domain.Quiz{}, fmt.Errorf("generate quiz: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Quiz{}, fmt.Errorf("generate quiz: empty response")
	}

	raw := json.RawMessage(resp.Choices[0].Message.Content)
	if err := validateQuizJSON(raw); err != nil {
		return domain.Quiz{}, err
	}
	var out struct {
		Questions []rawQuestion `json:"questions"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return domain.Quiz{}, fmt.Errorf("parse model output: %w", err)
	}
	return toQuiz(cfg, out.Questions)
}

func isQuotaErr(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

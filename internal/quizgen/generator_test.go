package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"livequiz-service/internal/domain"
)

type fakeCompleter struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

// modelOutput builds a structured-output payload with n multiple-choice
// questions, as the API would return under the quiz schema.
func modelOutput(t *testing.T, n int) string {
	t.Helper()
	type option struct {
		Text    string `json:"text"`
		Correct bool   `json:"correct"`
	}
	type question struct {
		Text          string   `json:"text"`
		Type          string   `json:"type"`
		Options       []option `json:"options"`
		CorrectAnswer string   `json:"correctAnswer"`
		Keywords      []string `json:"keywords"`
		Explanation   string   `json:"explanation"`
	}
	out := struct {
		Questions []question `json:"questions"`
	}{}
	for i := 0; i < n; i++ {
		out.Questions = append(out.Questions, question{
			Text: fmt.Sprintf("Question %d?", i+1),
			Type: "multiple_choice",
			Options: []option{
				{Text: "Right", Correct: true},
				{Text: "Wrong"},
				{Text: "Also wrong"},
				{Text: "Still wrong"},
			},
			Keywords:    []string{},
			Explanation: "Because it is.",
		})
	}
	data, err := json.Marshal(out)
	require.NoError(t, err)
	return string(data)
}

func TestGenerateParsesStructuredOutput(t *testing.T) {
	fake := &fakeCompleter{content: modelOutput(t, 5)}
	gen := &OpenAIGenerator{client: fake, model: "test-model"}

	quiz, err := gen.Generate(context.Background(), Config{Topic: "Photosynthesis", QuestionCount: 5, TimeLimitSeconds: 20})
	require.NoError(t, err)
	require.Equal(t, "Photosynthesis", quiz.Title)
	require.Len(t, quiz.Questions, 5)
	for _, q := range quiz.Questions {
		require.NotEmpty(t, q.ID)
		require.Equal(t, domain.MultipleChoice, q.Type)
		require.Equal(t, 20, q.TimeLimitSeconds)
		require.Equal(t, "o1", q.Options[0].ID, "option IDs are assigned positionally")
		require.True(t, q.Options[0].Correct)
	}

	require.Equal(t, "test-model", fake.lastReq.Model)
	require.NotNil(t, fake.lastReq.ResponseFormat)
	require.Equal(t, openai.ChatCompletionResponseFormatTypeJSONSchema, fake.lastReq.ResponseFormat.Type)
}

func TestGeneratePromptCarriesConfig(t *testing.T) {
	fake := &fakeCompleter{content: modelOutput(t, 5)}
	gen := &OpenAIGenerator{client: fake, model: "test-model"}

	_, err := gen.Generate(context.Background(), Config{
		Topic:              "The French Revolution",
		Subject:            "History",
		Difficulty:         "hard",
		QuestionCount:      5,
		CustomInstructions: "Focus on 1789.",
	})
	require.NoError(t, err)
	require.Len(t, fake.lastReq.Messages, 2)
	user := fake.lastReq.Messages[1].Content
	require.Contains(t, user, "The French Revolution")
	require.Contains(t, user, "History")
	require.Contains(t, user, "hard")
	require.Contains(t, user, "Focus on 1789.")
}

func TestGenerateRejectsMalformedOutput(t *testing.T) {
	cases := map[string]string{
		"not json":        "the model rambled instead",
		"missing fields":  `{"questions":[{"text":"Q?"}]}`,
		"unknown type":    `{"questions":[{"text":"Q?","type":"essay","options":[],"correctAnswer":"","keywords":[],"explanation":"x"}]}`,
		"no questions":    `{}`,
		"empty list":      `{"questions":[]}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			fake := &fakeCompleter{content: content}
			gen := &OpenAIGenerator{client: fake, model: "test-model"}
			_, err := gen.Generate(context.Background(), Config{Topic: "X", QuestionCount: 5})
			require.Error(t, err)
		})
	}
}

func TestGenerateFallsBackOnQuotaExhaustion(t *testing.T) {
	fake := &fakeCompleter{err: &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "quota"}}
	gen := &OpenAIGenerator{client: fake, model: "test-model"}

	quiz, err := gen.Generate(context.Background(), Config{Topic: "Gravity", QuestionCount: 6})
	require.NoError(t, err)
	require.Equal(t, "Gravity", quiz.Title)
	require.Len(t, quiz.Questions, 6)
}

func TestGenerateSurfacesNonQuotaErrors(t *testing.T) {
	fake := &fakeCompleter{err: &openai.APIError{HTTPStatusCode: http.StatusInternalServerError, Message: "boom"}}
	gen := &OpenAIGenerator{client: fake, model: "test-model"}

	_, err := gen.Generate(context.Background(), Config{Topic: "Gravity", QuestionCount: 5})
	require.Error(t, err)

	fake = &fakeCompleter{err: errors.New("dial tcp: connection refused")}
	gen = &OpenAIGenerator{client: fake, model: "test-model"}
	_, err = gen.Generate(context.Background(), Config{Topic: "Gravity", QuestionCount: 5})
	require.Error(t, err)
}

func TestNewOpenAIGeneratorRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIGenerator(OpenAIConfig{})
	require.Error(t, err)

	gen, err := NewOpenAIGenerator(OpenAIConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	require.Equal(t, openai.GPT4oMini, gen.model, "model defaults when unset")
}

func TestFallbackQuizPassesSetValidation(t *testing.T) {
	quiz, err := fallbackQuiz(Config{
		Topic:            "Ecosystems",
		QuestionCount:    6,
		Types:            []domain.QuestionType{domain.MultipleChoice, domain.TrueFalse, domain.ShortAnswer},
		TimeLimitSeconds: 30,
	})
	require.NoError(t, err)
	_, err = domain.NewQuestionSet(quiz.Questions, domain.DefaultQuestionSetBounds)
	require.NoError(t, err, "fallback content must satisfy the same validation as generated content")
}

func TestStaticGenerator(t *testing.T) {
	want := domain.Quiz{ID: "quiz-1", Title: "Fixed"}
	gen := &StaticGenerator{Quiz: want}
	got, err := gen.Generate(context.Background(), Config{})
	require.NoError(t, err)
	require.Equal(t, want, got)

	gen = &StaticGenerator{Err: domain.ErrQuizNotFound}
	_, err = gen.Generate(context.Background(), Config{})
	require.ErrorIs(t, err, domain.ErrQuizNotFound)
}

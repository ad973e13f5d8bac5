package quizgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"livequiz-service/internal/domain"
)

// fallbackQuiz builds placeholder questions when the generation API is
// unavailable. They are intentionally generic; the authoring UI prompts the
// quiz author to regenerate them once quota recovers.
func fallbackQuiz(cfg Config) (domain.Quiz, error) {
	questions := make([]domain.Question, 0, cfg.QuestionCount)
	for i := 0; i < cfg.QuestionCount; i++ {
		qType := cfg.Types[i%len(cfg.Types)]
		questions = append(questions, fallbackQuestion(cfg, qType, i+1))
	}
	return domain.Quiz{
		ID:        uuid.New().String(),
		Title:     cfg.Topic,
		Questions: questions,
	}, nil
}

func fallbackQuestion(cfg Config, qType domain.QuestionType, n int) domain.Question {
	q := domain.Question{
		ID:               uuid.New().String(),
		Type:             qType,
		Explanation:      "Regenerate this question for proper content about the topic.",
		TimeLimitSeconds: cfg.TimeLimitSeconds,
	}
	switch qType {
	case domain.TrueFalse:
		q.Text = fmt.Sprintf("%s is an important subject to study. (%d)", cfg.Topic, n)
		q.CorrectAnswer = "true"
	case domain.ShortAnswer:
		q.Text = fmt.Sprintf("Explain a key concept about %s. (%d)", cfg.Topic, n)
		q.CorrectAnswer = "A brief explanation of the concept"
		q.Keywords = []string{"concept", "explanation", strings.ToLower(cfg.Topic)}
	default:
		q.Type = domain.MultipleChoice
		q.Text = fmt.Sprintf("What is an important concept related to %s? (%d)", cfg.Topic, n)
		q.Options = []domain.Option{
			{ID: "o1", Text: "This is the correct answer", Correct: true},
			{ID: "o2", Text: "This is incorrect"},
			{ID: "o3", Text: "This is also incorrect"},
			{ID: "o4", Text: "This is wrong too"},
		}
	}
	return q
}

// StaticGenerator returns a fixed quiz; used in tests and offline demos.
type StaticGenerator struct {
	Quiz domain.Quiz
	Err  error
}

func (g *StaticGenerator) Generate(_ context.Context, _ Config) (domain.Quiz, error) {
	return g.Quiz, g.Err
}

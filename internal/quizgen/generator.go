package quizgen

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"livequiz-service/internal/domain"
)

// Config describes the quiz to generate.
type Config struct {
	Topic              string
	Subject            string
	Difficulty         string
	QuestionCount      int
	Types              []domain.QuestionType
	CustomInstructions string
	TimeLimitSeconds   int
}

func (c Config) withDefaults() Config {
	if c.Difficulty == "" {
		c.Difficulty = "medium"
	}
	if c.QuestionCount <= 0 {
		c.QuestionCount = domain.DefaultQuestionSetBounds.Min
	}
	if len(c.Types) == 0 {
		c.Types = []domain.QuestionType{domain.MultipleChoice}
	}
	if c.TimeLimitSeconds <= 0 {
		c.TimeLimitSeconds = 30
	}
	return c
}

// Generator produces a validated quiz for a topic configuration.
type Generator interface {
	Generate(ctx context.Context, cfg Config) (domain.Quiz, error)
}

// rawQuestion is the model output shape before validation.
type rawQuestion struct {
	Text    string `json:"text"`
	Type    string `json:"type"`
	Options []struct {
		Text    string `json:"text"`
		Correct bool   `json:"correct"`
	} `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Keywords      []string `json:"keywords"`
	Explanation   string   `json:"explanation"`
}

// toQuiz converts raw model output into a domain quiz and runs it through
// question-set validation so callers only ever see well-formed content.
func toQuiz(cfg Config, raws []rawQuestion) (domain.Quiz, error) {
	questions := make([]domain.Question, 0, len(raws))
	for _, raw := range raws {
		q := domain.Question{
			ID:               uuid.New().String(),
			Text:             raw.Text,
			Type:             domain.QuestionType(raw.Type),
			CorrectAnswer:    raw.CorrectAnswer,
			Keywords:         raw.Keywords,
			Explanation:      raw.Explanation,
			TimeLimitSeconds: cfg.TimeLimitSeconds,
		}
		for i, opt := range raw.Options {
			q.Options = append(q.Options, domain.Option{
				ID:      fmt.Sprintf("o%d", i+1),
				Text:    opt.Text,
				Correct: opt.Correct,
			})
		}
		questions = append(questions, q)
	}
	if _, err := domain.NewQuestionSet(questions, domain.DefaultQuestionSetBounds); err != nil {
		return domain.Quiz{}, err
	}
	title := cfg.Topic
	if title == "" {
		title = cfg.Subject
	}
	return domain.Quiz{
		ID:        uuid.New().String(),
		Title:     title,
		Questions: questions,
	}, nil
}

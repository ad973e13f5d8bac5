package domain

import (
	"fmt"
	"strings"
)

// QuestionType discriminates the supported question variants.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
)

// Option represents a possible answer for a multiple-choice question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models one quiz question. Which fields are meaningful depends on
// Type: Options for multiple choice, CorrectAnswer ("true"/"false") for
// true/false, Keywords plus a sample CorrectAnswer for short answer.
type Question struct {
	ID               string       `json:"id"`
	Text             string       `json:"text"`
	Type             QuestionType `json:"type"`
	Options          []Option     `json:"options,omitempty"`
	CorrectAnswer    string       `json:"correctAnswer,omitempty"`
	Keywords         []string     `json:"keywords,omitempty"`
	Explanation      string       `json:"explanation,omitempty"`
	TimeLimitSeconds int          `json:"timeLimitSeconds"`
}

// Quiz is a titled collection of questions, the unit stored and loaded by the
// quiz repositories.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// QuestionSetBounds limits how many questions a session may carry.
type QuestionSetBounds struct {
	Min int
	Max int
}

// DefaultQuestionSetBounds matches the authoring UI's configured range.
var DefaultQuestionSetBounds = QuestionSetBounds{Min: 5, Max: 50}

// QuestionSet is an immutable ordered list of validated questions. Sessions
// reference questions by index; the set never changes after a session starts.
type QuestionSet struct {
	questions []Question
}

// NewQuestionSet validates questions and freezes them into a QuestionSet.
// All failures wrap ErrInvalidQuestionSet.
func NewQuestionSet(questions []Question, bounds QuestionSetBounds) (QuestionSet, error) {
	if bounds.Min <= 0 {
		bounds = DefaultQuestionSetBounds
	}
	if len(questions) < bounds.Min || len(questions) > bounds.Max {
		return QuestionSet{}, fmt.Errorf("%w: question count %d outside [%d,%d]",
			ErrInvalidQuestionSet, len(questions), bounds.Min, bounds.Max)
	}
	for i, q := range questions {
		if err := validateQuestion(q); err != nil {
			return QuestionSet{}, fmt.Errorf("%w: question %d: %v", ErrInvalidQuestionSet, i, err)
		}
	}
	frozen := make([]Question, len(questions))
	copy(frozen, questions)
	return QuestionSet{questions: frozen}, nil
}

// At returns the question at index i. The caller must keep i in range;
// the session guards indices before calling.
func (s QuestionSet) At(i int) Question {
	return s.questions[i]
}

// Count returns the number of questions in the set.
func (s QuestionSet) Count() int {
	return len(s.questions)
}

func validateQuestion(q Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("empty question text")
	}
	if q.TimeLimitSeconds <= 0 {
		return fmt.Errorf("time limit must be positive, got %d", q.TimeLimitSeconds)
	}
	switch q.Type {
	case MultipleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("multiple choice needs at least 2 options, got %d", len(q.Options))
		}
		correct := 0
		for _, opt := range q.Options {
			if strings.TrimSpace(opt.ID) == "" {
				return fmt.Errorf("option with empty id")
			}
			if opt.Correct {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("multiple choice needs exactly 1 correct option, got %d", correct)
		}
	case TrueFalse:
		answer := strings.ToLower(q.CorrectAnswer)
		if answer != "true" && answer != "false" {
			return fmt.Errorf("true/false answer must be %q or %q, got %q", "true", "false", q.CorrectAnswer)
		}
	case ShortAnswer:
		if len(q.Keywords) == 0 {
			return fmt.Errorf("short answer needs at least one keyword")
		}
		for _, kw := range q.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("short answer keyword must not be blank")
			}
		}
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	return nil
}

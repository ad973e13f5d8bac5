package quizgen

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// quizSchema constrains the model's structured output: an object wrapping the
// question array, since structured-output APIs want an object at the root.
var quizSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{
						"type":        "string",
						"description": "The question prompt shown to students",
					},
					"type": map[string]any{
						"type": "string",
						"enum": []any{"multiple_choice", "true_false", "short_answer"},
					},
					"options": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"text":    map[string]any{"type": "string"},
								"correct": map[string]any{"type": "boolean"},
							},
							"required":             []any{"text", "correct"},
							"additionalProperties": false,
						},
						"description": "Exactly 4 options with exactly 1 correct for multiple_choice; empty otherwise",
					},
					"correctAnswer": map[string]any{
						"type":        "string",
						"description": "\"true\" or \"false\" for true_false; a sample answer for short_answer; empty for multiple_choice",
					},
					"keywords": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Expected key terms for short_answer grading; empty otherwise",
					},
					"explanation": map[string]any{
						"type":        "string",
						"description": "Why the correct answer is correct",
					},
				},
				"required":             []any{"text", "type", "options", "correctAnswer", "keywords", "explanation"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []any{"questions"},
	"additionalProperties": false,
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// validateQuizJSON checks raw model output against quizSchema before any
// unmarshalling into domain types.
func validateQuizJSON(raw json.RawMessage) error {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://quiz-questions.json", quizSchema); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("schema://quiz-questions.json")
	})
	if compileErr != nil {
		return fmt.Errorf("compile quiz schema: %w", compileErr)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON from model: %w", err)
	}
	if err := compiledSchema.Validate(parsed); err != nil {
		return fmt.Errorf("model output failed schema validation: %w", err)
	}
	return nil
}

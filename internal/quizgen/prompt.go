package quizgen

import (
	"fmt"
	"strings"

	"livequiz-service/internal/domain"
)

const systemPrompt = `You are a quiz author for a classroom quiz platform. ` +
	`You write clear, unambiguous questions that test understanding of the requested topic. ` +
	`Respond only with JSON matching the provided schema.`

func typeDescription(t domain.QuestionType) string {
	switch t {
	case domain.MultipleChoice:
		return "Multiple Choice (4 options with exactly 1 correct answer)"
	case domain.TrueFalse:
		return "True/False"
	case domain.ShortAnswer:
		return "Short Answer (brief text response, graded by expected keywords)"
	default:
		return string(t)
	}
}

// buildPrompt assembles the user message for quiz generation.
func buildPrompt(cfg Config) string {
	types := make([]string, 0, len(cfg.Types))
	for _, t := range cfg.Types {
		types = append(types, typeDescription(t))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d quiz questions on the topic %q for the subject %q at %s difficulty level.\n\n",
		cfg.QuestionCount, cfg.Topic, cfg.Subject, cfg.Difficulty)
	b.WriteString("REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- Question types: %s\n", strings.Join(types, ", "))
	b.WriteString("- Distribute questions evenly across the selected types\n")
	b.WriteString("- Each question must include an explanation for the correct answer\n")
	b.WriteString("- For true_false questions set correctAnswer to \"true\" or \"false\"\n")
	b.WriteString("- For short_answer questions list 2-5 expected keywords\n")
	if cfg.CustomInstructions != "" {
		fmt.Fprintf(&b, "- Additional instructions: %s\n", cfg.CustomInstructions)
	}
	return b.String()
}

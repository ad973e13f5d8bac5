package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"livequiz-service/internal/config"
	"livequiz-service/internal/domain"
	"livequiz-service/internal/infra/postgres"
	"livequiz-service/internal/quizgen"
)

// NewGenerateCmd generates a quiz with the configured model and prints it as
// JSON, or saves it straight into Postgres with --save.
func NewGenerateCmd(configPath *string) *cobra.Command {
	var (
		topic        string
		subject      string
		difficulty   string
		count        int
		types        []string
		instructions string
		timeLimit    int
		save         bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a quiz with the configured AI model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			gen, err := quizgen.NewOpenAIGenerator(quizgen.OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   cfg.OpenAI.Model,
				BaseURL: cfg.OpenAI.BaseURL,
			})
			if err != nil {
				return err
			}

			questionTypes := make([]domain.QuestionType, 0, len(types))
			for _, t := range types {
				questionTypes = append(questionTypes, domain.QuestionType(t))
			}
			quiz, err := gen.Generate(cmd.Context(), quizgen.Config{
				Topic:              topic,
				Subject:            subject,
				Difficulty:         difficulty,
				QuestionCount:      count,
				Types:              questionTypes,
				CustomInstructions: instructions,
				TimeLimitSeconds:   timeLimit,
			})
			if err != nil {
				return err
			}

			if save {
				if cfg.Postgres.URL == "" {
					return fmt.Errorf("postgres url not configured")
				}
				saver := postgres.NewQuizSaver(cfg.Postgres.URL)
				defer saver.Close()
				if err := saver.SaveQuiz(cmd.Context(), quiz); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved quiz %s (%d questions)\n", quiz.ID, len(quiz.Questions))
				return nil
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(quiz)
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "quiz topic (required)")
	cmd.Flags().StringVar(&subject, "subject", "", "subject area")
	cmd.Flags().StringVar(&difficulty, "difficulty", "medium", "easy, medium, or hard")
	cmd.Flags().IntVar(&count, "count", 10, "number of questions")
	cmd.Flags().StringSliceVar(&types, "types", []string{"multiple_choice"}, "question types: multiple_choice, true_false, short_answer")
	cmd.Flags().StringVar(&instructions, "instructions", "", "extra authoring instructions")
	cmd.Flags().IntVar(&timeLimit, "time-limit", 30, "seconds per question")
	cmd.Flags().BoolVar(&save, "save", false, "save the quiz into Postgres")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"livequiz-service/internal/domain"
)

// QuizSaver upserts quiz content into the quizzes table. Used by the
// generate command to persist freshly generated question sets.
type QuizSaver struct {
	db *bun.DB
}

func NewQuizSaver(dsn string) *QuizSaver {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &QuizSaver{db: bun.NewDB(sqldb, pgdialect.New())}
}

func (s *QuizSaver) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`,
		quiz.ID, string(data))
	if err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return nil
}

func (s *QuizSaver) Close() error {
	return s.db.Close()
}
